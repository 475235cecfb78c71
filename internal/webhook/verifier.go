package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"pharmacy-storefront/internal/apperr"
)

// signatureTemplate is the canonical message Mercado Pago signs. Order
// and punctuation must match the gateway byte-for-byte.
const signatureTemplate = "id:%s;request-id:%s;ts:%s;%s"

// Notification is the transient input of one webhook delivery. The
// resource id comes from the query string, never from the body.
type Notification struct {
	EventType  string
	ResourceID string
	Signature  string
	RequestID  string
	RawBody    string
}

// Verifier validates notification authenticity with HMAC-SHA256 over
// the canonical signed string.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks the x-signature header against the canonical message.
// It returns a Signature error on mismatch and a Validation error when
// the header is malformed; the caller decides whether the event type is
// worth verifying at all.
func (v *Verifier) Verify(n *Notification) error {
	ts, received, err := parseSignatureHeader(n.Signature)
	if err != nil {
		return err
	}

	signed := fmt.Sprintf(signatureTemplate, n.ResourceID, n.RequestID, ts, n.RawBody)

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(signed))
	expected := hex.EncodeToString(mac.Sum(nil))

	// hmac.Equal keeps the comparison constant-time.
	if !hmac.Equal([]byte(expected), []byte(received)) {
		return apperr.Signature("webhook signature mismatch")
	}
	return nil
}

// parseSignatureHeader splits the comma-separated key=value list of an
// x-signature header and requires the ts and v1 keys.
func parseSignatureHeader(header string) (ts, v1 string, err error) {
	if strings.TrimSpace(header) == "" {
		return "", "", apperr.Validation("missing x-signature header")
	}

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.TrimSpace(kv[0]) {
		case "ts":
			ts = strings.TrimSpace(kv[1])
		case "v1":
			v1 = strings.TrimSpace(kv[1])
		}
	}

	if ts == "" || v1 == "" {
		return "", "", apperr.Validation("malformed x-signature header")
	}
	return ts, v1, nil
}
