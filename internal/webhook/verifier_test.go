package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-storefront/internal/apperr"
)

const testSecret = "test-webhook-secret"

func signedNotification(t *testing.T, resourceID, requestID, ts, body string) *Notification {
	t.Helper()

	message := fmt.Sprintf("id:%s;request-id:%s;ts:%s;%s", resourceID, requestID, ts, body)
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(message))
	v1 := hex.EncodeToString(mac.Sum(nil))

	return &Notification{
		EventType:  "payment",
		ResourceID: resourceID,
		RequestID:  requestID,
		Signature:  fmt.Sprintf("ts=%s,v1=%s", ts, v1),
		RawBody:    body,
	}
}

func TestVerifyValidSignature(t *testing.T) {
	v := NewVerifier(testSecret)
	n := signedNotification(t, "12345", "req-abc", "1700000000", `{"action":"payment.updated"}`)

	require.NoError(t, v.Verify(n))
}

func TestVerifySignatureWithSpacesAroundParts(t *testing.T) {
	v := NewVerifier(testSecret)
	n := signedNotification(t, "12345", "req-abc", "1700000000", `{}`)

	ts, v1, err := parseSignatureHeader(n.Signature)
	require.NoError(t, err)
	n.Signature = fmt.Sprintf(" ts=%s , v1=%s ", ts, v1)

	require.NoError(t, v.Verify(n))
}

func TestVerifyTamperedSignature(t *testing.T) {
	v := NewVerifier(testSecret)
	n := signedNotification(t, "12345", "req-abc", "1700000000", `{}`)
	n.Signature = "ts=1700000000,v1=deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"

	err := v.Verify(n)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindSignature))
}

func TestVerifyTamperedBody(t *testing.T) {
	v := NewVerifier(testSecret)
	n := signedNotification(t, "12345", "req-abc", "1700000000", `{"amount":10}`)
	n.RawBody = `{"amount":9999}`

	err := v.Verify(n)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindSignature))
}

func TestVerifyTamperedResourceID(t *testing.T) {
	// The id in the query string is part of the signed message, so
	// swapping it invalidates the signature.
	v := NewVerifier(testSecret)
	n := signedNotification(t, "12345", "req-abc", "1700000000", `{}`)
	n.ResourceID = "99999"

	err := v.Verify(n)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindSignature))
}

func TestVerifyWrongSecret(t *testing.T) {
	v := NewVerifier("another-secret")
	n := signedNotification(t, "12345", "req-abc", "1700000000", `{}`)

	err := v.Verify(n)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindSignature))
}

func TestVerifyMalformedHeader(t *testing.T) {
	v := NewVerifier(testSecret)

	cases := []string{
		"",
		"ts=1700000000",
		"v1=abcd",
		"garbage",
		"ts=,v1=",
	}
	for _, header := range cases {
		n := &Notification{
			EventType:  "payment",
			ResourceID: "12345",
			RequestID:  "req-abc",
			Signature:  header,
			RawBody:    `{}`,
		}
		err := v.Verify(n)
		require.Error(t, err, "header %q", header)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "header %q", header)
	}
}

func TestParseSignatureHeader(t *testing.T) {
	ts, v1, err := parseSignatureHeader("ts=1704908010,v1=618c85345248dd820d5fd456117c2ab2ef8eda45a0282ff693eac24131a5e839")
	require.NoError(t, err)
	assert.Equal(t, "1704908010", ts)
	assert.Equal(t, "618c85345248dd820d5fd456117c2ab2ef8eda45a0282ff693eac24131a5e839", v1)
}
