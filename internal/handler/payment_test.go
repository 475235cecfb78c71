package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pharmacy-storefront/internal/apperr"
	"pharmacy-storefront/internal/model"
	"pharmacy-storefront/internal/webhook"
)

const notificationSecret = "test-webhook-secret"

type reconcileCall struct {
	paymentID string
	requestID string
}

type stubPaymentService struct {
	calls        []reconcileCall
	reconcileErr error
}

func (s *stubPaymentService) CreatePreference(context.Context, *gorm.DB, *model.Order) (string, error) {
	return "", nil
}

func (s *stubPaymentService) Reconcile(_ context.Context, paymentID, requestID string) error {
	s.calls = append(s.calls, reconcileCall{paymentID: paymentID, requestID: requestID})
	return s.reconcileErr
}

func signHeader(resourceID, requestID, ts, body string) string {
	mac := hmac.New(sha256.New, []byte(notificationSecret))
	fmt.Fprintf(mac, "id:%s;request-id:%s;ts:%s;%s", resourceID, requestID, ts, body)
	return fmt.Sprintf("ts=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func deliver(t *testing.T, stub *stubPaymentService, query, signature, requestID, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewPaymentHandler(stub, webhook.NewVerifier(notificationSecret), zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/payments/notifications?"+query, strings.NewReader(body))
	if signature != "" {
		req.Header.Set("x-signature", signature)
	}
	if requestID != "" {
		req.Header.Set("x-request-id", requestID)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Notifications(c))
	return rec
}

func TestNotificationsValidSignature(t *testing.T) {
	stub := &stubPaymentService{}
	body := `{"action":"payment.updated","data":{"id":"777"}}`
	sig := signHeader("777", "req-1", "1738000000", body)

	rec := deliver(t, stub, "type=payment&data.id=777", sig, "req-1", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.calls, 1)
	assert.Equal(t, reconcileCall{paymentID: "777", requestID: "req-1"}, stub.calls[0])
}

func TestNotificationsTamperedSignature(t *testing.T) {
	stub := &stubPaymentService{}
	body := `{"action":"payment.updated","data":{"id":"777"}}`
	// Signed for a different resource id than the query string carries.
	sig := signHeader("999", "req-1", "1738000000", body)

	rec := deliver(t, stub, "type=payment&data.id=777", sig, "req-1", body)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, stub.calls)
}

func TestNotificationsMalformedSignatureHeader(t *testing.T) {
	stub := &stubPaymentService{}

	for _, header := range []string{"", "garbage", "ts=123", "v1=abc"} {
		rec := deliver(t, stub, "type=payment&data.id=777", header, "req-1", "{}")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "header %q", header)
	}
	assert.Empty(t, stub.calls)
}

func TestNotificationsNonPaymentType(t *testing.T) {
	stub := &stubPaymentService{}

	rec := deliver(t, stub, "type=merchant_order&data.id=777", "", "", "{}")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, stub.calls)
}

func TestNotificationsMissingResourceID(t *testing.T) {
	stub := &stubPaymentService{}

	rec := deliver(t, stub, "type=payment", "", "", "{}")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.calls)
}

func TestNotificationsReconcileFailure(t *testing.T) {
	stub := &stubPaymentService{
		reconcileErr: apperr.Gateway("could not fetch payment details", nil),
	}
	body := `{"action":"payment.updated","data":{"id":"777"}}`
	sig := signHeader("777", "req-1", "1738000000", body)

	rec := deliver(t, stub, "type=payment&data.id=777", sig, "req-1", body)

	// 5xx makes the gateway redeliver later.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, stub.calls, 1)
}
