package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pharmacy-storefront/internal/apperr"
	"pharmacy-storefront/internal/service"
	"pharmacy-storefront/internal/webhook"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	verifier       *webhook.Verifier
	logger         *zap.Logger
}

func NewPaymentHandler(paymentService service.PaymentService, verifier *webhook.Verifier, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		verifier:       verifier,
		logger:         logger,
	}
}

// Notifications receives Mercado Pago webhook deliveries. The resource
// id is taken from the query string, never from the body, because the
// signature covers the query-string id. Responses are always prompt:
// the only gateway round-trip is the single payment-detail fetch inside
// Reconcile; redelivery on failure is the gateway's job.
func (h *PaymentHandler) Notifications(c echo.Context) error {
	ctx := c.Request().Context()

	eventType := c.QueryParam("type")
	resourceID := c.QueryParam("data.id")

	if eventType != "payment" {
		h.logger.Info("non-payment notification ignored", zap.String("type", eventType))
		return c.NoContent(http.StatusOK)
	}

	if resourceID == "" {
		h.logger.Warn("payment notification without data.id query parameter")
		return c.NoContent(http.StatusBadRequest)
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	notification := &webhook.Notification{
		EventType:  eventType,
		ResourceID: resourceID,
		Signature:  c.Request().Header.Get("x-signature"),
		RequestID:  c.Request().Header.Get("x-request-id"),
		RawBody:    string(body),
	}

	if err := h.verifier.Verify(notification); err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindSignature:
			h.logger.Warn("webhook signature rejected",
				zap.String("payment_id", resourceID),
				zap.String("request_id", notification.RequestID))
			return c.NoContent(http.StatusUnauthorized)
		default:
			h.logger.Warn("malformed webhook notification",
				zap.String("payment_id", resourceID), zap.Error(err))
			return c.NoContent(http.StatusBadRequest)
		}
	}

	if err := h.paymentService.Reconcile(ctx, resourceID, notification.RequestID); err != nil {
		// Gateway and integrity failures surface as 500 so the gateway
		// retries the delivery later.
		h.logger.Error("webhook reconciliation failed",
			zap.String("payment_id", resourceID), zap.Error(err))
		return c.NoContent(http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusOK)
}
