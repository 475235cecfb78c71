package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pharmacy-storefront/internal/apperr"
	"pharmacy-storefront/internal/client"
	"pharmacy-storefront/internal/model"
	"pharmacy-storefront/internal/repository"
)

const (
	reconcileApplied      = "applied"
	reconcileIgnored      = "ignored"
	reconcileUnresolvable = "unresolvable"
)

// PaymentService is the Mercado Pago side of the order flow: it creates
// checkout preferences for resale orders and reconciles webhook
// notifications against order state.
type PaymentService interface {
	// CreatePreference builds the gateway preference for a freshly
	// created resale order. It runs on the caller's transaction so a
	// gateway failure rolls the whole order creation back.
	CreatePreference(ctx context.Context, tx *gorm.DB, order *model.Order) (string, error)
	// Reconcile maps a verified payment notification back to an order
	// and applies the guarded AWAITING_PAYMENT -> PAID transition.
	Reconcile(ctx context.Context, paymentID, requestID string) error
}

type paymentServiceImpl struct {
	db          *gorm.DB
	mpClient    client.MercadoPagoClient
	orderRepo   repository.OrderRepository
	eventRepo   repository.WebhookEventRepository
	frontendURL string
	backendURL  string
	logger      *zap.Logger
}

func NewPaymentService(
	db *gorm.DB,
	mpClient client.MercadoPagoClient,
	orderRepo repository.OrderRepository,
	eventRepo repository.WebhookEventRepository,
	frontendURL string,
	backendURL string,
	logger *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		db:          db,
		mpClient:    mpClient,
		orderRepo:   orderRepo,
		eventRepo:   eventRepo,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		backendURL:  strings.TrimRight(backendURL, "/"),
		logger:      logger,
	}
}

func (s *paymentServiceImpl) CreatePreference(ctx context.Context, tx *gorm.DB, order *model.Order) (string, error) {
	items := make([]client.PreferenceItem, 0, len(order.Items)+1)
	for _, line := range order.Items {
		items = append(items, client.PreferenceItem{
			Title:       line.ProductName,
			Description: line.ProductName,
			Quantity:    line.Quantity,
			CurrencyID:  "BRL",
			UnitPrice:   line.UnitPrice.InexactFloat64(),
		})
	}

	// Delivery tax goes to the gateway as its own line so the charged
	// amount matches the order total.
	if order.DeliveryTax.IsPositive() {
		items = append(items, client.PreferenceItem{
			Title:       "Delivery - " + order.Neighborhood.Name,
			Description: "Delivery tax for " + order.Neighborhood.Name,
			Quantity:    1,
			CurrencyID:  "BRL",
			UnitPrice:   order.DeliveryTax.InexactFloat64(),
		})
	}

	orderRef := strconv.FormatUint(uint64(order.ID), 10)
	returnURL := fmt.Sprintf("%s/payment-return?orderId=%s", s.frontendURL, orderRef)

	pref, err := s.mpClient.CreatePreference(ctx, &client.PreferenceRequest{
		Items: items,
		BackURLs: client.BackURLs{
			Success: returnURL,
			Failure: returnURL,
			Pending: returnURL,
		},
		NotificationURL:   s.backendURL + "/api/payments/notifications",
		AutoReturn:        "approved",
		ExternalReference: orderRef,
	})
	if err != nil {
		s.logger.Error("preference creation failed",
			zap.Uint("order_id", order.ID), zap.Error(err))
		return "", apperr.Gateway("could not generate the payment link", err)
	}

	if err := s.orderRepo.SetPaymentCorrelation(ctx, tx, order.ID, pref.ID, pref.InitPoint); err != nil {
		return "", fmt.Errorf("persist payment correlation: %w", err)
	}

	order.PreferenceID = pref.ID
	order.CheckoutURL = pref.InitPoint

	s.logger.Info("payment preference created",
		zap.Uint("order_id", order.ID), zap.String("preference_id", pref.ID))
	return pref.InitPoint, nil
}

func (s *paymentServiceImpl) Reconcile(ctx context.Context, paymentID, requestID string) error {
	// The webhook only carries an id; the authoritative status requires
	// a second round-trip to the gateway.
	payment, err := s.mpClient.GetPayment(ctx, paymentID)
	if err != nil {
		s.logger.Error("payment fetch failed",
			zap.String("payment_id", paymentID), zap.Error(err))
		return apperr.Gateway("could not fetch payment details", err)
	}

	if payment.ExternalReference == "" {
		s.logger.Warn("notification without external_reference, discarding",
			zap.String("payment_id", paymentID))
		s.record(ctx, paymentID, requestID, reconcileUnresolvable)
		return nil
	}

	orderID, err := strconv.ParseUint(payment.ExternalReference, 10, 64)
	if err != nil {
		s.logger.Warn("notification with non-numeric external_reference, discarding",
			zap.String("payment_id", paymentID),
			zap.String("external_reference", payment.ExternalReference))
		s.record(ctx, paymentID, requestID, reconcileUnresolvable)
		return nil
	}

	order, err := s.orderRepo.FindByID(ctx, s.db, uint(orderID))
	if apperr.Is(err, apperr.KindNotFound) {
		// The adapter set this reference at preference-creation time, so
		// a missing order means a broken invariant, not a stale event.
		s.logger.Error("payment references a missing order",
			zap.String("payment_id", paymentID),
			zap.Uint64("order_id", orderID))
		return apperr.Integrity("order referenced by payment not found")
	}
	if err != nil {
		return fmt.Errorf("load order for reconciliation: %w", err)
	}

	mapped := model.FromGatewayStatus(payment.Status)
	if order.Status != model.StatusAwaitingPayment || mapped != model.StatusPaid {
		s.logger.Info("notification ignored",
			zap.Uint("order_id", order.ID),
			zap.String("order_status", string(order.Status)),
			zap.String("gateway_status", payment.Status),
			zap.String("mapped_status", string(mapped)))
		s.record(ctx, paymentID, requestID, reconcileIgnored)
		return nil
	}

	applied, err := s.orderRepo.MarkPaid(ctx, s.db, order.ID, payment.ID)
	if err != nil {
		return fmt.Errorf("apply paid transition: %w", err)
	}
	if !applied {
		// A concurrent delivery won the guarded update; nothing left to do.
		s.logger.Info("paid transition already applied",
			zap.Uint("order_id", order.ID), zap.String("payment_id", paymentID))
		s.record(ctx, paymentID, requestID, reconcileIgnored)
		return nil
	}

	s.logger.Info("order paid via webhook",
		zap.Uint("order_id", order.ID), zap.String("payment_id", paymentID))
	s.record(ctx, paymentID, requestID, reconcileApplied)
	return nil
}

func (s *paymentServiceImpl) record(ctx context.Context, paymentID, requestID, outcome string) {
	if err := s.eventRepo.Record(ctx, s.db, paymentID, requestID, "payment", outcome); err != nil {
		s.logger.Warn("could not record webhook event",
			zap.String("payment_id", paymentID), zap.Error(err))
	}
}
