package model

import "strings"

// OrderStatus is the shared status vocabulary used by order creation,
// administrative updates and the webhook reconciler.
type OrderStatus string

const (
	StatusInProgress         OrderStatus = "IN_PROGRESS"
	StatusAwaitingQuote      OrderStatus = "AWAITING_QUOTE"
	StatusAwaitingPayment    OrderStatus = "AWAITING_PAYMENT"
	StatusPaid               OrderStatus = "PAID"
	StatusDelivered          OrderStatus = "DELIVERED"
	StatusCancelled          OrderStatus = "CANCELLED"
	StatusInPreparation      OrderStatus = "IN_PREPARATION"
	StatusReadyToShip        OrderStatus = "READY_TO_SHIP"
	StatusInTransit          OrderStatus = "IN_TRANSIT"
	StatusDeliveryFailed     OrderStatus = "DELIVERY_FAILED"
	StatusPaymentUnderReview OrderStatus = "PAYMENT_UNDER_REVIEW"
	StatusPaymentRefunded    OrderStatus = "PAYMENT_REFUNDED"
	StatusPaymentExpired     OrderStatus = "PAYMENT_EXPIRED"
	StatusPaymentRejected    OrderStatus = "PAYMENT_REJECTED"
)

var allStatuses = map[OrderStatus]struct{}{
	StatusInProgress:         {},
	StatusAwaitingQuote:      {},
	StatusAwaitingPayment:    {},
	StatusPaid:               {},
	StatusDelivered:          {},
	StatusCancelled:          {},
	StatusInPreparation:      {},
	StatusReadyToShip:        {},
	StatusInTransit:          {},
	StatusDeliveryFailed:     {},
	StatusPaymentUnderReview: {},
	StatusPaymentRefunded:    {},
	StatusPaymentExpired:     {},
	StatusPaymentRejected:    {},
}

func (s OrderStatus) Valid() bool {
	_, ok := allStatuses[s]
	return ok
}

// Terminal reports whether no further transition is expected.
func (s OrderStatus) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusPaymentRefunded:
		return true
	}
	return false
}

// FromGatewayStatus maps a Mercado Pago payment status string to the
// internal vocabulary. Unrecognized strings fall back to IN_PROGRESS so
// an event is never silently dropped.
func FromGatewayStatus(gatewayStatus string) OrderStatus {
	switch strings.ToLower(gatewayStatus) {
	case "pending", "authorized":
		return StatusAwaitingPayment
	case "approved":
		return StatusPaid
	case "in_process":
		return StatusPaymentUnderReview
	case "cancelled":
		return StatusCancelled
	case "refunded", "charged_back":
		return StatusPaymentRefunded
	case "expired":
		return StatusPaymentExpired
	case "rejected":
		return StatusPaymentRejected
	default:
		return StatusInProgress
	}
}
