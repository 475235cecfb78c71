package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromGatewayStatus(t *testing.T) {
	cases := map[string]OrderStatus{
		"pending":      StatusAwaitingPayment,
		"authorized":   StatusAwaitingPayment,
		"approved":     StatusPaid,
		"in_process":   StatusPaymentUnderReview,
		"cancelled":    StatusCancelled,
		"refunded":     StatusPaymentRefunded,
		"charged_back": StatusPaymentRefunded,
		"expired":      StatusPaymentExpired,
		"rejected":     StatusPaymentRejected,
	}

	for gateway, want := range cases {
		assert.Equal(t, want, FromGatewayStatus(gateway), "gateway status %q", gateway)
	}
}

func TestFromGatewayStatusIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, StatusPaid, FromGatewayStatus("APPROVED"))
	assert.Equal(t, StatusAwaitingPayment, FromGatewayStatus("Pending"))
}

func TestFromGatewayStatusUnknownDefaultsToInProgress(t *testing.T) {
	for _, s := range []string{"", "unknown", "partially_refunded", "garbage"} {
		assert.Equal(t, StatusInProgress, FromGatewayStatus(s), "gateway status %q", s)
	}
}

func TestFromGatewayStatusIsStable(t *testing.T) {
	for _, s := range []string{"pending", "approved", "rejected", "nonsense"} {
		first := FromGatewayStatus(s)
		assert.Equal(t, first, FromGatewayStatus(s))
		assert.True(t, first.Valid())
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := []OrderStatus{StatusDelivered, StatusCancelled, StatusPaymentRefunded}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), "status %s", s)
	}

	nonTerminal := []OrderStatus{
		StatusInProgress, StatusAwaitingQuote, StatusAwaitingPayment,
		StatusPaid, StatusInPreparation, StatusReadyToShip, StatusInTransit,
		StatusDeliveryFailed, StatusPaymentUnderReview, StatusPaymentExpired,
		StatusPaymentRejected,
	}
	for _, s := range nonTerminal {
		assert.False(t, s.Terminal(), "status %s", s)
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusAwaitingPayment.Valid())
	assert.False(t, OrderStatus("PAGO").Valid())
	assert.False(t, OrderStatus("").Valid())
}
