package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	Neighborhood string `json:"neighborhood"`
}

type OrderItemResponse struct {
	ProductName  string          `json:"product_name"`
	ProductPhoto string          `json:"product_photo,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
}

type QuoteResponse struct {
	ID              uint   `json:"id"`
	FullName        string `json:"full_name"`
	Phone           string `json:"phone"`
	Email           string `json:"email,omitempty"`
	Observation     string `json:"observation,omitempty"`
	PrescriptionURL string `json:"prescription_url,omitempty"`
}

type OrderResponse struct {
	ID           uint                `json:"id"`
	Kind         string              `json:"kind"`
	Status       string              `json:"status"`
	Neighborhood string              `json:"neighborhood"`
	Items        []OrderItemResponse `json:"items"`
	Subtotal     decimal.Decimal     `json:"subtotal"`
	DeliveryTax  decimal.Decimal     `json:"delivery_tax"`
	Total        decimal.Decimal     `json:"total"`
	CreatedAt    time.Time           `json:"created_at"`
	PreferenceID string              `json:"preference_id,omitempty"`
	Quote        *QuoteResponse      `json:"quote,omitempty"`
}

// CreateOrderResponse wraps a resale order together with its checkout
// redirect; compounded orders are returned as a bare OrderResponse.
type CreateOrderResponse struct {
	OrderDetails OrderResponse `json:"orderDetails"`
	PaymentURL   string        `json:"paymentUrl,omitempty"`
}

type CartItemResponse struct {
	ProductID    uint            `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPhoto string          `json:"product_photo,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type QuoteRequest struct {
	FullName        string `json:"full_name"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Observation     string `json:"observation"`
	PrescriptionURL string `json:"prescription_url"`
}
