package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogType splits the catalog into compounded (homeopathic,
// manipulated in-house) and resale products. A cart or order never
// mixes the two.
type CatalogType string

const (
	CatalogCompounded CatalogType = "COMPOUNDED"
	CatalogResale     CatalogType = "RESALE"
)

// Role of an authenticated user, resolved by the external auth
// collaborator and carried on the request context.
type Role string

const (
	RoleClient Role = "CLIENT"
	RoleDoctor Role = "DOCTOR"
	RoleAdmin  Role = "ADMIN"
)

type User struct {
	ID        uint   `gorm:"primaryKey"`
	FullName  string `gorm:"size:128;not null"`
	Email     string `gorm:"size:128;uniqueIndex;not null"`
	Role      Role   `gorm:"size:16;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:128;not null"`
	Description string          `gorm:"size:512"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PhotoURL    string          `gorm:"size:512"`
	Available   bool            `gorm:"not null;default:true"`
	Type        CatalogType     `gorm:"size:16;index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Neighborhood carries the delivery tax applied at order creation.
type Neighborhood struct {
	ID   uint            `gorm:"primaryKey"`
	Name string          `gorm:"size:128;uniqueIndex;not null"`
	Tax  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

// Cart is the single mutable pending-selection aggregate per user. It is
// created lazily on first add and cleared, never deleted, after a
// successful order creation.
type Cart struct {
	ID         uint            `gorm:"primaryKey"`
	UserID     uint            `gorm:"uniqueIndex;not null"`
	TotalValue decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Items      []CartItem      `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"`
	CartID    uint `gorm:"index:idx_cart_product,unique;not null"`
	ProductID uint `gorm:"index:idx_cart_product,unique;not null"`
	Product   Product
	Quantity  int `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Order is immutable after creation except for Status, the gateway
// correlation fields and the nested quote. Kind discriminates the
// compounded and resale variants of one record.
type Order struct {
	ID             uint        `gorm:"primaryKey"`
	UserID         uint        `gorm:"index;not null"`
	Kind           CatalogType `gorm:"size:16;index;not null"`
	Status         OrderStatus `gorm:"size:32;index;not null"`
	NeighborhoodID uint        `gorm:"not null"`
	Neighborhood   Neighborhood
	Items          []OrderItem     `gorm:"constraint:OnDelete:CASCADE"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DeliveryTax    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// TotalValue = Subtotal + DeliveryTax, always recomputed server-side.
	TotalValue decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	// Resale variant: gateway correlation. PreferenceID and the checkout
	// URL are set when the preference is created; PaymentID when the
	// reconciler applies an approved payment. They round-trip as-is
	// since they double as correlation keys.
	PreferenceID string `gorm:"size:128;index"`
	CheckoutURL  string `gorm:"size:1024"`
	PaymentID    int64  `gorm:"index"`

	// Compounded variant: a single nested quote, attached later.
	Quote *OrderQuote `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem is a frozen snapshot of a cart line. Name, price and photo
// are copied at order time so later catalog changes never touch it.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey"`
	OrderID      uint            `gorm:"index;not null"`
	ProductID    uint            `gorm:"index;not null"`
	ProductName  string          `gorm:"size:128;not null"`
	ProductPhoto string          `gorm:"size:512"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity     int             `gorm:"not null"`
	CreatedAt    time.Time
}

// OrderQuote holds the customer data a pharmacist needs to quote a
// compounded order. The quoting workflow itself is external.
type OrderQuote struct {
	ID              uint   `gorm:"primaryKey"`
	OrderID         uint   `gorm:"uniqueIndex;not null"`
	FullName        string `gorm:"size:128;not null"`
	Phone           string `gorm:"size:32;not null"`
	Email           string `gorm:"size:128"`
	Observation     string `gorm:"size:1024"`
	PrescriptionURL string `gorm:"size:512"`
	CreatedAt       time.Time
}

// WebhookEvent is an audit record of a processed gateway notification.
// The guarded status transition, not this table, is the idempotency
// mechanism.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:64"`
	PaymentID   string `gorm:"size:64;index"`
	RequestID   string `gorm:"size:128;index"`
	EventType   string `gorm:"size:64"`
	Outcome     string `gorm:"size:64"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
