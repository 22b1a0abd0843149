package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/meridianprocure/storefront-backend/pkg/enums"
)

// Order is the persisted record of a completed (or in-flight) Stripe
// Checkout purchase. One row per checkout session.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StripeSessionID string            `gorm:"column:stripe_session_id;not null;uniqueIndex"`
	CartSessionID   string            `gorm:"column:cart_session_id;not null"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	CustomerEmail   *string           `gorm:"column:customer_email"`
	CustomerName    *string           `gorm:"column:customer_name"`
	CompanyName     *string           `gorm:"column:company_name"`
	Location        string            `gorm:"column:location;not null"`
	TotalPallets    int               `gorm:"column:total_pallets;not null"`
	SubtotalCents   int64             `gorm:"column:subtotal_cents;not null"`
	ShippingCents   int64             `gorm:"column:shipping_cents;not null;default:0"`
	TotalCents      int64             `gorm:"column:total_cents;not null"`
	Currency        string            `gorm:"column:currency;not null;default:'usd'"`
	Lines           []OrderLine       `gorm:"column:lines;type:jsonb;serializer:json"`
	PaidAt          *time.Time        `gorm:"column:paid_at"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLine is a denormalized snapshot of a cart line at checkout time.
type OrderLine struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
}

// TableName overrides the gorm default pluralization.
func (Order) TableName() string {
	return "orders"
}
