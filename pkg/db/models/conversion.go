package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversion records an attributable purchase event emitted when a
// checkout session completes. Rows feed offline ad-conversion exports.
type Conversion struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         *uuid.UUID `gorm:"column:order_id;type:uuid;index"`
	StripeSessionID string     `gorm:"column:stripe_session_id;not null;index"`
	OrderType       string     `gorm:"column:order_type;not null"`
	Location        string     `gorm:"column:location;not null"`
	TotalPallets    int        `gorm:"column:total_pallets;not null"`
	AmountCents     int64      `gorm:"column:amount_cents;not null"`
	Currency        string     `gorm:"column:currency;not null;default:'usd'"`
	GCLID           string     `gorm:"column:gclid"`
	Processed       bool       `gorm:"column:processed;not null"`
	RecordedAt      time.Time  `gorm:"column:recorded_at;autoCreateTime"`
}

// TableName overrides the gorm default pluralization.
func (Conversion) TableName() string {
	return "conversions"
}
