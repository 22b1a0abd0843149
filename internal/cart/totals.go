package cart

import (
	"fmt"
)

// Order quantity and shipping business constants.
const (
	MinOrderQty       = 100
	MaxOrderQty       = 615
	FreeShippingUnits = 550
	ShippingFeeCents  = 30000
)

// Totals is the money summary for a cart, computed in integer cents.
type Totals struct {
	SubtotalCents int64 `json:"subtotalCents"`
	TotalUnits    int   `json:"totalUnits"`
	ShippingCents int64 `json:"shippingCents"`
	TotalCents    int64 `json:"totalCents"`
}

// ComputeTotals derives subtotal, shipping and grand total from the lines.
// Pending lines count zero units and zero dollars.
func ComputeTotals(lines []Line) Totals {
	var t Totals
	for _, line := range lines {
		units := line.Units()
		t.TotalUnits += units
		t.SubtotalCents += line.UnitPriceCents() * int64(units)
	}
	if t.TotalUnits > 0 && t.TotalUnits < FreeShippingUnits {
		t.ShippingCents = ShippingFeeCents
	}
	t.TotalCents = t.SubtotalCents + t.ShippingCents
	return t
}

// FormatCents renders integer cents as a dollar string with two decimals.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
