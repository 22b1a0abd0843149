package cart

import (
	"github.com/shopspring/decimal"

	"github.com/meridianprocure/storefront-backend/internal/catalog"
)

// Line is one product entry in a cart. UnitPrice is captured at add time and
// never re-fetched; location changes clear the whole cart instead.
type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"imageUrl"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`

	// PendingQuantity holds the raw input ("" or "0") while the user is
	// mid-edit. A pending line contributes zero units to totals until it
	// is committed.
	PendingQuantity *string `json:"pendingQuantity,omitempty"`
}

// Units returns the number of pallets the line contributes to totals.
func (l Line) Units() int {
	if l.PendingQuantity != nil {
		return 0
	}
	return l.Quantity
}

// UnitPriceCents converts the captured dollar price to minor units.
func (l Line) UnitPriceCents() int64 {
	return l.UnitPrice.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Cart is the read model handed to the HTTP layer.
type Cart struct {
	SessionID string            `json:"sessionId"`
	Location  string            `json:"location"`
	Lines     []Line            `json:"lines"`
	Catalog   []catalog.Product `json:"catalog"`
	Totals    Totals            `json:"totals"`
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
