package cart

import (
	"fmt"
	"strconv"
	"strings"

	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
)

// validateAddQuantity enforces the order bounds for a fresh add.
func validateAddQuantity(qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive number")
	}
	if qty < MinOrderQty {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("minimum quantity is %d pallets", MinOrderQty))
	}
	if qty > MaxOrderQty {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("maximum quantity is %d pallets", MaxOrderQty))
	}
	return nil
}

// combineQuantities merges a new add into an existing line. The sum is not
// re-checked against MaxOrderQty: repeat adds accumulate past the per-add
// ceiling. Kept as a single policy function so the rule can be flipped in
// one place.
func combineQuantities(existing, added int) int {
	return existing + added
}

type quantityEdit int

const (
	editCommit quantityEdit = iota
	editPending
	editCoerce
)

// classifyQuantityEdit models the interactive quantity field. In-range values
// commit, "" and "0" stay as transient placeholders so typing can continue,
// anything else snaps to the minimum. Input is read like a number field's
// parseInt: the leading integer counts and the rest is ignored, so "550.5"
// commits 550.
func classifyQuantityEdit(raw string) (quantityEdit, int) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "0" {
		return editPending, 0
	}
	qty, ok := parseLeadingInt(trimmed)
	if !ok || qty < MinOrderQty || qty > MaxOrderQty {
		return editCoerce, MinOrderQty
	}
	return editCommit, qty
}

func parseLeadingInt(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	qty, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return qty, true
}
