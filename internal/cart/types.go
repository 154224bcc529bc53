package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductID identifies a product across the storefront and the Cart API.
type ProductID string

// Product is the display snapshot kept alongside a cart line.
type Product struct {
	ID    ProductID
	Name  string
	Slug  string
	Image string
	Price decimal.Decimal
}

// Item is one cart line. Quantity is always within [1, max quantity].
type Item struct {
	ProductID       ProductID
	Product         Product
	Quantity        int
	OriginalPrice   decimal.Decimal
	DiscountedPrice decimal.NullDecimal
}

// SelectionLine is what the pricing endpoint needs for one selected item.
type SelectionLine struct {
	ProductID ProductID
	Quantity  int
}

// Summary holds server-computed totals for the current selection.
type Summary struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalTotal     decimal.Decimal
	AppliedRule    string
	UpsellHint     string
}

// IsZero reports whether every amount is zero and no rule or hint is set.
func (s Summary) IsZero() bool {
	return s.Subtotal.IsZero() && s.DiscountAmount.IsZero() && s.FinalTotal.IsZero() &&
		s.AppliedRule == "" && s.UpsellHint == ""
}

// State is the engine lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	// StateFailed is an empty, usable cart after a failed load.
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Snapshot is a consistent copy of the engine state.
type Snapshot struct {
	State        State
	Items        []Item
	Selected     []ProductID
	Summary      Summary
	SummaryStale bool
	TotalItems   int
	Loading      bool
	Notice       *Notice
}
