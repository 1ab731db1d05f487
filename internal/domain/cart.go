package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartLine struct {
	ID       int64      `json:"id"`
	OwnerID  int64      `json:"owner_id"`
	Ref      ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
	AddedAt  time.Time  `json:"added_at"`
}

type CartItemView struct {
	Line      CartLine        `json:"line"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Stock     int             `json:"stock"`
	Missing   bool            `json:"missing,omitempty"`
}

// CartView is the display form of a cart, priced from the live catalog.
// It is informational only and never used to settle a checkout.
type CartView struct {
	OwnerID int64           `json:"owner_id"`
	Items   []CartItemView  `json:"items"`
	Total   decimal.Decimal `json:"total"`
}

// CartCount sizes a cart two ways: distinct lines (the header badge) and
// total units.
type CartCount struct {
	Lines int `json:"lines"`
	Units int `json:"units"`
}

type CartMutation string

const (
	CartMutationUpdated CartMutation = "UPDATED"
	CartMutationRemoved CartMutation = "REMOVED"
)
