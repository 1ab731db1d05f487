package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind discriminates the product variants sold by the store.
type Kind string

const (
	KindGame     Kind = "game"
	KindHardware Kind = "hardware"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindGame:
		return KindGame, nil
	case KindHardware:
		return KindHardware, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

func (k Kind) Valid() bool {
	return k == KindGame || k == KindHardware
}

// ProductRef identifies a product across both catalog tables.
type ProductRef struct {
	Kind Kind  `json:"kind"`
	ID   int64 `json:"id"`
}

func (r ProductRef) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}
	if r.ID <= 0 {
		return fmt.Errorf("%w: id %d", ErrProductNotFound, r.ID)
	}
	return nil
}

// ParseProductRef reads the "kind:id" form produced by String.
func ParseProductRef(s string) (ProductRef, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return ProductRef{}, fmt.Errorf("malformed product reference %q", s)
	}
	k, err := ParseKind(kind)
	if err != nil {
		return ProductRef{}, err
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ProductRef{}, fmt.Errorf("malformed product id %q: %w", id, err)
	}
	return ProductRef{Kind: k, ID: n}, nil
}

func (r ProductRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// Less orders refs by kind, then id.
func (r ProductRef) Less(o ProductRef) bool {
	if r.Kind != o.Kind {
		return r.Kind < o.Kind
	}
	return r.ID < o.ID
}

type GameDetails struct {
	Title    string `json:"title"`
	Platform string `json:"platform"`
	Genre    string `json:"genre"`
}

type HardwareDetails struct {
	Category string `json:"category"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
}

// Product is the live catalog view of a ProductRef. Exactly one of Game or
// Hardware is set, matching Ref.Kind.
type Product struct {
	Ref      ProductRef       `json:"ref"`
	Price    decimal.Decimal  `json:"price"`
	Stock    int              `json:"stock"`
	Game     *GameDetails     `json:"game,omitempty"`
	Hardware *HardwareDetails `json:"hardware,omitempty"`
}

// DisplayName resolves the human readable name for either variant.
func (p *Product) DisplayName() string {
	switch p.Ref.Kind {
	case KindGame:
		if p.Game != nil {
			return p.Game.Title
		}
	case KindHardware:
		if p.Hardware != nil {
			return strings.TrimSpace(p.Hardware.Brand + " " + p.Hardware.Model)
		}
	}
	return p.Ref.String()
}

func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}

// RestockReport counts the sold-out rows refilled by a restock run.
type RestockReport struct {
	Games    int64 `json:"games"`
	Hardware int64 `json:"hardware"`
}
