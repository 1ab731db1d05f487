package service

import (
	"context"
	"errors"
	"sort"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/fjod/game-hardware-store/internal/repository"
)

type reservedLine struct {
	line    domain.CartLine
	product *domain.Product
}

// reserve re-reads the cart inside the transaction and decrements stock for
// every line. Any failure aborts the whole unit.
func (s *CheckoutServiceImpl) reserve(ctx context.Context, r repository.Repos, ownerID int64) ([]reservedLine, error) {
	lines, err := r.Carts.ListLines(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// consistent row lock order across concurrent checkouts
	ordered := make([]domain.CartLine, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Ref.Less(ordered[j].Ref)
	})

	products := make(map[domain.ProductRef]*domain.Product, len(ordered))
	for _, l := range ordered {
		p, err := r.Catalog.DecrementStock(ctx, l.Ref, l.Quantity)
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, domain.ProductVanished(l.Ref)
		}
		if err != nil {
			return nil, err
		}
		products[l.Ref] = p
	}

	reserved := make([]reservedLine, 0, len(lines))
	for _, l := range lines {
		reserved = append(reserved, reservedLine{line: l, product: products[l.Ref]})
	}
	return reserved, nil
}
