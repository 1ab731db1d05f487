package service

import (
	"context"
	"errors"

	"github.com/fjod/game-hardware-store/internal/domain"
)

// validate is the early, non-authoritative pass over the cart. It reads the
// live catalog without holding any lock.
func (s *CheckoutServiceImpl) validate(ctx context.Context, lines []domain.CartLine) error {
	if len(lines) == 0 {
		return domain.ErrEmptyCart
	}

	catalog := s.store.Repos().Catalog
	for _, l := range lines {
		p, err := catalog.GetProduct(ctx, l.Ref)
		if errors.Is(err, domain.ErrProductNotFound) {
			return domain.ProductVanished(l.Ref)
		}
		if err != nil {
			return err
		}
		if !p.HasStock(l.Quantity) {
			return domain.InsufficientStock(l.Ref, p.DisplayName(), l.Quantity, p.Stock)
		}
	}
	return nil
}
