package service

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/fjod/game-hardware-store/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartService is the Cart Store. Stock checks made here are advisory;
// only checkout settles stock.
type CartService struct {
	store Store
	log   *zap.Logger
}

func NewCartService(store Store, log *zap.Logger) *CartService {
	return &CartService{store: store, log: log}
}

// Add puts quantity more units of ref into the owner's cart, creating the
// line if needed.
func (s *CartService) Add(ctx context.Context, ownerID int64, ref domain.ProductRef, quantity int) (*domain.CartLine, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	var line *domain.CartLine
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		p, err := r.Catalog.GetProduct(ctx, ref)
		if err != nil {
			return err
		}

		existing, err := r.Carts.FindLine(ctx, ownerID, ref)
		if err != nil && !errors.Is(err, domain.ErrCartLineNotFound) {
			return err
		}

		want := quantity
		if existing != nil {
			want += existing.Quantity
		}
		if !p.HasStock(want) {
			return domain.InsufficientStock(ref, p.DisplayName(), want, p.Stock)
		}

		if existing != nil {
			if err := r.Carts.UpdateQuantity(ctx, existing.ID, want); err != nil {
				return err
			}
			existing.Quantity = want
			line = existing
			return nil
		}

		line = &domain.CartLine{
			OwnerID:  ownerID,
			Ref:      ref,
			Quantity: want,
			AddedAt:  time.Now().UTC(),
		}
		return r.Carts.InsertLine(ctx, line)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// SetQuantity replaces a line's quantity. Zero or less removes the line.
func (s *CartService) SetQuantity(ctx context.Context, ownerID, lineID int64, quantity int) (domain.CartMutation, error) {
	var mutation domain.CartMutation
	err := s.store.WithinTx(ctx, func(r repository.Repos) error {
		line, err := r.Carts.GetLine(ctx, lineID)
		if errors.Is(err, domain.ErrCartLineNotFound) && quantity <= 0 {
			mutation = domain.CartMutationRemoved
			return nil
		}
		if err != nil {
			return err
		}
		if line.OwnerID != ownerID {
			return domain.ErrForbidden
		}

		if quantity <= 0 {
			mutation = domain.CartMutationRemoved
			return r.Carts.DeleteLine(ctx, lineID)
		}

		p, err := r.Catalog.GetProduct(ctx, line.Ref)
		if err != nil {
			return err
		}
		if !p.HasStock(quantity) {
			return domain.InsufficientStock(line.Ref, p.DisplayName(), quantity, p.Stock)
		}

		mutation = domain.CartMutationUpdated
		return r.Carts.UpdateQuantity(ctx, lineID, quantity)
	})
	if err != nil {
		return "", err
	}
	return mutation, nil
}

// Remove deletes a line. Removing a line that does not exist succeeds.
func (s *CartService) Remove(ctx context.Context, ownerID, lineID int64) error {
	return s.store.WithinTx(ctx, func(r repository.Repos) error {
		line, err := r.Carts.GetLine(ctx, lineID)
		if errors.Is(err, domain.ErrCartLineNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if line.OwnerID != ownerID {
			return domain.ErrForbidden
		}
		return r.Carts.DeleteLine(ctx, lineID)
	})
}

func (s *CartService) Clear(ctx context.Context, ownerID int64) (int64, error) {
	n, err := s.store.Repos().Carts.DeleteAll(ctx, ownerID)
	if err != nil {
		s.log.Error("clear cart failed", zap.Int64("owner_id", ownerID), zap.Error(err))
		return 0, err
	}
	return n, nil
}

// List prices every line from the live catalog.
func (s *CartService) List(ctx context.Context, ownerID int64) (*domain.CartView, error) {
	repos := s.store.Repos()

	lines, err := repos.Carts.ListLines(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	view := &domain.CartView{
		OwnerID: ownerID,
		Items:   make([]domain.CartItemView, 0, len(lines)),
		Total:   decimal.Zero,
	}
	for _, l := range lines {
		item := domain.CartItemView{Line: l, Subtotal: decimal.Zero}

		p, err := repos.Catalog.GetProduct(ctx, l.Ref)
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			item.Name = l.Ref.String()
			item.Missing = true
		case err != nil:
			return nil, err
		default:
			item.Name = p.DisplayName()
			item.UnitPrice = p.Price
			item.Stock = p.Stock
			item.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		}

		view.Items = append(view.Items, item)
		view.Total = view.Total.Add(item.Subtotal)
	}
	return view, nil
}

func (s *CartService) Count(ctx context.Context, ownerID int64) (domain.CartCount, error) {
	return s.store.Repos().Carts.CountItems(ctx, ownerID)
}
