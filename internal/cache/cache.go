package cache

import (
	"context"
	"errors"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/google/uuid"
)

// OrderCache holds read copies of ledger data. Orders never change once
// written, so single orders need no invalidation; owner lists do.
//
// Owner lists are stored under the owner's current version. A reader takes
// the version before it queries the database, and checkout bumps it after
// commit, so a list read before the commit lands under a version nobody
// reads again.
type OrderCache interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	SetOrder(ctx context.Context, order *domain.Order) error
	OwnerVersion(ctx context.Context, ownerID int64) (int64, error)
	BumpOwnerVersion(ctx context.Context, ownerID int64) error
	GetOwnerOrders(ctx context.Context, ownerID, version int64) ([]*domain.Order, error)
	SetOwnerOrders(ctx context.Context, ownerID, version int64, orders []*domain.Order) error
}

var ErrCacheMiss = errors.New("cache miss")

// NoopCache always misses. Used when no Redis address is configured.
type NoopCache struct{}

func (NoopCache) GetOrder(context.Context, uuid.UUID) (*domain.Order, error) {
	return nil, ErrCacheMiss
}

func (NoopCache) SetOrder(context.Context, *domain.Order) error {
	return nil
}

func (NoopCache) OwnerVersion(context.Context, int64) (int64, error) {
	return 0, nil
}

func (NoopCache) BumpOwnerVersion(context.Context, int64) error {
	return nil
}

func (NoopCache) GetOwnerOrders(context.Context, int64, int64) ([]*domain.Order, error) {
	return nil, ErrCacheMiss
}

func (NoopCache) SetOwnerOrders(context.Context, int64, int64, []*domain.Order) error {
	return nil
}
