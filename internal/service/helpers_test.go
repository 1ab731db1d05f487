package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fjod/game-hardware-store/internal/cache"
	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/fjod/game-hardware-store/internal/identity"
	"github.com/fjod/game-hardware-store/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	zelda        = domain.ProductRef{Kind: domain.KindGame, ID: 1}
	hollowKnight = domain.ProductRef{Kind: domain.KindGame, ID: 3}
	celeste      = domain.ProductRef{Kind: domain.KindGame, ID: 5}
	rtx4070      = domain.ProductRef{Kind: domain.KindHardware, ID: 1}
	samsung990   = domain.ProductRef{Kind: domain.KindHardware, ID: 5}
)

func asOwner(id int64) identity.Owner {
	return identity.Owner{ID: id}
}

func setupStore(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations())

	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func setStock(t *testing.T, store Store, ref domain.ProductRef, stock int) {
	t.Helper()
	require.NoError(t, store.Repos().Catalog.SetStock(context.Background(), ref, stock))
}

func stockOf(t *testing.T, store Store, ref domain.ProductRef) int {
	t.Helper()
	p, err := store.Repos().Catalog.GetProduct(context.Background(), ref)
	require.NoError(t, err)
	return p.Stock
}

// putLine writes a cart line directly, skipping the advisory stock check.
func putLine(t *testing.T, store Store, ownerID int64, ref domain.ProductRef, qty int) *domain.CartLine {
	t.Helper()
	line := &domain.CartLine{OwnerID: ownerID, Ref: ref, Quantity: qty, AddedAt: time.Now().UTC()}
	require.NoError(t, store.Repos().Carts.InsertLine(context.Background(), line))
	return line
}

func cartQuantities(t *testing.T, store Store, ownerID int64) map[domain.ProductRef]int {
	t.Helper()
	lines, err := store.Repos().Carts.ListLines(context.Background(), ownerID)
	require.NoError(t, err)

	out := make(map[domain.ProductRef]int, len(lines))
	for _, l := range lines {
		out[l.Ref] = l.Quantity
	}
	return out
}

// faultyStore wraps a real store and swaps failing repositories into the
// transaction.
type faultyStore struct {
	Store
	ordersErr error
	outboxErr error
	cartsErr  error
	panicMsg  string
}

func (s *faultyStore) WithinTx(ctx context.Context, fn func(repository.Repos) error) error {
	return s.Store.WithinTx(ctx, func(r repository.Repos) error {
		if s.ordersErr != nil {
			r.Orders = failingOrders{err: s.ordersErr}
		}
		if s.outboxErr != nil {
			r.Outbox = failingOutbox{err: s.outboxErr}
		}
		if s.cartsErr != nil || s.panicMsg != "" {
			r.Carts = &failingCarts{CartRepository: r.Carts, err: s.cartsErr, panicMsg: s.panicMsg}
		}
		return fn(r)
	})
}

type failingOrders struct{ err error }

func (f failingOrders) CreateOrder(context.Context, *domain.Order) error { return f.err }

func (f failingOrders) GetOrderByID(context.Context, uuid.UUID) (*domain.Order, error) {
	return nil, f.err
}

func (f failingOrders) ListOrdersByOwner(context.Context, int64) ([]*domain.Order, error) {
	return nil, f.err
}

type failingOutbox struct{ err error }

func (f failingOutbox) InsertEvent(context.Context, *repository.OutboxEvent) error { return f.err }

func (f failingOutbox) GetUnprocessedEvents(context.Context, int) ([]*repository.OutboxEvent, error) {
	return nil, f.err
}

func (f failingOutbox) MarkEventAsProcessed(context.Context, int64) error { return f.err }

// failingCarts lets reads through and fails the final cart clean-up.
type failingCarts struct {
	repository.CartRepository
	err      error
	panicMsg string
}

func (f *failingCarts) DeleteLines(ctx context.Context, ids []int64) error {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.err
}

// recordingCache is an in-memory OrderCache that records version bumps.
type recordingCache struct {
	mu       sync.Mutex
	evicted  []int64
	gets     int
	sets     int
	getErr   error
	orders   map[uuid.UUID]*domain.Order
	versions map[int64]int64
	byOwner  map[[2]int64][]*domain.Order
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		getErr:   cache.ErrCacheMiss,
		orders:   map[uuid.UUID]*domain.Order{},
		versions: map[int64]int64{},
		byOwner:  map[[2]int64][]*domain.Order{},
	}
}

func (c *recordingCache) GetOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if o, ok := c.orders[id]; ok {
		return o, nil
	}
	return nil, c.getErr
}

func (c *recordingCache) SetOrder(_ context.Context, o *domain.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.orders[o.ID] = o
	return nil
}

func (c *recordingCache) OwnerVersion(_ context.Context, ownerID int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[ownerID], nil
}

func (c *recordingCache) BumpOwnerVersion(_ context.Context, ownerID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evicted = append(c.evicted, ownerID)
	c.versions[ownerID]++
	return nil
}

func (c *recordingCache) GetOwnerOrders(_ context.Context, ownerID, version int64) ([]*domain.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if orders, ok := c.byOwner[[2]int64{ownerID, version}]; ok {
		return orders, nil
	}
	return nil, c.getErr
}

func (c *recordingCache) SetOwnerOrders(_ context.Context, ownerID, version int64, orders []*domain.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.byOwner[[2]int64{ownerID, version}] = orders
	return nil
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
