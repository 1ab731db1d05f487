package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client, 15*time.Minute), mr
}

func testOrder(owner int64) *domain.Order {
	return &domain.Order{
		ID:      uuid.New(),
		OwnerID: owner,
		Status:  domain.OrderStatusCompleted,
		Total:   decimal.RequireFromString("139.98"),
		Lines: []domain.OrderLine{
			{Ref: domain.ProductRef{Kind: domain.KindGame, ID: 1}, Name: "Zelda", Quantity: 2, UnitPrice: decimal.RequireFromString("69.99")},
		},
		CreatedAt: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestOrder_SetThenGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	o := testOrder(1)

	require.NoError(t, c.SetOrder(ctx, o))

	ttl := mr.TTL(orderKey(o.ID))
	assert.GreaterOrEqual(t, ttl, 15*time.Minute)
	assert.Less(t, ttl, 20*time.Minute)

	got, err := c.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.True(t, o.Total.Equal(got.Total))
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Zelda", got.Lines[0].Name)
	assert.True(t, o.CreatedAt.Equal(got.CreatedAt))
}

func TestOrder_CacheMiss(t *testing.T) {
	c, _ := setupTestRedis(t)

	got, err := c.GetOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestOrder_InvalidJSON(t *testing.T) {
	c, mr := setupTestRedis(t)
	id := uuid.New()
	require.NoError(t, mr.Set(orderKey(id), "{not json"))

	_, err := c.GetOrder(context.Background(), id)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestOwnerOrders_SetGet(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	orders := []*domain.Order{testOrder(3), testOrder(3)}

	v, err := c.OwnerVersion(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, c.SetOwnerOrders(ctx, 3, v, orders))
	assert.Equal(t, ownerListTTL, mr.TTL(ownerKey(3, v)))

	got, err := c.GetOwnerOrders(ctx, 3, v)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, orders[1].ID, got[1].ID)
}

func TestOwnerOrders_BumpHidesOlderList(t *testing.T) {
	c, _ := setupTestRedis(t)
	ctx := context.Background()

	v0, err := c.OwnerVersion(ctx, 3)
	require.NoError(t, err)

	// checkout commits and bumps while a reader still holds v0
	require.NoError(t, c.BumpOwnerVersion(ctx, 3))
	require.NoError(t, c.SetOwnerOrders(ctx, 3, v0, []*domain.Order{}))

	v1, err := c.OwnerVersion(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, v0+1, v1)

	_, err = c.GetOwnerOrders(ctx, 3, v1)
	assert.ErrorIs(t, err, ErrCacheMiss)

	// other owners are unaffected
	v, err := c.OwnerVersion(ctx, 4)
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestOwnerVersion_Corrupt(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(versionKey(5), "abc"))

	_, err := c.OwnerVersion(context.Background(), 5)
	assert.Error(t, err)
}

func TestOwnerOrders_Expire(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.SetOwnerOrders(ctx, 4, 0, []*domain.Order{testOrder(4)}))
	mr.FastForward(2 * time.Minute)

	_, err := c.GetOwnerOrders(ctx, 4, 0)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisDown(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.Close()

	_, err := c.GetOrder(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestNoopCache(t *testing.T) {
	var c OrderCache = NoopCache{}
	ctx := context.Background()

	assert.NoError(t, c.SetOrder(ctx, testOrder(1)))
	_, err := c.GetOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.SetOwnerOrders(ctx, 1, 0, []*domain.Order{testOrder(1)}))
	_, err = c.GetOwnerOrders(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.BumpOwnerVersion(ctx, 1))
	v, err := c.OwnerVersion(ctx, 1)
	assert.NoError(t, err)
	assert.Zero(t, v)
}
