package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const ownerListTTL = time.Minute

func NewRedisCache(client *redis.Client, baseTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	if err := r.get(ctx, orderKey(id), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r RedisCache) SetOrder(ctx context.Context, order *domain.Order) error {
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	return r.set(ctx, orderKey(order.ID), order, r.baseTTL+jitter)
}

// OwnerVersion reads the owner's list version. An owner who never checked
// out is at version 0.
func (r RedisCache) OwnerVersion(ctx context.Context, ownerID int64) (int64, error) {
	v, err := r.client.Get(ctx, versionKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failed: %w", err)
	}
	return v, nil
}

func (r RedisCache) BumpOwnerVersion(ctx context.Context, ownerID int64) error {
	if err := r.client.Incr(ctx, versionKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("redis incr failed: %w", err)
	}
	return nil
}

func (r RedisCache) GetOwnerOrders(ctx context.Context, ownerID, version int64) ([]*domain.Order, error) {
	var orders []*domain.Order
	if err := r.get(ctx, ownerKey(ownerID, version), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SetOwnerOrders stores the list under version. Lists under older versions
// are left to expire.
func (r RedisCache) SetOwnerOrders(ctx context.Context, ownerID, version int64, orders []*domain.Order) error {
	return r.set(ctx, ownerKey(ownerID, version), orders, ownerListTTL)
}

func (r RedisCache) get(ctx context.Context, key string, dest any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r RedisCache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func orderKey(id uuid.UUID) string {
	return fmt.Sprintf("order:%s", id)
}

func ownerKey(ownerID, version int64) string {
	return fmt.Sprintf("orders:owner:%d:v%d", ownerID, version)
}

func versionKey(ownerID int64) string {
	return fmt.Sprintf("orders:owner:%d:version", ownerID)
}
