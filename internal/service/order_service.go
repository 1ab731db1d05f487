package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/game-hardware-store/internal/cache"
	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/fjod/game-hardware-store/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// OrderService is the read side of the Order Ledger. Orders are created
// only by checkout.
type OrderService struct {
	orders repository.OrderRepository
	cache  cache.OrderCache
	log    *zap.Logger
	sfg    singleflight.Group // Prevents cache stampede
}

func NewOrderService(orders repository.OrderRepository, orderCache cache.OrderCache, log *zap.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		cache:  orderCache,
		log:    log,
	}
}

// GetOrder returns the order if ownerID placed it.
func (s *OrderService) GetOrder(ctx context.Context, ownerID int64, id uuid.UUID) (*domain.Order, error) {
	v, err, _ := s.sfg.Do("order:"+id.String(), func() (interface{}, error) {
		o, err := s.cache.GetOrder(ctx, id)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("cache get error", zap.Error(err))
		}

		o, err = s.orders.GetOrderByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if errSet := s.cache.SetOrder(ctx, o); errSet != nil {
			s.log.Warn("cache set error", zap.Error(errSet))
		}
		return o, nil
	})
	if err != nil {
		return nil, err
	}

	order := v.(*domain.Order)
	if order.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

// ListOrders returns the owner's orders, most recent first.
func (s *OrderService) ListOrders(ctx context.Context, ownerID int64) ([]*domain.Order, error) {
	version, err := s.cache.OwnerVersion(ctx, ownerID)
	if err != nil {
		s.log.Warn("cache version error", zap.Int64("owner_id", ownerID), zap.Error(err))
		return s.orders.ListOrdersByOwner(ctx, ownerID)
	}

	v, err, _ := s.sfg.Do(fmt.Sprintf("owner:%d:v%d", ownerID, version), func() (interface{}, error) {
		orders, err := s.cache.GetOwnerOrders(ctx, ownerID, version)
		if err == nil {
			return orders, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("cache get error", zap.Error(err))
		}

		orders, err = s.orders.ListOrdersByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}

		if errSet := s.cache.SetOwnerOrders(ctx, ownerID, version, orders); errSet != nil {
			s.log.Warn("cache set error", zap.Error(errSet))
		}
		return orders, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Order), nil
}
