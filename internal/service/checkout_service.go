package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/game-hardware-store/internal/cache"
	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/fjod/game-hardware-store/internal/identity"
	"github.com/fjod/game-hardware-store/internal/logger"
	"github.com/fjod/game-hardware-store/internal/repository"
	"go.uber.org/zap"
)

type CheckoutService interface {
	Checkout(ctx context.Context, owner identity.Owner) (*domain.CheckoutResult, error)
}

// CheckoutServiceImpl turns a cart into an order. Stock is checked once
// outside the transaction and again, authoritatively, inside it.
type CheckoutServiceImpl struct {
	store Store
	cache cache.OrderCache
	log   *zap.Logger
	now   func() time.Time
}

func NewCheckoutService(store Store, orderCache cache.OrderCache, log *zap.Logger) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		store: store,
		cache: orderCache,
		log:   log,
		now:   time.Now,
	}
}

// Checkout places an order for everything in the owner's cart. The owner's
// display name is captured on the order for invoicing.
func (s *CheckoutServiceImpl) Checkout(ctx context.Context, owner identity.Owner) (*domain.CheckoutResult, error) {
	run := newCheckoutRun(owner.ID, logger.WithContext(ctx, s.log))

	lines, err := s.store.Repos().Carts.ListLines(ctx, owner.ID)
	if err != nil {
		return nil, run.abort(fmt.Errorf("failed to read cart: %w", err))
	}
	if err := s.validate(ctx, lines); err != nil {
		return nil, run.abort(err)
	}

	if err := run.advance(domain.CheckoutStatusReserving); err != nil {
		return nil, run.abort(err)
	}

	var order *domain.Order
	err = s.store.WithinTx(ctx, func(r repository.Repos) error {
		reserved, err := s.reserve(ctx, r, owner.ID)
		if err != nil {
			return err
		}

		if err := run.advance(domain.CheckoutStatusCommitting); err != nil {
			return err
		}

		order, err = s.commit(ctx, r, owner, reserved)
		return err
	})
	if err != nil {
		return nil, run.abort(err)
	}

	if err := run.advance(domain.CheckoutStatusCommitted); err != nil {
		// the transaction is already committed; report it as such
		run.log.Error("unexpected checkout transition", zap.Error(err))
	}
	s.bumpOwnerOrders(owner.ID)

	run.log.Info("checkout committed",
		zap.String("order_id", order.ID.String()),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Int("lines", len(order.Lines)))

	return &domain.CheckoutResult{
		Order:       order,
		Status:      run.status,
		Transitions: run.history,
	}, nil
}

// bumpOwnerOrders retires every owner list cached before this commit.
func (s *CheckoutServiceImpl) bumpOwnerOrders(ownerID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.BumpOwnerVersion(ctx, ownerID); err != nil {
		s.log.Error("cache invalidate error", zap.Int64("owner_id", ownerID), zap.Error(err))
	}
}

// checkoutRun tracks one pass through the checkout state machine.
type checkoutRun struct {
	ownerID int64
	status  domain.CheckoutStatus
	history []domain.CheckoutStatus
	log     *zap.Logger
}

func newCheckoutRun(ownerID int64, log *zap.Logger) *checkoutRun {
	return &checkoutRun{
		ownerID: ownerID,
		status:  domain.CheckoutStatusValidating,
		history: []domain.CheckoutStatus{domain.CheckoutStatusValidating},
		log:     log.With(zap.Int64("owner_id", ownerID)),
	}
}

func (r *checkoutRun) advance(next domain.CheckoutStatus) error {
	if !domain.CanTransitionTo(r.status, next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, r.status, next)
	}
	r.log.Debug("checkout transition", zap.Stringer("from", r.status), zap.Stringer("to", next))
	r.status = next
	r.history = append(r.history, next)
	return nil
}

// abort moves the run to ABORTED and tags err with the phase it failed in.
func (r *checkoutRun) abort(err error) error {
	phase := r.status
	if phase.IsTerminal() {
		return err
	}
	if errAdvance := r.advance(domain.CheckoutStatusAborted); errAdvance != nil {
		r.log.Error("unexpected checkout transition", zap.Error(errAdvance))
	}

	fields := []zap.Field{zap.Stringer("phase", phase), zap.Error(err)}
	var pe *domain.ProductError
	if errors.As(err, &pe) {
		fields = append(fields, zap.Stringer("product", pe.Ref))
	}
	r.log.Warn("checkout aborted", fields...)

	var ce *domain.CheckoutError
	if errors.As(err, &ce) {
		return err
	}
	return &domain.CheckoutError{Phase: phase, Err: err}
}
