package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/fjod/game-hardware-store/internal/identity"
	"github.com/fjod/game-hardware-store/internal/repository"
	"github.com/google/uuid"
)

// commit writes the order with name and price captured from the reserved
// products, queues the OrderCompleted event and empties the cart.
func (s *CheckoutServiceImpl) commit(ctx context.Context, r repository.Repos, owner identity.Owner, reserved []reservedLine) (*domain.Order, error) {
	order := &domain.Order{
		ID:        uuid.New(),
		OwnerID:   owner.ID,
		OwnerName: owner.Name,
		Status:    domain.OrderStatusCompleted,
		Lines:     make([]domain.OrderLine, 0, len(reserved)),
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	lineIDs := make([]int64, 0, len(reserved))
	for _, rl := range reserved {
		order.Lines = append(order.Lines, domain.OrderLine{
			Ref:       rl.line.Ref,
			Name:      rl.product.DisplayName(),
			Quantity:  rl.line.Quantity,
			UnitPrice: rl.product.Price,
		})
		lineIDs = append(lineIDs, rl.line.ID)
	}
	order.Total = order.LinesTotal()

	if err := r.Orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(domain.NewOrderCompletedEvent(order))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order event: %w", err)
	}
	err = r.Outbox.InsertEvent(ctx, &repository.OutboxEvent{
		AggregateId: order.ID.String(),
		EventType:   domain.EventTypeOrderCompleted,
		Payload:     payload,
		CreatedAt:   order.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	if err := r.Carts.DeleteLines(ctx, lineIDs); err != nil {
		return nil, err
	}
	return order, nil
}
