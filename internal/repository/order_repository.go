package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/google/uuid"
)

// OrderRepository is the Order Ledger. Rows are only ever inserted.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByOwner(ctx context.Context, ownerID int64) ([]*domain.Order, error)
}

type orderRepository struct {
	q querier
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO orders (id, owner_id, owner_name, status, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID,
		order.OwnerID,
		order.OwnerName,
		string(order.Status),
		order.Total,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, line := range order.Lines {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, product_kind, product_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID,
			string(line.Ref.Kind),
			line.Ref.ID,
			line.Name,
			line.Quantity,
			line.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order line %s: %w", line.Ref, err)
		}
	}

	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, owner_id, owner_name, status, total, created_at
		FROM orders
		WHERE id = $1`

	o, err := scanOrder(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}

	lines, err := r.queryLines(ctx, `
		SELECT order_id, product_kind, product_id, product_name, quantity, unit_price
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return o, nil
}

// ListOrdersByOwner returns the owner's orders, most recent first.
func (r *orderRepository) ListOrdersByOwner(ctx context.Context, ownerID int64) ([]*domain.Order, error) {
	query := `
		SELECT id, owner_id, owner_name, status, total, created_at
		FROM orders
		WHERE owner_id = $1
		ORDER BY created_at DESC, seq DESC`

	rows, err := r.q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	if len(orders) == 0 {
		return orders, nil
	}

	lines, err := r.queryLines(ctx, `
		SELECT l.order_id, l.product_kind, l.product_id, l.product_name, l.quantity, l.unit_price
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE o.owner_id = $1
		ORDER BY l.id`, ownerID)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Lines = lines[o.ID]
	}
	return orders, nil
}

func scanOrder(row scanner) (*domain.Order, error) {
	o := &domain.Order{}
	var status string
	if err := row.Scan(&o.ID, &o.OwnerID, &o.OwnerName, &status, &o.Total, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}

func (r *orderRepository) queryLines(ctx context.Context, query string, arg any) (map[uuid.UUID][]domain.OrderLine, error) {
	rows, err := r.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[uuid.UUID][]domain.OrderLine)
	for rows.Next() {
		var orderID uuid.UUID
		var kind string
		var l domain.OrderLine
		if err := rows.Scan(&orderID, &kind, &l.Ref.ID, &l.Name, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		l.Ref.Kind = domain.Kind(kind)
		lines[orderID] = append(lines[orderID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}
