package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/game-hardware-store/internal/domain"
)

type CartRepository interface {
	ListLines(ctx context.Context, ownerID int64) ([]domain.CartLine, error)
	GetLine(ctx context.Context, lineID int64) (*domain.CartLine, error)
	FindLine(ctx context.Context, ownerID int64, ref domain.ProductRef) (*domain.CartLine, error)
	InsertLine(ctx context.Context, line *domain.CartLine) error
	UpdateQuantity(ctx context.Context, lineID int64, quantity int) error
	DeleteLine(ctx context.Context, lineID int64) error
	DeleteLines(ctx context.Context, lineIDs []int64) error
	DeleteAll(ctx context.Context, ownerID int64) (int64, error)
	CountItems(ctx context.Context, ownerID int64) (domain.CartCount, error)
}

const cartLineColumns = `id, owner_id, product_kind, product_id, quantity, added_at`

type cartRepository struct {
	q querier
}

func scanCartLine(row scanner) (*domain.CartLine, error) {
	l := &domain.CartLine{}
	var kind string
	if err := row.Scan(&l.ID, &l.OwnerID, &kind, &l.Ref.ID, &l.Quantity, &l.AddedAt); err != nil {
		return nil, err
	}
	l.Ref.Kind = domain.Kind(kind)
	return l, nil
}

func (r *cartRepository) ListLines(ctx context.Context, ownerID int64) ([]domain.CartLine, error) {
	query := `SELECT ` + cartLineColumns + ` FROM cart_lines WHERE owner_id = $1 ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		l, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}

func (r *cartRepository) GetLine(ctx context.Context, lineID int64) (*domain.CartLine, error) {
	query := `SELECT ` + cartLineColumns + ` FROM cart_lines WHERE id = $1`

	l, err := scanCartLine(r.q.QueryRowContext(ctx, query, lineID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCartLineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart line %d: %w", lineID, err)
	}
	return l, nil
}

func (r *cartRepository) FindLine(ctx context.Context, ownerID int64, ref domain.ProductRef) (*domain.CartLine, error) {
	query := `SELECT ` + cartLineColumns + `
		FROM cart_lines
		WHERE owner_id = $1 AND product_kind = $2 AND product_id = $3`

	l, err := scanCartLine(r.q.QueryRowContext(ctx, query, ownerID, string(ref.Kind), ref.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCartLineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cart line for %s: %w", ref, err)
	}
	return l, nil
}

// InsertLine stores the line and sets its ID.
func (r *cartRepository) InsertLine(ctx context.Context, line *domain.CartLine) error {
	query := `
		INSERT INTO cart_lines (owner_id, product_kind, product_id, quantity, added_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.q.QueryRowContext(ctx, query,
		line.OwnerID,
		string(line.Ref.Kind),
		line.Ref.ID,
		line.Quantity,
		line.AddedAt,
	).Scan(&line.ID)
	if err != nil {
		return fmt.Errorf("failed to insert cart line: %w", err)
	}
	return nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, lineID int64, quantity int) error {
	res, err := r.q.ExecContext(ctx, `UPDATE cart_lines SET quantity = $1 WHERE id = $2`, quantity, lineID)
	if err != nil {
		return fmt.Errorf("failed to update cart line %d: %w", lineID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrCartLineNotFound
	}
	return nil
}

// DeleteLine is idempotent.
func (r *cartRepository) DeleteLine(ctx context.Context, lineID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM cart_lines WHERE id = $1`, lineID); err != nil {
		return fmt.Errorf("failed to delete cart line %d: %w", lineID, err)
	}
	return nil
}

func (r *cartRepository) DeleteLines(ctx context.Context, lineIDs []int64) error {
	for _, id := range lineIDs {
		if err := r.DeleteLine(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *cartRepository) DeleteAll(ctx context.Context, ownerID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM cart_lines WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// CountItems counts the owner's lines and the units across them.
func (r *cartRepository) CountItems(ctx context.Context, ownerID int64) (domain.CartCount, error) {
	var count domain.CartCount
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM cart_lines WHERE owner_id = $1`, ownerID).
		Scan(&count.Lines, &count.Units)
	if err != nil {
		return domain.CartCount{}, fmt.Errorf("failed to count cart items: %w", err)
	}
	return count, nil
}
