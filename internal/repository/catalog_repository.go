package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/fjod/game-hardware-store/internal/domain"
)

// CatalogRepository is the Catalog Provider backed by the games and
// hardware tables.
type CatalogRepository interface {
	GetProduct(ctx context.Context, ref domain.ProductRef) (*domain.Product, error)
	// DecrementStock removes quantity units only if that many are on hand
	// and returns the product as it is after the decrement.
	DecrementStock(ctx context.Context, ref domain.ProductRef, quantity int) (*domain.Product, error)
	SaveProduct(ctx context.Context, p *domain.Product) (*domain.Product, error)
	SetStock(ctx context.Context, ref domain.ProductRef, stock int) error
	// DeleteProduct removes the catalog row. Cart lines pointing at it are
	// left in place and surface as vanished products.
	DeleteProduct(ctx context.Context, ref domain.ProductRef) error
	Restock(ctx context.Context, gameLevel, hardwareLevel int) (*domain.RestockReport, error)
	ListLowStock(ctx context.Context, threshold int) ([]*domain.Product, error)
}

type catalogTable struct {
	name    string
	columns string
	scan    func(scanner) (*domain.Product, error)
}

var catalogTables = map[domain.Kind]catalogTable{
	domain.KindGame: {
		name:    "games",
		columns: "id, title, platform, genre, price, stock",
		scan: func(row scanner) (*domain.Product, error) {
			p := &domain.Product{Ref: domain.ProductRef{Kind: domain.KindGame}, Game: &domain.GameDetails{}}
			err := row.Scan(&p.Ref.ID, &p.Game.Title, &p.Game.Platform, &p.Game.Genre, &p.Price, &p.Stock)
			return p, err
		},
	},
	domain.KindHardware: {
		name:    "hardware",
		columns: "id, category, brand, model, price, stock",
		scan: func(row scanner) (*domain.Product, error) {
			p := &domain.Product{Ref: domain.ProductRef{Kind: domain.KindHardware}, Hardware: &domain.HardwareDetails{}}
			err := row.Scan(&p.Ref.ID, &p.Hardware.Category, &p.Hardware.Brand, &p.Hardware.Model, &p.Price, &p.Stock)
			return p, err
		},
	},
}

func tableFor(kind domain.Kind) (catalogTable, error) {
	t, ok := catalogTables[kind]
	if !ok {
		return catalogTable{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	return t, nil
}

type catalogRepository struct {
	q querier
}

func (r *catalogRepository) GetProduct(ctx context.Context, ref domain.ProductRef) (*domain.Product, error) {
	t, err := tableFor(ref.Kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, t.columns, t.name)
	p, err := t.scan(r.q.QueryRowContext(ctx, query, ref.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ProductNotFound(ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", ref, err)
	}
	return p, nil
}

func (r *catalogRepository) DecrementStock(ctx context.Context, ref domain.ProductRef, quantity int) (*domain.Product, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	t, err := tableFor(ref.Kind)
	if err != nil {
		return nil, err
	}

	// compare and decrement in one statement; zero rows means the guard failed
	query := fmt.Sprintf(`
		UPDATE %s
		SET stock = stock - $1
		WHERE id = $2 AND stock >= $1
		RETURNING %s`, t.name, t.columns)

	p, err := t.scan(r.q.QueryRowContext(ctx, query, quantity, ref.ID))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to decrement stock of %s: %w", ref, err)
	}

	current, errGet := r.GetProduct(ctx, ref)
	if errGet != nil {
		return nil, errGet
	}
	return nil, domain.InsufficientStock(ref, current.DisplayName(), quantity, current.Stock)
}

// SaveProduct creates the product when Ref.ID is zero and updates the
// existing row otherwise.
func (r *catalogRepository) SaveProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if p.Stock < 0 {
		return nil, fmt.Errorf("stock must not be negative: %d", p.Stock)
	}
	t, err := tableFor(p.Ref.Kind)
	if err != nil {
		return nil, err
	}

	var query string
	var args []any
	switch p.Ref.Kind {
	case domain.KindGame:
		if p.Game == nil {
			return nil, errors.New("game details are required")
		}
		args = []any{p.Game.Title, p.Game.Platform, p.Game.Genre, p.Price, p.Stock}
		if p.Ref.ID == 0 {
			query = `INSERT INTO games (title, platform, genre, price, stock) VALUES ($1, $2, $3, $4, $5)`
		} else {
			query = `UPDATE games SET title = $1, platform = $2, genre = $3, price = $4, stock = $5 WHERE id = $6`
		}
	case domain.KindHardware:
		if p.Hardware == nil {
			return nil, errors.New("hardware details are required")
		}
		args = []any{p.Hardware.Category, p.Hardware.Brand, p.Hardware.Model, p.Price, p.Stock}
		if p.Ref.ID == 0 {
			query = `INSERT INTO hardware (category, brand, model, price, stock) VALUES ($1, $2, $3, $4, $5)`
		} else {
			query = `UPDATE hardware SET category = $1, brand = $2, model = $3, price = $4, stock = $5 WHERE id = $6`
		}
	}
	if p.Ref.ID != 0 {
		args = append(args, p.Ref.ID)
	}

	saved, err := t.scan(r.q.QueryRowContext(ctx, query+" RETURNING "+t.columns, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ProductNotFound(p.Ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save product %s: %w", p.Ref, err)
	}
	return saved, nil
}

func (r *catalogRepository) SetStock(ctx context.Context, ref domain.ProductRef, stock int) error {
	if stock < 0 {
		return fmt.Errorf("stock must not be negative: %d", stock)
	}
	t, err := tableFor(ref.Kind)
	if err != nil {
		return err
	}

	res, err := r.q.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET stock = $1 WHERE id = $2`, t.name), stock, ref.ID)
	if err != nil {
		return fmt.Errorf("failed to set stock of %s: %w", ref, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.ProductNotFound(ref)
	}
	return nil
}

func (r *catalogRepository) DeleteProduct(ctx context.Context, ref domain.ProductRef) error {
	t, err := tableFor(ref.Kind)
	if err != nil {
		return err
	}

	res, err := r.q.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.name), ref.ID)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", ref, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.ProductNotFound(ref)
	}
	return nil
}

// Restock refills only sold-out rows.
func (r *catalogRepository) Restock(ctx context.Context, gameLevel, hardwareLevel int) (*domain.RestockReport, error) {
	report := &domain.RestockReport{}

	games, err := r.refill(ctx, "games", gameLevel)
	if err != nil {
		return nil, err
	}
	report.Games = games

	hardware, err := r.refill(ctx, "hardware", hardwareLevel)
	if err != nil {
		return nil, err
	}
	report.Hardware = hardware

	return report, nil
}

func (r *catalogRepository) refill(ctx context.Context, table string, level int) (int64, error) {
	res, err := r.q.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET stock = $1 WHERE stock = 0`, table), level)
	if err != nil {
		return 0, fmt.Errorf("failed to restock %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

func (r *catalogRepository) ListLowStock(ctx context.Context, threshold int) ([]*domain.Product, error) {
	var products []*domain.Product
	for _, kind := range []domain.Kind{domain.KindGame, domain.KindHardware} {
		t := catalogTables[kind]
		query := fmt.Sprintf(`SELECT %s FROM %s WHERE stock < $1 ORDER BY stock, id`, t.columns, t.name)

		rows, err := r.q.QueryContext(ctx, query, threshold)
		if err != nil {
			return nil, fmt.Errorf("failed to query low stock %s: %w", t.name, err)
		}
		for rows.Next() {
			p, err := t.scan(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan product: %w", err)
			}
			products = append(products, p)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("row iteration error: %w", err)
		}
		rows.Close()
	}

	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Stock != products[j].Stock {
			return products[i].Stock < products[j].Stock
		}
		return products[i].Ref.Less(products[j].Ref)
	})
	return products, nil
}
