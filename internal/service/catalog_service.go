package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/fjod/game-hardware-store/internal/repository"
	"go.uber.org/zap"
)

const (
	GameRestockLevel     = 100
	HardwareRestockLevel = 50
)

var ErrInvalidProduct = errors.New("invalid product")

// CatalogService holds the back-office stock operations.
type CatalogService struct {
	catalog           repository.CatalogRepository
	lowStockThreshold int
	log               *zap.Logger
}

func NewCatalogService(catalog repository.CatalogRepository, lowStockThreshold int, log *zap.Logger) *CatalogService {
	return &CatalogService{
		catalog:           catalog,
		lowStockThreshold: lowStockThreshold,
		log:               log,
	}
}

func (s *CatalogService) SaveProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if !p.Ref.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, p.Ref.Kind)
	}
	if p.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	if (p.Ref.Kind == domain.KindGame && p.Game == nil) || (p.Ref.Kind == domain.KindHardware && p.Hardware == nil) {
		return nil, fmt.Errorf("%w: %s details are required", ErrInvalidProduct, p.Ref.Kind)
	}

	saved, err := s.catalog.SaveProduct(ctx, p)
	if err != nil {
		return nil, err
	}
	s.log.Info("product saved", zap.Stringer("product", saved.Ref), zap.Int("stock", saved.Stock))
	return saved, nil
}

// SetStock overwrites the on-hand count of one product.
func (s *CatalogService) SetStock(ctx context.Context, ref domain.ProductRef, stock int) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	if stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}

	if err := s.catalog.SetStock(ctx, ref, stock); err != nil {
		return err
	}
	s.log.Info("stock set", zap.Stringer("product", ref), zap.Int("stock", stock))
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, ref domain.ProductRef) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	if err := s.catalog.DeleteProduct(ctx, ref); err != nil {
		return err
	}
	s.log.Info("product deleted", zap.Stringer("product", ref))
	return nil
}

// Restock refills sold-out games and hardware to their standard levels.
func (s *CatalogService) Restock(ctx context.Context) (*domain.RestockReport, error) {
	report, err := s.catalog.Restock(ctx, GameRestockLevel, HardwareRestockLevel)
	if err != nil {
		return nil, err
	}
	s.log.Info("restock finished", zap.Int64("games", report.Games), zap.Int64("hardware", report.Hardware))
	return report, nil
}

// LowStock lists products below threshold; a non-positive threshold uses
// the configured default.
func (s *CatalogService) LowStock(ctx context.Context, threshold int) ([]*domain.Product, error) {
	if threshold <= 0 {
		threshold = s.lowStockThreshold
	}
	return s.catalog.ListLowStock(ctx, threshold)
}
