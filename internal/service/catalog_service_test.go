package service

import (
	"context"
	"testing"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_SaveProduct(t *testing.T) {
	store := setupStore(t)
	svc := NewCatalogService(store.Repos().Catalog, 10, nopLogger())
	ctx := context.Background()

	created, err := svc.SaveProduct(ctx, &domain.Product{
		Ref:   domain.ProductRef{Kind: domain.KindGame},
		Price: decimal.RequireFromString("24.99"),
		Stock: 7,
		Game:  &domain.GameDetails{Title: "Hades", Platform: "PC", Genre: "Roguelike"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.Ref.ID)

	got, err := store.Repos().Catalog.GetProduct(ctx, created.Ref)
	require.NoError(t, err)
	assert.Equal(t, "Hades", got.DisplayName())
	assert.Equal(t, 7, got.Stock)
}

func TestCatalogService_SaveProduct_Invalid(t *testing.T) {
	store := setupStore(t)
	svc := NewCatalogService(store.Repos().Catalog, 10, nopLogger())
	ctx := context.Background()

	tests := []struct {
		name    string
		product *domain.Product
		err     error
	}{
		{
			name:    "unknown kind",
			product: &domain.Product{Ref: domain.ProductRef{Kind: "console"}},
			err:     domain.ErrUnknownKind,
		},
		{
			name: "negative price",
			product: &domain.Product{
				Ref:   domain.ProductRef{Kind: domain.KindGame},
				Price: decimal.RequireFromString("-1"),
				Game:  &domain.GameDetails{Title: "x"},
			},
			err: ErrInvalidProduct,
		},
		{
			name: "negative stock",
			product: &domain.Product{
				Ref:      domain.ProductRef{Kind: domain.KindHardware},
				Stock:    -3,
				Hardware: &domain.HardwareDetails{Brand: "x"},
			},
			err: ErrInvalidProduct,
		},
		{
			name:    "missing details",
			product: &domain.Product{Ref: domain.ProductRef{Kind: domain.KindHardware}},
			err:     ErrInvalidProduct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveProduct(ctx, tt.product)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCatalogService_Restock(t *testing.T) {
	store := setupStore(t)
	svc := NewCatalogService(store.Repos().Catalog, 10, nopLogger())
	ctx := context.Background()

	report, err := svc.Restock(ctx)
	require.NoError(t, err)
	// Gran Turismo 7 and the ASUS board are seeded sold out
	assert.Equal(t, int64(1), report.Games)
	assert.Equal(t, int64(1), report.Hardware)

	assert.Equal(t, GameRestockLevel, stockOf(t, store, domain.ProductRef{Kind: domain.KindGame, ID: 4}))
	assert.Equal(t, HardwareRestockLevel, stockOf(t, store, domain.ProductRef{Kind: domain.KindHardware, ID: 3}))
	assert.Equal(t, 25, stockOf(t, store, zelda))

	report, err = svc.Restock(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Games+report.Hardware)
}

func TestCatalogService_LowStock(t *testing.T) {
	store := setupStore(t)
	svc := NewCatalogService(store.Repos().Catalog, 10, nopLogger())
	ctx := context.Background()

	low, err := svc.LowStock(ctx, 0)
	require.NoError(t, err)
	require.Len(t, low, 5)
	assert.Equal(t, domain.ProductRef{Kind: domain.KindGame, ID: 4}, low[0].Ref)
	assert.Equal(t, domain.ProductRef{Kind: domain.KindHardware, ID: 3}, low[1].Ref)

	low, err = svc.LowStock(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, low, 3)
}

func TestCatalogService_SetStock(t *testing.T) {
	store := setupStore(t)
	svc := NewCatalogService(store.Repos().Catalog, 10, nopLogger())
	ctx := context.Background()

	require.NoError(t, svc.SetStock(ctx, celeste, 2))
	assert.Equal(t, 2, stockOf(t, store, celeste))

	assert.ErrorIs(t, svc.SetStock(ctx, celeste, -1), ErrInvalidProduct)
	assert.ErrorIs(t, svc.SetStock(ctx, domain.ProductRef{Kind: "console", ID: 1}, 1), domain.ErrUnknownKind)
	assert.ErrorIs(t, svc.SetStock(ctx, domain.ProductRef{Kind: domain.KindGame, ID: 404}, 1), domain.ErrProductNotFound)
	assert.Equal(t, 2, stockOf(t, store, celeste))
}

func TestCatalogService_DeleteProduct_CheckoutSeesVanished(t *testing.T) {
	store := setupStore(t)
	svc := NewCatalogService(store.Repos().Catalog, 10, nopLogger())
	carts := NewCartService(store, nopLogger())
	ctx := context.Background()

	_, err := carts.Add(ctx, alice, hollowKnight, 1)
	require.NoError(t, err)
	_, err = carts.Add(ctx, alice, rtx4070, 1)
	require.NoError(t, err)
	rtxStock := stockOf(t, store, rtx4070)

	require.NoError(t, svc.DeleteProduct(ctx, hollowKnight))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, hollowKnight), domain.ErrProductNotFound)

	view, err := carts.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.True(t, view.Items[0].Missing)

	_, err = newCheckout(store, newRecordingCache()).Checkout(ctx, asOwner(alice))
	require.ErrorIs(t, err, domain.ErrProductVanished)
	var pe *domain.ProductError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, hollowKnight, pe.Ref)

	assert.Equal(t, rtxStock, stockOf(t, store, rtx4070))
	assert.Equal(t, map[domain.ProductRef]int{hollowKnight: 1, rtx4070: 1}, cartQuantities(t, store, alice))
}
