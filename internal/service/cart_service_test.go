package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice int64 = 1
	bob   int64 = 2
)

func TestCartService_Add(t *testing.T) {
	store := setupStore(t)
	svc := NewCartService(store, nopLogger())
	ctx := context.Background()

	line, err := svc.Add(ctx, alice, celeste, 2)
	require.NoError(t, err)
	assert.NotZero(t, line.ID)
	assert.Equal(t, 2, line.Quantity)

	// same product merges into the existing line
	line2, err := svc.Add(ctx, alice, celeste, 3)
	require.NoError(t, err)
	assert.Equal(t, line.ID, line2.ID)
	assert.Equal(t, 5, line2.Quantity)

	assert.Equal(t, map[domain.ProductRef]int{celeste: 5}, cartQuantities(t, store, alice))
}

func TestCartService_Add_InvalidQuantity(t *testing.T) {
	store := setupStore(t)
	svc := NewCartService(store, nopLogger())
	ctx := context.Background()

	putLine(t, store, alice, zelda, 1)

	for _, qty := range []int{0, -1} {
		_, err := svc.Add(ctx, alice, zelda, qty)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
	assert.Equal(t, map[domain.ProductRef]int{zelda: 1}, cartQuantities(t, store, alice))
}

func TestCartService_Add_UnknownProduct(t *testing.T) {
	store := setupStore(t)
	svc := NewCartService(store, nopLogger())
	ctx := context.Background()

	_, err := svc.Add(ctx, alice, domain.ProductRef{Kind: domain.KindHardware, ID: 404}, 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.Add(ctx, alice, domain.ProductRef{Kind: "console", ID: 1}, 1)
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	assert.Empty(t, cartQuantities(t, store, alice))
}

func TestCartService_Add_CumulativeStockCheck(t *testing.T) {
	store := setupStore(t)
	svc := NewCartService(store, nopLogger())
	ctx := context.Background()

	_, err := svc.Add(ctx, alice, samsung990, 2)
	require.NoError(t, err)

	_, err = svc.Add(ctx, alice, samsung990, 2)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var pe *domain.ProductError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, samsung990, pe.Ref)
	assert.Equal(t, "Samsung 990 PRO 2TB", pe.Name)
	assert.Equal(t, 4, pe.Requested)
	assert.Equal(t, 3, pe.Available)

	assert.Equal(t, map[domain.ProductRef]int{samsung990: 2}, cartQuantities(t, store, alice))
}

func TestCartService_SetQuantity(t *testing.T) {
	store := setupStore(t)
	svc := NewCartService(store, nopLogger())
	ctx := context.Background()

	line := putLine(t, store, alice, hollowKnight, 1)

	m, err := svc.SetQuantity(ctx, alice, line.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.CartMutationUpdated, m)
	assert.Equal(t, 4, cartQuantities(t, store, alice)[hollowKnight])

	_, err = svc.SetQuantity(ctx, alice, line.ID, 9)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 4, cartQuantities(t, store, alice)[hollowKnight])

	m, err = svc.SetQuantity(ctx, alice, line.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.CartMutationRemoved, m)
	assert.Empty(t, cartQuantities(t, store, alice))
}

func TestCartService_SetQuantity_MissingLine(t *testing.T) {
	store := setupStore(t)
	svc := NewCartService(store, nopLogger())
	ctx := context.Background()

	m, err := svc.SetQuantity(ctx, alice, 999, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.CartMutationRemoved, m)

	_, err = svc.SetQuantity(ctx, alice, 999, 2)
	assert.ErrorIs(t, err, domain.ErrCartLineNotFound)
}

func TestCartService_OwnershipChecks(t *testing.T) {
	store := setupStore(t)
	svc := NewCartService(store, nopLogger())
	ctx := context.Background()

	line := putLine(t, store, alice, zelda, 2)

	_, err := svc.SetQuantity(ctx, bob, line.ID, 1)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.SetQuantity(ctx, bob, line.ID, 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.ErrorIs(t, svc.Remove(ctx, bob, line.ID), domain.ErrForbidden)

	assert.Equal(t, map[domain.ProductRef]int{zelda: 2}, cartQuantities(t, store, alice))
}

func TestCartService_Remove_Idempotent(t *testing.T) {
	store := setupStore(t)
	svc := NewCartService(store, nopLogger())
	ctx := context.Background()

	line := putLine(t, store, alice, zelda, 1)
	putLine(t, store, alice, rtx4070, 1)

	require.NoError(t, svc.Remove(ctx, alice, line.ID))
	before := cartQuantities(t, store, alice)

	require.NoError(t, svc.Remove(ctx, alice, line.ID))
	require.NoError(t, svc.Remove(ctx, alice, 12345))
	assert.Equal(t, before, cartQuantities(t, store, alice))
	assert.Equal(t, map[domain.ProductRef]int{rtx4070: 1}, before)
}

func TestCartService_Clear(t *testing.T) {
	store := setupStore(t)
	svc := NewCartService(store, nopLogger())
	ctx := context.Background()

	putLine(t, store, alice, zelda, 1)
	putLine(t, store, alice, rtx4070, 2)
	putLine(t, store, bob, zelda, 1)

	n, err := svc.Clear(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Empty(t, cartQuantities(t, store, alice))
	assert.Len(t, cartQuantities(t, store, bob), 1)

	n, err = svc.Clear(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCartService_List(t *testing.T) {
	store := setupStore(t)
	svc := NewCartService(store, nopLogger())
	ctx := context.Background()

	putLine(t, store, alice, celeste, 3)
	putLine(t, store, alice, rtx4070, 1)

	view, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	assert.Equal(t, "Celeste", view.Items[0].Name)
	assert.Equal(t, "59.97", view.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "NVIDIA GeForce RTX 4070", view.Items[1].Name)
	assert.Equal(t, 6, view.Items[1].Stock)
	assert.Equal(t, "658.97", view.Total.StringFixed(2))

	count, err := svc.Count(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, count.Lines)
	assert.Equal(t, 4, count.Units)
}

func TestCartService_List_MissingProduct(t *testing.T) {
	store := setupStore(t)
	svc := NewCartService(store, nopLogger())
	ctx := context.Background()

	putLine(t, store, alice, celeste, 1)
	putLine(t, store, alice, domain.ProductRef{Kind: domain.KindGame, ID: 77}, 2)

	view, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	assert.True(t, view.Items[1].Missing)
	assert.Equal(t, "game:77", view.Items[1].Name)
	assert.True(t, view.Items[1].Subtotal.IsZero())
	assert.Equal(t, "19.99", view.Total.StringFixed(2))
}

func TestCartService_List_Empty(t *testing.T) {
	store := setupStore(t)
	svc := NewCartService(store, nopLogger())

	view, err := svc.List(context.Background(), bob)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())
}
