package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
)

func TestCatalogCreateProduct(t *testing.T) {
	f := newFixture(t, "0")
	details := model.ProductDetails{SKU: " SKU-9 ", Name: "Widget", Price: decimal.RequireFromString("4.567"), MinStockLevel: 2}

	_, err := f.catalog.CreateProduct(f.ctx, repAlice, details, 1)
	assert.ErrorIs(t, err, domainErrors.ErrForbidden)
	_, err = f.catalog.CreateProduct(f.ctx, admin, details, -1)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidInput)
	_, err = f.catalog.CreateProduct(f.ctx, admin, model.ProductDetails{SKU: "x", Name: "y", Price: decimal.NewFromInt(-1)}, 0)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidInput)
	_, err = f.catalog.CreateProduct(f.ctx, admin, model.ProductDetails{Name: "no sku"}, 0)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidInput)

	p, err := f.catalog.CreateProduct(f.ctx, manager, details, 6)
	require.NoError(t, err)
	assert.Equal(t, "SKU-9", p.SKU)
	assertMoney(t, "4.57", p.Price)
	assert.Equal(t, 6, p.Quantity)
	assert.True(t, p.IsActive)
	assert.Equal(t, []string{model.TopicInventoryRestocked}, f.topics())

	_, err = f.catalog.CreateProduct(f.ctx, manager, details, 0)
	assert.ErrorIs(t, err, domainErrors.ErrAlreadyExists)
}

func TestCatalogUpdateKeepsQuantity(t *testing.T) {
	f := newFixture(t, "0")
	p := f.product("A", "1", 4, 0)

	_, err := f.catalog.UpdateProduct(f.ctx, accountant, p.ID, model.ProductDetails{SKU: "A", Name: "A"})
	assert.ErrorIs(t, err, domainErrors.ErrForbidden)

	updated, err := f.catalog.UpdateProduct(f.ctx, admin, p.ID, model.ProductDetails{SKU: "A2", Name: "Renamed", Price: decimal.NewFromInt(3), MinStockLevel: 1})
	require.NoError(t, err)
	assert.Equal(t, "A2", updated.SKU)
	assert.Equal(t, 4, updated.Quantity)

	_, err = f.catalog.UpdateProduct(f.ctx, admin, 999, model.ProductDetails{SKU: "B", Name: "B"})
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestCatalogArchiveAndListings(t *testing.T) {
	f := newFixture(t, "0")
	a := f.product("A", "1", 1, 5)
	b := f.product("B", "1", 50, 5)
	c := f.product("C", "1", 0, 0)

	assert.ErrorIs(t, f.catalog.ArchiveProduct(f.ctx, repAlice, c.ID), domainErrors.ErrForbidden)
	require.NoError(t, f.catalog.ArchiveProduct(f.ctx, admin, c.ID))

	active, err := f.catalog.ListProducts(f.ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)
	all, err := f.catalog.ListProducts(f.ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	low, err := f.catalog.LowStock(f.ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, a.ID, low[0].ID)

	got, err := f.catalog.GetProduct(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.SKU)
}
