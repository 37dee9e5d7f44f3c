package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oybekdev/shopcore/internal/product"
	"github.com/oybekdev/shopcore/internal/product/dto"
	"github.com/oybekdev/shopcore/internal/store"
	"github.com/oybekdev/shopcore/pkg/logger"
)

func newTestProducts(t *testing.T) product.UseCase {
	t.Helper()
	s := store.New(store.NewMemoryBackend(false))
	return NewProductUseCase(s, logger.NewNop())
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Classic Hoodie":      "classic-hoodie",
		"  Summer Tee 2026 ":  "summer-tee-2026",
		"Éclair (limited!!)":  "clair-limited",
		"already-slugged":     "already-slugged",
	}
	for name, want := range cases {
		assert.Equal(t, want, slugify(name), "slugify(%q)", name)
	}
}

func TestCreateProductGeneratesSlug(t *testing.T) {
	uc := newTestProducts(t)
	ctx := context.Background()

	created, err := uc.CreateProduct(ctx, &dto.CreateProductInput{
		Name: "Classic Hoodie", Price: 49, InitialStock: 10,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "classic-hoodie", created.Slug)
	assert.True(t, created.IsActive)
	assert.Equal(t, 10, created.Stock)

	got, err := uc.GetBySlug(ctx, "classic-hoodie")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
}

func TestCreateProductRejectsTakenSlug(t *testing.T) {
	uc := newTestProducts(t)
	ctx := context.Background()

	_, err := uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "Classic Hoodie", Price: 49})
	require.NoError(t, err)

	_, err = uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "classic hoodie", Price: 59})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestUpdateProductPartialFields(t *testing.T) {
	uc := newTestProducts(t)
	ctx := context.Background()

	created, err := uc.CreateProduct(ctx, &dto.CreateProductInput{
		Name: "Classic Hoodie", Description: "warm", Price: 49,
	})
	require.NoError(t, err)

	newPrice := 39.0
	inactive := false
	updated, err := uc.UpdateProduct(ctx, created.ID, &dto.UpdateProductInput{
		Price:    &newPrice,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	// Only the provided fields change.
	assert.Equal(t, 39.0, updated.Price)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Classic Hoodie", updated.Name)
	assert.Equal(t, "warm", updated.Description)
}

func TestUpdateMissingProductReturnsNil(t *testing.T) {
	uc := newTestProducts(t)

	name := "x"
	updated, err := uc.UpdateProduct(context.Background(), "ghost", &dto.UpdateProductInput{Name: &name})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestListProductsFilters(t *testing.T) {
	uc := newTestProducts(t)
	ctx := context.Background()

	hoodie, err := uc.CreateProduct(ctx, &dto.CreateProductInput{
		Name: "Hoodie", Price: 49, CategoryID: "tops", InitialStock: 5,
	})
	require.NoError(t, err)
	_, err = uc.CreateProduct(ctx, &dto.CreateProductInput{
		Name: "Tee", Price: 19, CategoryID: "tops", InitialStock: 0,
	})
	require.NoError(t, err)
	_, err = uc.CreateProduct(ctx, &dto.CreateProductInput{
		Name: "Jeans", Price: 89, CategoryID: "bottoms", InitialStock: 3,
	})
	require.NoError(t, err)

	inactive := false
	_, err = uc.UpdateProduct(ctx, hoodie.ID, &dto.UpdateProductInput{IsActive: &inactive})
	require.NoError(t, err)

	all, err := uc.ListProducts(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	tops, err := uc.ListProducts(ctx, &dto.ProductFilters{CategoryID: "tops"})
	require.NoError(t, err)
	assert.Len(t, tops, 2)

	active, err := uc.ListProducts(ctx, &dto.ProductFilters{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	sellable, err := uc.ListProducts(ctx, &dto.ProductFilters{ActiveOnly: true, InStock: true})
	require.NoError(t, err)
	require.Len(t, sellable, 1)
	assert.Equal(t, "Jeans", sellable[0].Name)
}

func TestDeleteProduct(t *testing.T) {
	uc := newTestProducts(t)
	ctx := context.Background()

	created, err := uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "Hoodie", Price: 49})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteProduct(ctx, created.ID))

	got, err := uc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, uc.DeleteProduct(ctx, created.ID))
}
