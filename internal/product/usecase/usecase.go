package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/oybekdev/shopcore/internal/model"
	"github.com/oybekdev/shopcore/internal/product"
	"github.com/oybekdev/shopcore/internal/product/dto"
	"github.com/oybekdev/shopcore/internal/store"
	"github.com/oybekdev/shopcore/pkg/logger"
)

const collectionProducts = "products"

var ErrSlugTaken = errors.New("slug already exists")

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

type productUseCase struct {
	products store.Collection[model.Product]
	logger   logger.ZapLogger
}

func NewProductUseCase(s *store.Store, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		products: store.NewCollection[model.Product](s, collectionProducts),
		logger:   log.Named("product"),
	}
}

func slugify(name string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	slug := input.Slug
	if slug == "" {
		slug = slugify(input.Name)
	}

	existing, err := uc.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlugTaken
	}

	now := time.Now()
	p := model.Product{
		BaseModel:   model.BaseModel{CreatedAt: now, UpdatedAt: now},
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
		Price:       input.Price,
		CostPrice:   input.CostPrice,
		CategoryID:  input.CategoryID,
		Stock:       input.InitialStock,
		IsActive:    true,
	}

	created, err := uc.products.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("product created", zap.String("id", created.ID), zap.String("slug", created.Slug))
	return created, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return uc.products.Get(ctx, id)
}

func (uc *productUseCase) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return uc.products.FindOne(ctx, func(p model.Product) bool {
		return p.Slug == slug
	})
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error) {
	if filters == nil {
		filters = &dto.ProductFilters{}
	}
	return uc.products.Find(ctx, func(p model.Product) bool {
		if filters.CategoryID != "" && p.CategoryID != filters.CategoryID {
			return false
		}
		if filters.ActiveOnly && !p.IsActive {
			return false
		}
		if filters.InStock && p.Stock <= 0 {
			return false
		}
		return true
	})
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, id string, input *dto.UpdateProductInput) (*model.Product, error) {
	partial := store.Record{"updatedAt": time.Now()}
	if input.Name != nil {
		partial["name"] = *input.Name
	}
	if input.Description != nil {
		partial["description"] = *input.Description
	}
	if input.Price != nil {
		partial["price"] = *input.Price
	}
	if input.CostPrice != nil {
		partial["costPrice"] = *input.CostPrice
	}
	if input.CategoryID != nil {
		partial["categoryId"] = *input.CategoryID
	}
	if input.IsActive != nil {
		partial["isActive"] = *input.IsActive
	}

	updated, err := uc.products.Update(ctx, id, partial)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, nil
	}
	return updated, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	removed, err := uc.products.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return errors.New("product not found")
	}
	return nil
}
