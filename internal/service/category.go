package service

import (
	"context"
	"errors"
	"fmt"

	"designghar-service/internal/cache"
	"designghar-service/internal/domain"
	"designghar-service/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const categoriesNamespace = "categories"

// CategoryPatch carries a partial category update. Nil fields are left unchanged.
type CategoryPatch struct {
	Name        *string
	SKU         *string
	Description *string
	ImageURL    *string
	IsActive    *bool
	Sequence    *int
	Tags        []string
}

type CategoryService struct {
	store  store.CategoryStorer
	cache  cache.Cache
	logger *zap.Logger
}

func NewCategoryService(cs store.CategoryStorer, c cache.Cache, logger *zap.Logger) *CategoryService {
	if c == nil {
		c = cache.Nop{}
	}
	return &CategoryService{store: cs, cache: c, logger: logger}
}

// List returns categories ordered by sequence then name, served from the read
// cache when possible.
func (s *CategoryService) List(ctx context.Context, params store.ListCategoriesParams) ([]domain.Category, error) {
	key := "all"
	if params.IsActive != nil {
		key = fmt.Sprintf("active=%t", *params.IsActive)
	}
	var categories []domain.Category
	gen, hit := s.cache.Get(ctx, categoriesNamespace, key, &categories)
	if hit {
		return categories, nil
	}

	categories, err := s.store.ListCategories(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if err := s.cache.Set(ctx, categoriesNamespace, key, gen, categories); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	return s.store.GetCategoryByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := s.ensureUniqueSKU(ctx, category.SKU, nil); err != nil {
		return nil, err
	}
	created, err := s.store.CreateCategory(ctx, category)
	if err != nil {
		return nil, mapCategoryWriteErr(category.SKU, err)
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, id primitive.ObjectID, patch CategoryPatch) (*domain.Category, error) {
	category, err := s.store.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.SKU != nil && *patch.SKU != category.SKU {
		if err := s.ensureUniqueSKU(ctx, *patch.SKU, &id); err != nil {
			return nil, err
		}
	}

	if patch.Name != nil {
		category.Name = *patch.Name
	}
	if patch.SKU != nil {
		category.SKU = *patch.SKU
	}
	if patch.Description != nil {
		category.Description = patch.Description
	}
	if patch.ImageURL != nil {
		category.ImageURL = patch.ImageURL
	}
	if patch.IsActive != nil {
		category.IsActive = *patch.IsActive
	}
	if patch.Sequence != nil {
		category.Sequence = *patch.Sequence
	}
	if patch.Tags != nil {
		category.Tags = patch.Tags
	}

	updated, err := s.store.UpdateCategory(ctx, category)
	if err != nil {
		return nil, mapCategoryWriteErr(category.SKU, err)
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *CategoryService) SetActive(ctx context.Context, id primitive.ObjectID, isActive bool) (*domain.Category, error) {
	category, err := s.store.SetCategoryActive(ctx, id, isActive)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) ensureUniqueSKU(ctx context.Context, sku string, self *primitive.ObjectID) error {
	taken, err := s.store.CategorySKUTaken(ctx, sku, self)
	if err != nil {
		return fmt.Errorf("check sku: %w", err)
	}
	if taken {
		return skuConflict(sku, store.ErrCategorySKUExists)
	}
	return nil
}

func mapCategoryWriteErr(sku string, err error) error {
	if errors.Is(err, store.ErrCategorySKUExists) {
		return skuConflict(sku, err)
	}
	return err
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, categoriesNamespace); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("namespace", categoriesNamespace), zap.Error(err))
	}
}
