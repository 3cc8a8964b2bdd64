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

const productsNamespace = "products"

// ProductPatch carries a partial product update. Nil fields are left unchanged.
type ProductPatch struct {
	Name               *string
	SKU                *string
	Description        *string
	Features           *string
	CategoryID         *string
	CategoryName       *string
	MediaURLs          []string
	BasePrice          *float64
	DiscountPercentage *float64
	IsActive           *bool
	IsFeatured         *bool
	Tags               []string
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products []domain.Product
	Total    int
}

type ProductService struct {
	store  store.ProductStorer
	cache  cache.Cache
	logger *zap.Logger
}

func NewProductService(ps store.ProductStorer, c cache.Cache, logger *zap.Logger) *ProductService {
	if c == nil {
		c = cache.Nop{}
	}
	return &ProductService{store: ps, cache: c, logger: logger}
}

func (s *ProductService) List(ctx context.Context, params store.ListProductsParams) (*ProductPage, error) {
	products, total, err := s.store.ListProducts(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &ProductPage{Products: products, Total: total}, nil
}

// Featured lists active featured products, newest first, through the read cache.
func (s *ProductService) Featured(ctx context.Context, limit, offset int) (*ProductPage, error) {
	key := fmt.Sprintf("featured:%d:%d", limit, offset)
	var page ProductPage
	gen, hit := s.cache.Get(ctx, productsNamespace, key, &page)
	if hit {
		return &page, nil
	}

	active, featured := true, true
	result, err := s.List(ctx, store.ListProductsParams{
		Limit:      limit,
		Offset:     offset,
		IsActive:   &active,
		IsFeatured: &featured,
	})
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, productsNamespace, key, gen, result); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

// Get returns an active product. Inactive products are reported as not found.
func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, store.ErrProductNotFound
	}
	return product, nil
}

func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	product, err := s.store.GetProductBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, store.ErrProductNotFound
	}
	return product, nil
}

func (s *ProductService) IncrementView(ctx context.Context, id primitive.ObjectID) error {
	return s.store.IncrementProductViews(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := s.CheckSKU(ctx, product.SKU, nil); err != nil {
		return nil, err
	}
	product.ViewCount = 0
	product.Reprice()

	created, err := s.store.CreateProduct(ctx, product)
	if err != nil {
		return nil, s.mapWriteErr(product.SKU, err)
	}
	s.invalidate(ctx)
	return created, nil
}

// Replace overwrites every client-settable field of an existing product.
// id, createdAt and viewCount are kept.
func (s *ProductService) Replace(ctx context.Context, id primitive.ObjectID, product *domain.Product) (*domain.Product, error) {
	existing, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.CheckSKU(ctx, product.SKU, &id); err != nil {
		return nil, err
	}

	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	product.ViewCount = existing.ViewCount
	product.Reprice()

	updated, err := s.store.UpdateProduct(ctx, product)
	if err != nil {
		return nil, s.mapWriteErr(product.SKU, err)
	}
	s.invalidate(ctx)
	return updated, nil
}

// Update merges patch into the stored product and re-derives finalPrice from
// the merged basePrice and discountPercentage.
func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, patch ProductPatch) (*domain.Product, error) {
	product, err := s.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.SKU != nil && *patch.SKU != product.SKU {
		if err := s.CheckSKU(ctx, *patch.SKU, &id); err != nil {
			return nil, err
		}
	}

	applyProductPatch(product, patch)
	product.Reprice()

	updated, err := s.store.UpdateProduct(ctx, product)
	if err != nil {
		return nil, s.mapWriteErr(product.SKU, err)
	}
	s.invalidate(ctx)
	return updated, nil
}

func applyProductPatch(p *domain.Product, patch ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.SKU != nil {
		p.SKU = *patch.SKU
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Features != nil {
		p.Features = patch.Features
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.CategoryName != nil {
		p.CategoryName = patch.CategoryName
	}
	if patch.MediaURLs != nil {
		p.MediaURLs = patch.MediaURLs
	}
	if patch.BasePrice != nil {
		p.BasePrice = *patch.BasePrice
	}
	if patch.DiscountPercentage != nil {
		p.DiscountPercentage = patch.DiscountPercentage
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if patch.IsFeatured != nil {
		p.IsFeatured = *patch.IsFeatured
	}
	if patch.Tags != nil {
		p.Tags = patch.Tags
	}
}

func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ProductService) SetActive(ctx context.Context, id primitive.ObjectID, isActive bool) (*domain.Product, error) {
	return s.setFlags(ctx, id, store.ProductFlags{IsActive: &isActive})
}

func (s *ProductService) SetFeatured(ctx context.Context, id primitive.ObjectID, isFeatured bool) (*domain.Product, error) {
	return s.setFlags(ctx, id, store.ProductFlags{IsFeatured: &isFeatured})
}

func (s *ProductService) setFlags(ctx context.Context, id primitive.ObjectID, flags store.ProductFlags) (*domain.Product, error) {
	product, err := s.store.SetProductFlags(ctx, id, flags)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return product, nil
}

// BulkStatus applies flags to every existing product in ids. Unknown ids are
// skipped; modified is the number of products that exist.
func (s *ProductService) BulkStatus(ctx context.Context, ids []primitive.ObjectID, flags store.ProductFlags) (int, []domain.Product, error) {
	if len(ids) == 0 {
		return 0, nil, invalid("ids must not be empty")
	}
	if flags.IsActive == nil && flags.IsFeatured == nil {
		return 0, nil, invalid("Nothing to update")
	}
	modified, products, err := s.store.BulkSetProductFlags(ctx, ids, flags)
	if err != nil {
		return 0, nil, fmt.Errorf("bulk status: %w", err)
	}
	if modified > 0 {
		s.invalidate(ctx)
	}
	return modified, products, nil
}

// CheckSKU returns a ConflictError when sku belongs to a product other than
// self. It is an early, non-authoritative check; the unique index in the store
// still rejects a concurrent duplicate.
func (s *ProductService) CheckSKU(ctx context.Context, sku string, self *primitive.ObjectID) error {
	taken, err := s.store.ProductSKUTaken(ctx, sku, self)
	if err != nil {
		return fmt.Errorf("check sku: %w", err)
	}
	if taken {
		return skuConflict(sku, store.ErrProductSKUExists)
	}
	return nil
}

func (s *ProductService) mapWriteErr(sku string, err error) error {
	if errors.Is(err, store.ErrProductSKUExists) {
		return skuConflict(sku, err)
	}
	return err
}

func (s *ProductService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, productsNamespace); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("namespace", productsNamespace), zap.Error(err))
	}
}
