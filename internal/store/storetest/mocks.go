// Package storetest provides testify mocks of the store interfaces.
package storetest

import (
	"context"

	"designghar-service/internal/domain"
	"designghar-service/internal/store"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockProductStorer is a mock implementation of store.ProductStorer
type MockProductStorer struct {
	mock.Mock
}

var _ store.ProductStorer = (*MockProductStorer)(nil)

func (m *MockProductStorer) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	return written(m.Called(ctx, product), ctx, product)
}

func (m *MockProductStorer) GetProductByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductStorer) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductStorer) ProductSKUTaken(ctx context.Context, sku string, exclude *primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, sku, exclude)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductStorer) ListProducts(ctx context.Context, params store.ListProductsParams) ([]domain.Product, int, error) {
	args := m.Called(ctx, params)
	var products []domain.Product
	if arg0 := args.Get(0); arg0 != nil {
		products = arg0.([]domain.Product)
	}
	return products, args.Int(1), args.Error(2)
}

func (m *MockProductStorer) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	return written(m.Called(ctx, product), ctx, product)
}

func (m *MockProductStorer) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductStorer) SetProductFlags(ctx context.Context, id primitive.ObjectID, flags store.ProductFlags) (*domain.Product, error) {
	args := m.Called(ctx, id, flags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductStorer) BulkSetProductFlags(ctx context.Context, ids []primitive.ObjectID, flags store.ProductFlags) (int, []domain.Product, error) {
	args := m.Called(ctx, ids, flags)
	var products []domain.Product
	if arg1 := args.Get(1); arg1 != nil {
		products = arg1.([]domain.Product)
	}
	return args.Int(0), products, args.Error(2)
}

func (m *MockProductStorer) IncrementProductViews(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCategoryStorer is a mock implementation of store.CategoryStorer
type MockCategoryStorer struct {
	mock.Mock
}

var _ store.CategoryStorer = (*MockCategoryStorer)(nil)

func (m *MockCategoryStorer) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	return written(m.Called(ctx, category), ctx, category)
}

func (m *MockCategoryStorer) GetCategoryByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryStorer) CategorySKUTaken(ctx context.Context, sku string, exclude *primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, sku, exclude)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryStorer) ListCategories(ctx context.Context, params store.ListCategoriesParams) ([]domain.Category, error) {
	args := m.Called(ctx, params)
	var categories []domain.Category
	if arg0 := args.Get(0); arg0 != nil {
		categories = arg0.([]domain.Category)
	}
	return categories, args.Error(1)
}

func (m *MockCategoryStorer) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	return written(m.Called(ctx, category), ctx, category)
}

func (m *MockCategoryStorer) SetCategoryActive(ctx context.Context, id primitive.ObjectID, isActive bool) (*domain.Category, error) {
	args := m.Called(ctx, id, isActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryStorer) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBannerStorer is a mock implementation of store.BannerStorer
type MockBannerStorer struct {
	mock.Mock
}

var _ store.BannerStorer = (*MockBannerStorer)(nil)

func (m *MockBannerStorer) CreateBanner(ctx context.Context, banner *domain.Banner) (*domain.Banner, error) {
	return written(m.Called(ctx, banner), ctx, banner)
}

func (m *MockBannerStorer) GetBannerByID(ctx context.Context, id primitive.ObjectID) (*domain.Banner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Banner), args.Error(1)
}

func (m *MockBannerStorer) ListBanners(ctx context.Context, params store.ListBannersParams) ([]domain.Banner, error) {
	args := m.Called(ctx, params)
	var banners []domain.Banner
	if arg0 := args.Get(0); arg0 != nil {
		banners = arg0.([]domain.Banner)
	}
	return banners, args.Error(1)
}

func (m *MockBannerStorer) UpdateBanner(ctx context.Context, banner *domain.Banner) (*domain.Banner, error) {
	return written(m.Called(ctx, banner), ctx, banner)
}

func (m *MockBannerStorer) DeleteBanner(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBannerStorer) IncrementBannerCounter(ctx context.Context, id primitive.ObjectID, counter store.BannerCounter) error {
	args := m.Called(ctx, id, counter)
	return args.Error(0)
}

// MockOfferStorer is a mock implementation of store.OfferStorer
type MockOfferStorer struct {
	mock.Mock
}

var _ store.OfferStorer = (*MockOfferStorer)(nil)

func (m *MockOfferStorer) CreateOffer(ctx context.Context, offer *domain.Offer) (*domain.Offer, error) {
	return written(m.Called(ctx, offer), ctx, offer)
}

func (m *MockOfferStorer) GetOfferByID(ctx context.Context, id primitive.ObjectID) (*domain.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Offer), args.Error(1)
}

func (m *MockOfferStorer) ListOffers(ctx context.Context, params store.ListOffersParams) ([]domain.Offer, error) {
	args := m.Called(ctx, params)
	var offers []domain.Offer
	if arg0 := args.Get(0); arg0 != nil {
		offers = arg0.([]domain.Offer)
	}
	return offers, args.Error(1)
}

func (m *MockOfferStorer) UpdateOffer(ctx context.Context, offer *domain.Offer) (*domain.Offer, error) {
	return written(m.Called(ctx, offer), ctx, offer)
}

func (m *MockOfferStorer) DeleteOffer(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserStorer is a mock implementation of store.UserStorer
type MockUserStorer struct {
	mock.Mock
}

var _ store.UserStorer = (*MockUserStorer)(nil)

func (m *MockUserStorer) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	return written(m.Called(ctx, user), ctx, user)
}

func (m *MockUserStorer) GetUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStorer) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStorer) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	var users []domain.User
	if arg0 := args.Get(0); arg0 != nil {
		users = arg0.([]domain.User)
	}
	return users, args.Error(1)
}

// written resolves a mocked write. The first return value may be a
// func(context.Context, *T) (*T, error) that computes the result from the input.
func written[T any](args mock.Arguments, ctx context.Context, in *T) (*T, error) {
	if fn, ok := args.Get(0).(func(context.Context, *T) (*T, error)); ok {
		return fn(ctx, in)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

// PtrTo returns a pointer to v.
func PtrTo[T any](v T) *T {
	return &v
}
