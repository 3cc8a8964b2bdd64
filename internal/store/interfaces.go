package store

import (
	"context"
	"time"

	"designghar-service/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SortField is one key of a multi-key sort. Field is the stored document field name.
type SortField struct {
	Field string
	Desc  bool
}

// ListProductsParams holds parameters for listing products (for pagination, filtering, sorting).
type ListProductsParams struct {
	Limit       int
	Offset      int
	SearchQuery *string  // case-insensitive match on name or description
	CategoryID  *string
	Tags        []string // every tag must be present
	MinPrice    *float64 // bounds finalPrice
	MaxPrice    *float64
	IsActive    *bool
	IsFeatured  *bool
	Sort        []SortField // empty means updatedAt DESC
}

// ProductFlags is the subset of product fields a status toggle may touch.
// Nil fields are left unchanged.
type ProductFlags struct {
	IsActive   *bool
	IsFeatured *bool
}

// ProductStorer defines the database operations for products.
type ProductStorer interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	ProductSKUTaken(ctx context.Context, sku string, exclude *primitive.ObjectID) (bool, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, int, error) // Returns products and total count
	UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
	SetProductFlags(ctx context.Context, id primitive.ObjectID, flags ProductFlags) (*domain.Product, error)
	BulkSetProductFlags(ctx context.Context, ids []primitive.ObjectID, flags ProductFlags) (int, []domain.Product, error)
	IncrementProductViews(ctx context.Context, id primitive.ObjectID) error
}

// ListCategoriesParams filters the category list. The list is not paginated.
type ListCategoriesParams struct {
	IsActive *bool
}

// CategoryStorer defines the database operations for categories.
type CategoryStorer interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error)
	CategorySKUTaken(ctx context.Context, sku string, exclude *primitive.ObjectID) (bool, error)
	ListCategories(ctx context.Context, params ListCategoriesParams) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	SetCategoryActive(ctx context.Context, id primitive.ObjectID, isActive bool) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error
}

// BannerCounter names one of the banner engagement counters.
type BannerCounter string

const (
	BannerViews  BannerCounter = "viewCount"
	BannerClicks BannerCounter = "clickCount"
)

type ListBannersParams struct {
	LiveAt *time.Time // only banners that are active and inside their window at this instant
}

// BannerStorer defines the database operations for banners.
type BannerStorer interface {
	CreateBanner(ctx context.Context, banner *domain.Banner) (*domain.Banner, error)
	GetBannerByID(ctx context.Context, id primitive.ObjectID) (*domain.Banner, error)
	ListBanners(ctx context.Context, params ListBannersParams) ([]domain.Banner, error)
	UpdateBanner(ctx context.Context, banner *domain.Banner) (*domain.Banner, error)
	DeleteBanner(ctx context.Context, id primitive.ObjectID) error
	IncrementBannerCounter(ctx context.Context, id primitive.ObjectID, counter BannerCounter) error
}

type ListOffersParams struct {
	ActiveAt *time.Time
}

// OfferStorer defines the database operations for offers.
type OfferStorer interface {
	CreateOffer(ctx context.Context, offer *domain.Offer) (*domain.Offer, error)
	GetOfferByID(ctx context.Context, id primitive.ObjectID) (*domain.Offer, error)
	ListOffers(ctx context.Context, params ListOffersParams) ([]domain.Offer, error)
	UpdateOffer(ctx context.Context, offer *domain.Offer) (*domain.Offer, error)
	DeleteOffer(ctx context.Context, id primitive.ObjectID) error
}

// UserStorer defines the database operations for back-office users.
type UserStorer interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}
