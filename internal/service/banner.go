package service

import (
	"context"
	"fmt"
	"time"

	"designghar-service/internal/domain"
	"designghar-service/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BannerPatch carries a partial banner update. Nil fields are left unchanged.
type BannerPatch struct {
	Title          *string
	ImageURL       *string
	MobileImageURL *string
	AltText        *string
	StartDate      *time.Time
	EndDate        *time.Time
	IsActive       *bool
	Sequence       *int
	RedirectURL    *string
	Category       *string
}

type BannerService struct {
	store store.BannerStorer
	now   func() time.Time
}

func NewBannerService(bs store.BannerStorer) *BannerService {
	return &BannerService{store: bs, now: time.Now}
}

// List returns all banners, or only the ones live right now when liveOnly is set.
func (s *BannerService) List(ctx context.Context, liveOnly bool) ([]domain.Banner, error) {
	var params store.ListBannersParams
	if liveOnly {
		now := s.now().UTC()
		params.LiveAt = &now
	}
	banners, err := s.store.ListBanners(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	return banners, nil
}

func (s *BannerService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Banner, error) {
	return s.store.GetBannerByID(ctx, id)
}

// Create fills startDate with now and altText with the title when they are
// missing, then checks the validity window.
func (s *BannerService) Create(ctx context.Context, banner *domain.Banner) (*domain.Banner, error) {
	if banner.ImageURL == "" {
		return nil, invalid("imageUrl or an image file is required")
	}
	if banner.StartDate.IsZero() {
		banner.StartDate = s.now().UTC()
	}
	if banner.AltText == "" {
		banner.AltText = banner.Title
	}
	if err := checkBannerWindow(banner); err != nil {
		return nil, err
	}
	banner.ViewCount, banner.ClickCount = 0, 0
	return s.store.CreateBanner(ctx, banner)
}

func (s *BannerService) Update(ctx context.Context, id primitive.ObjectID, patch BannerPatch) (*domain.Banner, error) {
	banner, err := s.store.GetBannerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		banner.Title = *patch.Title
	}
	if patch.ImageURL != nil {
		banner.ImageURL = *patch.ImageURL
	}
	if patch.MobileImageURL != nil {
		banner.MobileImageURL = patch.MobileImageURL
	}
	if patch.AltText != nil {
		banner.AltText = *patch.AltText
	}
	if patch.StartDate != nil {
		banner.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		banner.EndDate = patch.EndDate
	}
	if patch.IsActive != nil {
		banner.IsActive = *patch.IsActive
	}
	if patch.Sequence != nil {
		banner.Sequence = *patch.Sequence
	}
	if patch.RedirectURL != nil {
		banner.RedirectURL = patch.RedirectURL
	}
	if patch.Category != nil {
		banner.Category = patch.Category
	}
	if err := checkBannerWindow(banner); err != nil {
		return nil, err
	}
	return s.store.UpdateBanner(ctx, banner)
}

func (s *BannerService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.store.DeleteBanner(ctx, id)
}

func (s *BannerService) RecordView(ctx context.Context, id primitive.ObjectID) error {
	return s.store.IncrementBannerCounter(ctx, id, store.BannerViews)
}

func (s *BannerService) RecordClick(ctx context.Context, id primitive.ObjectID) error {
	return s.store.IncrementBannerCounter(ctx, id, store.BannerClicks)
}

func checkBannerWindow(b *domain.Banner) error {
	if b.EndDate != nil && b.EndDate.Before(b.StartDate) {
		return invalid("endDate must not be before startDate")
	}
	return nil
}
