package service

import (
	"context"
	"fmt"
	"time"

	"designghar-service/internal/domain"
	"designghar-service/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OfferPatch carries a partial offer update. Nil fields are left unchanged.
type OfferPatch struct {
	Name          *string
	DiscountType  *domain.DiscountType
	DiscountValue *float64
	AppliesTo     *domain.OfferScope
	Category      *string
	ProductIDs    []string
	StartDate     *time.Time
	EndDate       *time.Time
}

type OfferService struct {
	store store.OfferStorer
	now   func() time.Time
}

func NewOfferService(ofs store.OfferStorer) *OfferService {
	return &OfferService{store: ofs, now: time.Now}
}

func (s *OfferService) List(ctx context.Context, activeOnly bool) ([]domain.Offer, error) {
	var params store.ListOffersParams
	if activeOnly {
		now := s.now().UTC()
		params.ActiveAt = &now
	}
	offers, err := s.store.ListOffers(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offers, nil
}

func (s *OfferService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Offer, error) {
	return s.store.GetOfferByID(ctx, id)
}

func (s *OfferService) Create(ctx context.Context, offer *domain.Offer) (*domain.Offer, error) {
	if err := offer.Validate(); err != nil {
		return nil, invalidErr(err)
	}
	return s.store.CreateOffer(ctx, offer)
}

// Update merges patch into the stored offer and validates the result as a
// whole, so switching appliesTo must come with the matching target fields.
func (s *OfferService) Update(ctx context.Context, id primitive.ObjectID, patch OfferPatch) (*domain.Offer, error) {
	offer, err := s.store.GetOfferByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		offer.Name = *patch.Name
	}
	if patch.DiscountType != nil {
		offer.DiscountType = *patch.DiscountType
	}
	if patch.DiscountValue != nil {
		offer.DiscountValue = *patch.DiscountValue
	}
	if patch.AppliesTo != nil {
		offer.AppliesTo = *patch.AppliesTo
	}
	if patch.Category != nil {
		offer.Category = patch.Category
	}
	if patch.ProductIDs != nil {
		offer.ProductIDs = patch.ProductIDs
	}
	if patch.StartDate != nil {
		offer.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		offer.EndDate = *patch.EndDate
	}
	if err := offer.Validate(); err != nil {
		return nil, invalidErr(err)
	}
	return s.store.UpdateOffer(ctx, offer)
}

func (s *OfferService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.store.DeleteOffer(ctx, id)
}
