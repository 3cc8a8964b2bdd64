package domain

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

// OfferScope selects which products an offer targets.
type OfferScope string

const (
	ScopeAll      OfferScope = "all"
	ScopeCategory OfferScope = "category"
	ScopeSpecific OfferScope = "specific"
)

// Offer is a promotional discount over a validity window. Category is only
// meaningful for ScopeCategory and ProductIDs only for ScopeSpecific.
type Offer struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	DiscountType  DiscountType       `json:"discountType" bson:"discountType"`
	DiscountValue float64            `json:"discountValue" bson:"discountValue"`
	AppliesTo     OfferScope         `json:"appliesTo" bson:"appliesTo"`
	Category      *string            `json:"category,omitempty" bson:"category,omitempty"`
	ProductIDs    []string           `json:"productIds,omitempty" bson:"productIds,omitempty"`
	StartDate     time.Time          `json:"startDate" bson:"startDate"`
	EndDate       time.Time          `json:"endDate" bson:"endDate"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

var (
	ErrOfferDiscountType = errors.New("discountType must be one of: percentage, flat")
	ErrOfferScope        = errors.New("appliesTo must be one of: all, category, specific")
	ErrOfferPercentRange = errors.New("percentage discountValue must be greater than 0 and at most 100")
	ErrOfferFlatValue    = errors.New("flat discountValue must be greater than 0")
	ErrOfferCategory     = errors.New("category is required when appliesTo is category")
	ErrOfferProducts     = errors.New("productIds is required when appliesTo is specific")
	ErrOfferWindow       = errors.New("endDate must be after startDate")
	ErrOfferNameRequired = errors.New("name is required")
)

// Validate checks the offer as a whole, including the appliesTo variant. It
// also clears the fields that do not belong to the selected scope.
func (o *Offer) Validate() error {
	if o.Name == "" {
		return ErrOfferNameRequired
	}
	switch o.DiscountType {
	case DiscountPercentage:
		if o.DiscountValue <= 0 || o.DiscountValue > 100 {
			return ErrOfferPercentRange
		}
	case DiscountFlat:
		if o.DiscountValue <= 0 {
			return ErrOfferFlatValue
		}
	default:
		return ErrOfferDiscountType
	}

	switch o.AppliesTo {
	case ScopeAll:
		o.Category = nil
		o.ProductIDs = nil
	case ScopeCategory:
		if o.Category == nil || *o.Category == "" {
			return ErrOfferCategory
		}
		o.ProductIDs = nil
	case ScopeSpecific:
		if len(o.ProductIDs) == 0 {
			return ErrOfferProducts
		}
		for _, id := range o.ProductIDs {
			if !primitive.IsValidObjectID(id) {
				return fmt.Errorf("productIds contains an invalid id: %q", id)
			}
		}
		o.Category = nil
	default:
		return ErrOfferScope
	}

	if !o.EndDate.After(o.StartDate) {
		return ErrOfferWindow
	}
	return nil
}

// ActiveAt reports whether t is inside [StartDate, EndDate].
func (o *Offer) ActiveAt(t time.Time) bool {
	return !t.Before(o.StartDate) && !t.After(o.EndDate)
}
