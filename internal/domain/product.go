package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category groups products on the storefront.
// The json tags correspond to the fields expected in API responses/requests.
type Category struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	SKU         string             `json:"sku" bson:"sku"`
	Description *string            `json:"description,omitempty" bson:"description,omitempty"`
	ImageURL    *string            `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	IsActive    bool               `json:"isActive" bson:"isActive"`
	Sequence    int                `json:"sequence" bson:"sequence"` // display order, lower first; not unique
	Tags        []string           `json:"tags" bson:"tags"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Product represents a product in the catalog.
//
// FinalPrice is derived from BasePrice and DiscountPercentage (see ComputeFinalPrice)
// and is never taken from client input.
type Product struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name               string             `json:"name" bson:"name"`
	SKU                string             `json:"sku" bson:"sku"`
	Description        string             `json:"description" bson:"description"`
	Features           *string            `json:"features,omitempty" bson:"features,omitempty"`
	CategoryID         string             `json:"categoryId" bson:"categoryId"`
	CategoryName       *string            `json:"categoryName,omitempty" bson:"categoryName,omitempty"`
	MediaURLs          []string           `json:"mediaURLs" bson:"mediaURLs"`
	BasePrice          float64            `json:"basePrice" bson:"basePrice"`
	DiscountPercentage *float64           `json:"discountPercentage,omitempty" bson:"discountPercentage,omitempty"`
	FinalPrice         float64            `json:"finalPrice" bson:"finalPrice"`
	IsActive           bool               `json:"isActive" bson:"isActive"`
	IsFeatured         bool               `json:"isFeatured" bson:"isFeatured"`
	ViewCount          int64              `json:"viewCount" bson:"viewCount"`
	Tags               []string           `json:"tags" bson:"tags"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Reprice recomputes FinalPrice from the current BasePrice and DiscountPercentage.
// Call it on every write that persists the product.
func (p *Product) Reprice() {
	p.FinalPrice = ComputeFinalPrice(p.BasePrice, p.DiscountPercentage)
}

// Normalize replaces nil slices with empty ones so API responses carry [] rather than null.
func (p *Product) Normalize() {
	if p.MediaURLs == nil {
		p.MediaURLs = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
}

// Normalize replaces a nil tag slice with an empty one.
func (c *Category) Normalize() {
	if c.Tags == nil {
		c.Tags = []string{}
	}
}
