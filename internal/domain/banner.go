package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Banner is a storefront hero image shown during its validity window.
type Banner struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title          string             `json:"title" bson:"title"`
	ImageURL       string             `json:"imageUrl" bson:"imageUrl"`
	MobileImageURL *string            `json:"mobileImageUrl,omitempty" bson:"mobileImageUrl,omitempty"`
	AltText        string             `json:"altText" bson:"altText"`
	StartDate      time.Time          `json:"startDate" bson:"startDate"`
	EndDate        *time.Time         `json:"endDate,omitempty" bson:"endDate,omitempty"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
	Sequence       int                `json:"sequence" bson:"sequence"`
	ViewCount      int64              `json:"viewCount" bson:"viewCount"`
	ClickCount     int64              `json:"clickCount" bson:"clickCount"`
	RedirectURL    *string            `json:"redirectUrl,omitempty" bson:"redirectUrl,omitempty"`
	Category       *string            `json:"category,omitempty" bson:"category,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// LiveAt reports whether the banner is active and t falls inside its window.
// An unset EndDate means the banner never expires.
func (b *Banner) LiveAt(t time.Time) bool {
	if !b.IsActive || t.Before(b.StartDate) {
		return false
	}
	return b.EndDate == nil || !t.After(*b.EndDate)
}
