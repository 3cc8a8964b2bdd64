package store

import (
	"context"
	"errors"
	"fmt"

	"designghar-service/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// --- BannerStorer Implementation ---

func (s *MongoStore) CreateBanner(ctx context.Context, banner *domain.Banner) (*domain.Banner, error) {
	created := *banner
	created.ID = primitive.NewObjectID()
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt

	if _, err := s.banners.InsertOne(ctx, &created); err != nil {
		return nil, fmt.Errorf("store: CreateBanner failed to insert: %w", err)
	}
	return &created, nil
}

func (s *MongoStore) GetBannerByID(ctx context.Context, id primitive.ObjectID) (*domain.Banner, error) {
	var banner domain.Banner
	if err := s.banners.FindOne(ctx, bson.M{"_id": id}).Decode(&banner); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBannerNotFound
		}
		return nil, fmt.Errorf("store: GetBannerByID failed to decode: %w", err)
	}
	return &banner, nil
}

// bannerFilter matches banners that are live at params.LiveAt. An unset
// endDate never expires.
func bannerFilter(params ListBannersParams) bson.M {
	if params.LiveAt == nil {
		return bson.M{}
	}
	at := *params.LiveAt
	return bson.M{
		"isActive":  true,
		"startDate": bson.M{"$lte": at},
		"$or": bson.A{
			bson.M{"endDate": bson.M{"$exists": false}},
			bson.M{"endDate": nil},
			bson.M{"endDate": bson.M{"$gte": at}},
		},
	}
}

func (s *MongoStore) ListBanners(ctx context.Context, params ListBannersParams) ([]domain.Banner, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.banners.Find(ctx, bannerFilter(params), opts)
	if err != nil {
		return nil, fmt.Errorf("store: ListBanners failed to query banners: %w", err)
	}
	banners, err := decodeAll[domain.Banner](ctx, cur, 0)
	if err != nil {
		return nil, fmt.Errorf("store: ListBanners failed to decode banners: %w", err)
	}
	return banners, nil
}

// UpdateBanner overwrites the editable fields of a banner. viewCount and
// clickCount are left to $inc so concurrent engagement is never lost.
func (s *MongoStore) UpdateBanner(ctx context.Context, banner *domain.Banner) (*domain.Banner, error) {
	updated := *banner
	updated.UpdatedAt = s.now()

	set := bson.M{
		"title":     updated.Title,
		"imageUrl":  updated.ImageURL,
		"altText":   updated.AltText,
		"startDate": updated.StartDate,
		"isActive":  updated.IsActive,
		"sequence":  updated.Sequence,
		"updatedAt": updated.UpdatedAt,
	}
	unset := bson.M{}
	setOrUnset(set, unset, "mobileImageUrl", updated.MobileImageURL)
	setOrUnset(set, unset, "endDate", updated.EndDate)
	setOrUnset(set, unset, "redirectUrl", updated.RedirectURL)
	setOrUnset(set, unset, "category", updated.Category)
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var stored domain.Banner
	if err := s.banners.FindOneAndUpdate(ctx, bson.M{"_id": updated.ID}, update, opts).Decode(&stored); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBannerNotFound
		}
		return nil, fmt.Errorf("store: UpdateBanner failed: %w", err)
	}
	return &stored, nil
}

func (s *MongoStore) DeleteBanner(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.banners.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("store: DeleteBanner failed to execute delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrBannerNotFound
	}
	return nil
}

func (s *MongoStore) IncrementBannerCounter(ctx context.Context, id primitive.ObjectID, counter BannerCounter) error {
	if counter != BannerViews && counter != BannerClicks {
		return fmt.Errorf("store: unknown banner counter %q", counter)
	}
	res, err := s.banners.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{string(counter): 1}})
	if err != nil {
		return fmt.Errorf("store: IncrementBannerCounter failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrBannerNotFound
	}
	return nil
}

func setOrUnset[T any](set, unset bson.M, field string, v *T) {
	if v == nil {
		unset[field] = ""
		return
	}
	set[field] = *v
}
