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

// --- OfferStorer Implementation ---

func (s *MongoStore) CreateOffer(ctx context.Context, offer *domain.Offer) (*domain.Offer, error) {
	created := *offer
	created.ID = primitive.NewObjectID()
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt

	if _, err := s.offers.InsertOne(ctx, &created); err != nil {
		return nil, fmt.Errorf("store: CreateOffer failed to insert: %w", err)
	}
	return &created, nil
}

func (s *MongoStore) GetOfferByID(ctx context.Context, id primitive.ObjectID) (*domain.Offer, error) {
	var offer domain.Offer
	if err := s.offers.FindOne(ctx, bson.M{"_id": id}).Decode(&offer); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("store: GetOfferByID failed to decode: %w", err)
	}
	return &offer, nil
}

func (s *MongoStore) ListOffers(ctx context.Context, params ListOffersParams) ([]domain.Offer, error) {
	filter := bson.M{}
	if params.ActiveAt != nil {
		filter["startDate"] = bson.M{"$lte": *params.ActiveAt}
		filter["endDate"] = bson.M{"$gte": *params.ActiveAt}
	}

	opts := options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.offers.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("store: ListOffers failed to query offers: %w", err)
	}
	offers, err := decodeAll[domain.Offer](ctx, cur, 0)
	if err != nil {
		return nil, fmt.Errorf("store: ListOffers failed to decode offers: %w", err)
	}
	return offers, nil
}

func (s *MongoStore) UpdateOffer(ctx context.Context, offer *domain.Offer) (*domain.Offer, error) {
	updated := *offer
	updated.UpdatedAt = s.now()

	res, err := s.offers.ReplaceOne(ctx, bson.M{"_id": updated.ID}, &updated)
	if err != nil {
		return nil, fmt.Errorf("store: UpdateOffer failed to replace: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrOfferNotFound
	}
	return &updated, nil
}

func (s *MongoStore) DeleteOffer(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.offers.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("store: DeleteOffer failed to execute delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrOfferNotFound
	}
	return nil
}
