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

// --- CategoryStorer Implementation ---

func (s *MongoStore) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	created := *category
	created.ID = primitive.NewObjectID()
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt
	created.Normalize()

	if _, err := s.categories.InsertOne(ctx, &created); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrCategorySKUExists
		}
		return nil, fmt.Errorf("store: CreateCategory failed to insert: %w", err)
	}
	return &created, nil
}

func (s *MongoStore) GetCategoryByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	var category domain.Category
	if err := s.categories.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: GetCategoryByID failed to decode: %w", err)
	}
	category.Normalize()
	return &category, nil
}

func (s *MongoStore) CategorySKUTaken(ctx context.Context, sku string, exclude *primitive.ObjectID) (bool, error) {
	err := s.categories.FindOne(ctx, skuFilter(sku, exclude), options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("store: CategorySKUTaken lookup failed: %w", err)
	}
	return true, nil
}

// ListCategories returns every category matching params, ordered by sequence then name.
func (s *MongoStore) ListCategories(ctx context.Context, params ListCategoriesParams) ([]domain.Category, error) {
	filter := bson.M{}
	if params.IsActive != nil {
		filter["isActive"] = *params.IsActive
	}

	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}, {Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.categories.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("store: ListCategories failed to query categories: %w", err)
	}
	categories, err := decodeAll[domain.Category](ctx, cur, 0)
	if err != nil {
		return nil, fmt.Errorf("store: ListCategories failed to decode categories: %w", err)
	}
	for i := range categories {
		categories[i].Normalize()
	}
	return categories, nil
}

func (s *MongoStore) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	updated := *category
	updated.UpdatedAt = s.now()
	updated.Normalize()

	res, err := s.categories.ReplaceOne(ctx, bson.M{"_id": updated.ID}, &updated)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrCategorySKUExists
		}
		return nil, fmt.Errorf("store: UpdateCategory failed to replace: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrCategoryNotFound
	}
	return &updated, nil
}

func (s *MongoStore) SetCategoryActive(ctx context.Context, id primitive.ObjectID, isActive bool) (*domain.Category, error) {
	update := bson.M{"$set": bson.M{"isActive": isActive, "updatedAt": s.now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var category domain.Category
	if err := s.categories.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&category); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: SetCategoryActive failed: %w", err)
	}
	category.Normalize()
	return &category, nil
}

func (s *MongoStore) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.categories.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("store: DeleteCategory failed to execute delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
