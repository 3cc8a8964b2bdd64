package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Predefined errors for store operations
var (
	ErrCategoryNotFound  = errors.New("store: category not found")
	ErrCategorySKUExists = errors.New("store: category SKU already exists")
	ErrProductNotFound   = errors.New("store: product not found")
	ErrProductSKUExists  = errors.New("store: product SKU already exists")
	ErrBannerNotFound    = errors.New("store: banner not found")
	ErrOfferNotFound     = errors.New("store: offer not found")
	ErrUserNotFound      = errors.New("store: user not found")
	ErrUserEmailExists   = errors.New("store: user email already exists")
)

const (
	productsCollection   = "products"
	categoriesCollection = "categories"
	bannersCollection    = "banners"
	offersCollection     = "offers"
	usersCollection      = "users"
)

// MongoStore implements every *Storer interface on top of one MongoDB database.
type MongoStore struct {
	db         *mongo.Database
	products   *mongo.Collection
	categories *mongo.Collection
	banners    *mongo.Collection
	offers     *mongo.Collection
	users      *mongo.Collection
	now        func() time.Time
}

// NewMongoStore creates a new MongoStore instance.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		db:         db,
		products:   db.Collection(productsCollection),
		categories: db.Collection(categoriesCollection),
		banners:    db.Collection(bannersCollection),
		offers:     db.Collection(offersCollection),
		users:      db.Collection(usersCollection),
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Connect opens a client for uri and verifies it with a ping.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: connect failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: ping failed: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the store relies on. The unique sku and
// email indexes are the authoritative uniqueness guarantee; application-level
// checks only exist to produce earlier, clearer errors.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	specs := map[*mongo.Collection][]mongo.IndexModel{
		s.products: {
			{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_sku")},
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "isFeatured", Value: 1}}, Options: options.Index().SetName("active_featured")},
			{Keys: bson.D{{Key: "categoryId", Value: 1}}, Options: options.Index().SetName("category")},
			{Keys: bson.D{{Key: "updatedAt", Value: -1}}, Options: options.Index().SetName("updated_desc")},
		},
		s.categories: {
			{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_sku")},
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "sequence", Value: 1}}, Options: options.Index().SetName("active_sequence")},
		},
		s.banners: {
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "startDate", Value: 1}, {Key: "endDate", Value: 1}, {Key: "sequence", Value: 1}}, Options: options.Index().SetName("live_window")},
		},
		s.users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		},
	}
	for coll, models := range specs {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("store: EnsureIndexes on %s failed: %w", coll.Name(), err)
		}
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Client().Disconnect(ctx); err != nil {
		return fmt.Errorf("store: disconnect failed: %w", err)
	}
	return nil
}

// skuFilter matches documents with sku, excluding the document being updated.
func skuFilter(sku string, exclude *primitive.ObjectID) bson.M {
	filter := bson.M{"sku": sku}
	if exclude != nil {
		filter["_id"] = bson.M{"$ne": *exclude}
	}
	return filter
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor, capacity int) ([]T, error) {
	defer cur.Close(ctx)
	out := make([]T, 0, capacity)
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
