package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"designghar-service/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// --- UserStorer Implementation ---

// CreateUser inserts user with its email lower-cased. The unique email index
// rejects duplicates with ErrUserEmailExists.
func (s *MongoStore) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	created := *user
	created.ID = primitive.NewObjectID()
	created.Email = strings.ToLower(strings.TrimSpace(created.Email))
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt

	if _, err := s.users.InsertOne(ctx, &created); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserEmailExists
		}
		return nil, fmt.Errorf("store: CreateUser failed to insert: %w", err)
	}
	return &created, nil
}

func (s *MongoStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"_id": id}, "GetUserByID")
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}, "GetUserByEmail")
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M, op string) (*domain.User, error) {
	var user domain.User
	if err := s.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("store: %s failed to decode: %w", op, err)
	}
	return &user, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("store: ListUsers failed to query users: %w", err)
	}
	users, err := decodeAll[domain.User](ctx, cur, 0)
	if err != nil {
		return nil, fmt.Errorf("store: ListUsers failed to decode users: %w", err)
	}
	return users, nil
}
