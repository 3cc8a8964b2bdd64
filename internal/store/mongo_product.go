package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"designghar-service/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// --- ProductStorer Implementation ---

func (s *MongoStore) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	created := *product
	created.ID = primitive.NewObjectID()
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt
	created.Normalize()

	if _, err := s.products.InsertOne(ctx, &created); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrProductSKUExists
		}
		return nil, fmt.Errorf("store: CreateProduct failed to insert: %w", err)
	}
	return &created, nil
}

func (s *MongoStore) GetProductByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	return s.findProduct(ctx, bson.M{"_id": id}, "GetProductByID")
}

func (s *MongoStore) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return s.findProduct(ctx, bson.M{"sku": sku}, "GetProductBySKU")
}

func (s *MongoStore) findProduct(ctx context.Context, filter bson.M, op string) (*domain.Product, error) {
	var product domain.Product
	if err := s.products.FindOne(ctx, filter).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: %s failed to decode: %w", op, err)
	}
	product.Normalize()
	return &product, nil
}

func (s *MongoStore) ProductSKUTaken(ctx context.Context, sku string, exclude *primitive.ObjectID) (bool, error) {
	err := s.products.FindOne(ctx, skuFilter(sku, exclude), options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("store: ProductSKUTaken lookup failed: %w", err)
	}
	return true, nil
}

// productFilter translates list parameters into a query document.
func productFilter(params ListProductsParams) bson.M {
	filter := bson.M{}
	if params.SearchQuery != nil && *params.SearchQuery != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(*params.SearchQuery), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	if params.CategoryID != nil {
		filter["categoryId"] = *params.CategoryID
	}
	if len(params.Tags) > 0 {
		filter["tags"] = bson.M{"$all": params.Tags}
	}
	if params.MinPrice != nil || params.MaxPrice != nil {
		price := bson.M{}
		if params.MinPrice != nil {
			price["$gte"] = *params.MinPrice
		}
		if params.MaxPrice != nil {
			price["$lte"] = *params.MaxPrice
		}
		filter["finalPrice"] = price
	}
	if params.IsActive != nil {
		filter["isActive"] = *params.IsActive
	}
	if params.IsFeatured != nil {
		filter["isFeatured"] = *params.IsFeatured
	}
	return filter
}

// productSort builds a deterministic sort document. _id is always the last key
// so documents with equal sort values keep a stable order across pages.
func productSort(fields []SortField) bson.D {
	if len(fields) == 0 {
		fields = []SortField{{Field: "updatedAt", Desc: true}}
	}
	sort := make(bson.D, 0, len(fields)+1)
	for _, f := range fields {
		dir := 1
		if f.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: f.Field, Value: dir})
	}
	tieBreak := 1
	if fields[0].Desc {
		tieBreak = -1
	}
	return append(sort, bson.E{Key: "_id", Value: tieBreak})
}

func (s *MongoStore) ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, int, error) {
	filter := productFilter(params)

	totalCount, err := s.products.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts failed to count products: %w", err)
	}
	if totalCount == 0 {
		return []domain.Product{}, 0, nil
	}

	opts := options.Find().
		SetSort(productSort(params.Sort)).
		SetSkip(int64(params.Offset)).
		SetLimit(int64(params.Limit))
	cur, err := s.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts failed to query products: %w", err)
	}
	products, err := decodeAll[domain.Product](ctx, cur, params.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts failed to decode products: %w", err)
	}
	for i := range products {
		products[i].Normalize()
	}
	return products, int(totalCount), nil
}

// UpdateProduct overwrites the editable fields of a product and returns the
// stored document. viewCount and createdAt are never written here.
func (s *MongoStore) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	updated := *product
	updated.UpdatedAt = s.now()
	updated.Normalize()

	set := bson.M{
		"name":        updated.Name,
		"sku":         updated.SKU,
		"description": updated.Description,
		"categoryId":  updated.CategoryID,
		"mediaURLs":   updated.MediaURLs,
		"basePrice":   updated.BasePrice,
		"finalPrice":  updated.FinalPrice,
		"isActive":    updated.IsActive,
		"isFeatured":  updated.IsFeatured,
		"tags":        updated.Tags,
		"updatedAt":   updated.UpdatedAt,
	}
	unset := bson.M{}
	setOrUnset(set, unset, "features", updated.Features)
	setOrUnset(set, unset, "categoryName", updated.CategoryName)
	setOrUnset(set, unset, "discountPercentage", updated.DiscountPercentage)
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var stored domain.Product
	if err := s.products.FindOneAndUpdate(ctx, bson.M{"_id": updated.ID}, update, opts).Decode(&stored); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrProductSKUExists
		}
		return nil, fmt.Errorf("store: UpdateProduct failed: %w", err)
	}
	stored.Normalize()
	return &stored, nil
}

func (s *MongoStore) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to execute delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (s *MongoStore) flagsUpdate(flags ProductFlags) bson.M {
	set := bson.M{"updatedAt": s.now()}
	if flags.IsActive != nil {
		set["isActive"] = *flags.IsActive
	}
	if flags.IsFeatured != nil {
		set["isFeatured"] = *flags.IsFeatured
	}
	return bson.M{"$set": set}
}

func (s *MongoStore) SetProductFlags(ctx context.Context, id primitive.ObjectID, flags ProductFlags) (*domain.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product domain.Product
	err := s.products.FindOneAndUpdate(ctx, bson.M{"_id": id}, s.flagsUpdate(flags), opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: SetProductFlags failed: %w", err)
	}
	product.Normalize()
	return &product, nil
}

// BulkSetProductFlags applies flags to every existing product in ids. Unknown
// ids are skipped; the returned count is the number of products matched.
func (s *MongoStore) BulkSetProductFlags(ctx context.Context, ids []primitive.ObjectID, flags ProductFlags) (int, []domain.Product, error) {
	filter := bson.M{"_id": bson.M{"$in": ids}}
	res, err := s.products.UpdateMany(ctx, filter, s.flagsUpdate(flags))
	if err != nil {
		return 0, nil, fmt.Errorf("store: BulkSetProductFlags failed to update: %w", err)
	}
	if res.MatchedCount == 0 {
		return 0, []domain.Product{}, nil
	}

	cur, err := s.products.Find(ctx, filter)
	if err != nil {
		return 0, nil, fmt.Errorf("store: BulkSetProductFlags failed to reload products: %w", err)
	}
	products, err := decodeAll[domain.Product](ctx, cur, len(ids))
	if err != nil {
		return 0, nil, fmt.Errorf("store: BulkSetProductFlags failed to decode products: %w", err)
	}
	for i := range products {
		products[i].Normalize()
	}
	return int(res.MatchedCount), products, nil
}

// IncrementProductViews bumps viewCount with an atomic $inc, so concurrent
// calls never lose updates. updatedAt is left alone.
func (s *MongoStore) IncrementProductViews(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.products.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"viewCount": 1}})
	if err != nil {
		return fmt.Errorf("store: IncrementProductViews failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}
