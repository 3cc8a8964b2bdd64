package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"designghar-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const productsNS = "designghar.products"

// Helper function to get a pointer (useful for optional fields in domain structs)
func PtrTo[T any](v T) *T {
	return &v
}

func newMockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// toDoc round-trips v through BSON so mock responses carry the same field
// names the store writes.
func toDoc(t require.TestingT, v any) bson.D {
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func sampleProduct() domain.Product {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	return domain.Product{
		ID:                 primitive.NewObjectID(),
		Name:               "Teak Sofa",
		SKU:                "SOFA-001",
		Description:        "Three seater",
		CategoryID:         primitive.NewObjectID().Hex(),
		MediaURLs:          []string{"https://img.example/sofa.jpg"},
		BasePrice:          1000,
		DiscountPercentage: PtrTo(15.0),
		FinalPrice:         850,
		IsActive:           true,
		Tags:               []string{"living"},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestMongoStore_CreateProduct(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("success", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		input := sampleProduct()
		input.ID = primitive.NilObjectID
		input.Tags = nil

		created, err := s.CreateProduct(context.Background(), &input)
		require.NoError(mt, err)
		require.NotNil(mt, created)
		assert.False(mt, created.ID.IsZero(), "store should assign an id")
		assert.Equal(mt, input.SKU, created.SKU)
		assert.NotNil(mt, created.Tags, "tags should be normalized to an empty slice")
		assert.False(mt, created.CreatedAt.IsZero())
		assert.Equal(mt, created.CreatedAt, created.UpdatedAt)
	})

	mt.Run("duplicate sku", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: designghar.products index: uniq_sku",
		}))

		input := sampleProduct()
		created, err := s.CreateProduct(context.Background(), &input)
		require.Error(mt, err)
		assert.True(mt, errors.Is(err, ErrProductSKUExists), "Error should be ErrProductSKUExists")
		assert.Nil(mt, created)
	})
}

func TestMongoStore_GetProductByID(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("found", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		expected := sampleProduct()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch, toDoc(mt, expected)))

		product, err := s.GetProductByID(context.Background(), expected.ID)
		require.NoError(mt, err)
		require.NotNil(mt, product)
		assert.Equal(mt, expected.ID, product.ID)
		assert.Equal(mt, expected.SKU, product.SKU)
		assert.Equal(mt, expected.FinalPrice, product.FinalPrice)
		assert.Equal(mt, expected.DiscountPercentage, product.DiscountPercentage)
		assert.Equal(mt, expected.CreatedAt.Unix(), product.CreatedAt.Unix())
	})

	mt.Run("not found", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch))

		product, err := s.GetProductByID(context.Background(), primitive.NewObjectID())
		require.Error(mt, err)
		assert.True(mt, errors.Is(err, ErrProductNotFound), "Error should be ErrProductNotFound")
		assert.Nil(mt, product)
	})
}

func TestMongoStore_ProductSKUTaken(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("taken", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch, bson.D{{Key: "_id", Value: primitive.NewObjectID()}}))

		taken, err := s.ProductSKUTaken(context.Background(), "SOFA-001", nil)
		require.NoError(mt, err)
		assert.True(mt, taken)
	})

	mt.Run("free", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch))

		self := primitive.NewObjectID()
		taken, err := s.ProductSKUTaken(context.Background(), "SOFA-001", &self)
		require.NoError(mt, err)
		assert.False(mt, taken)
	})
}

func TestMongoStore_ListProducts(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("page with total", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		first, second := sampleProduct(), sampleProduct()
		second.SKU = "SOFA-002"

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch, bson.D{{Key: "n", Value: int32(5)}}),
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch, toDoc(mt, first), toDoc(mt, second)),
		)

		products, total, err := s.ListProducts(context.Background(), ListProductsParams{Limit: 2, Offset: 0, IsActive: PtrTo(true)})
		require.NoError(mt, err)
		assert.Equal(mt, 5, total)
		require.Len(mt, products, 2)
		assert.Equal(mt, "SOFA-001", products[0].SKU)
		assert.Equal(mt, "SOFA-002", products[1].SKU)
	})

	mt.Run("empty skips find", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch))

		products, total, err := s.ListProducts(context.Background(), ListProductsParams{Limit: 20})
		require.NoError(mt, err)
		assert.Equal(mt, 0, total)
		assert.NotNil(mt, products)
		assert.Empty(mt, products)
	})
}

func TestProductFilter(t *testing.T) {
	filter := productFilter(ListProductsParams{
		SearchQuery: PtrTo("sofa (2)"),
		CategoryID:  PtrTo("cat"),
		Tags:        []string{"a", "b"},
		MinPrice:    PtrTo(10.0),
		MaxPrice:    PtrTo(20.0),
		IsActive:    PtrTo(true),
		IsFeatured:  PtrTo(false),
	})

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	pattern := or[0].(bson.M)["name"].(primitive.Regex)
	assert.Equal(t, `sofa \(2\)`, pattern.Pattern, "search input should be regex-quoted")
	assert.Equal(t, "i", pattern.Options)

	assert.Equal(t, "cat", filter["categoryId"])
	assert.Equal(t, bson.M{"$all": []string{"a", "b"}}, filter["tags"])
	assert.Equal(t, bson.M{"$gte": 10.0, "$lte": 20.0}, filter["finalPrice"])
	assert.Equal(t, true, filter["isActive"])
	assert.Equal(t, false, filter["isFeatured"])

	assert.Empty(t, productFilter(ListProductsParams{}))
}

func TestProductSort(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}}, productSort(nil))

	got := productSort([]SortField{{Field: "finalPrice"}, {Field: "name", Desc: true}})
	assert.Equal(t, bson.D{
		{Key: "finalPrice", Value: 1},
		{Key: "name", Value: -1},
		{Key: "_id", Value: 1},
	}, got)
}

// sentCommand returns the first command the mock deployment received.
func sentCommand(mt *mtest.T, name string) bson.Raw {
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt, "no command was sent")
	require.Equal(mt, name, evt.CommandName)
	return evt.Command
}

func TestMongoStore_UpdateProduct(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("success", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		input := sampleProduct()
		stored := input
		stored.ViewCount = 9
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: toDoc(mt, stored)}))

		updated, err := s.UpdateProduct(context.Background(), &input)
		require.NoError(mt, err)
		assert.Equal(mt, input.ID, updated.ID)
		assert.Equal(mt, input.CreatedAt, updated.CreatedAt)
		assert.EqualValues(mt, 9, updated.ViewCount, "counter comes from the stored document")
	})

	mt.Run("sets editable fields only", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		input := sampleProduct()
		input.ViewCount = 5
		input.Features = PtrTo("Solid teak frame")
		input.DiscountPercentage = nil
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: toDoc(mt, input)}))

		_, err := s.UpdateProduct(context.Background(), &input)
		require.NoError(mt, err)

		var sent struct {
			Query  bson.M            `bson:"query"`
			Update map[string]bson.M `bson:"update"`
			New    bool              `bson:"new"`
		}
		require.NoError(mt, bson.Unmarshal(sentCommand(mt, "findAndModify"), &sent))
		assert.Equal(mt, bson.M{"_id": input.ID}, sent.Query)
		assert.True(mt, sent.New, "the post-image should be returned")

		require.Contains(mt, sent.Update, "$set")
		set := sent.Update["$set"]
		assert.NotContains(mt, set, "viewCount")
		assert.NotContains(mt, set, "createdAt")
		assert.NotContains(mt, set, "_id")
		assert.Equal(mt, input.Name, set["name"])
		assert.Equal(mt, input.SKU, set["sku"])
		assert.Equal(mt, "Solid teak frame", set["features"])
		assert.Contains(mt, set, "isActive")
		assert.Contains(mt, set, "isFeatured")
		assert.Contains(mt, set, "updatedAt")

		assert.Equal(mt, bson.M{"discountPercentage": ""}, sent.Update["$unset"])
		assert.Len(mt, sent.Update, 2, "only $set and $unset are expected")
	})

	mt.Run("not found", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		input := sampleProduct()
		_, err := s.UpdateProduct(context.Background(), &input)
		assert.True(mt, errors.Is(err, ErrProductNotFound), "Error should be ErrProductNotFound")
	})

	mt.Run("duplicate sku", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Name: "DuplicateKey", Message: "duplicate key"}))

		input := sampleProduct()
		_, err := s.UpdateProduct(context.Background(), &input)
		assert.True(mt, errors.Is(err, ErrProductSKUExists), "Error should be ErrProductSKUExists")
	})
}

func TestMongoStore_SetProductFlags(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("returns updated document", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		stored := sampleProduct()
		stored.IsFeatured = true
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: toDoc(mt, stored)}))

		product, err := s.SetProductFlags(context.Background(), stored.ID, ProductFlags{IsFeatured: PtrTo(true)})
		require.NoError(mt, err)
		assert.True(mt, product.IsFeatured)
		assert.Equal(mt, stored.ID, product.ID)
	})
}

func TestMongoStore_BulkSetProductFlags(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("matched subset", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		stored := sampleProduct()
		stored.IsActive = false
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCursorResponse(0, productsNS, mtest.FirstBatch, toDoc(mt, stored)),
		)

		ids := []primitive.ObjectID{stored.ID, primitive.NewObjectID()}
		modified, products, err := s.BulkSetProductFlags(context.Background(), ids, ProductFlags{IsActive: PtrTo(false)})
		require.NoError(mt, err)
		assert.Equal(mt, 1, modified)
		require.Len(mt, products, 1)
		assert.False(mt, products[0].IsActive)
	})

	mt.Run("nothing matched", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		modified, products, err := s.BulkSetProductFlags(context.Background(), []primitive.ObjectID{primitive.NewObjectID()}, ProductFlags{IsActive: PtrTo(true)})
		require.NoError(mt, err)
		assert.Equal(mt, 0, modified)
		assert.NotNil(mt, products)
		assert.Empty(mt, products)
	})
}

// sentUpdate decodes the single update statement of an update command.
type sentUpdate struct {
	Q bson.M                      `bson:"q"`
	U map[string]map[string]int64 `bson:"u"`
}

func decodeSentUpdate(mt *mtest.T) sentUpdate {
	var cmd struct {
		Updates []sentUpdate `bson:"updates"`
	}
	require.NoError(mt, bson.Unmarshal(sentCommand(mt, "update"), &cmd))
	require.Len(mt, cmd.Updates, 1)
	return cmd.Updates[0]
}

func TestMongoStore_IncrementProductViews(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("success", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		id := primitive.NewObjectID()
		require.NoError(mt, s.IncrementProductViews(context.Background(), id))

		sent := decodeSentUpdate(mt)
		assert.Equal(mt, bson.M{"_id": id}, sent.Q)
		assert.Equal(mt, map[string]map[string]int64{"$inc": {"viewCount": 1}}, sent.U)
	})

	mt.Run("unknown id", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		err := s.IncrementProductViews(context.Background(), primitive.NewObjectID())
		assert.True(mt, errors.Is(err, ErrProductNotFound), "Error should be ErrProductNotFound")
	})
}

func TestMongoStore_DeleteProduct(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("success", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(mt, s.DeleteProduct(context.Background(), primitive.NewObjectID()))
	})

	mt.Run("not found", func(mt *mtest.T) {
		s := NewMongoStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		err := s.DeleteProduct(context.Background(), primitive.NewObjectID())
		require.Error(mt, err, "DeleteProduct should return an error if nothing was deleted")
		assert.True(mt, errors.Is(err, ErrProductNotFound), "Error should be ErrProductNotFound")
	})
}
