package repositories

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shashiranjanraj/dukaan/app/models"
	"github.com/shashiranjanraj/dukaan/pkg/apperr"
	"github.com/shashiranjanraj/dukaan/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productCollection = "products"

// ProductFilters are the optional listing filters accepted by
// BuildProductFilter. The shop id is mandatory and supplied separately.
type ProductFilters struct {
	Category     string
	Availability string
	Search       string
}

// BuildProductFilter converts listing filters into a Mongo predicate.
// Every product query is scoped to one shop. Category and availability
// are exact matches; search is a case-insensitive substring match on
// the name. Filters compose as a pure intersection, so applying them
// one at a time or all at once yields the same set.
func BuildProductFilter(shopID primitive.ObjectID, f ProductFilters) bson.M {
	filter := bson.M{"shopId": shopID}

	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Availability != "" {
		filter["availability"] = f.Availability
	}
	if f.Search != "" {
		filter["name"] = primitive.Regex{
			Pattern: regexp.QuoteMeta(strings.TrimSpace(f.Search)),
			Options: "i",
		}
	}

	return filter
}

// ProductRepository handles catalogue operations for Product documents.
type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

func (r *ProductRepository) col() *mongo.Collection {
	return database.Mongo.Collection(productCollection)
}

// List returns the shop's products matching the filters, newest first.
// The _id tiebreak keeps the order stable across identical timestamps.
func (r *ProductRepository) List(ctx context.Context, shopID string, f ProductFilters) ([]models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(shopID)
	if err != nil {
		return nil, apperr.NewValidation("shopId", "The shop id is invalid.")
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})

	cur, err := r.col().Find(ctx, BuildProductFilter(oid, f), opts)
	if err != nil {
		return nil, fmt.Errorf("product list: %w", err)
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("product list decode: %w", err)
	}
	return products, nil
}

// FindByID fetches one product.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Product{}, apperr.ErrNotFound
	}

	var p models.Product
	err = r.col().FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Product{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("product find: %w", err)
	}
	return p, nil
}

// Create inserts a new product and returns it with its assigned id.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Version = 1

	res, err := r.col().InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("product create: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// CASUpdate applies the given field set to the product only if its
// version still matches expectedVersion, bumping the version in the
// same atomic write. It returns the updated document, or
// apperr.ErrNotFound when the id or version no longer matches; the
// caller distinguishes the two by re-reading.
func (r *ProductRepository) CASUpdate(ctx context.Context, id primitive.ObjectID, expectedVersion int64, set bson.M) (models.Product, error) {
	set["updatedAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Product
	err := r.col().FindOneAndUpdate(ctx,
		bson.M{"_id": id, "version": expectedVersion},
		bson.M{"$set": set, "$inc": bson.M{"version": 1}},
		opts,
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return models.Product{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("product cas update: %w", err)
	}
	return updated, nil
}

// Delete removes a product permanently.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.ErrNotFound
	}

	res, err := r.col().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("product delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// AllForShop fetches every product of a shop without filters, used by
// the category summary.
func (r *ProductRepository) AllForShop(ctx context.Context, shopID string) ([]models.Product, error) {
	return r.List(ctx, shopID, ProductFilters{})
}

// EnsureIndexes creates the listing indexes. Safe to call on every boot.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "shopId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "shopId", Value: 1}, {Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "shopId", Value: 1}, {Key: "availability", Value: 1}}},
		{
			Keys:    bson.D{{Key: "shopId", Value: 1}, {Key: "barcode", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("product indexes: %w", err)
	}
	return nil
}
