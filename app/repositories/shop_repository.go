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
	"github.com/shashiranjanraj/dukaan/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	shopCollection = "shops"

	// NearbyDefaultRadius is the proximity search radius in meters when
	// the caller does not supply one.
	NearbyDefaultRadius = 5000.0

	// NearbyLimit caps proximity results.
	NearbyLimit = 20
)

// ShopFilters are the optional listing filters accepted by BuildShopFilter.
type ShopFilters struct {
	Category string
	Search   string
	Village  string
	City     string
	State    string
}

// BuildShopFilter converts listing filters into a Mongo predicate. Only
// active shops are ever matched. Search is a case-insensitive substring
// match over the name and address fields; the region filters are
// substring matches too, and they AND with search, narrowing rather
// than widening the result.
func BuildShopFilter(f ShopFilters) bson.M {
	filter := bson.M{"isActive": true}

	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(strings.TrimSpace(f.Search)), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"address.village": re},
			bson.M{"address.city": re},
			bson.M{"address.state": re},
		}
	}
	if f.Village != "" {
		filter["address.village"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Village), Options: "i"}
	}
	if f.City != "" {
		filter["address.city"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.City), Options: "i"}
	}
	if f.State != "" {
		filter["address.state"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.State), Options: "i"}
	}

	return filter
}

// ShopRepository handles catalogue operations for Shop documents.
type ShopRepository struct{}

func NewShopRepository() *ShopRepository {
	return &ShopRepository{}
}

func (r *ShopRepository) col() *mongo.Collection {
	return database.Mongo.Collection(shopCollection)
}

// List returns active shops matching the filters, newest first.
func (r *ShopRepository) List(ctx context.Context, f ShopFilters) ([]models.Shop, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.col().Find(ctx, BuildShopFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("shop list: %w", err)
	}
	defer cur.Close(ctx)

	shops := []models.Shop{}
	if err := cur.All(ctx, &shops); err != nil {
		return nil, fmt.Errorf("shop list decode: %w", err)
	}
	return shops, nil
}

// FindByID fetches one shop by id, deactivated ones included. Hiding
// inactive shops is the listing predicate's job; the owner still needs
// to reach a deactivated shop to turn it back on.
func (r *ShopRepository) FindByID(ctx context.Context, id string) (models.Shop, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Shop{}, apperr.ErrNotFound
	}

	var shop models.Shop
	err = r.col().FindOne(ctx, bson.M{"_id": oid}).Decode(&shop)
	if err == mongo.ErrNoDocuments {
		return models.Shop{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.Shop{}, fmt.Errorf("shop find: %w", err)
	}
	return shop, nil
}

// Create inserts a new shop and returns it with its assigned id.
func (r *ShopRepository) Create(ctx context.Context, shop *models.Shop) error {
	now := time.Now().UTC()
	shop.CreatedAt = now
	shop.UpdatedAt = now
	if !shop.Location.IsSet() {
		shop.Location = models.UnsetLocation()
	}

	res, err := r.col().InsertOne(ctx, shop)
	if err != nil {
		return fmt.Errorf("shop create: %w", err)
	}
	shop.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Update overwrites the mutable fields of an existing shop.
func (r *ShopRepository) Update(ctx context.Context, shop *models.Shop) error {
	shop.UpdatedAt = time.Now().UTC()

	res, err := r.col().UpdateOne(ctx,
		bson.M{"_id": shop.ID},
		bson.M{"$set": bson.M{
			"name":        shop.Name,
			"description": shop.Description,
			"address":     shop.Address,
			"location":    shop.Location,
			"phone":       shop.Phone,
			"email":       shop.Email,
			"category":    shop.Category,
			"isActive":    shop.IsActive,
			"workers":     shop.Workers,
			"updatedAt":   shop.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("shop update: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ValidateCoordinates rejects out-of-range longitude/latitude pairs.
func ValidateCoordinates(lng, lat float64) error {
	fields := map[string]string{}
	if lng < -180 || lng > 180 {
		fields["longitude"] = "The longitude must be between -180 and 180."
	}
	if lat < -90 || lat > 90 {
		fields["latitude"] = "The latitude must be between -90 and 90."
	}
	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}

// BuildNearbyPipeline builds the $geoNear aggregation for a proximity
// search. The stage sorts nearest first, writes the spherical distance
// in meters into the document's distance field, and excludes inactive
// shops along with those still carrying the unset [0, 0] sentinel.
func BuildNearbyPipeline(lng, lat, maxDistance float64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near": bson.M{
				"type":        "Point",
				"coordinates": bson.A{lng, lat},
			},
			"distanceField": "distance",
			"maxDistance":   maxDistance,
			"spherical":     true,
			"query": bson.M{
				"isActive":             true,
				"location.coordinates": bson.M{"$ne": bson.A{0.0, 0.0}},
			},
		}}},
		{{Key: "$limit", Value: NearbyLimit}},
	}
}

// FindNearby returns active shops with a known location within
// maxDistance meters of the point, nearest first with DistanceMeters
// set, capped at NearbyLimit.
func (r *ShopRepository) FindNearby(ctx context.Context, lng, lat, maxDistance float64) ([]models.Shop, error) {
	if err := ValidateCoordinates(lng, lat); err != nil {
		return nil, err
	}
	if maxDistance <= 0 {
		maxDistance = NearbyDefaultRadius
	}
	metrics.NearbyQueries.Inc()

	cur, err := r.col().Aggregate(ctx, BuildNearbyPipeline(lng, lat, maxDistance))
	if err != nil {
		return nil, fmt.Errorf("shop nearby: %w", err)
	}
	defer cur.Close(ctx)

	shops := []models.Shop{}
	if err := cur.All(ctx, &shops); err != nil {
		return nil, fmt.Errorf("shop nearby decode: %w", err)
	}
	return shops, nil
}

// EnsureIndexes creates the geospatial and lookup indexes. Safe to call
// on every boot.
func (r *ShopRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "ownerId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("shop indexes: %w", err)
	}
	return nil
}
