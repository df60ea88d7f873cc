package repositories

import (
	"testing"

	"github.com/shashiranjanraj/dukaan/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildShopFilterDefaults(t *testing.T) {
	filter := BuildShopFilter(ShopFilters{})
	assert.Equal(t, bson.M{"isActive": true}, filter)
}

func TestBuildShopFilterSearch(t *testing.T) {
	filter := BuildShopFilter(ShopFilters{Search: "pune"})

	or, ok := filter["$or"].(bson.A)
	require.True(t, ok, "search should expand into an $or clause")
	require.Len(t, or, 4)

	// Search covers the name and address fields, nothing else. A shop
	// whose description mentions the term must not match.
	searched := []string{}
	for _, branch := range or {
		for field := range branch.(bson.M) {
			searched = append(searched, field)
		}
	}
	assert.ElementsMatch(t,
		[]string{"name", "address.village", "address.city", "address.state"},
		searched)

	// Case-insensitive substring match over the city field.
	city := or[2].(bson.M)["address.city"].(primitive.Regex)
	assert.Equal(t, "pune", city.Pattern)
	assert.Equal(t, "i", city.Options)
}

func TestBuildShopFilterSearchEscapesRegex(t *testing.T) {
	filter := BuildShopFilter(ShopFilters{Search: "a.c+"})
	or := filter["$or"].(bson.A)
	name := or[0].(bson.M)["name"].(primitive.Regex)
	assert.Equal(t, `a\.c\+`, name.Pattern)
}

func TestBuildShopFilterRegionNarrowsSearch(t *testing.T) {
	filter := BuildShopFilter(ShopFilters{Search: "kirana", City: "Pune", Category: "grocery"})

	// All three conditions coexist at the top level, so they AND.
	assert.Contains(t, filter, "$or")
	assert.Equal(t, "grocery", filter["category"])

	// Region filters are substring matches, so "Pune" also finds shops
	// filed under "Pune City".
	city := filter["address.city"].(primitive.Regex)
	assert.Equal(t, "Pune", city.Pattern)
	assert.Equal(t, "i", city.Options)
}

func TestBuildNearbyPipeline(t *testing.T) {
	pipeline := BuildNearbyPipeline(73.8567, 18.5204, 5000)
	require.Len(t, pipeline, 2)
	require.Equal(t, "$geoNear", pipeline[0][0].Key)

	stage := pipeline[0][0].Value.(bson.M)
	assert.Equal(t, "distance", stage["distanceField"])
	assert.Equal(t, 5000.0, stage["maxDistance"])

	near := stage["near"].(bson.M)
	assert.Equal(t, bson.A{73.8567, 18.5204}, near["coordinates"])

	// Unlocated shops sit at the [0, 0] sentinel and must never appear
	// in proximity results, however close the caller is to it.
	query := stage["query"].(bson.M)
	assert.Equal(t, true, query["isActive"])
	assert.Equal(t, bson.M{"$ne": bson.A{0.0, 0.0}}, query["location.coordinates"])

	assert.Equal(t, "$limit", pipeline[1][0].Key)
	assert.Equal(t, NearbyLimit, pipeline[1][0].Value)
}

func TestBuildProductFilterScopedToShop(t *testing.T) {
	shopID := primitive.NewObjectID()
	filter := BuildProductFilter(shopID, ProductFilters{})
	assert.Equal(t, bson.M{"shopId": shopID}, filter)
}

func TestBuildProductFilterIntersection(t *testing.T) {
	shopID := primitive.NewObjectID()

	both := BuildProductFilter(shopID, ProductFilters{Category: "dairy", Availability: "low-stock"})
	catOnly := BuildProductFilter(shopID, ProductFilters{Category: "dairy"})
	availOnly := BuildProductFilter(shopID, ProductFilters{Availability: "low-stock"})

	// The combined filter is exactly the union of the two single-filter
	// key sets; each filter narrows independently.
	assert.Equal(t, both["category"], catOnly["category"])
	assert.Equal(t, both["availability"], availOnly["availability"])
	assert.Len(t, both, 3)
}

func TestBuildProductFilterSearchCaseInsensitive(t *testing.T) {
	shopID := primitive.NewObjectID()
	filter := BuildProductFilter(shopID, ProductFilters{Search: "  Rice "})

	re := filter["name"].(primitive.Regex)
	assert.Equal(t, "Rice", re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestValidateCoordinates(t *testing.T) {
	require.NoError(t, ValidateCoordinates(73.85, 18.52))
	require.NoError(t, ValidateCoordinates(-180, 90))

	err := ValidateCoordinates(200, 0)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, apperr.FieldsOf(err), "longitude")

	err = ValidateCoordinates(0, -91)
	require.Error(t, err)
	assert.Contains(t, apperr.FieldsOf(err), "latitude")

	err = ValidateCoordinates(181, 91)
	require.Error(t, err)
	assert.Len(t, apperr.FieldsOf(err), 2)
}
