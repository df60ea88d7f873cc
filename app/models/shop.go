package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shop categories accepted on create and used for filtering.
var ShopCategories = []string{
	"grocery", "pharmacy", "electronics", "clothing",
	"hardware", "stationery", "other",
}

// ValidShopCategory reports whether c is one of the accepted categories.
func ValidShopCategory(c string) bool {
	for _, v := range ShopCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Address is the embedded postal address of a shop.
type Address struct {
	Street  string `bson:"street,omitempty"  json:"street,omitempty"`
	Village string `bson:"village,omitempty" json:"village,omitempty"`
	City    string `bson:"city,omitempty"    json:"city,omitempty"`
	State   string `bson:"state,omitempty"   json:"state,omitempty"`
	Pincode string `bson:"pincode,omitempty" json:"pincode,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// GeoPoint is a GeoJSON Point. Coordinates are [longitude, latitude].
// The zero value [0, 0] means "location not set" and is excluded from
// proximity results.
type GeoPoint struct {
	Type        string    `bson:"type"        json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// UnsetLocation is the placeholder stored when the owner gave no
// coordinates.
func UnsetLocation() GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{0, 0}}
}

// IsSet reports whether the point carries real coordinates.
func (p GeoPoint) IsSet() bool {
	return len(p.Coordinates) == 2 && (p.Coordinates[0] != 0 || p.Coordinates[1] != 0)
}

// Shop is a storefront document. Products reference it by ShopID.
type Shop struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"       json:"id"`
	Name        string             `bson:"name"                json:"name"`
	OwnerID     uint               `bson:"ownerId"             json:"ownerId"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Address     Address            `bson:"address"             json:"address"`
	Location    GeoPoint           `bson:"location"            json:"location"`
	Phone       string             `bson:"phone,omitempty"     json:"phone,omitempty"`
	Email       string             `bson:"email,omitempty"     json:"email,omitempty"`
	Category    string             `bson:"category"            json:"category"`
	IsActive    bool               `bson:"isActive"            json:"isActive"`
	Workers     []uint             `bson:"workers,omitempty"   json:"workers,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"           json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"           json:"updatedAt"`

	// DistanceMeters is populated only by proximity queries.
	DistanceMeters *float64 `bson:"distance,omitempty" json:"distanceMeters,omitempty"`
}
