package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalogue item belonging to one shop.
//
// Availability is always derived from Quantity and LowStockThreshold at
// write time; it is stored denormalised so that listing and filtering
// never recompute it. Version is the optimistic-concurrency token bumped
// on every stock write.
type Product struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"        json:"id"`
	ShopID            primitive.ObjectID `bson:"shopId"               json:"shopId"`
	Name              string             `bson:"name"                 json:"name"`
	Category          string             `bson:"category,omitempty"   json:"category,omitempty"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	Quantity          int                `bson:"quantity"             json:"quantity"`
	Unit              string             `bson:"unit"                 json:"unit"`
	Price             *float64           `bson:"price,omitempty"      json:"price,omitempty"`
	LowStockThreshold int                `bson:"lowStockThreshold"    json:"lowStockThreshold"`
	Availability      Tier               `bson:"availability"         json:"availability"`
	Barcode           string             `bson:"barcode,omitempty"    json:"barcode,omitempty"`
	LastUpdatedBy     uint               `bson:"lastUpdatedBy,omitempty" json:"lastUpdatedBy,omitempty"`
	Version           int64              `bson:"version"              json:"-"`
	CreatedAt         time.Time          `bson:"createdAt"            json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"            json:"updatedAt"`
}
