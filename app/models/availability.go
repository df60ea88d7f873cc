package models

import "github.com/shashiranjanraj/dukaan/pkg/apperr"

// Tier is the stock availability classification stored on every product.
type Tier string

const (
	TierAvailable  Tier = "available"
	TierLowStock   Tier = "low-stock"
	TierOutOfStock Tier = "out-of-stock"
)

// DefaultLowStockThreshold applies when a create payload omits the field.
const DefaultLowStockThreshold = 10

// DeriveAvailability classifies a quantity against a low-stock threshold.
// Zero quantity is out-of-stock, anything at or below the threshold is
// low-stock, everything else is available. A zero threshold is valid and
// means the product is only ever flagged once it runs out; negative
// values of either input are rejected.
func DeriveAvailability(quantity, threshold int) (Tier, error) {
	if quantity < 0 {
		return "", apperr.NewValidation("quantity", "The quantity must be at least 0.")
	}
	if threshold < 0 {
		return "", apperr.NewValidation("lowStockThreshold", "The low stock threshold must be at least 0.")
	}
	switch {
	case quantity == 0:
		return TierOutOfStock, nil
	case quantity <= threshold:
		return TierLowStock, nil
	default:
		return TierAvailable, nil
	}
}
