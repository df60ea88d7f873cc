package seeders

import (
	"context"
	"time"

	"github.com/shashiranjanraj/dukaan/app/models"
	"github.com/shashiranjanraj/dukaan/app/repositories"
	"github.com/shashiranjanraj/dukaan/pkg/auth"
	"gorm.io/gorm"
)

func init() {
	Register("demo-shop", SeedDemoShop)
}

// SeedDemoShop creates a demo owner with one grocery shop and a small
// catalogue spanning all three availability tiers. Requires the
// catalogue store to be connected.
func SeedDemoShop(db *gorm.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var existing models.User
	if err := db.Where("email = ?", "demo@dukaan.local").First(&existing).Error; err == nil {
		return nil // already seeded
	}

	hashed, err := auth.HashPassword("password")
	if err != nil {
		return err
	}

	owner := models.User{
		Name:     "Demo Owner",
		Email:    "demo@dukaan.local",
		Password: hashed,
		Phone:    "9876543210",
		Role:     models.RoleOwner,
		IsActive: true,
	}
	if err := db.Create(&owner).Error; err != nil {
		return err
	}

	shops := repositories.NewShopRepository()
	shop := models.Shop{
		Name:        "Demo Kirana Store",
		OwnerID:     owner.ID,
		Description: "Neighbourhood grocery, seeded for local development.",
		Address: models.Address{
			Street:  "12 MG Road",
			City:    "Pune",
			State:   "Maharashtra",
			Pincode: "411001",
			Country: "India",
		},
		Location: models.GeoPoint{Type: "Point", Coordinates: []float64{73.8567, 18.5204}},
		Phone:    "9876543210",
		Email:    "demo@dukaan.local",
		Category: "grocery",
		IsActive: true,
	}
	if err := shops.Create(ctx, &shop); err != nil {
		return err
	}

	hex := shop.ID.Hex()
	owner.ShopID = &hex
	if err := db.Save(&owner).Error; err != nil {
		return err
	}

	products := repositories.NewProductRepository()
	price := func(v float64) *float64 { return &v }
	catalogue := []models.Product{
		{Name: "Basmati Rice 1kg", Category: "grains", Quantity: 40, Unit: "pcs", Price: price(95), Availability: models.TierAvailable},
		{Name: "Toor Dal 500g", Category: "grains", Quantity: 6, Unit: "pcs", Price: price(72), Availability: models.TierLowStock},
		{Name: "Milk 500ml", Category: "dairy", Quantity: 0, Unit: "pcs", Price: price(28), Availability: models.TierOutOfStock},
	}
	for i := range catalogue {
		catalogue[i].ShopID = shop.ID
		catalogue[i].LowStockThreshold = models.DefaultLowStockThreshold
		catalogue[i].LastUpdatedBy = owner.ID
		if err := products.Create(ctx, &catalogue[i]); err != nil {
			return err
		}
	}

	return nil
}
