package services

import (
	"context"
	"strings"
	"time"

	"github.com/shashiranjanraj/dukaan/app/models"
	"github.com/shashiranjanraj/dukaan/app/policies"
	"github.com/shashiranjanraj/dukaan/app/repositories"
	"github.com/shashiranjanraj/dukaan/pkg/apperr"
	"github.com/shashiranjanraj/dukaan/pkg/cache"
)

// ShopStore is the slice of the shop repository the shop service needs.
type ShopStore interface {
	List(ctx context.Context, f repositories.ShopFilters) ([]models.Shop, error)
	FindByID(ctx context.Context, id string) (models.Shop, error)
	Update(ctx context.Context, shop *models.Shop) error
	FindNearby(ctx context.Context, lng, lat, maxDistance float64) ([]models.Shop, error)
}

// ProductReader is the read-only product access the shop detail view
// uses for its availability stats.
type ProductReader interface {
	AllForShop(ctx context.Context, shopID string) ([]models.Product, error)
}

// UpdateShopInput is the payload for PUT /shops/{id}. Nil pointers mean
// "leave unchanged".
type UpdateShopInput struct {
	Name        *string         `json:"name"        validate:"nullable,min=2,max=150"`
	Description *string         `json:"description" validate:"nullable,max=1000"`
	Category    *string         `json:"category"    validate:"nullable,in=grocery,pharmacy,electronics,clothing,hardware,stationery,other"`
	Phone       *string         `json:"phone"       validate:"nullable,digits=10"`
	Email       *string         `json:"email"       validate:"nullable,email"`
	Address     *models.Address `json:"address"`
	Longitude   *float64        `json:"longitude"`
	Latitude    *float64        `json:"latitude"`
	IsActive    *bool           `json:"isActive"`
}

// AvailabilityStats summarises a shop's catalogue by tier.
type AvailabilityStats struct {
	Total      int `json:"total"`
	Available  int `json:"available"`
	LowStock   int `json:"lowStock"`
	OutOfStock int `json:"outOfStock"`
}

// ShopDetail is a shop plus its catalogue stats.
type ShopDetail struct {
	Shop  models.Shop       `json:"shop"`
	Stats AvailabilityStats `json:"stats"`
}

const shopListTTL = 2 * time.Minute

type ShopService struct {
	shops    ShopStore
	products ProductReader
}

func NewShopService() *ShopService {
	return &ShopService{
		shops:    repositories.NewShopRepository(),
		products: repositories.NewProductRepository(),
	}
}

// NewShopServiceWith wires explicit stores, used by tests.
func NewShopServiceWith(shops ShopStore, products ProductReader) *ShopService {
	return &ShopService{shops: shops, products: products}
}

// List returns active shops for the given filters. Results are served
// from Redis when a recent identical query is cached.
func (s *ShopService) List(ctx context.Context, f repositories.ShopFilters) ([]models.Shop, error) {
	key := shopListCacheKey(f)

	var shops []models.Shop
	if cache.Get(key, &shops) {
		return shops, nil
	}

	shops, err := s.shops.List(ctx, f)
	if err != nil {
		return nil, err
	}

	cache.Set(key, shops, shopListTTL) //nolint:errcheck
	return shops, nil
}

// Get returns one shop with its availability stats.
func (s *ShopService) Get(ctx context.Context, id string) (ShopDetail, error) {
	shop, err := s.shops.FindByID(ctx, id)
	if err != nil {
		return ShopDetail{}, err
	}

	products, err := s.products.AllForShop(ctx, id)
	if err != nil {
		return ShopDetail{}, err
	}

	stats := AvailabilityStats{Total: len(products)}
	for _, p := range products {
		switch p.Availability {
		case models.TierAvailable:
			stats.Available++
		case models.TierLowStock:
			stats.LowStock++
		case models.TierOutOfStock:
			stats.OutOfStock++
		}
	}

	return ShopDetail{Shop: shop, Stats: stats}, nil
}

// Update applies the owner's changes after an authorization check.
func (s *ShopService) Update(ctx context.Context, principal policies.Principal, id string, in UpdateShopInput) (models.Shop, error) {
	shop, err := s.shops.FindByID(ctx, id)
	if err != nil {
		return models.Shop{}, err
	}

	decision, err := policies.Authorize(principal, policies.ActionUpdateShop, policies.Resource{
		Type:    "shop",
		ShopID:  shop.ID.Hex(),
		OwnerID: shop.OwnerID,
	})
	if err != nil {
		return models.Shop{}, err
	}
	if !decision.Allowed {
		return models.Shop{}, &apperr.PermissionError{
			Action:   string(policies.ActionUpdateShop),
			Resource: "shop",
			Reason:   decision.Reason,
		}
	}

	if in.Name != nil {
		shop.Name = *in.Name
	}
	if in.Description != nil {
		shop.Description = *in.Description
	}
	if in.Category != nil {
		shop.Category = *in.Category
	}
	if in.Phone != nil {
		shop.Phone = *in.Phone
	}
	if in.Email != nil {
		shop.Email = *in.Email
	}
	if in.Address != nil {
		shop.Address = *in.Address
	}
	if in.IsActive != nil {
		shop.IsActive = *in.IsActive
	}
	if in.Longitude != nil && in.Latitude != nil {
		if err := repositories.ValidateCoordinates(*in.Longitude, *in.Latitude); err != nil {
			return models.Shop{}, err
		}
		shop.Location = models.GeoPoint{Type: "Point", Coordinates: []float64{*in.Longitude, *in.Latitude}}
	}

	if err := s.shops.Update(ctx, &shop); err != nil {
		return models.Shop{}, err
	}

	s.invalidateListings()
	return shop, nil
}

// Nearby returns the closest active shops around a point.
func (s *ShopService) Nearby(ctx context.Context, lng, lat, maxDistance float64) ([]models.Shop, error) {
	return s.shops.FindNearby(ctx, lng, lat, maxDistance)
}

func (s *ShopService) invalidateListings() {
	// Listing cache keys are unbounded over filter combinations, so only
	// the unfiltered default is dropped eagerly; the rest expire by TTL.
	cache.Del(shopListCacheKey(repositories.ShopFilters{})) //nolint:errcheck
}

func shopListCacheKey(f repositories.ShopFilters) string {
	parts := []string{"shops:list", f.Category, f.Search, f.Village, f.City, f.State}
	return strings.ToLower(strings.Join(parts, ":"))
}
