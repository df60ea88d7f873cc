package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/dukaan/app/models"
	"github.com/shashiranjanraj/dukaan/app/policies"
	"github.com/shashiranjanraj/dukaan/app/repositories"
	"github.com/shashiranjanraj/dukaan/pkg/apperr"
	"github.com/shashiranjanraj/dukaan/pkg/cache"
	"github.com/shashiranjanraj/dukaan/pkg/collection"
	"github.com/shashiranjanraj/dukaan/pkg/logger"
	"github.com/shashiranjanraj/dukaan/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductStore is the slice of the product repository the product
// service needs. Satisfied by repositories.ProductRepository.
type ProductStore interface {
	List(ctx context.Context, shopID string, f repositories.ProductFilters) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	CASUpdate(ctx context.Context, id primitive.ObjectID, expectedVersion int64, set bson.M) (models.Product, error)
	Delete(ctx context.Context, id string) error
	AllForShop(ctx context.Context, shopID string) ([]models.Product, error)
}

// CreateProductInput is the payload for POST /products. The shop is
// taken from the authenticated principal, never from the body.
type CreateProductInput struct {
	Name              string   `json:"name"              validate:"required,min=1,max=200"`
	Category          string   `json:"category"          validate:"nullable,max=100"`
	Description       string   `json:"description"       validate:"nullable,max=1000"`
	Quantity          int      `json:"quantity"          validate:"gte=0"`
	Unit              string   `json:"unit"              validate:"nullable,max=20"`
	Price             *float64 `json:"price"             validate:"nullable,gte=0"`
	LowStockThreshold *int     `json:"lowStockThreshold" validate:"nullable,gte=0"`
	Barcode           string   `json:"barcode"           validate:"nullable,max=64"`
}

// UpdateProductInput is the payload for PUT /products/{id}. Nil means
// "leave unchanged".
type UpdateProductInput struct {
	Name              *string  `json:"name"              validate:"nullable,min=1,max=200"`
	Category          *string  `json:"category"          validate:"nullable,max=100"`
	Description       *string  `json:"description"       validate:"nullable,max=1000"`
	Quantity          *int     `json:"quantity"          validate:"nullable,gte=0"`
	Unit              *string  `json:"unit"              validate:"nullable,max=20"`
	Price             *float64 `json:"price"             validate:"nullable,gte=0"`
	LowStockThreshold *int     `json:"lowStockThreshold" validate:"nullable,gte=0"`
	Barcode           *string  `json:"barcode"           validate:"nullable,max=64"`
}

// CategorySummary is one row of the per-shop reporting view.
type CategorySummary struct {
	Category   string `json:"category"`
	Total      int    `json:"total"`
	Available  int    `json:"available"`
	LowStock   int    `json:"lowStock"`
	OutOfStock int    `json:"outOfStock"`
}

const (
	// casAttempts bounds the optimistic-concurrency retry loop.
	casAttempts = 3

	summaryTTL = 2 * time.Minute
)

type ProductService struct {
	products ProductStore
}

func NewProductService() *ProductService {
	return &ProductService{products: repositories.NewProductRepository()}
}

// NewProductServiceWith wires an explicit store, used by tests.
func NewProductServiceWith(products ProductStore) *ProductService {
	return &ProductService{products: products}
}

// List returns a shop's products filtered by category, availability
// and name search.
func (s *ProductService) List(ctx context.Context, shopID string, f repositories.ProductFilters) ([]models.Product, error) {
	return s.products.List(ctx, shopID, f)
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id string) (models.Product, error) {
	return s.products.FindByID(ctx, id)
}

// Create adds a product to the principal's shop with its availability
// derived from the initial quantity.
func (s *ProductService) Create(ctx context.Context, principal policies.Principal, in CreateProductInput) (models.Product, error) {
	decision, err := policies.Authorize(principal, policies.ActionCreateProduct, policies.Resource{
		Type:   "product",
		ShopID: principal.ShopID,
	})
	if err != nil {
		return models.Product{}, err
	}
	if !decision.Allowed {
		return models.Product{}, denied(policies.ActionCreateProduct, decision.Reason)
	}

	shopOID, err := primitive.ObjectIDFromHex(principal.ShopID)
	if err != nil {
		return models.Product{}, apperr.NewValidation("shopId", "The shop id is invalid.")
	}

	// The default applies only when the payload omits the field; an
	// explicit zero threshold is kept.
	threshold := models.DefaultLowStockThreshold
	if in.LowStockThreshold != nil {
		threshold = *in.LowStockThreshold
	}

	tier, err := models.DeriveAvailability(in.Quantity, threshold)
	if err != nil {
		return models.Product{}, err
	}

	unit := in.Unit
	if unit == "" {
		unit = "pcs"
	}

	product := models.Product{
		ShopID:            shopOID,
		Name:              in.Name,
		Category:          in.Category,
		Description:       in.Description,
		Quantity:          in.Quantity,
		Unit:              unit,
		Price:             in.Price,
		LowStockThreshold: threshold,
		Availability:      tier,
		Barcode:           in.Barcode,
		LastUpdatedBy:     principal.ID,
	}

	if err := s.products.Create(ctx, &product); err != nil {
		return models.Product{}, err
	}

	metrics.StockUpdates.WithLabelValues(string(tier)).Inc()
	s.invalidateSummary(principal.ShopID)
	return product, nil
}

// Update applies changes to a product after an authorization check.
// Quantity and threshold changes re-derive the availability and are
// written with a compare-and-set on the record's version so that two
// concurrent stock writes never silently lose one of them. The loop is
// bounded; exhausting it surfaces a ConflictError.
func (s *ProductService) Update(ctx context.Context, principal policies.Principal, id string, in UpdateProductInput) (models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	decision, err := policies.Authorize(principal, policies.ActionUpdateProduct, policies.Resource{
		Type:   "product",
		ShopID: product.ShopID.Hex(),
	})
	if err != nil {
		return models.Product{}, err
	}
	if !decision.Allowed {
		return models.Product{}, denied(policies.ActionUpdateProduct, decision.Reason)
	}

	for attempt := 1; attempt <= casAttempts; attempt++ {
		set, tier, err := buildProductSet(product, in, principal.ID)
		if err != nil {
			return models.Product{}, err
		}

		updated, err := s.products.CASUpdate(ctx, product.ID, product.Version, set)
		if err == nil {
			metrics.StockUpdates.WithLabelValues(string(tier)).Inc()
			s.invalidateSummary(product.ShopID.Hex())
			return updated, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return models.Product{}, err
		}

		// Version moved under us (or the product vanished). Re-read and
		// rebuild the write against the fresh state.
		metrics.StockUpdateConflicts.Inc()
		product, err = s.products.FindByID(ctx, id)
		if err != nil {
			return models.Product{}, err
		}

		logger.WithCtx(ctx).Warn("stock update retry",
			"product", id, "attempt", attempt)
	}

	return models.Product{}, &apperr.ConflictError{Resource: "product", ID: id}
}

// Delete removes a product. Only the shop owner may delete.
func (s *ProductService) Delete(ctx context.Context, principal policies.Principal, id string) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}

	decision, err := policies.Authorize(principal, policies.ActionDeleteProduct, policies.Resource{
		Type:   "product",
		ShopID: product.ShopID.Hex(),
	})
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return denied(policies.ActionDeleteProduct, decision.Reason)
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateSummary(product.ShopID.Hex())
	return nil
}

// Summary groups a shop's catalogue by category with per-tier counts,
// sorted by category name. Served from Redis when fresh.
func (s *ProductService) Summary(ctx context.Context, shopID string) ([]CategorySummary, error) {
	key := summaryCacheKey(shopID)

	var rows []CategorySummary
	if cache.Get(key, &rows) {
		return rows, nil
	}

	products, err := s.products.AllForShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	grouped := collection.GroupBy(products, func(p models.Product) string {
		if p.Category == "" {
			return "uncategorized"
		}
		return p.Category
	})

	rows = make([]CategorySummary, 0, len(grouped))
	for _, category := range collection.Keys(grouped) {
		row := CategorySummary{Category: category}
		for _, p := range grouped[category] {
			row.Total++
			switch p.Availability {
			case models.TierAvailable:
				row.Available++
			case models.TierLowStock:
				row.LowStock++
			case models.TierOutOfStock:
				row.OutOfStock++
			}
		}
		rows = append(rows, row)
	}

	cache.Set(key, rows, summaryTTL) //nolint:errcheck
	return rows, nil
}

// buildProductSet merges the patch onto the current document and
// re-derives availability from the values that will actually be
// written.
func buildProductSet(current models.Product, in UpdateProductInput, updatedBy uint) (bson.M, models.Tier, error) {
	quantity := current.Quantity
	if in.Quantity != nil {
		quantity = *in.Quantity
	}
	threshold := current.LowStockThreshold
	if in.LowStockThreshold != nil {
		threshold = *in.LowStockThreshold
	}

	tier, err := models.DeriveAvailability(quantity, threshold)
	if err != nil {
		return nil, "", err
	}

	set := bson.M{
		"quantity":          quantity,
		"lowStockThreshold": threshold,
		"availability":      tier,
		"lastUpdatedBy":     updatedBy,
	}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Category != nil {
		set["category"] = *in.Category
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Unit != nil {
		set["unit"] = *in.Unit
	}
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.Barcode != nil {
		set["barcode"] = *in.Barcode
	}

	return set, tier, nil
}

func denied(action policies.Action, reason string) error {
	return &apperr.PermissionError{
		Action:   string(action),
		Resource: "product",
		Reason:   reason,
	}
}

func (s *ProductService) invalidateSummary(shopID string) {
	cache.Del(summaryCacheKey(shopID)) //nolint:errcheck
}

func summaryCacheKey(shopID string) string {
	return fmt.Sprintf("products:summary:%s", shopID)
}
