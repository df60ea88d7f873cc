package services

import (
	"context"
	"testing"

	"github.com/shashiranjanraj/dukaan/app/models"
	"github.com/shashiranjanraj/dukaan/app/policies"
	"github.com/shashiranjanraj/dukaan/app/repositories"
	"github.com/shashiranjanraj/dukaan/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeProductStore is an in-memory ProductStore with real version
// semantics so the compare-and-set path can be exercised.
type fakeProductStore struct {
	byID map[primitive.ObjectID]*models.Product

	// racingWrites makes the next N CAS attempts lose to a simulated
	// concurrent writer that bumps the version.
	racingWrites int
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{byID: map[primitive.ObjectID]*models.Product{}}
}

func (f *fakeProductStore) List(_ context.Context, shopID string, filters repositories.ProductFilters) ([]models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(shopID)
	if err != nil {
		return nil, apperr.NewValidation("shopId", "The shop id is invalid.")
	}
	var out []models.Product
	for _, p := range f.byID {
		if p.ShopID != oid {
			continue
		}
		if filters.Category != "" && p.Category != filters.Category {
			continue
		}
		if filters.Availability != "" && string(p.Availability) != filters.Availability {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductStore) FindByID(_ context.Context, id string) (models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Product{}, apperr.ErrNotFound
	}
	p, ok := f.byID[oid]
	if !ok {
		return models.Product{}, apperr.ErrNotFound
	}
	return *p, nil
}

func (f *fakeProductStore) Create(_ context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	p.Version = 1
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProductStore) CASUpdate(_ context.Context, id primitive.ObjectID, expectedVersion int64, set bson.M) (models.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return models.Product{}, apperr.ErrNotFound
	}
	if f.racingWrites > 0 {
		f.racingWrites--
		p.Version++
		return models.Product{}, apperr.ErrNotFound
	}
	if p.Version != expectedVersion {
		return models.Product{}, apperr.ErrNotFound
	}

	if v, ok := set["quantity"].(int); ok {
		p.Quantity = v
	}
	if v, ok := set["lowStockThreshold"].(int); ok {
		p.LowStockThreshold = v
	}
	if v, ok := set["availability"].(models.Tier); ok {
		p.Availability = v
	}
	if v, ok := set["name"].(string); ok {
		p.Name = v
	}
	if v, ok := set["price"].(float64); ok {
		p.Price = &v
	}
	if v, ok := set["lastUpdatedBy"].(uint); ok {
		p.LastUpdatedBy = v
	}
	p.Version++
	return *p, nil
}

func (f *fakeProductStore) Delete(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.ErrNotFound
	}
	if _, ok := f.byID[oid]; !ok {
		return apperr.ErrNotFound
	}
	delete(f.byID, oid)
	return nil
}

func (f *fakeProductStore) AllForShop(ctx context.Context, shopID string) ([]models.Product, error) {
	return f.List(ctx, shopID, repositories.ProductFilters{})
}

func staffOf(shopID string, role string) policies.Principal {
	return policies.Principal{ID: 42, Role: role, ShopID: shopID}
}

func TestProductLifecycleDerivesAvailability(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductServiceWith(store)
	shopID := primitive.NewObjectID().Hex()
	owner := staffOf(shopID, models.RoleOwner)
	ctx := context.Background()

	// Created at the threshold: low-stock.
	threshold := 10
	created, err := svc.Create(ctx, owner, CreateProductInput{
		Name:              "Basmati Rice 1kg",
		Quantity:          10,
		LowStockThreshold: &threshold,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TierLowStock, created.Availability)

	// Restocked well above the threshold: available.
	qty := 50
	updated, err := svc.Update(ctx, owner, created.ID.Hex(), UpdateProductInput{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, models.TierAvailable, updated.Availability)
	assert.Equal(t, 50, updated.Quantity)

	// Sold out: out-of-stock.
	qty = 0
	updated, err = svc.Update(ctx, owner, created.ID.Hex(), UpdateProductInput{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, models.TierOutOfStock, updated.Availability)
}

func TestProductCreateThresholdDefaults(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductServiceWith(store)
	shopID := primitive.NewObjectID().Hex()
	owner := staffOf(shopID, models.RoleOwner)
	ctx := context.Background()

	// Omitted threshold falls back to the default.
	created, err := svc.Create(ctx, owner, CreateProductInput{Name: "Atta 5kg", Quantity: 8})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLowStockThreshold, created.LowStockThreshold)
	assert.Equal(t, models.TierLowStock, created.Availability)

	// An explicit zero threshold is kept, so stock above zero is available.
	zero := 0
	created, err = svc.Create(ctx, owner, CreateProductInput{
		Name:              "Jaggery 500g",
		Quantity:          5,
		LowStockThreshold: &zero,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created.LowStockThreshold)
	assert.Equal(t, models.TierAvailable, created.Availability)
}

func TestProductUpdateRetriesOnVersionRace(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductServiceWith(store)
	shopID := primitive.NewObjectID().Hex()
	owner := staffOf(shopID, models.RoleOwner)
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, CreateProductInput{Name: "Milk 500ml", Quantity: 20})
	require.NoError(t, err)

	// Two racing writers beat us, the third attempt lands.
	store.racingWrites = 2
	qty := 5
	updated, err := svc.Update(ctx, owner, created.ID.Hex(), UpdateProductInput{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)
	assert.Equal(t, models.TierLowStock, updated.Availability)
}

func TestProductUpdateConflictAfterBoundedRetry(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductServiceWith(store)
	shopID := primitive.NewObjectID().Hex()
	owner := staffOf(shopID, models.RoleOwner)
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, CreateProductInput{Name: "Sugar 1kg", Quantity: 8})
	require.NoError(t, err)

	store.racingWrites = casAttempts
	qty := 1
	_, err = svc.Update(ctx, owner, created.ID.Hex(), UpdateProductInput{Quantity: &qty})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
}

func TestProductAuthorizationEnforced(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductServiceWith(store)
	shopID := primitive.NewObjectID().Hex()
	owner := staffOf(shopID, models.RoleOwner)
	worker := staffOf(shopID, models.RoleWorker)
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, CreateProductInput{Name: "Soap", Quantity: 30})
	require.NoError(t, err)

	// A worker of the same shop may update.
	qty := 25
	_, err = svc.Update(ctx, worker, created.ID.Hex(), UpdateProductInput{Quantity: &qty})
	require.NoError(t, err)

	// But never delete.
	err = svc.Delete(ctx, worker, created.ID.Hex())
	require.Error(t, err)
	assert.True(t, apperr.IsPermission(err))

	// Staff of another shop may not touch it.
	stranger := staffOf(primitive.NewObjectID().Hex(), models.RoleOwner)
	_, err = svc.Update(ctx, stranger, created.ID.Hex(), UpdateProductInput{Quantity: &qty})
	require.Error(t, err)
	assert.True(t, apperr.IsPermission(err))

	// Customers cannot create at all.
	customer := policies.Principal{ID: 9, Role: models.RoleCustomer}
	_, err = svc.Create(ctx, customer, CreateProductInput{Name: "Nope", Quantity: 1})
	require.Error(t, err)
	assert.True(t, apperr.IsPermission(err))

	// The owner can delete.
	require.NoError(t, svc.Delete(ctx, owner, created.ID.Hex()))
	_, err = svc.Get(ctx, created.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProductNegativeQuantityRejected(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductServiceWith(store)
	shopID := primitive.NewObjectID().Hex()
	owner := staffOf(shopID, models.RoleOwner)
	ctx := context.Background()

	created, err := svc.Create(ctx, owner, CreateProductInput{Name: "Tea", Quantity: 12})
	require.NoError(t, err)

	qty := -3
	_, err = svc.Update(ctx, owner, created.ID.Hex(), UpdateProductInput{Quantity: &qty})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestSummaryGroupsByCategory(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductServiceWith(store)
	shopID := primitive.NewObjectID().Hex()
	owner := staffOf(shopID, models.RoleOwner)
	ctx := context.Background()

	seed := []CreateProductInput{
		{Name: "Milk", Category: "dairy", Quantity: 50},
		{Name: "Paneer", Category: "dairy", Quantity: 4},
		{Name: "Curd", Category: "dairy", Quantity: 0},
		{Name: "Rice", Category: "grains", Quantity: 100},
		{Name: "Loose Candy", Quantity: 7},
	}
	for _, in := range seed {
		_, err := svc.Create(ctx, owner, in)
		require.NoError(t, err)
	}

	rows, err := svc.Summary(ctx, shopID)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Sorted by category name, uncategorised products under their own row.
	assert.Equal(t, "dairy", rows[0].Category)
	assert.Equal(t, CategorySummary{Category: "dairy", Total: 3, Available: 1, LowStock: 1, OutOfStock: 1}, rows[0])
	assert.Equal(t, "grains", rows[1].Category)
	assert.Equal(t, 1, rows[1].Available)
	assert.Equal(t, "uncategorized", rows[2].Category)
	assert.Equal(t, 1, rows[2].LowStock)
}
