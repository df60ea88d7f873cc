package services

import (
	"context"
	"testing"

	"github.com/shashiranjanraj/dukaan/app/models"
	"github.com/shashiranjanraj/dukaan/pkg/apperr"
	"github.com/shashiranjanraj/dukaan/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserStore struct {
	byEmail map[string]*models.User
	nextID  uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]*models.User{}, nextID: 1}
}

func (f *fakeUserStore) FindByEmail(email string) (models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return models.User{}, apperr.ErrNotFound
	}
	return *u, nil
}

func (f *fakeUserStore) FindByID(id uint) (models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return *u, nil
		}
	}
	return models.User{}, apperr.ErrNotFound
}

func (f *fakeUserStore) Create(user *models.User) error {
	user.ID = f.nextID
	f.nextID++
	cp := *user
	f.byEmail[user.Email] = &cp
	return nil
}

func (f *fakeUserStore) Update(user *models.User) error {
	cp := *user
	f.byEmail[user.Email] = &cp
	return nil
}

type fakeShopCreator struct {
	created []models.Shop
}

func (f *fakeShopCreator) Create(_ context.Context, shop *models.Shop) error {
	shop.ID = primitive.NewObjectID()
	f.created = append(f.created, *shop)
	return nil
}

func TestRegisterCustomer(t *testing.T) {
	users := newFakeUserStore()
	shops := &fakeShopCreator{}
	svc := NewAuthServiceWith(users, shops)

	res, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleCustomer, res.User.Role)
	assert.Nil(t, res.User.ShopID)
	assert.Empty(t, shops.created)
	assert.NotEmpty(t, res.Token)

	claims, err := auth.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, models.RoleCustomer, claims.Role)

	// The stored password is hashed, never the plaintext.
	stored, _ := users.FindByEmail("asha@example.com")
	assert.NotEqual(t, "secret123", stored.Password)
	assert.True(t, auth.CheckPassword(stored.Password, "secret123"))
}

func TestRegisterOwnerCreatesShop(t *testing.T) {
	users := newFakeUserStore()
	shops := &fakeShopCreator{}
	svc := NewAuthServiceWith(users, shops)

	res, err := svc.Register(context.Background(), RegisterInput{
		Name:         "Ravi",
		Email:        "ravi@example.com",
		Password:     "secret123",
		ShopName:     "Ravi Kirana",
		ShopCategory: "grocery",
		ShopAddress:  models.Address{City: "Pune", State: "Maharashtra"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleOwner, res.User.Role)
	require.NotNil(t, res.User.ShopID)

	require.Len(t, shops.created, 1)
	shop := shops.created[0]
	assert.Equal(t, "Ravi Kirana", shop.Name)
	assert.Equal(t, res.User.ID, shop.OwnerID)
	assert.Equal(t, "grocery", shop.Category)
	assert.True(t, shop.IsActive)

	// No coordinates supplied: the unset sentinel keeps the shop out of
	// proximity results.
	assert.False(t, shop.Location.IsSet())

	// Country defaults when the owner leaves it blank.
	assert.NotEmpty(t, shop.Address.Country)
}

func TestRegisterPromotesExistingCustomer(t *testing.T) {
	users := newFakeUserStore()
	shops := &fakeShopCreator{}
	svc := NewAuthServiceWith(users, shops)
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterInput{
		Name: "Meera", Email: "meera@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleCustomer, first.User.Role)

	// Re-registering with a shop name and the same password promotes.
	second, err := svc.Register(ctx, RegisterInput{
		Name: "Meera", Email: "meera@example.com", Password: "secret123",
		ShopName: "Meera Medicals", ShopCategory: "pharmacy",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, second.User.Role)
	assert.Equal(t, first.User.ID, second.User.ID, "same account, not a new one")
	require.NotNil(t, second.User.ShopID)
	require.Len(t, shops.created, 1)
}

func TestRegisterPromotionRequiresPassword(t *testing.T) {
	users := newFakeUserStore()
	shops := &fakeShopCreator{}
	svc := NewAuthServiceWith(users, shops)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Name: "Meera", Email: "meera@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{
		Name: "Mallory", Email: "meera@example.com", Password: "wrong-pass",
		ShopName: "Hijack Mart",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, shops.created)
}

func TestRegisterDuplicateWithoutShopNameConflicts(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAuthServiceWith(users, &fakeShopCreator{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "secret123",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestRegisterOwnerCannotPromoteAgain(t *testing.T) {
	users := newFakeUserStore()
	shops := &fakeShopCreator{}
	svc := NewAuthServiceWith(users, shops)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Name: "Ravi", Email: "ravi@example.com", Password: "secret123",
		ShopName: "Ravi Kirana",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{
		Name: "Ravi", Email: "ravi@example.com", Password: "secret123",
		ShopName: "Second Shop",
	})
	require.Error(t, err)
	require.Len(t, shops.created, 1, "no second shop")
}

func TestLogin(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAuthServiceWith(users, &fakeShopCreator{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	res, err := svc.Login(ctx, "asha@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(ctx, "asha@example.com", "nope")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Login(ctx, "ghost@example.com", "whatever")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestLoginDeactivatedAccount(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAuthServiceWith(users, &fakeShopCreator{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	stored, err := users.FindByEmail("asha@example.com")
	require.NoError(t, err)
	stored.IsActive = false
	require.NoError(t, users.Update(&stored))

	_, err = svc.Login(ctx, "asha@example.com", "secret123")
	require.Error(t, err)
}
