package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/dukaan/app/models"
	"github.com/shashiranjanraj/dukaan/app/policies"
	"github.com/shashiranjanraj/dukaan/app/repositories"
	"github.com/shashiranjanraj/dukaan/config"
	"github.com/shashiranjanraj/dukaan/pkg/apperr"
	"github.com/shashiranjanraj/dukaan/pkg/auth"
	"github.com/shashiranjanraj/dukaan/pkg/logger"
)

// UserStore is the slice of the identity repository the auth service
// needs. Satisfied by repositories.UserRepository.
type UserStore interface {
	FindByEmail(email string) (models.User, error)
	FindByID(id uint) (models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
}

// ShopCreator is the slice of the shop repository used during owner
// registration.
type ShopCreator interface {
	Create(ctx context.Context, shop *models.Shop) error
}

// RegisterInput is the payload for registration. ShopName switches the
// flow: without it a customer account is created; with it the caller
// becomes an owner with a fresh shop. An existing customer re-registering
// with a shop name is promoted in place.
type RegisterInput struct {
	Name     string  `json:"name"     validate:"required,min=2,max=100"`
	Email    string  `json:"email"    validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Phone    string  `json:"phone"    validate:"nullable,digits=10"`

	ShopName     string           `json:"shopName"     validate:"nullable,max=150"`
	ShopCategory string           `json:"shopCategory" validate:"nullable,in=grocery,pharmacy,electronics,clothing,hardware,stationery,other"`
	ShopAddress  models.Address   `json:"shopAddress"`
	Longitude    *float64         `json:"longitude"`
	Latitude     *float64         `json:"latitude"`
}

// AuthResult is what register and login hand back to the controller.
type AuthResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type AuthService struct {
	users UserStore
	shops ShopCreator
}

func NewAuthService() *AuthService {
	return &AuthService{
		users: repositories.NewUserRepository(),
		shops: repositories.NewShopRepository(),
	}
}

// NewAuthServiceWith wires explicit stores, used by tests.
func NewAuthServiceWith(users UserStore, shops ShopCreator) *AuthService {
	return &AuthService{users: users, shops: shops}
}

// Register creates an account, or promotes an existing customer to
// owner when they re-register supplying a shop name.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	existing, err := s.users.FindByEmail(in.Email)
	switch {
	case err == nil:
		return s.promote(ctx, existing, in)
	case errors.Is(err, apperr.ErrNotFound):
		// fresh registration
	default:
		return AuthResult{}, fmt.Errorf("auth register: %w", err)
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("auth register: %w", err)
	}

	user := models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hashed,
		Phone:    in.Phone,
		Role:     models.RoleCustomer,
		IsActive: true,
	}

	if in.ShopName != "" {
		user.Role = models.RoleOwner
	}

	if err := s.users.Create(&user); err != nil {
		return AuthResult{}, fmt.Errorf("auth register: %w", err)
	}

	if in.ShopName != "" {
		if err := s.createShopFor(ctx, &user, in); err != nil {
			return AuthResult{}, err
		}
	}

	return s.issue(user)
}

// promote handles re-registration of a known email. Only the silent
// customer-to-owner upgrade is allowed; anything else conflicts.
func (s *AuthService) promote(ctx context.Context, user models.User, in RegisterInput) (AuthResult, error) {
	principal := policies.Principal{ID: user.ID, Role: user.Role, ShopID: shopIDOf(user)}
	decision, err := policies.Authorize(principal, policies.ActionPromoteToOwner,
		policies.Resource{Type: "user", ShopName: in.ShopName})
	if err != nil {
		return AuthResult{}, err
	}
	if !decision.Allowed {
		return AuthResult{}, apperr.NewValidation("email", "The email has already been taken.")
	}

	if !auth.CheckPassword(user.Password, in.Password) {
		return AuthResult{}, apperr.NewValidation("password", "The password is incorrect.")
	}

	if err := s.createShopFor(ctx, &user, in); err != nil {
		return AuthResult{}, err
	}

	user.Role = models.RoleOwner
	if err := s.users.Update(&user); err != nil {
		return AuthResult{}, fmt.Errorf("auth promote: %w", err)
	}

	logger.WithCtx(ctx).Info("customer promoted to owner", "user", user.ID, "shop", *user.ShopID)
	return s.issue(user)
}

func (s *AuthService) createShopFor(ctx context.Context, user *models.User, in RegisterInput) error {
	category := in.ShopCategory
	if category == "" {
		category = "other"
	}

	address := in.ShopAddress
	if address.Country == "" {
		address.Country = config.DefaultCountry()
	}

	location := models.UnsetLocation()
	if in.Longitude != nil && in.Latitude != nil {
		if err := repositories.ValidateCoordinates(*in.Longitude, *in.Latitude); err != nil {
			return err
		}
		location = models.GeoPoint{Type: "Point", Coordinates: []float64{*in.Longitude, *in.Latitude}}
	}

	shop := models.Shop{
		Name:     in.ShopName,
		OwnerID:  user.ID,
		Address:  address,
		Location: location,
		Phone:    in.Phone,
		Email:    in.Email,
		Category: category,
		IsActive: true,
	}

	if err := s.shops.Create(ctx, &shop); err != nil {
		return fmt.Errorf("auth create shop: %w", err)
	}

	hex := shop.ID.Hex()
	user.ShopID = &hex

	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("auth create shop: %w", err)
	}
	return nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.users.FindByEmail(email)
	if errors.Is(err, apperr.ErrNotFound) {
		return AuthResult{}, apperr.NewValidation("email", "These credentials do not match our records.")
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("auth login: %w", err)
	}

	if !user.IsActive {
		return AuthResult{}, apperr.NewValidation("email", "This account has been deactivated.")
	}

	if !auth.CheckPassword(user.Password, password) {
		return AuthResult{}, apperr.NewValidation("email", "These credentials do not match our records.")
	}

	return s.issue(user)
}

// Profile returns the account for an authenticated user id.
func (s *AuthService) Profile(userID uint) (models.User, error) {
	return s.users.FindByID(userID)
}

func (s *AuthService) issue(user models.User) (AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, user.Role, shopIDOf(user))
	if err != nil {
		return AuthResult{}, fmt.Errorf("auth issue token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

func shopIDOf(user models.User) string {
	if user.ShopID == nil {
		return ""
	}
	return *user.ShopID
}
