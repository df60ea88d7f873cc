package repositories

import (
	"fmt"
	"time"

	"github.com/shashiranjanraj/dukaan/app/models"
	"github.com/shashiranjanraj/dukaan/pkg/cache"
	"github.com/shashiranjanraj/dukaan/pkg/orm"
)

const userCacheTTL = 5 * time.Minute

// UserRepository handles identity-store operations for User.
type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(email string) (models.User, error) {
	var user models.User
	err := orm.DB().Model(&models.User{}).Where("email = ?", email).First(&user)
	return user, err
}

// FindByID looks up a user by primary key. Every authenticated request
// resolves its principal through here, so the row is served through the
// Redis cache.
func (r *UserRepository) FindByID(id uint) (models.User, error) {
	var user models.User
	err := orm.DB().Model(&models.User{}).Where("id = ?", id).Cache(userCacheKey(id), userCacheTTL, &user)
	return user, err
}

// Create persists a new user record.
func (r *UserRepository) Create(user *models.User) error {
	return orm.DB().Create(user)
}

// Update persists changes to an existing user and drops the cached row
// so role or shop changes take effect immediately.
func (r *UserRepository) Update(user *models.User) error {
	if err := orm.DB().Save(user); err != nil {
		return err
	}
	cache.Del(userCacheKey(user.ID)) //nolint:errcheck
	return nil
}

func userCacheKey(id uint) string {
	return fmt.Sprintf("users:%d", id)
}
