package models

import "gorm.io/gorm"

// Roles a user account can hold. A customer becomes an owner when they
// register a shop; workers are attached to a shop by its owner.
const (
	RoleCustomer = "customer"
	RoleOwner    = "owner"
	RoleWorker   = "worker"
)

// User is an account in the identity store. Shop and catalogue data live
// in MongoDB; ShopID links an owner or worker to their shop document.
type User struct {
	gorm.Model
	Name     string  `gorm:"size:255;not null"            json:"name"`
	Email    string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string  `gorm:"size:255;not null"            json:"-"` // hashed, never serialised
	Phone    string  `gorm:"size:20"                      json:"phone"`
	Role     string  `gorm:"size:20;default:customer"     json:"role"`
	ShopID   *string `gorm:"size:32"                      json:"shopId,omitempty"`
	IsActive bool    `gorm:"default:true"                 json:"isActive"`
}

// IsAffiliated reports whether the user already belongs to a shop.
func (u *User) IsAffiliated() bool {
	return u.ShopID != nil && *u.ShopID != ""
}
