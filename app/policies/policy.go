// Package policies holds the pure authorization decision table.
//
// Authorize never performs I/O and never returns an error for an
// ordinary deny. A Deny is a value carrying a human-readable reason;
// the error return is reserved for malformed requests such as an
// unknown action.
package policies

import (
	"github.com/shashiranjanraj/dukaan/app/models"
	"github.com/shashiranjanraj/dukaan/pkg/apperr"
)

// Action is something a principal wants to do to a resource.
type Action string

const (
	ActionRead           Action = "read"
	ActionCreateProduct  Action = "product.create"
	ActionUpdateProduct  Action = "product.update"
	ActionDeleteProduct  Action = "product.delete"
	ActionUpdateShop     Action = "shop.update"
	ActionPromoteToOwner Action = "user.promote-to-owner"
)

// Principal is the authenticated caller as supplied by the identity
// layer. ShopID is empty for customers.
type Principal struct {
	ID     uint
	Role   string
	ShopID string
}

// Resource describes the target of an action. ShopID and OwnerID are
// compared as opaque values; either may be zero for actions that do not
// involve a shop.
type Resource struct {
	Type    string
	ShopID  string
	OwnerID uint

	// ShopName is consulted only by the owner-promotion flow.
	ShopName string
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

var (
	allow         = Decision{Allowed: true}
	denyShopScope = Decision{Reason: "not authorized for this shop"}
)

func deny(reason string) Decision { return Decision{Reason: reason} }

// Authorize evaluates the decision table for the given triple. The
// returned error is non-nil only when the request itself is malformed.
func Authorize(p Principal, action Action, res Resource) (Decision, error) {
	switch action {
	case ActionRead:
		// Catalogue reads are public.
		return allow, nil

	case ActionCreateProduct, ActionUpdateProduct:
		if p.Role != models.RoleOwner && p.Role != models.RoleWorker {
			return deny("only shop staff can manage products"), nil
		}
		return sameShop(p, res), nil

	case ActionDeleteProduct:
		if p.Role != models.RoleOwner {
			return deny("only the shop owner can delete products"), nil
		}
		return sameShop(p, res), nil

	case ActionUpdateShop:
		if p.Role != models.RoleOwner {
			return deny("only the shop owner can update the shop"), nil
		}
		if res.OwnerID == 0 || p.ID != res.OwnerID {
			return denyShopScope, nil
		}
		return allow, nil

	case ActionPromoteToOwner:
		if p.ShopID != "" {
			return deny("already affiliated with a shop"), nil
		}
		if res.ShopName == "" {
			return deny("a shop name is required to become an owner"), nil
		}
		return allow, nil

	default:
		return Decision{}, &apperr.AuthzError{Detail: "unknown action " + string(action)}
	}
}

// sameShop compares the resource's shop against the principal's
// affiliation by value. Missing affiliation on either side is a deny.
func sameShop(p Principal, res Resource) Decision {
	if p.ShopID == "" || res.ShopID == "" || p.ShopID != res.ShopID {
		return denyShopScope
	}
	return allow
}
