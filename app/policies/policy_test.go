package policies

import (
	"errors"
	"testing"

	"github.com/shashiranjanraj/dukaan/app/models"
	"github.com/shashiranjanraj/dukaan/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func worker(shopID string) Principal {
	return Principal{ID: 7, Role: models.RoleWorker, ShopID: shopID}
}

func owner(shopID string) Principal {
	return Principal{ID: 3, Role: models.RoleOwner, ShopID: shopID}
}

func customer() Principal {
	return Principal{ID: 11, Role: models.RoleCustomer}
}

func productIn(shopID string) Resource {
	return Resource{Type: "product", ShopID: shopID}
}

func TestReadIsPublic(t *testing.T) {
	for _, p := range []Principal{customer(), worker("S1"), owner("S1"), {}} {
		d, err := Authorize(p, ActionRead, productIn("S1"))
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
}

func TestWorkerProductPermissions(t *testing.T) {
	w := worker("S1")

	d, err := Authorize(w, ActionUpdateProduct, productIn("S1"))
	require.NoError(t, err)
	assert.True(t, d.Allowed, "worker may update products in their own shop")

	d, err = Authorize(w, ActionUpdateProduct, productIn("S2"))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, "not authorized for this shop", d.Reason)

	// Workers can never delete, even in their own shop.
	d, err = Authorize(w, ActionDeleteProduct, productIn("S1"))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestOwnerProductPermissions(t *testing.T) {
	o := owner("S1")

	for _, action := range []Action{ActionCreateProduct, ActionUpdateProduct, ActionDeleteProduct} {
		d, err := Authorize(o, action, productIn("S1"))
		require.NoError(t, err)
		assert.True(t, d.Allowed, "action %s", action)

		d, err = Authorize(o, action, productIn("S2"))
		require.NoError(t, err)
		assert.False(t, d.Allowed, "action %s on foreign shop", action)
	}
}

func TestCustomerDeniedProductWrites(t *testing.T) {
	c := customer()
	for _, action := range []Action{ActionCreateProduct, ActionUpdateProduct, ActionDeleteProduct} {
		d, err := Authorize(c, action, productIn("S1"))
		require.NoError(t, err)
		assert.False(t, d.Allowed)
	}
}

func TestUpdateShopRequiresOwnership(t *testing.T) {
	shop := Resource{Type: "shop", ShopID: "S1", OwnerID: 3}

	d, err := Authorize(owner("S1"), ActionUpdateShop, shop)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	// A different owner, even affiliated elsewhere, is denied.
	other := Principal{ID: 99, Role: models.RoleOwner, ShopID: "S2"}
	d, err = Authorize(other, ActionUpdateShop, shop)
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	d, err = Authorize(worker("S1"), ActionUpdateShop, shop)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestPromoteToOwner(t *testing.T) {
	d, err := Authorize(customer(), ActionPromoteToOwner, Resource{Type: "user", ShopName: "Kirana Corner"})
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	// Already affiliated: no promotion.
	d, err = Authorize(worker("S1"), ActionPromoteToOwner, Resource{Type: "user", ShopName: "Kirana Corner"})
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	// No shop name supplied: no promotion.
	d, err = Authorize(customer(), ActionPromoteToOwner, Resource{Type: "user"})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestUnknownActionIsAnError(t *testing.T) {
	_, err := Authorize(customer(), Action("shop.explode"), Resource{})
	require.Error(t, err)
	var ae *apperr.AuthzError
	assert.True(t, errors.As(err, &ae))
}

func TestMissingAffiliationDenied(t *testing.T) {
	// Owner role but no shop affiliation recorded yet.
	p := Principal{ID: 5, Role: models.RoleOwner}
	d, err := Authorize(p, ActionCreateProduct, productIn("S1"))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}
