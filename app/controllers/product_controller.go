package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/dukaan/app/policies"
	"github.com/shashiranjanraj/dukaan/app/repositories"
	"github.com/shashiranjanraj/dukaan/app/services"
	"github.com/shashiranjanraj/dukaan/pkg/bind"
	"github.com/shashiranjanraj/dukaan/pkg/middleware"
	"github.com/shashiranjanraj/dukaan/pkg/response"
)

type ProductController struct {
	service *services.ProductService
}

func NewProductController() *ProductController {
	return &ProductController{service: services.NewProductService()}
}

// ListByShop handles GET /api/products/shop/{shopID} with optional
// category, availability and search query filters.
func (c *ProductController) ListByShop(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := repositories.ProductFilters{
		Category:     q.Get("category"),
		Availability: q.Get("availability"),
		Search:       q.Get("search"),
	}

	products, err := c.service.List(r.Context(), chi.URLParam(r, "shopID"), filters)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Listed(w, len(products), products)
}

// Summary handles GET /api/products/shop/{shopID}/categories.
func (c *ProductController) Summary(w http.ResponseWriter, r *http.Request) {
	rows, err := c.service.Summary(r.Context(), chi.URLParam(r, "shopID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Listed(w, len(rows), rows)
}

// Get handles GET /api/products/{id}.
func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	product, err := c.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, product)
}

// Create handles POST /api/products. The target shop comes from the
// authenticated principal.
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var in services.CreateProductInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.service.Create(r.Context(), principal, in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, product)
}

// Update handles PUT /api/products/{id}.
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var in services.UpdateProductInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.service.Update(r.Context(), principal, chi.URLParam(r, "id"), in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, product)
}

// Delete handles DELETE /api/products/{id}. Owner only.
func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	if err := c.service.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, map[string]string{"message": "Product deleted"})
}

func principalFrom(r *http.Request) (policies.Principal, bool) {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		return policies.Principal{}, false
	}
	return policies.Principal{ID: claims.UserID, Role: claims.Role, ShopID: claims.ShopID}, true
}
