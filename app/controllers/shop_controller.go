package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/dukaan/app/repositories"
	"github.com/shashiranjanraj/dukaan/app/services"
	"github.com/shashiranjanraj/dukaan/pkg/bind"
	"github.com/shashiranjanraj/dukaan/pkg/response"
)

type ShopController struct {
	service *services.ShopService
}

func NewShopController() *ShopController {
	return &ShopController{service: services.NewShopService()}
}

// List handles GET /api/shops with optional category, search, village,
// city and state query filters.
func (c *ShopController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := repositories.ShopFilters{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Village:  q.Get("village"),
		City:     q.Get("city"),
		State:    q.Get("state"),
	}

	shops, err := c.service.List(r.Context(), filters)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Listed(w, len(shops), shops)
}

// Nearby handles GET /api/shops/nearby?lng=..&lat=..&maxDistance=..
func (c *ShopController) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	if errLng != nil || errLat != nil {
		response.ValidationError(w, map[string]string{
			"lng": "The lng and lat query parameters are required numbers.",
		})
		return
	}

	maxDistance := 0.0
	if raw := q.Get("maxDistance"); raw != "" {
		var err error
		maxDistance, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			response.ValidationError(w, map[string]string{
				"maxDistance": "The maxDistance must be a number of meters.",
			})
			return
		}
	}

	shops, err := c.service.Nearby(r.Context(), lng, lat, maxDistance)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Listed(w, len(shops), shops)
}

// Get handles GET /api/shops/{id}, returning the shop with its
// availability stats.
func (c *ShopController) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := c.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, detail)
}

// Update handles PUT /api/shops/{id}. Owner only.
func (c *ShopController) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		response.Unauthorized(w)
		return
	}

	var in services.UpdateShopInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	shop, err := c.service.Update(r.Context(), principal, chi.URLParam(r, "id"), in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, shop)
}
