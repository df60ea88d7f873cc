package routes

import (
	"github.com/shashiranjanraj/dukaan/app/controllers"
	"github.com/shashiranjanraj/dukaan/pkg/middleware"
	"github.com/shashiranjanraj/dukaan/pkg/rbac"
	"github.com/shashiranjanraj/dukaan/pkg/router"
)

// RegisterAPI mounts every API route. Fine-grained same-shop decisions
// live in app/policies; rbac only gates by role where the route is
// categorically closed to a role.
func RegisterAPI(r *router.Router) {
	authController := controllers.NewAuthController()
	shopController := controllers.NewShopController()
	productController := controllers.NewProductController()

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", "auth.register", authController.Register)
	authGroup.Post("/login", "auth.login", authController.Login)
	authGroup.Get("/profile", "auth.profile", authController.Profile, middleware.Auth)

	shops := api.Group("/shops")
	shops.Get("", "shops.list", shopController.List)
	shops.Get("/nearby", "shops.nearby", shopController.Nearby)
	shops.Get("/{id}", "shops.show", shopController.Get)
	shops.Put("/{id}", "shops.update", shopController.Update,
		middleware.Auth, rbac.HasRole("owner"))

	products := api.Group("/products")
	products.Get("/shop/{shopID}", "products.list", productController.ListByShop)
	products.Get("/shop/{shopID}/categories", "products.summary", productController.Summary)
	products.Get("/{id}", "products.show", productController.Get)
	products.Post("", "products.create", productController.Create,
		middleware.Auth, rbac.HasRole("owner", "worker"))
	products.Put("/{id}", "products.update", productController.Update,
		middleware.Auth, rbac.HasRole("owner", "worker"))
	products.Delete("/{id}", "products.delete", productController.Delete,
		middleware.Auth, rbac.HasRole("owner"))
}
