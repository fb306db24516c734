package httpserver

import (
	"github.com/labstack/echo/v4"

	authmw "github.com/ovechkin-dev/marketplace/internal/middleware/auth"
)

type Deps struct {
	AuthHandler     *AuthHTTP
	CategoryHandler *CategoryHTTP
	ProductHandler  *ProductHTTP
	SearchHandler   *SearchHTTP
	JWTSecret       []byte
}

func Register(e *echo.Echo, d *Deps) {
	gate := authmw.NewGate(d.JWTSecret)

	api := e.Group("/api")

	api.GET("/health", Health)

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)

	categories := api.Group("/categories")
	categories.GET("", d.CategoryHandler.List)
	categories.GET("/:id", d.CategoryHandler.Get)

	categoriesAdmin := categories.Group("", gate.RequireAuth, gate.RequireAdmin)
	categoriesAdmin.POST("", d.CategoryHandler.Create)
	categoriesAdmin.PUT("/:id", d.CategoryHandler.Update)
	categoriesAdmin.DELETE("/:id", d.CategoryHandler.Delete)

	products := api.Group("/products")
	if d.SearchHandler != nil {
		products.GET("/search", d.SearchHandler.Search)
	}
	products.GET("", d.ProductHandler.List)
	products.GET("/:id", d.ProductHandler.Get)
	products.GET("/category/:categoryId", d.ProductHandler.ListByCategory)

	productsAuth := products.Group("", gate.RequireAuth)
	productsAuth.POST("", d.ProductHandler.Create)
	productsAuth.PUT("/:id", d.ProductHandler.Update)
	productsAuth.DELETE("/:id", d.ProductHandler.Delete)
}
