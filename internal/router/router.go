// Package router wires handlers and middleware onto the Echo
// instance.  Public browse routes sit behind the response cache,
// booking routes behind the rate limiter only; availability must
// never be served stale.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/reservebite/reservebite-api/internal/config"
	"github.com/reservebite/reservebite-api/internal/handler"
	"github.com/reservebite/reservebite-api/internal/middleware"
)

// Handlers groups everything the router needs to register routes.
type Handlers struct {
	Auth         *handler.AuthHandler
	Public       *handler.PublicHandler
	Reservations *handler.ReservationHandler
	OwnerRest    *handler.OwnerRestaurantHandler
	OwnerMenu    *handler.OwnerMenuHandler
}

// Register mounts all routes.  rdb may be nil; caching and rate
// limiting then degrade to pass-through.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Session endpoints.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	// Public browse, cached.
	pub := e.Group("/v1", cache)
	pub.GET("/restaurants", h.Public.ListRestaurants)
	pub.GET("/restaurants/:id", h.Public.GetRestaurant)
	pub.GET("/restaurants/:id/menu", h.Public.GetMenu)
	pub.GET("/restaurants/:id/slots", h.Public.GetSlots)

	// Availability is read fresh on every request.
	e.GET("/v1/restaurants/:id/availability", h.Reservations.Availability, rateLimit)

	// Customer booking flow.
	me := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(middleware.RoleCustomer, middleware.RoleOwner))
	me.GET("/me", h.Auth.Me)
	me.PUT("/me/contact", h.Auth.UpdateContact)
	me.POST("/me/logout-all", h.Auth.LogoutAll)
	me.POST("/reservations", h.Reservations.Create, rateLimit)
	me.GET("/reservations", h.Reservations.ListMine)
	me.GET("/reservations/:id", h.Reservations.Get)
	me.POST("/reservations/:id/confirm", h.Reservations.Confirm, rateLimit)
	me.DELETE("/reservations/:id", h.Reservations.Cancel)

	// Owner management.
	owner := e.Group("/v1/owner", middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(middleware.RoleOwner))
	owner.GET("/restaurants", h.OwnerRest.List)
	owner.POST("/restaurants", h.OwnerRest.Create)
	owner.PUT("/restaurants/:id", h.OwnerRest.Update)
	owner.DELETE("/restaurants/:id", h.OwnerRest.Delete)
	owner.PUT("/restaurants/:id/slots", h.OwnerRest.UpsertSlot)
	owner.DELETE("/restaurants/:id/slots", h.OwnerRest.DeleteSlot)
	owner.GET("/restaurants/:id/reservations", h.Reservations.ListForRestaurant)
	owner.GET("/restaurants/:id/menu", h.OwnerMenu.ListMenu)
	owner.POST("/restaurants/:id/menu/categories", h.OwnerMenu.CreateCategory)
	owner.DELETE("/menu/categories/:id", h.OwnerMenu.DeleteCategory)
	owner.POST("/menu/items", h.OwnerMenu.CreateItem)
	owner.PUT("/menu/items/:id", h.OwnerMenu.UpdateItem)
	owner.DELETE("/menu/items/:id", h.OwnerMenu.DeleteItem)
}
