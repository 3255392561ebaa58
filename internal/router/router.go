// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/sliceworks/pizza-backend/internal/auth"
	"github.com/sliceworks/pizza-backend/internal/handler"
	"github.com/sliceworks/pizza-backend/internal/metrics"
	"github.com/sliceworks/pizza-backend/internal/middleware"
)

// Handlers collects everything Register needs.  The struct keeps the
// call site in main readable as the handler list grows.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Order     *handler.OrderHandler
	Franchise *handler.FranchiseHandler

	Sessions *auth.Sessions
	Redis    *redis.Client

	MenuCacheTTL   time.Duration
	LoginRateLimit int
}

// Register mounts every route.  Protected groups run SessionAuth; the
// admin-only ones add RequireAdmin on top.
func Register(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", metrics.Handler())

	authed := middleware.SessionAuth(h.Sessions)
	admin := middleware.RequireAdmin()

	// Session lifecycle.
	e.POST("/api/auth", h.Auth.Register, middleware.LoginRateLimit(h.Redis, h.LoginRateLimit))
	e.PUT("/api/auth", h.Auth.Login, middleware.LoginRateLimit(h.Redis, h.LoginRateLimit))
	e.DELETE("/api/auth", h.Auth.Logout, authed)

	// Profiles.
	user := e.Group("/api/user")
	user.Use(authed)
	user.GET("/me", h.User.Me)
	user.PUT("/:userId", h.User.Update)
	user.GET("", h.User.List, admin)

	// Menu and orders.
	e.GET("/api/order/menu", h.Order.GetMenu, middleware.ResponseCache(h.Redis, h.MenuCacheTTL))
	e.PUT("/api/order/menu", h.Order.AddMenuItem, authed, admin)
	e.GET("/api/order", h.Order.GetOrders, authed)
	e.POST("/api/order", h.Order.Create, authed)

	// Franchises and stores.
	e.GET("/api/franchise", h.Franchise.List)
	e.GET("/api/franchise/:userId", h.Franchise.ListForUser, authed)
	e.POST("/api/franchise", h.Franchise.Create, authed, admin)
	e.DELETE("/api/franchise/:franchiseId", h.Franchise.Delete, authed, admin)
	e.POST("/api/franchise/:franchiseId/store", h.Franchise.CreateStore, authed)
	e.DELETE("/api/franchise/:franchiseId/store/:storeId", h.Franchise.DeleteStore, authed)
}
