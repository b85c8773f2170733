package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"taskhive/internal/config"
	"taskhive/internal/handler"
	"taskhive/internal/middleware"
	"taskhive/internal/token"
)

// Handlers bundles everything the router needs to register routes.
type Handlers struct {
	Auth        *handler.AuthHandler
	Tasks       *handler.TaskHandler
	Shares      *handler.ShareHandler
	Attachments *handler.AttachmentHandler
	Health      *handler.HealthHandler
}

// Register wires every route of the API onto the Echo instance.
// Authentication endpoints carry the stricter rate limit; everything
// under /api except register/login/refresh requires a valid access
// token.
func Register(e *echo.Echo, h Handlers, codec *token.Codec, rdb *redis.Client) {
	// Liveness and readiness live outside /api so probes skip the
	// rate limiter and the auth guard entirely.
	e.GET("/health", h.Health.Ready)
	e.GET("/healthz", h.Health.Live)

	api := e.Group("/api")
	api.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	// Public auth endpoints with the tighter auth bucket on top of
	// the general one.
	authPublic := api.Group("/auth")
	authPublic.Use(middleware.RateLimit(config.LoadAuthRateLimitConfig(), rdb))
	authPublic.POST("/register", h.Auth.Register)
	authPublic.POST("/login", h.Auth.Login)
	authPublic.POST("/refresh", h.Auth.Refresh)
	authPublic.POST("/logout", h.Auth.Logout)

	guard := middleware.Auth(codec)

	authPriv := api.Group("/auth", guard)
	authPriv.POST("/logout-all", h.Auth.LogoutAll)
	authPriv.GET("/me", h.Auth.Me)

	tasks := api.Group("/tasks", guard)
	tasks.POST("", h.Tasks.Create)
	tasks.GET("", h.Tasks.List)
	tasks.GET("/stats", h.Tasks.Stats)
	tasks.GET("/:id", h.Tasks.Get)
	tasks.PATCH("/:id", h.Tasks.Update)
	tasks.DELETE("/:id", h.Tasks.Delete)

	tasks.POST("/:id/shares", h.Shares.Share)
	tasks.GET("/:id/shares", h.Shares.SharedUsers)
	tasks.PATCH("/:id/shares/:userId", h.Shares.UpdatePermission)
	tasks.DELETE("/:id/shares/:userId", h.Shares.Revoke)
	api.GET("/shared-with-me", h.Shares.SharedWithMe, guard)

	tasks.POST("/:id/attachments", h.Attachments.Upload)
	tasks.GET("/:id/attachments", h.Attachments.List)

	attachments := api.Group("/attachments", guard)
	attachments.GET("/:id", h.Attachments.Get)
	attachments.GET("/:id/download", h.Attachments.Download)
	attachments.DELETE("/:id", h.Attachments.Delete)
}
