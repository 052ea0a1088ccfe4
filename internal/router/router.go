package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/smartnotes/api/internal/config"
	"github.com/smartnotes/api/internal/handler"
	"github.com/smartnotes/api/internal/middleware"
)

// Handlers bundles every HTTP handler the API mounts.
type Handlers struct {
	Auth   *handler.AuthHandler
	Notes  *handler.NoteHandler
	Share  *handler.ShareHandler
	Export *handler.ExportHandler
}

// Register mounts the full route tree on the provided Echo instance.
// Everything lives under /api. The rdb client may be nil, in which case the
// response cache and rate limiter degrade to pass-through. shareCache is the
// same instance the share service invalidates on revocation.
func Register(e *echo.Echo, cfg *config.Config, h Handlers, rdb *redis.Client, shareCache *middleware.ResponseCache) {
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	api := e.Group("/api")

	// Liveness check for load balancers and monitoring.
	api.GET("/health", handler.Health(cfg.Env))

	// Registration and login are open; the profile requires a valid token.
	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.GET("/profile", h.Auth.Profile, middleware.JWTAuth(cfg.JWTSecret))

	// All note operations require a valid access token. The rate limiter
	// buckets per user and route, protecting the summarization and export
	// endpoints in particular.
	notes := api.Group("/notes")
	notes.Use(middleware.JWTAuth(cfg.JWTSecret))
	notes.Use(middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb))
	notes.GET("", h.Notes.List)
	notes.POST("", h.Notes.Create)
	notes.GET("/stats", h.Notes.Stats)
	notes.GET("/export/all", h.Export.All)
	notes.GET("/:id", h.Notes.Get)
	notes.PUT("/:id", h.Notes.Update)
	notes.DELETE("/:id", h.Notes.Delete)
	notes.PUT("/:id/pin", h.Notes.TogglePin)
	notes.POST("/:id/summarize", h.Notes.Summarize)
	notes.PUT("/:id/share", h.Share.Toggle)
	notes.GET("/:id/export", h.Export.Note)

	// Public share links need no token. Responses are cached briefly since
	// shared notes change rarely and anonymous traffic is unbounded;
	// revocation invalidates the entry so a dead link never serves a hit.
	api.GET("/share/public/:shareId", h.Share.GetShared, shareCache.Middleware())
}
