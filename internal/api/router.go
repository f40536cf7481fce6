package api

import (
	"fmt"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/api/handlers"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/api/middleware"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/api/views"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/auth"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/logger"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/websocket"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	BasePath string // prefix the viewer is served under ("" = root)
	Inbox    handlers.Inbox
	Auth     *auth.Store
	Saver    handlers.CredentialSaver // optional credential persistence
	Hub      *websocket.Hub
	Live     handlers.LiveStatus // optional
	Logger   *logger.Logger
	// Upgrader overrides the origin-checking websocket upgrader
	Upgrader *gorillaws.Upgrader
	// Security configuration
	AllowedOrigins []string // Allowed CORS and websocket origins
	RateLimit      float64  // Requests per second (0 = unlimited)
	RateBurst      int      // Burst size for rate limiter
	Production     bool
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) (*echo.Echo, error) {
	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	log := cfg.Logger.Slog()
	prefix := cfg.BasePath

	// Security Middleware (applied in correct order)
	// 1. Recover from panics
	e.Use(middleware.Recover())

	// 2. Request IDs for log correlation
	e.Use(middleware.RequestID())

	// 3. Security headers (applied to all responses)
	e.Use(middleware.SecureHeaders())

	// 4. Rate limiting
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.Logger))
	}

	// 5. Request logging
	e.Use(middleware.RequestLogger(log))

	// 6. Login gate
	e.Use(middleware.RequireLogin(cfg.Auth, prefix))

	upgrader := upgraderFor(cfg)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.Inbox, cfg.Live)
	pageHandler := handlers.NewPageHandler(cfg.Inbox, cfg.Auth, prefix, log)
	attachmentHandler := handlers.NewAttachmentHandler(cfg.Inbox, cfg.Auth, prefix, log)
	authHandler := handlers.NewAuthHandler(cfg.Inbox, cfg.Auth, cfg.Saver, prefix, cfg.Logger)
	emailHandler := handlers.NewEmailHandler(cfg.Inbox)
	wsHandler := handlers.NewWSHandler(cfg.Hub, upgrader, log)

	if prefix != "" {
		e.GET(prefix, func(c echo.Context) error {
			return c.Redirect(http.StatusMovedPermanently, prefix+"/")
		})
	}

	g := e.Group(prefix)

	// Health routes (no login required)
	g.GET("/health", healthHandler.Health)
	g.GET("/ready", healthHandler.Ready)

	g.StaticFS("/static", views.Static())

	// Form posts must come from the viewer's own pages
	sameOrigin := middleware.SameOrigin(cfg.AllowedOrigins, cfg.Logger)
	// Rendered pages show the backend version in their header
	version := middleware.BackendVersion(cfg.Inbox)

	// Login routes
	g.GET("/login", authHandler.LoginForm, version)
	g.POST("/login", authHandler.Login, sameOrigin, version)
	g.POST("/logout", authHandler.Logout, sameOrigin)

	// Page routes
	g.GET("/", pageHandler.List, version)
	g.GET("/emails/:id", pageHandler.Show, version)
	g.POST("/emails/:id/delete", pageHandler.Delete, sameOrigin, version)
	g.POST("/emails/delete", pageHandler.DeleteAll, sameOrigin, version)
	g.GET("/emails/:id/attachments/:attachmentId", attachmentHandler.Download, version)

	// Live updates
	g.GET("/ws", wsHandler.Serve)

	// API routes
	api := g.Group("/api")
	api.Use(middleware.SecureCORS(cfg.AllowedOrigins, cfg.Production))

	emails := api.Group("/emails")
	emails.GET("", emailHandler.List)
	emails.POST("/search", emailHandler.Search)
	emails.GET("/:id", emailHandler.Get)
	emails.DELETE("/:id", emailHandler.Delete)
	emails.DELETE("", emailHandler.DeleteAll)

	return e, nil
}

func upgraderFor(cfg *RouterConfig) gorillaws.Upgrader {
	if cfg.Upgrader != nil {
		return *cfg.Upgrader
	}
	return websocket.NewSecureUpgrader(cfg.AllowedOrigins, cfg.Logger)
}
