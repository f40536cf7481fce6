package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/api"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/live"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

// viewer is the assembled web viewer
type viewer struct {
	echo    *echo.Echo
	hub     *websocket.Hub
	manager *live.Manager
	addr    string
}

func (c *ServeCmd) Run(ctx *Context) error {
	v, err := c.build(context.Background(), ctx)
	if err != nil {
		return err
	}
	log := ctx.Logger.Slog()

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go v.hub.Run(runCtx)
	go func() {
		if err := v.manager.Run(runCtx); err != nil {
			log.Error("live updates stopped", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              v.addr,
		Handler:           v.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("inbox viewer listening", "addr", v.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	}

	log.Info("shutting down viewer")
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	cancel()
	log.Info("viewer stopped")
	return nil
}

// build wires the viewer. The backend must answer its metadata request.
func (c *ServeCmd) build(startCtx context.Context, ctx *Context) (*viewer, error) {
	inbox, err := ctx.backend()
	if err != nil {
		return nil, err
	}
	cfg := ctx.Config
	if c.Port != 0 {
		cfg.ViewerPort = c.Port
	}
	if c.Prefix != "" {
		cfg.ViewerBasePath = strings.TrimSuffix(c.Prefix, "/")
	}
	if cfg.ViewerBasePath != "" && !strings.HasPrefix(cfg.ViewerBasePath, "/") {
		cfg.ViewerBasePath = "/" + cfg.ViewerBasePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	production := cfg.AppEnv == "production"
	if production {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	log := ctx.Logger.Slog()
	cfg.LogConfig(log)

	metaCtx, cancel := context.WithTimeout(startCtx, cfg.RequestTimeout)
	defer cancel()
	meta, err := inbox.GetMetaData(metaCtx)
	if err != nil {
		return nil, fmt.Errorf("backend unreachable: %w", err)
	}
	ctx.Store.SetAuthenticationRequired(meta.AuthenticationEnabled)
	log.Info("connected to backend", "version", meta.Version, "authentication", meta.AuthenticationEnabled)

	hub := websocket.NewHub(inbox, log)
	manager := live.NewManager(live.ManagerOptions{
		Source:         inbox,
		Auth:           ctx.Store,
		HTTPClient:     &http.Client{},
		ReconnectDelay: cfg.ReconnectDelay,
		Logger:         log,
	})
	manager.Subscribe(hub.BroadcastEmailReceived)

	routerCfg := &api.RouterConfig{
		BasePath:       cfg.ViewerBasePath,
		Inbox:          inbox,
		Auth:           ctx.Store,
		Hub:            hub,
		Live:           manager,
		Logger:         ctx.Logger,
		AllowedOrigins: cfg.Origins(),
		RateLimit:      cfg.RateLimitRequests,
		RateBurst:      cfg.RateLimitBurst,
		Production:     production,
	}
	if ctx.Keyring != nil {
		routerCfg.Saver = ctx.Keyring
	}
	e, err := api.NewRouter(routerCfg)
	if err != nil {
		return nil, err
	}

	return &viewer{
		echo:    e,
		hub:     hub,
		manager: manager,
		addr:    fmt.Sprintf(":%d", cfg.ViewerPort),
	}, nil
}
