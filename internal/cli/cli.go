// Package cli implements the inbox-viewer command line.
package cli

import (
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/auth"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/basepath"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/client"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/config"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/logger"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/output"
)

var Version = "0.1.0"

type Globals struct {
	JSON       bool   `help:"Output as JSON" name:"json"`
	BackendURL string `help:"Mail backend origin" name:"backend-url" env:"BACKEND_URL"`
	BasePath   string `help:"Path prefix of the backend API" name:"base-path" env:"BASE_PATH"`
	LogLevel   string `help:"Log level (debug, info, warn, error)" name:"log-level" env:"LOG_LEVEL"`
	NoColor    bool   `help:"Disable colored output" name:"no-color" env:"NO_COLOR"`
	Quiet      bool   `help:"Suppress non-essential output" short:"q"`
}

type CLI struct {
	Globals

	Serve      ServeCmd      `cmd:"" help:"Run the web inbox viewer"`
	List       ListCmd       `cmd:"" help:"List captured emails"`
	Show       ShowCmd       `cmd:"" help:"Show one email"`
	Delete     DeleteCmd     `cmd:"" help:"Delete one email"`
	DeleteAll  DeleteAllCmd  `cmd:"" name:"delete-all" help:"Delete every email"`
	Attachment AttachmentCmd `cmd:"" help:"Download an attachment"`
	Login      LoginCmd      `cmd:"" help:"Save backend credentials"`
	Logout     LogoutCmd     `cmd:"" help:"Forget saved backend credentials"`
	Watch      WatchCmd      `cmd:"" help:"Print emails as they arrive"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
}

// Context is handed to every command's Run method
type Context struct {
	Config    *config.Config
	Formatter *output.Formatter
	Globals   *Globals
	Logger    *logger.Logger
	Store     *auth.Store
	Keyring   *auth.KeyringStore
	Client    *client.Client
	Stdin     io.Reader

	configErr error
}

// NewContext loads configuration and builds the backend client. A missing
// backend URL is reported only by commands that talk to the backend.
func NewContext(globals *Globals) (*Context, error) {
	formatter := output.New(globals.JSON, globals.Quiet, globals.NoColor)
	ctx := &Context{
		Formatter: formatter,
		Globals:   globals,
		Store:     auth.NewStore(),
		Stdin:     os.Stdin,
	}

	cfg, err := config.LoadWith(config.Overrides{
		BackendURL: globals.BackendURL,
		BasePath:   globals.BasePath,
		LogLevel:   globals.LogLevel,
	})
	if err != nil {
		ctx.configErr = err
		fallback := config.Config{LogLevel: globals.LogLevel}
		ctx.Logger = logger.NewWithWriter(os.Stderr, fallback.Level())
		return ctx, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx.Config = cfg
	ctx.Logger = logger.NewWithWriter(os.Stderr, cfg.Level())

	ctx.Keyring = auth.NewKeyringStore(cfg.BackendURL)
	if _, err := ctx.Keyring.Restore(ctx.Store); err != nil {
		ctx.Logger.Slog().Warn("could not restore saved credentials", "error", err)
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	ctx.Client = client.New(client.Options{
		BackendURL: cfg.BackendURL,
		BasePath:   basepath.New(basepath.Configured(cfg.BasePath, httpClient, cfg.BackendURL)),
		HTTPClient: httpClient,
		Auth:       ctx.Store,
		Logger:     ctx.Logger.Slog(),
	})
	return ctx, nil
}

// backend returns the client, or the configuration error if there is none
func (c *Context) backend() (*client.Client, error) {
	if c.Client == nil {
		if c.configErr != nil {
			return nil, c.configErr
		}
		return nil, errors.New("backend is not configured")
	}
	return c.Client, nil
}

// ServeCmd runs the web viewer
type ServeCmd struct {
	Port   int    `help:"Port of the viewer" env:"VIEWER_PORT"`
	Prefix string `help:"Path prefix the viewer is mounted under" name:"viewer-base-path" env:"VIEWER_BASE_PATH"`
}

// ListCmd prints one page of the inbox
type ListCmd struct {
	Page uint   `help:"Zero-based page number" short:"p" default:"0"`
	Size uint   `help:"Emails per page" short:"n" default:"10"`
	From string `help:"Only emails from this address"`
}

type ShowCmd struct {
	ID     string `arg:"" help:"Email ID"`
	Format string `help:"Body representation (plain, html, raw)" short:"f" enum:"plain,html,raw" default:"plain"`
}

type DeleteCmd struct {
	ID string `arg:"" help:"Email ID"`
}

type DeleteAllCmd struct {
	Yes bool `help:"Confirm deleting every email" short:"y"`
}

type AttachmentCmd struct {
	EmailID      string `arg:"" help:"Email ID"`
	AttachmentID string `arg:"" help:"Attachment ID"`
	Output       string `help:"Output file, - for stdout" short:"o"`
}

type LoginCmd struct {
	Username string `arg:"" optional:"" help:"Backend username"`
	Password string `help:"Backend password (prompted if empty)" env:"BACKEND_PASSWORD"`
}

type LogoutCmd struct{}

type WatchCmd struct{}

type VersionCmd struct{}
