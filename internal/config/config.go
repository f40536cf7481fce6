package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the viewer
type Config struct {
	// Backend
	BackendURL     string
	BasePath       string
	RequestTimeout time.Duration

	// Viewer server
	ViewerPort     int
	ViewerBasePath string

	// Live updates
	ReconnectDelay time.Duration

	// Logging
	LogLevel string

	// Security
	AllowedOrigins string
	AppEnv         string

	// Rate Limiting
	RateLimitRequests float64
	RateLimitBurst    int
}

// Overrides are values given on the command line. Empty fields leave the
// environment value in place.
type Overrides struct {
	BackendURL     string
	BasePath       string
	ViewerPort     int
	ViewerBasePath string
	LogLevel       string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return LoadWith(Overrides{})
}

// LoadWith reads configuration from environment variables, then applies o
func LoadWith(o Overrides) (*Config, error) {
	cfg := &Config{}

	// Required: BACKEND_URL
	cfg.BackendURL = strings.TrimSuffix(firstNonEmpty(o.BackendURL, os.Getenv("BACKEND_URL")), "/")
	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required but not set")
	}

	// BASE_PATH (default: none)
	cfg.BasePath = firstNonEmpty(o.BasePath, os.Getenv("BASE_PATH"))

	// VIEWER_PORT (default: 8025)
	viewerPort := os.Getenv("VIEWER_PORT")
	if viewerPort == "" {
		cfg.ViewerPort = 8025
	} else {
		port, err := strconv.Atoi(viewerPort)
		if err != nil {
			return nil, fmt.Errorf("VIEWER_PORT must be a valid integer: %w", err)
		}
		cfg.ViewerPort = port
	}

	if o.ViewerPort != 0 {
		cfg.ViewerPort = o.ViewerPort
	}

	cfg.ViewerBasePath = strings.TrimSuffix(firstNonEmpty(o.ViewerBasePath, os.Getenv("VIEWER_BASE_PATH")), "/")

	// RECONNECT_DELAY (default: 5s)
	delay, err := durationEnv("RECONNECT_DELAY", 5*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.ReconnectDelay = delay

	// REQUEST_TIMEOUT (default: 30s)
	timeout, err := durationEnv("REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = timeout

	// LOG_LEVEL (default: info)
	cfg.LogLevel = firstNonEmpty(o.LogLevel, os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	// Security configuration
	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	cfg.AppEnv = os.Getenv("APP_ENV")
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	// Rate limiting configuration
	if rps := os.Getenv("RATE_LIMIT_REQUESTS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RateLimitRequests = v
		}
	} else {
		cfg.RateLimitRequests = 20.0
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.RateLimitBurst = v
		}
	} else {
		cfg.RateLimitBurst = 40
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return d, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation(o Overrides) (*Config, error) {
	cfg, err := LoadWith(o)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("BackendURL cannot be empty")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BackendURL must be an absolute URL")
	}
	if c.ViewerPort <= 0 || c.ViewerPort > 65535 {
		return fmt.Errorf("ViewerPort must be between 1 and 65535")
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("ReconnectDelay must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("RequestTimeout must be positive")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	if strings.HasPrefix(c.BackendURL, "http://") {
		return fmt.Errorf("BACKEND_URL must use https in production")
	}

	return nil
}

// Origins splits AllowedOrigins into a trimmed list
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Level maps LogLevel to a slog level
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.String("backend_url", c.BackendURL),
		slog.String("base_path", c.BasePath),
		slog.Int("viewer_port", c.ViewerPort),
		slog.String("viewer_base_path", c.ViewerBasePath),
		slog.Duration("reconnect_delay", c.ReconnectDelay),
		slog.Duration("request_timeout", c.RequestTimeout),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Bool("allowed_origins_set", c.AllowedOrigins != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
	)
}
