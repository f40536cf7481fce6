package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiredBackendURL(t *testing.T) {
	os.Unsetenv("BACKEND_URL")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_URL is required")
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://localhost:8080/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BackendURL)
	assert.Equal(t, "", cfg.BasePath)
	assert.Equal(t, 8025, cfg.ViewerPort)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 20.0, cfg.RateLimitRequests)
	assert.Equal(t, 40, cfg.RateLimitBurst)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://mail.example.com")
	t.Setenv("BASE_PATH", "/fakesmtp/")
	t.Setenv("VIEWER_PORT", "9000")
	t.Setenv("VIEWER_BASE_PATH", "/inbox/")
	t.Setenv("RECONNECT_DELAY", "250ms")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("RATE_LIMIT_BURST", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/fakesmtp/", cfg.BasePath)
	assert.Equal(t, 9000, cfg.ViewerPort)
	assert.Equal(t, "/inbox", cfg.ViewerBasePath)
	assert.Equal(t, 250*time.Millisecond, cfg.ReconnectDelay)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, 5.0, cfg.RateLimitRequests)
	assert.Equal(t, 10, cfg.RateLimitBurst)
}

func TestLoadWith_OverridesWinOverEnvironment(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://env.example.com")
	t.Setenv("VIEWER_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWith(Overrides{
		BackendURL:     "http://flag.example.com/",
		ViewerPort:     9100,
		ViewerBasePath: "/mail/",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://flag.example.com", cfg.BackendURL)
	assert.Equal(t, 9100, cfg.ViewerPort)
	assert.Equal(t, "/mail", cfg.ViewerBasePath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadWith_BackendURLFromFlagOnly(t *testing.T) {
	os.Unsetenv("BACKEND_URL")

	cfg, err := LoadWithValidation(Overrides{BackendURL: "http://localhost:8080"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.BackendURL)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://localhost:8080")
	t.Setenv("VIEWER_PORT", "abc")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "VIEWER_PORT must be a valid integer")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://localhost:8080")
	t.Setenv("RECONNECT_DELAY", "soon")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "RECONNECT_DELAY must be a valid duration")
}

func TestValidate(t *testing.T) {
	valid := Config{
		BackendURL:     "http://localhost:8080",
		ViewerPort:     8025,
		ReconnectDelay: time.Second,
		RequestTimeout: time.Second,
	}
	assert.NoError(t, valid.Validate())

	relative := valid
	relative.BackendURL = "localhost"
	assert.Error(t, relative.Validate())

	badPort := valid
	badPort.ViewerPort = 70000
	assert.Error(t, badPort.Validate())

	noDelay := valid
	noDelay.ReconnectDelay = 0
	assert.Error(t, noDelay.Validate())
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{BackendURL: "https://mail.example.com", AllowedOrigins: ""}
	err := cfg.ValidateProduction()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ALLOWED_ORIGINS is required")

	cfg.AllowedOrigins = "*"
	assert.Error(t, cfg.ValidateProduction())

	cfg.AllowedOrigins = "https://viewer.example.com"
	assert.NoError(t, cfg.ValidateProduction())

	cfg.BackendURL = "http://mail.example.com"
	assert.Error(t, cfg.ValidateProduction())
}

func TestOrigins_TrimsAndFilters(t *testing.T) {
	cfg := &Config{AllowedOrigins: " http://a.example.com , ,http://b.example.com"}
	assert.Equal(t, []string{"http://a.example.com", "http://b.example.com"}, cfg.Origins())
}
