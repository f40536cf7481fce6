package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_LoginFailure_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo)

	l.LoginFailure("192.168.1.1", "invalid_credentials")

	entry := decode(t, &buf)
	assert.Equal(t, "login_failure", entry["event_type"])
	assert.Equal(t, "192.168.1.1", entry["ip"])
	assert.Equal(t, "invalid_credentials", entry["reason"])
	assert.Contains(t, entry, "timestamp")
}

func TestLogger_InvalidOrigin(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo)

	l.InvalidOrigin("10.0.0.1", "http://malicious.com")

	entry := decode(t, &buf)
	assert.Equal(t, "invalid_origin", entry["event_type"])
	assert.Equal(t, "http://malicious.com", entry["origin"])
}

func TestLogger_RateLimitExceeded(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo)

	l.RateLimitExceeded("10.0.0.1", "/")

	entry := decode(t, &buf)
	assert.Equal(t, "rate_limit", entry["event_type"])
	assert.Equal(t, "/", entry["path"])
}

func TestLogger_SecurityEvent_FiltersSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo)

	l.SecurityEvent("test_event", "192.168.1.1", map[string]string{
		"username": "admin",
		"password": "secret123",
		"token":    "abc",
	})

	entry := decode(t, &buf)
	assert.Equal(t, "admin", entry["username"])
	assert.NotContains(t, entry, "password")
	assert.NotContains(t, entry, "token")
}

func TestLogger_RedactsSensitiveAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelInfo)

	l.Slog().Info("request", slog.String("authorization", "Basic dXNlcjpwYXNz"))

	entry := decode(t, &buf)
	assert.Equal(t, "[REDACTED]", entry["authorization"])
	assert.NotContains(t, buf.String(), "dXNlcjpwYXNz")
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, slog.LevelWarn)

	l.Slog().Info("ignored")
	assert.Empty(t, buf.String())
}
