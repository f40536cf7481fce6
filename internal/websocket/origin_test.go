package websocket

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/logger"
)

func TestNewSecureUpgrader_ValidOrigin(t *testing.T) {
	upgrader := NewSecureUpgrader([]string{"http://localhost:3000", "http://example.com"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://example.com")

	assert.True(t, upgrader.CheckOrigin(req))
}

func TestNewSecureUpgrader_InvalidOriginIsLogged(t *testing.T) {
	var buf bytes.Buffer
	upgrader := NewSecureUpgrader([]string{"http://localhost:3000"}, logger.NewWithWriter(&buf, slog.LevelInfo))

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://malicious.com")

	assert.False(t, upgrader.CheckOrigin(req))
	assert.Contains(t, buf.String(), "http://malicious.com")
}

func TestNewSecureUpgrader_EmptyOrigin(t *testing.T) {
	upgrader := NewSecureUpgrader(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)

	assert.True(t, upgrader.CheckOrigin(req))
}

func TestNewSecureUpgrader_SameHost(t *testing.T) {
	upgrader := NewSecureUpgrader(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "http://inbox.local:8025/ws", nil)
	req.Header.Set("Origin", "http://inbox.local:8025")
	assert.True(t, upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "http://inbox.local:9999")
	assert.False(t, upgrader.CheckOrigin(req))
}

func TestNewSecureUpgrader_TrimAndFilter(t *testing.T) {
	upgrader := NewSecureUpgrader([]string{"  http://localhost:3000  ", "", " "}, nil)

	tests := []struct {
		origin   string
		expected bool
	}{
		{"http://localhost:3000", true},
		{"http://LOCALHOST:3000", false},
		{"http://localhost:3000/path", false},
		{"http://other.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			req.Header.Set("Origin", tt.origin)
			assert.Equal(t, tt.expected, upgrader.CheckOrigin(req))
		})
	}
}

func TestDefaultUpgrader_AllowsAll(t *testing.T) {
	upgrader := DefaultUpgrader()

	for _, origin := range []string{"http://localhost:3000", "http://malicious.com", ""} {
		t.Run(origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if origin != "" {
				req.Header.Set("Origin", origin)
			}
			assert.True(t, upgrader.CheckOrigin(req))
		})
	}
}

func TestNewSecureUpgrader_BufferSizes(t *testing.T) {
	upgrader := NewSecureUpgrader(nil, nil)

	assert.Equal(t, 1024, upgrader.ReadBufferSize)
	assert.Equal(t, 1024, upgrader.WriteBufferSize)
}
