package websocket

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/logger"
)

// NewSecureUpgrader creates a WebSocket upgrader with origin validation.
// Pages served by the viewer itself are always accepted.
func NewSecureUpgrader(allowedOrigins []string, log *logger.Logger) websocket.Upgrader {
	allowedOrigins = TrimOrigins(allowedOrigins)

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// Non-browser clients send no Origin
			if origin == "" {
				return true
			}

			if OriginAllowed(origin, r.Host, allowedOrigins) {
				return true
			}

			if log != nil {
				log.InvalidOrigin(r.RemoteAddr, origin)
			}
			return false
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// TrimOrigins drops blank entries from a configured origin list
func TrimOrigins(origins []string) []string {
	filtered := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin = strings.TrimSpace(origin); origin != "" {
			filtered = append(filtered, origin)
		}
	}
	return filtered
}

// OriginAllowed reports whether origin names host itself or is one of the
// allowed origins
func OriginAllowed(origin, host string, allowed []string) bool {
	if u, err := url.Parse(origin); err == nil && u.Host != "" && strings.EqualFold(u.Host, host) {
		return true
	}
	for _, a := range allowed {
		if a == origin {
			return true
		}
	}
	return false
}

// DefaultUpgrader returns an upgrader that allows all origins (for development)
func DefaultUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}
