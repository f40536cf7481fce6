package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SecureCORS returns CORS middleware for the JSON endpoints. Wildcard
// origins are dropped in production; with no origins left only
// same-origin callers are served.
func SecureCORS(origins []string, production bool) echo.MiddlewareFunc {
	filtered := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" || (production && origin == "*") {
			continue
		}
		filtered = append(filtered, origin)
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper: func(echo.Context) bool {
			return len(filtered) == 0
		},
		AllowOrigins:     filtered,
		AllowMethods:     []string{echo.GET, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
