package middleware

import (
	"net/http"
	"net/url"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/logger"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/websocket"
)

// SameOrigin refuses state-changing form posts that a browser sent on
// behalf of another site. Requests carrying neither Sec-Fetch-Site nor
// Origin nor Referer come from non-browser clients and pass.
func SameOrigin(allowedOrigins []string, log *logger.Logger) echo.MiddlewareFunc {
	allowedOrigins = websocket.TrimOrigins(allowedOrigins)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			origin := requestOrigin(r)
			if origin == "" || websocket.OriginAllowed(origin, r.Host, allowedOrigins) {
				switch r.Header.Get("Sec-Fetch-Site") {
				case "", "same-origin", "none":
					return next(c)
				}
				if origin != "" && slices.Contains(allowedOrigins, origin) {
					return next(c)
				}
			}

			if log != nil {
				log.InvalidOrigin(c.RealIP(), origin)
			}
			return echo.NewHTTPError(http.StatusForbidden, "cross-origin request refused")
		}
	}
}

// requestOrigin is the Origin header, or the scheme and host of Referer
// when a browser left Origin out
func requestOrigin(r *http.Request) string {
	if origin := r.Header.Get(echo.HeaderOrigin); origin != "" {
		return origin
	}
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host == "" {
		return ""
	}
	return ref.Scheme + "://" + ref.Host
}
