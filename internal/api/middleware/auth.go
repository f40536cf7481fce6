package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/api/response"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/auth"
)

// RequireLogin sends visitors to the login page while the backend requires
// authentication and no credentials are held. JSON and websocket routes
// answer 401 instead of redirecting.
func RequireLogin(store *auth.Store, prefix string) echo.MiddlewareFunc {
	loginPath := prefix + "/login"
	open := []string{loginPath, prefix + "/health", prefix + "/ready", prefix + "/static/"}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, p := range open {
				if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
					return next(c)
				}
			}

			st := store.State()
			if !st.AuthenticationRequired || st.IsAuthenticated {
				return next(c)
			}

			if strings.HasPrefix(path, prefix+"/api/") || path == prefix+"/ws" {
				return response.Unauthorized(c, "login required")
			}
			if c.Request().Method != http.MethodGet {
				return c.Redirect(http.StatusSeeOther, loginPath)
			}
			return c.Redirect(http.StatusSeeOther, loginPath+"?next="+url.QueryEscape(c.Request().URL.RequestURI()))
		}
	}
}
