package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func corsRequest(mw echo.MiddlewareFunc, origin string) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(mw)
	e.GET("/api/emails", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/emails", nil)
	req.Header.Set(echo.HeaderOrigin, origin)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSecureCORS_AllowsConfiguredOrigin(t *testing.T) {
	rec := corsRequest(SecureCORS([]string{" https://mail.example.com "}, true), "https://mail.example.com")

	assert.Equal(t, "https://mail.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}

func TestSecureCORS_RejectsOtherOrigin(t *testing.T) {
	rec := corsRequest(SecureCORS([]string{"https://mail.example.com"}, true), "https://evil.example.com")

	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestSecureCORS_DropsWildcardInProduction(t *testing.T) {
	rec := corsRequest(SecureCORS([]string{"*"}, true), "https://evil.example.com")

	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestSecureCORS_WildcardInDevelopment(t *testing.T) {
	rec := corsRequest(SecureCORS([]string{"*"}, false), "http://localhost:5173")

	assert.NotEmpty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
