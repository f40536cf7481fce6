package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
)

// backendVersionKey is the echo context key holding the backend version
const backendVersionKey = "backend_version"

// MetaSource looks up the backend metadata. *client.Client implements it
// and caches the answer.
type MetaSource interface {
	GetMetaData(ctx context.Context) (*models.MetaData, error)
}

// BackendVersion makes the backend's version available to page layouts.
// A failed lookup leaves it unset and never fails the request.
func BackendVersion(source MetaSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if meta, err := source.GetMetaData(c.Request().Context()); err == nil && meta != nil {
				c.Set(backendVersionKey, meta.Version)
			}
			return next(c)
		}
	}
}

// GetBackendVersion returns the version stored by BackendVersion, or ""
func GetBackendVersion(c echo.Context) string {
	v, _ := c.Get(backendVersionKey).(string)
	return v
}
