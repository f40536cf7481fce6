package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
)

type metaFunc func(ctx context.Context) (*models.MetaData, error)

func (f metaFunc) GetMetaData(ctx context.Context) (*models.MetaData, error) {
	return f(ctx)
}

func versionRequest(source MetaSource) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(BackendVersion(source))
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "v="+GetBackendVersion(c))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestBackendVersion_StoresVersion(t *testing.T) {
	rec := versionRequest(metaFunc(func(context.Context) (*models.MetaData, error) {
		return &models.MetaData{Version: "2.4.0"}, nil
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v=2.4.0", rec.Body.String())
}

func TestBackendVersion_LookupFailureIsIgnored(t *testing.T) {
	rec := versionRequest(metaFunc(func(context.Context) (*models.MetaData, error) {
		return nil, errors.New("connection refused")
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v=", rec.Body.String())
}
