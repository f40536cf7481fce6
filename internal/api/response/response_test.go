package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/welldanyogia/webrana-inbox-viewer/internal/errors"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
)

func setupTestContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func TestSuccess_Returns200WithData(t *testing.T) {
	c, rec := setupTestContext()

	err := Success(c, map[string]string{"key": "value"})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
}

func TestSuccessWithMessage_Returns200WithMessage(t *testing.T) {
	c, rec := setupTestContext()

	err := SuccessWithMessage(c, nil, "deleted")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"deleted"}`, rec.Body.String())
}

func TestPage_ReturnsContentWithMeta(t *testing.T) {
	c, rec := setupTestContext()
	page := models.NewPage([]string{"a", "b", "c", "d", "e", "f"}, 1, 2)

	require.NoError(t, Page(c, &page))

	var resp PageResponse[string]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"c", "d"}, resp.Data)
	assert.Equal(t, Meta{Page: 1, PageSize: 2, TotalPages: 3, TotalElements: 6}, resp.Meta)
}

func TestPage_EmptyPageEncodesEmptyList(t *testing.T) {
	c, rec := setupTestContext()

	require.NoError(t, Page(c, &models.Page[string]{Size: 10}))
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestError_ReturnsCorrectStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperrors.ErrEmailNotFound, http.StatusNotFound, apperrors.CodeNotFound},
		{"backend 404", apperrors.FromStatus(http.MethodGet, "/api/emails/1", 404), http.StatusNotFound, apperrors.CodeNotFound},
		{"invalid input", apperrors.ErrInvalidInput, http.StatusBadRequest, apperrors.CodeInvalidInput},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, apperrors.CodeUnauthorized},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden, apperrors.CodeForbidden},
		{"transport", apperrors.Transport(errors.New("connection refused")), http.StatusBadGateway, apperrors.CodeTransport},
		{"unknown", errors.New("unknown error"), http.StatusInternalServerError, apperrors.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := setupTestContext()

			require.NoError(t, Error(c, tt.err))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.err.Error(), resp.Error)
			assert.Equal(t, tt.wantStatus == http.StatusBadGateway, resp.Retryable)
		})
	}
}

func TestShortcuts(t *testing.T) {
	tests := []struct {
		name       string
		call       func(echo.Context) error
		wantStatus int
		wantCode   string
	}{
		{"bad request", func(c echo.Context) error { return BadRequest(c, "bad") }, http.StatusBadRequest, apperrors.CodeInvalidInput},
		{"unauthorized", func(c echo.Context) error { return Unauthorized(c, "login") }, http.StatusUnauthorized, apperrors.CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := setupTestContext()

			require.NoError(t, tt.call(c))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}
