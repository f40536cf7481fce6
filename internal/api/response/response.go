// Package response provides the JSON envelope shared by the viewer's API
// endpoints.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/welldanyogia/webrana-inbox-viewer/internal/errors"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
)

// APIResponse wraps a single result
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse reports a failed call. Retryable marks backend outages the
// caller may retry unchanged.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// PageResponse carries one backend page
type PageResponse[T any] struct {
	Success bool `json:"success"`
	Data    []T  `json:"data"`
	Meta    Meta `json:"meta"`
}

// Meta is the pagination block of a PageResponse
type Meta struct {
	Page          int   `json:"page"`
	PageSize      int   `json:"pageSize"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
}

// MetaOf extracts the pagination block of p
func MetaOf[T any](p *models.Page[T]) Meta {
	return Meta{
		Page:          p.Number,
		PageSize:      p.Size,
		TotalPages:    p.TotalPages,
		TotalElements: p.TotalElements,
	}
}

func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func SuccessWithMessage(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// Page writes p as a PageResponse. A page without rows still encodes an
// empty list.
func Page[T any](c echo.Context, p *models.Page[T]) error {
	data := p.Content
	if data == nil {
		data = []T{}
	}
	return c.JSON(http.StatusOK, PageResponse[T]{
		Success: true,
		Data:    data,
		Meta:    MetaOf(p),
	})
}

// Error maps err onto its status code and error code
func Error(c echo.Context, err error) error {
	return c.JSON(apperrors.HTTPStatus(err), ErrorResponse{
		Success:   false,
		Error:     err.Error(),
		Code:      apperrors.GetErrorCode(err),
		Retryable: apperrors.IsTransport(err),
	})
}

func BadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    apperrors.CodeInvalidInput,
	})
}

func Unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{
		Success: false,
		Error:   message,
		Code:    apperrors.CodeUnauthorized,
	})
}
