package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Client-side error taxonomy
var (
	// ErrNotFound indicates the backend answered 404 for a resource
	ErrNotFound = errors.New("resource not found")

	// ErrEmailNotFound indicates the requested email does not exist
	ErrEmailNotFound = fmt.Errorf("email not found: %w", ErrNotFound)

	// ErrAttachmentNotFound indicates the requested attachment does not exist
	ErrAttachmentNotFound = fmt.Errorf("attachment not found: %w", ErrNotFound)

	// ErrUnauthorized indicates the backend rejected the credentials (401)
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the backend refused access (403)
	ErrForbidden = errors.New("forbidden")

	// ErrTransport indicates a network or connection failure
	ErrTransport = errors.New("transport error")

	// ErrInvalidInput indicates malformed input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an unexpected backend response
	ErrInternal = errors.New("internal error")
)

// Error codes used by the viewer's JSON and websocket responses
const (
	CodeNotFound      = "NOT_FOUND"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeTransport     = "TRANSPORT_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeInternalError = "INTERNAL_ERROR"
)

// User-facing messages
const (
	MessageInvalidCredentials = "Invalid username or password. Please try again."
	MessageEmailNotFound      = "Email not found!"
)

// AppError represents an application error with context
type AppError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(err error, message string, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// EmailMissing reports that the email a detail view names does not exist
func EmailMissing(id string) *AppError {
	return NewAppError(ErrEmailNotFound, fmt.Sprintf("Email with ID %s does not exist.", id), CodeNotFound)
}

// StatusError records a non-2xx backend response
type StatusError struct {
	Err        error
	StatusCode int
	Method     string
	URL        string
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
}

// Unwrap returns the classified sentinel
func (e *StatusError) Unwrap() error {
	return e.Err
}

// FromStatus classifies an HTTP status code into the taxonomy.
// It returns nil for 2xx codes.
func FromStatus(method, url string, status int) error {
	if status >= 200 && status < 300 {
		return nil
	}
	var err error
	switch status {
	case http.StatusNotFound:
		err = ErrNotFound
	case http.StatusUnauthorized:
		err = ErrUnauthorized
	case http.StatusForbidden:
		err = ErrForbidden
	case http.StatusBadRequest:
		err = ErrInvalidInput
	default:
		err = ErrInternal
	}
	return &StatusError{Err: err, StatusCode: status, Method: method, URL: url}
}

// Transport wraps a network failure
func Transport(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized reports whether the backend rejected the credentials,
// either as 401 or 403
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// IsTransport checks if the error is a connection failure
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	switch {
	case IsNotFound(err):
		return CodeNotFound
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case IsTransport(err):
		return CodeTransport
	case IsInvalidInput(err):
		return CodeInvalidInput
	default:
		return CodeInternalError
	}
}

// HTTPStatus maps an error to the status the viewer answers with
func HTTPStatus(err error) int {
	switch GetErrorCode(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeTransport:
		return http.StatusBadGateway
	case CodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
