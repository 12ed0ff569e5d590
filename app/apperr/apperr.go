// Package apperr defines the closed set of failure kinds shared by every
// entry surface. Each kind carries a stable numeric code; adapters map a
// kind to their transport exactly once and never invent codes of their own.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

// Kind enumerates every failure class the application can surface.
type Kind int

const (
	// Validation means the input shape or field lengths were rejected.
	Validation Kind = iota
	// MissingResource means a required upload is absent.
	MissingResource
	// NotFound means the requested entity does not exist.
	NotFound
	// Forbidden means the caller is authenticated but not the owner.
	Forbidden
	// Auth means the caller's identity is missing or invalid.
	Auth
	// Persistence means a store was unavailable or a write failed.
	Persistence
)

// codes maps each kind to its stable numeric code.
var codes = map[Kind]int{
	Validation:      422,
	MissingResource: 422,
	NotFound:        404,
	Forbidden:       403,
	Auth:            401,
	Persistence:     500,
}

// Error is the single structured error type crossing the service boundary.
// Data carries field-level messages for validation failures.
type Error struct {
	Kind    Kind
	Message string
	Data    []string
	cause   error
}

func (e *Error) Error() string {
	if len(e.Data) > 0 {
		return e.Message + ": " + strings.Join(e.Data, "; ")
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the stable numeric code for the error's kind.
func (e *Error) Code() int { return codes[e.Kind] }

// Extensions surfaces the code and field messages to GraphQL clients.
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.Code()}
	if len(e.Data) > 0 {
		ext["data"] = e.Data
	}
	return ext
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewValidation creates a validation error carrying field messages.
func NewValidation(message string, data ...string) *Error {
	return &Error{Kind: Validation, Message: message, Data: data}
}

// Wrap creates an error of the given kind around an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// HTTPStatus maps any error to an HTTP status code. Errors that are not
// application errors are treated as internal failures.
func HTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return http.StatusInternalServerError
}

// Details returns the field messages of a validation error, if any.
func Details(err error) []string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Data
	}
	return nil
}
