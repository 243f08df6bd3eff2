// Package apperror provides domain-specific error types for taskman.
// These errors carry an HTTP status code and a user-safe message. The Echo
// error handler maps them to appropriate HTTP responses automatically.
//
// NEVER return raw database or infrastructure errors to the client. Always
// wrap them in an apperror type or return a generic internal error.
package apperror

import (
	"fmt"
	"net/http"
)

// AppError is the base error type for all domain errors. It carries an
// HTTP status code, a machine-readable error type, and a human-readable
// message safe to show to the client.
type AppError struct {
	// Code is the HTTP status code (e.g., 404, 400, 500).
	Code int `json:"-"`

	// Type is a machine-readable error classifier (e.g., "not_found").
	Type string `json:"type"`

	// Message is a human-readable description safe for the client.
	Message string `json:"message"`

	// Internal holds the underlying error for logging. Never exposed to client.
	Internal error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// --- Constructors for the error taxonomy ---

// NewUnauthenticated creates a 401 error for requests carrying no credential.
func NewUnauthenticated(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Type:    "unauthenticated",
		Message: message,
	}
}

// NewInvalidCredential creates a 401 error for a credential that is malformed
// or whose signature does not verify. Also used for failed login attempts so
// a wrong email and a wrong password are indistinguishable.
func NewInvalidCredential(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Type:    "invalid_credential",
		Message: message,
	}
}

// NewExpiredCredential creates a 401 error for a well-signed but expired
// credential. Kept distinct from invalid_credential so clients can prompt
// for re-login instead of treating the session as tampered.
func NewExpiredCredential(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Type:    "expired_credential",
		Message: message,
	}
}

// NewValidation creates a 400 Bad Request error for input that fails
// server-side validation (missing title, malformed body, bad field types).
func NewValidation(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Type:    "validation_error",
		Message: message,
	}
}

// NewNotFound creates a 404 Not Found error. A resource owned by a different
// user also maps here: existence of another user's row must not be
// distinguishable from non-existence.
func NewNotFound(message string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Type:    "not_found",
		Message: message,
	}
}

// NewConflict creates a 409 Conflict error (duplicate unique key, e.g. an
// email address that is already registered).
func NewConflict(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Type:    "conflict",
		Message: message,
	}
}

// NewInternal creates a 500 Internal Server Error. The real error is stored
// in Internal for logging but the client only sees a generic message.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     "internal_error",
		Message:  "An unexpected error occurred. Please try again.",
		Internal: err,
	}
}

// SafeMessage returns the client-safe error message from an error. If the
// error is an AppError, returns its Message field (which is safe to expose).
// For any other error type, returns a generic message to prevent leaking
// internal details like table names, query structure, or stack traces.
func SafeMessage(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Message
	}
	return "an unexpected error occurred"
}

// SafeCode returns the HTTP status code from an AppError, or 500 for
// any other error type.
func SafeCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
