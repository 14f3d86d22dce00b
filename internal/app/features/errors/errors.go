// Package apierrors defines the error taxonomy handlers use and renders
// errors as the JSON body clients receive.
package apierrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Kind classifies an API error and determines its HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindAuthFailed
)

// Status maps a Kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated, KindAuthFailed:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is an API error carrying a client-safe message and, optionally,
// an underlying cause for logging.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a 400 error for rejected input.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Unauthenticated returns a 401 error for missing or invalid credentials.
func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// Forbidden returns a 403 error for insufficient privileges.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NotFound returns a 404 error for a missing resource.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// AuthFailed returns a 401 error for a failed provider sign-in.
func AuthFailed(msg string, cause error) *Error {
	return &Error{Kind: KindAuthFailed, Message: msg, Err: cause}
}

// Internal returns a 500 error wrapping an unexpected failure. The
// client sees only a generic message; the cause goes to the log.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: cause}
}

// body is the JSON error envelope clients receive.
type body struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// Write renders err as a JSON error response. Unknown error values are
// treated as internal errors. Internal causes are logged; client errors
// are not.
func Write(w http.ResponseWriter, log *zap.Logger, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Internal(err)
	}

	if apiErr.Kind == KindInternal && log != nil {
		log.Error("internal error", zap.Error(apiErr))
	}

	status := apiErr.Kind.Status()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body{StatusCode: status, Message: apiErr.Message})
}

// WriteJSON renders v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
