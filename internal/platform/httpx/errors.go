// Package httpx provides HTTP response utilities.
package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrDuplicate        = errors.New("duplicate entry")
	ErrValidation       = errors.New("validation failed")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTokenExpired     = errors.New("token expired")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrUnavailable      = errors.New("service unavailable")
)

// Error attaches a user-facing message to one of the sentinel kinds.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Message != "" {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Validation builds a 400 error with the given message.
func Validation(msg string) *Error { return &Error{Kind: ErrValidation, Message: msg} }

// NotFound builds a 404 error.
func NotFound(msg string) *Error { return &Error{Kind: ErrNotFound, Message: msg} }

// Forbidden builds a 403 error.
func Forbidden(msg string) *Error { return &Error{Kind: ErrForbidden, Message: msg} }

// Unauthorized builds a 401 error.
func Unauthorized(msg string) *Error { return &Error{Kind: ErrUnauthorized, Message: msg} }

// Conflict builds a 409 error.
func Conflict(msg string) *Error { return &Error{Kind: ErrDuplicate, Message: msg} }

// Unavailable builds a 503 error.
func Unavailable(msg string) *Error { return &Error{Kind: ErrUnavailable, Message: msg} }

// Wrap ties a cause to a kind and message.
func Wrap(kind error, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

type classification struct {
	kind    error
	status  int
	code    string
	message string
}

// Order matters: ErrTokenExpired must be checked before ErrUnauthorized.
var classifications = []classification{
	{ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed"},
	{ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token expired"},
	{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Access denied"},
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND", "Resource not found"},
	{ErrMethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed"},
	{ErrDuplicate, http.StatusConflict, "CONFLICT", "Resource already exists"},
	{ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests"},
	{ErrUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service unavailable"},
}

// Classify maps an error onto status code, machine code and a user-safe message.
func Classify(err error) (int, string, string) {
	for _, c := range classifications {
		if !errors.Is(err, c.kind) {
			continue
		}
		msg := c.message
		var appErr *Error
		if errors.As(err, &appErr) && appErr.Message != "" {
			msg = appErr.Message
		}
		return c.status, c.code, msg
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service unavailable"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
}

// RespondError maps domain errors to enveloped HTTP responses.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := Classify(err)
	env := Envelope{
		Success:   false,
		Error:     Localize(r, msg),
		Code:      code,
		Timestamp: timestamp(),
	}
	if r != nil && detailsExposed(r.Context()) && err != nil {
		env.Details = err.Error()
	}
	JSON(w, status, env)
}
