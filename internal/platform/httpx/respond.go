package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// Envelope is the body shape shared by every JSON response.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	Details   string `json:"details,omitempty"`
	Meta      any    `json:"meta,omitempty"`
	Timestamp string `json:"timestamp"`
}

var now = time.Now

func timestamp() string {
	return now().UTC().Format(time.RFC3339)
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Success writes a successful envelope around data.
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Success: true, Data: data, Timestamp: timestamp()})
}

// SuccessMessage writes a successful envelope with a localized message.
func SuccessMessage(w http.ResponseWriter, r *http.Request, status int, data any, message string) {
	JSON(w, status, Envelope{Success: true, Data: data, Message: Localize(r, message), Timestamp: timestamp()})
}

// SuccessWithMeta writes a successful envelope with listing metadata.
func SuccessWithMeta(w http.ResponseWriter, status int, data, meta any) {
	JSON(w, status, Envelope{Success: true, Data: data, Meta: meta, Timestamp: timestamp()})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	if r.Body == nil {
		return Validation("Invalid request body")
	}
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return Validation("Invalid request body")
		}
		return Wrap(ErrValidation, "Invalid request body", err)
	}
	return nil
}

// NotFoundHandler renders unknown routes in the envelope.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	RespondError(w, r, ErrNotFound)
}

// MethodNotAllowedHandler renders unsupported methods in the envelope.
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	RespondError(w, r, ErrMethodNotAllowed)
}

type detailsKey struct{}

// ExposeErrorDetails makes RespondError include the internal error text.
// It is installed only outside production.
func ExposeErrorDetails(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), detailsKey{}, true)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func detailsExposed(ctx context.Context) bool {
	v, _ := ctx.Value(detailsKey{}).(bool)
	return v
}
