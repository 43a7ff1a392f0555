// Package http provides HTTP utilities including chi-compatible error handling
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/chainsafe/evm-bridge-relayer/pkg/app/errors"
)

// HandlerFunc defines a function that returns an error for clean error handling
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// HandleError wraps an error-returning HandlerFunc into a standard
// http.HandlerFunc.
//
// Usage with chi:
//
//	r.Post("/relay", http.HandleError(handler.relay))
func HandleError(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			DefaultErrorHandler(w, err)
		}
	}
}

// DefaultErrorHandler writes errors returned from HTTP handlers. Every
// failure path produces well-formed JSON with success=false and a message;
// ServiceError debug payloads are included verbatim.
func DefaultErrorHandler(w http.ResponseWriter, err error) {
	type errorResponse struct {
		Success bool           `json:"success"`
		ErrMsg  string         `json:"error"`
		Debug   map[string]any `json:"debug,omitempty"`
	}

	w.Header().Set("Content-Type", "application/json")

	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		w.WriteHeader(svcErr.StatusCode())
		_ = json.NewEncoder(w).Encode(&errorResponse{
			Success: false,
			ErrMsg:  svcErr.Message,
			Debug:   svcErr.Debug,
		})
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(&errorResponse{
		Success: false,
		ErrMsg:  "internal server error",
	})
}

// WriteJSON writes v as a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
