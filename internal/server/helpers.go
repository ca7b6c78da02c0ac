package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

// respondJSON sends a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.Any("err", err))
	}
}

// respondError sends err as a JSON error body.
func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

// decodeJSON reads and decodes a single JSON object from the request body.
// The body size is bounded by bodyLimitMiddleware.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	// Ensure only one JSON object
	if err := decoder.Decode(new(struct{})); err != io.EOF {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
