package handlers

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hoanghai1803/newsbuddy/internal/news"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// writeJSON encodes v as JSON and writes it to the response with the given
// HTTP status code. Content-Type is always set to application/json.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// At this point headers are already sent; log but cannot change status.
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response with the given HTTP status code.
// The response body is {"error": "message"}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeNewsError reports a headline listing failure. The body carries the
// user-facing message and a retryable flag the page uses to offer a retry
// button.
func writeNewsError(w http.ResponseWriter, err error) {
	var ne *news.Error
	if !errors.As(err, &ne) {
		ne = &news.Error{Kind: news.KindGeneric, Err: err}
	}
	writeJSON(w, newsErrorStatus(ne.Kind), map[string]any{
		"error":     ne.UserMessage(),
		"kind":      ne.Kind.String(),
		"retryable": true,
	})
}

func newsErrorStatus(k news.Kind) int {
	switch k {
	case news.KindRateLimited:
		return http.StatusTooManyRequests
	case news.KindNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// decodeJSON decodes a size-limited JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

// parseArticleID extracts an article ID (a SHA-256 hex digest) from a chi URL
// parameter.
func parseArticleID(r *http.Request, param string) (string, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return "", fmt.Errorf("missing URL parameter %q", param)
	}
	if b, err := hex.DecodeString(raw); err != nil || len(b) != 32 {
		return "", fmt.Errorf("invalid %q parameter %q", param, raw)
	}
	return raw, nil
}

// parseSessionID extracts a chat session UUID from a chi URL parameter.
func parseSessionID(r *http.Request, param string) (string, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return "", fmt.Errorf("missing URL parameter %q", param)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid %q parameter: %w", param, err)
	}
	return id.String(), nil
}
