package news

import (
	"fmt"
	"net/http"
)

// Kind classifies a headline listing failure.
type Kind int

const (
	KindGeneric Kind = iota
	KindUnauthorized
	KindRateLimited
	KindServer
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "generic"
	}
}

// Error is returned by a Source when headlines could not be listed.
type Error struct {
	Kind   Kind
	Status int // HTTP status from upstream, 0 for transport failures
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("news %s error (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("news %s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns text suitable for showing next to a retry button.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindUnauthorized:
		return "The news service rejected our API key. Check your NewsAPI key and try again."
	case KindRateLimited:
		return "Too many requests to the news service. Please wait a moment and try again."
	case KindServer:
		return "The news service is having problems right now. Please try again later."
	case KindNetwork:
		return "Could not reach the news service. Check your connection and try again."
	default:
		return "Failed to load news. Please try again later."
	}
}

// kindForStatus maps an upstream HTTP status to a Kind.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindServer
	default:
		return KindGeneric
	}
}
