package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Category is the transport-level class of a provider failure. Providers
// derive it from the SDK's structured error, never from message text.
type Category string

const (
	CategoryAuth       Category = "auth"
	CategoryNetwork    Category = "network"
	CategoryRateLimit  Category = "rate_limit"
	CategoryBadRequest Category = "bad_request"
	CategoryServer     Category = "server"
	CategoryEmpty      Category = "empty_response"
	CategoryUnknown    Category = "unknown"
)

func (c Category) Kind() ErrorKind {
	switch c {
	case CategoryAuth:
		return KindCredential
	case CategoryNetwork:
		return KindNetwork
	default:
		return KindProvider
	}
}

// TransportError is what providers return for every failed call.
type TransportError struct {
	Provider   string
	Category   Category
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s (HTTP %d): %v", e.Provider, e.Category, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Category, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// CategoryForStatus maps an HTTP status code onto a failure category.
func CategoryForStatus(code int) Category {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return CategoryAuth
	case code == http.StatusTooManyRequests:
		return CategoryRateLimit
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		return CategoryNetwork
	case code >= 500:
		return CategoryServer
	case code >= 400:
		return CategoryBadRequest
	default:
		return CategoryUnknown
	}
}

// transportFailure wraps errors that carry no HTTP status: connection
// failures, timeouts and cancellations.
func transportFailure(provider string, err error) *TransportError {
	category := CategoryUnknown
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		category = CategoryNetwork
	case errors.As(err, &ne):
		category = CategoryNetwork
	}
	return &TransportError{Provider: provider, Category: category, Err: err}
}
