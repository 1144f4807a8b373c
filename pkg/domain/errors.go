package domain

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies feed check failures
type ErrorCategory string

// error taxonomy of a feed check
const (
	ErrInvalidURL        ErrorCategory = "invalid_url"
	ErrNetwork           ErrorCategory = "network_error"
	ErrHTTP              ErrorCategory = "http_error"
	ErrEmptyResponse     ErrorCategory = "empty_response"
	ErrUnknownFeedFormat ErrorCategory = "unknown_feed_format"
	ErrParse             ErrorCategory = "parse_error"
	ErrRegistry          ErrorCategory = "registry_unavailable"
	ErrUnknown           ErrorCategory = "unknown"
)

// Retryable reports whether a failure of this category may succeed on the next pass
func (c ErrorCategory) Retryable() bool {
	return c != ErrInvalidURL && c != ErrRegistry
}

var (
	// ErrFeedNotFound is returned when a feed id is not in the registry
	ErrFeedNotFound = errors.New("feed not found")
	// ErrFeedExists is returned when registering a feed url already tracked
	ErrFeedExists = errors.New("feed already exists")
	// ErrRegistryUnavailable is returned when the registry can't be read, aborts a scan pass
	ErrRegistryUnavailable = errors.New("registry unavailable")
)

// FeedError is a categorized failure of a single feed check
type FeedError struct {
	Category   ErrorCategory
	StatusCode int // set for ErrHTTP only
	Err        error
}

// NewFeedError makes FeedError for the given category
func NewFeedError(category ErrorCategory, err error) *FeedError {
	return &FeedError{Category: category, Err: err}
}

func (e *FeedError) Error() string {
	switch {
	case e.Category == ErrHTTP && e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Category, e.StatusCode)
	case e.Err == nil:
		return string(e.Category)
	default:
		return fmt.Sprintf("%s: %v", e.Category, e.Err)
	}
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// CategoryOf returns the failure category of err, ErrUnknown if err is not categorized
func CategoryOf(err error) ErrorCategory {
	if err == nil {
		return ""
	}
	var fe *FeedError
	if errors.As(err, &fe) {
		return fe.Category
	}
	if errors.Is(err, ErrRegistryUnavailable) {
		return ErrRegistry
	}
	return ErrUnknown
}

// StatusCodeOf returns the HTTP status code carried by err, 0 if none
func StatusCodeOf(err error) int {
	var fe *FeedError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}
