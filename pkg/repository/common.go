package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
)

// errStopRetry is matched by criticalError to stop the repeater
var errStopRetry = errors.New("stop retry")

// criticalError wraps an error to signal repeater to stop retrying
type criticalError struct {
	err error
}

func (e *criticalError) Error() string {
	return e.err.Error()
}

func (e *criticalError) Unwrap() error {
	return e.err
}

// Is makes criticalError match errStopRetry
func (e *criticalError) Is(target error) bool {
	return target == errStopRetry //nolint:errorlint // identity check of the sentinel
}

// isLockError checks if an error is a SQLite lock/busy error
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked")
}

// withRetry runs fn with backoff on lock errors, any other error is returned as is
func withRetry(ctx context.Context, fn func() error) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	err := retrier.Do(ctx, func() error {
		err := fn()
		if err == nil || isLockError(err) {
			return err
		}
		return &criticalError{err: err}
	}, errStopRetry)

	var ce *criticalError
	if errors.As(err, &ce) {
		return ce.err
	}
	return err
}
