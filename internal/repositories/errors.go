package repositories

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write would violate a uniqueness
	// constraint.
	ErrConflict = errors.New("record conflict")
	// ErrUnavailable indicates the storage layer did not answer within the
	// caller's deadline. It is never reported as a not-found.
	ErrUnavailable = errors.New("storage unavailable")
)

// wrapStorageErr annotates a storage failure, surfacing deadline expiry as
// ErrUnavailable so callers never mistake a timeout for a missing record.
func wrapStorageErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
