package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals malformed input (unknown layer, bad filter value).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDataSourceUnavailable signals a failed fetch from the catalog data source.
	ErrDataSourceUnavailable = errors.New("data source unavailable")
	// ErrIndexBuild signals that the search index could not be built.
	ErrIndexBuild = errors.New("search index build failed")
	// ErrSuperseded signals that a newer search for the same session replaced this one.
	ErrSuperseded = errors.New("search request superseded")
	// ErrExpanderProviderError signals a semantic expander provider failure.
	ErrExpanderProviderError = errors.New("semantic expander provider error")
	// ErrExpanderQuotaExceeded signals that the expander token budget is spent.
	ErrExpanderQuotaExceeded = errors.New("semantic expander token quota exceeded")
)

// FetchError wraps ErrDataSourceUnavailable with the failed operation.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDataSourceUnavailable.Error(), e.Op, e.Err)
}

// Is reports ErrDataSourceUnavailable so callers can match with errors.Is.
func (e *FetchError) Is(target error) bool { return target == ErrDataSourceUnavailable }

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError creates a data source fetch error.
func NewFetchError(op string, err error) error {
	return &FetchError{Op: op, Err: err}
}
