package model

import (
	"errors"
	"fmt"
)

// ErrProvider matches any *ProviderError via errors.Is.
var ErrProvider = errors.New("rate provider failure")

// ProviderError reports that an upstream was unreachable, answered with a
// non-success status, or returned a payload that could not be used.
type ProviderError struct {
	Feed       Feed
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider: status %d: %v", e.Feed, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s provider: %v", e.Feed, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

func NewProviderError(feed Feed, statusCode int, err error) *ProviderError {
	return &ProviderError{Feed: feed, StatusCode: statusCode, Err: err}
}
