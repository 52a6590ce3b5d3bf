package forums

import (
	"errors"
	"fmt"
)

type ServerError struct {
	StatusCode int
}

func (se ServerError) Error() string {
	return fmt.Sprintf("error from forums: %d", se.StatusCode)
}

var (
	// ErrTimeout .
	ErrTimeout = errors.New("timeout")
	// ErrRateLimited .
	ErrRateLimited = errors.New("rate limited")
	// ErrUnauthorized .
	ErrUnauthorized = errors.New("invalid api token")
	// ErrMalformedResponse .
	ErrMalformedResponse = errors.New("malformed response")
)
