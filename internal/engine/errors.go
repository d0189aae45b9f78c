package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork marks transport-level failures, timeouts included.
	ErrNetwork = errors.New("network error")
	// ErrUpstream marks non-success responses from a third-party API.
	ErrUpstream = errors.New("upstream error")
	// ErrParse marks malformed payloads from a third-party API.
	ErrParse = errors.New("parse error")
)

// NetworkError wraps a transport failure talking to Service.
type NetworkError struct {
	Service string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network: %v", e.Service, e.Err)
}

// Unwrap exposes both the sentinel and the cause, so errors.Is works for
// ErrNetwork as well as context.DeadlineExceeded.
func (e *NetworkError) Unwrap() []error { return []error{ErrNetwork, e.Err} }

// UpstreamError is a non-success HTTP status from Service.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: upstream status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: upstream status %d: %s", e.Service, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// NewParseError wraps err as an ErrParse for service.
func NewParseError(service string, err error) error {
	return fmt.Errorf("%s: %w: %w", service, ErrParse, err)
}
