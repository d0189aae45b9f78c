package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// RetryConfig controls retry behavior.
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
	Jitter      float64 // fraction of the wait added at random, 0..1
}

// DefaultRetryConfig is suitable for most HTTP calls.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:  2,
	InitialWait: 300 * time.Millisecond,
	MaxWait:     5 * time.Second,
	Multiplier:  2.0,
	Jitter:      0.2,
}

// RetryDo retries fn up to MaxRetries times with exponential backoff.
// Retries only on retryable errors; returns immediately on non-retryable or context cancellation.
// A cancelled or expired ctx is reported as a *NetworkError.
func RetryDo[T any](ctx context.Context, rc RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= rc.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return zero, interrupted(ctx, lastErr)
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, interrupted(ctx, err)
		}
		if !IsRetryable(err) {
			return zero, err
		}

		if attempt < rc.MaxRetries {
			wait := rc.backoff(attempt)
			slog.Debug("retrying", slog.Int("attempt", attempt+1), slog.Duration("wait", wait), slog.Any("error", err))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return zero, interrupted(ctx, lastErr)
			}
		}
	}
	return zero, lastErr
}

func (rc RetryConfig) backoff(attempt int) time.Duration {
	wait := time.Duration(float64(rc.InitialWait) * math.Pow(rc.Multiplier, float64(attempt)))
	if rc.MaxWait > 0 && wait > rc.MaxWait {
		wait = rc.MaxWait
	}
	if rc.Jitter > 0 && wait > 0 {
		wait += time.Duration(rand.Int64N(int64(float64(wait)*rc.Jitter) + 1))
	}
	return wait
}

// interrupted maps the caller's cancellation or deadline to a *NetworkError,
// naming the service of the last failed attempt when there was one.
func interrupted(ctx context.Context, last error) error {
	service := "request"
	var netErr *NetworkError
	var upErr *UpstreamError
	switch {
	case errors.As(last, &netErr):
		service = netErr.Service
	case errors.As(last, &upErr):
		service = upErr.Service
	}
	return &NetworkError{Service: service, Err: ctx.Err()}
}

// RetryHTTP executes an HTTP request function with retry logic.
// Transport failures become *NetworkError, retryable statuses become *UpstreamError;
// any other response is returned to the caller as is.
func RetryHTTP(ctx context.Context, rc RetryConfig, service string, fn func() (*http.Response, error)) (*http.Response, error) {
	return RetryDo(ctx, rc, func() (*http.Response, error) {
		resp, err := fn()
		if err != nil {
			return nil, &NetworkError{Service: service, Err: err}
		}
		if isRetryableStatus(resp.StatusCode) {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return nil, &UpstreamError{Service: service, StatusCode: resp.StatusCode, Body: string(body)}
		}
		return resp, nil
	})
}

// IsRetryable returns true for transient errors worth retrying:
// network failures other than caller cancellation, and throttling or
// server-side upstream statuses.
func IsRetryable(err error) bool {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return isRetryableStatus(upErr.StatusCode)
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrNetwork)
}

// isRetryableStatus returns true for HTTP status codes worth retrying.
func isRetryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
