package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = RetryConfig{MaxRetries: 3, InitialWait: time.Millisecond, MaxWait: 10 * time.Millisecond, Multiplier: 2}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"upstream 429", &UpstreamError{StatusCode: 429}, true},
		{"upstream 503", &UpstreamError{StatusCode: 503}, true},
		{"upstream 403", &UpstreamError{StatusCode: 403}, false},
		{"upstream 400", &UpstreamError{StatusCode: 400}, false},
		{"network", &NetworkError{Service: "yt", Err: errors.New("refused")}, true},
		{"network timeout", &NetworkError{Service: "yt", Err: context.DeadlineExceeded}, true},
		{"network canceled", &NetworkError{Service: "yt", Err: context.Canceled}, false},
		{"parse", NewParseError("llm", errors.New("bad")), false},
		{"regular error", errors.New("something"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestRetryDoSuccess(t *testing.T) {
	calls := 0
	got, err := RetryDo(context.Background(), fastRetry, func() (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
}

func TestRetryDoRetryThenSuccess(t *testing.T) {
	calls := 0
	got, err := RetryDo(context.Background(), fastRetry, func() (string, error) {
		calls++
		if calls < 3 {
			return "", &UpstreamError{StatusCode: 503}
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestRetryDoExhausted(t *testing.T) {
	rc := fastRetry
	rc.MaxRetries = 2
	calls := 0
	_, err := RetryDo(context.Background(), rc, func() (string, error) {
		calls++
		return "", &NetworkError{Service: "yt", Err: errors.New("reset")}
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, 3, calls) // initial + 2 retries
}

func TestRetryDoNonRetryable(t *testing.T) {
	calls := 0
	_, err := RetryDo(context.Background(), fastRetry, func() (string, error) {
		calls++
		return "", &UpstreamError{StatusCode: 403}
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, 1, calls)
}

func TestRetryDoContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RetryDo(ctx, fastRetry, func() (string, error) {
		return "", &UpstreamError{StatusCode: 503}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestRetryDoDeadlineDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	slow := RetryConfig{MaxRetries: 3, InitialWait: time.Second, MaxWait: time.Second, Multiplier: 1}

	_, err := RetryDo(ctx, slow, func() (string, error) {
		return "", &UpstreamError{Service: "youtube", StatusCode: 503}
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "youtube", netErr.Service)
}

func TestBackoffJitterBounds(t *testing.T) {
	rc := RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: time.Second, Multiplier: 2, Jitter: 0.5}
	for i := 0; i < 50; i++ {
		w := rc.backoff(1)
		assert.GreaterOrEqual(t, w, 200*time.Millisecond)
		assert.LessOrEqual(t, w, 300*time.Millisecond)
	}
}

func TestRetryHTTPMapsStatuses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := RetryHTTP(context.Background(), fastRetry, "test", func() (*http.Response, error) {
		return http.Get(srv.URL)
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRetryHTTPNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rc := fastRetry
	rc.MaxRetries = 1
	_, err := RetryHTTP(context.Background(), rc, "test", func() (*http.Response, error) {
		return http.Get(url)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
}
