package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	YouTubeSearchRequests  atomic.Int64
	YouTubeDetailsRequests atomic.Int64
	YouTubeErrors          atomic.Int64
	VerifyCalls            atomic.Int64
	VerifyErrors           atomic.Int64
	VerifyRejected         atomic.Int64
	SearchesDebounced      atomic.Int64
	StaleResultsDropped    atomic.Int64
	PlaylistBuilds         atomic.Int64
	PlaylistFailures       atomic.Int64
	CacheHits              atomic.Int64
	CacheMisses            atomic.Int64
}

var metricKeys = []string{
	"youtube_search_requests", "youtube_details_requests", "youtube_errors",
	"verify_calls", "verify_errors", "verify_rejected",
	"searches_debounced", "stale_results_dropped",
	"playlist_builds", "playlist_failures",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"youtube_search_requests":  metrics.YouTubeSearchRequests.Load(),
		"youtube_details_requests": metrics.YouTubeDetailsRequests.Load(),
		"youtube_errors":           metrics.YouTubeErrors.Load(),
		"verify_calls":             metrics.VerifyCalls.Load(),
		"verify_errors":            metrics.VerifyErrors.Load(),
		"verify_rejected":          metrics.VerifyRejected.Load(),
		"searches_debounced":       metrics.SearchesDebounced.Load(),
		"stale_results_dropped":    metrics.StaleResultsDropped.Load(),
		"playlist_builds":          metrics.PlaylistBuilds.Load(),
		"playlist_failures":        metrics.PlaylistFailures.Load(),
		"cache_hits":               metrics.CacheHits.Load(),
		"cache_misses":             metrics.CacheMisses.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrYouTubeSearch()      { metrics.YouTubeSearchRequests.Add(1) }
func IncrYouTubeDetails()     { metrics.YouTubeDetailsRequests.Add(1) }
func IncrYouTubeErrors()      { metrics.YouTubeErrors.Add(1) }
func IncrVerifyCalls()        { metrics.VerifyCalls.Add(1) }
func IncrVerifyErrors()       { metrics.VerifyErrors.Add(1) }
func IncrVerifyRejected()     { metrics.VerifyRejected.Add(1) }
func IncrSearchesDebounced()  { metrics.SearchesDebounced.Add(1) }
func IncrStaleResults()       { metrics.StaleResultsDropped.Add(1) }
func IncrPlaylistBuilds()     { metrics.PlaylistBuilds.Add(1) }
func IncrPlaylistFailures()   { metrics.PlaylistFailures.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
