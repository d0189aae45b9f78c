package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVideo struct {
	id       string
	title    string
	duration string
	views    uint64
}

// fakeDataAPI serves /search and /videos like the Data API does.
// detailsFilter lets a test reorder or drop detail items.
type fakeDataAPI struct {
	videos        []fakeVideo
	detailsFilter func(ids []string) []string
	searchStatus  []int // status per search call; 0 or exhausted = 200
	searchCalls   atomic.Int32
	detailsCalls  atomic.Int32
	lastSearch    atomic.Value // encoded query string
	lastAPIKey    atomic.Value
}

func (f *fakeDataAPI) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		n := int(f.searchCalls.Add(1))
		f.lastSearch.Store(r.URL.Query().Encode())
		key := r.URL.Query().Get("key")
		if key == "" {
			key = r.Header.Get("X-Goog-Api-Key")
		}
		f.lastAPIKey.Store(key)
		if n <= len(f.searchStatus) && f.searchStatus[n-1] != 0 && f.searchStatus[n-1] != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.searchStatus[n-1])
			fmt.Fprintf(w, `{"error":{"code":%d,"message":"status %d"}}`, f.searchStatus[n-1], f.searchStatus[n-1])
			return
		}
		items := make([]map[string]any, 0, len(f.videos))
		for _, v := range f.videos {
			items = append(items, map[string]any{
				"id": map[string]any{"kind": "youtube#video", "videoId": v.id},
				"snippet": map[string]any{
					"title":        v.title,
					"description":  "About " + v.title,
					"channelTitle": "Khan Academy",
					"publishedAt":  "2021-03-04T05:06:07Z",
					"thumbnails": map[string]any{
						"medium": map[string]any{"url": "https://i.ytimg.com/vi/" + v.id + "/mqdefault.jpg"},
					},
				},
			})
		}
		writeJSON(w, map[string]any{"items": items})
	})
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		f.detailsCalls.Add(1)
		ids := strings.Split(r.URL.Query().Get("id"), ",")
		if f.detailsFilter != nil {
			ids = f.detailsFilter(ids)
		}
		byID := make(map[string]fakeVideo, len(f.videos))
		for _, v := range f.videos {
			byID[v.id] = v
		}
		items := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			v := byID[id]
			items = append(items, map[string]any{
				"id":             id,
				"contentDetails": map[string]any{"duration": v.duration},
				"statistics":     map[string]any{"viewCount": fmt.Sprint(v.views)},
			})
		}
		writeJSON(w, map[string]any{"items": items})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestYouTube(t *testing.T, api *fakeDataAPI, cache *engine.Cache) *YouTube {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	cfg := engine.Config{
		YouTubeAPIKey:  "test-key",
		YouTubeAPIBase: srv.URL + "/",
		CallTimeout:    2 * time.Second,
		Retry:          engine.RetryConfig{MaxRetries: 2, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2},
	}
	yt, err := NewYouTube(context.Background(), cfg, cache)
	require.NoError(t, err)
	return yt
}

func sampleVideos() []fakeVideo {
	return []fakeVideo{
		{id: "vid00000001", title: "Intro to Algebra", duration: "PT5M9S", views: 100},
		{id: "vid00000002", title: "Newton&#39;s Laws", duration: "PT1H2M3S", views: 2000},
		{id: "vid00000003", title: "Balancing Equations", duration: "PT12M", views: 30},
	}
}

func TestSearchJoinsByID(t *testing.T) {
	api := &fakeDataAPI{
		videos: sampleVideos(),
		// Reverse order and drop the middle video.
		detailsFilter: func(ids []string) []string {
			return []string{ids[2], ids[0]}
		},
	}
	yt := newTestYouTube(t, api, nil)

	got, err := yt.Search(context.Background(), "algebra", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "vid00000001", got[0].ID)
	assert.Equal(t, "PT5M9S", got[0].DurationISO8601)
	assert.Equal(t, uint64(100), got[0].ViewCount)

	assert.Equal(t, "vid00000002", got[1].ID)
	assert.Equal(t, "Newton's Laws", got[1].Title)
	assert.Empty(t, got[1].DurationISO8601, "missing details must not borrow another video's")
	assert.Zero(t, got[1].ViewCount)

	assert.Equal(t, "vid00000003", got[2].ID)
	assert.Equal(t, "PT12M", got[2].DurationISO8601)
	assert.Equal(t, uint64(30), got[2].ViewCount)

	assert.Equal(t, "Khan Academy", got[0].ChannelTitle)
	assert.Equal(t, "https://i.ytimg.com/vi/vid00000001/mqdefault.jpg", got[0].ThumbnailURL)
	assert.Equal(t, time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC), got[0].PublishedAt.UTC())
}

func TestSearchRequestParams(t *testing.T) {
	api := &fakeDataAPI{videos: sampleVideos()}
	yt := newTestYouTube(t, api, nil)

	_, err := yt.Search(context.Background(), "fractions grade 6", 0)
	require.NoError(t, err)

	q := api.lastSearch.Load().(string)
	assert.Contains(t, q, "videoCategoryId=27")
	assert.Contains(t, q, "type=video")
	assert.Contains(t, q, "maxResults=10")
	assert.Contains(t, q, "q=fractions+grade+6")
	assert.Equal(t, "test-key", api.lastAPIKey.Load())
}

func TestSearchDeduplicatesIDs(t *testing.T) {
	videos := sampleVideos()
	videos = append(videos, videos[0])
	api := &fakeDataAPI{videos: videos}
	yt := newTestYouTube(t, api, nil)

	got, err := yt.Search(context.Background(), "algebra", 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSearchEmptySkipsDetails(t *testing.T) {
	api := &fakeDataAPI{}
	yt := newTestYouTube(t, api, nil)

	got, err := yt.Search(context.Background(), "nothing", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(0), api.detailsCalls.Load())
}

func TestSearchUpstreamErrorNotRetried(t *testing.T) {
	api := &fakeDataAPI{videos: sampleVideos(), searchStatus: []int{http.StatusForbidden}}
	yt := newTestYouTube(t, api, nil)

	_, err := yt.Search(context.Background(), "algebra", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrUpstream)
	var ue *engine.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusForbidden, ue.StatusCode)
	assert.Equal(t, int32(1), api.searchCalls.Load())
}

func TestSearchRetriesServiceUnavailable(t *testing.T) {
	api := &fakeDataAPI{videos: sampleVideos(), searchStatus: []int{http.StatusServiceUnavailable}}
	yt := newTestYouTube(t, api, nil)

	got, err := yt.Search(context.Background(), "algebra", 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, int32(2), api.searchCalls.Load())
}

func TestSearchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/"
	srv.Close()

	yt, err := NewYouTube(context.Background(), engine.Config{
		YouTubeAPIKey:  "k",
		YouTubeAPIBase: base,
		CallTimeout:    time.Second,
	}, nil)
	require.NoError(t, err)

	_, err = yt.Search(context.Background(), "algebra", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrNetwork)
}

func TestSearchUsesCache(t *testing.T) {
	cache := engine.NewCache(context.Background(), "", time.Minute, 100, time.Minute)
	t.Cleanup(cache.Close)
	api := &fakeDataAPI{videos: sampleVideos()}
	yt := newTestYouTube(t, api, cache)

	first, err := yt.Search(context.Background(), "algebra", 10)
	require.NoError(t, err)
	second, err := yt.Search(context.Background(), "algebra", 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), api.searchCalls.Load())
}

func TestNewYouTubeRequiresKey(t *testing.T) {
	_, err := NewYouTube(context.Background(), engine.Config{}, nil)
	assert.Error(t, err)
}
