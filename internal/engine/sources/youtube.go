package sources

// YouTube Data API v3 client: keyword search restricted to a video category,
// followed by a batched details lookup joined back by video id.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	ytService           = "youtube"
	ytDefaultMaxResults = 10
	ytMaxResultsLimit   = 50 // Data API page maximum
)

// YouTube searches educational videos through the Data API.
type YouTube struct {
	svc        *youtube.Service
	categoryID string
	timeout    time.Duration
	retry      engine.RetryConfig
	cache      *engine.Cache
}

// NewYouTube creates a Data API client from cfg. cache may be nil.
func NewYouTube(ctx context.Context, cfg engine.Config, cache *engine.Cache) (*YouTube, error) {
	if cfg.YouTubeAPIKey == "" {
		return nil, errors.New("youtube: missing API key (set YOUTUBE_API_KEY)")
	}
	opts := []option.ClientOption{option.WithAPIKey(cfg.YouTubeAPIKey)}
	if cfg.YouTubeAPIBase != "" {
		opts = append(opts, option.WithEndpoint(cfg.YouTubeAPIBase))
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube: create service: %w", err)
	}

	categoryID := cfg.YouTubeCategoryID
	if categoryID == "" {
		categoryID = engine.EducationCategoryID
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &YouTube{
		svc:        svc,
		categoryID: categoryID,
		timeout:    timeout,
		retry:      cfg.Retry,
		cache:      cache,
	}, nil
}

// Search returns up to maxResults videos for query, in search-rank order.
// Errors unwrap to engine.ErrNetwork or engine.ErrUpstream.
func (y *YouTube) Search(ctx context.Context, query string, maxResults int) ([]engine.VideoRecord, error) {
	if maxResults <= 0 {
		maxResults = ytDefaultMaxResults
	}
	if maxResults > ytMaxResultsLimit {
		maxResults = ytMaxResultsLimit
	}

	cacheKey := engine.CacheKey("yt_search", y.categoryID, query, strconv.Itoa(maxResults))
	if cached, ok := engine.LoadJSON[[]engine.VideoRecord](ctx, y.cache, cacheKey); ok {
		return cached, nil
	}

	engine.IncrYouTubeSearch()
	found, err := engine.RetryDo(ctx, y.retry, func() (*youtube.SearchListResponse, error) {
		callCtx, cancel := context.WithTimeout(ctx, y.timeout)
		defer cancel()
		resp, err := y.svc.Search.List([]string{"snippet"}).
			Q(query).
			Type("video").
			VideoCategoryId(y.categoryID).
			MaxResults(int64(maxResults)).
			Context(callCtx).
			Do()
		return resp, classify(err)
	})
	if err != nil {
		engine.IncrYouTubeErrors()
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	items := uniqueItems(found.Items)
	if len(items) == 0 {
		return []engine.VideoRecord{}, nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.Id.VideoId
	}

	details, err := y.details(ctx, ids)
	if err != nil {
		engine.IncrYouTubeErrors()
		return nil, fmt.Errorf("youtube details: %w", err)
	}

	records := make([]engine.VideoRecord, len(items))
	for i, item := range items {
		records[i] = newRecord(item, details[item.Id.VideoId])
	}

	engine.StoreJSON(ctx, y.cache, cacheKey, records)
	return records, nil
}

// details fetches duration and statistics for ids, keyed by video id.
// The response order is not trusted.
func (y *YouTube) details(ctx context.Context, ids []string) (map[string]*youtube.Video, error) {
	engine.IncrYouTubeDetails()
	resp, err := engine.RetryDo(ctx, y.retry, func() (*youtube.VideoListResponse, error) {
		callCtx, cancel := context.WithTimeout(ctx, y.timeout)
		defer cancel()
		resp, err := y.svc.Videos.List([]string{"contentDetails", "statistics"}).
			Id(ids...).
			Context(callCtx).
			Do()
		return resp, classify(err)
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*youtube.Video, len(resp.Items))
	for _, v := range resp.Items {
		if v != nil && v.Id != "" {
			byID[v.Id] = v
		}
	}
	if len(byID) < len(ids) {
		slog.Debug("youtube: details missing for some videos",
			slog.Int("requested", len(ids)), slog.Int("returned", len(byID)))
	}
	return byID, nil
}

// uniqueItems drops results without a video id and repeated ids; first wins.
func uniqueItems(items []*youtube.SearchResult) []*youtube.SearchResult {
	seen := make(map[string]bool, len(items))
	out := make([]*youtube.SearchResult, 0, len(items))
	for _, item := range items {
		if item == nil || item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		if seen[item.Id.VideoId] {
			continue
		}
		seen[item.Id.VideoId] = true
		out = append(out, item)
	}
	return out
}

func newRecord(item *youtube.SearchResult, details *youtube.Video) engine.VideoRecord {
	rec := engine.VideoRecord{ID: item.Id.VideoId}
	if s := item.Snippet; s != nil {
		rec.Title = engine.CleanText(s.Title)
		rec.Description = engine.CleanText(s.Description)
		rec.ChannelTitle = engine.CleanText(s.ChannelTitle)
		rec.ThumbnailURL = thumbnailURL(s.Thumbnails)
		if t, err := time.Parse(time.RFC3339, s.PublishedAt); err == nil {
			rec.PublishedAt = t
		}
	}
	if details != nil {
		if details.ContentDetails != nil {
			rec.DurationISO8601 = details.ContentDetails.Duration
		}
		if details.Statistics != nil {
			rec.ViewCount = details.Statistics.ViewCount
		}
	}
	return rec
}

// thumbnailURL prefers the medium rendition, as the portal's cards do.
func thumbnailURL(th *youtube.ThumbnailDetails) string {
	if th == nil {
		return ""
	}
	for _, t := range []*youtube.Thumbnail{th.Medium, th.High, th.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}

// classify maps client errors onto the engine taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &engine.UpstreamError{Service: ytService, StatusCode: gErr.Code, Body: gErr.Message}
	}
	return &engine.NetworkError{Service: ytService, Err: err}
}
