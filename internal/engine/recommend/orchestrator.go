// Package recommend drives the recommendation feed: a debounced search
// session and topic playlists built for one student profile.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"golang.org/x/sync/errgroup"
)

// User-facing messages.
const (
	MsgSearchFailed    = "Failed to fetch search results"
	MsgPlaylistsFailed = "Failed to generate playlists"
)

// Searcher finds videos for a query.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]engine.VideoRecord, error)
}

// BatchVerifier keeps only videos judged educational.
type BatchVerifier interface {
	BatchVerify(ctx context.Context, recs []engine.VideoRecord) []engine.VerifiedVideo
}

// Profile describes the student the playlists are built for.
type Profile struct {
	StudentID string
	Grade     int
	Topics    []string
}

// ProfileFromConfig reads the student profile from cfg.
func ProfileFromConfig(cfg engine.Config) Profile {
	return Profile{StudentID: cfg.StudentID, Grade: cfg.StudentGrade, Topics: cfg.StudentTopics}
}

// Config holds orchestrator settings and upward callbacks.
type Config struct {
	Profile            Profile
	Debounce           time.Duration
	SearchMaxResults   int
	PlaylistMaxResults int

	// Verifier, when set, filters playlist videos.
	Verifier BatchVerifier
	// OnVideoSelect receives the id of every selected video.
	OnVideoSelect func(id string)
	// OnChange is called after every visible state change, outside any lock.
	OnChange func()
}

// SearchState is the search path state.
type SearchState int

const (
	SearchIdle SearchState = iota
	Searching
	SearchResults
	SearchFailed
)

func (s SearchState) String() string {
	switch s {
	case Searching:
		return "searching"
	case SearchResults:
		return "results"
	case SearchFailed:
		return "failed"
	}
	return "idle"
}

// PlaylistState is the playlist path state.
type PlaylistState int

const (
	PlaylistsIdle PlaylistState = iota
	BuildingPlaylists
	PlaylistsReady
	PlaylistsFailed
)

func (s PlaylistState) String() string {
	switch s {
	case BuildingPlaylists:
		return "building"
	case PlaylistsReady:
		return "ready"
	case PlaylistsFailed:
		return "failed"
	}
	return "idle"
}

// SearchSession is a snapshot of the search path.
type SearchSession struct {
	Query   string
	State   SearchState
	Loading bool
	Err     error
	Message string // user-visible error text
	Results []engine.VideoRecord
	Token   uint64 // request that produced Results
}

// Orchestrator owns one search session and one playlist set.
type Orchestrator struct {
	search Searcher
	cfg    Config

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	seq       uint64 // monotonic request token
	plSeq     uint64 // monotonic playlist build token
	timer     *time.Timer
	session   SearchSession
	plState   PlaylistState
	playlists []engine.Playlist
	plErr     error
	closed    bool
}

// New creates an orchestrator. Zero settings fall back to 500ms debounce,
// 10 search results and 5 videos per playlist.
func New(s Searcher, cfg Config) *Orchestrator {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if cfg.SearchMaxResults <= 0 {
		cfg.SearchMaxResults = 10
	}
	if cfg.PlaylistMaxResults <= 0 {
		cfg.PlaylistMaxResults = 5
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{search: s, cfg: cfg, ctx: ctx, cancel: cancel}
}

// ContextualQuery builds the playlist query for a topic.
func ContextualQuery(topic string, grade int) string {
	return fmt.Sprintf("%s grade %d education tutorial", topic, grade)
}

// SetQuery records new query text. A blank query clears results at once;
// anything else schedules a search after the debounce quiet period,
// superseding any search still waiting.
func (o *Orchestrator) SetQuery(q string) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.seq++
	tok := o.seq
	if o.timer != nil && o.timer.Stop() {
		engine.IncrSearchesDebounced()
	}
	o.timer = nil

	if strings.TrimSpace(q) == "" {
		o.session = SearchSession{Query: q, State: SearchIdle, Token: tok}
		o.mu.Unlock()
		o.notify()
		return
	}

	o.session.Query = q
	o.timer = time.AfterFunc(o.cfg.Debounce, func() { o.runSearch(tok, q) })
	o.mu.Unlock()
}

func (o *Orchestrator) runSearch(tok uint64, q string) {
	o.mu.Lock()
	if o.closed || tok != o.seq {
		o.mu.Unlock()
		return
	}
	o.session.State = Searching
	o.session.Loading = true
	o.mu.Unlock()
	o.notify()

	results, err := o.search.Search(o.ctx, q, o.cfg.SearchMaxResults)

	o.mu.Lock()
	if o.closed || tok != o.seq {
		o.mu.Unlock()
		engine.IncrStaleResults()
		slog.Debug("recommend: stale search result dropped", slog.String("query", q))
		return
	}
	o.session.Loading = false
	o.session.Token = tok
	if err != nil {
		slog.Warn("recommend: search failed", slog.String("query", q), slog.Any("error", err))
		o.session.State = SearchFailed
		o.session.Err = err
		o.session.Message = MsgSearchFailed
		o.session.Results = nil
	} else {
		o.session.State = SearchResults
		o.session.Err = nil
		o.session.Message = ""
		o.session.Results = results
	}
	o.mu.Unlock()
	o.notify()
}

// Session returns a copy of the current search session.
func (o *Orchestrator) Session() SearchSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.session
	s.Results = append([]engine.VideoRecord(nil), o.session.Results...)
	return s
}

// BuildPlaylists queries every profile topic concurrently and publishes the
// whole set at once. Any failing topic fails the build and no playlist is
// published. Only the most recently started build publishes; Close cancels
// a build in flight and suppresses its result.
func (o *Orchestrator) BuildPlaylists(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return context.Canceled
	}
	o.plSeq++
	tok := o.plSeq
	o.plState = BuildingPlaylists
	o.plErr = nil
	o.mu.Unlock()
	engine.IncrPlaylistBuilds()
	o.notify()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(o.ctx, cancel)
	defer stop()

	topics := o.cfg.Profile.Topics
	lists := make([]engine.Playlist, len(topics))

	g, gctx := errgroup.WithContext(ctx)
	for i, topic := range topics {
		g.Go(func() error {
			query := ContextualQuery(topic, o.cfg.Profile.Grade)
			videos, err := o.search.Search(gctx, query, o.cfg.PlaylistMaxResults)
			if err != nil {
				return fmt.Errorf("playlist %q: %w", topic, err)
			}
			lists[i] = o.newPlaylist(gctx, topic, videos)
			return nil
		})
	}
	err := g.Wait()

	o.mu.Lock()
	if o.closed || tok != o.plSeq {
		o.mu.Unlock()
		engine.IncrStaleResults()
		slog.Debug("recommend: superseded playlist build dropped")
		return err
	}
	if err != nil {
		engine.IncrPlaylistFailures()
		slog.Warn("recommend: playlists failed", slog.Any("error", err))
		o.plState = PlaylistsFailed
		o.plErr = err
		o.playlists = nil
	} else {
		o.plState = PlaylistsReady
		o.playlists = lists
	}
	o.mu.Unlock()
	o.notify()
	return err
}

func (o *Orchestrator) newPlaylist(ctx context.Context, topic string, videos []engine.VideoRecord) engine.Playlist {
	if o.cfg.Verifier == nil {
		return engine.Playlist{Topic: topic, Videos: videos}
	}
	verified := o.cfg.Verifier.BatchVerify(ctx, videos)
	pl := engine.Playlist{
		Topic:        topic,
		Videos:       make([]engine.VideoRecord, 0, len(verified)),
		Verification: make(map[string]engine.VerificationResult, len(verified)),
	}
	for _, v := range verified {
		pl.Videos = append(pl.Videos, v.Video)
		pl.Verification[v.Video.ID] = v.Verification
	}
	return pl
}

// Playlists returns the playlist state, the published set and the last error.
func (o *Orchestrator) Playlists() (PlaylistState, []engine.Playlist, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.plState, append([]engine.Playlist(nil), o.playlists...), o.plErr
}

// PlaylistMessage is the user-visible text for a failed build, or "".
func (o *Orchestrator) PlaylistMessage() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.plState == PlaylistsFailed {
		return MsgPlaylistsFailed
	}
	return ""
}

// Select reports a chosen video upward. Nothing is recorded here.
func (o *Orchestrator) Select(id string) {
	if id == "" || o.cfg.OnVideoSelect == nil {
		return
	}
	o.cfg.OnVideoSelect(id)
}

// Close stops pending searches, cancels in-flight work and drops its results.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.seq++
	o.plSeq++
	if o.timer != nil {
		o.timer.Stop()
	}
	o.mu.Unlock()
	o.cancel()
}

func (o *Orchestrator) notify() {
	if o.cfg.OnChange != nil {
		o.cfg.OnChange()
	}
}
