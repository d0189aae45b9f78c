// Package toolutil provides input normalisation shared by the MCP tools and
// the CLI commands.
package toolutil

import (
	"strings"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/anatolykoptev/go_clip/internal/engine/recommend"
)

// MaxResultsLimit is the largest page the YouTube Data API returns.
const MaxResultsLimit = 50

// ClampResults applies def to a non-positive n and caps it at MaxResultsLimit.
func ClampResults(n, def int) int {
	if n <= 0 {
		n = def
	}
	if n <= 0 {
		n = 10
	}
	return min(n, MaxResultsLimit)
}

// NormTopics trims, lowercases and dedupes topics, turning spaces into
// underscores. An empty result falls back to defaults.
func NormTopics(topics, defaults []string) []string {
	seen := make(map[string]bool, len(topics))
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.Join(strings.Fields(strings.ToLower(t)), "_")
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 && len(defaults) > 0 {
		return NormTopics(defaults, nil)
	}
	return out
}

// NormGrade returns grade, or def when grade is outside 1..12.
func NormGrade(grade, def int) int {
	if grade < 1 || grade > 12 {
		return def
	}
	return grade
}

// Cards renders records for display.
func Cards(recs []engine.VideoRecord) []engine.VideoCard {
	cards := make([]engine.VideoCard, len(recs))
	for i, r := range recs {
		cards[i] = engine.NewVideoCard(r)
	}
	return cards
}

// VerifiedCards renders verified videos for display.
func VerifiedCards(vs []engine.VerifiedVideo) []engine.VideoCard {
	cards := make([]engine.VideoCard, len(vs))
	for i, v := range vs {
		cards[i] = engine.NewVerifiedCard(v)
	}
	return cards
}

// PlaylistViews renders playlists, attaching verification where present.
func PlaylistViews(lists []engine.Playlist, grade int) []engine.PlaylistView {
	views := make([]engine.PlaylistView, len(lists))
	for i, pl := range lists {
		cards := make([]engine.VideoCard, len(pl.Videos))
		for j, rec := range pl.Videos {
			if res, ok := pl.Verification[rec.ID]; ok {
				cards[j] = engine.NewVerifiedCard(engine.VerifiedVideo{Video: rec, Verification: res})
			} else {
				cards[j] = engine.NewVideoCard(rec)
			}
		}
		views[i] = engine.PlaylistView{
			Topic:  pl.Topic,
			Query:  recommend.ContextualQuery(pl.Topic, grade),
			Videos: cards,
		}
	}
	return views
}
