package engine

import (
	"time"

	"github.com/dustin/go-humanize"
)

// EducationCategoryID is the YouTube "Education" video category.
const EducationCategoryID = "27"

// WatchURL returns the public watch page for a video id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// VideoRecord is the normalized metadata of one YouTube video.
// Built once from API responses and never mutated afterwards.
type VideoRecord struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	ChannelTitle    string    `json:"channel_title"`
	PublishedAt     time.Time `json:"published_at"`
	DurationISO8601 string    `json:"duration_iso8601"`
	ViewCount       uint64    `json:"view_count"`
}

// VerificationResult is the verifier's judgment of one VideoRecord.
type VerificationResult struct {
	IsEducational bool    `json:"isEducational"`
	Confidence    float64 `json:"confidence"`
	Subject       *string `json:"subject"`
	GradeLevel    *string `json:"gradeLevel"`
	Reason        string  `json:"reason"`
}

// VerifiedVideo is a VideoRecord annotated with its verification.
type VerifiedVideo struct {
	Video        VideoRecord        `json:"video"`
	Verification VerificationResult `json:"verification"`
}

// Playlist is a topic-grouped, ordered set of videos.
type Playlist struct {
	Topic        string                        `json:"topic"`
	Videos       []VideoRecord                 `json:"videos"`
	Verification map[string]VerificationResult `json:"verification,omitempty"`
}

// VideoCard is the display form of a VideoRecord.
type VideoCard struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	URL         string `json:"url"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Duration    string `json:"duration"`
	Views       string `json:"views"`
	PublishedAt string `json:"published_at,omitempty"`
	Subject     string `json:"subject,omitempty"`
	GradeLevel  string `json:"grade_level,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// NewVideoCard renders rec for display.
func NewVideoCard(rec VideoRecord) VideoCard {
	card := VideoCard{
		ID:        rec.ID,
		Title:     rec.Title,
		Channel:   rec.ChannelTitle,
		URL:       WatchURL(rec.ID),
		Thumbnail: rec.ThumbnailURL,
		Duration:  FormatDuration(rec.DurationISO8601),
		Views:     humanize.Comma(int64(rec.ViewCount)) + " views",
	}
	if !rec.PublishedAt.IsZero() {
		card.PublishedAt = humanize.Time(rec.PublishedAt)
	}
	return card
}

// NewVerifiedCard renders v with its verification annotation.
func NewVerifiedCard(v VerifiedVideo) VideoCard {
	card := NewVideoCard(v.Video)
	if v.Verification.Subject != nil {
		card.Subject = *v.Verification.Subject
	}
	if v.Verification.GradeLevel != nil {
		card.GradeLevel = *v.Verification.GradeLevel
	}
	card.Reason = v.Verification.Reason
	return card
}

// --- Tool input/output types ---

// VideoSearchInput is the input for the video_search and educational_video_search tools.
type VideoSearchInput struct {
	Query      string `json:"query" jsonschema:"Search query for educational videos"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Max results (default: 10, max: 50)"`
}

// VideoSearchOutput is the structured output for video_search.
type VideoSearchOutput struct {
	Query  string      `json:"query"`
	Videos []VideoCard `json:"videos"`
}

// EducationalSearchOutput is the structured output for educational_video_search.
type EducationalSearchOutput struct {
	Query    string      `json:"query"`
	Checked  int         `json:"checked"`
	Videos   []VideoCard `json:"videos"`
	Rejected int         `json:"rejected"`
}

// PlaylistInput is the input for the topic_playlists tool.
type PlaylistInput struct {
	Topics []string `json:"topics,omitempty" jsonschema:"Topics to build playlists for (default: the configured student topics)"`
	Grade  int      `json:"grade,omitempty" jsonschema:"Student grade level (default: the configured student grade)"`
	Verify bool     `json:"verify,omitempty" jsonschema:"Keep only videos the content verifier judges educational (slow: ~1s per video)"`
}

// PlaylistView is one rendered playlist.
type PlaylistView struct {
	Topic  string      `json:"topic"`
	Query  string      `json:"query"`
	Videos []VideoCard `json:"videos"`
}

// PlaylistOutput is the structured output for topic_playlists.
type PlaylistOutput struct {
	Grade     int            `json:"grade"`
	Playlists []PlaylistView `json:"playlists"`
}
