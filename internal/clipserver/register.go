// Package clipserver exposes video search, verified search and topic
// playlists as MCP tools.
package clipserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/anatolykoptev/go_clip/internal/engine/recommend"
	"github.com/anatolykoptev/go_clip/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// slowToolThreshold marks tool calls worth a warning in the log.
const slowToolThreshold = 20 * time.Second

// Deps are the components the tools call into.
type Deps struct {
	Search recommend.Searcher
	// Verifier is nil when no verifier key is configured.
	Verifier recommend.BatchVerifier
	Config   engine.Config
}

var errNoVerifier = errors.New("content verification is not configured (set VERIFIER_API_KEY)")

// RegisterTools registers video_search, educational_video_search and
// topic_playlists on server.
func RegisterTools(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_search",
		Description: "Search YouTube's Education category. Returns title, channel, duration, views and watch URL for each video.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, videoSearchHandler(d))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "educational_video_search",
		Description: "Search YouTube's Education category and keep only videos a language model judges educational. Each kept video carries its subject, grade level and the reason for the judgment. Slow: about one second per candidate.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, educationalSearchHandler(d))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "topic_playlists",
		Description: "Build one playlist per topic for a student's grade level. Topics and grade default to the configured student profile. Fails as a whole if any topic cannot be fetched.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, playlistsHandler(d))
}

func videoSearchHandler(d Deps) mcp.ToolHandlerFor[engine.VideoSearchInput, engine.VideoSearchOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input engine.VideoSearchInput) (*mcp.CallToolResult, engine.VideoSearchOutput, error) {
		query := strings.TrimSpace(input.Query)
		if query == "" {
			return nil, engine.VideoSearchOutput{}, errors.New("query is required")
		}
		limit := toolutil.ClampResults(input.MaxResults, d.Config.SearchMaxResults)

		recs, err := d.Search.Search(ctx, query, limit)
		if err != nil {
			return nil, engine.VideoSearchOutput{}, err
		}
		return nil, engine.VideoSearchOutput{Query: query, Videos: toolutil.Cards(recs)}, nil
	}
}

func educationalSearchHandler(d Deps) mcp.ToolHandlerFor[engine.VideoSearchInput, engine.EducationalSearchOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input engine.VideoSearchInput) (*mcp.CallToolResult, engine.EducationalSearchOutput, error) {
		query := strings.TrimSpace(input.Query)
		if query == "" {
			return nil, engine.EducationalSearchOutput{}, errors.New("query is required")
		}
		if d.Verifier == nil {
			return nil, engine.EducationalSearchOutput{}, errNoVerifier
		}
		limit := toolutil.ClampResults(input.MaxResults, d.Config.SearchMaxResults)

		var out engine.EducationalSearchOutput
		err := engine.TrackOperation(ctx, "educational_video_search", slowToolThreshold, func(ctx context.Context) error {
			recs, err := d.Search.Search(ctx, query, limit)
			if err != nil {
				return err
			}
			kept := d.Verifier.BatchVerify(ctx, recs)
			out = engine.EducationalSearchOutput{
				Query:    query,
				Checked:  len(recs),
				Videos:   toolutil.VerifiedCards(kept),
				Rejected: len(recs) - len(kept),
			}
			return nil
		})
		if err != nil {
			return nil, engine.EducationalSearchOutput{}, err
		}
		slog.Debug("educational search", slog.String("query", query),
			slog.Int("checked", out.Checked), slog.Int("kept", len(out.Videos)))
		return nil, out, nil
	}
}

func playlistsHandler(d Deps) mcp.ToolHandlerFor[engine.PlaylistInput, engine.PlaylistOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input engine.PlaylistInput) (*mcp.CallToolResult, engine.PlaylistOutput, error) {
		if input.Verify && d.Verifier == nil {
			return nil, engine.PlaylistOutput{}, errNoVerifier
		}
		profile := recommend.ProfileFromConfig(d.Config)
		profile.Topics = toolutil.NormTopics(input.Topics, profile.Topics)
		profile.Grade = toolutil.NormGrade(input.Grade, profile.Grade)
		if len(profile.Topics) == 0 {
			return nil, engine.PlaylistOutput{}, errors.New("no topics given and none configured")
		}

		cfg := recommend.Config{
			Profile:            profile,
			PlaylistMaxResults: d.Config.PlaylistMaxResults,
		}
		if input.Verify {
			cfg.Verifier = d.Verifier
		}
		orch := recommend.New(d.Search, cfg)
		defer orch.Close()

		err := engine.TrackOperation(ctx, "topic_playlists", slowToolThreshold, orch.BuildPlaylists)
		if err != nil {
			return nil, engine.PlaylistOutput{}, errors.Join(errors.New(recommend.MsgPlaylistsFailed), err)
		}
		_, lists, _ := orch.Playlists()
		return nil, engine.PlaylistOutput{
			Grade:     profile.Grade,
			Playlists: toolutil.PlaylistViews(lists, profile.Grade),
		}, nil
	}
}
