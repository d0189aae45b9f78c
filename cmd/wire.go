package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/anatolykoptev/go_clip/internal/engine/recommend"
	"github.com/anatolykoptev/go_clip/internal/engine/sources"
	"github.com/anatolykoptev/go_clip/internal/engine/verify"
)

// deps are the components shared by every command.
type deps struct {
	cfg      engine.Config
	cache    *engine.Cache
	youtube  *sources.YouTube
	verifier *verify.Verifier // nil without VERIFIER_API_KEY
}

func setupLogging(w io.Writer, level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
}

// initDeps loads configuration and builds the engine components. When
// requireVerifier is set a missing verifier key is an error; otherwise the
// verifier is simply left out.
func initDeps(ctx context.Context, logTo io.Writer, requireVerifier bool) (*deps, error) {
	cfg := engine.LoadConfig()
	if logTo == nil {
		logTo = os.Stderr
	}
	setupLogging(logTo, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg}
	d.cache = engine.NewCache(ctx, cfg.RedisURL, cfg.CacheTTL, cfg.CacheMaxEntries, cfg.CacheCleanupInterval)

	yt, err := sources.NewYouTube(ctx, cfg, d.cache)
	if err != nil {
		d.close()
		return nil, err
	}
	d.youtube = yt

	if err := cfg.ValidateVerifier(); err != nil {
		if requireVerifier {
			d.close()
			return nil, fmt.Errorf("verification requested: %w", err)
		}
		slog.Info("content verifier disabled", slog.String("reason", err.Error()))
	} else {
		d.verifier = verify.NewFromConfig(cfg)
		slog.Debug("content verifier ready",
			slog.String("provider", cfg.VerifierProvider),
			slog.String("model", cfg.VerifierModel))
	}
	return d, nil
}

// batchVerifier returns the verifier as an interface, nil when disabled.
func (d *deps) batchVerifier() recommend.BatchVerifier {
	if d.verifier == nil {
		return nil
	}
	return d.verifier
}

func (d *deps) close() {
	d.cache.Close()
}
