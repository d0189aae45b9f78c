package cmd

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintCards(t *testing.T) {
	var buf bytes.Buffer
	printCards(&buf, []engine.VideoCard{
		{Title: "Fractions", Channel: "Math Co", Duration: "5:09", Views: "1,234 views", URL: "https://www.youtube.com/watch?v=a"},
		{Title: "Atoms", Channel: "Sci", Duration: "0:00", Views: "0 views", URL: "https://www.youtube.com/watch?v=b", Subject: "Chemistry", GradeLevel: "6-8"},
	})
	out := buf.String()
	assert.Contains(t, out, " 1. Fractions")
	assert.Contains(t, out, "Math Co · 5:09 · 1,234 views")
	assert.Contains(t, out, "Chemistry, grade 6-8")
	assert.Contains(t, out, "https://www.youtube.com/watch?v=b")

	buf.Reset()
	printCards(&buf, nil)
	assert.Equal(t, "No videos found.\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, engine.PlaylistOutput{Grade: 6}))

	var out engine.PlaylistOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 6, out.Grade)
}

func TestSetupLogging(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	setupLogging(&buf, "warn")
	slog.Info("hidden")
	slog.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	setupLogging(&buf, "nonsense")
	slog.Debug("hidden")
	slog.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "search", "playlists", "browse"} {
		assert.True(t, names[want], want)
	}
}
