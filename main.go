// go_clip: educational video search, verification and topic playlists,
// as an MCP server, a CLI and a terminal browser.
package main

import (
	"log/slog"
	"os"

	"github.com/anatolykoptev/go_clip/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env", slog.Any("error", err))
	}

	if err := cmd.Execute(); err != nil {
		slog.Error("go_clip failed", slog.Any("error", err))
		os.Exit(1)
	}
}
