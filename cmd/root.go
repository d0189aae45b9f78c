package cmd

import (
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "go_clip",
	Short: "Educational video search, verification and playlists",
	Long: `go_clip finds educational YouTube videos, asks a language model to
confirm they are educational, and builds topic playlists for a student.

Examples:
  go_clip serve
  go_clip search "photosynthesis" --max 5 --verify
  go_clip playlists --topic algebra --topic optics --grade 7
  go_clip browse`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It is called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = version
}
