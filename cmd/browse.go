package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/anatolykoptev/go_clip/internal/engine/recommend"
	"github.com/anatolykoptev/go_clip/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var browseLogFile string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse videos and playlists interactively",
	Long: `Open the terminal browser. Results follow the query as you type; the
Playlists tab holds the student's topic playlists. Selected videos are
printed when the browser exits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var logTo io.Writer = io.Discard
		if browseLogFile != "" {
			f, err := tea.LogToFile(browseLogFile, "go_clip")
			if err != nil {
				return err
			}
			defer f.Close()
			logTo = f
		}

		d, err := initDeps(cmd.Context(), logTo, false)
		if err != nil {
			return err
		}
		defer d.close()

		var picked []string
		changes, notify := tui.Notifier()
		orch := recommend.New(d.youtube, recommend.Config{
			Profile:            recommend.ProfileFromConfig(d.cfg),
			Debounce:           d.cfg.SearchDebounce,
			SearchMaxResults:   d.cfg.SearchMaxResults,
			PlaylistMaxResults: d.cfg.PlaylistMaxResults,
			OnVideoSelect:      func(id string) { picked = append(picked, id) },
			OnChange:           notify,
		})
		defer orch.Close()

		program := tea.NewProgram(tui.New(orch, changes), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("browser: %w", err)
		}
		for _, id := range picked {
			fmt.Fprintln(os.Stdout, engine.WatchURL(id))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().StringVar(&browseLogFile, "log-file", "", "Write logs to this file while the browser runs")
}
