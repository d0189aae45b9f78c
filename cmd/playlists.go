package cmd

import (
	"fmt"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/anatolykoptev/go_clip/internal/engine/recommend"
	"github.com/anatolykoptev/go_clip/internal/toolutil"
	"github.com/spf13/cobra"
)

var (
	playlistTopics []string
	playlistGrade  int
	playlistVerify bool
	playlistJSON   bool
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "Build topic playlists for the student profile",
	Long: `Build one playlist per topic for the configured student. Topics and
grade come from STUDENT_TOPICS and STUDENT_GRADE unless given as flags.

Examples:
  go_clip playlists
  go_clip playlists --topic algebra --topic "plate tectonics" --grade 8
  go_clip playlists --verify --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := initDeps(ctx, nil, playlistVerify)
		if err != nil {
			return err
		}
		defer d.close()

		profile := recommend.ProfileFromConfig(d.cfg)
		profile.Topics = toolutil.NormTopics(playlistTopics, profile.Topics)
		profile.Grade = toolutil.NormGrade(playlistGrade, profile.Grade)

		rc := recommend.Config{Profile: profile, PlaylistMaxResults: d.cfg.PlaylistMaxResults}
		if playlistVerify {
			rc.Verifier = d.batchVerifier()
		}
		orch := recommend.New(d.youtube, rc)
		defer orch.Close()

		if err := orch.BuildPlaylists(ctx); err != nil {
			return fmt.Errorf("%s: %w", recommend.MsgPlaylistsFailed, err)
		}
		_, lists, _ := orch.Playlists()
		views := toolutil.PlaylistViews(lists, profile.Grade)

		if playlistJSON {
			return writeJSON(cmd.OutOrStdout(), engine.PlaylistOutput{Grade: profile.Grade, Playlists: views})
		}
		for i, v := range views {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "== %s (grade %d) ==\n", engine.TopicLabel(v.Topic), profile.Grade)
			printCards(cmd.OutOrStdout(), v.Videos)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(playlistsCmd)
	playlistsCmd.Flags().StringArrayVarP(&playlistTopics, "topic", "t", nil, "Topic to build a playlist for (repeatable)")
	playlistsCmd.Flags().IntVarP(&playlistGrade, "grade", "g", 0, "Student grade level 1-12 (default: STUDENT_GRADE)")
	playlistsCmd.Flags().BoolVarP(&playlistVerify, "verify", "v", false, "Keep only videos judged educational (needs VERIFIER_API_KEY)")
	playlistsCmd.Flags().BoolVar(&playlistJSON, "json", false, "Print JSON instead of text")
}
