package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/anatolykoptev/go_clip/internal/toolutil"
	"github.com/spf13/cobra"
)

var (
	searchMax    int
	searchVerify bool
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search educational videos",
	Long: `Search YouTube's Education category.

Examples:
  go_clip search "photosynthesis"
  go_clip search "long division" --max 5 --verify
  go_clip search "volcanoes" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return fmt.Errorf("query is required")
		}
		ctx := cmd.Context()
		d, err := initDeps(ctx, nil, searchVerify)
		if err != nil {
			return err
		}
		defer d.close()

		limit := toolutil.ClampResults(searchMax, d.cfg.SearchMaxResults)
		recs, err := d.youtube.Search(ctx, query, limit)
		if err != nil {
			return err
		}

		var cards []engine.VideoCard
		if searchVerify {
			cards = toolutil.VerifiedCards(d.verifier.BatchVerify(ctx, recs))
		} else {
			cards = toolutil.Cards(recs)
		}

		if searchJSON {
			return writeJSON(cmd.OutOrStdout(), cards)
		}
		printCards(cmd.OutOrStdout(), cards)
		if searchVerify {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d judged educational\n", len(cards), len(recs))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchMax, "max", "m", 0, "Maximum number of results (1-50, default: SEARCH_MAX_RESULTS)")
	searchCmd.Flags().BoolVarP(&searchVerify, "verify", "v", false, "Keep only videos judged educational (needs VERIFIER_API_KEY)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print JSON instead of text")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printCards(w io.Writer, cards []engine.VideoCard) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No videos found.")
		return
	}
	for i, c := range cards {
		fmt.Fprintf(w, "%2d. %s\n", i+1, engine.TruncateRunes(c.Title, 80, "…"))
		fmt.Fprintf(w, "    %s · %s · %s", c.Channel, c.Duration, c.Views)
		if c.PublishedAt != "" {
			fmt.Fprintf(w, " · %s", c.PublishedAt)
		}
		fmt.Fprintln(w)
		if c.Subject != "" || c.GradeLevel != "" {
			fmt.Fprintf(w, "    %s, grade %s\n", c.Subject, c.GradeLevel)
		}
		fmt.Fprintf(w, "    %s\n", c.URL)
	}
}
