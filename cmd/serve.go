package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_clip/internal/clipserver"
	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run an MCP server exposing video_search, educational_video_search and
topic_playlists. Metrics are served by the same process.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := initDeps(context.Background(), nil, false)
		if err != nil {
			return err
		}
		defer d.close()

		port := d.cfg.MCPPort
		if servePort != "" {
			port = servePort
		}
		slog.Info("starting go_clip", slog.String("port", port), slog.Bool("verifier", d.verifier != nil))

		server := mcp.NewServer(&mcp.Implementation{
			Name:    "go_clip",
			Version: version,
		}, nil)

		clipserver.RegisterTools(server, clipserver.Deps{
			Search:   d.youtube,
			Verifier: d.batchVerifier(),
			Config:   d.cfg,
		})
		slog.Info("tools registered", slog.Int("count", 3))

		return mcpserver.Run(server, mcpserver.Config{
			Name:         "go_clip",
			Version:      version,
			Port:         port,
			WriteTimeout: 600 * time.Second,
			Metrics:      engine.FormatMetrics,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Listen port (default: MCP_PORT)")
}
