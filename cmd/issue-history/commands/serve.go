package commands

import (
	"os"

	"issue-history/internal/mcp"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the reports as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info().Str("version", Version).Msg("MCP Server starting Stdio loop")
			server := mcp.NewServer(cfg, fetcher, Version)
			return server.Serve(cmd.Context(), os.Stdin, os.Stdout)
		},
	}
}
