package commands

import (
	"context"

	"issue-history/internal/config"
	"issue-history/internal/feed"
	"issue-history/internal/history"
	"issue-history/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	fetcher *feed.Fetcher
	engine  *history.Engine
)

var rootCmd = &cobra.Command{
	Use:   "issue-history",
	Short: "Reports on how a project's issues evolve over time",
	Long: `issue-history reads a project's issues from the hosted issue feed and reports
grouped counts, open-issue ages and a week-by-week reconstruction of the open set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(verbose); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		fetcher = feed.NewFetcher(feed.NewClient(cfg.Feed), cfg.PageSize, cfg.Concurrency)
		engine = history.NewEngine(fetcher, cfg.Concurrency)

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("feed", cfg.Feed.BaseURL).
			Msg("issue-history starting")
		return nil
	},
}

// Execute runs the root command with ctx as the base context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(newCountCmd(), newReportCmd(), newHistoryCmd(), newServeCmd())
}
