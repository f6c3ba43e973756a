package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"issue-history/internal/history"
	"issue-history/internal/issue"
	"issue-history/internal/query"
	"issue-history/internal/stats"
	"issue-history/internal/visuals"

	"github.com/spf13/cobra"
)

// reportGroups are the properties listed in a report, in order.
var reportGroups = []issue.Property{
	issue.PropOwner,
	issue.PropPriority,
	issue.PropMilestone,
	issue.PropStatus,
	issue.PropType,
	issue.PropStars,
	issue.PropUpdated,
	issue.PropPublished,
}

type reportOptions struct {
	query     query.Options
	milestone int
	days      int
	step      int
	hint      int
	mermaid   bool
}

func newReportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report <project>",
		Short: "Summarise a project's issues and their recent history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.query.Project = args[0]
			if !cmd.Flags().Changed("mermaid") {
				opts.mermaid = cfg.EnableMermaidCharts
			}
			return writeReport(cmd.Context(), cmd.OutOrStdout(), fetcher, engine, opts, time.Now())
		},
	}

	addQueryFlags(cmd, &opts.query)
	cmd.Flags().IntVar(&opts.milestone, "milestone", 0, "print Pre-M, M and M+1 summaries for this milestone")
	cmd.Flags().IntVar(&opts.days, "days", 120, "lookback for the history tables, in days")
	cmd.Flags().IntVar(&opts.step, "step", 7, "history step, in days")
	cmd.Flags().IntVar(&opts.hint, "hint", 3, "example ids listed per group (0 to disable)")
	cmd.Flags().BoolVar(&opts.mermaid, "mermaid", false, "append Mermaid charts (default from ENABLE_MERMAID_CHARTS)")
	return cmd
}

func writeReport(ctx context.Context, w io.Writer, src history.Source, eng *history.Engine, opts reportOptions, now time.Time) error {
	q, err := opts.query.Build()
	if err != nil {
		return err
	}
	if opts.days <= 0 {
		return fmt.Errorf("%w: days must be positive, got %d", issue.ErrInvalidArgument, opts.days)
	}
	if opts.step <= 0 {
		return fmt.Errorf("%w: step must be at least one day, got %d", issue.ErrInvalidArgument, opts.step)
	}

	issues, err := src.FetchAll(ctx, q)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, visuals.FormatSummary(stats.Summarize("All", issues)))
	if opts.milestone > 0 {
		for _, s := range stats.MilestoneSummaries(opts.milestone, issues) {
			fmt.Fprintln(w, visuals.FormatSummary(s))
		}
	}

	for _, p := range reportGroups {
		fmt.Fprintf(w, "\n== Issues by %s ==\n", p)
		if len(issues) > 0 {
			fmt.Fprintln(w, visuals.FormatGroups(issues, p, opts.hint))
		}
	}

	aging := stats.CalculateAging(issues, now)
	fmt.Fprintf(w, "\n== Issue age (days) ==\n")
	fmt.Fprintln(w, visuals.FormatDistribution("age", aging.Ages))
	fmt.Fprintln(w, visuals.FormatDistribution("stars", aging.Stars))

	end := history.SnapToDay(now)
	start := end.AddDate(0, 0, -opts.days)
	rec, err := eng.Fetch(ctx, q, start, end, opts.step)
	if err != nil {
		return err
	}
	grid := history.NewGridTracker(issue.PropPriority)
	changes := history.NewChangeTracker()
	if err := history.Replay(rec, grid, changes); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n== Issues by priority over past %d days ==\n", opts.days)
	fmt.Fprintln(w, visuals.GridTable(grid))
	fmt.Fprintf(w, "\n== Issues opened/fixed over past %d days ==\n", opts.days)
	fmt.Fprintln(w, visuals.ChangeTable(changes))

	cadence := stats.CalculateCadence(rec.Deltas)
	fmt.Fprintf(w, "\n== Activity per %d-day window ==\n", opts.step)
	fmt.Fprintln(w, visuals.CadenceTable(cadence))

	if opts.mermaid {
		for _, chart := range []string{
			visuals.GenerateGridChart(grid),
			visuals.GenerateChangeChart(changes),
			visuals.GenerateCadenceChart(cadence),
			visuals.GenerateAgingChart(aging),
		} {
			if chart != "" {
				fmt.Fprintf(w, "\n%s\n", chart)
			}
		}
	}
	return nil
}
