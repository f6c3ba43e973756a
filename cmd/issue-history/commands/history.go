package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"issue-history/internal/history"
	"issue-history/internal/issue"
	"issue-history/internal/query"
	"issue-history/internal/visuals"

	"github.com/spf13/cobra"
)

const flagDateLayout = "2006-01-02"

type historyOptions struct {
	query   query.Options
	start   string
	end     string
	step    int
	groupBy []string
	mermaid bool
}

func newHistoryCmd() *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history <project>",
		Short: "Reconstruct the open issue set over a date range",
		Long: `history walks from --start to --end in steps of --step days and prints, for every
--group-by property, the number of open issues per group at each step, followed by the
cumulative number of originally open issues fixed and newly opened issues still open.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.query.Project = args[0]
			if !cmd.Flags().Changed("mermaid") {
				opts.mermaid = cfg.EnableMermaidCharts
			}
			return writeHistory(cmd.Context(), cmd.OutOrStdout(), engine, opts, time.Now())
		},
	}

	addQueryFlags(cmd, &opts.query)
	cmd.Flags().StringVar(&opts.start, "start", "", "first day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.end, "end", "", "end of the range, YYYY-MM-DD, exclusive (default today)")
	cmd.Flags().IntVar(&opts.step, "step", 7, "step size in days")
	cmd.Flags().StringSliceVar(&opts.groupBy, "group-by", []string{string(issue.PropPriority)}, "properties to group the open set by")
	cmd.Flags().BoolVar(&opts.mermaid, "mermaid", false, "append Mermaid charts (default from ENABLE_MERMAID_CHARTS)")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func writeHistory(ctx context.Context, w io.Writer, eng *history.Engine, opts historyOptions, now time.Time) error {
	q, err := opts.query.Build()
	if err != nil {
		return err
	}
	start, err := time.Parse(flagDateLayout, opts.start)
	if err != nil {
		return fmt.Errorf("%w: invalid --start %q", issue.ErrInvalidArgument, opts.start)
	}
	end := now
	if opts.end != "" {
		if end, err = time.Parse(flagDateLayout, opts.end); err != nil {
			return fmt.Errorf("%w: invalid --end %q", issue.ErrInvalidArgument, opts.end)
		}
	}

	// Validate every property before fetching anything.
	var grids []*history.GridTracker
	for _, name := range opts.groupBy {
		p, err := issue.ParseProperty(name)
		if err != nil {
			return err
		}
		grids = append(grids, history.NewGridTracker(p))
	}
	changes := history.NewChangeTracker()

	trackers := make([]history.Tracker, 0, len(grids)+1)
	for _, g := range grids {
		trackers = append(trackers, g)
	}
	trackers = append(trackers, changes)

	if err := eng.Run(ctx, q, start, end, opts.step, trackers...); err != nil {
		return err
	}

	for _, g := range grids {
		fmt.Fprintf(w, "== Open issues by %s ==\n%s\n\n", g.Property(), visuals.GridTable(g))
	}
	fmt.Fprintf(w, "== Issues opened/fixed ==\n%s\n", visuals.ChangeTable(changes))

	if opts.mermaid {
		var charts []string
		for _, g := range grids {
			charts = append(charts, visuals.GenerateGridChart(g))
		}
		charts = append(charts, visuals.GenerateChangeChart(changes))
		fmt.Fprintf(w, "\n%s\n", strings.Join(charts, "\n\n"))
	}
	return nil
}
