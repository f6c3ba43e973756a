package commands

import (
	"fmt"

	"issue-history/internal/query"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCountCmd() *cobra.Command {
	var opts query.Options

	cmd := &cobra.Command{
		Use:   "count <project>",
		Short: "Count the issues matching a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Project = args[0]
			q, err := opts.Build()
			if err != nil {
				return err
			}
			n, err := fetcher.Count(cmd.Context(), q)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s issues\n", q, humanize.Comma(int64(n)))
			return nil
		},
	}

	addQueryFlags(cmd, &opts)
	return cmd
}

func addQueryFlags(cmd *cobra.Command, opts *query.Options) {
	cmd.Flags().StringVar(&opts.Can, "can", "", "canned subset: all, open, owned, reported, starred, new, to-verify (default open)")
	cmd.Flags().StringVar(&opts.Label, "label", "", "only issues carrying this label")
	cmd.Flags().StringVar(&opts.Text, "query", "", "free-text search clause")
}
