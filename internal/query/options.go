package query

import (
	"fmt"
	"strings"

	"issue-history/internal/issue"
)

// Options are the user-facing knobs shared by the CLI and the MCP tools.
type Options struct {
	Project string
	Can     string
	Label   string
	Text    string
}

// Build validates o and returns the corresponding query. An empty Can keeps
// the default open subset.
func (o Options) Build() (Query, error) {
	project := strings.TrimSpace(o.Project)
	if project == "" {
		return Query{}, fmt.Errorf("%w: project is required", issue.ErrInvalidArgument)
	}

	q := New(project)
	if o.Can != "" {
		c, err := ParseCan(o.Can)
		if err != nil {
			return Query{}, err
		}
		q, _ = q.WithCan(c)
	}
	if o.Label != "" {
		q = q.WithLabel(o.Label)
	}
	return q.WithClause(o.Text), nil
}
