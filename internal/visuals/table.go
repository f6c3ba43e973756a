package visuals

import (
	"fmt"
	"strings"

	"issue-history/internal/history"
	"issue-history/internal/issue"
	"issue-history/internal/stats"

	"github.com/dustin/go-humanize"
)

// Table is tab-separated tabular text.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends a row, formatting each cell with %v.
func (t *Table) AddRow(cells ...any) {
	row := make([]string, 0, len(cells))
	for _, c := range cells {
		row = append(row, fmt.Sprint(c))
	}
	t.Rows = append(t.Rows, row)
}

func (t *Table) String() string {
	var sb strings.Builder
	if len(t.Headers) > 0 {
		sb.WriteString(strings.Join(t.Headers, "\t"))
	}
	for i, row := range t.Rows {
		if i > 0 || len(t.Headers) > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Join(row, "\t"))
	}
	return sb.String()
}

// GridTable renders one row per snapshot and one column per group seen in any
// snapshot. Missing combinations are zero.
func GridTable(g *history.GridTracker) *Table {
	keys := g.Keys()
	t := &Table{Headers: []string{"date"}}
	for _, k := range keys {
		t.Headers = append(t.Headers, k.String())
	}
	for _, s := range g.Snapshots() {
		row := []string{s.Date.Format(history.DateLayout)}
		for _, k := range keys {
			row = append(row, fmt.Sprint(s.Counts[k]))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ChangeTable renders the fixed and new counts per snapshot.
func ChangeTable(c *history.ChangeTracker) *Table {
	t := &Table{Headers: []string{"date", "fixed", "new"}}
	for _, s := range c.Snapshots() {
		t.AddRow(s.Date.Format(history.DateLayout), s.Fixed, s.New)
	}
	return t
}

// CadenceTable renders per-window activity.
func CadenceTable(res stats.CadenceResult) *Table {
	t := &Table{Headers: []string{"window", "opened", "closed", "net"}}
	for _, w := range res.Windows {
		t.AddRow(w.WindowStart.Format(history.DateLayout), w.Opened, w.Closed, w.Net)
	}
	return t
}

// FormatGroups lists each group of issues grouped by p as "key: count", in
// key order. With hint > 0 the first ids of each group follow in brackets,
// elided after three when the group is larger than hint.
func FormatGroups(issues []issue.Issue, p issue.Property, hint int) string {
	groups := issue.GroupBy(issues, p)
	var sb strings.Builder
	for i, key := range issue.SortedKeys(groups) {
		members := groups[key]
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s: %d", key, len(members))
		if hint <= 0 {
			continue
		}
		ids := issue.IDs(members)
		if len(ids) > hint {
			fmt.Fprintf(&sb, " [%s...]", strings.Join(ids[:min(3, len(ids))], " "))
		} else {
			fmt.Fprintf(&sb, " [%s]", strings.Join(ids, " "))
		}
	}
	return sb.String()
}

// FormatSummary renders "name: N issues, M launches".
func FormatSummary(s stats.Summary) string {
	return fmt.Sprintf("%s: %s issues, %s launches", s.Name, humanize.Comma(int64(s.Issues)), humanize.Comma(int64(s.Launches)))
}

// FormatDistribution renders a one-line quantile summary.
func FormatDistribution(name string, d stats.Distribution) string {
	if d.Count == 0 {
		return fmt.Sprintf("%s: no data", name)
	}
	return fmt.Sprintf("%s: n=%s min=%s median=%s p85=%s p95=%s max=%s",
		name,
		humanize.Comma(int64(d.Count)),
		humanize.FtoaWithDigits(d.Min, 1),
		humanize.FtoaWithDigits(d.Median, 1),
		humanize.FtoaWithDigits(d.P85, 1),
		humanize.FtoaWithDigits(d.P95, 1),
		humanize.FtoaWithDigits(d.Max, 1),
	)
}
