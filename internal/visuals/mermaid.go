package visuals

import (
	"fmt"
	"math"
	"strings"

	"issue-history/internal/history"
	"issue-history/internal/stats"
)

// GenerateGridChart creates a Mermaid xychart-beta with one line per group of a grid tracker.
func GenerateGridChart(g *history.GridTracker) string {
	snaps := g.Snapshots()
	if len(snaps) == 0 {
		return ""
	}
	keys := g.Keys()

	var labels []string
	for _, s := range snaps {
		labels = append(labels, fmt.Sprintf("\"%s\"", s.Date.Format("01/02")))
	}

	maxVal := 0
	lines := make([][]string, len(keys))
	for i, k := range keys {
		for _, s := range snaps {
			n := s.Counts[k]
			lines[i] = append(lines[i], fmt.Sprintf("%d", n))
			if n > maxVal {
				maxVal = n
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Open Issues by %s\"\n", g.Property()))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Open Issues\" 0 --> %d\n", yMax(float64(maxVal))))
	for _, l := range lines {
		sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(l, ", ")))
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateChangeChart creates a Mermaid xychart-beta with the fixed (first line)
// and new (second line) series of a change tracker.
func GenerateChangeChart(c *history.ChangeTracker) string {
	snaps := c.Snapshots()
	if len(snaps) == 0 {
		return ""
	}

	var labels, fixed, opened []string
	maxVal := 0
	for _, s := range snaps {
		labels = append(labels, fmt.Sprintf("\"%s\"", s.Date.Format("01/02")))
		fixed = append(fixed, fmt.Sprintf("%d", s.Fixed))
		opened = append(opened, fmt.Sprintf("%d", s.New))
		maxVal = max(maxVal, s.Fixed, s.New)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Fixed vs New Issues\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Issues\" 0 --> %d\n", yMax(float64(maxVal))))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(fixed, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(opened, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateCadenceChart creates a Mermaid bar chart of issues closed per window
// with the opened count as a line.
func GenerateCadenceChart(res stats.CadenceResult) string {
	if len(res.Windows) == 0 {
		return ""
	}

	var labels, closed, opened []string
	maxVal := 0
	for _, w := range res.Windows {
		labels = append(labels, fmt.Sprintf("\"%s\"", w.WindowStart.Format("01/02")))
		closed = append(closed, fmt.Sprintf("%d", w.Closed))
		opened = append(opened, fmt.Sprintf("%d", w.Opened))
		maxVal = max(maxVal, w.Closed, w.Opened)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Issues Closed per Window\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Issues\" 0 --> %d\n", yMax(float64(maxVal))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(closed, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(opened, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateAgingChart creates a Mermaid bar chart showing the age of the oldest open issues.
func GenerateAgingChart(aging stats.AgingResult) string {
	if len(aging.Items) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0.0

	// Limit to 20 items to avoid overwhelming the text chart context
	limit := min(len(aging.Items), 20)

	for _, item := range aging.Items[:limit] {
		labels = append(labels, fmt.Sprintf("\"%s\"", item.ID))
		values = append(values, fmt.Sprintf("%.1f", item.AgeDays))
		maxVal = math.Max(maxVal, item.AgeDays)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Open Issue Age (Top 20)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Age (Days)\" 0 --> %d\n", int(math.Ceil(maxVal*1.1))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// yMax leaves some headroom above the largest value.
func yMax(v float64) int {
	return int(v) + int(math.Max(1, v*0.2))
}
