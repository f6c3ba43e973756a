package stats

import (
	"fmt"

	"issue-history/internal/issue"
)

// Summary splits a named set of issues into launches and everything else.
type Summary struct {
	Name     string `json:"name"`
	Issues   int    `json:"issues"`   // non-launch issues
	Launches int    `json:"launches"` // issues labelled Type-Launch
}

// Summarize counts launches and non-launch issues.
func Summarize(name string, issues []issue.Issue) Summary {
	s := Summary{Name: name}
	for _, iss := range issues {
		if issue.IsLaunch(iss) {
			s.Launches++
		} else {
			s.Issues++
		}
	}
	return s
}

// MilestoneSummaries returns the Pre-M, M and M+1 summaries for milestone m.
func MilestoneSummaries(m int, issues []issue.Issue) []Summary {
	return []Summary{
		Summarize(fmt.Sprintf("Pre-M%d", m), issue.Filter(issues, issue.MilestoneBefore(m))),
		Summarize(fmt.Sprintf("M%d", m), issue.Filter(issues, issue.MilestoneIs(m))),
		Summarize(fmt.Sprintf("M%d", m+1), issue.Filter(issues, issue.MilestoneIs(m+1))),
	}
}
