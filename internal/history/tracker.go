// Package history reconstructs how a project's open issue set evolved over a
// date range and feeds the evolution to trackers.
//
// The engine fetches the issues open at the start date, then for each step
// window the issues opened and closed inside it. Trackers receive a Start call
// with the initial set and one Step call per window, in date order. A window's
// opened and closed deltas may overlap when an issue was both opened and
// closed inside it.
package history

import (
	"time"

	"issue-history/internal/issue"
)

// Tracker observes the evolving issue set.
type Tracker interface {
	// Start receives the issues open on date, the first day of the range.
	Start(date time.Time, initial []issue.Issue) error
	// Step receives the issues opened and closed since the previous step;
	// date is the end of the window.
	Step(date time.Time, opened, closed []issue.Issue) error
}
