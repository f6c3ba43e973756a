package history

import (
	"fmt"
	"time"

	"issue-history/internal/issue"
)

// DateLayout renders step dates in reports.
const DateLayout = "2006/01/02"

// Window is a half-open date range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// SnapToDay normalizes t to midnight UTC of its calendar day.
func SnapToDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PlanWindows splits [start, end) into consecutive windows of stepDays days.
// Windows keep being added while their start is before end, so the last one
// may extend past end.
func PlanWindows(start, end time.Time, stepDays int) ([]Window, error) {
	if stepDays <= 0 {
		return nil, fmt.Errorf("%w: step must be at least one day, got %d", issue.ErrInvalidArgument, stepDays)
	}

	start, end = SnapToDay(start), SnapToDay(end)
	var windows []Window
	for current := start; current.Before(end); {
		next := current.AddDate(0, 0, stepDays)
		windows = append(windows, Window{Start: current, End: next})
		current = next
	}
	return windows, nil
}
