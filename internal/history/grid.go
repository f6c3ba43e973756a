package history

import (
	"slices"
	"time"

	"issue-history/internal/issue"
)

// GridSnapshot is the open set grouped by property at one date.
type GridSnapshot struct {
	Date   time.Time
	Counts map[issue.Value]int
}

// GridTracker follows the open issue set and records its size per property value.
//
// For instance, tracking priority yields a table like
//
//	date        1   2   None
//	2015/01/01  8   12  5
//	2015/01/08  10  14  7
type GridTracker struct {
	prop      issue.Property
	open      *issue.Set
	snapshots []GridSnapshot
}

// NewGridTracker creates a tracker grouping by prop.
func NewGridTracker(prop issue.Property) *GridTracker {
	return &GridTracker{prop: prop}
}

// Property returns the grouping property.
func (g *GridTracker) Property() issue.Property {
	return g.prop
}

func (g *GridTracker) Start(date time.Time, initial []issue.Issue) error {
	set, err := issue.NewSet(initial)
	if err != nil {
		return err
	}
	g.open = set
	g.snapshots = append(g.snapshots, GridSnapshot{Date: date, Counts: issue.CountBy(set.List(), g.prop)})
	return nil
}

// Step adds opened issues, then removes closed ones, so an issue opened and
// closed in the same window ends up absent.
func (g *GridTracker) Step(date time.Time, opened, closed []issue.Issue) error {
	for _, iss := range opened {
		if err := g.open.Add(iss); err != nil {
			return err
		}
	}
	for _, iss := range closed {
		if err := g.open.Remove(iss); err != nil {
			return err
		}
	}
	g.snapshots = append(g.snapshots, GridSnapshot{Date: date, Counts: issue.CountBy(g.open.List(), g.prop)})
	return nil
}

// Snapshots returns the recorded history, oldest first.
func (g *GridTracker) Snapshots() []GridSnapshot {
	return slices.Clone(g.snapshots)
}

// Keys returns every group seen in any snapshot, sorted with issue.Compare.
func (g *GridTracker) Keys() []issue.Value {
	seen := make(map[issue.Value]bool)
	for _, s := range g.snapshots {
		for k := range s.Counts {
			seen[k] = true
		}
	}
	return issue.SortedKeys(seen)
}

// OpenIDs returns the ids currently believed open.
func (g *GridTracker) OpenIDs() []string {
	if g.open == nil {
		return nil
	}
	return g.open.IDs()
}
