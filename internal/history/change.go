package history

import (
	"slices"
	"time"

	"issue-history/internal/issue"
)

// ChangeSnapshot counts fixed original issues and still-open new issues at a date.
type ChangeSnapshot struct {
	Date  time.Time
	Fixed int
	New   int
}

// ChangeTracker tracks how many of the issues open at the start have been
// fixed, and how many issues opened since are still open.
//
// An issue opened and closed inside one window is counted in neither column.
type ChangeTracker struct {
	original       map[string]bool
	closedOriginal map[string]bool
	newOpen        map[string]bool
	snapshots      []ChangeSnapshot
}

// NewChangeTracker creates an empty change tracker.
func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{}
}

func (c *ChangeTracker) Start(date time.Time, initial []issue.Issue) error {
	ids, err := idSet(initial)
	if err != nil {
		return err
	}
	c.original = ids
	c.closedOriginal = make(map[string]bool)
	c.newOpen = make(map[string]bool)
	c.record(date)
	return nil
}

func (c *ChangeTracker) Step(date time.Time, opened, closed []issue.Issue) error {
	openedIDs, err := idSet(opened)
	if err != nil {
		return err
	}
	closedIDs, err := idSet(closed)
	if err != nil {
		return err
	}

	for id := range closedIDs {
		if c.original[id] {
			c.closedOriginal[id] = true
			delete(c.original, id)
		}
	}
	for id := range openedIDs {
		c.newOpen[id] = true
	}
	for id := range closedIDs {
		delete(c.newOpen, id)
	}

	c.record(date)
	return nil
}

func (c *ChangeTracker) record(date time.Time) {
	c.snapshots = append(c.snapshots, ChangeSnapshot{
		Date:  date,
		Fixed: len(c.closedOriginal),
		New:   len(c.newOpen),
	})
}

// Snapshots returns the recorded history, oldest first.
func (c *ChangeTracker) Snapshots() []ChangeSnapshot {
	return slices.Clone(c.snapshots)
}

func idSet(issues []issue.Issue) (map[string]bool, error) {
	ids := make(map[string]bool, len(issues))
	for _, iss := range issues {
		if iss.ID == "" {
			return nil, issue.ErrMissingIdentifier
		}
		ids[iss.ID] = true
	}
	return ids, nil
}
