package issue

import (
	"cmp"
	"errors"
	"strconv"
	"time"
)

var (
	// ErrInvalidArgument reports a malformed query, step size or property name.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMissingIdentifier reports an issue record without a usable id.
	ErrMissingIdentifier = errors.New("issue has no identifier")
)

// Issue is a single tracked item as read from the feed.
type Issue struct {
	// ID is the tracker-wide issue number. Empty when the feed entry carried none.
	ID      string
	Title   string
	Opened  time.Time
	Closed  *time.Time
	Updated time.Time
	Owner   string
	Status  string
	State   string
	Stars   *int
	Labels  []string
}

// OpenAt reports whether the issue was open at t (opened at or before t, not yet closed).
func (i Issue) OpenAt(t time.Time) bool {
	if i.Opened.After(t) {
		return false
	}
	return i.Closed == nil || i.Closed.After(t)
}

// AgeDays returns the number of days between opening and ref (or closing, if earlier).
func (i Issue) AgeDays(ref time.Time) float64 {
	end := ref
	if i.Closed != nil && i.Closed.Before(ref) {
		end = *i.Closed
	}
	d := end.Sub(i.Opened).Hours() / 24.0
	if d < 0 {
		return 0
	}
	return d
}

// IDs returns the ids of the given issues in input order.
func IDs(issues []Issue) []string {
	ids := make([]string, 0, len(issues))
	for _, iss := range issues {
		ids = append(ids, iss.ID)
	}
	return ids
}

// CompareIDs orders numeric ids numerically and everything else lexically, numbers first.
func CompareIDs(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}
