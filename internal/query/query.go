// Package query builds immutable issue-feed queries.
//
// A Query is a value: every method returns a new Query and leaves the receiver
// untouched, so a base query can be shared and specialised freely:
//
//	base := query.New("chromium").WithLabel("Cr-UI")
//	opened := base.OpenedBetween(start, end)
//	stillOpen := base.OpenedBefore(start)
package query

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"issue-history/internal/issue"
)

// Can selects the canned issue subset the feed searches.
type Can string

const (
	CanAll      Can = "all"
	CanOpen     Can = "open"
	CanOwned    Can = "owned"
	CanReported Can = "reported"
	CanStarred  Can = "starred"
	CanNew      Can = "new"
	CanToVerify Can = "to-verify"
)

var cans = []Can{CanAll, CanOpen, CanOwned, CanReported, CanStarred, CanNew, CanToVerify}

// DateLayout is the clause date format understood by the feed.
const DateLayout = "2006/01/02"

// ParseCan validates a can mode.
func ParseCan(s string) (Can, error) {
	c := Can(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: can must be one of %v, got %q", issue.ErrInvalidArgument, cans, s)
	}
	return c, nil
}

// Valid reports whether c is one of the recognised modes.
func (c Can) Valid() bool {
	return slices.Contains(cans, c)
}

// Query describes a filtered request for issues of one project.
type Query struct {
	project string
	can     Can
	label   string
	clauses []string
}

// New returns a query for all currently open issues of project.
func New(project string) Query {
	return Query{project: project, can: CanOpen}
}

func (q Query) Project() string   { return q.project }
func (q Query) Can() Can          { return q.can }
func (q Query) Label() string     { return q.label }
func (q Query) Clauses() []string { return slices.Clone(q.clauses) }

// WithCan restricts the query to a canned subset.
func (q Query) WithCan(c Can) (Query, error) {
	if !c.Valid() {
		return q, fmt.Errorf("%w: unknown can %q", issue.ErrInvalidArgument, c)
	}
	q.can = c
	return q, nil
}

// All searches every issue regardless of state.
func (q Query) All() Query {
	q.can = CanAll
	return q
}

// Open searches currently open issues only.
func (q Query) Open() Query {
	q.can = CanOpen
	return q
}

// WithLabel limits the query to issues carrying label.
func (q Query) WithLabel(label string) Query {
	q.label = label
	return q
}

// WithClause appends a free-text search clause.
func (q Query) WithClause(text string) Query {
	text = strings.TrimSpace(text)
	if text == "" {
		return q
	}
	// Clip forces append to copy, so sibling queries never share a backing array.
	q.clauses = append(slices.Clip(q.clauses), text)
	return q
}

func (q Query) withDate(attribute string, date time.Time) Query {
	return q.WithClause(attribute + ":" + date.Format(DateLayout))
}

// OpenedBefore filters to issues opened before midnight at the start of date.
func (q Query) OpenedBefore(date time.Time) Query {
	return q.withDate("opened-before", date)
}

// OpenedAfter filters to issues opened after midnight at the start of date.
func (q Query) OpenedAfter(date time.Time) Query {
	return q.withDate("opened-after", date)
}

// ClosedBefore filters to issues closed before date. Closed issues are never
// "open", so the query is widened to can=all.
func (q Query) ClosedBefore(date time.Time) Query {
	return q.All().withDate("closed-before", date)
}

// ClosedAfter filters to issues closed after date, widened to can=all.
func (q Query) ClosedAfter(date time.Time) Query {
	return q.All().withDate("closed-after", date)
}

// OpenedBetween selects issues opened in [start, end) regardless of current state.
func (q Query) OpenedBetween(start, end time.Time) Query {
	return q.All().OpenedAfter(start).OpenedBefore(end)
}

// ClosedBetween selects issues closed in [start, end).
func (q Query) ClosedBetween(start, end time.Time) Query {
	return q.All().ClosedAfter(start).ClosedBefore(end)
}

// Text returns the joined free-text search.
func (q Query) Text() string {
	return strings.Join(q.clauses, " ")
}

// String renders the query deterministically; equal queries render equally.
func (q Query) String() string {
	return q.project + "?" + q.params().Encode()
}

func (q Query) params() url.Values {
	params := url.Values{}
	params.Set("can", string(q.can))
	if q.label != "" {
		params.Set("label", q.label)
	}
	if len(q.clauses) > 0 {
		params.Set("q", q.Text())
	}
	return params
}

// Request resolves the query to a fetchable page descriptor.
// offset is zero-based; the feed's start-index is one-based.
func (q Query) Request(offset, limit int) Request {
	params := q.params()
	params.Set("max-results", strconv.Itoa(limit))
	params.Set("start-index", strconv.Itoa(offset+1))
	return Request{Project: q.project, Offset: offset, Limit: limit, Params: params}
}
