package history

import (
	"context"
	"fmt"
	"time"

	"issue-history/internal/issue"
	"issue-history/internal/query"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency caps concurrent window fetches.
const DefaultConcurrency = 10

// Source resolves a query to its complete result set.
type Source interface {
	FetchAll(ctx context.Context, q query.Query) ([]issue.Issue, error)
}

// Delta holds the issues opened and closed inside one window.
type Delta struct {
	Window Window
	Opened []issue.Issue
	Closed []issue.Issue
}

// Reconstruction is everything fetched for one run, ready to be replayed.
type Reconstruction struct {
	Start   time.Time
	Initial []issue.Issue
	Deltas  []Delta
}

// Engine drives trackers through a date range.
type Engine struct {
	source      Source
	concurrency int
}

// NewEngine creates an engine reading from source with at most concurrency
// fetches in flight.
func NewEngine(source Source, concurrency int) *Engine {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Engine{source: source, concurrency: concurrency}
}

// spanningQuery matches issues opened before date and closed after it.
func spanningQuery(q query.Query, date time.Time) query.Query {
	return q.All().OpenedBefore(date).ClosedAfter(date)
}

// stillOpenQuery matches issues opened before date that are still open.
func stillOpenQuery(q query.Query, date time.Time) query.Query {
	return q.OpenedBefore(date)
}

// Fetch retrieves the initial open set and every window's deltas. All fetches
// are independent and run concurrently; any failure fails the whole fetch.
func (e *Engine) Fetch(ctx context.Context, q query.Query, start, end time.Time, stepDays int) (*Reconstruction, error) {
	windows, err := PlanWindows(start, end, stepDays)
	if err != nil {
		return nil, err
	}
	start = SnapToDay(start)

	log.Info().
		Str("query", q.String()).
		Time("start", start).
		Time("end", SnapToDay(end)).
		Int("step_days", stepDays).
		Int("windows", len(windows)).
		Msg("Reconstructing issue history")

	var spanning, stillOpen []issue.Issue
	deltas := make([]Delta, len(windows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	fetchInto := func(dst *[]issue.Issue, fq query.Query) {
		g.Go(func() error {
			issues, err := e.source.FetchAll(gctx, fq)
			if err != nil {
				return err
			}
			*dst = issues
			return nil
		})
	}

	fetchInto(&spanning, spanningQuery(q, start))
	fetchInto(&stillOpen, stillOpenQuery(q, start))
	for i, w := range windows {
		deltas[i].Window = w
		fetchInto(&deltas[i].Opened, q.OpenedBetween(w.Start, w.End))
		fetchInto(&deltas[i].Closed, q.ClosedBetween(w.Start, w.End))
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reconstruction aborted: %w", err)
	}

	return &Reconstruction{
		Start:   start,
		Initial: issue.Dedupe(append(spanning, stillOpen...)),
		Deltas:  deltas,
	}, nil
}

// Replay feeds a fetched reconstruction to trackers in date order.
func Replay(rec *Reconstruction, trackers ...Tracker) error {
	for _, t := range trackers {
		if err := t.Start(rec.Start, rec.Initial); err != nil {
			return fmt.Errorf("tracker start %s: %w", rec.Start.Format(DateLayout), err)
		}
	}

	for _, d := range rec.Deltas {
		log.Debug().
			Time("date", d.Window.End).
			Int("opened", len(d.Opened)).
			Int("closed", len(d.Closed)).
			Msg("Applying step")
		for _, t := range trackers {
			if err := t.Step(d.Window.End, d.Opened, d.Closed); err != nil {
				return fmt.Errorf("tracker step %s: %w", d.Window.End.Format(DateLayout), err)
			}
		}
	}
	return nil
}

// Run fetches the history of q over [start, end) in steps of stepDays and
// drives trackers through it. Trackers are only invoked once every fetch
// has succeeded.
func (e *Engine) Run(ctx context.Context, q query.Query, start, end time.Time, stepDays int, trackers ...Tracker) error {
	rec, err := e.Fetch(ctx, q, start, end, stepDays)
	if err != nil {
		return err
	}
	return Replay(rec, trackers...)
}
