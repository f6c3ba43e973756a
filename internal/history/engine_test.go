package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"issue-history/internal/issue"
	"issue-history/internal/query"

	"github.com/google/go-cmp/cmp"
)

// fakeSource answers FetchAll from a table keyed by the query's canonical form.
type fakeSource struct {
	mu      sync.Mutex
	results map[string][]issue.Issue
	fail    map[string]error
	calls   []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		results: make(map[string][]issue.Issue),
		fail:    make(map[string]error),
	}
}

func (s *fakeSource) set(q query.Query, issues ...issue.Issue) {
	s.results[q.String()] = issues
}

func (s *fakeSource) FetchAll(_ context.Context, q query.Query) ([]issue.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := q.String()
	s.calls = append(s.calls, key)
	if err, ok := s.fail[key]; ok {
		return nil, err
	}
	return s.results[key], nil
}

// recordingTracker counts lifecycle calls.
type recordingTracker struct {
	starts int
	steps  []time.Time
}

func (r *recordingTracker) Start(time.Time, []issue.Issue) error {
	r.starts++
	return nil
}

func (r *recordingTracker) Step(date time.Time, _, _ []issue.Issue) error {
	r.steps = append(r.steps, date)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func issues(ids ...string) []issue.Issue {
	out := make([]issue.Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issue.Issue{ID: id})
	}
	return out
}

func TestEngine_Run_ConcreteScenario(t *testing.T) {
	base := query.New("chromium")
	start, end := day(2024, 1, 1), day(2024, 1, 15)

	src := newFakeSource()
	// 1 and 2 were opened before start and closed later; 3 is still open.
	src.set(spanningQuery(base, start), issues("1", "2")...)
	src.set(stillOpenQuery(base, start), issues("3")...)
	src.set(base.OpenedBetween(day(2024, 1, 1), day(2024, 1, 8)), issues("4")...)
	src.set(base.ClosedBetween(day(2024, 1, 1), day(2024, 1, 8)), issues("2")...)
	src.set(base.ClosedBetween(day(2024, 1, 8), day(2024, 1, 15)), issues("4")...)

	grid := NewGridTracker(issue.PropPriority)
	changes := NewChangeTracker()
	if err := NewEngine(src, 4).Run(context.Background(), base, start, end, 7, grid, changes); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if diff := cmp.Diff([]string{"1", "3"}, grid.OpenIDs()); diff != "" {
		t.Errorf("OpenIDs() mismatch (-want +got):\n%s", diff)
	}

	wantChanges := []ChangeSnapshot{
		{Date: day(2024, 1, 1), Fixed: 0, New: 0},
		{Date: day(2024, 1, 8), Fixed: 1, New: 1},
		{Date: day(2024, 1, 15), Fixed: 1, New: 0},
	}
	if diff := cmp.Diff(wantChanges, changes.Snapshots()); diff != "" {
		t.Errorf("ChangeTracker snapshots mismatch (-want +got):\n%s", diff)
	}

	snaps := grid.Snapshots()
	if len(snaps) != 3 {
		t.Fatalf("len(Snapshots()) = %d, want 3", len(snaps))
	}
	wantTotals := []int{3, 3, 2}
	for i, s := range snaps {
		total := 0
		for _, n := range s.Counts {
			total += n
		}
		if total != wantTotals[i] {
			t.Errorf("snapshot %d total = %d, want %d", i, total, wantTotals[i])
		}
	}
}

func TestEngine_Run_InitialSetIsDeduplicated(t *testing.T) {
	base := query.New("chromium")
	start := day(2024, 1, 1)

	src := newFakeSource()
	src.set(spanningQuery(base, start), issues("1", "2")...)
	src.set(stillOpenQuery(base, start), issues("2", "3")...)

	grid := NewGridTracker(issue.PropStatus)
	if err := NewEngine(src, 2).Run(context.Background(), base, start, day(2024, 1, 2), 1, grid); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := grid.Snapshots()[0].Counts[issue.None]; got != 3 {
		t.Errorf("initial count = %d, want 3", got)
	}
}

func TestEngine_Run_FetchFailureDoesNotReachTrackers(t *testing.T) {
	base := query.New("chromium")
	start, end := day(2024, 1, 1), day(2024, 1, 22)

	src := newFakeSource()
	boom := errors.New("feed unavailable")
	src.fail[base.ClosedBetween(day(2024, 1, 8), day(2024, 1, 15)).String()] = boom

	rec := &recordingTracker{}
	err := NewEngine(src, 3).Run(context.Background(), base, start, end, 7, rec)
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	if rec.starts != 0 || len(rec.steps) != 0 {
		t.Errorf("tracker was called: starts=%d steps=%d", rec.starts, len(rec.steps))
	}
}

func TestEngine_Run_RejectsNonPositiveStep(t *testing.T) {
	src := newFakeSource()
	for _, step := range []int{0, -7} {
		err := NewEngine(src, 1).Run(context.Background(), query.New("p"), day(2024, 1, 1), day(2024, 2, 1), step)
		if !errors.Is(err, issue.ErrInvalidArgument) {
			t.Errorf("Run(step=%d) error = %v, want ErrInvalidArgument", step, err)
		}
	}
	if len(src.calls) != 0 {
		t.Errorf("source called %d times, want 0", len(src.calls))
	}
}

func TestEngine_Run_StepsUseWindowEndDates(t *testing.T) {
	rec := &recordingTracker{}
	err := NewEngine(newFakeSource(), 2).Run(context.Background(), query.New("p"), day(2024, 1, 1), day(2024, 1, 10), 4, rec)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []time.Time{day(2024, 1, 5), day(2024, 1, 9), day(2024, 1, 13)}
	if diff := cmp.Diff(want, rec.steps); diff != "" {
		t.Errorf("step dates mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_Fetch_SnapsStartToDay(t *testing.T) {
	base := query.New("chromium").WithLabel("Cr-UI")
	start := time.Date(2024, 6, 3, 17, 30, 0, 0, time.UTC)

	src := newFakeSource()
	src.set(spanningQuery(base, day(2024, 6, 3)), issues("5", "6")...)
	src.set(stillOpenQuery(base, day(2024, 6, 3)), issues("6", "7")...)

	rec, err := NewEngine(src, 0).Fetch(context.Background(), base, start, day(2024, 6, 4), 1)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !rec.Start.Equal(day(2024, 6, 3)) {
		t.Errorf("Fetch() start = %v, want %v", rec.Start, day(2024, 6, 3))
	}
	if diff := cmp.Diff([]string{"5", "6", "7"}, issue.IDs(rec.Initial)); diff != "" {
		t.Errorf("Fetch() initial mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanWindows(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		step  int
		want  int
	}{
		{"ExactFit", day(2024, 1, 1), day(2024, 1, 15), 7, 2},
		{"Overshoot", day(2024, 1, 1), day(2024, 1, 16), 7, 3},
		{"EmptyRange", day(2024, 1, 1), day(2024, 1, 1), 7, 0},
		{"EndBeforeStart", day(2024, 2, 1), day(2024, 1, 1), 7, 0},
		{"Daily", day(2024, 1, 1), day(2024, 1, 4), 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanWindows(tt.start, tt.end, tt.step)
			if err != nil {
				t.Fatalf("PlanWindows() error = %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("len(PlanWindows()) = %d, want %d", len(got), tt.want)
			}
			for i := 1; i < len(got); i++ {
				if !got[i].Start.Equal(got[i-1].End) {
					t.Errorf("window %d starts at %v, previous ends at %v", i, got[i].Start, got[i-1].End)
				}
			}
		})
	}
}
