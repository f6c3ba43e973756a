package query

import (
	"errors"
	"slices"
	"testing"
	"time"

	"issue-history/internal/issue"
)

var jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNew_Defaults(t *testing.T) {
	q := New("chromium")
	if q.Can() != CanOpen {
		t.Errorf("Can() = %q, want open", q.Can())
	}
	if q.Label() != "" || len(q.Clauses()) != 0 {
		t.Errorf("new query should have no label or clauses: %v", q)
	}
}

func TestWithLabel_DoesNotMutateReceiver(t *testing.T) {
	q1 := New("chromium")
	q2 := q1.WithLabel("x")

	if q1.Label() != "" {
		t.Errorf("q1.Label() = %q, want empty", q1.Label())
	}
	if q2.Label() != "x" {
		t.Errorf("q2.Label() = %q, want x", q2.Label())
	}
}

func TestWithClause_SiblingsDoNotShareStorage(t *testing.T) {
	base := New("p").WithClause("a").WithClause("b").WithClause("c")
	left := base.WithClause("left")
	right := base.WithClause("right")

	if got := left.Clauses(); !slices.Equal(got, []string{"a", "b", "c", "left"}) {
		t.Errorf("left.Clauses() = %v", got)
	}
	if got := right.Clauses(); !slices.Equal(got, []string{"a", "b", "c", "right"}) {
		t.Errorf("right.Clauses() = %v", got)
	}
	if got := base.Clauses(); len(got) != 3 {
		t.Errorf("base.Clauses() = %v, want 3 clauses", got)
	}
}

func TestTransformations_AreIdempotent(t *testing.T) {
	q := New("p").WithLabel("Cr-UI")

	tests := []struct {
		name string
		fn   func(Query) Query
	}{
		{"WithLabel", func(q Query) Query { return q.WithLabel("x") }},
		{"WithClause", func(q Query) Query { return q.WithClause("owner:me") }},
		{"OpenedBetween", func(q Query) Query { return q.OpenedBetween(jan1, jan1.AddDate(0, 0, 7)) }},
		{"ClosedAfter", func(q Query) Query { return q.ClosedAfter(jan1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := tt.fn(q), tt.fn(q)
			if a.String() != b.String() {
				t.Errorf("serializations differ: %s vs %s", a, b)
			}
			if q.String() != New("p").WithLabel("Cr-UI").String() {
				t.Errorf("receiver mutated: %s", q)
			}
		})
	}
}

func TestWithCan(t *testing.T) {
	q, err := New("p").WithCan(CanStarred)
	if err != nil || q.Can() != CanStarred {
		t.Fatalf("WithCan(starred) = %q, %v", q.Can(), err)
	}

	_, err = New("p").WithCan(Can("closed"))
	if !errors.Is(err, issue.ErrInvalidArgument) {
		t.Errorf("WithCan(closed) error = %v, want ErrInvalidArgument", err)
	}

	if _, err := ParseCan("to-verify"); err != nil {
		t.Errorf("ParseCan(to-verify) error = %v", err)
	}
	if _, err := ParseCan("everything"); !errors.Is(err, issue.ErrInvalidArgument) {
		t.Errorf("ParseCan(everything) error = %v, want ErrInvalidArgument", err)
	}
}

func TestDateHelpers(t *testing.T) {
	end := jan1.AddDate(0, 0, 7)

	tests := []struct {
		name    string
		q       Query
		can     Can
		clauses []string
	}{
		{"OpenedBefore keeps can", New("p").OpenedBefore(jan1), CanOpen, []string{"opened-before:2024/01/01"}},
		{"ClosedAfter widens", New("p").ClosedAfter(jan1), CanAll, []string{"closed-after:2024/01/01"}},
		{"OpenedBetween", New("p").OpenedBetween(jan1, end), CanAll, []string{"opened-after:2024/01/01", "opened-before:2024/01/08"}},
		{"ClosedBetween", New("p").ClosedBetween(jan1, end), CanAll, []string{"closed-after:2024/01/01", "closed-before:2024/01/08"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.q.Can() != tt.can {
				t.Errorf("Can() = %q, want %q", tt.q.Can(), tt.can)
			}
			if got := tt.q.Clauses(); !slices.Equal(got, tt.clauses) {
				t.Errorf("Clauses() = %v, want %v", got, tt.clauses)
			}
		})
	}
}

func TestRequest(t *testing.T) {
	req := New("chromium").WithLabel("Cr-UI").OpenedBefore(jan1).Request(50, 25)

	if got := req.Params.Get("start-index"); got != "51" {
		t.Errorf("start-index = %q, want 51", got)
	}
	if got := req.Params.Get("max-results"); got != "25" {
		t.Errorf("max-results = %q, want 25", got)
	}
	if got := req.Params.Get("q"); got != "opened-before:2024/01/01" {
		t.Errorf("q = %q", got)
	}

	want := "https://code.google.com/feeds/issues/p/chromium/issues/full?can=open&label=Cr-UI&max-results=25&q=opened-before%3A2024%2F01%2F01&start-index=51"
	if got := req.URL("https://code.google.com/"); got != want {
		t.Errorf("URL() = %s\nwant %s", got, want)
	}
}

func TestOptionsBuild(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{"ProjectOnly", Options{Project: "chromium"}, "chromium?can=open", false},
		{"Everything", Options{Project: " v8 ", Can: "all", Label: "Type-Bug", Text: "status:Fixed"}, "v8?can=all&label=Type-Bug&q=status%3AFixed", false},
		{"MissingProject", Options{Can: "all"}, "", true},
		{"BadCan", Options{Project: "chromium", Can: "closed"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.Build()
			if tt.wantErr {
				if !errors.Is(err, issue.ErrInvalidArgument) {
					t.Errorf("Build() error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("Build() = %s, want %s", got, tt.want)
			}
		})
	}
}
