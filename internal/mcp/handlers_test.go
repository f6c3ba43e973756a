package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"issue-history/internal/config"
	"issue-history/internal/issue"
	"issue-history/internal/query"

	"github.com/google/go-cmp/cmp"
)

type fakeBackend struct {
	results map[string][]issue.Issue
	count   int
	err     error
}

func (f *fakeBackend) FetchAll(_ context.Context, q query.Query) ([]issue.Issue, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results[q.String()], nil
}

func (f *fakeBackend) Count(_ context.Context, _ query.Query) (int, error) {
	return f.count, f.err
}

func newTestServer(b *fakeBackend, charts bool) *Server {
	return NewServer(&config.AppConfig{Concurrency: 2, EnableMermaidCharts: charts}, b, "test")
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ids(list ...string) []issue.Issue {
	out := make([]issue.Issue, 0, len(list))
	for _, id := range list {
		out = append(out, issue.Issue{ID: id, Labels: []string{"Pri-2"}})
	}
	return out
}

// roundTrip sends requests through Serve and decodes every response line.
func roundTrip(t *testing.T, s *Server, requests ...string) []JSONRPCResponse {
	t.Helper()
	var out bytes.Buffer
	if err := s.Serve(context.Background(), strings.NewReader(strings.Join(requests, "\n")), &out); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	var responses []JSONRPCResponse
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp JSONRPCResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("bad response line %q: %v", line, err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func toolText(t *testing.T, resp JSONRPCResponse) string {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error response: %v", resp.Error)
	}
	result := resp.Result.(map[string]any)
	content := result["content"].([]any)
	return content[0].(map[string]any)["text"].(string)
}

func TestServe_InitializeListAndNotifications(t *testing.T) {
	s := newTestServer(&fakeBackend{}, false)
	responses := roundTrip(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
	)

	if len(responses) != 3 {
		t.Fatalf("got %d responses, want 3", len(responses))
	}

	tools := responses[1].Result.(map[string]any)["tools"].([]any)
	var names []string
	for _, tool := range tools {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	if diff := cmp.Diff([]string{"count_issues", "group_issues", "issue_history"}, names); diff != "" {
		t.Errorf("tools mismatch (-want +got):\n%s", diff)
	}

	errRes := responses[2].Error.(map[string]any)
	if errRes["code"].(float64) != -32601 {
		t.Errorf("unknown method code = %v, want -32601", errRes["code"])
	}
}

func TestHandleCountIssues(t *testing.T) {
	s := newTestServer(&fakeBackend{count: 42}, false)
	responses := roundTrip(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"count_issues","arguments":{"project":"chromium","label":"Cr-UI"}}}`,
	)

	var got map[string]any
	if err := json.Unmarshal([]byte(toolText(t, responses[0])), &got); err != nil {
		t.Fatal(err)
	}
	if got["count"].(float64) != 42 || got["query"] != "chromium?can=open&label=Cr-UI" {
		t.Errorf("count_issues = %v", got)
	}
}

func TestHandleGroupIssues(t *testing.T) {
	q := query.New("chromium")
	backend := &fakeBackend{results: map[string][]issue.Issue{
		q.String(): {
			{ID: "1", Labels: []string{"Pri-1"}},
			{ID: "2", Labels: []string{"Pri-1", issue.LaunchLabel}},
			{ID: "3"},
			{ID: "4", Labels: []string{"Pri-1"}},
		},
	}}
	s := newTestServer(backend, false)

	data, err := s.handleGroupIssues(context.Background(), query.Options{Project: "chromium"}, "priority", 2)
	if err != nil {
		t.Fatalf("handleGroupIssues() error = %v", err)
	}
	res := data.(GroupResult)

	want := []Group{
		{Key: "1", Count: 3, IDs: []string{"1", "2"}},
		{Key: "None", Count: 1, IDs: []string{"3"}},
	}
	if diff := cmp.Diff(want, res.Groups); diff != "" {
		t.Errorf("Groups mismatch (-want +got):\n%s", diff)
	}
	if res.Summary.Issues != 3 || res.Summary.Launches != 1 {
		t.Errorf("Summary = %+v, want 3 issues and 1 launch", res.Summary)
	}
}

func TestHandleGroupIssues_InvalidArguments(t *testing.T) {
	s := newTestServer(&fakeBackend{}, false)
	tests := []struct {
		name     string
		opts     query.Options
		property string
	}{
		{"UnknownProperty", query.Options{Project: "chromium"}, "severity"},
		{"MissingProject", query.Options{}, "owner"},
		{"BadCan", query.Options{Project: "chromium", Can: "closed"}, "owner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleGroupIssues(context.Background(), tt.opts, tt.property, 0)
			if !errors.Is(err, issue.ErrInvalidArgument) {
				t.Errorf("handleGroupIssues() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestHandleIssueHistory(t *testing.T) {
	base := query.New("chromium")
	start := day(2024, 1, 1)
	backend := &fakeBackend{results: make(map[string][]issue.Issue)}
	set := func(q query.Query, issues []issue.Issue) { backend.results[q.String()] = issues }
	set(base.All().OpenedBefore(start).ClosedAfter(start), ids("1", "2"))
	set(base.OpenedBefore(start), ids("3"))
	set(base.OpenedBetween(day(2024, 1, 1), day(2024, 1, 8)), ids("4"))
	set(base.ClosedBetween(day(2024, 1, 1), day(2024, 1, 8)), ids("2"))
	set(base.ClosedBetween(day(2024, 1, 8), day(2024, 1, 15)), ids("4"))
	s := newTestServer(backend, true)

	data, err := s.handleIssueHistory(context.Background(), query.Options{Project: "chromium"}, "2024-01-01", "2024-01-15", 7, "")
	if err != nil {
		t.Fatalf("handleIssueHistory() error = %v", err)
	}
	res := data.(HistoryResult)

	want := []HistoryStep{
		{Date: "2024-01-01", Counts: []int{3}, Fixed: 0, New: 0},
		{Date: "2024-01-08", Counts: []int{3}, Fixed: 1, New: 1},
		{Date: "2024-01-15", Counts: []int{2}, Fixed: 1, New: 0},
	}
	if diff := cmp.Diff(want, res.Steps); diff != "" {
		t.Errorf("Steps mismatch (-want +got):\n%s", diff)
	}
	if res.GroupBy != "priority" {
		t.Errorf("GroupBy = %q, want priority", res.GroupBy)
	}
	if !strings.Contains(res.Charts["grid"], "xychart-beta") {
		t.Errorf("grid chart missing: %q", res.Charts["grid"])
	}
}

func TestHandleIssueHistory_DistinctGroupsSameLabel(t *testing.T) {
	base := query.New("chromium")
	start := day(2024, 1, 1)
	backend := &fakeBackend{results: make(map[string][]issue.Issue)}
	// A literal "None" status must not merge with the missing-status group.
	backend.results[base.OpenedBefore(start).String()] = []issue.Issue{
		{ID: "1", Status: "None"},
		{ID: "2"},
		{ID: "3"},
	}
	s := newTestServer(backend, false)

	data, err := s.handleIssueHistory(context.Background(), query.Options{Project: "chromium"}, "2024-01-01", "2024-01-08", 7, "status")
	if err != nil {
		t.Fatalf("handleIssueHistory() error = %v", err)
	}
	res := data.(HistoryResult)

	if diff := cmp.Diff([]string{"None", "None"}, res.Keys); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
	for _, step := range res.Steps {
		if diff := cmp.Diff([]int{1, 2}, step.Counts); diff != "" {
			t.Errorf("step %s counts mismatch (-want +got):\n%s", step.Date, diff)
		}
	}
}

func TestHandleIssueHistory_Errors(t *testing.T) {
	boom := errors.New("feed down")
	s := newTestServer(&fakeBackend{err: boom}, false)
	opts := query.Options{Project: "chromium"}

	if _, err := s.handleIssueHistory(context.Background(), opts, "", "", 7, ""); !errors.Is(err, issue.ErrInvalidArgument) {
		t.Errorf("missing start: error = %v, want ErrInvalidArgument", err)
	}
	if _, err := s.handleIssueHistory(context.Background(), opts, "01/02/2024", "", 7, ""); !errors.Is(err, issue.ErrInvalidArgument) {
		t.Errorf("bad start: error = %v, want ErrInvalidArgument", err)
	}
	if _, err := s.handleIssueHistory(context.Background(), opts, "2024-01-01", "2024-02-01", -1, ""); !errors.Is(err, issue.ErrInvalidArgument) {
		t.Errorf("negative step: error = %v, want ErrInvalidArgument", err)
	}
	if _, err := s.handleIssueHistory(context.Background(), opts, "2024-01-01", "2024-02-01", 7, ""); !errors.Is(err, boom) {
		t.Errorf("fetch failure: error = %v, want %v", err, boom)
	}
}
