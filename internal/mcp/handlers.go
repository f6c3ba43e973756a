package mcp

import (
	"context"
	"fmt"
	"time"

	"issue-history/internal/history"
	"issue-history/internal/issue"
	"issue-history/internal/query"
	"issue-history/internal/stats"
	"issue-history/internal/visuals"

	"github.com/rs/zerolog/log"
)

// Group is one bucket of a grouping result.
type Group struct {
	Key   string   `json:"key"`
	Count int      `json:"count"`
	IDs   []string `json:"ids,omitempty"`
}

// GroupResult is the response of group_issues.
type GroupResult struct {
	Query    string            `json:"query"`
	Property string            `json:"property"`
	Summary  stats.Summary     `json:"summary"`
	Groups   []Group           `json:"groups"`
	Aging    stats.AgingResult `json:"aging"`
}

// HistoryStep is one row of the reconstructed history.
// Counts[i] is the number of open issues in group Keys[i] of the result.
type HistoryStep struct {
	Date   string `json:"date"`
	Counts []int  `json:"counts"`
	Fixed  int    `json:"fixed"`
	New    int    `json:"new"`
}

// HistoryResult is the response of issue_history.
type HistoryResult struct {
	Query    string              `json:"query"`
	GroupBy  string              `json:"group_by"`
	StepDays int                 `json:"step_days"`
	Keys     []string            `json:"keys"`
	Steps    []HistoryStep       `json:"steps"`
	Cadence  stats.CadenceResult `json:"cadence"`
	Charts   map[string]string   `json:"charts,omitempty"`
}

func (s *Server) handleCountIssues(ctx context.Context, opts query.Options) (any, error) {
	q, err := opts.Build()
	if err != nil {
		return nil, err
	}
	n, err := s.backend.Count(ctx, q)
	if err != nil {
		return nil, err
	}
	return map[string]any{"query": q.String(), "count": n}, nil
}

func (s *Server) handleGroupIssues(ctx context.Context, opts query.Options, property string, hint int) (any, error) {
	q, err := opts.Build()
	if err != nil {
		return nil, err
	}
	prop, err := issue.ParseProperty(property)
	if err != nil {
		return nil, err
	}
	if hint <= 0 {
		hint = 3
	}

	issues, err := s.backend.FetchAll(ctx, q)
	if err != nil {
		return nil, err
	}
	log.Info().Str("query", q.String()).Int("issues", len(issues)).Str("property", string(prop)).Msg("Grouping issues")

	groups := issue.GroupBy(issues, prop)
	res := GroupResult{
		Query:    q.String(),
		Property: string(prop),
		Summary:  stats.Summarize("All", issues),
		Groups:   make([]Group, 0, len(groups)),
		Aging:    stats.CalculateAging(issues, time.Now()),
	}
	// Per-issue ages are noise for a grouping answer.
	res.Aging.Items = nil

	for _, key := range issue.SortedKeys(groups) {
		ids := issue.IDs(groups[key])
		res.Groups = append(res.Groups, Group{
			Key:   key.String(),
			Count: len(ids),
			IDs:   ids[:min(hint, len(ids))],
		})
	}
	return res, nil
}

func (s *Server) handleIssueHistory(ctx context.Context, opts query.Options, startDate, endDate string, stepDays int, groupBy string) (any, error) {
	q, err := opts.Build()
	if err != nil {
		return nil, err
	}
	if startDate == "" {
		return nil, fmt.Errorf("%w: start_date is required", issue.ErrInvalidArgument)
	}
	start, err := parseDate("start_date", startDate, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", issue.ErrInvalidArgument, err)
	}
	end, err := parseDate("end_date", endDate, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", issue.ErrInvalidArgument, err)
	}
	if stepDays == 0 {
		stepDays = 7
	}
	if groupBy == "" {
		groupBy = string(issue.PropPriority)
	}
	prop, err := issue.ParseProperty(groupBy)
	if err != nil {
		return nil, err
	}

	rec, err := s.engine.Fetch(ctx, q, start, end, stepDays)
	if err != nil {
		return nil, err
	}

	grid := history.NewGridTracker(prop)
	changes := history.NewChangeTracker()
	if err := history.Replay(rec, grid, changes); err != nil {
		return nil, err
	}

	res := HistoryResult{
		Query:    q.String(),
		GroupBy:  string(prop),
		StepDays: stepDays,
		Cadence:  stats.CalculateCadence(rec.Deltas),
	}
	keys := grid.Keys()
	for _, k := range keys {
		res.Keys = append(res.Keys, k.String())
	}

	gridSnaps := grid.Snapshots()
	changeSnaps := changes.Snapshots()
	for i, gs := range gridSnaps {
		step := HistoryStep{
			Date:   gs.Date.Format(dateLayout),
			Counts: make([]int, 0, len(keys)),
			Fixed:  changeSnaps[i].Fixed,
			New:    changeSnaps[i].New,
		}
		for _, k := range keys {
			step.Counts = append(step.Counts, gs.Counts[k])
		}
		res.Steps = append(res.Steps, step)
	}

	if s.cfg.EnableMermaidCharts {
		res.Charts = map[string]string{
			"grid":    visuals.GenerateGridChart(grid),
			"changes": visuals.GenerateChangeChart(changes),
			"cadence": visuals.GenerateCadenceChart(res.Cadence),
		}
	}
	return res, nil
}
