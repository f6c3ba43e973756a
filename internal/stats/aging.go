package stats

import (
	"cmp"
	"slices"
	"time"

	"issue-history/internal/issue"
)

// IssueAge is the age of one issue relative to a reference date.
type IssueAge struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	AgeDays    float64 `json:"age_days"`
	Percentile int     `json:"percentile"`
	IsStale    bool    `json:"is_stale"` // older than the P85 of the set
}

// AgingResult describes how long the issues of a set have been open.
type AgingResult struct {
	Ages  Distribution `json:"ages"`
	Stars Distribution `json:"stars"`
	Items []IssueAge   `json:"items,omitempty"`
}

// CalculateAging computes age and star distributions for issues as of ref.
// Items are ordered oldest first. Issues not open at ref are ignored, and
// issues without an opening date only contribute their stars.
func CalculateAging(issues []issue.Issue, ref time.Time) AgingResult {
	var ages, stars, raw []float64
	var items []IssueAge

	for _, iss := range issues {
		if !iss.OpenAt(ref) {
			continue
		}
		if iss.Stars != nil {
			stars = append(stars, float64(*iss.Stars))
		}
		if iss.Opened.IsZero() {
			continue
		}
		age := iss.AgeDays(ref)
		ages = append(ages, age)
		raw = append(raw, age)
		items = append(items, IssueAge{ID: iss.ID, Title: iss.Title, AgeDays: round1(age)})
	}

	res := AgingResult{
		Ages:  NewDistribution(ages),
		Stars: NewDistribution(stars),
	}

	slices.Sort(ages)
	for i := range items {
		items[i].Percentile = rankPercentile(ages, raw[i])
		items[i].IsStale = raw[i] > res.Ages.P85
	}
	slices.SortStableFunc(items, func(a, b IssueAge) int {
		return cmp.Compare(b.AgeDays, a.AgeDays)
	})
	res.Items = items
	return res
}

// rankPercentile returns the share of sorted values strictly below v, as 0..100.
func rankPercentile(sorted []float64, v float64) int {
	if len(sorted) == 0 {
		return 0
	}
	for i, s := range sorted {
		if s >= v {
			return int(float64(i) / float64(len(sorted)) * 100)
		}
	}
	return 100
}
