package feed

import (
	"strconv"
	"strings"

	"issue-history/internal/issue"

	"github.com/rs/zerolog/log"
)

// MapEntry transforms a feed entry into a domain Issue.
func MapEntry(item EntryDTO) issue.Issue {
	iss := issue.Issue{
		ID:     strings.TrimSpace(item.ID),
		Title:  strings.TrimSpace(item.Title),
		State:  strings.TrimSpace(item.State),
		Status: strings.TrimSpace(item.Status),
	}

	if item.Owner != nil {
		iss.Owner = strings.TrimSpace(item.Owner.Username)
	}

	for _, l := range item.Labels {
		if l = strings.TrimSpace(l); l != "" {
			iss.Labels = append(iss.Labels, l)
		}
	}

	if t, err := ParseTime(item.Published); err == nil {
		iss.Opened = t
	} else if item.Published != "" {
		log.Debug().Str("id", iss.ID).Str("published", item.Published).Msg("Unparseable published date")
	}

	if t, err := ParseTime(item.Updated); err == nil {
		iss.Updated = t
	}

	if item.ClosedDate != "" {
		if t, err := ParseTime(item.ClosedDate); err == nil {
			iss.Closed = &t
		}
	}

	if n, err := strconv.Atoi(strings.TrimSpace(item.Stars)); err == nil {
		iss.Stars = &n
	}

	return iss
}

// MapFeed transforms every entry of a feed document.
func MapFeed(doc FeedDTO) []issue.Issue {
	issues := make([]issue.Issue, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		issues = append(issues, MapEntry(e))
	}
	return issues
}
