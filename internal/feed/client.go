package feed

import (
	"context"
	"time"

	"issue-history/internal/issue"
	"issue-history/internal/query"
)

// Page is one page of feed results.
type Page struct {
	// Total is the size of the whole result set as reported by the feed.
	Total  int
	Issues []issue.Issue
	// Next is the feed's continuation link, empty on the last page.
	Next string
}

// Client is the interface for retrieving single pages from the issue feed.
type Client interface {
	FetchPage(ctx context.Context, req query.Request) (*Page, error)
}

// Config holds the connection settings for the issue feed.
type Config struct {
	BaseURL string

	// Token is sent as a bearer token when set.
	Token string

	// Performance Settings
	RequestDelay  time.Duration
	Timeout       time.Duration
	CacheTTL      time.Duration
	MaxRetries    int
	RetryInterval time.Duration
}

// DefaultBaseURL is the host serving the project-hosting issue feeds.
const DefaultBaseURL = "https://code.google.com"

// NewClient creates a new feed client based on the provided configuration.
func NewClient(cfg Config) Client {
	return NewHTTPClient(cfg)
}
