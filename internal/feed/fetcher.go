package feed

import (
	"context"
	"fmt"

	"issue-history/internal/issue"
	"issue-history/internal/query"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultPageSize is the feed's page size when none is configured.
	DefaultPageSize = 25
	// DefaultConcurrency caps parallel page requests.
	DefaultConcurrency = 10
	// MaxPages stops runaway pagination from a malformed feed.
	MaxPages = 4000
)

// Fetcher resolves whole queries to complete result sets.
type Fetcher struct {
	client      Client
	pageSize    int
	concurrency int
}

// NewFetcher wraps a page client. Non-positive sizes fall back to the defaults.
func NewFetcher(client Client, pageSize, concurrency int) *Fetcher {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Fetcher{client: client, pageSize: pageSize, concurrency: concurrency}
}

// Count returns the total number of issues matching q.
func (f *Fetcher) Count(ctx context.Context, q query.Query) (int, error) {
	page, err := f.client.FetchPage(ctx, q.Request(0, 1))
	if err != nil {
		return 0, wrapFetch("count", q.String(), err)
	}
	return page.Total, nil
}

// FetchAll retrieves every issue matching q. The first page reveals the total
// and the page length the feed actually serves; the remaining pages are fetched
// concurrently with that stride and concatenated in offset order, then
// deduplicated by id. A short result is completed page by page.
func (f *Fetcher) FetchAll(ctx context.Context, q query.Query) ([]issue.Issue, error) {
	first, err := f.client.FetchPage(ctx, q.Request(0, f.pageSize))
	if err != nil {
		return nil, wrapFetch("fetch all", q.String(), err)
	}

	if first.Total <= len(first.Issues) {
		if first.Total == 0 && first.Next != "" && len(first.Issues) > 0 {
			return f.followPages(ctx, q, first)
		}
		return issue.Dedupe(first.Issues), nil
	}

	// Feeds may cap max-results below the requested size.
	stride := f.pageSize
	if n := len(first.Issues); n > 0 && n < stride {
		stride = n
	}

	remaining := (first.Total - len(first.Issues) + stride - 1) / stride
	if remaining+1 > MaxPages {
		return nil, &FetchError{Op: "fetch all", URL: q.String(), Err: fmt.Errorf("result set of %d spans more than %d pages", first.Total, MaxPages)}
	}

	log.Debug().
		Str("query", q.String()).
		Int("total", first.Total).
		Int("stride", stride).
		Int("pages", remaining+1).
		Msg("Fetching remaining pages")

	pages := make([][]issue.Issue, remaining+1)
	pages[0] = first.Issues

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i := 1; i <= remaining; i++ {
		offset := len(first.Issues) + (i-1)*stride
		g.Go(func() error {
			page, err := f.client.FetchPage(gctx, q.Request(offset, stride))
			if err != nil {
				return err
			}
			pages[i] = page.Issues
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, wrapFetch("fetch all", q.String(), err)
	}

	var all []issue.Issue
	for i, p := range pages {
		if i < remaining && len(p) < stride {
			// A short page in the middle leaves a gap after it.
			all = append(all, p...)
			return f.completePages(ctx, q, all, first.Total)
		}
		all = append(all, p...)
	}
	if len(all) < first.Total {
		return f.completePages(ctx, q, all, first.Total)
	}
	return issue.Dedupe(all), nil
}

// completePages fetches sequentially from the end of all until total is reached
// or the feed runs dry. Running dry short of total is an error.
func (f *Fetcher) completePages(ctx context.Context, q query.Query, all []issue.Issue, total int) ([]issue.Issue, error) {
	log.Warn().
		Str("query", q.String()).
		Int("total", total).
		Int("fetched", len(all)).
		Msg("Short page in parallel fetch, continuing sequentially")

	for n := 0; len(all) < total; n++ {
		if n >= MaxPages {
			return nil, &FetchError{Op: "fetch all", URL: q.String(), Err: fmt.Errorf("pagination limit exceeded after %d pages", MaxPages)}
		}
		page, err := f.client.FetchPage(ctx, q.Request(len(all), f.pageSize))
		if err != nil {
			return nil, wrapFetch("fetch all", q.String(), err)
		}
		if len(page.Issues) == 0 {
			return nil, &FetchError{Op: "fetch all", URL: q.String(), Err: fmt.Errorf("feed returned %d of %d issues", len(all), total)}
		}
		all = append(all, page.Issues...)
	}
	return issue.Dedupe(all), nil
}

// followPages walks a feed that does not report totals, one page at a time.
func (f *Fetcher) followPages(ctx context.Context, q query.Query, first *Page) ([]issue.Issue, error) {
	all := first.Issues
	page := first
	for n := 1; page.Next != "" && len(page.Issues) > 0; n++ {
		if n >= MaxPages {
			return nil, &FetchError{Op: "fetch all", URL: q.String(), Err: fmt.Errorf("pagination limit exceeded after %d pages", MaxPages)}
		}
		next, err := f.client.FetchPage(ctx, q.Request(len(all), f.pageSize))
		if err != nil {
			return nil, wrapFetch("fetch all", q.String(), err)
		}
		all = append(all, next.Issues...)
		page = next
	}
	return issue.Dedupe(all), nil
}
