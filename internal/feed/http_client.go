package feed

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"issue-history/internal/query"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// HTTPClient reads pages of the Atom issue feed over HTTP.
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client

	throttleMu  sync.Mutex
	lastRequest time.Time

	// Session Cache
	cache      map[string]*cacheEntry
	cacheMutex sync.Mutex
}

type cacheEntry struct {
	Value       *Page
	Expiration  time.Time
	AccessCount int
	OriginalTTL time.Duration
}

const maxResponseSize = 50 * 1024 * 1024

// NewHTTPClient creates a feed client, filling unset configuration with defaults.
func NewHTTPClient(cfg Config) *HTTPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = 500 * time.Millisecond
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &HTTPClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache: make(map[string]*cacheEntry),
	}
}

// WithHTTPClient swaps the underlying transport, mainly for tests.
func (c *HTTPClient) WithHTTPClient(hc *http.Client) *HTTPClient {
	c.httpClient = hc
	return c
}

func (c *HTTPClient) getFromCache(key string) (*Page, bool) {
	if c.cfg.CacheTTL <= 0 {
		return nil, false
	}

	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	entry, ok := c.cache[key]
	if !ok {
		log.Trace().Str("key", key).Msg("Cache miss")
		return nil, false
	}

	if time.Now().After(entry.Expiration) {
		delete(c.cache, key)
		return nil, false
	}
	log.Debug().Str("key", key).Msg("Cache hit")

	// Sliding window extension
	if entry.AccessCount < 6 {
		entry.Expiration = time.Now().Add(entry.OriginalTTL)
		entry.AccessCount++
	}

	return entry.Value, true
}

func (c *HTTPClient) addToCache(key string, value *Page) {
	if c.cfg.CacheTTL <= 0 {
		return
	}

	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	c.cache[key] = &cacheEntry{
		Value:       value,
		Expiration:  time.Now().Add(c.cfg.CacheTTL),
		OriginalTTL: c.cfg.CacheTTL,
		AccessCount: 1,
	}
}

// throttle reserves the next request slot so concurrent workers stay RequestDelay apart.
func (c *HTTPClient) throttle(ctx context.Context) error {
	if c.cfg.RequestDelay <= 0 {
		return nil
	}

	c.throttleMu.Lock()
	wait := c.cfg.RequestDelay - time.Since(c.lastRequest)
	if wait < 0 {
		wait = 0
	}
	c.lastRequest = time.Now().Add(wait)
	c.throttleMu.Unlock()

	if wait == 0 {
		return nil
	}
	log.Debug().Dur("wait", wait).Msg("Throttling feed request")

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *HTTPClient) authenticateRequest(req *http.Request) {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
}

func (c *HTTPClient) newBackOff(ctx context.Context) backoff.BackOff {
	// BackOff implementations are stateful; always build a fresh one per request.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.RetryInterval
	bo.MaxElapsedTime = 2 * time.Minute
	return backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.cfg.MaxRetries)), ctx)
}

// FetchPage retrieves and decodes one page of results, retrying transient failures.
func (c *HTTPClient) FetchPage(ctx context.Context, req query.Request) (*Page, error) {
	pageURL := req.URL(c.cfg.BaseURL)
	if page, ok := c.getFromCache(pageURL); ok {
		return page, nil
	}

	attempt := 0
	var page *Page
	err := backoff.Retry(func() error {
		attempt++
		p, err := c.fetchOnce(ctx, pageURL)
		if err == nil {
			page = p
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("url", pageURL).Msg("Retrying feed request")
		return err
	}, c.newBackOff(ctx))
	if err != nil {
		return nil, wrapFetch("fetch", pageURL, err)
	}

	c.addToCache(pageURL, page)
	return page, nil
}

func (c *HTTPClient) fetchOnce(ctx context.Context, pageURL string) (*Page, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	log.Debug().Str("url", pageURL).Msg("Requesting issues page")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{Op: "build request", URL: pageURL, Err: err}
	}
	req.Header.Set("Accept", "application/atom+xml")
	c.authenticateRequest(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "get", URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{Op: "get", URL: pageURL, StatusCode: resp.StatusCode, Err: statusError(resp)}
	}

	var doc FeedDTO
	if err := xml.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&doc); err != nil {
		return nil, &FetchError{Op: "decode", URL: pageURL, Err: fmt.Errorf("malformed feed: %w", err)}
	}

	return &Page{
		Total:  doc.TotalResults,
		Issues: MapFeed(doc),
		Next:   doc.NextLink(),
	}, nil
}

func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.New("authentication failed, check FEED_TOKEN")
	case http.StatusNotFound:
		return errors.New("project feed not found")
	case http.StatusTooManyRequests:
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if secs, err := strconv.Atoi(retryAfter); err == nil {
				return fmt.Errorf("rate limit exceeded, retry after %ds", secs)
			}
		}
		return errors.New("rate limit exceeded")
	default:
		return fmt.Errorf("feed returned %s", http.StatusText(resp.StatusCode))
	}
}

// isRetryable treats transport errors, 429 and 5xx as transient.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	switch {
	case fe.Op == "get" && fe.StatusCode == 0:
		return true
	case fe.StatusCode == http.StatusTooManyRequests:
		return true
	case fe.StatusCode >= 500:
		return true
	default:
		return false
	}
}
