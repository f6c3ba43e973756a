package query

import (
	"fmt"
	"net/url"
	"strings"
)

// Request is a single page of a query, ready to be sent to the feed.
type Request struct {
	Project string
	Offset  int
	Limit   int
	Params  url.Values
}

// Path returns the feed path for the request's project.
func (r Request) Path() string {
	return fmt.Sprintf("/feeds/issues/p/%s/issues/full", url.PathEscape(r.Project))
}

// URL joins the request onto base (e.g. https://code.google.com).
func (r Request) URL(base string) string {
	return strings.TrimRight(base, "/") + r.Path() + "?" + r.Params.Encode()
}
