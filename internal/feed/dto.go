package feed

import (
	"encoding/xml"
	"time"
)

// IssuesNamespace is the XML namespace of the project-hosting issue extensions.
const IssuesNamespace = "http://schemas.google.com/projecthosting/issues/2009"

// FeedDTO is the top-level Atom document returned by an issues search.
type FeedDTO struct {
	XMLName      xml.Name   `xml:"feed"`
	TotalResults int        `xml:"totalResults"`
	StartIndex   int        `xml:"startIndex"`
	Links        []LinkDTO  `xml:"link"`
	Entries      []EntryDTO `xml:"entry"`
}

// LinkDTO is an Atom link; rel="next" points at the following page.
type LinkDTO struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// EntryDTO is a single issue entry. Only the issues-namespace id is read; the
// Atom <id> is a URL and is ignored.
type EntryDTO struct {
	ID         string    `xml:"http://schemas.google.com/projecthosting/issues/2009 id"`
	Title      string    `xml:"title"`
	Published  string    `xml:"published"`
	Updated    string    `xml:"updated"`
	ClosedDate string    `xml:"closedDate"`
	Labels     []string  `xml:"label"`
	Owner      *OwnerDTO `xml:"owner"`
	Stars      string    `xml:"stars"`
	State      string    `xml:"state"`
	Status     string    `xml:"status"`
}

// OwnerDTO identifies the issue owner.
type OwnerDTO struct {
	Username string `xml:"username"`
}

// NextLink returns the href of the rel="next" link, if any.
func (f FeedDTO) NextLink() string {
	for _, l := range f.Links {
		if l.Rel == "next" {
			return l.Href
		}
	}
	return ""
}

// ParseTime is a helper for the feed's RFC 3339 timestamps (fractional seconds allowed).
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
