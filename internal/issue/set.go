package issue

import (
	"fmt"
	"maps"
	"slices"
)

// Set is a collection of issues keyed by id.
type Set struct {
	issues map[string]Issue
}

// NewSet builds a set from issues. Later duplicates overwrite earlier ones.
func NewSet(issues []Issue) (*Set, error) {
	s := &Set{issues: make(map[string]Issue, len(issues))}
	for _, iss := range issues {
		if err := s.Add(iss); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add inserts or overwrites iss.
func (s *Set) Add(iss Issue) error {
	if iss.ID == "" {
		return fmt.Errorf("%w: %q", ErrMissingIdentifier, iss.Title)
	}
	s.issues[iss.ID] = iss
	return nil
}

// Remove deletes iss by id. Removing an absent issue is a no-op.
func (s *Set) Remove(iss Issue) error {
	if iss.ID == "" {
		return fmt.Errorf("%w: %q", ErrMissingIdentifier, iss.Title)
	}
	delete(s.issues, iss.ID)
	return nil
}

// Contains reports whether id is in the set.
func (s *Set) Contains(id string) bool {
	_, ok := s.issues[id]
	return ok
}

// Len returns the number of issues in the set.
func (s *Set) Len() int {
	return len(s.issues)
}

// List returns the members ordered by id.
func (s *Set) List() []Issue {
	ids := s.IDs()
	out := make([]Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.issues[id])
	}
	return out
}

// IDs returns the member ids in sorted order.
func (s *Set) IDs() []string {
	ids := slices.Collect(maps.Keys(s.issues))
	slices.SortFunc(ids, CompareIDs)
	return ids
}

// Dedupe drops later issues whose id was already seen. Issues without an id are kept.
func Dedupe(issues []Issue) []Issue {
	seen := make(map[string]bool, len(issues))
	out := make([]Issue, 0, len(issues))
	for _, iss := range issues {
		if iss.ID != "" {
			if seen[iss.ID] {
				continue
			}
			seen[iss.ID] = true
		}
		out = append(out, iss)
	}
	return out
}
