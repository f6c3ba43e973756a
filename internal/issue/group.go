package issue

import (
	"maps"
	"slices"
)

// GroupBy buckets issues by the value of p. Issues lacking the property land in the None group.
func GroupBy(issues []Issue, p Property) map[Value][]Issue {
	groups := make(map[Value][]Issue)
	for _, iss := range issues {
		v := Extract(iss, p)
		groups[v] = append(groups[v], iss)
	}
	return groups
}

// CountBy is GroupBy reduced to group sizes.
func CountBy(issues []Issue, p Property) map[Value]int {
	counts := make(map[Value]int)
	for _, iss := range issues {
		counts[Extract(iss, p)]++
	}
	return counts
}

// SortedKeys returns the keys of m ordered by Compare.
func SortedKeys[T any](m map[Value]T) []Value {
	keys := slices.Collect(maps.Keys(m))
	slices.SortFunc(keys, Compare)
	return keys
}
