package issue

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Property names an extractable attribute of an issue.
type Property string

const (
	PropOwner     Property = "owner"
	PropPriority  Property = "priority"
	PropMilestone Property = "milestone"
	PropStatus    Property = "status"
	PropType      Property = "type"
	PropStars     Property = "stars"
	PropUpdated   Property = "updated"
	PropPublished Property = "published"
	PropLabel     Property = "label"
)

// Properties lists every recognised property in report order.
var Properties = []Property{
	PropOwner, PropPriority, PropMilestone, PropStatus, PropType,
	PropStars, PropUpdated, PropPublished, PropLabel,
}

// Label prefixes that encode typed properties.
const (
	PriorityPrefix  = "Pri-"
	MilestonePrefix = "M-"
	TypePrefix      = "Type-"
	LaunchLabel     = "Type-Launch"
)

// ParseProperty validates a property name.
func ParseProperty(name string) (Property, error) {
	p := Property(strings.ToLower(strings.TrimSpace(name)))
	if slices.Contains(Properties, p) {
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown property %q", ErrInvalidArgument, name)
}

// Extract returns the value of p for iss. It never fails; missing data yields None.
func Extract(iss Issue, p Property) Value {
	switch p {
	case PropOwner:
		return textValue(iss.Owner)
	case PropStatus:
		return textValue(iss.Status)
	case PropPriority:
		return singleLabelInt(iss.Labels, PriorityPrefix)
	case PropMilestone:
		return singleLabelInt(iss.Labels, MilestonePrefix)
	case PropType:
		return singleLabelText(iss.Labels, TypePrefix)
	case PropStars:
		if iss.Stars == nil {
			return None
		}
		return IntValue(*iss.Stars)
	case PropUpdated:
		return dateValue(iss.Updated)
	case PropPublished:
		return dateValue(iss.Opened)
	case PropLabel:
		labels := slices.Clone(iss.Labels)
		slices.Sort(labels)
		return ListValue(labels)
	default:
		return None
	}
}

// LabelsWithPrefix returns the labels starting with prefix, prefix removed.
func LabelsWithPrefix(labels []string, prefix string) []string {
	var out []string
	for _, l := range labels {
		if rest, ok := strings.CutPrefix(l, prefix); ok {
			out = append(out, rest)
		}
	}
	return out
}

func singleLabelText(labels []string, prefix string) Value {
	vals := LabelsWithPrefix(labels, prefix)
	if len(vals) != 1 {
		return None
	}
	return StringValue(vals[0])
}

func singleLabelInt(labels []string, prefix string) Value {
	v := singleLabelText(labels, prefix)
	if v.IsNone() {
		return None
	}
	n, err := strconv.Atoi(v.Str)
	if err != nil {
		return None
	}
	return IntValue(n)
}

func textValue(s string) Value {
	if s == "" {
		return None
	}
	return StringValue(s)
}

func dateValue(t time.Time) Value {
	if t.IsZero() {
		return None
	}
	return StringValue(t.UTC().Format("2006-01-02"))
}

// HasLabel reports whether iss carries label exactly.
func HasLabel(iss Issue, label string) bool {
	return slices.Contains(iss.Labels, label)
}

// IsLaunch reports whether the issue is a launch bug.
func IsLaunch(iss Issue) bool {
	return HasLabel(iss, LaunchLabel)
}

// MilestoneIs reports whether the issue targets milestone m.
func MilestoneIs(m int) func(Issue) bool {
	return func(iss Issue) bool {
		return Extract(iss, PropMilestone) == IntValue(m)
	}
}

// MilestoneBefore reports whether the issue targets a milestone earlier than m.
// Issues without a milestone are not counted as earlier.
func MilestoneBefore(m int) func(Issue) bool {
	return func(iss Issue) bool {
		v := Extract(iss, PropMilestone)
		return v.Kind == KindInt && v.Int < m
	}
}

// Filter returns the issues matching pred, preserving order.
func Filter(issues []Issue, pred func(Issue) bool) []Issue {
	var out []Issue
	for _, iss := range issues {
		if pred(iss) {
			out = append(out, iss)
		}
	}
	return out
}

// Not negates a predicate.
func Not(pred func(Issue) bool) func(Issue) bool {
	return func(iss Issue) bool {
		return !pred(iss)
	}
}
