package mcp

import (
	"encoding/json"
	"fmt"
	"time"

	"issue-history/internal/query"
)

const dateLayout = "2006-01-02"

func formatResult(data any) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func asInt(v any) int {
	if v == nil {
		return 0
	}
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case string:
		var res int
		fmt.Sscanf(val, "%d", &res)
		return res
	default:
		return 0
	}
}

func queryOptions(args map[string]any) query.Options {
	return query.Options{
		Project: asString(args["project"]),
		Can:     asString(args["can"]),
		Label:   asString(args["label"]),
		Text:    asString(args["query"]),
	}
}

// parseDate reads a YYYY-MM-DD argument, falling back to def when empty.
func parseDate(name, value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", name, value)
	}
	return t, nil
}
