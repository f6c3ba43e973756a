package mcp

import "issue-history/internal/issue"

func queryProperties() map[string]any {
	return map[string]any{
		"project": map[string]any{"type": "string", "description": "Project name as used in the feed URL (e.g. chromium)"},
		"can":     map[string]any{"type": "string", "enum": []string{"all", "open", "owned", "reported", "starred", "new", "to-verify"}, "description": "Canned subset to search. Default: open."},
		"label":   map[string]any{"type": "string", "description": "Optional: only issues carrying this label (e.g. Type-Bug)."},
		"query":   map[string]any{"type": "string", "description": "Optional: free-text search clause (e.g. status:Started)."},
	}
}

func withProperties(base map[string]any, extra map[string]any) map[string]any {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

func propertyNames() []string {
	names := make([]string, 0, len(issue.Properties))
	for _, p := range issue.Properties {
		names = append(names, string(p))
	}
	return names
}

func (s *Server) listTools() any {
	return map[string]any{
		"tools": []any{
			map[string]any{
				"name":        "count_issues",
				"description": "Count the issues of a project matching a query. Only the first result page is fetched.",
				"inputSchema": map[string]any{
					"type":       "object",
					"properties": queryProperties(),
					"required":   []string{"project"},
				},
			},
			map[string]any{
				"name": "group_issues",
				"description": "Fetch every issue matching a query and group them by a property. " +
					"Issues without the property form their own 'None' group. " +
					"Also returns launch/non-launch summary counts and open-age quantiles.",
				"inputSchema": map[string]any{
					"type": "object",
					"properties": withProperties(queryProperties(), map[string]any{
						"property": map[string]any{"type": "string", "enum": propertyNames(), "description": "Property to group by."},
						"hint":     map[string]any{"type": "integer", "description": "Optional: number of example ids to list per group. Default: 3."},
					}),
					"required": []string{"project", "property"},
				},
			},
			map[string]any{
				"name": "issue_history",
				"description": "Reconstruct how the open issue set of a project evolved between two dates in fixed steps. " +
					"Returns the group keys, per-step counts aligned with those keys, the cumulative number of originally open issues fixed, " +
					"the number of newly opened issues still open, and per-window open/close activity.",
				"inputSchema": map[string]any{
					"type": "object",
					"properties": withProperties(queryProperties(), map[string]any{
						"start_date": map[string]any{"type": "string", "description": "First day (YYYY-MM-DD)."},
						"end_date":   map[string]any{"type": "string", "description": "Optional: end of the range (YYYY-MM-DD), exclusive. Default: today."},
						"step_days":  map[string]any{"type": "integer", "description": "Optional: window size in days. Default: 7."},
						"group_by":   map[string]any{"type": "string", "enum": propertyNames(), "description": "Optional: property to group the open set by. Default: priority."},
					}),
					"required": []string{"project", "start_date"},
				},
			},
		},
	}
}
