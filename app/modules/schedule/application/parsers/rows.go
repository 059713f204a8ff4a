package parsers

import (
	"fmt"
	"regexp"
	"strings"
)

var runnerSeparator = regexp.MustCompile(`\s*(?:,|&|\bvs\.?(?:\s|$))\s*`)

// columns maps header names to the ParsedRun field they fill.
var columns = map[string]string{
	"game":     "game",
	"category": "category",
	"platform": "platform",
	"console":  "platform",
	"estimate": "estimate",
	"year":     "year",
	"runner":   "runners",
	"runners":  "runners",
	"player":   "runners",
	"players":  "runners",
}

// rowsToRuns reads a header row followed by one run per row.
func rowsToRuns(rows [][]string) ([]ParsedRun, error) {
	headerIdx := -1
	index := map[string]int{}
	for i, row := range rows {
		for col, cell := range row {
			if field, ok := columns[strings.ToLower(strings.TrimSpace(cell))]; ok {
				if _, seen := index[field]; !seen {
					index[field] = col
				}
			}
		}
		if _, ok := index["game"]; ok {
			headerIdx = i
			break
		}
		index = map[string]int{}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("no header row with a game column found")
	}

	get := func(row []string, field string) string {
		col, ok := index[field]
		if !ok || col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	var runs []ParsedRun
	for _, row := range rows[headerIdx+1:] {
		game := get(row, "game")
		if game == "" {
			continue
		}
		runs = append(runs, ParsedRun{
			Game:     game,
			Category: get(row, "category"),
			Platform: get(row, "platform"),
			Estimate: normalizeEstimate(get(row, "estimate")),
			Year:     get(row, "year"),
			Runners:  splitRunners(get(row, "runners")),
		})
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("schedule has no runs")
	}
	return runs, nil
}

func splitRunners(cell string) []string {
	if cell == "" {
		return nil
	}
	var out []string
	for _, name := range runnerSeparator.Split(cell, -1) {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// normalizeEstimate pads "H:MM:SS" and "MM:SS" to HH:MM:SS.
func normalizeEstimate(s string) string {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 2:
		parts = append([]string{"0"}, parts...)
	case 3:
	default:
		return s
	}
	for i, p := range parts {
		if len(p) == 1 {
			parts[i] = "0" + p
		}
	}
	return strings.Join(parts, ":")
}
