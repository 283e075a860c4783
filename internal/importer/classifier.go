package importer

import (
	"strings"
	"time"
)

// weekHeaderLayouts are the date shapes a column header may take once its
// hyphens are replaced with spaces, e.g. "5-July-25" -> "5 July 25".
var weekHeaderLayouts = []string{
	"2 Jan 06",
	"2 Jan 2006",
	"2 January 06",
	"2 January 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2006 01 02",
	"01 02 2006",
}

// Classification is the column role map of one import: which headers are
// weekly time buckets and which are fixed attributes. It is computed once
// from the header row and reused for every data row of the run.
type Classification struct {
	// WeekHeaders holds the weekly column headers in their original
	// left-to-right order. This order is the canonical week ordering
	// reported to consumers.
	WeekHeaders []string

	weekSet map[string]struct{}
}

// Classify inspects the header row and splits it into weekly time-bucket
// columns (date-like labels) and fixed attribute columns. A header with no
// date-like labels at all is valid and yields an empty week set.
func Classify(headers []string) Classification {
	cls := Classification{weekSet: make(map[string]struct{})}
	for _, h := range headers {
		if isWeekHeader(h) {
			cls.WeekHeaders = append(cls.WeekHeaders, h)
			cls.weekSet[h] = struct{}{}
		}
	}
	return cls
}

// IsWeekHeader reports whether the header was classified as a weekly column.
func (c Classification) IsWeekHeader(header string) bool {
	_, ok := c.weekSet[header]
	return ok
}

// WeekCount returns the number of weekly columns detected.
func (c Classification) WeekCount() int {
	return len(c.WeekHeaders)
}

// isWeekHeader applies the legacy heuristic: replace hyphens with spaces and
// try to parse the result as a calendar date. An attribute header that
// happens to look like a date is misclassified as a weekly column; this is a
// known false-positive class kept for compatibility with existing files.
func isWeekHeader(header string) bool {
	candidate := strings.TrimSpace(strings.ReplaceAll(header, "-", " "))
	if candidate == "" {
		return false
	}
	for _, layout := range weekHeaderLayouts {
		if _, err := time.Parse(layout, candidate); err == nil {
			return true
		}
	}
	return false
}
