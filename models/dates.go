package models

import (
	"strings"
	"time"
)

// reportDateLayouts covers the date formats seen across the supported report
// vendors. Month-only layouts resolve to the first of the month.
var reportDateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 02, 2006",
	"1/2006",
	"01/2006",
	"Jan 2006",
	"January 2006",
}

// ParseReportDate parses a date string from a report. Placeholders and
// unparseable values resolve to nil rather than an error; a missing date is
// an expected condition at every field boundary.
func ParseReportDate(raw string) *time.Time {
	if IsPlaceholder(raw) {
		return nil
	}
	s := strings.TrimSpace(raw)
	for _, layout := range reportDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &t
		}
	}
	return nil
}
