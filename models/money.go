package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseCents converts a monetary string from a report ("$1,234.56") to
// integer cents. Placeholders and unparseable values resolve to nil, never
// to a zero that could read as a real balance.
func ParseCents(raw string) *int64 {
	if IsPlaceholder(raw) {
		return nil
	}
	s := strings.TrimSpace(raw)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	if negative {
		d = d.Neg()
	}
	cents := d.Shift(2).Round(0).IntPart()
	return &cents
}

// FormatCents renders integer cents as a dollar string with comma grouping,
// the inverse of ParseCents for round-trip checks.
func FormatCents(cents int64) string {
	d := decimal.New(cents, -2)
	s := d.Abs().StringFixed(2)

	parts := strings.SplitN(s, ".", 2)
	whole := parts[0]
	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}

	out := "$" + grouped.String() + "." + parts[1]
	if cents < 0 {
		out = "-" + out
	}
	return out
}
