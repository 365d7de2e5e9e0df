package extractor

import (
	"strings"

	"credit-report-engine/document"
	"credit-report-engine/models"
)

// cellMark is the late-severity classification of one payment-grid cell.
type cellMark int

const (
	markUnknown cellMark = iota
	markOK
	markLate30
	markLate60
	markLate90
	markLate120
	markLate150
	markLate180
	markChargeOff
	markCollection
)

// markTokens maps the severity tokens the portals use, either as cell text
// or as CSS class suffixes ("hstry-30", "hstry-co"). "co" is a charge-off
// marker; "c", "cl" and "k" are collection markers.
var markTokens = map[string]cellMark{
	"ok":         markOK,
	"current":    markOK,
	"good":       markOK,
	"30":         markLate30,
	"late30":     markLate30,
	"60":         markLate60,
	"late60":     markLate60,
	"90":         markLate90,
	"late90":     markLate90,
	"120":        markLate120,
	"late120":    markLate120,
	"150":        markLate150,
	"late150":    markLate150,
	"180":        markLate180,
	"late180":    markLate180,
	"co":         markChargeOff,
	"chargeoff":  markChargeOff,
	"c":          markCollection,
	"cl":         markCollection,
	"k":          markCollection,
	"collection": markCollection,
	"unknown":    markUnknown,
	"nd":         markUnknown,
	"u":          markUnknown,
}

// classifyCell resolves one grid cell to exactly one mark. Class tokens are
// authoritative when present; the visible text is the fallback.
func classifyCell(cell document.Cell) cellMark {
	for _, cls := range cell.Classes {
		token := strings.ToLower(cls)
		for _, prefix := range []string{"hstry-", "history-", "pay-"} {
			token = strings.TrimPrefix(token, prefix)
		}
		if mark, ok := markTokens[token]; ok {
			return mark
		}
	}
	text := strings.ToLower(strings.TrimSpace(cell.Text))
	text = strings.TrimSuffix(text, "*")
	if mark, ok := markTokens[text]; ok {
		return mark
	}
	return markUnknown
}

// AnalyzeGrid turns a two-year payment-history table into per-bureau late
// counts. Rows are keyed by bureau label; rows that name no bureau (month
// headers, the grid title) are skipped.
func AnalyzeGrid(grid document.Table) models.PaymentHistories {
	var histories models.PaymentHistories
	for _, row := range grid.Rows {
		bureau := bureauFromLabel(row.Label)
		if bureau == "" || len(row.Cells) == 0 {
			continue
		}
		summary := summarizeCells(row.Cells)
		histories.Put(bureau, &summary)
	}
	return histories
}

func summarizeCells(cells []document.Cell) models.PaymentHistorySummary {
	var s models.PaymentHistorySummary
	for _, cell := range cells {
		switch classifyCell(cell) {
		case markLate30:
			s.LateCount30++
		case markLate60:
			s.LateCount60++
		case markLate90:
			s.LateCount90++
		case markLate120:
			s.LateCount120++
		case markLate150:
			s.LateCount150++
		case markLate180:
			s.LateCount180++
		case markChargeOff:
			s.ChargeOffCount++
		case markCollection:
			s.CollectionCount++
		}
	}
	s.MaxLateDays = maxLateDays(s)
	return s
}

// maxLateDays: 180 when any charge-off or collection marker is present, else
// the highest late bucket with a count, else 0. The grid is authoritative
// even when the account's summary status text says "current".
func maxLateDays(s models.PaymentHistorySummary) int {
	if s.ChargeOffCount > 0 || s.CollectionCount > 0 {
		return 180
	}
	switch {
	case s.LateCount180 > 0:
		return 180
	case s.LateCount150 > 0:
		return 150
	case s.LateCount120 > 0:
		return 120
	case s.LateCount90 > 0:
		return 90
	case s.LateCount60 > 0:
		return 60
	case s.LateCount30 > 0:
		return 30
	}
	return 0
}
