package extractor

import (
	"strings"
	"time"

	"credit-report-engine/document"
	"credit-report-engine/models"
)

// AccountBlock is one tradeline's extracted fields plus its two-year
// payment-history grid, when the report carries one.
type AccountBlock struct {
	CreditorName string
	Fields       FieldMap
	Grid         *document.Table
}

// genericSectionNames are section names that never identify a creditor.
var genericSectionNames = []string{
	"accounthistory", "accounts", "tradelines", "creditreport",
	"personalinformation", "inquiries", "publicrecords", "creditscore",
}

func isGenericSection(name string) bool {
	n := squash(name)
	if n == "" {
		return true
	}
	for _, g := range genericSectionNames {
		if n == g {
			return true
		}
	}
	return false
}

// AccountBlocks finds every tradeline in the document. Account tables are
// recognized by content (a row labeled with an account-number variant), not
// by position, so the scan keeps working when the expected section container
// is missing and accounts surface elsewhere in the tree.
func (e *Extractor) AccountBlocks() []AccountBlock {
	var blocks []AccountBlock
	for _, sec := range e.doc.Sections() {
		blocks = append(blocks, e.scanSectionForAccounts(sec)...)
	}
	return blocks
}

func (e *Extractor) scanSectionForAccounts(sec *document.Section) []AccountBlock {
	var blocks []AccountBlock
	pendingHeader := ""

	for ti := range sec.Tables {
		table := sec.Tables[ti]
		switch {
		case isPaymentGrid(table):
			if len(blocks) > 0 && blocks[len(blocks)-1].Grid == nil {
				blocks[len(blocks)-1].Grid = &sec.Tables[ti]
			}
		case isAccountTable(table):
			fields := make(FieldMap)
			extractRows(table, accountLabels, fields)
			name := creditorNameFor(table, pendingHeader, sec.Name)
			blocks = append(blocks, AccountBlock{CreditorName: name, Fields: fields})
			pendingHeader = ""
		case isHeaderOnlyTable(table):
			pendingHeader = strings.TrimSuffix(table.Rows[0].Label, ":")
		}
	}
	return blocks
}

// isAccountTable requires an account-number or account-status row so the
// personal-information and inquiry tables never register as tradelines.
func isAccountTable(table document.Table) bool {
	for _, row := range table.Rows {
		label := strings.ToLower(row.Label)
		if strings.Contains(label, "account #") || strings.Contains(label, "account number") ||
			strings.Contains(label, "account status") {
			return true
		}
	}
	return false
}

// isPaymentGrid recognizes the two-year payment-history table: either a
// title row naming it, or bureau-labeled rows with a month cell per column.
func isPaymentGrid(table document.Table) bool {
	for _, row := range table.Rows {
		if strings.Contains(squash(row.Label), "paymenthistory") {
			return true
		}
		if bureauFromLabel(row.Label) != "" && len(row.Cells) >= 4 {
			return true
		}
	}
	return false
}

func isHeaderOnlyTable(table document.Table) bool {
	return len(table.Rows) == 1 && table.Rows[0].Label != "" && len(table.Rows[0].Cells) == 0
}

// creditorNameFor resolves a tradeline's creditor: an in-table full-width
// header row first, then a header table directly above, then the section
// name when the section is creditor-specific (text exports), else unknown.
func creditorNameFor(table document.Table, pendingHeader, sectionName string) string {
	for _, row := range table.Rows {
		if row.Label != "" && len(row.Cells) == 0 && !strings.Contains(squash(row.Label), "paymenthistory") {
			return strings.TrimSuffix(row.Label, ":")
		}
	}
	if pendingHeader != "" {
		return pendingHeader
	}
	if !isGenericSection(sectionName) {
		return sectionName
	}
	return "Unknown Creditor"
}

func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func bureauFromLabel(label string) models.Bureau {
	switch squash(label) {
	case "transunion", "tu":
		return models.BureauTransUnion
	case "experian", "exp", "ex":
		return models.BureauExperian
	case "equifax", "eqf", "eq":
		return models.BureauEquifax
	}
	return ""
}

// InquiryRow is one raw inquiry line from the inquiries section.
type InquiryRow struct {
	CreditorName string
	Date         *time.Time
	Bureau       *models.Bureau
	InquiryType  *string
}

// Inquiries reads the inquiries section. Each row is one inquiry: the label
// is the creditor, and the value cells carry a date, a bureau name, and a
// type-of-business in whatever order the vendor prints them.
func (e *Extractor) Inquiries() []InquiryRow {
	sec, ok := e.doc.FindSection("inquiries")
	if !ok {
		return nil
	}
	var out []InquiryRow
	for _, table := range sec.Tables {
		for _, row := range table.Rows {
			if row.Label == "" || len(row.Cells) == 0 {
				continue
			}
			if isColumnHeaderRow(row) {
				continue
			}
			inq := InquiryRow{CreditorName: strings.TrimSuffix(row.Label, ":")}
			for _, cell := range row.Cells {
				if models.IsPlaceholder(cell.Text) {
					continue
				}
				text := strings.TrimSpace(cell.Text)
				if d := models.ParseReportDate(text); d != nil && inq.Date == nil {
					inq.Date = d
					continue
				}
				if b := bureauFromLabel(text); b != "" && inq.Bureau == nil {
					bureau := b
					inq.Bureau = &bureau
					continue
				}
				if inq.InquiryType == nil {
					t := text
					inq.InquiryType = &t
				}
			}
			out = append(out, inq)
		}
	}
	return out
}

// isColumnHeaderRow drops the "Creditor / Date / Bureau" banner row some
// vendors put above the inquiry list.
func isColumnHeaderRow(row document.Row) bool {
	label := squash(row.Label)
	if label != "creditor" && label != "creditorname" && label != "company" {
		return false
	}
	for _, cell := range row.Cells {
		c := squash(cell.Text)
		if c == "date" || c == "dateofinquiry" || c == "inquirydate" || c == "creditbureau" || c == "bureau" {
			return true
		}
	}
	return false
}

// PublicRecords reads the public-records section, one label-keyed table per
// record.
func (e *Extractor) PublicRecords() []FieldMap {
	sec, ok := e.doc.FindSection("public records")
	if !ok {
		return nil
	}
	var out []FieldMap
	for _, table := range sec.Tables {
		fields := make(FieldMap)
		extractRows(table, publicRecordLabels, fields)
		if len(fields) > 0 {
			out = append(out, fields)
		}
	}
	return out
}
