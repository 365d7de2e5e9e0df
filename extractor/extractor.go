// Package extractor reads label-keyed, three-column (bureau) values out of an
// ingested report document. Lookup is label-text based against fixed
// label tables, never positional-only; unknown labels are ignored and missing
// sections degrade to a whole-document fallback scan.
package extractor

import (
	"strings"

	"credit-report-engine/document"
	"credit-report-engine/models"
)

// Field names a canonical report field.
type Field string

const (
	FieldName            Field = "name"
	FieldAlsoKnownAs     Field = "also_known_as"
	FieldFormerName      Field = "former_name"
	FieldDateOfBirth     Field = "date_of_birth"
	FieldCurrentAddress  Field = "current_address"
	FieldPreviousAddress Field = "previous_address"
	FieldEmployer        Field = "employer"

	FieldCreditScore Field = "credit_score"

	FieldAccountNumber    Field = "account_number"
	FieldAccountType      Field = "account_type"
	FieldAccountStatus    Field = "account_status"
	FieldPaymentStatus    Field = "payment_status"
	FieldMonthlyPayment   Field = "monthly_payment"
	FieldDateOpened       Field = "date_opened"
	FieldBalance          Field = "balance"
	FieldCreditLimit      Field = "credit_limit"
	FieldHighCredit       Field = "high_credit"
	FieldPastDue          Field = "past_due"
	FieldDateReported     Field = "date_reported"
	FieldLastActivity     Field = "last_activity"
	FieldOriginalCreditor Field = "original_creditor"

	FieldRecordType   Field = "record_type"
	FieldRecordStatus Field = "record_status"
	FieldDateFiled    Field = "date_filed"
	FieldAmount       Field = "amount"
)

// labelMapping maps a label substring to a canonical field. Order matters:
// the first matching entry wins, so more specific labels come first.
type labelMapping struct {
	substr string
	field  Field
}

var personalInfoLabels = []labelMapping{
	{"also known as", FieldAlsoKnownAs},
	{"aka", FieldAlsoKnownAs},
	{"former", FieldFormerName},
	{"date of birth", FieldDateOfBirth},
	{"birth", FieldDateOfBirth},
	{"current address", FieldCurrentAddress},
	{"previous address", FieldPreviousAddress},
	{"employer", FieldEmployer},
	{"name", FieldName},
}

var scoreLabels = []labelMapping{
	{"credit score", FieldCreditScore},
	{"score", FieldCreditScore},
}

var accountLabels = []labelMapping{
	{"account #", FieldAccountNumber},
	{"account number", FieldAccountNumber},
	{"account type", FieldAccountType},
	{"account status", FieldAccountStatus},
	{"payment status", FieldPaymentStatus},
	{"monthly payment", FieldMonthlyPayment},
	{"date opened", FieldDateOpened},
	{"balance", FieldBalance},
	{"credit limit", FieldCreditLimit},
	{"high credit", FieldHighCredit},
	{"high balance", FieldHighCredit},
	{"past due", FieldPastDue},
	{"date reported", FieldDateReported},
	{"last reported", FieldDateReported},
	{"last activity", FieldLastActivity},
	{"date of last activity", FieldLastActivity},
	{"original creditor", FieldOriginalCreditor},
}

var publicRecordLabels = []labelMapping{
	{"type", FieldRecordType},
	{"status", FieldRecordStatus},
	{"date filed", FieldDateFiled},
	{"date reported", FieldDateFiled},
	{"amount", FieldAmount},
	{"liability", FieldAmount},
}

// FieldTriple carries one field's raw per-bureau strings. A nil slot means
// the bureau column held a placeholder or was absent.
type FieldTriple struct {
	TransUnion *string
	Experian   *string
	Equifax    *string
}

// For returns the raw value for one bureau, or nil.
func (t FieldTriple) For(b models.Bureau) *string {
	switch b {
	case models.BureauTransUnion:
		return t.TransUnion
	case models.BureauExperian:
		return t.Experian
	case models.BureauEquifax:
		return t.Equifax
	}
	return nil
}

// First returns the first non-nil bureau value, in fixed column order.
func (t FieldTriple) First() *string {
	for _, b := range models.AllBureaus() {
		if v := t.For(b); v != nil {
			return v
		}
	}
	return nil
}

func (t *FieldTriple) put(b models.Bureau, v *string) {
	switch b {
	case models.BureauTransUnion:
		t.TransUnion = v
	case models.BureauExperian:
		t.Experian = v
	case models.BureauEquifax:
		t.Equifax = v
	}
}

// FieldMap is the extraction result for one section or block.
type FieldMap map[Field]FieldTriple

// Extractor reads fields out of one ingested document.
type Extractor struct {
	doc document.Document
}

// New returns an extractor over an ingested document.
func New(doc document.Document) *Extractor {
	return &Extractor{doc: doc}
}

// Section extracts label-keyed fields from a named section. A missing
// section yields whatever the whole-document fallback scan finds, which may
// be an empty map; that is never an error.
func (e *Extractor) Section(sectionName string, labels []labelMapping) FieldMap {
	fields := make(FieldMap)
	sec, ok := e.doc.FindSection(sectionName)
	if ok {
		for _, table := range sec.Tables {
			extractRows(table, labels, fields)
		}
		if len(fields) > 0 {
			return fields
		}
	}
	// Fallback: scan every table in the document for the same labels.
	for _, table := range e.doc.AllTables() {
		extractRows(table, labels, fields)
	}
	return fields
}

// PersonalInfo extracts the personal-information section.
func (e *Extractor) PersonalInfo() FieldMap {
	return e.Section("personal information", personalInfoLabels)
}

// Scores extracts the per-bureau credit scores.
func (e *Extractor) Scores() models.BureauScores {
	fields := e.Section("credit score", scoreLabels)
	var scores models.BureauScores
	triple, ok := fields[FieldCreditScore]
	if !ok {
		return scores
	}
	for _, b := range models.AllBureaus() {
		if raw := triple.For(b); raw != nil {
			if n, ok := parseScore(*raw); ok {
				switch b {
				case models.BureauTransUnion:
					scores.TransUnion = &n
				case models.BureauExperian:
					scores.Experian = &n
				case models.BureauEquifax:
					scores.Equifax = &n
				}
			}
		}
	}
	return scores
}

func parseScore(raw string) (int, bool) {
	n := 0
	digits := 0
	for _, r := range strings.TrimSpace(raw) {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
	}
	// FICO-style scores are three digits; anything else is noise.
	if digits != 3 || n < 300 || n > 900 {
		return 0, false
	}
	return n, true
}

// extractRows matches each row label against the label table, first match
// wins, and stores up to three bureau cells. Already-extracted fields are not
// overwritten, so the first occurrence in document order is authoritative.
func extractRows(table document.Table, labels []labelMapping, fields FieldMap) {
	for _, row := range table.Rows {
		label := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(row.Label), ":")))
		if label == "" || len(row.Cells) == 0 {
			continue
		}
		field, ok := matchLabel(label, labels)
		if !ok {
			continue
		}
		if _, exists := fields[field]; exists {
			continue
		}
		fields[field] = tripleFromCells(row.Cells)
	}
}

func matchLabel(label string, labels []labelMapping) (Field, bool) {
	for _, m := range labels {
		if strings.Contains(label, m.substr) {
			return m.field, true
		}
	}
	return "", false
}

// tripleFromCells maps the row's value cells onto the fixed bureau columns.
// Placeholder values normalize to nil, never to an empty string.
func tripleFromCells(cells []document.Cell) FieldTriple {
	var triple FieldTriple
	bureaus := models.AllBureaus()
	for i, cell := range cells {
		if i >= len(bureaus) {
			break
		}
		if models.IsPlaceholder(cell.Text) {
			continue
		}
		v := strings.TrimSpace(cell.Text)
		triple.put(bureaus[i], &v)
	}
	return triple
}
