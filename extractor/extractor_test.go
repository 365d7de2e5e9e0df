package extractor

import (
	"testing"

	"credit-report-engine/document"
	"credit-report-engine/models"
)

const reportHTML = `<!DOCTYPE html>
<html><body>
<div id="CreditScore">
  <table>
    <tr><td>Credit Score:</td><td>645</td><td>652</td><td>-</td></tr>
  </table>
</div>
<div id="PersonalInformation">
  <table>
    <tr><th></th><th>TransUnion</th><th>Experian</th><th>Equifax</th></tr>
    <tr><td>Name:</td><td>JOHN Q CONSUMER</td><td>JOHN CONSUMER</td><td>JOHN Q CONSUMER</td></tr>
    <tr><td>Also Known As:</td><td>J CONSUMER</td><td>-</td><td>-</td></tr>
    <tr><td>Date of Birth:</td><td>1980</td><td>1980</td><td>-</td></tr>
    <tr><td>Current Address:</td><td>1 MAIN ST</td><td>1 MAIN ST</td><td>-</td></tr>
    <tr><td>Employer:</td><td>ACME CORP</td><td>-</td><td>-</td></tr>
  </table>
</div>
<h2>Account History</h2>
<table>
  <tr><td>CAPITAL ONE</td></tr>
  <tr><td>Account #:</td><td>4111****</td><td>4111****</td><td>-</td></tr>
  <tr><td>Account Type:</td><td>Revolving</td><td>Revolving</td><td>-</td></tr>
  <tr><td>Account Status:</td><td>Open</td><td>Open</td><td>-</td></tr>
  <tr><td>Payment Status:</td><td>Pays as Agreed</td><td>Pays as Agreed</td><td>-</td></tr>
  <tr><td>Balance:</td><td>$5,000.00</td><td>$5,500.00</td><td>-</td></tr>
  <tr><td>Credit Limit:</td><td>$10,000.00</td><td>$10,000.00</td><td>-</td></tr>
  <tr><td>Date Opened:</td><td>06/2018</td><td>06/2018</td><td>-</td></tr>
  <tr><td>Date Reported:</td><td>03/01/2024</td><td>03/05/2024</td><td>-</td></tr>
</table>
<table>
  <tr><td>Two-Year Payment History</td></tr>
  <tr><td>TransUnion</td><td class="hstry-ok">OK</td><td class="hstry-90">90</td><td class="hstry-ok">OK</td><td class="hstry-90">90</td></tr>
  <tr><td>Experian</td><td class="hstry-ok">OK</td><td class="hstry-ok">OK</td><td class="hstry-ok">OK</td><td class="hstry-ok">OK</td></tr>
</table>
<table>
  <tr><td>MIDLAND CREDIT</td></tr>
  <tr><td>Account #:</td><td>-</td><td>9876****</td><td>9876****</td></tr>
  <tr><td>Account Status:</td><td>-</td><td>Collection</td><td>Collection</td></tr>
  <tr><td>Payment Status:</td><td>-</td><td>Collection/Chargeoff</td><td>Collection/Chargeoff</td></tr>
  <tr><td>Balance:</td><td>-</td><td>$1,200.00</td><td>$1,200.00</td></tr>
  <tr><td>Original Creditor:</td><td>-</td><td>VERIZON</td><td>VERIZON</td></tr>
  <tr><td>Date of Last Activity:</td><td>-</td><td>01/15/2019</td><td>01/15/2019</td></tr>
</table>
<h2>Inquiries</h2>
<table>
  <tr><td>Creditor</td><td>Date of Inquiry</td><td>Credit Bureau</td></tr>
  <tr><td>ACME BANK</td><td>03/15/2024</td><td>TransUnion</td></tr>
  <tr><td>OLD LENDER</td><td>01/10/2020</td><td>Experian</td></tr>
</table>
<h2>Public Records</h2>
<table>
  <tr><td>Type:</td><td>Chapter 7 Bankruptcy</td></tr>
  <tr><td>Status:</td><td>Discharged</td></tr>
  <tr><td>Date Filed:</td><td>02/2017</td></tr>
  <tr><td>Amount:</td><td>$34,000.00</td></tr>
</table>
</body></html>`

func mustIngest(t *testing.T, content string) document.Document {
	t.Helper()
	doc, err := document.Ingest(content)
	if err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	return doc
}

func TestPersonalInfoExtraction(t *testing.T) {
	e := New(mustIngest(t, reportHTML))
	fields := e.PersonalInfo()

	name, ok := fields[FieldName]
	if !ok {
		t.Fatal("name field not extracted")
	}
	if name.TransUnion == nil || *name.TransUnion != "JOHN Q CONSUMER" {
		t.Errorf("transunion name = %v", name.TransUnion)
	}
	if name.Experian == nil || *name.Experian != "JOHN CONSUMER" {
		t.Errorf("experian name = %v", name.Experian)
	}

	aka := fields[FieldAlsoKnownAs]
	if aka.TransUnion == nil || *aka.TransUnion != "J CONSUMER" {
		t.Errorf("aka transunion = %v", aka.TransUnion)
	}
	// Placeholder cells resolve to nil, never empty string.
	if aka.Experian != nil {
		t.Errorf("aka experian = %q, want nil", *aka.Experian)
	}
	if aka.Equifax != nil {
		t.Errorf("aka equifax = %q, want nil", *aka.Equifax)
	}

	if _, ok := fields[FieldPreviousAddress]; ok {
		t.Error("previous address extracted but absent from report")
	}
}

func TestScores(t *testing.T) {
	e := New(mustIngest(t, reportHTML))
	scores := e.Scores()
	if scores.TransUnion == nil || *scores.TransUnion != 645 {
		t.Errorf("transunion score = %v, want 645", scores.TransUnion)
	}
	if scores.Experian == nil || *scores.Experian != 652 {
		t.Errorf("experian score = %v, want 652", scores.Experian)
	}
	if scores.Equifax != nil {
		t.Errorf("equifax score = %v, want nil", scores.Equifax)
	}
}

func TestAccountBlocks(t *testing.T) {
	e := New(mustIngest(t, reportHTML))
	blocks := e.AccountBlocks()
	if len(blocks) != 2 {
		t.Fatalf("AccountBlocks() = %d blocks, want 2", len(blocks))
	}

	capOne := blocks[0]
	if capOne.CreditorName != "CAPITAL ONE" {
		t.Errorf("creditor = %q, want CAPITAL ONE", capOne.CreditorName)
	}
	bal := capOne.Fields[FieldBalance]
	if bal.TransUnion == nil || *bal.TransUnion != "$5,000.00" {
		t.Errorf("balance transunion = %v", bal.TransUnion)
	}
	if bal.Equifax != nil {
		t.Error("balance equifax should be nil for placeholder")
	}
	if capOne.Grid == nil {
		t.Fatal("capital one payment grid not attached")
	}

	midland := blocks[1]
	if midland.CreditorName != "MIDLAND CREDIT" {
		t.Errorf("creditor = %q, want MIDLAND CREDIT", midland.CreditorName)
	}
	if midland.Grid != nil {
		t.Error("midland should have no grid")
	}
	oc := midland.Fields[FieldOriginalCreditor]
	if oc.Experian == nil || *oc.Experian != "VERIZON" {
		t.Errorf("original creditor = %v", oc.Experian)
	}
}

func TestAnalyzeGrid(t *testing.T) {
	e := New(mustIngest(t, reportHTML))
	blocks := e.AccountBlocks()
	histories := AnalyzeGrid(*blocks[0].Grid)

	tu := histories.For(models.BureauTransUnion)
	if tu == nil {
		t.Fatal("no transunion history row")
	}
	if tu.LateCount90 != 2 {
		t.Errorf("late90 = %d, want 2", tu.LateCount90)
	}
	if tu.MaxLateDays != 90 {
		t.Errorf("maxLateDays = %d, want 90", tu.MaxLateDays)
	}

	ex := histories.For(models.BureauEquifax)
	if ex != nil {
		t.Error("equifax history should be absent")
	}
	clean := histories.For(models.BureauExperian)
	if clean == nil || clean.MaxLateDays != 0 || clean.TotalLateCount() != 0 {
		t.Errorf("experian history = %+v, want clean", clean)
	}
}

func TestAnalyzeGridMarkers(t *testing.T) {
	tests := []struct {
		name  string
		cells []document.Cell
		check func(t *testing.T, s models.PaymentHistorySummary)
	}{
		{
			name: "charge-off forces 180",
			cells: []document.Cell{
				{Text: "OK"}, {Text: "30"}, {Text: "CO"},
			},
			check: func(t *testing.T, s models.PaymentHistorySummary) {
				if s.ChargeOffCount != 1 || s.MaxLateDays != 180 {
					t.Errorf("summary = %+v", s)
				}
			},
		},
		{
			name: "collection class token forces 180",
			cells: []document.Cell{
				{Text: "", Classes: []string{"hstry-cl"}}, {Text: "OK"},
			},
			check: func(t *testing.T, s models.PaymentHistorySummary) {
				if s.CollectionCount != 1 || s.MaxLateDays != 180 {
					t.Errorf("summary = %+v", s)
				}
			},
		},
		{
			name: "highest late bucket wins",
			cells: []document.Cell{
				{Text: "30"}, {Text: "60"}, {Text: "30"}, {Text: "120"},
			},
			check: func(t *testing.T, s models.PaymentHistorySummary) {
				if s.LateCount30 != 2 || s.LateCount60 != 1 || s.LateCount120 != 1 {
					t.Errorf("summary = %+v", s)
				}
				if s.MaxLateDays != 120 {
					t.Errorf("maxLateDays = %d, want 120", s.MaxLateDays)
				}
			},
		},
		{
			name: "clean row",
			cells: []document.Cell{
				{Text: "OK"}, {Text: "OK"}, {Text: "U"},
			},
			check: func(t *testing.T, s models.PaymentHistorySummary) {
				if s.MaxLateDays != 0 || s.TotalLateCount() != 0 {
					t.Errorf("summary = %+v", s)
				}
			},
		},
		{
			name: "class token beats cell text",
			cells: []document.Cell{
				{Text: "OK", Classes: []string{"hstry-90"}},
			},
			check: func(t *testing.T, s models.PaymentHistorySummary) {
				if s.LateCount90 != 1 || s.MaxLateDays != 90 {
					t.Errorf("summary = %+v", s)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := document.Table{Rows: []document.Row{
				{Label: "TransUnion", Cells: tt.cells},
			}}
			histories := AnalyzeGrid(grid)
			s := histories.For(models.BureauTransUnion)
			if s == nil {
				t.Fatal("no summary produced")
			}
			tt.check(t, *s)
		})
	}
}

func TestInquiries(t *testing.T) {
	e := New(mustIngest(t, reportHTML))
	inqs := e.Inquiries()
	if len(inqs) != 2 {
		t.Fatalf("Inquiries() = %d, want 2 (header row must be dropped)", len(inqs))
	}
	if inqs[0].CreditorName != "ACME BANK" {
		t.Errorf("creditor = %q", inqs[0].CreditorName)
	}
	if inqs[0].Date == nil || inqs[0].Date.Format("2006-01-02") != "2024-03-15" {
		t.Errorf("date = %v", inqs[0].Date)
	}
	if inqs[0].Bureau == nil || *inqs[0].Bureau != models.BureauTransUnion {
		t.Errorf("bureau = %v", inqs[0].Bureau)
	}
}

func TestPublicRecords(t *testing.T) {
	e := New(mustIngest(t, reportHTML))
	records := e.PublicRecords()
	if len(records) != 1 {
		t.Fatalf("PublicRecords() = %d, want 1", len(records))
	}
	rec := records[0]
	rt := rec[FieldRecordType]
	if rt.TransUnion == nil || *rt.TransUnion != "Chapter 7 Bankruptcy" {
		t.Errorf("record type = %v", rt.TransUnion)
	}
	amt := rec[FieldAmount]
	if amt.TransUnion == nil || *amt.TransUnion != "$34,000.00" {
		t.Errorf("amount = %v", amt.TransUnion)
	}
}

func TestFallbackScanWhenSectionMissing(t *testing.T) {
	// No PersonalInformation container; the labels live under an unrelated
	// heading. The extractor must fall back to a whole-document scan.
	const html = `<html><body>
	<h2>Report Details</h2>
	<table>
	  <tr><td>Name:</td><td>JANE CONSUMER</td><td>-</td><td>JANE CONSUMER</td></tr>
	</table>
	</body></html>`

	e := New(mustIngest(t, html))
	fields := e.PersonalInfo()
	name, ok := fields[FieldName]
	if !ok {
		t.Fatal("fallback scan did not find name field")
	}
	if name.TransUnion == nil || *name.TransUnion != "JANE CONSUMER" {
		t.Errorf("name = %v", name.TransUnion)
	}
}

func TestMissingSectionsYieldEmptyMaps(t *testing.T) {
	const html = `<html><body>
	<h2>Nothing Useful</h2>
	<table><tr><td>Irrelevant:</td><td>value</td></tr></table>
	</body></html>`

	e := New(mustIngest(t, html))
	if got := e.PersonalInfo(); len(got) != 0 {
		t.Errorf("PersonalInfo() = %v, want empty", got)
	}
	if got := e.AccountBlocks(); len(got) != 0 {
		t.Errorf("AccountBlocks() = %v, want none", got)
	}
	if got := e.Inquiries(); got != nil {
		t.Errorf("Inquiries() = %v, want nil", got)
	}
	if got := e.PublicRecords(); got != nil {
		t.Errorf("PublicRecords() = %v, want nil", got)
	}
}
