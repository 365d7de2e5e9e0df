package parser

import (
	"errors"
	"reflect"
	"testing"
	"time"

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
    <tr><td>Name:</td><td>JOHN Q CONSUMER</td><td>JOHN CONSUMER</td><td>JOHN Q CONSUMER</td></tr>
    <tr><td>Current Address:</td><td>1 MAIN ST</td><td>1 MAIN ST</td><td>-</td></tr>
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

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func testParser() *Parser {
	return NewWithClock(func() time.Time { return testNow })
}

func TestParseFullReport(t *testing.T) {
	result, err := testParser().Parse(reportHTML, models.ContextCombined)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if result.Scores.TransUnion == nil || *result.Scores.TransUnion != 645 {
		t.Errorf("transunion score = %v, want 645", result.Scores.TransUnion)
	}

	// Capital One on two bureaus plus Midland on two bureaus.
	if len(result.Accounts) != 4 {
		t.Fatalf("accounts = %d, want 4", len(result.Accounts))
	}

	if len(result.NegativeItems) != 3 {
		t.Fatalf("negative items = %d, want 3: %+v", len(result.NegativeItems), result.NegativeItems)
	}
	byType := make(map[models.ItemType]models.NegativeItem)
	for _, item := range result.NegativeItems {
		byType[item.ItemType] = item
	}

	late, ok := byType[models.ItemLatePayment]
	if !ok {
		t.Fatal("no late-payment item for the Capital One grid lates")
	}
	if late.CreditorName != "CAPITAL ONE" {
		t.Errorf("late item creditor = %q", late.CreditorName)
	}

	coll, ok := byType[models.ItemCollection]
	if !ok {
		t.Fatal("no collection item for Midland")
	}
	if coll.OriginalCreditor == nil || *coll.OriginalCreditor != "VERIZON" {
		t.Errorf("original creditor = %v", coll.OriginalCreditor)
	}
	if coll.AmountCents == nil || *coll.AmountCents != 120000 {
		t.Errorf("collection amount = %v, want 120000 cents", coll.AmountCents)
	}
	if coll.RiskSeverity != models.SeverityHigh {
		t.Errorf("collection severity = %s, want high", coll.RiskSeverity)
	}

	bk, ok := byType[models.ItemBankruptcy]
	if !ok {
		t.Fatal("no bankruptcy item from public records")
	}
	if bk.RiskSeverity != models.SeveritySevere {
		t.Errorf("bankruptcy severity = %s, want severe", bk.RiskSeverity)
	}

	if len(result.Compliance) != len(result.NegativeItems) {
		t.Errorf("compliance items = %d, want one per negative item", len(result.Compliance))
	}
	for _, c := range result.Compliance {
		if c.CreditorName == coll.CreditorName && c.PastLimit != models.LimitNotPast {
			t.Errorf("midland past limit = %s, want not_past", c.PastLimit)
		}
		if c.ItemType == models.ItemBankruptcy && c.ReportingLimitYears != 10 {
			t.Errorf("bankruptcy limit years = %d, want 10", c.ReportingLimitYears)
		}
	}

	if len(result.Inquiries) != 2 {
		t.Fatalf("inquiries = %d, want 2", len(result.Inquiries))
	}
	if result.Inquiries[0].IsPastFcraLimit {
		t.Error("2024 inquiry flagged past the two-year limit")
	}
	if !result.Inquiries[1].IsPastFcraLimit {
		t.Error("2020 inquiry not flagged past the two-year limit")
	}
}

func TestParseDiscrepancies(t *testing.T) {
	result, err := testParser().Parse(reportHTML, models.ContextCombined)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var balance *models.BureauDiscrepancy
	for i := range result.Discrepancies {
		if result.Discrepancies[i].Type == models.DiscrepancyBalance {
			if balance != nil {
				t.Fatal("more than one balance discrepancy for one creditor")
			}
			balance = &result.Discrepancies[i]
		}
	}
	if balance == nil {
		t.Fatal("capital one balance mismatch not detected")
	}
	if balance.Severity != models.RiskMedium {
		t.Errorf("balance severity = %s, want medium", balance.Severity)
	}
	if balance.CreditorName == nil || *balance.CreditorName != "CAPITAL ONE" {
		t.Errorf("creditor = %v", balance.CreditorName)
	}
}

func TestParseRecommendations(t *testing.T) {
	result, err := testParser().Parse(reportHTML, models.ContextCombined)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if len(result.Recommendations) != len(result.NegativeItems) {
		t.Fatalf("recommendations = %d, want one per negative item (%d)",
			len(result.Recommendations), len(result.NegativeItems))
	}
	byType := make(map[models.ItemType]models.MethodologyRecommendation)
	for _, rec := range result.Recommendations {
		if rec.Round != 1 {
			t.Errorf("%s round = %d, want 1", rec.ItemType, rec.Round)
		}
		byType[rec.ItemType] = rec
	}
	if got := byType[models.ItemCollection].Methodology; got != "debt_validation" {
		t.Errorf("collection methodology = %q, want debt_validation", got)
	}
	if got := byType[models.ItemLatePayment].Methodology; got != "factual" {
		t.Errorf("late-payment methodology = %q, want factual", got)
	}

	// The lead reason code lands on the item itself for persistence.
	for _, item := range result.NegativeItems {
		if item.DisputeReason == nil {
			t.Fatalf("%s item has no dispute reason", item.ItemType)
		}
		if item.ItemType == models.ItemCollection && *item.DisputeReason != "validation_of_debt" {
			t.Errorf("collection dispute reason = %q, want validation_of_debt", *item.DisputeReason)
		}
	}
}

func TestParseSummary(t *testing.T) {
	result, err := testParser().Parse(reportHTML, models.ContextCombined)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	s := result.Summary
	if s.TotalAccounts != 4 || s.OpenAccounts != 2 || s.NegativeAccounts != 3 {
		t.Errorf("account counts = %d/%d/%d, want 4/2/3", s.TotalAccounts, s.OpenAccounts, s.NegativeAccounts)
	}
	if s.NegativeItemCount != 3 || s.InquiryCount != 2 || s.PublicRecordCount != 1 {
		t.Errorf("item counts = %d/%d/%d", s.NegativeItemCount, s.InquiryCount, s.PublicRecordCount)
	}
	if s.TotalBalanceCents != 1290000 {
		t.Errorf("total balance = %d, want 1290000", s.TotalBalanceCents)
	}
	if s.UtilizationPercent == nil || *s.UtilizationPercent != 52.5 {
		t.Errorf("utilization = %v, want 52.5", s.UtilizationPercent)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	p := testParser()
	first, err := p.Parse(reportHTML, models.ContextCombined)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	second, err := testParser().Parse(reportHTML, models.ContextCombined)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two parses of the same content differ")
	}
}

func TestParseNoStructureIsFatal(t *testing.T) {
	prose := `Dear customer, thank you for your interest in our services.
We have received your request and will respond within five business days.
Please keep this reference number for your records going forward.`

	_, err := testParser().Parse(prose, models.ContextUnknown)
	if !errors.Is(err, document.ErrNoReportStructure) {
		t.Errorf("error = %v, want ErrNoReportStructure", err)
	}
}

func TestParseCleanReportIsNotAnError(t *testing.T) {
	const clean = `<html><body>
	<div id="PersonalInformation">
	  <table><tr><td>Name:</td><td>JANE CONSUMER</td><td>JANE CONSUMER</td><td>JANE CONSUMER</td></tr></table>
	</div>
	<h2>Account History</h2>
	<table>
	  <tr><td>FIRST BANK</td></tr>
	  <tr><td>Account #:</td><td>1234****</td><td>1234****</td><td>1234****</td></tr>
	  <tr><td>Account Status:</td><td>Open</td><td>Open</td><td>Open</td></tr>
	  <tr><td>Payment Status:</td><td>Current</td><td>Current</td><td>Current</td></tr>
	</table>
	</body></html>`

	result, err := testParser().Parse(clean, models.ContextCombined)
	if err != nil {
		t.Fatalf("clean report must parse: %v", err)
	}
	if len(result.NegativeItems) != 0 {
		t.Errorf("clean report produced negative items: %+v", result.NegativeItems)
	}
	if len(result.Accounts) != 3 {
		t.Errorf("accounts = %d, want 3", len(result.Accounts))
	}
}
