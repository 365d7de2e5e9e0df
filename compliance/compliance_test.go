package compliance

import (
	"testing"
	"time"

	"credit-report-engine/models"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func testEngine() Engine {
	return Engine{Now: func() time.Time { return testNow }}
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCollectionPastSevenYears(t *testing.T) {
	item := models.NegativeItem{
		ItemType:           models.ItemCollection,
		CreditorName:       "MIDLAND CREDIT",
		DateOfLastActivity: datePtr(2017, 6, 1),
	}
	out := testEngine().Evaluate(item)

	if out.PastLimit != models.LimitPast {
		t.Errorf("past limit = %s, want past", out.PastLimit)
	}
	if out.ReportingLimitYears != 7 {
		t.Errorf("limit years = %d, want 7", out.ReportingLimitYears)
	}
	if out.FcraExpirationDate == nil || !out.FcraExpirationDate.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expiration = %v, want 2024-06-01", out.FcraExpirationDate)
	}
	if out.DaysUntilExpiration == nil || *out.DaysUntilExpiration >= 0 {
		t.Errorf("days until expiration = %v, want negative", out.DaysUntilExpiration)
	}
	if out.ApproachingLimit {
		t.Error("expired item flagged as approaching")
	}
}

func TestCollectionApproachingLimit(t *testing.T) {
	// DOFD 6.5 years back: half a year of reporting time left.
	item := models.NegativeItem{
		ItemType:           models.ItemCollection,
		CreditorName:       "MIDLAND CREDIT",
		DateOfLastActivity: datePtr(2018, 10, 1),
	}
	out := testEngine().Evaluate(item)

	if out.PastLimit != models.LimitNotPast {
		t.Errorf("past limit = %s, want not_past", out.PastLimit)
	}
	if out.DaysUntilExpiration == nil {
		t.Fatal("no day count computed")
	}
	if d := *out.DaysUntilExpiration; d < 1 || d > 180 {
		t.Errorf("days until expiration = %d, want in [1,180]", d)
	}
	if !out.ApproachingLimit {
		t.Error("item inside the 180-day window not flagged as approaching")
	}
}

func TestUnknownDofdIsUndetermined(t *testing.T) {
	out := testEngine().Evaluate(models.NegativeItem{
		ItemType:     models.ItemChargeOff,
		CreditorName: "FIRST BANK",
	})
	if out.PastLimit != models.LimitUndetermined {
		t.Errorf("past limit = %s, want undetermined", out.PastLimit)
	}
	if out.FcraExpirationDate != nil || out.DaysUntilExpiration != nil {
		t.Error("expiration arithmetic emitted without a known delinquency date")
	}
}

func TestDofdFallsBackToDateReported(t *testing.T) {
	out := testEngine().Evaluate(models.NegativeItem{
		ItemType:     models.ItemLatePayment,
		CreditorName: "FIRST BANK",
		DateReported: datePtr(2020, 1, 15),
	})
	if out.DateOfFirstDelinquency == nil || out.DateOfFirstDelinquency.Day() != 15 {
		t.Errorf("dofd = %v, want the reported date", out.DateOfFirstDelinquency)
	}
	if out.PastLimit != models.LimitNotPast {
		t.Errorf("past limit = %s, want not_past", out.PastLimit)
	}
}

func TestBankruptcyTenYearLimit(t *testing.T) {
	// Eight years back is past the 7-year general limit but inside the
	// 10-year bankruptcy limit, Chapter 13 included.
	out := testEngine().Evaluate(models.NegativeItem{
		ItemType:           models.ItemBankruptcy,
		CreditorName:       "Chapter 13 Bankruptcy",
		DateOfLastActivity: datePtr(2017, 6, 1),
	})
	if out.ReportingLimitYears != 10 {
		t.Errorf("limit years = %d, want 10", out.ReportingLimitYears)
	}
	if out.PastLimit != models.LimitNotPast {
		t.Errorf("past limit = %s, want not_past", out.PastLimit)
	}
}

func TestInquiryTwoYearLimit(t *testing.T) {
	old := models.InquiryDisputeItem{CreditorName: "OLD LENDER", InquiryDate: datePtr(2022, 6, 1)}
	recent := models.InquiryDisputeItem{CreditorName: "ACME BANK", InquiryDate: datePtr(2024, 12, 1)}
	undated := models.InquiryDisputeItem{CreditorName: "NO DATE"}

	e := testEngine()
	e.EvaluateInquiry(&old)
	e.EvaluateInquiry(&recent)
	e.EvaluateInquiry(&undated)

	if !old.IsPastFcraLimit {
		t.Error("three-year-old inquiry not flagged past limit")
	}
	if recent.IsPastFcraLimit {
		t.Error("six-month-old inquiry flagged past limit")
	}
	if recent.DaysSinceInquiry == nil || *recent.DaysSinceInquiry != 182 {
		t.Errorf("days since inquiry = %v, want 182", recent.DaysSinceInquiry)
	}
	if undated.IsPastFcraLimit || undated.DaysSinceInquiry != nil {
		t.Error("undated inquiry should stay unflagged")
	}
}

func TestGateHighRiskCodeWithoutEvidence(t *testing.T) {
	result := ValidateDispute(GateInput{ReasonCodes: []string{"not_mine"}})
	if result.Compliant {
		t.Error("gate passed an unsupported high-risk claim")
	}
	if len(result.Violations) != 2 {
		t.Fatalf("violations = %v, want exactly 2 (evidence and confirmation)", result.Violations)
	}
}

func TestGateHighRiskCodeFullySupported(t *testing.T) {
	result := ValidateDispute(GateInput{
		ReasonCodes:                   []string{"identity_theft", "inaccurate_balance"},
		EvidenceDocumentIDs:           []string{"doc-ftc-report-1"},
		ClientConfirmedOwnershipClaim: true,
	})
	if !result.Compliant {
		t.Errorf("gate blocked a supported claim: %v", result.Violations)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestGateEmptyReasonCodes(t *testing.T) {
	result := ValidateDispute(GateInput{})
	if result.Compliant || len(result.Violations) != 1 {
		t.Errorf("empty reason codes: compliant=%v violations=%v", result.Compliant, result.Violations)
	}
}

func TestGateObsoleteWarnsButPasses(t *testing.T) {
	result := ValidateDispute(GateInput{ReasonCodes: []string{"obsolete"}})
	if !result.Compliant {
		t.Errorf("obsolete alone should pass, got violations %v", result.Violations)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("warnings = %v, want one obsolete cross-check warning", result.Warnings)
	}
}
