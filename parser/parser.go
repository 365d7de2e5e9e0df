// Package parser runs the full report pipeline: ingest, extract, analyze
// payment grids, classify accounts, build negative items, and compute the
// compliance and discrepancy outputs for one report.
package parser

import (
	"fmt"
	"time"

	"credit-report-engine/classifier"
	"credit-report-engine/compliance"
	"credit-report-engine/discrepancy"
	"credit-report-engine/document"
	"credit-report-engine/extractor"
	"credit-report-engine/methodology"
	"credit-report-engine/models"
)

// Result is the complete derived record set for one report. It exists only
// in memory until the caller persists it; a failed parse leaves nothing
// behind.
type Result struct {
	Context         models.ReportContext               `json:"context"`
	Scores          models.BureauScores                `json:"scores"`
	Accounts        []models.ParsedAccount             `json:"accounts"`
	NegativeItems   []models.NegativeItem              `json:"negative_items"`
	PersonalInfo    []models.PersonalInfoDisputeItem   `json:"personal_info"`
	Inquiries       []models.InquiryDisputeItem        `json:"inquiries"`
	Compliance      []models.FcraComplianceItem        `json:"compliance"`
	Discrepancies   []models.BureauDiscrepancy         `json:"discrepancies"`
	Recommendations []models.MethodologyRecommendation `json:"recommendations"`
	Summary         models.ReportSummary               `json:"summary"`
}

// Parser wires the pipeline stages together. The zero value uses the real
// clock for reporting-limit arithmetic.
type Parser struct {
	engine compliance.Engine
}

// New returns a parser using the system clock.
func New() *Parser {
	return &Parser{}
}

// NewWithClock returns a parser whose reporting-limit arithmetic runs
// against the given clock.
func NewWithClock(now func() time.Time) *Parser {
	return &Parser{engine: compliance.Engine{Now: now}}
}

// Parse runs the whole pipeline over one report. The pipeline is synchronous
// and CPU-bound; the only failure is a document with no recognizable report
// structure, which surfaces document.ErrNoReportStructure.
func (p *Parser) Parse(content string, ctx models.ReportContext) (*Result, error) {
	doc, err := document.Ingest(content)
	if err != nil {
		return nil, fmt.Errorf("ingesting report: %w", err)
	}

	ex := extractor.New(doc)
	result := &Result{
		Context: ctx,
		Scores:  ex.Scores(),
	}

	result.PersonalInfo = personalInfoItems(ex.PersonalInfo(), ctx)

	nb := classifier.NewNegativeItemBuilder(ctx)
	for _, block := range ex.AccountBlocks() {
		var histories models.PaymentHistories
		if block.Grid != nil {
			histories = extractor.AnalyzeGrid(*block.Grid)
		}
		accounts := classifier.BuildAccounts(block, histories, ctx)
		result.Accounts = append(result.Accounts, accounts...)

		if item := nb.AddTradeline(accounts); item != nil {
			classifier.AddTradelineFields(item, block.Fields)
			result.NegativeItems = append(result.NegativeItems, *item)
		}
	}

	publicRecordCount := 0
	for _, fields := range ex.PublicRecords() {
		if item := nb.AddPublicRecord(fields); item != nil {
			result.NegativeItems = append(result.NegativeItems, *item)
			publicRecordCount++
		}
	}

	for _, inq := range ex.Inquiries() {
		item := models.InquiryDisputeItem{
			CreditorName: inq.CreditorName,
			Bureau:       inq.Bureau,
			InquiryDate:  inq.Date,
			InquiryType:  inq.InquiryType,
		}
		if item.Bureau == nil {
			if single, ok := ctx.SingleBureau(); ok {
				b := single
				item.Bureau = &b
			}
		}
		p.engine.EvaluateInquiry(&item)
		result.Inquiries = append(result.Inquiries, item)
	}

	// Round-one methodology per item; the lead reason code becomes the item's
	// dispute reason. Later rounds are selected per outcome via the API.
	for i := range result.NegativeItems {
		if rec := methodology.Select(result.NegativeItems[i], 1, "", ""); rec != nil {
			result.Recommendations = append(result.Recommendations, *rec)
			if len(rec.ReasonCodes) > 0 {
				reason := rec.ReasonCodes[0]
				result.NegativeItems[i].DisputeReason = &reason
			}
		}
	}

	result.Compliance = p.engine.EvaluateAll(result.NegativeItems)
	result.Discrepancies = discrepancy.Detect(result.Accounts, result.PersonalInfo)
	result.Summary = summarize(result, publicRecordCount)
	return result, nil
}

// personalInfoFields maps extracted fields onto the dispute-item types, in
// output order.
var personalInfoFields = []struct {
	field extractor.Field
	typ   models.PersonalInfoType
}{
	{extractor.FieldName, models.InfoName},
	{extractor.FieldAlsoKnownAs, models.InfoAlsoKnownAs},
	{extractor.FieldFormerName, models.InfoFormerName},
	{extractor.FieldDateOfBirth, models.InfoDateOfBirth},
	{extractor.FieldCurrentAddress, models.InfoCurrentAddress},
	{extractor.FieldPreviousAddress, models.InfoPreviousAddress},
	{extractor.FieldEmployer, models.InfoEmployer},
}

func personalInfoItems(fields extractor.FieldMap, ctx models.ReportContext) []models.PersonalInfoDisputeItem {
	var out []models.PersonalInfoDisputeItem
	single, isSingle := ctx.SingleBureau()
	for _, m := range personalInfoFields {
		triple, ok := fields[m.field]
		if !ok {
			continue
		}
		if isSingle {
			if v := triple.First(); v != nil {
				out = append(out, models.PersonalInfoDisputeItem{Type: m.typ, Bureau: single, Value: *v})
			}
			continue
		}
		for _, b := range models.AllBureaus() {
			if v := triple.For(b); v != nil {
				out = append(out, models.PersonalInfoDisputeItem{Type: m.typ, Bureau: b, Value: *v})
			}
		}
	}
	return out
}

// summarize computes the per-report metrics record. Utilization is revolving
// balance over revolving limit and is omitted when no limits are reported.
func summarize(r *Result, publicRecordCount int) models.ReportSummary {
	s := models.ReportSummary{
		Scores:            r.Scores,
		TotalAccounts:     len(r.Accounts),
		NegativeItemCount: len(r.NegativeItems),
		InquiryCount:      len(r.Inquiries),
		PublicRecordCount: publicRecordCount,
	}
	var revolvingBalance, revolvingLimit int64
	for _, a := range r.Accounts {
		if a.AccountStatus == models.AccountStatusOpen {
			s.OpenAccounts++
		}
		if a.IsNegative {
			s.NegativeAccounts++
		}
		if a.BalanceCents != nil {
			s.TotalBalanceCents += *a.BalanceCents
		}
		if a.CreditLimitCents != nil {
			s.TotalCreditLimitCents += *a.CreditLimitCents
		}
		if a.AccountType == models.AccountTypeRevolving {
			if a.BalanceCents != nil {
				revolvingBalance += *a.BalanceCents
			}
			if a.CreditLimitCents != nil {
				revolvingLimit += *a.CreditLimitCents
			}
		}
	}
	if revolvingLimit > 0 {
		u := float64(revolvingBalance) / float64(revolvingLimit) * 100
		s.UtilizationPercent = &u
	}
	return s
}
