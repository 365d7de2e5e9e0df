// Package compliance computes FCRA reporting-limit arithmetic for negative
// items and validates dispute reason codes before letters go out.
package compliance

import (
	"time"

	"credit-report-engine/models"
)

const (
	// approachingWindowDays is the pre-expiration window in which an item is
	// flagged for downstream prioritization.
	approachingWindowDays = 180

	// InquiryLimitYears is the FCRA reporting limit for hard inquiries.
	InquiryLimitYears = 2
)

// reportingLimitYears is the FCRA reporting-limit table. Bankruptcy carries
// the 10-year limit for every chapter, including Chapter 13. That matches the
// production policy in force and is pending legal sign-off, not a bug.
var reportingLimitYears = map[models.ItemType]int{
	models.ItemCollection:   7,
	models.ItemChargeOff:    7,
	models.ItemLatePayment:  7,
	models.ItemForeclosure:  7,
	models.ItemRepossession: 7,
	models.ItemDerogatory:   7,
	models.ItemJudgment:     7,
	models.ItemTaxLien:      7,
	models.ItemBankruptcy:   10,
	models.ItemInquiry:      InquiryLimitYears,
}

// Engine evaluates reporting limits against a clock. Now is swappable for
// tests; a zero Engine uses time.Now.
type Engine struct {
	Now func() time.Time
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// LimitYearsFor returns the reporting limit for an item type, defaulting to
// the general 7-year limit for types the table does not name.
func LimitYearsFor(itemType models.ItemType) int {
	if years, ok := reportingLimitYears[itemType]; ok {
		return years
	}
	return 7
}

// Evaluate computes the reporting-limit record for one negative item. The
// date of first delinquency falls back from last activity to date reported;
// when neither is known the limit state is undetermined, never false.
func (e Engine) Evaluate(item models.NegativeItem) models.FcraComplianceItem {
	dofd := item.DateOfLastActivity
	if dofd == nil {
		dofd = item.DateReported
	}
	out := models.FcraComplianceItem{
		ItemType:               item.ItemType,
		CreditorName:           item.CreditorName,
		DateOfFirstDelinquency: dofd,
		ReportingLimitYears:    LimitYearsFor(item.ItemType),
		PastLimit:              models.LimitUndetermined,
	}
	if dofd == nil {
		return out
	}

	expiration := dofd.AddDate(out.ReportingLimitYears, 0, 0)
	out.FcraExpirationDate = &expiration

	days := daysUntil(e.now(), expiration)
	out.DaysUntilExpiration = &days
	if days <= 0 {
		out.PastLimit = models.LimitPast
	} else {
		out.PastLimit = models.LimitNotPast
	}
	out.ApproachingLimit = days > 0 && days < approachingWindowDays
	return out
}

// EvaluateAll runs Evaluate over a full item set.
func (e Engine) EvaluateAll(items []models.NegativeItem) []models.FcraComplianceItem {
	out := make([]models.FcraComplianceItem, 0, len(items))
	for _, item := range items {
		out = append(out, e.Evaluate(item))
	}
	return out
}

// EvaluateInquiry applies the two-year inquiry limit. Inquiries with no date
// are left unflagged with no day count.
func (e Engine) EvaluateInquiry(item *models.InquiryDisputeItem) {
	if item == nil || item.InquiryDate == nil {
		return
	}
	limit := item.InquiryDate.AddDate(InquiryLimitYears, 0, 0)
	item.IsPastFcraLimit = !e.now().Before(limit)
	since := int(e.now().Sub(*item.InquiryDate).Hours() / 24)
	item.DaysSinceInquiry = &since
}

// daysUntil is ceil((expiration - now) / 24h); negative when past.
func daysUntil(now, expiration time.Time) int {
	d := expiration.Sub(now)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}
