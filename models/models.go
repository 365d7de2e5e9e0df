package models

import (
	"strings"
	"time"
)

// Bureau identifies one of the three consumer credit reporting agencies.
type Bureau string

const (
	BureauTransUnion Bureau = "transunion"
	BureauExperian   Bureau = "experian"
	BureauEquifax    Bureau = "equifax"
)

// AllBureaus returns the bureaus in their fixed column order.
func AllBureaus() []Bureau {
	return []Bureau{BureauTransUnion, BureauExperian, BureauEquifax}
}

// ReportContext is the declared report-level bureau context. A report either
// covers a single bureau, all three ("combined"), or leaves it unspecified.
type ReportContext string

const (
	ContextTransUnion ReportContext = "transunion"
	ContextExperian   ReportContext = "experian"
	ContextEquifax    ReportContext = "equifax"
	ContextCombined   ReportContext = "combined"
	ContextUnknown    ReportContext = ""
)

// SingleBureau returns the bureau a context names, or false for
// combined/unknown contexts.
func (c ReportContext) SingleBureau() (Bureau, bool) {
	switch c {
	case ContextTransUnion:
		return BureauTransUnion, true
	case ContextExperian:
		return BureauExperian, true
	case ContextEquifax:
		return BureauEquifax, true
	}
	return "", false
}

// BureauPresence is a fixed three-slot presence flag set, one slot per bureau.
type BureauPresence struct {
	TransUnion bool `json:"on_transunion"`
	Experian   bool `json:"on_experian"`
	Equifax    bool `json:"on_equifax"`
}

// On reports whether the item is present on the given bureau.
func (p BureauPresence) On(b Bureau) bool {
	switch b {
	case BureauTransUnion:
		return p.TransUnion
	case BureauExperian:
		return p.Experian
	case BureauEquifax:
		return p.Equifax
	}
	return false
}

// Set marks presence for the given bureau.
func (p *BureauPresence) Set(b Bureau, v bool) {
	switch b {
	case BureauTransUnion:
		p.TransUnion = v
	case BureauExperian:
		p.Experian = v
	case BureauEquifax:
		p.Equifax = v
	}
}

// Any reports whether the item is present on at least one bureau.
func (p BureauPresence) Any() bool {
	return p.TransUnion || p.Experian || p.Equifax
}

// Bureaus returns the bureaus the item is present on, in fixed column order.
func (p BureauPresence) Bureaus() []Bureau {
	var out []Bureau
	for _, b := range AllBureaus() {
		if p.On(b) {
			out = append(out, b)
		}
	}
	return out
}

// AccountType classifies the kind of tradeline.
type AccountType string

const (
	AccountTypeRevolving   AccountType = "revolving"
	AccountTypeInstallment AccountType = "installment"
	AccountTypeMortgage    AccountType = "mortgage"
	AccountTypeCollection  AccountType = "collection"
	AccountTypeOther       AccountType = "other"
)

// AccountStatus is the normalized account standing.
type AccountStatus string

const (
	AccountStatusOpen        AccountStatus = "open"
	AccountStatusClosed      AccountStatus = "closed"
	AccountStatusCollection  AccountStatus = "collection"
	AccountStatusChargeOff   AccountStatus = "charge_off"
	AccountStatusDerogatory  AccountStatus = "derogatory"
	AccountStatusPaid        AccountStatus = "paid"
	AccountStatusTransferred AccountStatus = "transferred"
	AccountStatusUnknown     AccountStatus = "unknown"
)

// RiskLevel grades a parsed account.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskSeverity grades a negative item.
type RiskSeverity string

const (
	SeverityLow    RiskSeverity = "low"
	SeverityMedium RiskSeverity = "medium"
	SeverityHigh   RiskSeverity = "high"
	SeveritySevere RiskSeverity = "severe"
)

// ItemType classifies a negative item for dispute and compliance purposes.
type ItemType string

const (
	ItemCollection   ItemType = "collection"
	ItemChargeOff    ItemType = "charge_off"
	ItemLatePayment  ItemType = "late_payment"
	ItemDerogatory   ItemType = "derogatory"
	ItemBankruptcy   ItemType = "bankruptcy"
	ItemForeclosure  ItemType = "foreclosure"
	ItemRepossession ItemType = "repossession"
	ItemJudgment     ItemType = "judgment"
	ItemTaxLien      ItemType = "tax_lien"
	ItemInquiry      ItemType = "inquiry"
)

// PaymentHistorySummary aggregates one bureau's two-year payment grid.
type PaymentHistorySummary struct {
	LateCount30     int `json:"late_count_30"`
	LateCount60     int `json:"late_count_60"`
	LateCount90     int `json:"late_count_90"`
	LateCount120    int `json:"late_count_120"`
	LateCount150    int `json:"late_count_150"`
	LateCount180    int `json:"late_count_180"`
	ChargeOffCount  int `json:"charge_off_count"`
	CollectionCount int `json:"collection_count"`
	MaxLateDays     int `json:"max_late_days"`
}

// TotalLateCount is the number of late cells across all buckets.
func (s PaymentHistorySummary) TotalLateCount() int {
	return s.LateCount30 + s.LateCount60 + s.LateCount90 +
		s.LateCount120 + s.LateCount150 + s.LateCount180
}

// PaymentHistories holds one grid summary per bureau row. A nil slot means
// the report carried no grid row for that bureau.
type PaymentHistories struct {
	TransUnion *PaymentHistorySummary `json:"transunion,omitempty"`
	Experian   *PaymentHistorySummary `json:"experian,omitempty"`
	Equifax    *PaymentHistorySummary `json:"equifax,omitempty"`
}

// For returns the summary for one bureau, or nil.
func (h PaymentHistories) For(b Bureau) *PaymentHistorySummary {
	switch b {
	case BureauTransUnion:
		return h.TransUnion
	case BureauExperian:
		return h.Experian
	case BureauEquifax:
		return h.Equifax
	}
	return nil
}

// Put stores the summary for one bureau.
func (h *PaymentHistories) Put(b Bureau, s *PaymentHistorySummary) {
	switch b {
	case BureauTransUnion:
		h.TransUnion = s
	case BureauExperian:
		h.Experian = s
	case BureauEquifax:
		h.Equifax = s
	}
}

// ParsedAccount is one tradeline as reported by one bureau column.
type ParsedAccount struct {
	CreditorName        string           `json:"creditor_name"`
	AccountNumber       string           `json:"account_number"`
	AccountType         AccountType      `json:"account_type"`
	AccountStatus       AccountStatus    `json:"account_status"`
	PaymentStatus       string           `json:"payment_status"`
	BalanceCents        *int64           `json:"balance_cents,omitempty"`
	CreditLimitCents    *int64           `json:"credit_limit_cents,omitempty"`
	HighCreditCents     *int64           `json:"high_credit_cents,omitempty"`
	MonthlyPaymentCents *int64           `json:"monthly_payment_cents,omitempty"`
	PastDueCents        *int64           `json:"past_due_cents,omitempty"`
	DateOpened          *time.Time       `json:"date_opened,omitempty"`
	DateReported        *time.Time       `json:"date_reported,omitempty"`
	Bureau              Bureau           `json:"bureau"`
	IsNegative          bool             `json:"is_negative"`
	RiskLevel           RiskLevel        `json:"risk_level"`
	PaymentHistory      PaymentHistories `json:"payment_history"`
}

// HistoryForOwnBureau is the grid summary for the account's own bureau column.
func (a ParsedAccount) HistoryForOwnBureau() *PaymentHistorySummary {
	return a.PaymentHistory.For(a.Bureau)
}

// BureauItemDetail is the per-bureau slice of a negative item.
type BureauItemDetail struct {
	DateReported *time.Time `json:"date_reported,omitempty"`
	Status       *string    `json:"status,omitempty"`
	BalanceCents *int64     `json:"balance_cents,omitempty"`
}

// BureauItemDetails holds one optional detail per bureau.
type BureauItemDetails struct {
	TransUnion *BureauItemDetail `json:"transunion,omitempty"`
	Experian   *BureauItemDetail `json:"experian,omitempty"`
	Equifax    *BureauItemDetail `json:"equifax,omitempty"`
}

// For returns the detail for one bureau, or nil.
func (d BureauItemDetails) For(b Bureau) *BureauItemDetail {
	switch b {
	case BureauTransUnion:
		return d.TransUnion
	case BureauExperian:
		return d.Experian
	case BureauEquifax:
		return d.Equifax
	}
	return nil
}

// Put stores the detail for one bureau.
func (d *BureauItemDetails) Put(b Bureau, detail *BureauItemDetail) {
	switch b {
	case BureauTransUnion:
		d.TransUnion = detail
	case BureauExperian:
		d.Experian = detail
	case BureauEquifax:
		d.Equifax = detail
	}
}

// NegativeItem is one logical disputable item, deduplicated across bureaus.
type NegativeItem struct {
	ItemType           ItemType          `json:"item_type"`
	CreditorName       string            `json:"creditor_name"`
	OriginalCreditor   *string           `json:"original_creditor,omitempty"`
	AmountCents        *int64            `json:"amount_cents,omitempty"`
	DateReported       *time.Time        `json:"date_reported,omitempty"`
	DateOfLastActivity *time.Time        `json:"date_of_last_activity,omitempty"`
	AccountNumber      string            `json:"account_number,omitempty"`
	Bureau             Bureau            `json:"bureau"`
	Presence           BureauPresence    `json:"presence"`
	Details            BureauItemDetails `json:"details"`
	RiskSeverity       RiskSeverity      `json:"risk_severity"`
	RecommendedAction  string            `json:"recommended_action"`
	DisputeReason      *string           `json:"dispute_reason,omitempty"`
}

// PersonalInfoType classifies a personal-information entry.
type PersonalInfoType string

const (
	InfoName            PersonalInfoType = "name"
	InfoAlsoKnownAs     PersonalInfoType = "also_known_as"
	InfoFormerName      PersonalInfoType = "former_name"
	InfoDateOfBirth     PersonalInfoType = "date_of_birth"
	InfoCurrentAddress  PersonalInfoType = "current_address"
	InfoPreviousAddress PersonalInfoType = "previous_address"
	InfoEmployer        PersonalInfoType = "employer"
)

// PersonalInfoDisputeItem is one personal-information value on one bureau.
type PersonalInfoDisputeItem struct {
	Type   PersonalInfoType `json:"type"`
	Bureau Bureau           `json:"bureau"`
	Value  string           `json:"value"`
}

// InquiryDisputeItem is one hard inquiry, with its FCRA two-year limit state.
type InquiryDisputeItem struct {
	CreditorName     string     `json:"creditor_name"`
	Bureau           *Bureau    `json:"bureau,omitempty"`
	InquiryDate      *time.Time `json:"inquiry_date,omitempty"`
	InquiryType      *string    `json:"inquiry_type,omitempty"`
	IsPastFcraLimit  bool       `json:"is_past_fcra_limit"`
	DaysSinceInquiry *int       `json:"days_since_inquiry,omitempty"`
}

// DiscrepancyType classifies what a cross-bureau discrepancy is about.
type DiscrepancyType string

const (
	DiscrepancyBalance        DiscrepancyType = "account_balance"
	DiscrepancyStatus         DiscrepancyType = "account_status"
	DiscrepancyPaymentHistory DiscrepancyType = "payment_history"
	DiscrepancyPIIName        DiscrepancyType = "pii_name"
	DiscrepancyPIIAddress     DiscrepancyType = "pii_address"
)

// BureauValues holds one optional raw value per bureau.
type BureauValues struct {
	TransUnion *string `json:"transunion,omitempty"`
	Experian   *string `json:"experian,omitempty"`
	Equifax    *string `json:"equifax,omitempty"`
}

// For returns the value for one bureau, or nil.
func (v BureauValues) For(b Bureau) *string {
	switch b {
	case BureauTransUnion:
		return v.TransUnion
	case BureauExperian:
		return v.Experian
	case BureauEquifax:
		return v.Equifax
	}
	return nil
}

// Put stores the value for one bureau.
func (v *BureauValues) Put(b Bureau, s *string) {
	switch b {
	case BureauTransUnion:
		v.TransUnion = s
	case BureauExperian:
		v.Experian = s
	case BureauEquifax:
		v.Equifax = s
	}
}

// DistinctNonNil returns the set of distinct non-nil values across bureaus.
func (v BureauValues) DistinctNonNil() []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range AllBureaus() {
		if s := v.For(b); s != nil && !seen[*s] {
			seen[*s] = true
			out = append(out, *s)
		}
	}
	return out
}

// BureauDiscrepancy is one cross-bureau inconsistency for one field.
type BureauDiscrepancy struct {
	Type           DiscrepancyType `json:"discrepancy_type"`
	Field          string          `json:"field"`
	CreditorName   *string         `json:"creditor_name,omitempty"`
	AccountNumber  *string         `json:"account_number,omitempty"`
	Values         BureauValues    `json:"values"`
	Severity       RiskLevel       `json:"severity"`
	IsDisputable   bool            `json:"is_disputable"`
	Recommendation string          `json:"recommendation"`
}

// LimitStatus is the tri-state FCRA reporting-limit determination. It is only
// past/not_past when the date of first delinquency is known.
type LimitStatus string

const (
	LimitPast         LimitStatus = "past"
	LimitNotPast      LimitStatus = "not_past"
	LimitUndetermined LimitStatus = "undetermined"
)

// FcraComplianceItem carries the reporting-limit arithmetic for one item.
type FcraComplianceItem struct {
	ItemType               ItemType    `json:"item_type"`
	CreditorName           string      `json:"creditor_name"`
	DateOfFirstDelinquency *time.Time  `json:"date_of_first_delinquency,omitempty"`
	ReportingLimitYears    int         `json:"reporting_limit_years"`
	FcraExpirationDate     *time.Time  `json:"fcra_expiration_date,omitempty"`
	DaysUntilExpiration    *int        `json:"days_until_expiration,omitempty"`
	PastLimit              LimitStatus `json:"is_past_limit"`
	ApproachingLimit       bool        `json:"approaching_limit"`
}

// MethodologyRecommendation is the dispute strategy chosen for one item in
// one round, with the escalation map for subsequent outcomes.
type MethodologyRecommendation struct {
	CreditorName string            `json:"creditor_name"`
	ItemType     ItemType          `json:"item_type"`
	Round        int               `json:"round"`
	Methodology  string            `json:"methodology"`
	ReasonCodes  []string          `json:"reason_codes"`
	Escalation   map[string]string `json:"escalation"`
}

// BureauScores holds the per-bureau credit scores found in the score section.
type BureauScores struct {
	TransUnion *int `json:"transunion,omitempty"`
	Experian   *int `json:"experian,omitempty"`
	Equifax    *int `json:"equifax,omitempty"`
}

// ReportSummary is the per-report metrics record handed to consumers.
type ReportSummary struct {
	Scores                BureauScores `json:"scores"`
	TotalAccounts         int          `json:"total_accounts"`
	OpenAccounts          int          `json:"open_accounts"`
	NegativeAccounts      int          `json:"negative_accounts"`
	NegativeItemCount     int          `json:"negative_item_count"`
	InquiryCount          int          `json:"inquiry_count"`
	PublicRecordCount     int          `json:"public_record_count"`
	TotalBalanceCents     int64        `json:"total_balance_cents"`
	TotalCreditLimitCents int64        `json:"total_credit_limit_cents"`
	UtilizationPercent    *float64     `json:"utilization_percent,omitempty"`
}

// IsPlaceholder reports whether a raw report value means "no data". The
// portals print "-" or blank cells for fields a bureau does not report.
func IsPlaceholder(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || t == "-" || t == "--"
}

// NormalizeCreditor lower-cases a creditor name and strips everything that is
// not a letter or digit, so "Capital One, N.A." and "CAPITAL ONE NA" compare
// equal when matching tradelines across bureaus.
func NormalizeCreditor(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
