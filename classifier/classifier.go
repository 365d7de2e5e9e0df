// Package classifier fuses extracted account fields and payment-history
// analysis into normalized account records and deduplicated negative items.
package classifier

import (
	"strings"

	"credit-report-engine/extractor"
	"credit-report-engine/models"
)

// negativePaymentPatterns are the payment-status texts that mark an account
// derogatory regardless of what the account-status column says.
var negativePaymentPatterns = []string{
	"collection/chargeoff",
	"charge off",
	"chargeoff",
	"charge-off",
	"collection",
	"late 30",
	"late 60",
	"late 90",
	"late 120",
	"late 150",
	"late 180",
	"30 days late",
	"60 days late",
	"90 days late",
	"120 days late",
	"150 days late",
	"180 days late",
	"repossession",
	"foreclosure",
}

// BuildAccounts converts one extracted tradeline into per-bureau account
// records. A report declaring a single bureau maps the first populated column
// onto that bureau; otherwise each populated column yields one account.
func BuildAccounts(block extractor.AccountBlock, histories models.PaymentHistories, ctx models.ReportContext) []models.ParsedAccount {
	if single, ok := ctx.SingleBureau(); ok {
		if acct := buildSingleBureauAccount(block, histories, single); acct != nil {
			return []models.ParsedAccount{*acct}
		}
		return nil
	}

	var accounts []models.ParsedAccount
	for _, b := range models.AllBureaus() {
		if !bureauHasData(block.Fields, b) {
			continue
		}
		accounts = append(accounts, buildAccount(block, histories, b, func(f extractor.Field) *string {
			return block.Fields[f].For(b)
		}))
	}
	return accounts
}

func buildSingleBureauAccount(block extractor.AccountBlock, histories models.PaymentHistories, b models.Bureau) *models.ParsedAccount {
	any := false
	for _, triple := range block.Fields {
		if triple.First() != nil {
			any = true
			break
		}
	}
	if !any {
		return nil
	}
	acct := buildAccount(block, histories, b, func(f extractor.Field) *string {
		return block.Fields[f].First()
	})
	return &acct
}

func bureauHasData(fields extractor.FieldMap, b models.Bureau) bool {
	for _, f := range []extractor.Field{
		extractor.FieldAccountNumber, extractor.FieldAccountStatus,
		extractor.FieldBalance, extractor.FieldDateReported, extractor.FieldPaymentStatus,
	} {
		if fields[f].For(b) != nil {
			return true
		}
	}
	return false
}

func buildAccount(block extractor.AccountBlock, histories models.PaymentHistories, b models.Bureau, get func(extractor.Field) *string) models.ParsedAccount {
	acct := models.ParsedAccount{
		CreditorName:   block.CreditorName,
		Bureau:         b,
		PaymentHistory: histories,
		AccountStatus:  models.AccountStatusUnknown,
		AccountType:    models.AccountTypeOther,
	}
	if v := get(extractor.FieldAccountNumber); v != nil {
		acct.AccountNumber = *v
	}
	if v := get(extractor.FieldAccountType); v != nil {
		acct.AccountType = normalizeAccountType(*v)
	}
	if v := get(extractor.FieldAccountStatus); v != nil {
		acct.AccountStatus = normalizeAccountStatus(*v)
	}
	if v := get(extractor.FieldPaymentStatus); v != nil {
		acct.PaymentStatus = normalizePaymentStatus(*v)
	}
	if v := get(extractor.FieldBalance); v != nil {
		acct.BalanceCents = models.ParseCents(*v)
	}
	if v := get(extractor.FieldCreditLimit); v != nil {
		acct.CreditLimitCents = models.ParseCents(*v)
	}
	if v := get(extractor.FieldHighCredit); v != nil {
		acct.HighCreditCents = models.ParseCents(*v)
	}
	if v := get(extractor.FieldMonthlyPayment); v != nil {
		acct.MonthlyPaymentCents = models.ParseCents(*v)
	}
	if v := get(extractor.FieldPastDue); v != nil {
		acct.PastDueCents = models.ParseCents(*v)
	}
	if v := get(extractor.FieldDateOpened); v != nil {
		acct.DateOpened = models.ParseReportDate(*v)
	}
	if v := get(extractor.FieldDateReported); v != nil {
		acct.DateReported = models.ParseReportDate(*v)
	}

	rawPayment := ""
	if v := get(extractor.FieldPaymentStatus); v != nil {
		rawPayment = *v
	}
	acct.IsNegative = isDerogatory(acct, rawPayment)
	acct.RiskLevel = riskLevel(acct)
	return acct
}

// isDerogatory: explicit derogatory status, a negative payment-status
// pattern, or 30+ days late in the grid. The grid is authoritative even when
// the summary text claims the account is current.
func isDerogatory(acct models.ParsedAccount, rawPaymentStatus string) bool {
	if acct.AccountStatus == models.AccountStatusDerogatory ||
		acct.AccountStatus == models.AccountStatusCollection ||
		acct.AccountStatus == models.AccountStatusChargeOff {
		return true
	}
	if matchesNegativePattern(rawPaymentStatus) {
		return true
	}
	return maxLateDaysFor(acct) >= 30
}

func matchesNegativePattern(paymentStatus string) bool {
	s := strings.ToLower(paymentStatus)
	for _, p := range negativePaymentPatterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func maxLateDaysFor(acct models.ParsedAccount) int {
	if h := acct.HistoryForOwnBureau(); h != nil {
		return h.MaxLateDays
	}
	return 0
}

// ItemTypeFor assigns the dispute item type by fixed priority:
// collection > charge_off > late_payment > derogatory.
func ItemTypeFor(acct models.ParsedAccount) models.ItemType {
	payment := acct.PaymentStatus
	switch {
	case acct.AccountStatus == models.AccountStatusCollection ||
		acct.AccountType == models.AccountTypeCollection ||
		strings.Contains(payment, "collection"):
		return models.ItemCollection
	case acct.AccountStatus == models.AccountStatusChargeOff ||
		strings.Contains(payment, "charge"):
		return models.ItemChargeOff
	case strings.Contains(payment, "late") || maxLateDaysFor(acct) >= 30:
		return models.ItemLatePayment
	default:
		return models.ItemDerogatory
	}
}

// riskLevel grades the account itself. Negative accounts floor at medium.
func riskLevel(acct models.ParsedAccount) models.RiskLevel {
	if !acct.IsNegative {
		return models.RiskLow
	}
	if acct.AccountStatus == models.AccountStatusCollection ||
		acct.AccountStatus == models.AccountStatusChargeOff ||
		maxLateDaysFor(acct) >= 90 {
		return models.RiskHigh
	}
	return models.RiskMedium
}

func normalizeAccountType(raw string) models.AccountType {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "revolv"), strings.Contains(s, "credit card"):
		return models.AccountTypeRevolving
	case strings.Contains(s, "install"), strings.Contains(s, "auto"), strings.Contains(s, "student"):
		return models.AccountTypeInstallment
	case strings.Contains(s, "mortgage"), strings.Contains(s, "real estate"):
		return models.AccountTypeMortgage
	case strings.Contains(s, "collection"):
		return models.AccountTypeCollection
	default:
		return models.AccountTypeOther
	}
}

func normalizeAccountStatus(raw string) models.AccountStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "derogatory":
		return models.AccountStatusDerogatory
	case strings.Contains(s, "charge"):
		return models.AccountStatusChargeOff
	case strings.Contains(s, "collection"):
		return models.AccountStatusCollection
	case strings.Contains(s, "transfer"):
		return models.AccountStatusTransferred
	case strings.Contains(s, "paid"):
		return models.AccountStatusPaid
	case strings.Contains(s, "closed"):
		return models.AccountStatusClosed
	case strings.Contains(s, "open"), strings.Contains(s, "current"):
		return models.AccountStatusOpen
	default:
		return models.AccountStatusUnknown
	}
}

// normalizePaymentStatus maps vendor payment-status prose onto the
// enum-like strings the dispute layer keys on.
func normalizePaymentStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "", s == "unknown":
		return ""
	case strings.Contains(s, "pays as agreed"), s == "current", strings.Contains(s, "paid as agreed"):
		return "current"
	case strings.Contains(s, "collection"):
		return "collection_chargeoff"
	case strings.Contains(s, "charge"):
		return "charge_off"
	case strings.Contains(s, "180"):
		return "180_days_late"
	case strings.Contains(s, "150"):
		return "150_days_late"
	case strings.Contains(s, "120"):
		return "120_days_late"
	case strings.Contains(s, "90"):
		return "90_days_late"
	case strings.Contains(s, "60"):
		return "60_days_late"
	case strings.Contains(s, "30"):
		return "30_days_late"
	default:
		return strings.ReplaceAll(s, " ", "_")
	}
}
