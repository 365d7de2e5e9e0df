// Package discrepancy cross-references a client's tradelines and personal
// information across the three bureaus and flags inconsistencies.
package discrepancy

import (
	"fmt"
	"sort"

	"credit-report-engine/models"
)

// Detect runs the full cross-bureau comparison for one client's record set.
func Detect(accounts []models.ParsedAccount, personalInfo []models.PersonalInfoDisputeItem) []models.BureauDiscrepancy {
	out := accountDiscrepancies(accounts)
	out = append(out, personalInfoDiscrepancies(personalInfo)...)
	return out
}

// accountDiscrepancies groups accounts by normalized creditor and compares
// balance, status and payment status across the bureaus each group spans.
// One record per mismatched field, never one per bureau pair.
func accountDiscrepancies(accounts []models.ParsedAccount) []models.BureauDiscrepancy {
	groups := make(map[string][]models.ParsedAccount)
	var order []string
	for _, a := range accounts {
		key := models.NormalizeCreditor(a.CreditorName)
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], a)
	}
	sort.Strings(order)

	var out []models.BureauDiscrepancy
	for _, key := range order {
		group := groups[key]
		if bureauSpan(group) < 2 {
			continue
		}
		out = append(out, compareGroup(group)...)
	}
	return out
}

func bureauSpan(group []models.ParsedAccount) int {
	var p models.BureauPresence
	for _, a := range group {
		p.Set(a.Bureau, true)
	}
	return len(p.Bureaus())
}

func compareGroup(group []models.ParsedAccount) []models.BureauDiscrepancy {
	creditor := group[0].CreditorName
	var accountNumber *string
	if n := group[0].AccountNumber; n != "" {
		accountNumber = &n
	}

	var out []models.BureauDiscrepancy

	balances := valuesBy(group, func(a models.ParsedAccount) *string {
		if a.BalanceCents == nil {
			return nil
		}
		s := models.FormatCents(*a.BalanceCents)
		return &s
	})
	if len(balances.DistinctNonNil()) > 1 {
		out = append(out, models.BureauDiscrepancy{
			Type:          models.DiscrepancyBalance,
			Field:         "balance",
			CreditorName:  &creditor,
			AccountNumber: accountNumber,
			Values:        balances,
			Severity:      models.RiskMedium,
			IsDisputable:  true,
			Recommendation: fmt.Sprintf(
				"Dispute the balance reported for %s: the bureaus disagree on the amount owed", creditor),
		})
	}

	statuses := valuesBy(group, func(a models.ParsedAccount) *string {
		if a.AccountStatus == models.AccountStatusUnknown {
			return nil
		}
		s := string(a.AccountStatus)
		return &s
	})
	if len(statuses.DistinctNonNil()) > 1 {
		out = append(out, models.BureauDiscrepancy{
			Type:          models.DiscrepancyStatus,
			Field:         "account_status",
			CreditorName:  &creditor,
			AccountNumber: accountNumber,
			Values:        statuses,
			Severity:      models.RiskHigh,
			IsDisputable:  true,
			Recommendation: fmt.Sprintf(
				"Dispute the account status for %s: inconsistent standing across bureaus", creditor),
		})
	}

	payments := valuesBy(group, func(a models.ParsedAccount) *string {
		if a.PaymentStatus == "" {
			return nil
		}
		s := a.PaymentStatus
		return &s
	})
	if len(payments.DistinctNonNil()) > 1 {
		out = append(out, models.BureauDiscrepancy{
			Type:          models.DiscrepancyPaymentHistory,
			Field:         "payment_status",
			CreditorName:  &creditor,
			AccountNumber: accountNumber,
			Values:        payments,
			Severity:      models.RiskHigh,
			IsDisputable:  true,
			Recommendation: fmt.Sprintf(
				"Dispute the payment history for %s: the bureaus report different delinquency states", creditor),
		})
	}

	return out
}

// valuesBy collects one value per bureau, keeping the last account seen for a
// bureau when duplicates exist.
func valuesBy(group []models.ParsedAccount, get func(models.ParsedAccount) *string) models.BureauValues {
	var v models.BureauValues
	for _, a := range group {
		if s := get(a); s != nil {
			v.Put(a.Bureau, s)
		}
	}
	return v
}

// personalInfoDiscrepancies compares presence, not equality: a value reported
// by one bureau and missing from another is worth a low-severity flag. Name
// entries are disputable; address entries need separate client confirmation
// first, so they are flagged but not disputable.
func personalInfoDiscrepancies(items []models.PersonalInfoDisputeItem) []models.BureauDiscrepancy {
	type entry struct {
		dtype      models.DiscrepancyType
		field      string
		disputable bool
	}
	classify := func(t models.PersonalInfoType) (entry, bool) {
		switch t {
		case models.InfoName, models.InfoAlsoKnownAs, models.InfoFormerName:
			return entry{models.DiscrepancyPIIName, string(t), true}, true
		case models.InfoCurrentAddress, models.InfoPreviousAddress:
			return entry{models.DiscrepancyPIIAddress, string(t), false}, true
		}
		return entry{}, false
	}

	byValue := make(map[string]*models.BureauValues)
	meta := make(map[string]entry)
	var order []string
	for _, item := range items {
		e, ok := classify(item.Type)
		if !ok || models.IsPlaceholder(item.Value) {
			continue
		}
		key := string(item.Type) + "|" + models.NormalizeCreditor(item.Value)
		if _, ok := byValue[key]; !ok {
			byValue[key] = &models.BureauValues{}
			meta[key] = e
			order = append(order, key)
		}
		v := item.Value
		byValue[key].Put(item.Bureau, &v)
	}
	sort.Strings(order)

	var out []models.BureauDiscrepancy
	for _, key := range order {
		values := byValue[key]
		present := len(values.DistinctNonNil())
		missing := 0
		for _, b := range models.AllBureaus() {
			if values.For(b) == nil {
				missing++
			}
		}
		if present == 0 || missing == 0 {
			continue
		}
		e := meta[key]
		verb := "is"
		if !e.disputable {
			verb = "may be"
		}
		out = append(out, models.BureauDiscrepancy{
			Type:         e.dtype,
			Field:        e.field,
			Values:       *values,
			Severity:     models.RiskLow,
			IsDisputable: e.disputable,
			Recommendation: fmt.Sprintf(
				"A %s entry appears on some bureaus but not others and %s worth disputing", e.field, verb),
		})
	}
	return out
}
