// Package methodology chooses the dispute strategy for a negative item given
// the round number and the outcome of the previous round.
package methodology

import (
	"credit-report-engine/models"
)

// Methodology keys. Each names a dispute strategy with its own legal framing.
const (
	Factual              = "factual"
	DebtValidation       = "debt_validation"
	Metro2Compliance     = "metro2_compliance"
	MethodOfVerification = "method_of_verification"
	ConsumerLaw          = "consumer_law"
)

// Dispute outcomes reported back by the bureaus or by silence.
const (
	OutcomeVerified        = "verified"
	OutcomeUpdated         = "updated"
	OutcomeNoResponse      = "no_response"
	OutcomeDeleted         = "deleted"
	OutcomeNoDocumentation = "no_documentation"
)

// Terminal marks an escalation path that ends: the item was deleted, there is
// nothing left to dispute.
const Terminal = "terminal"

// preferredMethodologies lists, per item type, the strategies in preference
// order. The first entry is the round-one choice.
var preferredMethodologies = map[models.ItemType][]string{
	models.ItemCollection:   {DebtValidation, Factual, Metro2Compliance},
	models.ItemChargeOff:    {Factual, Metro2Compliance, MethodOfVerification},
	models.ItemLatePayment:  {Factual, Metro2Compliance, MethodOfVerification},
	models.ItemDerogatory:   {Factual, Metro2Compliance, MethodOfVerification},
	models.ItemBankruptcy:   {Factual, MethodOfVerification, ConsumerLaw},
	models.ItemForeclosure:  {Factual, Metro2Compliance, ConsumerLaw},
	models.ItemRepossession: {Factual, Metro2Compliance, ConsumerLaw},
	models.ItemJudgment:     {Factual, MethodOfVerification, ConsumerLaw},
	models.ItemTaxLien:      {Factual, MethodOfVerification, ConsumerLaw},
	models.ItemInquiry:      {Factual, ConsumerLaw},
}

// escalationTriggers maps, per methodology, a prior-round outcome to the next
// methodology. "deleted" always terminates.
var escalationTriggers = map[string]map[string]string{
	Factual: {
		OutcomeVerified:   MethodOfVerification,
		OutcomeUpdated:    Factual,
		OutcomeNoResponse: Metro2Compliance,
		OutcomeDeleted:    Terminal,
	},
	DebtValidation: {
		OutcomeVerified:        MethodOfVerification,
		OutcomeNoResponse:      ConsumerLaw,
		OutcomeNoDocumentation: ConsumerLaw,
		OutcomeDeleted:         Terminal,
	},
	Metro2Compliance: {
		OutcomeVerified:   MethodOfVerification,
		OutcomeNoResponse: ConsumerLaw,
		OutcomeDeleted:    Terminal,
	},
	MethodOfVerification: {
		OutcomeVerified:   ConsumerLaw,
		OutcomeNoResponse: ConsumerLaw,
		OutcomeDeleted:    Terminal,
	},
	ConsumerLaw: {
		OutcomeVerified:   ConsumerLaw,
		OutcomeNoResponse: ConsumerLaw,
		OutcomeDeleted:    Terminal,
	},
}

// reasonCodesFor lists the letter reason codes a methodology leads with for
// an item type.
func reasonCodesFor(method string, itemType models.ItemType) []string {
	switch method {
	case DebtValidation:
		return []string{"validation_of_debt", "request_original_agreement"}
	case Metro2Compliance:
		return []string{"metro2_format_violation", "inaccurate_reporting"}
	case MethodOfVerification:
		return []string{"method_of_verification_request"}
	case ConsumerLaw:
		return []string{"fcra_violation", "willful_noncompliance"}
	}
	if itemType == models.ItemInquiry {
		return []string{"unauthorized_inquiry"}
	}
	return []string{"inaccurate_reporting"}
}

// Select recommends a methodology for one item in one round. priorMethod and
// priorOutcome describe the previous round; both are empty for round one.
// Returns nil when the escalation path has terminated.
func Select(item models.NegativeItem, round int, priorMethod, priorOutcome string) *models.MethodologyRecommendation {
	if priorOutcome == OutcomeDeleted {
		return nil
	}

	method := chooseMethod(item.ItemType, round, priorMethod, priorOutcome)
	if method == Terminal {
		return nil
	}

	return &models.MethodologyRecommendation{
		CreditorName: item.CreditorName,
		ItemType:     item.ItemType,
		Round:        round,
		Methodology:  method,
		ReasonCodes:  reasonCodesFor(method, item.ItemType),
		Escalation:   escalationFor(method),
	}
}

// chooseMethod applies the round overrides first, then the escalation
// trigger, then the per-type preference list.
func chooseMethod(itemType models.ItemType, round int, priorMethod, priorOutcome string) string {
	first := firstChoice(itemType)

	// Round overrides take precedence over the trigger transition. An item
	// whose opening move was debt validation keeps its own track in round two.
	if round >= 3 {
		return ConsumerLaw
	}
	if round >= 2 && first != DebtValidation {
		return MethodOfVerification
	}

	if priorMethod != "" && priorOutcome != "" {
		if next, ok := escalationTriggers[priorMethod][priorOutcome]; ok {
			return next
		}
	}
	if round <= 1 || priorMethod == "" {
		return first
	}
	return nextPreference(itemType, priorMethod)
}

func firstChoice(itemType models.ItemType) string {
	if prefs, ok := preferredMethodologies[itemType]; ok && len(prefs) > 0 {
		return prefs[0]
	}
	return Factual
}

// nextPreference advances through the per-type list past the method already
// tried, wrapping to consumer law once the list is exhausted.
func nextPreference(itemType models.ItemType, tried string) string {
	prefs, ok := preferredMethodologies[itemType]
	if !ok {
		return ConsumerLaw
	}
	for i, m := range prefs {
		if m == tried && i+1 < len(prefs) {
			return prefs[i+1]
		}
	}
	return ConsumerLaw
}

// escalationFor copies the trigger map so callers can serialize or mutate it.
func escalationFor(method string) map[string]string {
	src := escalationTriggers[method]
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// SelectAll runs round-one selection over a full item set.
func SelectAll(items []models.NegativeItem) []models.MethodologyRecommendation {
	out := make([]models.MethodologyRecommendation, 0, len(items))
	for _, item := range items {
		if rec := Select(item, 1, "", ""); rec != nil {
			out = append(out, *rec)
		}
	}
	return out
}
