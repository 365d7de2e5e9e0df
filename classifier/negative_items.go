package classifier

import (
	"strings"

	"credit-report-engine/extractor"
	"credit-report-engine/models"
)

// recommendedActions maps each item type to the default next step surfaced
// to the dispute workflow.
var recommendedActions = map[models.ItemType]string{
	models.ItemCollection:   "Request debt validation from the collector",
	models.ItemChargeOff:    "Dispute charge-off accuracy and balance reporting",
	models.ItemLatePayment:  "Dispute late-payment accuracy with the furnisher",
	models.ItemDerogatory:   "Dispute derogatory status with the reporting bureaus",
	models.ItemBankruptcy:   "Verify court records and discharge details",
	models.ItemForeclosure:  "Verify foreclosure filing and reporting dates",
	models.ItemRepossession: "Verify deficiency balance and reporting dates",
	models.ItemJudgment:     "Verify judgment records and satisfaction status",
	models.ItemTaxLien:      "Verify lien release and reporting dates",
	models.ItemInquiry:      "Dispute unauthorized or obsolete inquiry",
}

// NegativeItemBuilder deduplicates logical negative items across bureaus
// within one parse session. The session-scoped key set guarantees no two
// emitted items share a composite dedup key.
type NegativeItemBuilder struct {
	ctx  models.ReportContext
	seen map[string]bool
}

// NewNegativeItemBuilder starts a fresh dedup session for one parse.
func NewNegativeItemBuilder(ctx models.ReportContext) *NegativeItemBuilder {
	return &NegativeItemBuilder{ctx: ctx, seen: make(map[string]bool)}
}

// dedupKey is creditorNormalized|bureau|itemType[|accountNumber].
func dedupKey(creditor string, b models.Bureau, itemType models.ItemType, accountNumber string) string {
	key := models.NormalizeCreditor(creditor) + "|" + string(b) + "|" + string(itemType)
	if accountNumber != "" {
		key += "|" + accountNumber
	}
	return key
}

// AddTradeline emits at most one negative item for one tradeline's per-bureau
// account group. Returns nil when the tradeline is clean or when any computed
// dedup key collides with an item already produced this session.
func (nb *NegativeItemBuilder) AddTradeline(accounts []models.ParsedAccount) *models.NegativeItem {
	if len(accounts) == 0 {
		return nil
	}
	var negatives []models.ParsedAccount
	for _, a := range accounts {
		if a.IsNegative {
			negatives = append(negatives, a)
		}
	}
	if len(negatives) == 0 {
		return nil
	}

	primary := negatives[0]
	itemType := ItemTypeFor(primary)
	item := models.NegativeItem{
		ItemType:          itemType,
		CreditorName:      primary.CreditorName,
		AccountNumber:     primary.AccountNumber,
		Bureau:            primary.Bureau,
		RiskSeverity:      severityFor(itemType, negatives),
		RecommendedAction: recommendedActions[itemType],
	}

	for _, a := range accounts {
		detail := &models.BureauItemDetail{
			DateReported: a.DateReported,
			BalanceCents: a.BalanceCents,
		}
		if a.PaymentStatus != "" {
			status := a.PaymentStatus
			detail.Status = &status
		}
		item.Details.Put(a.Bureau, detail)
		if item.AmountCents == nil {
			item.AmountCents = a.BalanceCents
		}
		if item.DateReported == nil {
			item.DateReported = a.DateReported
		}
	}

	item.Presence = nb.resolvePresence(accounts)
	if !nb.register(&item) {
		return nil
	}
	return &item
}

// AddTradelineFields carries tradeline fields that live on the extraction
// block rather than the per-bureau accounts (original creditor, last
// activity) onto an already-built item.
func AddTradelineFields(item *models.NegativeItem, fields extractor.FieldMap) {
	if item == nil {
		return
	}
	if v := fields[extractor.FieldOriginalCreditor].First(); v != nil {
		item.OriginalCreditor = v
	}
	if v := fields[extractor.FieldLastActivity].First(); v != nil {
		item.DateOfLastActivity = models.ParseReportDate(*v)
	}
}

// AddPublicRecord emits a negative item for one public record.
func (nb *NegativeItemBuilder) AddPublicRecord(fields extractor.FieldMap) *models.NegativeItem {
	typeRaw := fields[extractor.FieldRecordType].First()
	if typeRaw == nil {
		return nil
	}
	itemType, ok := publicRecordItemType(*typeRaw)
	if !ok {
		return nil
	}
	item := models.NegativeItem{
		ItemType:          itemType,
		CreditorName:      *typeRaw,
		RiskSeverity:      models.SeveritySevere,
		RecommendedAction: recommendedActions[itemType],
	}
	if v := fields[extractor.FieldAmount].First(); v != nil {
		item.AmountCents = models.ParseCents(*v)
	}
	if v := fields[extractor.FieldDateFiled].First(); v != nil {
		item.DateReported = models.ParseReportDate(*v)
		item.DateOfLastActivity = item.DateReported
	}

	if single, ok := nb.ctx.SingleBureau(); ok {
		item.Bureau = single
		item.Presence.Set(single, true)
	} else {
		// Public-record tables carry no per-bureau columns; assume all three
		// rather than silently dropping a disputable record.
		item.Presence = models.BureauPresence{TransUnion: true, Experian: true, Equifax: true}
		item.Bureau = models.BureauTransUnion
	}

	if !nb.register(&item) {
		return nil
	}
	return &item
}

// resolvePresence follows the fixed priority: declared single-bureau context,
// then per-bureau account evidence (a real reported date), then the
// conservative all-three default for combined or unknown reports. False
// positives for dispute eligibility beat silently dropped items.
func (nb *NegativeItemBuilder) resolvePresence(accounts []models.ParsedAccount) models.BureauPresence {
	var presence models.BureauPresence
	if single, ok := nb.ctx.SingleBureau(); ok {
		presence.Set(single, true)
		return presence
	}

	hasEvidence := false
	for _, a := range accounts {
		if a.DateReported != nil || a.DateOpened != nil {
			hasEvidence = true
			break
		}
	}
	if hasEvidence {
		for _, a := range accounts {
			if a.DateReported != nil || a.DateOpened != nil {
				presence.Set(a.Bureau, true)
			}
		}
		return presence
	}

	return models.BureauPresence{TransUnion: true, Experian: true, Equifax: true}
}

// register computes one key per present bureau, refuses the item if any key
// collides, and otherwise records all keys.
func (nb *NegativeItemBuilder) register(item *models.NegativeItem) bool {
	bureaus := item.Presence.Bureaus()
	if len(bureaus) == 0 {
		bureaus = []models.Bureau{item.Bureau}
	}
	keys := make([]string, 0, len(bureaus))
	for _, b := range bureaus {
		keys = append(keys, dedupKey(item.CreditorName, b, item.ItemType, item.AccountNumber))
	}
	for _, k := range keys {
		if nb.seen[k] {
			return false
		}
	}
	for _, k := range keys {
		nb.seen[k] = true
	}
	return true
}

// severityFor grades a negative item. Collections, charge-offs and 90+ day
// lates are high; everything else floors at medium. A negative item is never
// low severity: that floor is deliberate conservatism, not an oversight.
func severityFor(itemType models.ItemType, negatives []models.ParsedAccount) models.RiskSeverity {
	if itemType == models.ItemCollection || itemType == models.ItemChargeOff {
		return models.SeverityHigh
	}
	for _, a := range negatives {
		if h := a.HistoryForOwnBureau(); h != nil && h.MaxLateDays >= 90 {
			return models.SeverityHigh
		}
	}
	return models.SeverityMedium
}

func publicRecordItemType(raw string) (models.ItemType, bool) {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "bankruptcy"):
		return models.ItemBankruptcy, true
	case strings.Contains(s, "foreclosure"):
		return models.ItemForeclosure, true
	case strings.Contains(s, "repossession"):
		return models.ItemRepossession, true
	case strings.Contains(s, "judgment"):
		return models.ItemJudgment, true
	case strings.Contains(s, "tax lien"), strings.Contains(s, "lien"):
		return models.ItemTaxLien, true
	}
	return "", false
}
