package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"credit-report-engine/models"
	"credit-report-engine/parser"
)

// reportTables are the report-scoped tables cleared before re-insert.
var reportTables = []string{
	"parsed_accounts",
	"negative_items",
	"personal_info_items",
	"inquiry_items",
	"fcra_compliance_items",
	"report_summaries",
}

// ReplaceReportRecords replaces all derived records for one report in a
// single transaction: delete-then-insert, no incremental merge. The previous
// state stays visible until the transaction commits, so a failed parse or a
// failed write never leaves a half-replaced report.
func (d *Database) ReplaceReportRecords(reportID, clientID string, result *parser.Result) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range reportTables {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE report_id = ?", reportID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, a := range result.Accounts {
		history, err := json.Marshal(a.PaymentHistory)
		if err != nil {
			return fmt.Errorf("failed to encode payment history: %w", err)
		}
		_, err = tx.Exec(`INSERT INTO parsed_accounts
			(report_id, client_id, creditor_name, account_number, account_type, account_status,
			 payment_status, balance_cents, credit_limit_cents, high_credit_cents,
			 monthly_payment_cents, past_due_cents, date_opened, date_reported, bureau,
			 is_negative, risk_level, payment_history)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			reportID, clientID, a.CreditorName, a.AccountNumber, a.AccountType, a.AccountStatus,
			a.PaymentStatus, a.BalanceCents, a.CreditLimitCents, a.HighCreditCents,
			a.MonthlyPaymentCents, a.PastDueCents, a.DateOpened, a.DateReported, a.Bureau,
			a.IsNegative, a.RiskLevel, string(history))
		if err != nil {
			return fmt.Errorf("failed to insert parsed account: %w", err)
		}
	}

	for _, item := range result.NegativeItems {
		presence, err := json.Marshal(item.Presence)
		if err != nil {
			return fmt.Errorf("failed to encode presence: %w", err)
		}
		details, err := json.Marshal(item.Details)
		if err != nil {
			return fmt.Errorf("failed to encode details: %w", err)
		}
		_, err = tx.Exec(`INSERT INTO negative_items
			(report_id, client_id, item_type, creditor_name, original_creditor, amount_cents,
			 date_reported, date_of_last_activity, account_number, bureau, presence, details,
			 risk_severity, recommended_action, dispute_reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			reportID, clientID, item.ItemType, item.CreditorName, item.OriginalCreditor,
			item.AmountCents, item.DateReported, item.DateOfLastActivity, item.AccountNumber,
			item.Bureau, string(presence), string(details), item.RiskSeverity,
			item.RecommendedAction, item.DisputeReason)
		if err != nil {
			return fmt.Errorf("failed to insert negative item: %w", err)
		}
	}

	for _, info := range result.PersonalInfo {
		_, err := tx.Exec(`INSERT INTO personal_info_items
			(report_id, client_id, info_type, bureau, value) VALUES (?, ?, ?, ?, ?)`,
			reportID, clientID, info.Type, info.Bureau, info.Value)
		if err != nil {
			return fmt.Errorf("failed to insert personal info item: %w", err)
		}
	}

	for _, inq := range result.Inquiries {
		_, err := tx.Exec(`INSERT INTO inquiry_items
			(report_id, client_id, creditor_name, bureau, inquiry_date, inquiry_type,
			 is_past_fcra_limit, days_since_inquiry)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			reportID, clientID, inq.CreditorName, inq.Bureau, inq.InquiryDate, inq.InquiryType,
			inq.IsPastFcraLimit, inq.DaysSinceInquiry)
		if err != nil {
			return fmt.Errorf("failed to insert inquiry item: %w", err)
		}
	}

	for _, c := range result.Compliance {
		_, err := tx.Exec(`INSERT INTO fcra_compliance_items
			(report_id, client_id, item_type, creditor_name, date_of_first_delinquency,
			 reporting_limit_years, fcra_expiration_date, days_until_expiration, past_limit,
			 approaching_limit)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			reportID, clientID, c.ItemType, c.CreditorName, c.DateOfFirstDelinquency,
			c.ReportingLimitYears, c.FcraExpirationDate, c.DaysUntilExpiration, c.PastLimit,
			c.ApproachingLimit)
		if err != nil {
			return fmt.Errorf("failed to insert compliance item: %w", err)
		}
	}

	scores, err := json.Marshal(result.Summary.Scores)
	if err != nil {
		return fmt.Errorf("failed to encode scores: %w", err)
	}
	s := result.Summary
	_, err = tx.Exec(`INSERT INTO report_summaries
		(report_id, client_id, scores, total_accounts, open_accounts, negative_accounts,
		 negative_item_count, inquiry_count, public_record_count, total_balance_cents,
		 total_credit_limit_cents, utilization_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reportID, clientID, string(scores), s.TotalAccounts, s.OpenAccounts, s.NegativeAccounts,
		s.NegativeItemCount, s.InquiryCount, s.PublicRecordCount, s.TotalBalanceCents,
		s.TotalCreditLimitCents, s.UtilizationPercent)
	if err != nil {
		return fmt.Errorf("failed to insert report summary: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report records: %w", err)
	}
	return nil
}

// ReplaceClientDiscrepancies replaces the whole client-scoped discrepancy set
// in one transaction. Discrepancies span reports, so they are recomputed for
// the full client whenever any of the client's reports is (re)analyzed.
func (d *Database) ReplaceClientDiscrepancies(clientID string, discrepancies []models.BureauDiscrepancy) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM bureau_discrepancies WHERE client_id = ?", clientID); err != nil {
		return fmt.Errorf("failed to clear discrepancies: %w", err)
	}
	for _, disc := range discrepancies {
		values, err := json.Marshal(disc.Values)
		if err != nil {
			return fmt.Errorf("failed to encode values: %w", err)
		}
		_, err = tx.Exec(`INSERT INTO bureau_discrepancies
			(client_id, discrepancy_type, field, creditor_name, account_number, bureau_values,
			 severity, is_disputable, recommendation)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			clientID, disc.Type, disc.Field, disc.CreditorName, disc.AccountNumber,
			string(values), disc.Severity, disc.IsDisputable, disc.Recommendation)
		if err != nil {
			return fmt.Errorf("failed to insert discrepancy: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit discrepancies: %w", err)
	}
	return nil
}

// AccountsForClient loads every parsed account across all of a client's
// reports, used for the client-wide discrepancy recompute.
func (d *Database) AccountsForClient(clientID string) ([]models.ParsedAccount, error) {
	rows, err := d.db.Query(`SELECT creditor_name, account_number, account_type, account_status,
		payment_status, balance_cents, credit_limit_cents, high_credit_cents,
		monthly_payment_cents, past_due_cents, date_opened, date_reported, bureau,
		is_negative, risk_level, payment_history
		FROM parsed_accounts WHERE client_id = ? ORDER BY id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.ParsedAccount
	for rows.Next() {
		var a models.ParsedAccount
		var history sql.NullString
		err := rows.Scan(&a.CreditorName, &a.AccountNumber, &a.AccountType, &a.AccountStatus,
			&a.PaymentStatus, &a.BalanceCents, &a.CreditLimitCents, &a.HighCreditCents,
			&a.MonthlyPaymentCents, &a.PastDueCents, &a.DateOpened, &a.DateReported, &a.Bureau,
			&a.IsNegative, &a.RiskLevel, &history)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if history.Valid && history.String != "" {
			if err := json.Unmarshal([]byte(history.String), &a.PaymentHistory); err != nil {
				return nil, fmt.Errorf("failed to decode payment history: %w", err)
			}
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// PersonalInfoForClient loads every personal-information entry across all of
// a client's reports.
func (d *Database) PersonalInfoForClient(clientID string) ([]models.PersonalInfoDisputeItem, error) {
	rows, err := d.db.Query(`SELECT info_type, bureau, value
		FROM personal_info_items WHERE client_id = ? ORDER BY id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query personal info: %w", err)
	}
	defer rows.Close()

	var items []models.PersonalInfoDisputeItem
	for rows.Next() {
		var item models.PersonalInfoDisputeItem
		if err := rows.Scan(&item.Type, &item.Bureau, &item.Value); err != nil {
			return nil, fmt.Errorf("failed to scan personal info item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// NegativeItemsForReport loads one report's negative items.
func (d *Database) NegativeItemsForReport(reportID string) ([]models.NegativeItem, error) {
	rows, err := d.db.Query(`SELECT item_type, creditor_name, original_creditor, amount_cents,
		date_reported, date_of_last_activity, account_number, bureau, presence, details,
		risk_severity, recommended_action, dispute_reason
		FROM negative_items WHERE report_id = ? ORDER BY id`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query negative items: %w", err)
	}
	defer rows.Close()

	var items []models.NegativeItem
	for rows.Next() {
		var item models.NegativeItem
		var presence, details sql.NullString
		err := rows.Scan(&item.ItemType, &item.CreditorName, &item.OriginalCreditor,
			&item.AmountCents, &item.DateReported, &item.DateOfLastActivity, &item.AccountNumber,
			&item.Bureau, &presence, &details, &item.RiskSeverity, &item.RecommendedAction,
			&item.DisputeReason)
		if err != nil {
			return nil, fmt.Errorf("failed to scan negative item: %w", err)
		}
		if presence.Valid && presence.String != "" {
			if err := json.Unmarshal([]byte(presence.String), &item.Presence); err != nil {
				return nil, fmt.Errorf("failed to decode presence: %w", err)
			}
		}
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &item.Details); err != nil {
				return nil, fmt.Errorf("failed to decode details: %w", err)
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DiscrepanciesForClient loads the client's current discrepancy set.
func (d *Database) DiscrepanciesForClient(clientID string) ([]models.BureauDiscrepancy, error) {
	rows, err := d.db.Query(`SELECT discrepancy_type, field, creditor_name, account_number,
		bureau_values, severity, is_disputable, recommendation
		FROM bureau_discrepancies WHERE client_id = ? ORDER BY id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query discrepancies: %w", err)
	}
	defer rows.Close()

	var items []models.BureauDiscrepancy
	for rows.Next() {
		var disc models.BureauDiscrepancy
		var values sql.NullString
		err := rows.Scan(&disc.Type, &disc.Field, &disc.CreditorName, &disc.AccountNumber,
			&values, &disc.Severity, &disc.IsDisputable, &disc.Recommendation)
		if err != nil {
			return nil, fmt.Errorf("failed to scan discrepancy: %w", err)
		}
		if values.Valid && values.String != "" {
			if err := json.Unmarshal([]byte(values.String), &disc.Values); err != nil {
				return nil, fmt.Errorf("failed to decode values: %w", err)
			}
		}
		items = append(items, disc)
	}
	return items, rows.Err()
}

// Stats holds service-wide record counts.
type Stats struct {
	Reports       int `json:"reports"`
	Accounts      int `json:"accounts"`
	NegativeItems int `json:"negative_items"`
	Discrepancies int `json:"discrepancies"`
}

// GetStats counts the stored derived records.
func (d *Database) GetStats() (*Stats, error) {
	var stats Stats
	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM report_summaries", &stats.Reports},
		{"SELECT COUNT(*) FROM parsed_accounts", &stats.Accounts},
		{"SELECT COUNT(*) FROM negative_items", &stats.NegativeItems},
		{"SELECT COUNT(*) FROM bureau_discrepancies", &stats.Discrepancies},
	}
	for _, c := range counts {
		if err := d.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count records: %w", err)
		}
	}
	return &stats, nil
}
