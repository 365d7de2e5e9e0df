package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"

	"credit-report-engine/config"
)

// Database represents the database connection
type Database struct {
	db *sql.DB
}

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection with exponential backoff retry
	var waitInterval time.Duration = 1 * time.Second
	for {
		if err := db.Ping(); err == nil {
			break
		} else {
			log.WithError(err).Warnf("database connection failed, retrying in %v", waitInterval)
		}
		time.Sleep(waitInterval)
		waitInterval *= 2
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Database{db: db}, nil
}

// NewFromDB wraps an existing connection, used by tests.
func NewFromDB(db *sql.DB) *Database {
	return &Database{db: db}
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// CreateTables creates the derived-record tables if they don't exist
func (d *Database) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS parsed_accounts (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			report_id VARCHAR(64) NOT NULL,
			client_id VARCHAR(64) NOT NULL,
			creditor_name VARCHAR(255) NOT NULL,
			account_number VARCHAR(64),
			account_type VARCHAR(32) NOT NULL,
			account_status VARCHAR(32) NOT NULL,
			payment_status VARCHAR(64),
			balance_cents BIGINT,
			credit_limit_cents BIGINT,
			high_credit_cents BIGINT,
			monthly_payment_cents BIGINT,
			past_due_cents BIGINT,
			date_opened DATE,
			date_reported DATE,
			bureau VARCHAR(16) NOT NULL,
			is_negative BOOLEAN NOT NULL DEFAULT FALSE,
			risk_level VARCHAR(16) NOT NULL,
			payment_history TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_parsed_accounts_report (report_id),
			INDEX idx_parsed_accounts_client (client_id)
		)`,
		`CREATE TABLE IF NOT EXISTS negative_items (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			report_id VARCHAR(64) NOT NULL,
			client_id VARCHAR(64) NOT NULL,
			item_type VARCHAR(32) NOT NULL,
			creditor_name VARCHAR(255) NOT NULL,
			original_creditor VARCHAR(255),
			amount_cents BIGINT,
			date_reported DATE,
			date_of_last_activity DATE,
			account_number VARCHAR(64),
			bureau VARCHAR(16) NOT NULL,
			presence TEXT,
			details TEXT,
			risk_severity VARCHAR(16) NOT NULL,
			recommended_action VARCHAR(255),
			dispute_reason VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_negative_items_report (report_id),
			INDEX idx_negative_items_client (client_id)
		)`,
		`CREATE TABLE IF NOT EXISTS personal_info_items (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			report_id VARCHAR(64) NOT NULL,
			client_id VARCHAR(64) NOT NULL,
			info_type VARCHAR(32) NOT NULL,
			bureau VARCHAR(16) NOT NULL,
			value VARCHAR(512) NOT NULL,
			INDEX idx_personal_info_report (report_id),
			INDEX idx_personal_info_client (client_id)
		)`,
		`CREATE TABLE IF NOT EXISTS inquiry_items (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			report_id VARCHAR(64) NOT NULL,
			client_id VARCHAR(64) NOT NULL,
			creditor_name VARCHAR(255) NOT NULL,
			bureau VARCHAR(16),
			inquiry_date DATE,
			inquiry_type VARCHAR(64),
			is_past_fcra_limit BOOLEAN NOT NULL DEFAULT FALSE,
			days_since_inquiry INT,
			INDEX idx_inquiry_items_report (report_id),
			INDEX idx_inquiry_items_client (client_id)
		)`,
		`CREATE TABLE IF NOT EXISTS bureau_discrepancies (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			client_id VARCHAR(64) NOT NULL,
			discrepancy_type VARCHAR(32) NOT NULL,
			field VARCHAR(64) NOT NULL,
			creditor_name VARCHAR(255),
			account_number VARCHAR(64),
			bureau_values TEXT,
			severity VARCHAR(16) NOT NULL,
			is_disputable BOOLEAN NOT NULL DEFAULT FALSE,
			recommendation VARCHAR(512),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_discrepancies_client (client_id)
		)`,
		`CREATE TABLE IF NOT EXISTS fcra_compliance_items (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			report_id VARCHAR(64) NOT NULL,
			client_id VARCHAR(64) NOT NULL,
			item_type VARCHAR(32) NOT NULL,
			creditor_name VARCHAR(255) NOT NULL,
			date_of_first_delinquency DATE,
			reporting_limit_years INT NOT NULL,
			fcra_expiration_date DATE,
			days_until_expiration INT,
			past_limit VARCHAR(16) NOT NULL,
			approaching_limit BOOLEAN NOT NULL DEFAULT FALSE,
			INDEX idx_compliance_report (report_id),
			INDEX idx_compliance_client (client_id)
		)`,
		`CREATE TABLE IF NOT EXISTS report_summaries (
			report_id VARCHAR(64) PRIMARY KEY,
			client_id VARCHAR(64) NOT NULL,
			scores TEXT,
			total_accounts INT NOT NULL,
			open_accounts INT NOT NULL,
			negative_accounts INT NOT NULL,
			negative_item_count INT NOT NULL,
			inquiry_count INT NOT NULL,
			public_record_count INT NOT NULL,
			total_balance_cents BIGINT NOT NULL,
			total_credit_limit_cents BIGINT NOT NULL,
			utilization_percent DOUBLE,
			analyzed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_report_summaries_client (client_id)
		)`,
	}

	for _, query := range queries {
		if _, err := d.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	log.Info("database tables ready")
	return nil
}
