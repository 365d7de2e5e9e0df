// Package service orchestrates report analysis: it serializes writes per
// client, runs the parse pipeline, replaces the persisted derived records on
// success, and recomputes the client's cross-bureau discrepancies.
package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"

	"credit-report-engine/compliance"
	"credit-report-engine/config"
	"credit-report-engine/discrepancy"
	"credit-report-engine/document"
	"credit-report-engine/metrics"
	"credit-report-engine/models"
	"credit-report-engine/parser"
	"credit-report-engine/rabbitmq"
)

// ErrReportTooLarge is returned before parsing when the payload exceeds the
// configured size limit.
var ErrReportTooLarge = errors.New("report content exceeds size limit")

// Store is the persistence surface the service needs.
type Store interface {
	ReplaceReportRecords(reportID, clientID string, result *parser.Result) error
	ReplaceClientDiscrepancies(clientID string, discrepancies []models.BureauDiscrepancy) error
	AccountsForClient(clientID string) ([]models.ParsedAccount, error)
	PersonalInfoForClient(clientID string) ([]models.PersonalInfoDisputeItem, error)
}

// EventPublisher publishes analyzed-report events. Nil-able: the service
// keeps working when the broker is down.
type EventPublisher interface {
	PublishAnalyzed(event rabbitmq.AnalyzedEvent) error
}

// Service represents the credit report analysis service
type Service struct {
	config    *config.Config
	store     Store
	publisher EventPublisher
	parser    *parser.Parser

	mu          sync.Mutex
	clientLocks map[string]*sync.Mutex
}

// NewService creates a new analysis service
func NewService(cfg *config.Config, store Store, publisher EventPublisher) *Service {
	return &Service{
		config:      cfg,
		store:       store,
		publisher:   publisher,
		parser:      parser.New(),
		clientLocks: make(map[string]*sync.Mutex),
	}
}

// lockClient returns the per-client mutex, creating it on first use.
// Analyses for different clients run concurrently; within one client the
// builders write and the discrepancy recompute reads the same record set, so
// one writer at a time.
func (s *Service) lockClient(clientID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.clientLocks[clientID]
	if !ok {
		l = &sync.Mutex{}
		s.clientLocks[clientID] = l
	}
	return l
}

// AnalyzeReport parses one report and replaces its derived records. The
// replacement happens only after a successful parse: a report with no
// recognizable structure leaves the previous state untouched.
func (s *Service) AnalyzeReport(reportID, clientID, content string, reportCtx models.ReportContext) (*parser.Result, error) {
	if len(content) > s.config.MaxReportBytes {
		metrics.AnalyzedTotal.WithLabelValues("too_large").Inc()
		return nil, fmt.Errorf("%w: %d bytes", ErrReportTooLarge, len(content))
	}

	l := s.lockClient(clientID)
	l.Lock()
	defer l.Unlock()

	start := time.Now()
	result, err := s.parser.Parse(content, reportCtx)
	if err != nil {
		if errors.Is(err, document.ErrNoReportStructure) {
			metrics.AnalyzedTotal.WithLabelValues("no_structure").Inc()
		} else {
			metrics.AnalyzedTotal.WithLabelValues("parse_error").Inc()
		}
		return nil, fmt.Errorf("analyzing report %s: %w", reportID, err)
	}

	if err := s.store.ReplaceReportRecords(reportID, clientID, result); err != nil {
		metrics.AnalyzedTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("persisting report %s: %w", reportID, err)
	}

	discrepancies, err := s.recomputeDiscrepanciesLocked(clientID)
	if err != nil {
		return nil, err
	}

	metrics.AnalyzedTotal.WithLabelValues("success").Inc()
	metrics.AnalysisDurationSeconds.Observe(time.Since(start).Seconds())
	metrics.NegativeItemsFound.Observe(float64(len(result.NegativeItems)))

	log.WithFields(log.Fields{
		"report_id":      reportID,
		"client_id":      clientID,
		"accounts":       len(result.Accounts),
		"negative_items": len(result.NegativeItems),
		"discrepancies":  len(discrepancies),
	}).Info("report analyzed")

	s.publishAnalyzed(reportID, clientID, len(result.NegativeItems), len(discrepancies))
	return result, nil
}

// RecomputeClientDiscrepancies re-runs the cross-bureau comparison over the
// client's stored record set, serialized against in-flight analyses.
func (s *Service) RecomputeClientDiscrepancies(clientID string) ([]models.BureauDiscrepancy, error) {
	l := s.lockClient(clientID)
	l.Lock()
	defer l.Unlock()
	return s.recomputeDiscrepanciesLocked(clientID)
}

func (s *Service) recomputeDiscrepanciesLocked(clientID string) ([]models.BureauDiscrepancy, error) {
	accounts, err := s.store.AccountsForClient(clientID)
	if err != nil {
		return nil, fmt.Errorf("loading accounts for client %s: %w", clientID, err)
	}
	personalInfo, err := s.store.PersonalInfoForClient(clientID)
	if err != nil {
		return nil, fmt.Errorf("loading personal info for client %s: %w", clientID, err)
	}

	discrepancies := discrepancy.Detect(accounts, personalInfo)
	if err := s.store.ReplaceClientDiscrepancies(clientID, discrepancies); err != nil {
		return nil, fmt.Errorf("persisting discrepancies for client %s: %w", clientID, err)
	}
	metrics.DiscrepanciesFound.Observe(float64(len(discrepancies)))
	return discrepancies, nil
}

// publishAnalyzed emits the analyzed event, best effort.
func (s *Service) publishAnalyzed(reportID, clientID string, negativeItems, discrepancies int) {
	if s.publisher == nil {
		return
	}
	event := rabbitmq.AnalyzedEvent{
		ReportID:          reportID,
		ClientID:          clientID,
		NegativeItemCount: negativeItems,
		DiscrepancyCount:  discrepancies,
		AnalyzedAt:        time.Now(),
	}
	if err := s.publisher.PublishAnalyzed(event); err != nil {
		metrics.PublishErrorTotal.Inc()
		log.WithError(err).WithField("report_id", reportID).Warn("failed to publish analyzed event")
	}
}

// ValidateDispute runs the policy gate over an outgoing dispute and records
// the violations it surfaces. Violations are returned to the caller, never
// downgraded.
func (s *Service) ValidateDispute(in compliance.GateInput) compliance.GateResult {
	result := compliance.ValidateDispute(in)
	for _, v := range result.Violations {
		metrics.GateViolationsTotal.WithLabelValues(v.Code).Inc()
	}
	return result
}
