package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"credit-report-engine/compliance"
	"credit-report-engine/database"
	"credit-report-engine/document"
	"credit-report-engine/methodology"
	"credit-report-engine/models"
	"credit-report-engine/service"
)

// Handlers represents the HTTP handlers
type Handlers struct {
	db  *database.Database
	svc *service.Service
}

// NewHandlers creates new HTTP handlers
func NewHandlers(db *database.Database, svc *service.Service) *Handlers {
	return &Handlers{db: db, svc: svc}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "credit-report-engine",
	})
}

// AnalyzeRequest is the analyze endpoint payload.
type AnalyzeRequest struct {
	ReportID string `json:"report_id" binding:"required"`
	ClientID string `json:"client_id" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Context  string `json:"context"`
}

// AnalyzeReport parses a report and replaces its derived records
func (h *Handlers) AnalyzeReport(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "report_id, client_id and content are required"})
		return
	}

	result, err := h.svc.AnalyzeReport(req.ReportID, req.ClientID, req.Content, models.ReportContext(req.Context))
	if err != nil {
		switch {
		case errors.Is(err, document.ErrNoReportStructure):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no recognizable report structure"})
		case errors.Is(err, service.ErrReportTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "report content too large"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to analyze report"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report_id":       req.ReportID,
		"client_id":       req.ClientID,
		"summary":         result.Summary,
		"negative_items":  result.NegativeItems,
		"compliance":      result.Compliance,
		"recommendations": result.Recommendations,
	})
}

// MethodologyRequest is the methodology endpoint payload. Round one sends no
// prior fields; later rounds send the previous round's methodology and the
// bureau's outcome.
type MethodologyRequest struct {
	ItemType         string `json:"item_type" binding:"required"`
	CreditorName     string `json:"creditor_name"`
	Round            int    `json:"round" binding:"required"`
	PriorMethodology string `json:"prior_methodology"`
	PriorOutcome     string `json:"prior_outcome"`
}

// RecommendMethodology chooses the dispute strategy for one item and round
func (h *Handlers) RecommendMethodology(c *gin.Context) {
	var req MethodologyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_type and round are required"})
		return
	}
	item := models.NegativeItem{
		CreditorName: req.CreditorName,
		ItemType:     models.ItemType(req.ItemType),
	}
	rec := methodology.Select(item, req.Round, req.PriorMethodology, req.PriorOutcome)
	if rec == nil {
		c.JSON(http.StatusOK, gin.H{"terminal": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"terminal": false, "recommendation": rec})
}

// GetNegativeItems returns one report's stored negative items
func (h *Handlers) GetNegativeItems(c *gin.Context) {
	items, err := h.db.NegativeItemsForReport(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load negative items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"negative_items": items})
}

// GetClientDiscrepancies returns the client's current discrepancy set
func (h *Handlers) GetClientDiscrepancies(c *gin.Context) {
	items, err := h.db.DiscrepanciesForClient(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load discrepancies"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"discrepancies": items})
}

// GetStats returns service-wide record counts
func (h *Handlers) GetStats(c *gin.Context) {
	stats, err := h.db.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ValidateDisputeRequest is the policy-gate endpoint payload.
type ValidateDisputeRequest struct {
	ReasonCodes                   []string `json:"reason_codes"`
	EvidenceDocumentIDs           []string `json:"evidence_document_ids"`
	ClientConfirmedOwnershipClaim bool     `json:"client_confirmed_ownership_claims"`
}

// ValidateDispute runs the dispute policy gate
func (h *Handlers) ValidateDispute(c *gin.Context) {
	var req ValidateDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result := h.svc.ValidateDispute(compliance.GateInput{
		ReasonCodes:                   req.ReasonCodes,
		EvidenceDocumentIDs:           req.EvidenceDocumentIDs,
		ClientConfirmedOwnershipClaim: req.ClientConfirmedOwnershipClaim,
	})
	c.JSON(http.StatusOK, result)
}

// SetupRouter wires the HTTP routes
func SetupRouter(h *Handlers) *gin.Engine {
	router := gin.Default()

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/analyze", h.AnalyzeReport)
		api.POST("/disputes/validate", h.ValidateDispute)
		api.POST("/disputes/methodology", h.RecommendMethodology)
		api.GET("/reports/:id/negative-items", h.GetNegativeItems)
		api.GET("/clients/:id/discrepancies", h.GetClientDiscrepancies)
		api.GET("/stats", h.GetStats)
	}

	return router
}
