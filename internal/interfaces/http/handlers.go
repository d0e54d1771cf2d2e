package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hrflow/compliance-engine/internal/application/port"
	"github.com/hrflow/compliance-engine/internal/compliance"
	"github.com/hrflow/compliance-engine/internal/report"
)

// Handlers contains all HTTP request handlers.
type Handlers struct {
	engine       *compliance.Engine
	history      port.AuditReader
	exporter     *report.Exporter
	historyLimit int
	logger       *zap.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(engine *compliance.Engine, history port.AuditReader, exporter *report.Exporter, historyLimit int, logger *zap.Logger) *Handlers {
	return &Handlers{
		engine:       engine,
		history:      history,
		exporter:     exporter,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// Response is the standard JSON envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ValidateSubmissionRequest is the check request body. All four primary
// fields are required.
type ValidateSubmissionRequest struct {
	FormType       string                 `json:"form_type" binding:"required"`
	FormData       map[string]interface{} `json:"form_data" binding:"required"`
	UserID         string                 `json:"user_id" binding:"required"`
	OrganizationID string                 `json:"organization_id" binding:"required"`
	SubmissionID   string                 `json:"submission_id"`
}

// HealthCheck handles GET /health.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// ValidateSubmission handles POST /api/compliance/check. It is invoked
// synchronously by the submission-intake gate and by the admin re-check
// flow; both get the identical contract.
func (h *Handlers) ValidateSubmission(c *gin.Context) {
	var req ValidateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid compliance check request", zap.Error(err))
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "form_type, form_data, user_id and organization_id are required",
		})
		return
	}

	result, err := h.engine.Validate(c.Request.Context(), compliance.ValidateRequest{
		FormType:       req.FormType,
		FormData:       req.FormData,
		UserID:         req.UserID,
		OrganizationID: req.OrganizationID,
		SubmissionID:   req.SubmissionID,
	})
	if err != nil {
		// The engine only errors on bad input or a cancelled request.
		h.logger.Warn("Compliance check rejected",
			zap.String("form_type", req.FormType),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// CheckHistory handles GET /api/compliance/history.
func (h *Handlers) CheckHistory(c *gin.Context) {
	q, ok := h.historyQuery(c)
	if !ok {
		return
	}

	records, err := h.history.ListRecords(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("Failed to query check history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve check history",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    records,
	})
}

// ExportHistory handles GET /api/compliance/history/export, streaming an
// xlsx workbook with the same filters as CheckHistory.
func (h *Handlers) ExportHistory(c *gin.Context) {
	q, ok := h.historyQuery(c)
	if !ok {
		return
	}

	records, err := h.history.ListRecords(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("Failed to query check history for export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to retrieve check history",
		})
		return
	}

	filename := fmt.Sprintf("compliance-checks-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.exporter.Write(c.Writer, records); err != nil {
		h.logger.Error("Failed to write history export", zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}

func (h *Handlers) historyQuery(c *gin.Context) (port.AuditQuery, bool) {
	orgID := c.Query("organization_id")
	if orgID == "" {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "organization_id is required",
		})
		return port.AuditQuery{}, false
	}

	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		var parsed int
		if _, err := fmt.Sscanf(raw, "%d", &parsed); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	return port.AuditQuery{
		OrganizationID: orgID,
		UserID:         c.Query("user_id"),
		SubmissionID:   c.Query("submission_id"),
		Limit:          limit,
	}, true
}
