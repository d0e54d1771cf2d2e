package compliance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hrflow/compliance-engine/internal/application/port"
	"github.com/hrflow/compliance-engine/internal/domain/entity"
)

// ValidateRequest is one compliance-check invocation. FormType, FormData,
// UserID and OrganizationID are required; SubmissionID tags the audit trail
// when the caller re-checks an already persisted submission.
type ValidateRequest struct {
	FormType       string
	FormData       map[string]interface{}
	UserID         string
	OrganizationID string
	SubmissionID   string
}

// Engine orchestrates one validation: rule evaluators selected by form type,
// the AI augmentation step, aggregation with monotone escalation, audit
// persistence, and best-effort notification of blocked verdicts.
type Engine struct {
	leave    *LeaveEvaluator
	overtime *OvertimeEvaluator
	analyzer port.ComplianceAnalyzer
	audit    port.AuditWriter
	notifier port.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewEngine creates a compliance engine. notifier may be nil.
func NewEngine(
	leave *LeaveEvaluator,
	overtime *OvertimeEvaluator,
	analyzer port.ComplianceAnalyzer,
	audit port.AuditWriter,
	notifier port.Notifier,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		leave:    leave,
		overtime: overtime,
		analyzer: analyzer,
		audit:    audit,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Validate runs the full check. The only errors returned are input errors;
// collaborator and AI failures degrade individual findings instead. Item
// order is deterministic: evaluator findings precede AI findings, and the
// overall status is escalated exactly once after both are collected.
func (e *Engine) Validate(ctx context.Context, req ValidateRequest) (*entity.ComplianceCheckResult, error) {
	if req.FormType == "" || req.FormData == nil || req.UserID == "" || req.OrganizationID == "" {
		return nil, fmt.Errorf("form_type, form_data, user_id and organization_id are required")
	}

	form, err := entity.ParseFormData(req.FormType, req.FormData)
	if err != nil {
		return nil, err
	}

	var items []entity.ComplianceCheckItem
	var degraded []string

	switch req.FormType {
	case entity.FormTypeLeave:
		items, degraded = e.leave.Evaluate(ctx, req.UserID, req.OrganizationID, form.Leave)
	case entity.FormTypeOvertime:
		items, degraded = e.overtime.Evaluate(ctx, req.UserID, req.OrganizationID, form.Overtime)
	case entity.FormTypeBusinessTrip:
		items = []entity.ComplianceCheckItem{businessTripItem()}
	}

	result := &entity.ComplianceCheckResult{Checks: items, Degraded: degraded}

	analysis, err := e.analyzer.Analyze(ctx, port.AnalysisRequest{
		FormType:       req.FormType,
		FormData:       req.FormData,
		OrganizationID: req.OrganizationID,
	})
	if err != nil {
		// Fail-open: the AI step can escalate a verdict but must never sink
		// the whole check.
		e.logger.Warn("AI analysis degraded",
			zap.String("form_type", req.FormType),
			zap.String("user_id", req.UserID),
			zap.Error(err))
		result.Degraded = append(result.Degraded, entity.CheckTypeAICompliance)
	} else if analysis != nil {
		result.AIAnalysis = analysis.Summary
		result.AIAnalysisZh = analysis.SummaryZh
		for _, issue := range analysis.Issues {
			result.Checks = append(result.Checks, analysisItem(issue))
		}
	}

	result.Status = entity.OverallStatus(result.Checks)

	// A cancelled request was never answered; persisting its findings would
	// leave an audit trail for a result nobody received.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	e.persistAudit(ctx, req, result)
	e.notifyIfBlocked(ctx, req.UserID, result)

	return result, nil
}

// persistAudit writes one record per returned item. Failures are logged and
// the result is still returned; availability of the check outranks
// completeness of its trail.
func (e *Engine) persistAudit(ctx context.Context, req ValidateRequest, result *entity.ComplianceCheckResult) {
	records := make([]*entity.ComplianceCheckRecord, 0, len(result.Checks))
	now := e.now().UTC()
	for _, item := range result.Checks {
		records = append(records, &entity.ComplianceCheckRecord{
			OrganizationID:   req.OrganizationID,
			UserID:           req.UserID,
			SubmissionID:     req.SubmissionID,
			FormType:         req.FormType,
			CheckType:        item.CheckType,
			Status:           item.Status,
			RuleReference:    item.RuleReference,
			Message:          item.Message,
			MessageLocalized: item.MessageLocalized,
			Details:          item.Details,
			CreatedAt:        now,
		})
	}

	if err := e.audit.WriteRecords(ctx, records); err != nil {
		e.logger.Error("Failed to persist compliance audit records",
			zap.String("organization_id", req.OrganizationID),
			zap.String("user_id", req.UserID),
			zap.Int("records", len(records)),
			zap.Error(err))
	}
}

func (e *Engine) notifyIfBlocked(ctx context.Context, userID string, result *entity.ComplianceCheckResult) {
	if e.notifier == nil || result.Status != entity.CheckStatusBlocked {
		return
	}
	if err := e.notifier.NotifyBlocked(ctx, userID, result); err != nil {
		e.logger.Warn("Blocked-verdict notification failed",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

// businessTripItem is the single static finding for business-trip
// submissions, which have no statutory balance or hour constraints.
func businessTripItem() entity.ComplianceCheckItem {
	return entity.ComplianceCheckItem{
		CheckType:        entity.CheckTypeBusinessTrip,
		Status:           entity.CheckStatusPass,
		RuleReference:    "Company travel policy (差旅管理辦法)",
		Message:          "Business trip requests carry no leave-balance or overtime constraints",
		MessageLocalized: "出差申請無休假額度或加班工時之法定限制",
	}
}

// analysisItem converts a model-reported issue into a check item. The
// adapter only ever contributes findings: blocked stays blocked, every other
// severity lands as a warning.
func analysisItem(issue port.AnalysisIssue) entity.ComplianceCheckItem {
	status := entity.CheckStatusWarning
	if issue.Severity == string(entity.CheckStatusBlocked) {
		status = entity.CheckStatusBlocked
	}
	return entity.ComplianceCheckItem{
		CheckType:        entity.CheckTypeAICompliance,
		Status:           status,
		RuleReference:    issue.Rule,
		Message:          issue.MessageEn,
		MessageLocalized: issue.MessageZh,
	}
}
