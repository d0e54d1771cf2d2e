package port

import (
	"context"

	"github.com/hrflow/compliance-engine/internal/domain/entity"
)

// AnalysisIssue is one violation reported by the language model.
type AnalysisIssue struct {
	Severity  string `json:"severity"` // warning or blocked
	Rule      string `json:"rule"`
	MessageEn string `json:"message_en"`
	MessageZh string `json:"message_zh"`
}

// AnalysisResult is the parsed model response: a bilingual narrative summary
// plus zero or more issues. The adapter reports findings only; it never
// produces pass-level items.
type AnalysisResult struct {
	Summary   string          `json:"summary"`
	SummaryZh string          `json:"summary_zh"`
	Issues    []AnalysisIssue `json:"issues"`
}

// AnalysisRequest carries a submission into the AI augmentation step.
type AnalysisRequest struct {
	FormType       string
	FormData       map[string]interface{}
	OrganizationID string
}

// ComplianceAnalyzer runs the retrieval-augmented model analysis.
// A nil result with a nil error means no relevant knowledge entries were
// found and the step contributed nothing. Errors (timeout, unparsable
// output) degrade the check rather than failing it.
type ComplianceAnalyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error)
}

// Notifier delivers a blocked verdict to the applicant. Implementations are
// best-effort; failures are logged, never propagated.
type Notifier interface {
	NotifyBlocked(ctx context.Context, userID string, result *entity.ComplianceCheckResult) error
}
