package entity

import "time"

// CheckStatus is the severity of a compliance finding.
// Ordering: pass < warning < blocked.
type CheckStatus string

const (
	CheckStatusPass    CheckStatus = "pass"
	CheckStatusWarning CheckStatus = "warning"
	CheckStatusBlocked CheckStatus = "blocked"
)

// severityRank maps a status to its escalation rank. Unknown statuses rank
// below pass so a garbage value can never mask a real finding.
func severityRank(s CheckStatus) int {
	switch s {
	case CheckStatusPass:
		return 1
	case CheckStatusWarning:
		return 2
	case CheckStatusBlocked:
		return 3
	default:
		return 0
	}
}

// Escalate returns the more severe of two statuses.
func Escalate(a, b CheckStatus) CheckStatus {
	if severityRank(b) > severityRank(a) {
		return b
	}
	return a
}

// Check type constants. One constant per rule family; ai_compliance covers
// every finding sourced from the language model.
const (
	CheckTypeLeaveBalance    = "leave_balance"
	CheckTypeSickCertificate = "sick_leave_certificate"
	CheckTypeProtectedLeave  = "protected_leave"
	CheckTypeDailyOvertime   = "daily_overtime_limit"
	CheckTypeMonthlyOvertime = "monthly_overtime_limit"
	CheckTypeHolidayOvertime = "holiday_overtime"
	CheckTypeBusinessTrip    = "business_trip"
	CheckTypeAICompliance    = "ai_compliance"
)

// ComplianceCheckItem is one atomic finding. Items are immutable once
// created; the audit sink persists each one as an independent record.
type ComplianceCheckItem struct {
	CheckType        string                 `json:"check_type"`
	Status           CheckStatus            `json:"status"`
	RuleReference    string                 `json:"rule_reference"`
	Message          string                 `json:"message"`
	MessageLocalized string                 `json:"message_localized"`
	Details          map[string]interface{} `json:"details,omitempty"`
}

// ComplianceCheckResult is the verdict for one validation request.
// Status is escalated from the items exactly once, after all evaluators and
// the AI adapter have contributed. Degraded lists the check categories that
// could not be evaluated (missing balance record, collaborator failure,
// unparsable model output) so callers can tell "not checked" from "clean".
type ComplianceCheckResult struct {
	Status       CheckStatus           `json:"status"`
	Checks       []ComplianceCheckItem `json:"checks"`
	AIAnalysis   string                `json:"ai_analysis,omitempty"`
	AIAnalysisZh string                `json:"ai_analysis_zh,omitempty"`
	Degraded     []string              `json:"degraded,omitempty"`
}

// OverallStatus computes the escalated status of a list of items.
// An empty list is a pass.
func OverallStatus(items []ComplianceCheckItem) CheckStatus {
	status := CheckStatusPass
	for _, item := range items {
		status = Escalate(status, item.Status)
	}
	return status
}

// ComplianceCheckRecord is the persisted form of one finding, tagged for
// later reconstruction of what was checked.
type ComplianceCheckRecord struct {
	ID               int64                  `json:"id"`
	OrganizationID   string                 `json:"organization_id"`
	UserID           string                 `json:"user_id"`
	SubmissionID     string                 `json:"submission_id,omitempty"`
	FormType         string                 `json:"form_type"`
	CheckType        string                 `json:"check_type"`
	Status           CheckStatus            `json:"status"`
	RuleReference    string                 `json:"rule_reference"`
	Message          string                 `json:"message"`
	MessageLocalized string                 `json:"message_localized"`
	Details          map[string]interface{} `json:"details,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}
