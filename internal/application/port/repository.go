package port

import (
	"context"
	"time"

	"github.com/hrflow/compliance-engine/internal/domain/entity"
)

// BalanceReader looks up leave balance records. A nil record with a nil
// error means no record exists for the key; evaluators treat that as a
// degraded (not blocking) outcome.
type BalanceReader interface {
	GetBalance(ctx context.Context, userID, organizationID string, year int) (*entity.LeaveBalanceRecord, error)
}

// OvertimeLedger sums a user's overtime hours across submissions in pending
// or approved status. The aggregate is computed fresh per call.
type OvertimeLedger interface {
	SumHours(ctx context.Context, userID, organizationID string, from, to time.Time) (float64, error)
}

// KnowledgeReader queries active regulation entries.
type KnowledgeReader interface {
	// ListByCategories returns up to limit active entries whose category is in
	// categories, newest version first.
	ListByCategories(ctx context.Context, categories []string, limit int) ([]*entity.RuleKnowledgeEntry, error)
	// GetByCategory returns the most recent active entry in a category, or
	// nil without error when none exists.
	GetByCategory(ctx context.Context, category string) (*entity.RuleKnowledgeEntry, error)
}

// AuditWriter persists compliance check records. Write errors are surfaced
// so the caller can log them; they never fail the check itself.
type AuditWriter interface {
	WriteRecords(ctx context.Context, records []*entity.ComplianceCheckRecord) error
}

// AuditQuery filters persisted check records. OrganizationID is required.
type AuditQuery struct {
	OrganizationID string
	UserID         string
	SubmissionID   string
	Limit          int
}

// AuditReader reads back persisted check records, newest first.
type AuditReader interface {
	ListRecords(ctx context.Context, q AuditQuery) ([]*entity.ComplianceCheckRecord, error)
}
