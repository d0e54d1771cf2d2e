package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hrflow/compliance-engine/internal/application/port"
)

// OvertimeRepository implements port.OvertimeLedger against the overtime
// submissions table. The monthly aggregate is recomputed per call; there is
// no cached running counter.
type OvertimeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOvertimeRepository creates a new overtime ledger repository.
func NewOvertimeRepository(db *sql.DB, logger *zap.Logger) port.OvertimeLedger {
	return &OvertimeRepository{
		db:     db,
		logger: logger,
	}
}

// SumHours sums hours across the user's pending and approved overtime
// submissions with date in [from, to).
func (r *OvertimeRepository) SumHours(ctx context.Context, userID, organizationID string, from, to time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(hours), 0)
		FROM overtime_entries
		WHERE user_id = ? AND organization_id = ?
			AND status IN ('pending', 'approved')
			AND date >= ? AND date < ?
	`

	var total float64
	err := r.db.QueryRowContext(ctx, query,
		userID,
		organizationID,
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
	).Scan(&total)
	if err != nil {
		r.logger.Error("Failed to sum overtime hours",
			zap.String("user_id", userID),
			zap.Time("from", from),
			zap.Time("to", to),
			zap.Error(err))
		return 0, fmt.Errorf("failed to sum overtime hours: %w", err)
	}

	return total, nil
}
