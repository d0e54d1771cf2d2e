// Package repository provides sqlite-backed implementations of the engine's
// collaborator ports.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/hrflow/compliance-engine/internal/application/port"
	"github.com/hrflow/compliance-engine/internal/domain/entity"
)

// BalanceRepository implements port.BalanceReader.
type BalanceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBalanceRepository creates a new balance repository.
func NewBalanceRepository(db *sql.DB, logger *zap.Logger) port.BalanceReader {
	return &BalanceRepository{
		db:     db,
		logger: logger,
	}
}

// GetBalance returns the balance record for (user, organization, year), or
// nil without error when none exists.
func (r *BalanceRepository) GetBalance(ctx context.Context, userID, organizationID string, year int) (*entity.LeaveBalanceRecord, error) {
	query := `
		SELECT user_id, organization_id, year,
			annual_total, annual_used,
			sick_total, sick_used,
			personal_total, personal_used,
			family_total, family_used,
			family_hours_total, family_hours_used,
			marriage_total, marriage_used,
			maternity_total, maternity_used,
			paternity_total, paternity_used,
			bereavement_total, bereavement_used
		FROM leave_balances
		WHERE user_id = ? AND organization_id = ? AND year = ?
	`

	var record entity.LeaveBalanceRecord
	err := r.db.QueryRowContext(ctx, query, userID, organizationID, year).Scan(
		&record.UserID,
		&record.OrganizationID,
		&record.Year,
		&record.AnnualTotal, &record.AnnualUsed,
		&record.SickTotal, &record.SickUsed,
		&record.PersonalTotal, &record.PersonalUsed,
		&record.FamilyTotal, &record.FamilyUsed,
		&record.FamilyHoursTotal, &record.FamilyHoursUsed,
		&record.MarriageTotal, &record.MarriageUsed,
		&record.MaternityTotal, &record.MaternityUsed,
		&record.PaternityTotal, &record.PaternityUsed,
		&record.BereavementTotal, &record.BereavementUsed,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get leave balance",
			zap.String("user_id", userID),
			zap.Int("year", year),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get leave balance: %w", err)
	}

	return &record, nil
}
