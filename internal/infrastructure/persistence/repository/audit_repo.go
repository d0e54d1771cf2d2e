package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/hrflow/compliance-engine/internal/application/port"
	"github.com/hrflow/compliance-engine/internal/domain/entity"
)

const defaultHistoryLimit = 50

// AuditRepository implements port.AuditWriter and port.AuditReader. Records
// are append-only: every finding of every check is persisted, pass items
// included, so the trail reconstructs what was checked.
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db *sql.DB, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// WriteRecords inserts all records in one transaction so a check's trail is
// persisted completely or not at all.
func (r *AuditRepository) WriteRecords(ctx context.Context, records []*entity.ComplianceCheckRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `
		INSERT INTO compliance_check_records (
			organization_id, user_id, submission_id, form_type,
			check_type, status, rule_reference, message, message_localized,
			details, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, record := range records {
		detailsJSON := ""
		if record.Details != nil {
			data, err := json.Marshal(record.Details)
			if err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to marshal record details: %w", err)
			}
			detailsJSON = string(data)
		}

		result, err := tx.ExecContext(ctx, query,
			record.OrganizationID,
			record.UserID,
			record.SubmissionID,
			record.FormType,
			record.CheckType,
			record.Status,
			record.RuleReference,
			record.Message,
			record.MessageLocalized,
			detailsJSON,
			record.CreatedAt,
		)
		if err != nil {
			_ = tx.Rollback()
			r.logger.Error("Failed to insert audit record",
				zap.String("check_type", record.CheckType),
				zap.Error(err))
			return fmt.Errorf("failed to insert audit record: %w", err)
		}

		if id, err := result.LastInsertId(); err == nil {
			record.ID = id
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit records: %w", err)
	}

	return nil
}

// ListRecords returns the most recent records matching the query, newest
// first.
func (r *AuditRepository) ListRecords(ctx context.Context, q port.AuditQuery) ([]*entity.ComplianceCheckRecord, error) {
	if q.OrganizationID == "" {
		return nil, fmt.Errorf("organization_id is required")
	}

	query := `
		SELECT id, organization_id, user_id, submission_id, form_type,
			check_type, status, rule_reference, message, message_localized,
			details, created_at
		FROM compliance_check_records
		WHERE organization_id = ?
	`
	args := []interface{}{q.OrganizationID}

	if q.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, q.UserID)
	}
	if q.SubmissionID != "" {
		query += " AND submission_id = ?"
		args = append(args, q.SubmissionID)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list audit records",
			zap.String("organization_id", q.OrganizationID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer rows.Close()

	var records []*entity.ComplianceCheckRecord
	for rows.Next() {
		var record entity.ComplianceCheckRecord
		var detailsJSON sql.NullString

		err := rows.Scan(
			&record.ID,
			&record.OrganizationID,
			&record.UserID,
			&record.SubmissionID,
			&record.FormType,
			&record.CheckType,
			&record.Status,
			&record.RuleReference,
			&record.Message,
			&record.MessageLocalized,
			&detailsJSON,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}

		if detailsJSON.Valid && detailsJSON.String != "" {
			if err := json.Unmarshal([]byte(detailsJSON.String), &record.Details); err != nil {
				return nil, fmt.Errorf("failed to decode record details: %w", err)
			}
		}

		records = append(records, &record)
	}

	return records, rows.Err()
}
