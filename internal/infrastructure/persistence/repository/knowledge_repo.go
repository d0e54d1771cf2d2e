package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hrflow/compliance-engine/internal/application/port"
	"github.com/hrflow/compliance-engine/internal/domain/entity"
)

// KnowledgeRepository implements port.KnowledgeReader. Entries are written
// by an external sync process; this side only reads, and always filters
// is_active.
type KnowledgeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewKnowledgeRepository creates a new knowledge repository.
func NewKnowledgeRepository(db *sql.DB, logger *zap.Logger) port.KnowledgeReader {
	return &KnowledgeRepository{
		db:     db,
		logger: logger,
	}
}

const knowledgeColumns = `id, title, content, content_zh, article_number, category, metadata, is_active, version, updated_at`

// ListByCategories returns up to limit active entries in the given
// categories, newest version first.
func (r *KnowledgeRepository) ListByCategories(ctx context.Context, categories []string, limit int) ([]*entity.RuleKnowledgeEntry, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(categories)), ",")
	query := fmt.Sprintf(`
		SELECT %s
		FROM knowledge_entries
		WHERE category IN (%s) AND is_active = 1
		ORDER BY version DESC, updated_at DESC
		LIMIT ?
	`, knowledgeColumns, placeholders)

	args := make([]interface{}, 0, len(categories)+1)
	for _, c := range categories {
		args = append(args, c)
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list knowledge entries",
			zap.Strings("categories", categories),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list knowledge entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.RuleKnowledgeEntry
	for rows.Next() {
		entry, err := scanKnowledgeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// GetByCategory returns the most recent active entry in a category, or nil
// without error when none exists.
func (r *KnowledgeRepository) GetByCategory(ctx context.Context, category string) (*entity.RuleKnowledgeEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM knowledge_entries
		WHERE category = ? AND is_active = 1
		ORDER BY version DESC, updated_at DESC
		LIMIT 1
	`, knowledgeColumns)

	row := r.db.QueryRowContext(ctx, query, category)
	entry, err := scanKnowledgeEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get knowledge entry",
			zap.String("category", category),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get knowledge entry: %w", err)
	}

	return entry, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanKnowledgeEntry(row rowScanner) (*entity.RuleKnowledgeEntry, error) {
	var entry entity.RuleKnowledgeEntry
	var metadataJSON sql.NullString

	err := row.Scan(
		&entry.ID,
		&entry.Title,
		&entry.Content,
		&entry.ContentZh,
		&entry.ArticleNumber,
		&entry.Category,
		&metadataJSON,
		&entry.IsActive,
		&entry.Version,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &entry.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode knowledge metadata: %w", err)
		}
	}

	return &entry, nil
}
