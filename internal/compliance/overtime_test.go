package compliance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hrflow/compliance-engine/internal/domain/entity"
)

type stubLedger struct {
	hours float64
	err   error
}

func (s *stubLedger) SumHours(ctx context.Context, userID, organizationID string, from, to time.Time) (float64, error) {
	return s.hours, s.err
}

type stubKnowledge struct {
	entries  []*entity.RuleKnowledgeEntry
	calendar *entity.RuleKnowledgeEntry
	err      error
}

func (s *stubKnowledge) ListByCategories(ctx context.Context, categories []string, limit int) ([]*entity.RuleKnowledgeEntry, error) {
	return s.entries, s.err
}

func (s *stubKnowledge) GetByCategory(ctx context.Context, category string) (*entity.RuleKnowledgeEntry, error) {
	return s.calendar, s.err
}

func findItem(t *testing.T, items []entity.ComplianceCheckItem, checkType string) entity.ComplianceCheckItem {
	t.Helper()
	for _, item := range items {
		if item.CheckType == checkType {
			return item
		}
	}
	t.Fatalf("no %s item in %v", checkType, items)
	return entity.ComplianceCheckItem{}
}

func TestDailyCapBoundary(t *testing.T) {
	tests := []struct {
		name  string
		hours float64
		want  entity.CheckStatus
	}{
		{"exactly at cap passes", 4.0, entity.CheckStatusPass},
		{"just over cap blocks", 4.01, entity.CheckStatusBlocked},
		{"well under cap passes", 2, entity.CheckStatusPass},
		{"well over cap blocks", 6, entity.CheckStatusBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := NewOvertimeEvaluator(&stubLedger{}, &stubKnowledge{}, zap.NewNop())
			items, _ := eval.Evaluate(context.Background(), "u1", "org1", &entity.OvertimeFormData{
				Date:  "2026-03-10",
				Hours: tt.hours,
			})
			daily := findItem(t, items, entity.CheckTypeDailyOvertime)
			assert.Equal(t, tt.want, daily.Status)
		})
	}
}

func TestMonthlyCapProjection(t *testing.T) {
	tests := []struct {
		name      string
		existing  float64
		requested float64
		want      entity.CheckStatus
		projected float64
	}{
		{"within standard cap", 40, 5, entity.CheckStatusPass, 45},
		{"over standard cap warns", 44, 5, entity.CheckStatusWarning, 49},
		{"over extended cap blocks", 50, 6, entity.CheckStatusBlocked, 56},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := NewOvertimeEvaluator(&stubLedger{hours: tt.existing}, &stubKnowledge{}, zap.NewNop())
			items, degraded := eval.Evaluate(context.Background(), "u1", "org1", &entity.OvertimeFormData{
				Date:  "2026-03-10",
				Hours: tt.requested,
			})

			assert.Empty(t, degraded)
			monthly := findItem(t, items, entity.CheckTypeMonthlyOvertime)
			assert.Equal(t, tt.want, monthly.Status)
			assert.Equal(t, tt.projected, monthly.Details["projected"])
			// Both thresholds ride along regardless of outcome.
			assert.Equal(t, 46.0, monthly.Details["standard_limit"])
			assert.Equal(t, 54.0, monthly.Details["extended_limit"])
		})
	}
}

func TestHolidayOvertimeWarns(t *testing.T) {
	calendar := &entity.RuleKnowledgeEntry{
		Category: entity.KnowledgeCategoryHolidayCalendar,
		IsActive: true,
		Metadata: map[string]interface{}{
			"holidays": []interface{}{"2026-02-28", "2026-10-10"},
		},
	}
	eval := NewOvertimeEvaluator(&stubLedger{}, &stubKnowledge{calendar: calendar}, zap.NewNop())

	items, degraded := eval.Evaluate(context.Background(), "u1", "org1", &entity.OvertimeFormData{
		Date:  "2026-10-10",
		Hours: 2,
	})

	assert.Empty(t, degraded)
	holiday := findItem(t, items, entity.CheckTypeHolidayOvertime)
	assert.Equal(t, entity.CheckStatusWarning, holiday.Status)
	assert.Equal(t, "2026-10-10", holiday.Details["date"])
	assert.Equal(t, 2.0, holiday.Details["rate"])
}

func TestNonHolidayDateSkipsHolidayItem(t *testing.T) {
	calendar := &entity.RuleKnowledgeEntry{
		Metadata: map[string]interface{}{
			"holidays": []interface{}{"2026-10-10"},
		},
	}
	eval := NewOvertimeEvaluator(&stubLedger{}, &stubKnowledge{calendar: calendar}, zap.NewNop())

	items, degraded := eval.Evaluate(context.Background(), "u1", "org1", &entity.OvertimeFormData{
		Date:  "2026-03-11",
		Hours: 2,
	})

	assert.Empty(t, degraded)
	for _, item := range items {
		assert.NotEqual(t, entity.CheckTypeHolidayOvertime, item.CheckType)
	}
}

func TestMissingHolidayCalendarSkipsSilently(t *testing.T) {
	eval := NewOvertimeEvaluator(&stubLedger{}, &stubKnowledge{calendar: nil}, zap.NewNop())

	items, degraded := eval.Evaluate(context.Background(), "u1", "org1", &entity.OvertimeFormData{
		Date:  "2026-03-10",
		Hours: 1,
	})

	require.Len(t, items, 2) // daily + monthly only
	assert.Empty(t, degraded)
}

func TestLedgerFailureDegradesMonthlyCheckOnly(t *testing.T) {
	eval := NewOvertimeEvaluator(&stubLedger{err: fmt.Errorf("timeout")}, &stubKnowledge{}, zap.NewNop())

	items, degraded := eval.Evaluate(context.Background(), "u1", "org1", &entity.OvertimeFormData{
		Date:  "2026-03-10",
		Hours: 5,
	})

	// Daily check still runs and blocks.
	daily := findItem(t, items, entity.CheckTypeDailyOvertime)
	assert.Equal(t, entity.CheckStatusBlocked, daily.Status)
	assert.Contains(t, degraded, entity.CheckTypeMonthlyOvertime)
}

func TestUnparsableDateDegradesDependentChecks(t *testing.T) {
	eval := NewOvertimeEvaluator(&stubLedger{}, &stubKnowledge{}, zap.NewNop())

	items, degraded := eval.Evaluate(context.Background(), "u1", "org1", &entity.OvertimeFormData{
		Date:  "next tuesday",
		Hours: 2,
	})

	require.Len(t, items, 1)
	assert.Equal(t, entity.CheckTypeDailyOvertime, items[0].CheckType)
	assert.ElementsMatch(t, []string{entity.CheckTypeMonthlyOvertime, entity.CheckTypeHolidayOvertime}, degraded)
}
