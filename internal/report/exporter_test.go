package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hrflow/compliance-engine/internal/domain/entity"
)

func TestWriteProducesReadableWorkbook(t *testing.T) {
	exporter := NewExporter(zap.NewNop())

	records := []*entity.ComplianceCheckRecord{
		{
			OrganizationID:   "org-1",
			UserID:           "emp-9",
			SubmissionID:     "sub-42",
			FormType:         entity.FormTypeLeave,
			CheckType:        entity.CheckTypeLeaveBalance,
			Status:           entity.CheckStatusBlocked,
			RuleReference:    "LSA Art. 38",
			Message:          "Insufficient annual leave balance",
			MessageLocalized: "特休餘額不足",
			Details:          map[string]interface{}{"requested": 7.0},
			CreatedAt:        time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC),
		},
		{
			OrganizationID: "org-1",
			UserID:         "emp-9",
			SubmissionID:   "sub-42",
			FormType:       entity.FormTypeLeave,
			CheckType:      entity.CheckTypeAICompliance,
			Status:         entity.CheckStatusPass,
			Message:        "No issues found",
			CreatedAt:      time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, exporter.Write(&buf, records))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, headerRow, rows[0])
	assert.Equal(t, "2026-03-10T09:30:00Z", rows[1][0])
	assert.Equal(t, "sub-42", rows[1][3])
	assert.Equal(t, "blocked", rows[1][6])
	assert.Equal(t, "特休餘額不足", rows[1][9])
	assert.Contains(t, rows[1][10], `"requested":7`)
	assert.Equal(t, "pass", rows[2][6])
}

func TestWriteEmptyHistoryStillHasHeader(t *testing.T) {
	exporter := NewExporter(zap.NewNop())

	var buf bytes.Buffer
	require.NoError(t, exporter.Write(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, headerRow, rows[0])
}
