// Package report renders persisted compliance check history as a
// spreadsheet for the admin review flow.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hrflow/compliance-engine/internal/domain/entity"
)

const sheetName = "Compliance Checks"

var headerRow = []string{
	"Checked At", "Organization", "User", "Submission", "Form Type",
	"Check Type", "Status", "Rule Reference", "Message", "Message (中文)", "Details",
}

// Exporter writes check-history workbooks.
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates an exporter.
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// Write renders records into an xlsx workbook on w, newest first as given.
func (e *Exporter) Write(w io.Writer, records []*entity.ComplianceCheckRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := e.setRow(f, 1, headerRow); err != nil {
		return err
	}

	for i, record := range records {
		details := ""
		if record.Details != nil {
			if data, err := json.Marshal(record.Details); err == nil {
				details = string(data)
			}
		}

		row := []string{
			record.CreatedAt.Format(time.RFC3339),
			record.OrganizationID,
			record.UserID,
			record.SubmissionID,
			record.FormType,
			record.CheckType,
			string(record.Status),
			record.RuleReference,
			record.Message,
			record.MessageLocalized,
			details,
		}
		if err := e.setRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Exported compliance check history", zap.Int("records", len(records)))
	return nil
}

func (e *Exporter) setRow(f *excelize.File, row int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to resolve cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, value); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}
