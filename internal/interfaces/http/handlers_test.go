package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hrflow/compliance-engine/internal/application/port"
	"github.com/hrflow/compliance-engine/internal/compliance"
	"github.com/hrflow/compliance-engine/internal/domain/entity"
	"github.com/hrflow/compliance-engine/internal/report"
)

type fixedBalances struct {
	record *entity.LeaveBalanceRecord
}

func (f *fixedBalances) GetBalance(ctx context.Context, userID, orgID string, year int) (*entity.LeaveBalanceRecord, error) {
	return f.record, nil
}

type fixedLedger struct{ total float64 }

func (f *fixedLedger) SumHours(ctx context.Context, userID, orgID string, from, to time.Time) (float64, error) {
	return f.total, nil
}

type noKnowledge struct{}

func (noKnowledge) ListByCategories(ctx context.Context, categories []string, limit int) ([]*entity.RuleKnowledgeEntry, error) {
	return nil, nil
}

func (noKnowledge) GetByCategory(ctx context.Context, category string) (*entity.RuleKnowledgeEntry, error) {
	return nil, nil
}

type silentAnalyzer struct{}

func (silentAnalyzer) Analyze(ctx context.Context, req port.AnalysisRequest) (*port.AnalysisResult, error) {
	return nil, nil
}

type fixedHistory struct {
	records []*entity.ComplianceCheckRecord
	err     error
	gotQ    port.AuditQuery
}

func (f *fixedHistory) ListRecords(ctx context.Context, q port.AuditQuery) ([]*entity.ComplianceCheckRecord, error) {
	f.gotQ = q
	return f.records, f.err
}

type discardAudit struct{}

func (discardAudit) WriteRecords(ctx context.Context, records []*entity.ComplianceCheckRecord) error {
	return nil
}

func newTestServer(t *testing.T, history port.AuditReader) *Server {
	t.Helper()

	logger := zap.NewNop()
	balances := &fixedBalances{record: &entity.LeaveBalanceRecord{AnnualTotal: 10, AnnualUsed: 2}}
	engine := compliance.NewEngine(
		compliance.NewLeaveEvaluator(balances, logger),
		compliance.NewOvertimeEvaluator(&fixedLedger{}, noKnowledge{}, logger),
		silentAnalyzer{},
		discardAudit{},
		nil,
		logger,
	)

	return NewServer(ServerConfig{Host: "127.0.0.1", Port: 0}, engine, history, report.NewExporter(logger), 50, logger)
}

func doJSON(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t, &fixedHistory{})

	w := doJSON(t, server, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestValidateSubmissionMissingFields(t *testing.T) {
	server := newTestServer(t, &fixedHistory{})

	w := doJSON(t, server, http.MethodPost, "/api/compliance/check", map[string]interface{}{
		"form_type": entity.FormTypeLeave,
		"user_id":   "emp-9",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "required")
}

func TestValidateSubmissionHappyPath(t *testing.T) {
	server := newTestServer(t, &fixedHistory{})

	w := doJSON(t, server, http.MethodPost, "/api/compliance/check", map[string]interface{}{
		"form_type": entity.FormTypeLeave,
		"form_data": map[string]interface{}{
			"leave_type": "annual leave",
			"days":       3,
		},
		"user_id":         "emp-9",
		"organization_id": "org-1",
		"submission_id":   "sub-42",
	})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result entity.ComplianceCheckResult
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, entity.CheckStatusPass, result.Status)
	require.NotEmpty(t, result.Checks)
	assert.Equal(t, entity.CheckTypeLeaveBalance, result.Checks[0].CheckType)
}

func TestValidateSubmissionUnknownFormType(t *testing.T) {
	server := newTestServer(t, &fixedHistory{})

	w := doJSON(t, server, http.MethodPost, "/api/compliance/check", map[string]interface{}{
		"form_type":       "expense",
		"form_data":       map[string]interface{}{},
		"user_id":         "emp-9",
		"organization_id": "org-1",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decodeResponse(t, w).Success)
}

func TestCheckHistoryRequiresOrganization(t *testing.T) {
	server := newTestServer(t, &fixedHistory{})

	w := doJSON(t, server, http.MethodGet, "/api/compliance/history", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Contains(t, resp.Error, "organization_id")
}

func TestCheckHistoryPassesFilters(t *testing.T) {
	history := &fixedHistory{records: []*entity.ComplianceCheckRecord{{ID: 1, OrganizationID: "org-1"}}}
	server := newTestServer(t, history)

	w := doJSON(t, server, http.MethodGet, "/api/compliance/history?organization_id=org-1&user_id=emp-9&limit=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
	assert.Equal(t, "org-1", history.gotQ.OrganizationID)
	assert.Equal(t, "emp-9", history.gotQ.UserID)
	assert.Equal(t, 10, history.gotQ.Limit)
}

func TestCheckHistoryRejectsOversizedLimit(t *testing.T) {
	history := &fixedHistory{}
	server := newTestServer(t, history)

	w := doJSON(t, server, http.MethodGet, "/api/compliance/history?organization_id=org-1&limit=9999", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, history.gotQ.Limit, "out-of-range limit falls back to the configured default")
}

func TestCheckHistoryQueryFailure(t *testing.T) {
	server := newTestServer(t, &fixedHistory{err: fmt.Errorf("db locked")})

	w := doJSON(t, server, http.MethodGet, "/api/compliance/history?organization_id=org-1", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, decodeResponse(t, w).Success)
}

func TestExportHistoryStreamsWorkbook(t *testing.T) {
	history := &fixedHistory{records: []*entity.ComplianceCheckRecord{
		{
			OrganizationID: "org-1",
			UserID:         "emp-9",
			FormType:       entity.FormTypeOvertime,
			CheckType:      entity.CheckTypeDailyOvertime,
			Status:         entity.CheckStatusWarning,
			CreatedAt:      time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
		},
	}}
	server := newTestServer(t, history)

	w := doJSON(t, server, http.MethodGet, "/api/compliance/history/export?organization_id=org-1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Compliance Checks")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "warning", rows[1][6])
}
