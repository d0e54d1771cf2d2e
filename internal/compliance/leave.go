// Package compliance implements the labor-compliance validation engine:
// rule evaluators for leave and overtime submissions, the result aggregator
// with monotone status escalation, and audit persistence of every finding.
package compliance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hrflow/compliance-engine/internal/application/port"
	"github.com/hrflow/compliance-engine/internal/domain/entity"
)

// sickCertificateThresholdDays is the day count above which sick leave
// requires a medical certificate (勞工請假規則第4條).
const sickCertificateThresholdDays = 3.0

// leaveRuleReferences maps a category to its governing citation.
var leaveRuleReferences = map[entity.LeaveCategory]string{
	entity.LeaveCategoryAnnual:      "LSA Art. 38 (特別休假)",
	entity.LeaveCategorySick:        "Rules of Leave-Taking Art. 4 (勞工請假規則第4條)",
	entity.LeaveCategoryPersonal:    "Rules of Leave-Taking Art. 7 (勞工請假規則第7條)",
	entity.LeaveCategoryFamilyCare:  "Gender Equality in Employment Act Art. 20 (性別平等工作法第20條)",
	entity.LeaveCategoryMarriage:    "Rules of Leave-Taking Art. 2 (勞工請假規則第2條)",
	entity.LeaveCategoryMaternity:   "LSA Art. 50 (產假)",
	entity.LeaveCategoryPaternity:   "Gender Equality in Employment Act Art. 15 (性別平等工作法第15條)",
	entity.LeaveCategoryBereavement: "Rules of Leave-Taking Art. 3 (勞工請假規則第3條)",
}

// protectedLeaveCategories are the legally protected leave types for which
// attendance-bonus deduction may not be applied.
var protectedLeaveCategories = map[entity.LeaveCategory]bool{
	entity.LeaveCategoryFamilyCare:  true,
	entity.LeaveCategoryMarriage:    true,
	entity.LeaveCategoryBereavement: true,
}

var leaveCategoryNamesZh = map[entity.LeaveCategory]string{
	entity.LeaveCategoryAnnual:      "特休",
	entity.LeaveCategorySick:        "病假",
	entity.LeaveCategoryPersonal:    "事假",
	entity.LeaveCategoryFamilyCare:  "家庭照顧假",
	entity.LeaveCategoryMarriage:    "婚假",
	entity.LeaveCategoryMaternity:   "產假",
	entity.LeaveCategoryPaternity:   "陪產假",
	entity.LeaveCategoryBereavement: "喪假",
}

// LeaveEvaluator checks a leave submission against the user's remaining
// entitlement for the current calendar year.
type LeaveEvaluator struct {
	balances port.BalanceReader
	logger   *zap.Logger
	now      func() time.Time
}

// NewLeaveEvaluator creates a leave evaluator.
func NewLeaveEvaluator(balances port.BalanceReader, logger *zap.Logger) *LeaveEvaluator {
	return &LeaveEvaluator{
		balances: balances,
		logger:   logger,
		now:      time.Now,
	}
}

// Evaluate produces the rule findings for one leave submission. It reads
// the balance record but never mutates it; a lookup failure or a missing
// record degrades to zero findings with the category noted in degraded.
func (e *LeaveEvaluator) Evaluate(ctx context.Context, userID, organizationID string, form *entity.LeaveFormData) (items []entity.ComplianceCheckItem, degraded []string) {
	category := entity.ResolveLeaveCategory(form.LeaveType)
	if category == entity.LeaveCategoryUnknown {
		e.logger.Warn("Unrecognized leave type, skipping balance check",
			zap.String("user_id", userID),
			zap.String("leave_type", form.LeaveType))
		return nil, []string{entity.CheckTypeLeaveBalance}
	}

	year := e.now().Year()
	record, err := e.balances.GetBalance(ctx, userID, organizationID, year)
	if err != nil {
		e.logger.Warn("Balance lookup failed, skipping leave checks",
			zap.String("user_id", userID),
			zap.Int("year", year),
			zap.Error(err))
		return nil, []string{entity.CheckTypeLeaveBalance}
	}
	if record == nil {
		// No balance record is not an error, but absence of a finding must
		// not read as "definitely compliant".
		e.logger.Info("No balance record for user",
			zap.String("user_id", userID),
			zap.Int("year", year))
		return nil, []string{entity.CheckTypeLeaveBalance}
	}

	total, used, ok := record.Entitlement(category)
	if !ok {
		return nil, []string{entity.CheckTypeLeaveBalance}
	}

	available := total - used
	requested := form.Days

	status := entity.CheckStatusPass
	message := fmt.Sprintf("Requested %.1f day(s) of %s leave; %.1f day(s) remaining", requested, category, available)
	messageZh := fmt.Sprintf("申請%s %.1f 天，剩餘 %.1f 天", leaveCategoryNamesZh[category], requested, available)
	if requested > available {
		status = entity.CheckStatusBlocked
		message = fmt.Sprintf("Requested %.1f day(s) of %s leave exceeds remaining balance of %.1f day(s)", requested, category, available)
		messageZh = fmt.Sprintf("申請%s %.1f 天，超過剩餘額度 %.1f 天", leaveCategoryNamesZh[category], requested, available)
	}

	items = append(items, entity.ComplianceCheckItem{
		CheckType:        entity.CheckTypeLeaveBalance,
		Status:           status,
		RuleReference:    leaveRuleReferences[category],
		Message:          message,
		MessageLocalized: messageZh,
		Details: map[string]interface{}{
			"requested": requested,
			"available": available,
			"total":     total,
			"used":      used,
		},
	})

	if category == entity.LeaveCategorySick && requested > sickCertificateThresholdDays {
		items = append(items, entity.ComplianceCheckItem{
			CheckType:        entity.CheckTypeSickCertificate,
			Status:           entity.CheckStatusWarning,
			RuleReference:    leaveRuleReferences[entity.LeaveCategorySick],
			Message:          fmt.Sprintf("Sick leave over %.0f days requires a medical certificate", sickCertificateThresholdDays),
			MessageLocalized: fmt.Sprintf("病假超過 %.0f 天需檢附醫療證明", sickCertificateThresholdDays),
			Details: map[string]interface{}{
				"requested":      requested,
				"threshold_days": sickCertificateThresholdDays,
			},
		})
	}

	if protectedLeaveCategories[category] {
		items = append(items, entity.ComplianceCheckItem{
			CheckType:        entity.CheckTypeProtectedLeave,
			Status:           entity.CheckStatusPass,
			RuleReference:    "Gender Equality in Employment Act Art. 21 (性別平等工作法第21條)",
			Message:          fmt.Sprintf("%s leave is legally protected; attendance-bonus deduction does not apply", category),
			MessageLocalized: fmt.Sprintf("%s為法定保護假別，不得影響全勤獎金", leaveCategoryNamesZh[category]),
			Details: map[string]interface{}{
				"category": string(category),
			},
		})
	}

	return items, nil
}
