package compliance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hrflow/compliance-engine/internal/application/port"
	"github.com/hrflow/compliance-engine/internal/domain/entity"
)

// Statutory overtime ceilings (勞動基準法第32條). The daily cap is 4 extra
// hours on top of the 8-hour regular day; the monthly cap is 46 hours,
// extendable to 54 with union or labor-management consent.
const (
	dailyOvertimeCapHours    = 4.0
	monthlyStandardCapHours  = 46.0
	monthlyExtendedCapHours  = 54.0
	holidayOvertimePayFactor = 2.0
)

const dateLayout = "2006-01-02"

// OvertimeEvaluator checks an overtime submission against the daily cap,
// the rolling monthly cap, and the holiday-premium obligation.
type OvertimeEvaluator struct {
	ledger    port.OvertimeLedger
	knowledge port.KnowledgeReader
	logger    *zap.Logger
}

// NewOvertimeEvaluator creates an overtime evaluator.
func NewOvertimeEvaluator(ledger port.OvertimeLedger, knowledge port.KnowledgeReader, logger *zap.Logger) *OvertimeEvaluator {
	return &OvertimeEvaluator{
		ledger:    ledger,
		knowledge: knowledge,
		logger:    logger,
	}
}

// Evaluate produces the rule findings for one overtime submission. Ledger or
// calendar lookup failures degrade to omitting the affected item; they never
// abort the check.
func (e *OvertimeEvaluator) Evaluate(ctx context.Context, userID, organizationID string, form *entity.OvertimeFormData) (items []entity.ComplianceCheckItem, degraded []string) {
	items = append(items, e.dailyCapItem(form.Hours))

	date, err := time.Parse(dateLayout, form.Date)
	if err != nil {
		e.logger.Warn("Unparsable overtime date, skipping monthly and holiday checks",
			zap.String("user_id", userID),
			zap.String("date", form.Date))
		return items, []string{entity.CheckTypeMonthlyOvertime, entity.CheckTypeHolidayOvertime}
	}

	if item, ok := e.monthlyCapItem(ctx, userID, organizationID, date, form.Hours); ok {
		items = append(items, item)
	} else {
		degraded = append(degraded, entity.CheckTypeMonthlyOvertime)
	}

	holidayItem, holidayDegraded := e.holidayItem(ctx, form.Date)
	if holidayItem != nil {
		items = append(items, *holidayItem)
	}
	if holidayDegraded {
		degraded = append(degraded, entity.CheckTypeHolidayOvertime)
	}

	return items, degraded
}

// dailyCapItem enforces the 12-hour statutory day. Exactly 4.0 extra hours
// passes; anything above blocks.
func (e *OvertimeEvaluator) dailyCapItem(hours float64) entity.ComplianceCheckItem {
	status := entity.CheckStatusPass
	message := fmt.Sprintf("Requested %.2f overtime hour(s) is within the %.0f-hour daily cap", hours, dailyOvertimeCapHours)
	messageZh := fmt.Sprintf("申請加班 %.2f 小時，未超過單日上限 %.0f 小時", hours, dailyOvertimeCapHours)
	if hours > dailyOvertimeCapHours {
		status = entity.CheckStatusBlocked
		message = fmt.Sprintf("Requested %.2f overtime hour(s) exceeds the %.0f-hour daily cap (12-hour day)", hours, dailyOvertimeCapHours)
		messageZh = fmt.Sprintf("申請加班 %.2f 小時，超過單日上限 %.0f 小時（每日工時不得超過12小時）", hours, dailyOvertimeCapHours)
	}
	return entity.ComplianceCheckItem{
		CheckType:        entity.CheckTypeDailyOvertime,
		Status:           status,
		RuleReference:    "LSA Art. 32 (勞動基準法第32條)",
		Message:          message,
		MessageLocalized: messageZh,
		Details: map[string]interface{}{
			"requested": hours,
			"daily_cap": dailyOvertimeCapHours,
		},
	}
}

// monthlyCapItem projects the calendar-month total against the 46/54-hour
// ceilings. Both thresholds ride along in details regardless of outcome.
func (e *OvertimeEvaluator) monthlyCapItem(ctx context.Context, userID, organizationID string, date time.Time, requested float64) (entity.ComplianceCheckItem, bool) {
	monthStart := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	existing, err := e.ledger.SumHours(ctx, userID, organizationID, monthStart, monthEnd)
	if err != nil {
		e.logger.Warn("Overtime ledger query failed, skipping monthly cap check",
			zap.String("user_id", userID),
			zap.Time("month", monthStart),
			zap.Error(err))
		return entity.ComplianceCheckItem{}, false
	}

	projected := existing + requested

	var status entity.CheckStatus
	var message, messageZh string
	switch {
	case projected > monthlyExtendedCapHours:
		status = entity.CheckStatusBlocked
		message = fmt.Sprintf("Projected monthly overtime of %.2f hour(s) exceeds the %.0f-hour extended ceiling", projected, monthlyExtendedCapHours)
		messageZh = fmt.Sprintf("本月加班預計達 %.2f 小時，超過經同意後之上限 %.0f 小時", projected, monthlyExtendedCapHours)
	case projected > monthlyStandardCapHours:
		status = entity.CheckStatusWarning
		message = fmt.Sprintf("Projected monthly overtime of %.2f hour(s) exceeds the %.0f-hour standard cap; %.0f hours allowed only with consent", projected, monthlyStandardCapHours, monthlyExtendedCapHours)
		messageZh = fmt.Sprintf("本月加班預計達 %.2f 小時，超過 %.0f 小時，須經工會或勞資會議同意方可至 %.0f 小時", projected, monthlyStandardCapHours, monthlyExtendedCapHours)
	default:
		status = entity.CheckStatusPass
		message = fmt.Sprintf("Projected monthly overtime of %.2f hour(s) is within the %.0f-hour cap", projected, monthlyStandardCapHours)
		messageZh = fmt.Sprintf("本月加班預計 %.2f 小時，未超過上限 %.0f 小時", projected, monthlyStandardCapHours)
	}

	return entity.ComplianceCheckItem{
		CheckType:        entity.CheckTypeMonthlyOvertime,
		Status:           status,
		RuleReference:    "LSA Art. 32 (勞動基準法第32條)",
		Message:          message,
		MessageLocalized: messageZh,
		Details: map[string]interface{}{
			"requested":      requested,
			"existing":       existing,
			"projected":      projected,
			"standard_limit": monthlyStandardCapHours,
			"extended_limit": monthlyExtendedCapHours,
		},
	}, true
}

// holidayItem warns about the double-pay obligation when the request date is
// on the active holiday calendar. A missing calendar silently skips the
// check; only a lookup error counts as degradation.
func (e *OvertimeEvaluator) holidayItem(ctx context.Context, date string) (*entity.ComplianceCheckItem, bool) {
	calendar, err := e.knowledge.GetByCategory(ctx, entity.KnowledgeCategoryHolidayCalendar)
	if err != nil {
		e.logger.Warn("Holiday calendar lookup failed, skipping holiday check", zap.Error(err))
		return nil, true
	}
	if calendar == nil {
		return nil, false
	}

	for _, holiday := range calendar.HolidayDates() {
		if holiday == date {
			return &entity.ComplianceCheckItem{
				CheckType:        entity.CheckTypeHolidayOvertime,
				Status:           entity.CheckStatusWarning,
				RuleReference:    "LSA Art. 39 (勞動基準法第39條)",
				Message:          fmt.Sprintf("%s is a statutory holiday: overtime requires employee consent and double pay", date),
				MessageLocalized: fmt.Sprintf("%s 為國定假日，加班須經勞工同意並加倍發給工資", date),
				Details: map[string]interface{}{
					"date": date,
					"rate": holidayOvertimePayFactor,
				},
			}, false
		}
	}
	return nil, false
}
