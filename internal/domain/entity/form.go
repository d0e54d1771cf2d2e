package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Form type constants.
const (
	FormTypeLeave        = "leave"
	FormTypeOvertime     = "overtime"
	FormTypeBusinessTrip = "business_trip"
)

// LeaveCategory is a normalized leave category resolved from free-text input.
type LeaveCategory string

const (
	LeaveCategoryAnnual      LeaveCategory = "annual"
	LeaveCategorySick        LeaveCategory = "sick"
	LeaveCategoryPersonal    LeaveCategory = "personal"
	LeaveCategoryFamilyCare  LeaveCategory = "family_care"
	LeaveCategoryMarriage    LeaveCategory = "marriage"
	LeaveCategoryMaternity   LeaveCategory = "maternity"
	LeaveCategoryPaternity   LeaveCategory = "paternity"
	LeaveCategoryBereavement LeaveCategory = "bereavement"
	LeaveCategoryUnknown     LeaveCategory = ""
)

// leaveKeywords maps bilingual keyword fragments to categories. Matching is
// by substring so both "特休" and "annual leave (特休)" resolve.
var leaveKeywords = []struct {
	keywords []string
	category LeaveCategory
}{
	{[]string{"annual", "特休"}, LeaveCategoryAnnual},
	{[]string{"sick", "病假"}, LeaveCategorySick},
	{[]string{"personal", "事假"}, LeaveCategoryPersonal},
	{[]string{"family", "家庭照顧", "家庭照顾"}, LeaveCategoryFamilyCare},
	{[]string{"marriage", "婚假"}, LeaveCategoryMarriage},
	{[]string{"maternity", "產假", "产假"}, LeaveCategoryMaternity},
	{[]string{"paternity", "陪產", "陪产"}, LeaveCategoryPaternity},
	{[]string{"bereavement", "funeral", "喪假", "丧假"}, LeaveCategoryBereavement},
}

// ResolveLeaveCategory normalizes a free-text leave type against the
// bilingual keyword sets. Unrecognized input resolves to LeaveCategoryUnknown.
func ResolveLeaveCategory(leaveType string) LeaveCategory {
	normalized := strings.ToLower(strings.TrimSpace(leaveType))
	for _, entry := range leaveKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(normalized, kw) {
				return entry.category
			}
		}
	}
	return LeaveCategoryUnknown
}

// LeaveFormData is the typed payload of a leave submission.
type LeaveFormData struct {
	LeaveType string
	Days      float64
	StartDate string
	EndDate   string
	Reason    string
}

// OvertimeFormData is the typed payload of an overtime submission.
type OvertimeFormData struct {
	Date   string
	Hours  float64
	Reason string
}

// BusinessTripFormData is the typed payload of a business-trip submission.
type BusinessTripFormData struct {
	Destination string
	StartDate   string
	EndDate     string
	Days        float64
}

// FormData is the tagged union of typed form payloads. Exactly one of the
// pointer fields is set, matching FormType.
type FormData struct {
	FormType     string
	Leave        *LeaveFormData
	Overtime     *OvertimeFormData
	BusinessTrip *BusinessTripFormData
	// Raw keeps the original map for the AI adapter's prompt context.
	Raw map[string]interface{}
}

// ParseFormData validates and types a raw form_data map once, at the
// boundary. Numeric fields accept both JSON numbers and numeric strings;
// non-numeric values parse to 0 rather than failing the request.
func ParseFormData(formType string, raw map[string]interface{}) (*FormData, error) {
	if raw == nil {
		return nil, fmt.Errorf("form_data is required")
	}

	fd := &FormData{FormType: formType, Raw: raw}

	switch formType {
	case FormTypeLeave:
		fd.Leave = &LeaveFormData{
			LeaveType: stringField(raw, "leave_type"),
			Days:      numericField(raw, "days"),
			StartDate: stringField(raw, "start_date"),
			EndDate:   stringField(raw, "end_date"),
			Reason:    stringField(raw, "reason"),
		}
	case FormTypeOvertime:
		fd.Overtime = &OvertimeFormData{
			Date:   stringField(raw, "date"),
			Hours:  numericField(raw, "hours"),
			Reason: stringField(raw, "reason"),
		}
	case FormTypeBusinessTrip:
		fd.BusinessTrip = &BusinessTripFormData{
			Destination: stringField(raw, "destination"),
			StartDate:   stringField(raw, "start_date"),
			EndDate:     stringField(raw, "end_date"),
			Days:        numericField(raw, "days"),
		}
	default:
		return nil, fmt.Errorf("unsupported form_type: %q", formType)
	}

	return fd, nil
}

func stringField(raw map[string]interface{}, key string) string {
	if v, ok := raw[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// numericField extracts a float from a JSON number or numeric string.
// Anything else is 0.
func numericField(raw map[string]interface{}, key string) float64 {
	v, ok := raw[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
