package entity

// LeaveBalanceRecord holds a user's per-year leave entitlements. Owned by the
// balance subsystem; this engine only reads it and reports violations, it
// never corrects used > total.
type LeaveBalanceRecord struct {
	UserID         string  `json:"user_id"`
	OrganizationID string  `json:"organization_id"`
	Year           int     `json:"year"`
	AnnualTotal    float64 `json:"annual_total"`
	AnnualUsed     float64 `json:"annual_used"`
	SickTotal      float64 `json:"sick_total"`
	SickUsed       float64 `json:"sick_used"`
	PersonalTotal  float64 `json:"personal_total"`
	PersonalUsed   float64 `json:"personal_used"`
	FamilyTotal    float64 `json:"family_total"`
	FamilyUsed     float64 `json:"family_used"`
	// Family-care additionally carries an hour-denominated sub-balance.
	FamilyHoursTotal float64 `json:"family_hours_total"`
	FamilyHoursUsed  float64 `json:"family_hours_used"`
	MarriageTotal    float64 `json:"marriage_total"`
	MarriageUsed     float64 `json:"marriage_used"`
	MaternityTotal   float64 `json:"maternity_total"`
	MaternityUsed    float64 `json:"maternity_used"`
	PaternityTotal   float64 `json:"paternity_total"`
	PaternityUsed    float64 `json:"paternity_used"`
	BereavementTotal float64 `json:"bereavement_total"`
	BereavementUsed  float64 `json:"bereavement_used"`
}

// Entitlement returns the total/used pair for a category. ok is false for
// categories without a day-denominated balance (unknown types).
func (r *LeaveBalanceRecord) Entitlement(category LeaveCategory) (total, used float64, ok bool) {
	switch category {
	case LeaveCategoryAnnual:
		return r.AnnualTotal, r.AnnualUsed, true
	case LeaveCategorySick:
		return r.SickTotal, r.SickUsed, true
	case LeaveCategoryPersonal:
		return r.PersonalTotal, r.PersonalUsed, true
	case LeaveCategoryFamilyCare:
		return r.FamilyTotal, r.FamilyUsed, true
	case LeaveCategoryMarriage:
		return r.MarriageTotal, r.MarriageUsed, true
	case LeaveCategoryMaternity:
		return r.MaternityTotal, r.MaternityUsed, true
	case LeaveCategoryPaternity:
		return r.PaternityTotal, r.PaternityUsed, true
	case LeaveCategoryBereavement:
		return r.BereavementTotal, r.BereavementUsed, true
	default:
		return 0, 0, false
	}
}

// OvertimeEntry is one overtime submission in the ledger. The monthly cap is
// projected against the sum of hours over entries in pending or approved
// status, recomputed on every check.
type OvertimeEntry struct {
	ID             int64   `json:"id"`
	UserID         string  `json:"user_id"`
	OrganizationID string  `json:"organization_id"`
	Date           string  `json:"date"` // YYYY-MM-DD
	Hours          float64 `json:"hours"`
	Status         string  `json:"status"` // pending, approved, rejected
}
