package entity

import "time"

// Knowledge category constants. general and salary apply to every form type.
const (
	KnowledgeCategoryLeave    = "leave"
	KnowledgeCategoryOvertime = "overtime"
	KnowledgeCategoryGeneral  = "general"
	KnowledgeCategorySalary   = "salary"
	// KnowledgeCategoryHolidayCalendar entries carry a holidays date list in
	// their metadata instead of regulation text.
	KnowledgeCategoryHolidayCalendar = "holiday_calendar"
)

// RuleKnowledgeEntry is a versioned regulation record maintained by an
// external sync process. Read-only here; queries always filter is_active.
type RuleKnowledgeEntry struct {
	ID            int64                  `json:"id"`
	Title         string                 `json:"title"`
	Content       string                 `json:"content"`
	ContentZh     string                 `json:"content_zh"`
	ArticleNumber string                 `json:"article_number"`
	Category      string                 `json:"category"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	IsActive      bool                   `json:"is_active"`
	Version       int                    `json:"version"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// HolidayDates extracts the holiday-calendar date list from a knowledge
// entry's metadata. Returns nil when the entry carries no holiday list.
func (e *RuleKnowledgeEntry) HolidayDates() []string {
	if e.Metadata == nil {
		return nil
	}
	raw, ok := e.Metadata["holidays"]
	if !ok {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	dates := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			dates = append(dates, s)
		}
	}
	return dates
}
