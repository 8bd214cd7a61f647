package models

// TimeFilter restricts a search to records created in a calendar window relative to the
// database's current date.
type TimeFilter string

// Time filters.
const (
	TimeFilterNone      TimeFilter = "none"
	TimeFilterToday     TimeFilter = "today"
	TimeFilterYesterday TimeFilter = "yesterday"
	TimeFilterThisWeek  TimeFilter = "this-week"
	TimeFilterLastWeek  TimeFilter = "last-week"
)

// IsValid reports whether f is a known filter.
func (f TimeFilter) IsValid() bool {
	switch f {
	case TimeFilterNone, TimeFilterToday, TimeFilterYesterday, TimeFilterThisWeek, TimeFilterLastWeek:
		return true
	default:
		return false
	}
}
