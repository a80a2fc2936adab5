// internal/domain/launch/week.go
package launch

import "time"

// WindowKey identifies the scheduling window (a Monday-to-Sunday week) that a
// reconciliation run targets.
type WindowKey struct {
	WeekNumber int
	Year       int
	Start      time.Time
	End        time.Time
}

// ComputeWindow returns the boundaries of the next week relative to now.
// Start is the next Monday at 00:00:00, strictly after now's calendar day, and
// End is the following Sunday at 23:59:59, both in now's location.
func ComputeWindow(now time.Time) (start, end time.Time) {
	offset := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}

	y, m, d := now.Date()
	loc := now.Location()
	start = time.Date(y, m, d+offset, 0, 0, 0, 0, loc)
	end = time.Date(y, m, d+offset+6, 23, 59, 59, 0, loc)
	return start, end
}

// WeekNumber returns the ISO-8601 year and week of t.
// The ISO year is used instead of the calendar year so that a Monday in late
// December that opens week 1 does not collide with January's week 1.
func WeekNumber(t time.Time) (year, week int) {
	return t.ISOWeek()
}

// NewWindowKey derives the full window key for the week following now.
func NewWindowKey(now time.Time) WindowKey {
	start, end := ComputeWindow(now)
	year, week := WeekNumber(start)
	return WindowKey{
		WeekNumber: week,
		Year:       year,
		Start:      start,
		End:        end,
	}
}
