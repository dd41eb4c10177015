package employee

import "time"

// Employee is one roster entry from the time-tracking source. It is rebuilt on
// every run and never persisted; ID is stable only within the tracker, while
// Name is the (fragile) link to the leave sheet and manager directory.
type Employee struct {
	ID    string
	Name  string
	Email string
}

// WorkWeek is the rolling monitoring window: the Monday-Sunday calendar week
// immediately preceding "now".
type WorkWeek struct {
	Start time.Time
	End   time.Time
}

// PreviousWorkWeek returns the monitoring window for the given instant:
// previous Monday 00:00:00.000000 through previous Sunday 23:59:59.999999,
// in now's location.
func PreviousWorkWeek(now time.Time) WorkWeek {
	// time.Weekday has Sunday=0; the sheet week is Monday-anchored.
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	currentMonday := now.AddDate(0, 0, -daysSinceMonday)
	previousMonday := currentMonday.AddDate(0, 0, -7)
	previousSunday := previousMonday.AddDate(0, 0, 6)

	loc := now.Location()
	start := time.Date(previousMonday.Year(), previousMonday.Month(), previousMonday.Day(), 0, 0, 0, 0, loc)
	end := time.Date(previousSunday.Year(), previousSunday.Month(), previousSunday.Day(), 23, 59, 59, 999999000, loc)
	return WorkWeek{Start: start, End: end}
}

// WorkingDays counts Monday-Friday dates inside [start, end], inclusive.
func WorkingDays(start, end time.Time) int {
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d) {
			days++
		}
	}
	return days
}

// IsWorkingDay reports whether the date falls Monday-Friday. Weekends never
// count toward leave totals or hour requirements.
func IsWorkingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
