package leave

import "time"

// Record is one leave day derived from a single sheet cell. A date maps to at
// most one record per employee per fetch.
type Record struct {
	EmployeeName string
	Date         time.Time
	Type         string
	IsHalfDay    bool
	Days         float64
}

// MonthTable is one month's leave grid as exported from the sheet: row 0 is a
// header whose columns 1..31 are day-of-month numbers, subsequent rows carry
// the employee name in column 0 and a leave cell per day.
type MonthTable [][]string

// Names returns the column-0 employee names of every data row.
func (t MonthTable) Names() []string {
	names := make([]string, 0, len(t))
	for i, row := range t {
		if i == 0 || len(row) == 0 {
			continue
		}
		names = append(names, row[0])
	}
	return names
}

// MonthLabels returns the sheet tab labels tried for a month, most specific
// first. The "Jan 06" layout matches the sheet's actual tab naming convention
// ("Sep 25") and must stay first.
func MonthLabels(t time.Time) []string {
	return []string{
		t.Format("Jan 06"),
		t.Format("January 06"),
		t.Format("January 2006"),
	}
}
