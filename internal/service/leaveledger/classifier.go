package leaveledger

import (
	"regexp"
	"strings"
)

// Cell vocabulary mirrors what HR actually types into the sheet. Anything
// unclassifiable is treated as "not a leave" — malformed cells must never be
// fatal and must never inflate a leave count.

// nonLeaveCells are whole-cell values meaning the employee worked (or the cell
// is just noise).
var nonLeaveCells = map[string]struct{}{
	"":        {},
	"-":       {},
	".":       {},
	"na":      {},
	"n/a":     {},
	"nil":     {},
	"working": {},
	"present": {},
	"p":       {},
	"0":       {},
	"w/o":     {},
	"wo":      {},
}

// weekendCells are explicit weekend labels. They are excluded here as well as
// by the weekday filter so a mislabelled weekday cell cannot count as leave.
var weekendCells = map[string]struct{}{
	"weekend":  {},
	"week end": {},
	"sat":      {},
	"sun":      {},
	"saturday": {},
	"sunday":   {},
}

var leaveIndicators = []string{
	"leave", "holiday", "vacation", "sick", "personal", "casual", "earned",
	"comp off", "compoff", "wfh", "work from home",
	"medical", "emergency", "half", "0.5", "½",
	"maternity", "paternity", "annual", "privilege", "bereavement",
	"marriage", "study",
}

var halfDayIndicators = []string{
	"half", "0.5", "½", "1/2", "partial", "hd", "h.d",
	"morning leave", "afternoon leave", "short leave",
}

// Whole-cell leave-type abbreviations: casual/sick/personal/earned leave,
// comp off and half day.
var abbreviationCell = regexp.MustCompile(`^(?i:cl|sl|pl|el|co|hd)$`)

// IsLeaveCell reports whether a sheet cell records a leave day.
func IsLeaveCell(cell string) bool {
	normalized := strings.ToLower(strings.TrimSpace(cell))

	if _, ok := nonLeaveCells[normalized]; ok {
		return false
	}
	if _, ok := weekendCells[normalized]; ok {
		return false
	}

	for _, indicator := range leaveIndicators {
		if strings.Contains(normalized, indicator) {
			return true
		}
	}
	return abbreviationCell.MatchString(strings.TrimSpace(cell))
}

// IsHalfDayCell reports whether a leave cell records a half day. Only
// meaningful when IsLeaveCell is already true.
func IsHalfDayCell(cell string) bool {
	normalized := strings.ToLower(strings.TrimSpace(cell))
	for _, indicator := range halfDayIndicators {
		if strings.Contains(normalized, indicator) {
			return true
		}
	}
	return false
}

var wordBoundary = map[string]*regexp.Regexp{
	"cl": regexp.MustCompile(`(?i)\bcl\b`),
	"sl": regexp.MustCompile(`(?i)\bsl\b`),
	"el": regexp.MustCompile(`(?i)\bel\b`),
	"pl": regexp.MustCompile(`(?i)\bpl\b`),
	"co": regexp.MustCompile(`(?i)\bco\b`),
}

// LeaveType normalizes a leave cell into a display label.
func LeaveType(cell string, isHalfDay bool) string {
	normalized := strings.ToLower(cell)

	prefix := ""
	if isHalfDay {
		prefix = "Half Day "
	}

	switch {
	case strings.Contains(normalized, "casual") || wordBoundary["cl"].MatchString(cell):
		return prefix + "Casual Leave"
	case strings.Contains(normalized, "sick") || wordBoundary["sl"].MatchString(cell):
		return prefix + "Sick Leave"
	case strings.Contains(normalized, "earned") || wordBoundary["el"].MatchString(cell):
		return prefix + "Earned Leave"
	case strings.Contains(normalized, "personal") || wordBoundary["pl"].MatchString(cell):
		return prefix + "Personal Leave"
	case strings.Contains(normalized, "comp") || wordBoundary["co"].MatchString(cell):
		return prefix + "Comp Off"
	case strings.Contains(normalized, "medical"):
		return prefix + "Medical Leave"
	case strings.Contains(normalized, "wfh") || strings.Contains(normalized, "work from home"):
		return prefix + "Work From Home"
	default:
		return prefix + "Leave"
	}
}
