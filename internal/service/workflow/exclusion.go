package workflow

import "strings"

// ExclusionList is the fixed set of employees who never receive alerts
// regardless of hours. Matching is deliberately loose: the roster spells
// these names inconsistently and a false positive here only suppresses an
// alert for someone already hand-picked by HR.
type ExclusionList struct {
	entries [][]string // lowercased token sets, full name first
}

func NewExclusionList(names []string) *ExclusionList {
	list := &ExclusionList{}
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		entry := append([]string{name}, strings.Fields(name)...)
		list.entries = append(list.entries, entry)
	}
	return list
}

// Contains reports whether the employee is excluded. A hit is an exact match,
// a substring in either direction against the full excluded name, or any
// token of the employee's name equal to a token of an excluded name.
func (l *ExclusionList) Contains(employeeName string) bool {
	name := strings.ToLower(strings.TrimSpace(employeeName))
	if name == "" {
		return false
	}
	nameTokens := strings.Fields(name)

	for _, entry := range l.entries {
		full := entry[0]
		if name == full || strings.Contains(name, full) || strings.Contains(full, name) {
			return true
		}
		for _, token := range entry[1:] {
			for _, nameToken := range nameTokens {
				if nameToken == token {
					return true
				}
			}
		}
	}
	return false
}

// Size returns the number of configured exclusions.
func (l *ExclusionList) Size() int {
	return len(l.entries)
}
