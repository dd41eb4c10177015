package employee

import "errors"

var (
	ErrNoWeeklyData     = errors.New("no weekly summary data for employee")
	ErrRosterEmpty      = errors.New("tracker roster is empty")
	ErrEmployeeNotFound = errors.New("employee not found")
)
