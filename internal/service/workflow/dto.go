package workflow

import (
	"time"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/compliance"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/employee"
)

// Options controls one run.
type Options struct {
	// Preview classifies everyone but dispatches nothing.
	Preview bool
	// Force ignores the Monday/Tuesday alert-day gate.
	Force bool
	// RunID lets callers pick the run id up front, so progress streams can be
	// subscribed to before the run starts. Empty means generate one.
	RunID string
}

// Summary is the outcome of one run. Counters are always populated, partial
// failure included; Errors makes skipped employees visible rather than
// letting the run report a silent success.
type Summary struct {
	RunID        string            `json:"run_id"`
	Week         employee.WorkWeek `json:"week"`
	Preview      bool              `json:"preview"`
	Total        int               `json:"total_employees"`
	Processed    int               `json:"processed"`
	Excluded     int               `json:"excluded"`
	AlertsSent   int               `json:"alerts_sent"`
	OnLeave      int               `json:"on_full_leave"`
	MeetingHours int               `json:"meeting_hours"`
	Overridden   int               `json:"overridden"`
	Errors       int               `json:"errors"`
	Inactive     int               `json:"inactive_dropped"`
	Elapsed      time.Duration     `json:"elapsed"`
	Rows         []EmployeeOutcome `json:"rows,omitempty"`
}

// EmployeeOutcome is one employee's classification within a run.
type EmployeeOutcome struct {
	Employee employee.Employee `json:"employee"`
	Result   compliance.Result `json:"result"`
	Manager  string            `json:"manager,omitempty"`
	Sent     bool              `json:"alert_sent"`
	Err      string            `json:"error,omitempty"`

	overridden bool
}

// Statistics aggregates the whole active roster for the dashboard.
type Statistics struct {
	Week              employee.WorkWeek `json:"week"`
	Employees         int               `json:"employees"`
	AlertsNeeded      int               `json:"alerts_needed"`
	OnFullLeave       int               `json:"on_full_leave"`
	Meeting           int               `json:"meeting_requirements"`
	ExcludedEmployees int               `json:"excluded_employees"`
	HourDistribution  map[string]int    `json:"hour_distribution"`
	LeaveDistribution map[string]int    `json:"leave_distribution"`
}
