package tracker

import (
	"context"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/employee"
)

// WeeklySummary is one employee's logged time for a monitoring window.
// ActiveHours is logged minus idle time and is the figure compliance is
// judged against.
type WeeklySummary struct {
	EmployeeID  string
	ActiveHours float64
	TotalHours  float64
	IdleHours   float64
	DaysWorked  int
}

// Snapshot is the full summary report for one window, fetched once per run and
// shared read-only across workers.
type Snapshot map[string]WeeklySummary

// Summary returns the weekly summary for an employee id.
func (s Snapshot) Summary(id string) (WeeklySummary, bool) {
	sum, ok := s[id]
	return sum, ok
}

// Provider is the time-tracking collaborator. Implementations own transport,
// auth, timeouts and retries; callers only see roster entries and hour totals.
type Provider interface {
	Roster(ctx context.Context) ([]employee.Employee, error)
	WeekSnapshot(ctx context.Context, week employee.WorkWeek) (Snapshot, error)
}
