package workflow

import (
	"context"
	"fmt"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/compliance"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/employee"
)

var (
	hourBuckets  = []string{"0-10h", "11-20h", "21-30h", "31-37h", "37-40h", "40h+"}
	leaveBuckets = []string{"0_days", "1_day", "2_days", "3_days", "4_days", "5_days"}
)

// PreviewAlerts classifies the whole roster without dispatching anything and
// returns only the employees an alert run would notify.
func (r *Runner) PreviewAlerts(ctx context.Context) ([]EmployeeOutcome, error) {
	summary, err := r.Run(ctx, Options{Preview: true})
	if err != nil {
		return nil, err
	}
	var alerts []EmployeeOutcome
	for _, row := range summary.Rows {
		if row.Err == "" && row.Result.Status.AlertNeeded() {
			alerts = append(alerts, row)
		}
	}
	return alerts, nil
}

// Statistics aggregates the active roster into dashboard counters and hour and
// leave histograms. Employees whose lookups fail are skipped, not fatal.
func (r *Runner) Statistics(ctx context.Context) (Statistics, error) {
	week := employee.PreviousWorkWeek(r.now())
	stats := Statistics{
		Week:              week,
		HourDistribution:  make(map[string]int, len(hourBuckets)),
		LeaveDistribution: make(map[string]int, len(leaveBuckets)),
	}
	for _, b := range hourBuckets {
		stats.HourDistribution[b] = 0
	}
	for _, b := range leaveBuckets {
		stats.LeaveDistribution[b] = 0
	}

	all, err := r.trackerAPI.Roster(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetching roster: %w", err)
	}
	snapshot, err := r.trackerAPI.WeekSnapshot(ctx, week)
	if err != nil {
		return stats, fmt.Errorf("fetching weekly snapshot: %w", err)
	}

	active, _, err := r.filter.Active(ctx, all, r.now())
	if err != nil {
		return stats, fmt.Errorf("filtering active roster: %w", err)
	}
	stats.Employees = len(active)

	for _, emp := range active {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if r.excluded.Contains(emp.Name) {
			stats.ExcludedEmployees++
			continue
		}
		weekly, ok := snapshot.Summary(emp.ID)
		if !ok {
			continue
		}
		leaveDays, err := r.aggregator.CountLeaveDays(ctx, emp.Name, week.Start, week.End)
		if err != nil {
			r.logger.Warn("skipping employee in statistics, leave lookup failed", "employee", emp.Name, "error", err)
			continue
		}

		switch result := r.engine.Determine(weekly.ActiveHours, leaveDays, false); result.Status {
		case compliance.StatusFullLeave:
			stats.OnFullLeave++
		case compliance.StatusAlertRequired:
			stats.AlertsNeeded++
		default:
			stats.Meeting++
		}

		stats.HourDistribution[hourBucket(weekly.ActiveHours)]++
		// Fractional leave (half days) falls between buckets and is left out
		// of the histogram rather than rounded into one.
		if bucket := leaveBucket(leaveDays); bucket != "" {
			stats.LeaveDistribution[bucket]++
		}
	}
	return stats, nil
}

func hourBucket(hours float64) string {
	switch {
	case hours < 11:
		return "0-10h"
	case hours < 21:
		return "11-20h"
	case hours < 31:
		return "21-30h"
	case hours < 37:
		return "31-37h"
	case hours < 40:
		return "37-40h"
	default:
		return "40h+"
	}
}

func leaveBucket(leaveDays float64) string {
	days := int(leaveDays)
	if float64(days) != leaveDays {
		return ""
	}
	if days > 5 {
		days = 5
	}
	if days == 1 {
		return "1_day"
	}
	return fmt.Sprintf("%d_days", days)
}
