package leaveledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/employee"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/leave"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/reconcile"
)

// Aggregator totals leave days taken inside an arbitrary date range by
// scanning the monthly grids of the leave source. Weekends never count;
// half days count 0.5.
type Aggregator struct {
	source leave.Source
	logger *slog.Logger
}

func NewAggregator(source leave.Source, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{source: source, logger: logger}
}

// CountLeaveDays returns the working-day leave total for one employee inside
// [from, to]. A month in which the employee has no row contributes 0: no
// record means no leave, not an error.
func (a *Aggregator) CountLeaveDays(ctx context.Context, employeeName string, from, to time.Time) (float64, error) {
	records, err := a.Records(ctx, employeeName, from, to)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, rec := range records {
		total += rec.Days
	}

	a.logger.Debug("leave days counted",
		"employee", employeeName,
		"from", from.Format("2006-01-02"),
		"to", to.Format("2006-01-02"),
		"days", total,
	)
	return total, nil
}

// Records returns the individual leave-day records for one employee inside
// [from, to], one per non-empty leave cell on a weekday.
func (a *Aggregator) Records(ctx context.Context, employeeName string, from, to time.Time) ([]leave.Record, error) {
	var records []leave.Record

	for _, month := range monthsOverlapping(from, to) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		table, err := a.source.MonthTable(ctx, month)
		if err != nil {
			return nil, err
		}

		row, found := findEmployeeRow(table, employeeName)
		if !found {
			a.logger.Debug("employee has no row this month",
				"employee", employeeName, "month", month.Format("Jan 06"))
			continue
		}

		records = append(records, extractRecords(row, employeeName, month, from, to)...)
	}

	return records, nil
}

// monthsOverlapping lists the first-of-month dates for every calendar month
// touched by [from, to].
func monthsOverlapping(from, to time.Time) []time.Time {
	var months []time.Time
	cursor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location())
	last := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, to.Location())
	for !cursor.After(last) {
		months = append(months, cursor)
		cursor = cursor.AddDate(0, 1, 0)
	}
	return months
}

// findEmployeeRow locates the employee's data row by column-0 name, using the
// same loose matching the active filter uses. Row 0 is the header.
func findEmployeeRow(table leave.MonthTable, employeeName string) ([]string, bool) {
	for i, row := range table {
		if i == 0 || len(row) == 0 {
			continue
		}
		if reconcile.RowMatch(employeeName, row[0]) {
			return row, true
		}
	}
	return nil, false
}

// extractRecords reads day columns 1..31 of one employee row, keeping cells
// whose calendar date is a weekday inside [from, to].
func extractRecords(row []string, employeeName string, month, from, to time.Time) []leave.Record {
	var records []leave.Record

	for day := 1; day <= 31; day++ {
		date := time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, month.Location())
		if date.Month() != month.Month() {
			break // ran past the end of a short month
		}
		if date.Before(truncateToDay(from)) || date.After(to) {
			continue
		}
		if !employee.IsWorkingDay(date) {
			continue
		}
		if day >= len(row) {
			continue
		}

		cell := row[day]
		if !IsLeaveCell(cell) {
			continue
		}

		isHalf := IsHalfDayCell(cell)
		days := 1.0
		if isHalf {
			days = 0.5
		}
		records = append(records, leave.Record{
			EmployeeName: employeeName,
			Date:         date,
			Type:         LeaveType(cell, isHalf),
			IsHalfDay:    isHalf,
			Days:         days,
		})
	}

	return records
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
