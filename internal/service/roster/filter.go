package roster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/employee"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/leave"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/reconcile"
)

// FilterStats summarizes one filtering pass.
type FilterStats struct {
	Total      int
	Kept       int
	Dropped    int
	DeniedFast int
	Errored    int
}

// Filter partitions the tracker roster into active employees (present in the
// current month's leave table) and those who have left. Absence from the
// sheet is treated as having left the organization.
type Filter struct {
	source   leave.Source
	denyList []string
	logger   *slog.Logger
}

// NewFilter builds a filter. denyList holds names known to be inactive that
// may still linger in either source; entries short-circuit the sheet lookup.
func NewFilter(source leave.Source, denyList []string, logger *slog.Logger) *Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{source: source, denyList: denyList, logger: logger}
}

// Active returns the subset of the roster found in the leave table of the
// month containing now. A sheet fetch failure is returned to the caller:
// without the table there is nothing to check anyone against, and dropping
// the whole roster would let a run report success having checked nobody.
func (f *Filter) Active(ctx context.Context, all []employee.Employee, now time.Time) ([]employee.Employee, FilterStats, error) {
	stats := FilterStats{Total: len(all)}

	table, err := f.source.MonthTable(ctx, now)
	if err != nil {
		return nil, stats, fmt.Errorf("fetching current month leave table: %w", err)
	}

	sheetNames := table.Names()
	var active []employee.Employee

	for _, emp := range all {
		name := strings.TrimSpace(emp.Name)
		if name == "" {
			stats.Errored++
			stats.Dropped++
			continue
		}

		if f.denied(name) {
			f.logger.Info("employee on deny list, skipping sheet lookup", "employee", name)
			stats.DeniedFast++
			stats.Dropped++
			continue
		}

		if matchesAny(name, sheetNames) {
			active = append(active, emp)
			stats.Kept++
		} else {
			f.logger.Info("employee not in current leave table, treating as left organization", "employee", name)
			stats.Dropped++
		}
	}

	return active, stats, nil
}

func (f *Filter) denied(name string) bool {
	for _, denied := range f.denyList {
		if strings.EqualFold(strings.TrimSpace(denied), name) {
			return true
		}
	}
	return false
}

func matchesAny(name string, sheetNames []string) bool {
	for _, cell := range sheetNames {
		if reconcile.RowMatch(name, cell) {
			return true
		}
	}
	return false
}
