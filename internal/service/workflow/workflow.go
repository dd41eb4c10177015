package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/alert"
	domaincompliance "github.com/rapidinnovation/hours-monitor-go/internal/domain/compliance"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/employee"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/manager"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/tracker"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/compliance"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/leaveledger"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/roster"
)

// OverrideHook is an optional post-classification reviewer. It may only
// suppress an alert (alert_required -> meeting_requirements), never create
// one, and must return a rationale that the runner logs. The orchestrator
// enforces the one-way rule regardless of what the hook returns.
type OverrideHook interface {
	Review(ctx context.Context, emp employee.Employee, result domaincompliance.Result) (suppress bool, rationale string)
}

// ProgressSink receives per-employee progress events for live dashboards.
type ProgressSink interface {
	Publish(topic string, name string, data interface{})
}

// Runner drives one full monitoring run: resolve the week, fetch the roster
// and hours snapshot, filter to active employees, classify each, and dispatch
// alerts for the under-hours ones. Per-employee processing is independent and
// runs on a bounded worker pool over read-only per-run snapshots.
type Runner struct {
	trackerAPI tracker.Provider
	aggregator *leaveledger.Aggregator
	filter     *roster.Filter
	engine     *compliance.Engine
	directory  manager.Directory
	sender     alert.Sender
	excluded   *ExclusionList
	override   OverrideHook
	progress   ProgressSink

	workers  int
	alertsOn bool
	ccEmails []string
	hrCC     string
	now      func() time.Time
	logger   *slog.Logger
}

// RunnerParams carries the collaborators and policy knobs for a Runner.
// Override, Progress and Now are optional.
type RunnerParams struct {
	Tracker    tracker.Provider
	Aggregator *leaveledger.Aggregator
	Filter     *roster.Filter
	Engine     *compliance.Engine
	Directory  manager.Directory
	Sender     alert.Sender
	Excluded   []string
	Override   OverrideHook
	Progress   ProgressSink
	Workers    int
	AlertsOn   bool
	CCEmails   []string
	HRCC       string
	Now        func() time.Time
	Logger     *slog.Logger
}

func NewRunner(p RunnerParams) *Runner {
	if p.Workers <= 0 {
		p.Workers = 8
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return &Runner{
		trackerAPI: p.Tracker,
		aggregator: p.Aggregator,
		filter:     p.Filter,
		engine:     p.Engine,
		directory:  p.Directory,
		sender:     p.Sender,
		excluded:   NewExclusionList(p.Excluded),
		override:   p.Override,
		progress:   p.Progress,
		workers:    p.Workers,
		alertsOn:   p.AlertsOn,
		ccEmails:   p.CCEmails,
		hrCC:       p.HRCC,
		now:        p.Now,
		logger:     p.Logger,
	}
}

// Week returns the current monitoring window.
func (r *Runner) Week() employee.WorkWeek {
	return employee.PreviousWorkWeek(r.now())
}

// ShouldAlertToday reports whether today is an alert day (Monday or Tuesday).
func (r *Runner) ShouldAlertToday() bool {
	wd := r.now().Weekday()
	return wd == time.Monday || wd == time.Tuesday
}

// Run executes one full monitoring pass. Roster and snapshot failures are
// fatal (nothing to process); everything per-employee is caught, counted and
// logged. Cancellation drains in-flight workers and discards the queue.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	started := r.now()
	week := employee.PreviousWorkWeek(started)
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	summary := Summary{
		RunID:   runID,
		Week:    week,
		Preview: opts.Preview,
	}

	r.logger.Info("monitoring run starting",
		"run_id", summary.RunID,
		"week_start", week.Start.Format("2006-01-02"),
		"week_end", week.End.Format("2006-01-02"),
		"preview", opts.Preview,
	)

	all, err := r.trackerAPI.Roster(ctx)
	if err != nil {
		return summary, fmt.Errorf("fetching roster: %w", err)
	}
	if len(all) == 0 {
		return summary, employee.ErrRosterEmpty
	}

	snapshot, err := r.trackerAPI.WeekSnapshot(ctx, week)
	if err != nil {
		return summary, fmt.Errorf("fetching weekly snapshot: %w", err)
	}

	if err := r.directory.Refresh(ctx, false); err != nil {
		// A stale or missing directory only degrades manager CCs.
		r.logger.Warn("manager directory refresh failed, continuing with cached data", "error", err)
	}

	active, stats, err := r.filter.Active(ctx, all, started)
	if err != nil {
		return summary, fmt.Errorf("filtering active roster: %w", err)
	}
	summary.Total = len(active)
	summary.Inactive = stats.Dropped
	r.logger.Info("roster filtered",
		"roster", len(all), "active", stats.Kept, "dropped", stats.Dropped, "lookup_errors", stats.Errored)

	r.publish(runID, "run_started", map[string]interface{}{
		"run_id": runID,
		"total":  len(active),
	})

	outcomes := r.processAll(ctx, runID, active, week, snapshot, opts)

	for _, out := range outcomes {
		summary.Rows = append(summary.Rows, out)
		if out.Err != "" {
			summary.Errors++
			continue
		}
		summary.Processed++
		switch out.Result.Status {
		case domaincompliance.StatusExcluded:
			summary.Excluded++
		case domaincompliance.StatusFullLeave:
			summary.OnLeave++
		case domaincompliance.StatusMeetingRequirements:
			summary.MeetingHours++
		case domaincompliance.StatusAlertRequired:
			if out.Sent {
				summary.AlertsSent++
			}
		}
		if out.overridden {
			summary.Overridden++
		}
	}
	summary.Elapsed = r.now().Sub(started)

	r.logger.Info("monitoring run finished",
		"run_id", summary.RunID,
		"total", summary.Total,
		"processed", summary.Processed,
		"excluded", summary.Excluded,
		"alerts_sent", summary.AlertsSent,
		"on_full_leave", summary.OnLeave,
		"meeting_hours", summary.MeetingHours,
		"overridden", summary.Overridden,
		"errors", summary.Errors,
		"elapsed", summary.Elapsed,
	)

	r.publish(runID, "run_finished", summary)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// processAll fans the active roster out to the worker pool. The queue is
// closed on cancellation so workers finish their current employee and stop.
func (r *Runner) processAll(ctx context.Context, runID string, active []employee.Employee, week employee.WorkWeek, snapshot tracker.Snapshot, opts Options) []EmployeeOutcome {
	jobs := make(chan employee.Employee)
	results := make(chan EmployeeOutcome, len(active))

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for emp := range jobs {
				results <- r.processOne(ctx, runID, emp, week, snapshot, opts)
			}
		}()
	}

dispatch:
	for _, emp := range active {
		select {
		case jobs <- emp:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	outcomes := make([]EmployeeOutcome, 0, len(active))
	for out := range results {
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func (r *Runner) processOne(ctx context.Context, runID string, emp employee.Employee, week employee.WorkWeek, snapshot tracker.Snapshot, opts Options) (out EmployeeOutcome) {
	out.Employee = emp
	defer func() {
		r.publish(runID, "employee_processed", map[string]interface{}{
			"employee": out.Employee.Name,
			"status":   string(out.Result.Status),
			"sent":     out.Sent,
			"error":    out.Err,
		})
	}()

	if r.excluded.Contains(emp.Name) {
		r.logger.Info("employee excluded from alerts", "employee", emp.Name)
		out.Result = r.engine.Determine(0, 0, true)
		return out
	}

	weekly, ok := snapshot.Summary(emp.ID)
	if !ok {
		r.logger.Warn("no weekly data for employee", "employee", emp.Name, "employee_id", emp.ID)
		out.Err = employee.ErrNoWeeklyData.Error()
		return out
	}

	leaveDays, err := r.aggregator.CountLeaveDays(ctx, emp.Name, week.Start, week.End)
	if err != nil {
		// Unmatched names are already 0 inside the aggregator; only transport
		// failures land here.
		r.logger.Error("leave lookup failed", "employee", emp.Name, "error", err)
		out.Err = err.Error()
		return out
	}

	out.Result = r.engine.Determine(weekly.ActiveHours, leaveDays, false)
	out.Result = r.applyOverride(ctx, emp, out.Result, &out)

	if !out.Result.Status.AlertNeeded() {
		return out
	}

	edge, found := r.directory.Resolve(ctx, emp.Name)
	if found {
		out.Manager = edge.ManagerName
	} else {
		r.logger.Warn("no manager found for employee, alert goes without manager cc", "employee", emp.Name)
	}

	if opts.Preview || !r.alertsOn {
		r.logger.Info("alert suppressed (preview or alerts disabled)",
			"employee", emp.Name, "shortfall_minutes", out.Result.ShortfallMinutes)
		return out
	}

	a := r.buildAlert(emp, week, weekly, out.Result, edge)
	if err := r.sender.Send(ctx, a); err != nil {
		r.logger.Error("alert dispatch failed", "employee", emp.Name, "error", err)
		out.Err = err.Error()
		return out
	}
	out.Sent = true
	r.logger.Info("alert sent",
		"employee", emp.Name,
		"actual_hours", out.Result.ActualHours,
		"required_hours", out.Result.RequiredHours,
		"shortfall_minutes", out.Result.ShortfallMinutes,
		"manager_cc", edge.ManagerEmail,
	)
	return out
}

// applyOverride runs the optional hook and enforces its one-way contract.
func (r *Runner) applyOverride(ctx context.Context, emp employee.Employee, result domaincompliance.Result, out *EmployeeOutcome) domaincompliance.Result {
	if r.override == nil || result.Status != domaincompliance.StatusAlertRequired {
		return result
	}
	suppress, rationale := r.override.Review(ctx, emp, result)
	if !suppress {
		return result
	}
	r.logger.Info("alert suppressed by override hook", "employee", emp.Name, "rationale", rationale)
	out.overridden = true
	result.Status = domaincompliance.StatusMeetingRequirements
	result.Shortfall = 0
	result.ShortfallMinutes = 0
	return result
}

func (r *Runner) buildAlert(emp employee.Employee, week employee.WorkWeek, weekly tracker.WeeklySummary, result domaincompliance.Result, edge manager.Edge) alert.Alert {
	return alert.Alert{
		ToEmail:          emp.Email,
		CCEmails:         BuildCCList(r.ccEmails, r.hrCC, edge.ManagerEmail),
		EmployeeName:     emp.Name,
		WeekStart:        week.Start.Format("2006-01-02"),
		WeekEnd:          week.End.Format("2006-01-02"),
		ActualHours:      round2(result.ActualHours),
		OriginalHours:    round2(weekly.TotalHours),
		IdleHours:        round2(weekly.IdleHours),
		RequiredHours:    round2(result.RequiredHours),
		AcceptableHours:  round2(result.AcceptableHours),
		Shortfall:        round2(result.Shortfall),
		ShortfallMinutes: result.ShortfallMinutes,
		LeaveDays:        result.LeaveDays,
		DaysWorked:       compliance.WorkDaysPerWeek - result.LeaveDays,
	}
}

// publish fans one progress event out to the run's own topic and the global
// "runs" stream.
func (r *Runner) publish(runID, name string, data interface{}) {
	if r.progress == nil {
		return
	}
	r.progress.Publish(runID, name, data)
	r.progress.Publish("runs", name, data)
}

// BuildCCList merges the configured CCs, the constant HR address and the
// manager's address, preserving order and dropping duplicates and blanks.
func BuildCCList(configured []string, hrCC, managerEmail string) []string {
	seen := make(map[string]struct{})
	var cc []string
	add := func(email string) {
		if email == "" {
			return
		}
		if _, dup := seen[email]; dup {
			return
		}
		seen[email] = struct{}{}
		cc = append(cc, email)
	}
	for _, email := range configured {
		add(email)
	}
	add(hrCC)
	add(managerEmail)
	return cc
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
