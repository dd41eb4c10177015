package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/rapidinnovation/hours-monitor-go/internal/service/workflow"
)

// The weekly sweep fires Monday 08:00 in the scheduler's timezone, checking
// the week that just ended.
const (
	executionWeekday = time.Monday
	executionHour    = 8
)

type MonitoringJobs struct {
	runner *workflow.Runner
}

func NewMonitoringJobs(runner *workflow.Runner) *MonitoringJobs {
	return &MonitoringJobs{runner: runner}
}

func (j *MonitoringJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddWeeklyJob("weekly_hours_check", executionWeekday, executionHour, j.RunWeeklyCheck)
}

func (j *MonitoringJobs) RunWeeklyCheck(ctx context.Context) error {
	slog.Info("Cron: starting weekly hours check")

	summary, err := j.runner.Run(ctx, workflow.Options{})
	if err != nil {
		return err
	}

	slog.Info("Cron: weekly hours check finished",
		"run_id", summary.RunID,
		"alerts_sent", summary.AlertsSent,
		"errors", summary.Errors,
	)
	return nil
}
