package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rapidinnovation/hours-monitor-go/internal/config"
	"github.com/rapidinnovation/hours-monitor-go/internal/pkg/cron"
	"github.com/rapidinnovation/hours-monitor-go/internal/pkg/email"
	"github.com/rapidinnovation/hours-monitor-go/internal/pkg/export"
	"github.com/rapidinnovation/hours-monitor-go/internal/repository/sheets"
	"github.com/rapidinnovation/hours-monitor-go/internal/repository/teamlogger"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/compliance"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/leaveledger"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/roster"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/workflow"
)

func main() {
	var (
		runOnce   = flag.Bool("run", false, "run the weekly check once and exit")
		schedule  = flag.Bool("schedule", false, "run continuously on the Monday 8 AM schedule")
		preview   = flag.Bool("preview", false, "classify the roster without sending any email")
		status    = flag.Bool("status", false, "print the monitoring window and configuration summary")
		force     = flag.Bool("force", false, "send alerts even outside Monday/Tuesday")
		reportOut = flag.String("report", "", "write the run summary as an xlsx workbook at this path")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(2)
	}

	logger := newLogger(cfg.App.LogLevel)
	slog.SetDefault(logger)

	runner, err := buildRunner(cfg, logger)
	if err != nil {
		logger.Error("failed to build runner", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *status:
		printStatus(cfg, runner)
	case *preview:
		if err := runPreview(ctx, runner); err != nil {
			logger.Error("preview failed", "error", err)
			os.Exit(1)
		}
	case *schedule:
		runSchedule(ctx, cfg, runner, logger)
	case *runOnce:
		switch err := runWeeklyCheck(ctx, runner, *force, *reportOut, logger); {
		case errors.Is(err, errNotAlertDay):
			os.Exit(2)
		case err != nil:
			logger.Error("run failed", "error", err)
			os.Exit(1)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func buildRunner(cfg *config.Config, logger *slog.Logger) (*workflow.Runner, error) {
	trackerClient := teamlogger.NewClient(
		cfg.TeamLogger.APIURL,
		cfg.TeamLogger.BearerToken,
		cfg.TeamLogger.Timeout,
		cfg.TeamLogger.MaxRetries,
		logger,
	)

	leaveSheet := sheets.NewLeaveSheet(sheets.LeaveSheetConfig{
		SheetID:         cfg.Sheets.LeaveSheetID,
		SheetURL:        cfg.Sheets.LeaveSheetURL,
		PublishedCSVURL: cfg.Sheets.LeavePublishedCSVURL,
		Logger:          logger,
	})

	directory := sheets.NewManagerDirectory(sheets.ManagerDirectoryConfig{
		SpreadsheetID: cfg.Sheets.ManagerSheetID,
		SheetName:     cfg.Sheets.ManagerSheetName,
		Logger:        logger,
	})

	sender, err := email.NewService(cfg.SMTP, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing email service: %w", err)
	}

	loc := cfg.Location()
	return workflow.NewRunner(workflow.RunnerParams{
		Tracker:    trackerClient,
		Aggregator: leaveledger.NewAggregator(leaveSheet, logger),
		Filter:     roster.NewFilter(leaveSheet, cfg.Alerts.DenyListEmployees, logger),
		Engine:     compliance.NewEngine(),
		Directory:  directory,
		Sender:     sender,
		Excluded:   cfg.Alerts.ExcludedEmployees,
		Workers:    cfg.App.Workers,
		AlertsOn:   cfg.Alerts.Enabled,
		CCEmails:   cfg.Alerts.CCEmails,
		HRCC:       config.ConstantHRCC,
		Now:        func() time.Time { return time.Now().In(loc) },
		Logger:     logger,
	}), nil
}

func printStatus(cfg *config.Config, runner *workflow.Runner) {
	week := runner.Week()
	fmt.Printf("Monitoring window: %s to %s\n",
		week.Start.Format("2006-01-02"), week.End.Format("2006-01-02"))
	fmt.Printf("Alert day today:   %t\n", runner.ShouldAlertToday())
	fmt.Printf("Email alerts:      %t\n", cfg.Alerts.Enabled)
	fmt.Printf("Timezone:          %s\n", cfg.App.Timezone)
	fmt.Printf("Excluded:          %s\n", strings.Join(cfg.Alerts.ExcludedEmployees, ", "))
}

func runPreview(ctx context.Context, runner *workflow.Runner) error {
	alerts, err := runner.PreviewAlerts(ctx)
	if err != nil {
		return err
	}

	week := runner.Week()
	fmt.Printf("Preview for %s to %s: %d alert(s) needed\n",
		week.Start.Format("2006-01-02"), week.End.Format("2006-01-02"), len(alerts))
	for _, out := range alerts {
		fmt.Printf("  %-28s %.2fh of %.2fh required (short %.2fh)\n",
			out.Employee.Name,
			out.Result.ActualHours,
			out.Result.RequiredHours,
			out.Result.Shortfall,
		)
	}
	return nil
}

// errNotAlertDay marks a skipped run so the caller can exit with a distinct
// code; cron wrappers treat it differently from a real failure.
var errNotAlertDay = errors.New("not an alert day")

func runWeeklyCheck(ctx context.Context, runner *workflow.Runner, force bool, reportPath string, logger *slog.Logger) error {
	if !force && !runner.ShouldAlertToday() {
		logger.Info("not an alert day; use -force to run anyway",
			"today", time.Now().Weekday().String())
		return errNotAlertDay
	}

	summary, err := runner.Run(ctx, workflow.Options{Force: force})
	if err != nil {
		return err
	}

	logger.Info("run finished",
		"run_id", summary.RunID,
		"alerts_sent", summary.AlertsSent,
		"meeting_hours", summary.MeetingHours,
		"on_full_leave", summary.OnLeave,
		"errors", summary.Errors,
	)

	if reportPath != "" {
		if err := export.WriteWeeklyReport(reportPath, summary); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		logger.Info("report written", "path", reportPath)
	}
	return nil
}

func runSchedule(ctx context.Context, cfg *config.Config, runner *workflow.Runner, logger *slog.Logger) {
	scheduler := cron.NewScheduler(cfg.Location())
	cron.NewMonitoringJobs(runner).RegisterJobs(scheduler)
	scheduler.Start()
	logger.Info("scheduler started; weekly check fires Monday 08:00",
		"timezone", cfg.App.Timezone)

	<-ctx.Done()
	logger.Info("shutting down scheduler")
	scheduler.Stop()
}
