package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rapidinnovation/hours-monitor-go/internal/config"
	appHTTP "github.com/rapidinnovation/hours-monitor-go/internal/handler/http"
	"github.com/rapidinnovation/hours-monitor-go/internal/pkg/cron"
	"github.com/rapidinnovation/hours-monitor-go/internal/pkg/email"
	"github.com/rapidinnovation/hours-monitor-go/internal/pkg/sse"
	"github.com/rapidinnovation/hours-monitor-go/internal/repository/sheets"
	"github.com/rapidinnovation/hours-monitor-go/internal/repository/teamlogger"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/compliance"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/leaveledger"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/roster"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/workflow"
)

func main() {
	withScheduler := flag.Bool("scheduler", true, "also run the Monday 8 AM weekly check")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(2)
	}

	logger := newLogger(cfg.App.LogLevel)
	slog.SetDefault(logger)

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
		logger.Error("failed to initialize email service", "error", err)
		os.Exit(1)
	}

	hub := sse.NewHub()
	loc := cfg.Location()
	runner := workflow.NewRunner(workflow.RunnerParams{
		Tracker:    trackerClient,
		Aggregator: leaveledger.NewAggregator(leaveSheet, logger),
		Filter:     roster.NewFilter(leaveSheet, cfg.Alerts.DenyListEmployees, logger),
		Engine:     compliance.NewEngine(),
		Directory:  directory,
		Sender:     sender,
		Excluded:   cfg.Alerts.ExcludedEmployees,
		Progress:   hub,
		Workers:    cfg.App.Workers,
		AlertsOn:   cfg.Alerts.Enabled,
		CCEmails:   cfg.Alerts.CCEmails,
		HRCC:       config.ConstantHRCC,
		Now:        func() time.Time { return time.Now().In(loc) },
		Logger:     logger,
	})

	monitoringHandler := appHTTP.NewMonitoringHandler(runner, directory, hub, logger)
	router := appHTTP.NewRouter(cfg.App.Env, monitoringHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var scheduler *cron.Scheduler
	if *withScheduler {
		scheduler = cron.NewScheduler(loc)
		cron.NewMonitoringJobs(runner).RegisterJobs(scheduler)
		scheduler.Start()
		logger.Info("scheduler started; weekly check fires Monday 08:00",
			"timezone", cfg.App.Timezone)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("server listening", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
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
