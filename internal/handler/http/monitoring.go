package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/manager"
	"github.com/rapidinnovation/hours-monitor-go/internal/handler/http/response"
	"github.com/rapidinnovation/hours-monitor-go/internal/pkg/sse"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/workflow"
)

type MonitoringHandler interface {
	// GetStatus returns the current window and the last run outcome
	GetStatus(w http.ResponseWriter, r *http.Request)
	// GetWeek returns the monitoring window boundaries
	GetWeek(w http.ResponseWriter, r *http.Request)
	// GetPreview classifies the roster without sending anything
	GetPreview(w http.ResponseWriter, r *http.Request)
	// GetStatistics returns roster-wide histograms
	GetStatistics(w http.ResponseWriter, r *http.Request)
	// StartRun triggers an asynchronous monitoring run
	StartRun(w http.ResponseWriter, r *http.Request)
	// StreamRunEvents streams one run's progress over SSE
	StreamRunEvents(w http.ResponseWriter, r *http.Request)
	// GetManagers returns the manager directory grouped by manager
	GetManagers(w http.ResponseWriter, r *http.Request)
}

type monitoringHandlerImpl struct {
	runner    *workflow.Runner
	directory manager.Directory
	hub       *sse.Hub
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
	last    *workflow.Summary
}

func NewMonitoringHandler(runner *workflow.Runner, directory manager.Directory, hub *sse.Hub, logger *slog.Logger) MonitoringHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &monitoringHandlerImpl{
		runner:    runner,
		directory: directory,
		hub:       hub,
		logger:    logger,
	}
}

// GetStatus handles GET /status
func (h *monitoringHandlerImpl) GetStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	running := h.running
	last := h.last
	h.mu.Unlock()

	response.Success(w, map[string]interface{}{
		"week":               h.runner.Week(),
		"should_alert_today": h.runner.ShouldAlertToday(),
		"run_in_progress":    running,
		"last_run":           last,
	})
}

// GetWeek handles GET /week
func (h *monitoringHandlerImpl) GetWeek(w http.ResponseWriter, r *http.Request) {
	week := h.runner.Week()
	response.Success(w, map[string]interface{}{
		"start": week.Start.Format("2006-01-02"),
		"end":   week.End.Format("2006-01-02"),
	})
}

// GetPreview handles GET /preview
func (h *monitoringHandlerImpl) GetPreview(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.runner.PreviewAlerts(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"alerts_needed": len(alerts),
		"alerts":        alerts,
	})
}

// GetStatistics handles GET /statistics
func (h *monitoringHandlerImpl) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.runner.Statistics(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, stats)
}

type startRunRequest struct {
	Preview bool `json:"preview"`
	Force   bool `json:"force"`
}

// StartRun handles POST /runs. The run executes in the background; progress
// is available on /runs/{id}/events.
func (h *monitoringHandlerImpl) StartRun(w http.ResponseWriter, r *http.Request) {
	var req startRunRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}
	}

	if !req.Preview && !req.Force && !h.runner.ShouldAlertToday() {
		response.Conflict(w, "Alerts only go out on Monday or Tuesday; set force to override")
		return
	}

	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		response.Conflict(w, "A run is already in progress")
		return
	}
	h.running = true
	h.mu.Unlock()

	runID := uuid.NewString()
	go h.executeRun(runID, req)

	response.Accepted(w, "Run started", map[string]string{
		"run_id": runID,
		"events": fmt.Sprintf("/api/v1/runs/%s/events", runID),
	})
}

// executeRun owns the background run; it is detached from the request context
// so a closed browser tab does not abort a half-finished sweep.
func (h *monitoringHandlerImpl) executeRun(runID string, req startRunRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	summary, err := h.runner.Run(ctx, workflow.Options{
		Preview: req.Preview,
		Force:   req.Force,
		RunID:   runID,
	})
	if err != nil {
		h.logger.Error("background run failed", "run_id", runID, "error", err)
	}

	h.mu.Lock()
	h.running = false
	h.last = &summary
	h.mu.Unlock()
}

// StreamRunEvents handles GET /runs/{id}/events. The special id "all"
// subscribes to every run.
func (h *monitoringHandlerImpl) StreamRunEvents(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "id")
	if topic == "all" {
		topic = "runs"
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cleanup := h.hub.Subscribe(topic)
	defer cleanup()

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case event := <-events:
			payload, err := json.Marshal(event.Data)
			if err != nil {
				h.logger.Error("failed to encode sse event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, payload)
			flusher.Flush()

			if event.Event == "run_finished" && topic != "runs" {
				return
			}
		}
	}
}

// GetManagers handles GET /managers. A failed refresh degrades to the cached
// snapshot, the same way the runner does mid-sweep.
func (h *monitoringHandlerImpl) GetManagers(w http.ResponseWriter, r *http.Request) {
	if err := h.directory.Refresh(r.Context(), false); err != nil {
		h.logger.Warn("manager directory refresh failed, serving cached data", "error", err)
	}

	response.Success(w, h.directory.Summaries(r.Context()))
}
