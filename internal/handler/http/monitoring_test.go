package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/alert"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/employee"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/leave"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/manager"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/tracker"
	"github.com/rapidinnovation/hours-monitor-go/internal/pkg/sse"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/compliance"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/leaveledger"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/roster"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/workflow"
)

type stubTracker struct{}

func (stubTracker) Roster(context.Context) ([]employee.Employee, error) {
	return []employee.Employee{
		{ID: "e1", Name: "Kartik Jain", Email: "kartik@example.com"},
		{ID: "e2", Name: "Gokul Jagannath", Email: "gokul@example.com"},
	}, nil
}

func (stubTracker) WeekSnapshot(context.Context, employee.WorkWeek) (tracker.Snapshot, error) {
	return tracker.Snapshot{
		"e1": {EmployeeID: "e1", ActiveHours: 41, TotalHours: 42, IdleHours: 1},
		"e2": {EmployeeID: "e2", ActiveHours: 30, TotalHours: 31, IdleHours: 1},
	}, nil
}

type stubLeaveSource struct{}

func (stubLeaveSource) MonthTable(context.Context, time.Time) (leave.MonthTable, error) {
	return leave.MonthTable{
		{"Name", "1", "2", "3"},
		{"Kartik Jain", "", "", ""},
		{"Gokul Jagannath", "", "", ""},
	}, nil
}

type stubDirectory struct{}

func (stubDirectory) Resolve(context.Context, string) (manager.Edge, bool) {
	return manager.Edge{ManagerName: "Kartik Jain", ManagerEmail: "kartik@example.com"}, true
}
func (stubDirectory) Keys(context.Context) []string       { return nil }
func (stubDirectory) Refresh(context.Context, bool) error { return nil }
func (stubDirectory) Summaries(context.Context) []manager.Summary {
	return []manager.Summary{{ManagerName: "Kartik Jain", TeamSize: 2}}
}

type stubSender struct{}

func (stubSender) Send(context.Context, alert.Alert) error { return nil }

type refreshFailDirectory struct{ stubDirectory }

func (refreshFailDirectory) Refresh(context.Context, bool) error {
	return manager.ErrMappingUnavailable
}

func newTestRouter(t *testing.T) http.Handler {
	return newTestRouterWithDirectory(t, stubDirectory{})
}

func newTestRouterWithDirectory(t *testing.T, directory manager.Directory) http.Handler {
	t.Helper()

	runner := workflow.NewRunner(workflow.RunnerParams{
		Tracker:    stubTracker{},
		Aggregator: leaveledger.NewAggregator(stubLeaveSource{}, nil),
		Filter:     roster.NewFilter(stubLeaveSource{}, nil, nil),
		Engine:     compliance.NewEngine(),
		Directory:  directory,
		Sender:     stubSender{},
		AlertsOn:   true,
		Now: func() time.Time {
			// Wednesday, not an alert day.
			return time.Date(2025, time.September, 10, 9, 0, 0, 0, time.UTC)
		},
	})

	handler := NewMonitoringHandler(runner, directory, sse.NewHub(), nil)
	return NewRouter("test", handler)
}

func TestGetWeek(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/week", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "2025-09-01", body.Data.Start)
	assert.Equal(t, "2025-09-07", body.Data.End)
}

func TestGetStatus(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			ShouldAlertToday bool `json:"should_alert_today"`
			RunInProgress    bool `json:"run_in_progress"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Data.ShouldAlertToday)
	assert.False(t, body.Data.RunInProgress)
}

func TestGetPreview(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/preview", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			AlertsNeeded int `json:"alerts_needed"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.AlertsNeeded) // Gokul at 30h
}

func TestGetStatistics(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/statistics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data workflow.Statistics `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.Employees)
	assert.Equal(t, 1, body.Data.AlertsNeeded)
}

func TestStartRun_GatedOffAlertDays(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", strings.NewReader(`{}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStartRun_PreviewAccepted(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", strings.NewReader(`{"preview": true}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var body struct {
		Data struct {
			RunID string `json:"run_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.RunID)
}

func TestGetManagers(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/managers", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []struct {
			ManagerName string `json:"ManagerName"`
			TeamSize    int    `json:"TeamSize"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, 2, body.Data[0].TeamSize)
}

func TestGetManagers_ServesCachedDataWhenRefreshFails(t *testing.T) {
	router := newTestRouterWithDirectory(t, refreshFailDirectory{})
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/managers", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []struct {
			ManagerName string `json:"ManagerName"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Kartik Jain", body.Data[0].ManagerName)
}
