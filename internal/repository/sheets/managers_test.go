package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const managerCSV = "Name,,Email ID,Reporting Manager,Manager Mail ID\n" +
	"Kunwar Siddharth Thakur,,siddharth@example.com,Kartik Jain,kartik@example.com\n" +
	"Gokul Jagannath,,gokul@example.com,Kartik Jain,kartik@example.com\n" +
	"Priya Sharma,,priya@example.com,Anita Rao,anita@example.com\n"

func newTestDirectory(t *testing.T, handler http.HandlerFunc) (*ManagerDirectory, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	d := NewManagerDirectory(ManagerDirectoryConfig{SpreadsheetID: "sheet123"})
	d.baseURL = srv.URL
	return d, srv
}

func TestResolve_ExactName(t *testing.T) {
	d, _ := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(managerCSV))
	})

	edge, ok := d.Resolve(context.Background(), "Gokul Jagannath")

	require.True(t, ok)
	assert.Equal(t, "Kartik Jain", edge.ManagerName)
	assert.Equal(t, "kartik@example.com", edge.ManagerEmail)
	assert.Equal(t, "gokul@example.com", edge.EmployeeEmail)
}

func TestResolve_ReconcilesRosterSpelling(t *testing.T) {
	d, _ := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(managerCSV))
	})

	// Roster drops the first name; the directory key carries it.
	edge, ok := d.Resolve(context.Background(), "Siddharth Thakur")

	require.True(t, ok)
	assert.Equal(t, "Kunwar Siddharth Thakur", edge.EmployeeKey)
	assert.Equal(t, "Kartik Jain", edge.ManagerName)
}

func TestResolve_ByEmployeeEmail(t *testing.T) {
	d, _ := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(managerCSV))
	})

	edge, ok := d.Resolve(context.Background(), "priya@example.com")

	require.True(t, ok)
	assert.Equal(t, "Anita Rao", edge.ManagerName)
}

func TestResolve_UnknownNameMisses(t *testing.T) {
	d, _ := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(managerCSV))
	})

	_, ok := d.Resolve(context.Background(), "Complete Stranger")

	assert.False(t, ok)
}

func TestRefresh_CachesWithinTTL(t *testing.T) {
	var calls int
	d, _ := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(managerCSV))
	})
	current := time.Date(2025, time.September, 8, 8, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return current }

	require.NoError(t, d.Refresh(context.Background(), false))
	require.NoError(t, d.Refresh(context.Background(), false))
	assert.Equal(t, 1, calls)

	current = current.Add(directoryCacheTTL + time.Minute)
	require.NoError(t, d.Refresh(context.Background(), false))
	assert.Equal(t, 2, calls)
}

func TestRefresh_ForceBypassesTTL(t *testing.T) {
	var calls int
	d, _ := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(managerCSV))
	})

	require.NoError(t, d.Refresh(context.Background(), false))
	require.NoError(t, d.Refresh(context.Background(), true))
	assert.Equal(t, 2, calls)
}

func TestRefresh_FailureKeepsPreviousSnapshot(t *testing.T) {
	var fail bool
	d, _ := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(managerCSV))
	})

	require.NoError(t, d.Refresh(context.Background(), false))
	fail = true
	require.Error(t, d.Refresh(context.Background(), true))

	_, ok := d.Resolve(context.Background(), "Gokul Jagannath")
	assert.True(t, ok)
}

func TestRefresh_EmptySheetFallsBackToStaticTables(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Name,,Email ID,Reporting Manager,Manager Mail ID\n,,,,\n"))
	}))
	t.Cleanup(srv.Close)

	d := NewManagerDirectory(ManagerDirectoryConfig{
		SpreadsheetID:    "sheet123",
		FallbackManagers: map[string]string{"Gokul Jagannath": "Kartik Jain"},
		FallbackEmails:   map[string]string{"Kartik Jain": "kartik@example.com"},
	})
	d.baseURL = srv.URL

	edge, ok := d.Resolve(context.Background(), "Gokul Jagannath")

	require.True(t, ok)
	assert.Equal(t, "Kartik Jain", edge.ManagerName)
	assert.Equal(t, "kartik@example.com", edge.ManagerEmail)
}

func TestSummaries_GroupsByManager(t *testing.T) {
	d, _ := newTestDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(managerCSV))
	})

	summaries := d.Summaries(context.Background())

	require.Len(t, summaries, 2)
	assert.Equal(t, "Anita Rao", summaries[0].ManagerName)
	assert.Equal(t, 1, summaries[0].TeamSize)
	assert.Equal(t, "Kartik Jain", summaries[1].ManagerName)
	assert.Equal(t, 2, summaries[1].TeamSize)
	assert.Equal(t, []string{"Gokul Jagannath", "Kunwar Siddharth Thakur"}, summaries[1].Employees)
}

func TestLocateColumns_HeaderDriven(t *testing.T) {
	emp, empEmail, mgr, mgrEmail := locateColumns([]string{"Employee Name", "Email", "Reporting Manager", "Manager Mail ID"})
	assert.Equal(t, 0, emp)
	assert.Equal(t, 1, empEmail)
	assert.Equal(t, 2, mgr)
	assert.Equal(t, 3, mgrEmail)
}

func TestLocateColumns_PositionalFallback(t *testing.T) {
	emp, empEmail, mgr, mgrEmail := locateColumns([]string{"a", "b", "c", "d", "e"})
	assert.Equal(t, 0, emp)
	assert.Equal(t, 2, empEmail)
	assert.Equal(t, 3, mgr)
	assert.Equal(t, 4, mgrEmail)
}
