package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/leave"
)

const leaveCSV = "Name,1,2,3\nKartik Jain,,CL,\nPriya Sharma,SL,,Half day\n"

func TestMonthTable_FetchesAndParsesCSV(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(leaveCSV))
	}))
	defer srv.Close()

	s := NewLeaveSheet(LeaveSheetConfig{SheetID: "abc123", PublishedCSVURL: srv.URL + "/pub?output=csv"})
	table, err := s.MonthTable(context.Background(), time.Date(2025, time.September, 10, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, table, 3)
	assert.Equal(t, []string{"Name", "1", "2", "3"}, table[0])
	assert.Equal(t, "Kartik Jain", table[1][0])
	assert.Equal(t, "CL", table[1][2])
	assert.Equal(t, 1, calls)
}

func TestMonthTable_CachesWithinTTL(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(leaveCSV))
	}))
	defer srv.Close()

	s := NewLeaveSheet(LeaveSheetConfig{SheetID: "abc123", PublishedCSVURL: srv.URL + "/pub?output=csv"})
	month := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.MonthTable(context.Background(), month)
	require.NoError(t, err)
	_, err = s.MonthTable(context.Background(), month)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestMonthTable_RefetchesAfterTTL(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(leaveCSV))
	}))
	defer srv.Close()

	s := NewLeaveSheet(LeaveSheetConfig{SheetID: "abc123", PublishedCSVURL: srv.URL + "/pub?output=csv"})
	current := time.Date(2025, time.September, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	_, err := s.MonthTable(context.Background(), current)
	require.NoError(t, err)
	current = current.Add(tableCacheTTL + time.Second)
	_, err = s.MonthTable(context.Background(), current)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestMonthTable_FallsBackToGvizTabLabels(t *testing.T) {
	var labels []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		label, _ := url.QueryUnescape(r.URL.Query().Get("sheet"))
		labels = append(labels, label)
		if label != "September 2025" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(leaveCSV))
	}))
	defer srv.Close()

	s := NewLeaveSheet(LeaveSheetConfig{SheetID: "abc123"})
	s.baseURL = srv.URL

	table, err := s.MonthTable(context.Background(), time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Len(t, table, 3)
	// Short label first, long label last.
	assert.Equal(t, []string{"Sep 25", "September 25", "September 2025"}, labels)
}

func TestMonthTable_AllEndpointsFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewLeaveSheet(LeaveSheetConfig{SheetID: "abc123"})
	s.baseURL = srv.URL

	_, err := s.MonthTable(context.Background(), time.Now())

	require.ErrorIs(t, err, leave.ErrSheetUnavailable)
}

func TestMonthTable_HeaderOnlySheetIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Name,1,2,3\n"))
	}))
	defer srv.Close()

	s := NewLeaveSheet(LeaveSheetConfig{SheetID: "abc123", PublishedCSVURL: srv.URL + "/pub?output=csv"})

	_, err := s.MonthTable(context.Background(), time.Now())

	require.ErrorIs(t, err, leave.ErrSheetUnavailable)
}

func TestExtractSpreadsheetID(t *testing.T) {
	assert.Equal(t, "abc-123_XYZ", extractSpreadsheetID("https://docs.google.com/spreadsheets/d/abc-123_XYZ/edit#gid=0"))
	assert.Equal(t, "bareid", extractSpreadsheetID("bareid"))
}

func TestExtractGID(t *testing.T) {
	assert.Equal(t, "1704890600", extractGID("https://docs.google.com/spreadsheets/d/x/edit#gid=1704890600"))
	assert.Empty(t, extractGID("https://docs.google.com/spreadsheets/d/x/edit"))
}
