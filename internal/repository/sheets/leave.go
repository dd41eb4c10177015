package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/leave"
)

// Monthly grids are cached briefly so one monitoring run fetches each month
// once instead of once per employee. The sheet changes on a human timescale;
// five minutes is well inside acceptable staleness.
const tableCacheTTL = 5 * time.Minute

var (
	spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9\-_]+)`)
	gidPattern           = regexp.MustCompile(`[#&]gid=(\d+)`)
)

// LeaveSheet reads monthly leave grids from a Google Sheet over its public
// CSV endpoints. No Sheets API credentials are involved; the sheet must be
// link-readable or published.
type LeaveSheet struct {
	spreadsheetID string
	gid           string
	publishedURL  string
	baseURL       string
	httpClient    *http.Client
	now           func() time.Time
	logger        *slog.Logger

	mu      sync.Mutex
	tables  map[string]leave.MonthTable
	fetched map[string]time.Time
}

// LeaveSheetConfig configures a LeaveSheet. SheetID may be a bare spreadsheet
// id or a full edit URL (the id and gid are extracted). PublishedCSVURL is
// optional and preferred when set; published sheets return the full column
// range reliably.
type LeaveSheetConfig struct {
	SheetID         string
	SheetURL        string
	PublishedCSVURL string
	Timeout         time.Duration
	Logger          *slog.Logger
}

func NewLeaveSheet(cfg LeaveSheetConfig) *LeaveSheet {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &LeaveSheet{
		spreadsheetID: extractSpreadsheetID(cfg.SheetID),
		gid:           extractGID(cfg.SheetURL),
		publishedURL:  cfg.PublishedCSVURL,
		baseURL:       "https://docs.google.com",
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		now:           time.Now,
		logger:        cfg.Logger,
		tables:        make(map[string]leave.MonthTable),
		fetched:       make(map[string]time.Time),
	}
}

// MonthTable returns the leave grid for the month containing the given date.
// Tab naming drifted over the sheet's history, so each label variant is tried
// in priority order before giving up.
func (s *LeaveSheet) MonthTable(ctx context.Context, month time.Time) (leave.MonthTable, error) {
	labels := leave.MonthLabels(month)
	cacheKey := month.Format("2006-01")

	s.mu.Lock()
	if table, ok := s.tables[cacheKey]; ok && s.now().Sub(s.fetched[cacheKey]) < tableCacheTTL {
		s.mu.Unlock()
		return table, nil
	}
	s.mu.Unlock()

	var lastErr error
	for _, label := range labels {
		table, err := s.fetchTable(ctx, label)
		if err != nil {
			lastErr = err
			continue
		}
		if len(table) <= 1 {
			lastErr = fmt.Errorf("sheet %q: no data rows", label)
			continue
		}

		s.logger.Info("leave table fetched", "sheet", label, "rows", len(table))
		s.mu.Lock()
		s.tables[cacheKey] = table
		s.fetched[cacheKey] = s.now()
		s.mu.Unlock()
		return table, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no month tab found for %s", cacheKey)
	}
	return nil, fmt.Errorf("%w: %v", leave.ErrSheetUnavailable, lastErr)
}

// fetchTable tries each CSV endpoint in order of data completeness: the
// published URL first, then the gid export, then the per-tab gviz query.
func (s *LeaveSheet) fetchTable(ctx context.Context, label string) (leave.MonthTable, error) {
	var lastErr error
	for _, endpoint := range s.candidateURLs(label) {
		table, err := s.fetchCSV(ctx, endpoint)
		if err != nil {
			lastErr = err
			continue
		}
		if len(table) > 0 {
			return table, nil
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no usable endpoint for sheet %q", label)
	}
	return nil, lastErr
}

func (s *LeaveSheet) candidateURLs(label string) []string {
	ts := strconv.FormatInt(s.now().UnixNano(), 10)
	var urls []string

	if s.publishedURL != "" {
		// The range parameter forces all day columns even when trailing ones
		// are empty.
		urls = append(urls,
			s.publishedURL+"&range=A:AI&ts="+ts,
			s.publishedURL+"&ts="+ts,
		)
	}
	if s.gid != "" {
		urls = append(urls, fmt.Sprintf(
			"%s/spreadsheets/d/%s/export?format=csv&gid=%s&ts=%s",
			s.baseURL, s.spreadsheetID, s.gid, ts))
	}
	urls = append(urls, fmt.Sprintf(
		"%s/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s&ts=%s",
		s.baseURL, s.spreadsheetID, url.QueryEscape(label), ts))
	return urls
}

func (s *LeaveSheet) fetchCSV(ctx context.Context, endpoint string) (leave.MonthTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building sheet request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	req.Header.Set("Pragma", "no-cache")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching sheet csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet csv: status %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1 // rows are ragged, short months especially
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing sheet csv: %w", err)
	}

	table := make(leave.MonthTable, 0, len(rows))
	for _, row := range rows {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		table = append(table, row)
	}
	return table, nil
}

func extractSpreadsheetID(idOrURL string) string {
	if strings.Contains(idOrURL, "/") {
		if m := spreadsheetIDPattern.FindStringSubmatch(idOrURL); m != nil {
			return m[1]
		}
	}
	return idOrURL
}

func extractGID(sheetURL string) string {
	if m := gidPattern.FindStringSubmatch(sheetURL); m != nil {
		return m[1]
	}
	return ""
}
