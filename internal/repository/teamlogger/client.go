package teamlogger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/employee"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/tracker"
)

const summaryReportPath = "/api/employee_summary_report"

// Client talks to the TeamLogger summary-report API. It implements
// tracker.Provider; callers never see HTTP details.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
	now        func() time.Time
	backoff    func(attempt int) time.Duration
	logger     *slog.Logger
}

// NewClient builds a TeamLogger client. The configured URL may carry query
// parameters or a trailing slash; both are stripped so paths join cleanly.
func NewClient(rawURL, token string, timeout time.Duration, maxRetries int, logger *slog.Logger) *Client {
	base := rawURL
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, "/")

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    base,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		now:        time.Now,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<(attempt-1)) * time.Second
		},
		logger: logger,
	}
}

// Roster lists every employee present in the current monitoring window's
// summary report. Entries without an id are skipped.
func (c *Client) Roster(ctx context.Context) ([]employee.Employee, error) {
	week := employee.PreviousWorkWeek(c.now())
	entries, err := c.fetchReport(ctx, week)
	if err != nil {
		return nil, err
	}

	var roster []employee.Employee
	for _, entry := range entries {
		id := entry.ID.String()
		if id == "" {
			continue
		}
		name := entry.Title
		if name == "" {
			name = "Unknown"
		}
		roster = append(roster, employee.Employee{ID: id, Name: name, Email: entry.Email})
	}
	c.logger.Info("roster fetched from teamlogger", "employees", len(roster))
	return roster, nil
}

// WeekSnapshot fetches the summary report for one window and converts every
// entry to a WeeklySummary keyed by employee id.
func (c *Client) WeekSnapshot(ctx context.Context, week employee.WorkWeek) (tracker.Snapshot, error) {
	entries, err := c.fetchReport(ctx, week)
	if err != nil {
		return nil, err
	}

	workingDays := employee.WorkingDays(week.Start, week.End)
	snapshot := make(tracker.Snapshot, len(entries))
	for _, entry := range entries {
		id := entry.ID.String()
		if id == "" {
			continue
		}
		total := entry.totalHours()
		idle := entry.idleHours()
		snapshot[id] = tracker.WeeklySummary{
			EmployeeID:  id,
			ActiveHours: math.Max(0, total-idle),
			TotalHours:  total,
			IdleHours:   idle,
			DaysWorked:  workingDays,
		}
	}
	return snapshot, nil
}

// reportEntry is one row of the summary report. The API is loose about field
// presence: newer deployments return totalHours/idleHours directly, older ones
// only the seconds counters or the per-day totChart.
type reportEntry struct {
	ID              json.Number        `json:"id"`
	Title           string             `json:"title"`
	Email           string             `json:"email"`
	TotalHours      *float64           `json:"totalHours"`
	IdleHours       *float64           `json:"idleHours"`
	TotalSeconds    float64            `json:"totalSecondsCount"`
	InactiveSeconds float64            `json:"inactiveSecondsCount"`
	TotChart        map[string]float64 `json:"totChart"`
}

func (e reportEntry) totalHours() float64 {
	if e.TotalHours != nil && *e.TotalHours > 0 {
		return *e.TotalHours
	}
	var seconds float64
	for _, v := range e.TotChart {
		if v > 0 {
			seconds += v
		}
	}
	if seconds == 0 {
		seconds = e.TotalSeconds
	}
	return seconds / 3600
}

func (e reportEntry) idleHours() float64 {
	if e.IdleHours != nil && *e.IdleHours >= 0 {
		return *e.IdleHours
	}
	if e.InactiveSeconds > 0 {
		return e.InactiveSeconds / 3600
	}
	return 0
}

// fetchReport GETs the summary report for [week.Start, week.End], retrying
// transient failures with doubling backoff. 4xx auth failures do not retry.
func (c *Client) fetchReport(ctx context.Context, week employee.WorkWeek) ([]reportEntry, error) {
	query := url.Values{
		"startTime": {strconv.FormatInt(week.Start.UnixMilli(), 10)},
		"endTime":   {strconv.FormatInt(week.End.UnixMilli(), 10)},
	}
	endpoint := c.baseURL + summaryReportPath + "?" + query.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt)
			c.logger.Warn("retrying teamlogger request",
				"attempt", attempt, "backoff", wait, "error", lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		entries, retryable, err := c.doFetch(ctx, endpoint)
		if err == nil {
			return entries, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) doFetch(ctx context.Context, endpoint string) (entries []reportEntry, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("building teamlogger request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", tracker.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, false, fmt.Errorf("%w: status %d", tracker.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("%w: status %d", tracker.ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("%w: unexpected status %d", tracker.ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("%w: reading response: %v", tracker.ErrUnavailable, err)
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, false, fmt.Errorf("%w: decoding response: %v", tracker.ErrUnavailable, err)
	}
	return entries, false, nil
}
