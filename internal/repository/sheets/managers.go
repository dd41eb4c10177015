package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/manager"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/reconcile"
)

// The directory refreshes at most once per TTL; HR edits land within minutes
// without hammering the sheet on every employee lookup.
const directoryCacheTTL = 5 * time.Minute

// mappingTable is one parsed snapshot of the manager sheet.
type mappingTable struct {
	managerByKey   map[string]string // employee name or email -> manager name
	emailByName    map[string]string // employee name -> employee email
	emailByManager map[string]string // manager name -> manager email
	keys           []string          // employee-name keys, for reconciliation
}

// ManagerDirectory reads the employee-to-manager sheet over public CSV and
// resolves raw roster names against it. It implements manager.Directory.
type ManagerDirectory struct {
	spreadsheetID string
	sheetName     string
	baseURL       string
	httpClient    *http.Client
	reconciler    *reconcile.Reconciler
	now           func() time.Time
	logger        *slog.Logger

	// Static fallbacks used when the sheet returns nothing at all. Optional.
	fallbackManagers map[string]string
	fallbackEmails   map[string]string

	mu        sync.RWMutex
	table     *mappingTable
	refreshed time.Time
}

// ManagerDirectoryConfig configures a ManagerDirectory. SheetName defaults to
// Sheet1.
type ManagerDirectoryConfig struct {
	SpreadsheetID    string
	SheetName        string
	Timeout          time.Duration
	FallbackManagers map[string]string
	FallbackEmails   map[string]string
	Logger           *slog.Logger
}

func NewManagerDirectory(cfg ManagerDirectoryConfig) *ManagerDirectory {
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &ManagerDirectory{
		spreadsheetID:    extractSpreadsheetID(cfg.SpreadsheetID),
		sheetName:        cfg.SheetName,
		baseURL:          "https://docs.google.com",
		httpClient:       &http.Client{Timeout: cfg.Timeout},
		reconciler:       reconcile.NewReconciler(cfg.Logger),
		now:              time.Now,
		logger:           cfg.Logger,
		fallbackManagers: cfg.FallbackManagers,
		fallbackEmails:   cfg.FallbackEmails,
	}
}

// Refresh re-fetches the sheet when the cached snapshot is older than the TTL,
// or unconditionally when force is set. A fetch failure keeps the previous
// snapshot in place.
func (d *ManagerDirectory) Refresh(ctx context.Context, force bool) error {
	d.mu.RLock()
	fresh := d.table != nil && d.now().Sub(d.refreshed) < directoryCacheTTL
	d.mu.RUnlock()
	if fresh && !force {
		return nil
	}

	rows, err := d.fetchRows(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", manager.ErrMappingUnavailable, err)
	}

	table := parseMappingRows(rows, d.logger)
	if len(table.managerByKey) == 0 && len(d.fallbackManagers) > 0 {
		d.logger.Warn("manager sheet empty, using static fallback mappings",
			"fallback_entries", len(d.fallbackManagers))
		table = fallbackTable(d.fallbackManagers, d.fallbackEmails)
	}

	d.mu.Lock()
	d.table = table
	d.refreshed = d.now()
	d.mu.Unlock()

	d.logger.Info("manager directory refreshed",
		"mappings", len(table.managerByKey), "manager_emails", len(table.emailByManager))
	return nil
}

// Resolve finds the manager edge for a raw employee name. The name is first
// reconciled against the sheet's canonical keys; a miss is a normal outcome.
func (d *ManagerDirectory) Resolve(ctx context.Context, employeeName string) (manager.Edge, bool) {
	table := d.snapshot(ctx)
	if table == nil {
		return manager.Edge{}, false
	}

	key := employeeName
	managerName, ok := table.managerByKey[key]
	if !ok {
		key = d.reconciler.Resolve(employeeName, table.keys)
		managerName, ok = table.managerByKey[key]
	}
	if !ok || managerName == "" {
		return manager.Edge{}, false
	}

	return manager.Edge{
		EmployeeKey:   key,
		EmployeeEmail: table.emailByName[key],
		ManagerName:   managerName,
		ManagerEmail:  managerEmail(table, managerName),
	}, true
}

// Keys lists the canonical employee names known to the directory.
func (d *ManagerDirectory) Keys(ctx context.Context) []string {
	table := d.snapshot(ctx)
	if table == nil {
		return nil
	}
	return append([]string(nil), table.keys...)
}

// Summaries groups the directory by manager for reporting endpoints.
func (d *ManagerDirectory) Summaries(ctx context.Context) []manager.Summary {
	table := d.snapshot(ctx)
	if table == nil {
		return nil
	}

	teams := make(map[string][]string)
	for _, key := range table.keys {
		mgr := table.managerByKey[key]
		teams[mgr] = append(teams[mgr], key)
	}

	summaries := make([]manager.Summary, 0, len(teams))
	for mgr, team := range teams {
		sort.Strings(team)
		summaries = append(summaries, manager.Summary{
			ManagerName:  mgr,
			ManagerEmail: managerEmail(table, mgr),
			TeamSize:     len(team),
			Employees:    team,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ManagerName < summaries[j].ManagerName
	})
	return summaries
}

// snapshot returns the cached table, refreshing lazily when empty or stale.
func (d *ManagerDirectory) snapshot(ctx context.Context) *mappingTable {
	d.mu.RLock()
	table := d.table
	fresh := table != nil && d.now().Sub(d.refreshed) < directoryCacheTTL
	d.mu.RUnlock()

	if !fresh {
		if err := d.Refresh(ctx, false); err != nil && table == nil {
			d.logger.Error("manager directory unavailable", "error", err)
			return nil
		}
		d.mu.RLock()
		table = d.table
		d.mu.RUnlock()
	}
	return table
}

func (d *ManagerDirectory) fetchRows(ctx context.Context) ([][]string, error) {
	endpoints := []string{
		fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s",
			d.baseURL, d.spreadsheetID, d.sheetName),
		fmt.Sprintf("%s/spreadsheets/d/%s/export?format=csv", d.baseURL, d.spreadsheetID),
	}

	var lastErr error
	for _, endpoint := range endpoints {
		rows, err := d.fetchOnce(ctx, endpoint)
		if err != nil {
			lastErr = err
			continue
		}
		if len(rows) > 1 {
			d.logger.Debug("manager sheet fetched", "rows", len(rows))
			return rows, nil
		}
		lastErr = fmt.Errorf("manager sheet: no data rows")
	}
	return nil, lastErr
}

func (d *ManagerDirectory) fetchOnce(ctx context.Context, endpoint string) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	req.Header.Set("Pragma", "no-cache")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("manager sheet: status %d", resp.StatusCode)
	}
	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing manager sheet: %w", err)
	}
	return rows, nil
}

// parseMappingRows turns the raw CSV into lookup maps. Columns are located by
// header text first; when headers are unrecognizable but the sheet is wide
// enough, the known positional layout is assumed.
func parseMappingRows(rows [][]string, logger *slog.Logger) *mappingTable {
	table := &mappingTable{
		managerByKey:   make(map[string]string),
		emailByName:    make(map[string]string),
		emailByManager: make(map[string]string),
	}
	if len(rows) < 2 {
		return table
	}

	empCol, empEmailCol, mgrCol, mgrEmailCol := locateColumns(rows[0])
	if empCol < 0 || mgrCol < 0 {
		logger.Error("manager sheet: employee and manager columns not found",
			"headers", rows[0])
		return table
	}

	for _, row := range rows[1:] {
		name := cellAt(row, empCol)
		mgr := cellAt(row, mgrCol)
		if name == "" || mgr == "" {
			continue
		}
		table.managerByKey[name] = mgr
		table.keys = append(table.keys, name)

		if email := cellAt(row, empEmailCol); email != "" {
			table.emailByName[name] = email
			table.managerByKey[email] = mgr
		}
		if email := cellAt(row, mgrEmailCol); strings.Contains(email, "@") {
			table.emailByManager[mgr] = email
		}
	}
	return table
}

// locateColumns matches the expected layout: Name, Email ID, Reporting
// Manager, Manager Mail ID. Returns -1 for columns it cannot place.
func locateColumns(header []string) (emp, empEmail, mgr, mgrEmail int) {
	emp, empEmail, mgr, mgrEmail = -1, -1, -1, -1
	for i, h := range header {
		clean := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "")
		lower := strings.ToLower(h)
		switch {
		case clean == "name" || strings.Contains(lower, "employee"):
			emp = i
		case strings.Contains(lower, "manager") && strings.Contains(lower, "mail"):
			mgrEmail = i
		case strings.Contains(lower, "reporting") || clean == "reportingmanager":
			mgr = i
		case clean == "emailid" || strings.Contains(lower, "email"):
			empEmail = i
		}
	}
	if len(header) >= 5 && (emp < 0 || mgr < 0) {
		// Known sheet layout with a blank spacer column at index 1.
		emp, empEmail, mgr, mgrEmail = 0, 2, 3, 4
	}
	return emp, empEmail, mgr, mgrEmail
}

func fallbackTable(managers, emails map[string]string) *mappingTable {
	table := &mappingTable{
		managerByKey:   make(map[string]string, len(managers)),
		emailByName:    make(map[string]string),
		emailByManager: make(map[string]string, len(emails)),
	}
	for name, mgr := range managers {
		table.managerByKey[name] = mgr
		table.keys = append(table.keys, name)
	}
	for mgr, email := range emails {
		table.emailByManager[mgr] = email
	}
	sort.Strings(table.keys)
	return table
}

func managerEmail(table *mappingTable, managerName string) string {
	if email, ok := table.emailByManager[managerName]; ok {
		return email
	}
	for name, email := range table.emailByManager {
		if strings.EqualFold(name, managerName) {
			return email
		}
	}
	return ""
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
