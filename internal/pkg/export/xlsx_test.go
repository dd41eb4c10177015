package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/compliance"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/employee"
	"github.com/rapidinnovation/hours-monitor-go/internal/service/workflow"
)

func TestWriteWeeklyReport(t *testing.T) {
	summary := workflow.Summary{
		RunID: "run-1",
		Week: employee.WorkWeek{
			Start: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, time.September, 7, 23, 59, 59, 0, time.UTC),
		},
		Total:      2,
		AlertsSent: 1,
		Rows: []workflow.EmployeeOutcome{
			{
				Employee: employee.Employee{ID: "1", Name: "Kartik Jain", Email: "kartik@example.com"},
				Result:   compliance.Result{Status: compliance.StatusMeetingRequirements, ActualHours: 41, RequiredHours: 40},
			},
			{
				Employee: employee.Employee{ID: "2", Name: "Gokul Jagannath", Email: "gokul@example.com"},
				Result: compliance.Result{
					Status: compliance.StatusAlertRequired, ActualHours: 30,
					RequiredHours: 40, AcceptableHours: 37, Shortfall: 10, ShortfallMinutes: 600,
				},
				Manager: "Kartik Jain",
				Sent:    true,
			},
		},
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteWeeklyReport(path, summary))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	runID, err := f.GetCellValue(reportSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)

	// Header sits two rows below the metadata block.
	name, err := f.GetCellValue(reportSheet, "A10")
	require.NoError(t, err)
	assert.Equal(t, "Employee", name)

	firstRow, err := f.GetCellValue(reportSheet, "A11")
	require.NoError(t, err)
	assert.Equal(t, "Kartik Jain", firstRow)

	status, err := f.GetCellValue(reportSheet, "C12")
	require.NoError(t, err)
	assert.Equal(t, "alert_required", status)
}
