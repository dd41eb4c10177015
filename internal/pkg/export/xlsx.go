package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rapidinnovation/hours-monitor-go/internal/service/workflow"
)

const reportSheet = "Weekly Report"

var reportHeader = []string{
	"Employee", "Email", "Status", "Actual Hours", "Required Hours",
	"Acceptable Hours", "Leave Days", "Shortfall (h)", "Shortfall (min)",
	"Manager", "Alert Sent", "Error",
}

// WriteWeeklyReport renders one run summary as an xlsx workbook at path. Used
// by HR to archive the weekly sweep; the row order follows the run output.
func WriteWeeklyReport(path string, summary workflow.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reportSheet)
	if err != nil {
		return fmt.Errorf("creating report sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	// Run metadata block above the table.
	meta := [][]interface{}{
		{"Run ID", summary.RunID},
		{"Week", summary.Week.Start.Format("2006-01-02") + " to " + summary.Week.End.Format("2006-01-02")},
		{"Employees", summary.Total},
		{"Alerts Sent", summary.AlertsSent},
		{"On Full Leave", summary.OnLeave},
		{"Meeting Requirements", summary.MeetingHours},
		{"Excluded", summary.Excluded},
		{"Errors", summary.Errors},
	}
	for i, row := range meta {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return fmt.Errorf("writing metadata row: %w", err)
		}
	}

	headerRow := len(meta) + 2
	headerCell := fmt.Sprintf("A%d", headerRow)
	header := make([]interface{}, len(reportHeader))
	for i, h := range reportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(reportSheet, headerCell, &header); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}
	endCol, _ := excelize.ColumnNumberToName(len(reportHeader))
	if err := f.SetCellStyle(reportSheet, headerCell, fmt.Sprintf("%s%d", endCol, headerRow), bold); err != nil {
		return fmt.Errorf("styling header row: %w", err)
	}

	for i, row := range summary.Rows {
		values := []interface{}{
			row.Employee.Name,
			row.Employee.Email,
			string(row.Result.Status),
			row.Result.ActualHours,
			row.Result.RequiredHours,
			row.Result.AcceptableHours,
			row.Result.LeaveDays,
			row.Result.Shortfall,
			row.Result.ShortfallMinutes,
			row.Manager,
			row.Sent,
			row.Err,
		}
		cell := fmt.Sprintf("A%d", headerRow+1+i)
		if err := f.SetSheetRow(reportSheet, cell, &values); err != nil {
			return fmt.Errorf("writing report row %d: %w", i, err)
		}
	}

	if err := f.SetColWidth(reportSheet, "A", "B", 28); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}
	if err := f.SetColWidth(reportSheet, "C", endCol, 16); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}
