package roster

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/employee"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/leave"
)

type stubSource struct {
	table leave.MonthTable
	err   error
}

func (s *stubSource) MonthTable(context.Context, time.Time) (leave.MonthTable, error) {
	return s.table, s.err
}

func sheetWith(names ...string) leave.MonthTable {
	table := leave.MonthTable{{"Name", "1", "2", "3"}}
	for _, n := range names {
		table = append(table, []string{n, "", "", ""})
	}
	return table
}

func roster(names ...string) []employee.Employee {
	var emps []employee.Employee
	for i, n := range names {
		emps = append(emps, employee.Employee{ID: string(rune('a' + i)), Name: n, Email: n + "@example.com"})
	}
	return emps
}

func TestActive_KeepsEmployeesPresentInSheet(t *testing.T) {
	f := NewFilter(&stubSource{table: sheetWith("Kartik Jain", "Gokul Jagannath")}, nil, nil)

	active, stats, err := f.Active(context.Background(), roster("Kartik Jain", "Gokul Jagannath"), time.Now())

	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, 2, stats.Kept)
	assert.Zero(t, stats.Dropped)
}

func TestActive_DropsEmployeesMissingFromSheet(t *testing.T) {
	f := NewFilter(&stubSource{table: sheetWith("Kartik Jain")}, nil, nil)

	active, stats, err := f.Active(context.Background(), roster("Kartik Jain", "Departed Person"), time.Now())

	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Kartik Jain", active[0].Name)
	assert.Equal(t, 1, stats.Dropped)
}

func TestActive_FuzzySpellingStillMatches(t *testing.T) {
	f := NewFilter(&stubSource{table: sheetWith("Kunwar Siddharth Thakur")}, nil, nil)

	active, _, err := f.Active(context.Background(), roster("Siddharth Thakur"), time.Now())

	require.NoError(t, err)
	require.Len(t, active, 1)
}

func TestActive_DenyListShortCircuits(t *testing.T) {
	// The denied name is in the sheet; the deny list must still win.
	f := NewFilter(&stubSource{table: sheetWith("Vishal Kumar")}, []string{"vishal kumar"}, nil)

	active, stats, err := f.Active(context.Background(), roster("Vishal Kumar"), time.Now())

	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Equal(t, 1, stats.DeniedFast)
}

func TestActive_SheetFailureReturnsError(t *testing.T) {
	f := NewFilter(&stubSource{err: leave.ErrSheetUnavailable}, nil, nil)

	active, _, err := f.Active(context.Background(), roster("Kartik Jain", "Gokul Jagannath"), time.Now())

	require.ErrorIs(t, err, leave.ErrSheetUnavailable)
	assert.Empty(t, active)
}

func TestActive_EmptyNameDropped(t *testing.T) {
	f := NewFilter(&stubSource{table: sheetWith("Kartik Jain")}, nil, nil)

	active, stats, err := f.Active(context.Background(), []employee.Employee{{ID: "x", Name: "  "}}, time.Now())

	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Equal(t, 1, stats.Dropped)
	assert.Equal(t, 1, stats.Errored)
}
