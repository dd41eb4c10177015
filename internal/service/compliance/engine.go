package compliance

import (
	"math"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/compliance"
)

// 5-day work system constants. The buffer is a company-wide policy value, not
// configurable per employee.
const (
	WorkDaysPerWeek   = 5.0
	HoursPerWorkDay   = 8.0
	HoursBuffer       = 3.0
	MinimumWeekHours  = WorkDaysPerWeek * HoursPerWorkDay
	AcceptableDefault = MinimumWeekHours - HoursBuffer
)

// Engine classifies an employee's week. It is pure: no I/O, no clock, no
// shared state, and it cannot fail — out-of-range inputs are clamped.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// RequiredHours returns 8 x (5 - leaveDays), clipped at 0 once a full week of
// leave is reached. Negative leave counts are treated as 0.
func (e *Engine) RequiredHours(leaveDays float64) float64 {
	leaveDays = clampLeaveDays(leaveDays)
	if leaveDays >= WorkDaysPerWeek {
		return 0
	}
	return HoursPerWorkDay * (WorkDaysPerWeek - leaveDays)
}

// AcceptableHours is the real alerting threshold: required minus the buffer,
// never negative.
func (e *Engine) AcceptableHours(leaveDays float64) float64 {
	required := e.RequiredHours(leaveDays)
	if required == 0 {
		return 0
	}
	return math.Max(0, required-HoursBuffer)
}

// Determine classifies one employee-week. Precedence: exclusion, then full
// leave, then the hours comparison against the acceptable threshold.
func (e *Engine) Determine(actualHours, leaveDays float64, excluded bool) compliance.Result {
	leaveDays = clampLeaveDays(leaveDays)

	if excluded {
		return compliance.Result{
			Status:      compliance.StatusExcluded,
			ActualHours: actualHours,
			LeaveDays:   leaveDays,
		}
	}

	required := e.RequiredHours(leaveDays)
	acceptable := e.AcceptableHours(leaveDays)

	if leaveDays >= WorkDaysPerWeek {
		return compliance.Result{
			Status:          compliance.StatusFullLeave,
			RequiredHours:   required,
			AcceptableHours: acceptable,
			ActualHours:     actualHours,
			LeaveDays:       leaveDays,
		}
	}

	if actualHours >= acceptable {
		return compliance.Result{
			Status:          compliance.StatusMeetingRequirements,
			RequiredHours:   required,
			AcceptableHours: acceptable,
			ActualHours:     actualHours,
			LeaveDays:       leaveDays,
		}
	}

	shortfall := required - actualHours
	return compliance.Result{
		Status:           compliance.StatusAlertRequired,
		RequiredHours:    required,
		AcceptableHours:  acceptable,
		ActualHours:      actualHours,
		LeaveDays:        leaveDays,
		Shortfall:        shortfall,
		ShortfallMinutes: int(math.Round(shortfall * 60)),
	}
}

func clampLeaveDays(leaveDays float64) float64 {
	if leaveDays < 0 || math.IsNaN(leaveDays) {
		return 0
	}
	return leaveDays
}
