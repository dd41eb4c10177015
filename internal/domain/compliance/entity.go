package compliance

// Status is the terminal classification of one employee for one week.
type Status string

const (
	StatusExcluded            Status = "excluded"
	StatusFullLeave           Status = "full_leave"
	StatusMeetingRequirements Status = "meeting_requirements"
	StatusAlertRequired       Status = "alert_required"
)

// AlertNeeded reports whether the status calls for a notification.
func (s Status) AlertNeeded() bool {
	return s == StatusAlertRequired
}

// Result is a pure derived value, recomputed every run and never stored.
// Shortfall and ShortfallMinutes are only meaningful when Status is
// StatusAlertRequired.
type Result struct {
	Status           Status  `json:"status"`
	RequiredHours    float64 `json:"required_hours"`
	AcceptableHours  float64 `json:"acceptable_hours"`
	ActualHours      float64 `json:"actual_hours"`
	LeaveDays        float64 `json:"leave_days"`
	Shortfall        float64 `json:"shortfall,omitempty"`
	ShortfallMinutes int     `json:"shortfall_minutes,omitempty"`
}
