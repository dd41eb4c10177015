package alert

import "context"

// Alert is the notification payload for one under-hours employee.
type Alert struct {
	ToEmail          string
	CCEmails         []string
	EmployeeName     string
	WeekStart        string
	WeekEnd          string
	ActualHours      float64
	OriginalHours    float64
	IdleHours        float64
	RequiredHours    float64
	AcceptableHours  float64
	Shortfall        float64
	ShortfallMinutes int
	LeaveDays        float64
	DaysWorked       float64
}

// Sender is the notification collaborator. Send either delivers the alert in
// full or returns an error; it must never leave a half-sent alert behind on
// cancellation.
type Sender interface {
	Send(ctx context.Context, a Alert) error
}
