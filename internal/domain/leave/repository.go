package leave

import (
	"context"
	"time"
)

// Source is the leave-record collaborator: one monthly grid per call.
// MonthTable resolves the month's tab label internally (see MonthLabels).
type Source interface {
	MonthTable(ctx context.Context, month time.Time) (MonthTable, error)
}
