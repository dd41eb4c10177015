package alert

import "errors"

var (
	ErrNotConfigured = errors.New("mail transport not configured")
	ErrSendFailed    = errors.New("alert delivery failed")
)
