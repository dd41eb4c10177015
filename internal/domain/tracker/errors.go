package tracker

import "errors"

var (
	ErrUnavailable  = errors.New("tracker API unavailable")
	ErrUnauthorized = errors.New("tracker API rejected credentials")
)
