package manager

import "errors"

var ErrMappingUnavailable = errors.New("manager mapping sheet unavailable")
