package leave

import "errors"

// ErrSheetUnavailable reports that no CSV endpoint produced a usable month
// table. A missing employee row is not an error: no record means no leave.
var ErrSheetUnavailable = errors.New("leave sheet unavailable")
