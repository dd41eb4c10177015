package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/rapidinnovation/hours-monitor-go/internal/domain/employee"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/leave"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/manager"
	"github.com/rapidinnovation/hours-monitor-go/internal/domain/tracker"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	switch {
	// Tracker errors
	case errors.Is(err, tracker.ErrUnauthorized):
		Unauthorized(w, "Time tracker rejected the configured credentials")
	case errors.Is(err, tracker.ErrUnavailable):
		ServiceUnavailable(w, "Time tracker is unreachable")

	// Sheet errors
	case errors.Is(err, leave.ErrSheetUnavailable):
		ServiceUnavailable(w, "Leave sheet is unreachable")
	case errors.Is(err, manager.ErrMappingUnavailable):
		ServiceUnavailable(w, "Manager mapping sheet is unreachable")

	// Roster errors
	case errors.Is(err, employee.ErrRosterEmpty):
		NotFound(w, "No employees in the current roster")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		ServiceUnavailable(w, "Request cancelled or timed out")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
