package manager

import "context"

// Directory is the employee-manager collaborator. Resolve tolerates raw,
// inconsistently formatted names; a false second return means no manager is
// known, which is an expected steady-state outcome, not an error.
type Directory interface {
	Resolve(ctx context.Context, employeeName string) (Edge, bool)
	Keys(ctx context.Context) []string
	Refresh(ctx context.Context, force bool) error
	Summaries(ctx context.Context) []Summary
}
