package manager

// Edge maps one employee to their reporting manager. EmployeeKey is the
// canonical name (or email when the mapping sheet provides one) used as the
// lookup key; ManagerEmail is empty when the directory has no address for the
// manager.
type Edge struct {
	EmployeeKey   string
	EmployeeEmail string
	ManagerName   string
	ManagerEmail  string
}

// Summary aggregates one manager's team for reporting.
type Summary struct {
	ManagerName  string
	ManagerEmail string
	TeamSize     int
	Employees    []string
}
