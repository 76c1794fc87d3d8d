package directory

// User is the subset of a directory user record needed for authorization.
type User struct {
	Email      string
	IsAdmin    bool
	CustomerID string
}

// RoleAssignment binds a user to a role within a customer.
type RoleAssignment struct {
	UserKey      string
	RoleID       string
	AssignmentID string
	ScopeType    string
	OrgUnitID    string
}

// Role is an admin role with the privileges it grants. Entries are passed
// through as returned by the directory and may be incomplete.
type Role struct {
	RoleID     string
	Name       string
	Privileges []Privilege
}

// Privilege is a raw privilege entry as reported by the directory.
type Privilege struct {
	Name        string
	ServiceID   string
	ServiceName string
}
