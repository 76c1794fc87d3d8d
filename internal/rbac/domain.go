package rbac

// Privilege is an administrative capability scoped to a service. The pair is
// the identity: the same name under another service is a different privilege.
type Privilege struct {
	Name      string `json:"privilegeName"`
	ServiceID string `json:"serviceId"`
}

// Valid reports whether both halves of the pair are set.
func (p Privilege) Valid() bool {
	return p.Name != "" && p.ServiceID != ""
}

func (p Privilege) String() string {
	return p.ServiceID + "/" + p.Name
}

// State names the branch an evaluation ended in.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateSuperAdmin      State = "super_admin"
	StateNoRoles         State = "no_roles"
	StateEvaluated       State = "evaluated"
	StateFailed          State = "failed"
)

// Result is the authorization decision returned to callers.
//
// MissingPrivileges is nil for super admins and CEP admins; otherwise it lists
// the catalog entries the caller lacks, in catalog order.
type Result struct {
	IsSuperAdmin      bool        `json:"isSuperAdmin"`
	IsCEPAdmin        bool        `json:"isCepAdmin"`
	MissingPrivileges []Privilege `json:"missingPrivileges,omitempty"`

	State State `json:"-"`
}
