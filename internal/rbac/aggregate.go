package rbac

import "github.com/cepadmin/cepadmin/internal/directory"

// PrivilegeSet is a set of privilege pairs.
type PrivilegeSet map[Privilege]struct{}

// Has reports whether p is in the set.
func (s PrivilegeSet) Has(p Privilege) bool {
	_, ok := s[p]
	return ok
}

// Len returns the number of distinct pairs.
func (s PrivilegeSet) Len() int {
	return len(s)
}

// AggregatePrivileges unions the privileges of all roles. Entries missing a
// name or service ID cannot satisfy a requirement and are skipped.
func AggregatePrivileges(roles []directory.Role) PrivilegeSet {
	set := make(PrivilegeSet)
	for _, role := range roles {
		for _, raw := range role.Privileges {
			p := Privilege{Name: raw.Name, ServiceID: raw.ServiceID}
			if !p.Valid() {
				continue
			}
			set[p] = struct{}{}
		}
	}
	return set
}
