package rbac

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Service IDs of the admin capability areas the catalog draws from.
const (
	ServiceAdminConsole     = "00haapch16h1ysv"
	ServiceChromeManagement = "01rvwp1q4axizdr"
	ServiceReports          = "01fob9te2rj6rw9"
	ServiceDataProtection   = "02w5ecyt3laroi5"
)

var requiredPrivileges = []Privilege{
	{Name: "ORGANIZATION_UNITS_RETRIEVE", ServiceID: ServiceAdminConsole},
	{Name: "USERS_RETRIEVE", ServiceID: ServiceAdminConsole},
	{Name: "GROUPS_RETRIEVE", ServiceID: ServiceAdminConsole},
	{Name: "MANAGE_USER_SETTINGS", ServiceID: ServiceChromeManagement},
	{Name: "MANAGE_DEVICE_SETTINGS", ServiceID: ServiceChromeManagement},
	{Name: "MANAGE_DEVICES", ServiceID: ServiceChromeManagement},
	{Name: "MANAGE_CHROME_BROWSERS", ServiceID: ServiceChromeManagement},
	{Name: "VIEW_CHROME_BROWSER_REPORTS", ServiceID: ServiceChromeManagement},
	{Name: "MANAGE_APPS_AND_EXTENSIONS", ServiceID: ServiceChromeManagement},
	{Name: "REPORTS_ACCESS", ServiceID: ServiceReports},
	{Name: "ACCESS_AUDIT_LOGS", ServiceID: ServiceReports},
	{Name: "MANAGE_DLP_RULES", ServiceID: ServiceDataProtection},
	{Name: "VIEW_DLP_RULES", ServiceID: ServiceDataProtection},
}

// Catalog is the ordered, immutable list of privileges a CEP admin must hold.
type Catalog struct {
	entries []Privilege
}

// NewCatalog validates entries and freezes them in the given order.
func NewCatalog(entries ...Privilege) (Catalog, error) {
	if len(entries) == 0 {
		return Catalog{}, errors.New("rbac: catalog must not be empty")
	}
	seen := make(map[Privilege]struct{}, len(entries))
	for _, p := range entries {
		if !p.Valid() {
			return Catalog{}, fmt.Errorf("rbac: catalog entry %q is incomplete", p)
		}
		if _, dup := seen[p]; dup {
			return Catalog{}, fmt.Errorf("rbac: catalog entry %q is duplicated", p)
		}
		seen[p] = struct{}{}
	}
	return Catalog{entries: append([]Privilege(nil), entries...)}, nil
}

// DefaultCatalog returns the compiled-in required-privilege catalog.
func DefaultCatalog() Catalog {
	catalog, err := NewCatalog(requiredPrivileges...)
	if err != nil {
		panic(err)
	}
	return catalog
}

// Entries returns a copy of the catalog in order.
func (c Catalog) Entries() []Privilege {
	return append([]Privilege(nil), c.entries...)
}

// Len reports the number of required privileges.
func (c Catalog) Len() int {
	return len(c.entries)
}

// Missing returns the entries not present in held, preserving catalog order.
// The result is nil when nothing is missing.
func (c Catalog) Missing(held PrivilegeSet) []Privilege {
	missing := lo.Filter(c.entries, func(p Privilege, _ int) bool {
		return !held.Has(p)
	})
	if len(missing) == 0 {
		return nil
	}
	return missing
}
