// Package directory wraps the read-only Admin SDK Directory calls used for
// authorization decisions.
package directory

import (
	"context"
	"fmt"
	"strconv"
	"time"

	admin "google.golang.org/api/admin/directory/v1"
	"google.golang.org/api/option"
)

// Operation names used in errors and metrics.
const (
	OpGetUser             = "get_user"
	OpListRoleAssignments = "list_role_assignments"
	OpGetRole             = "get_role"
	OpListPrivileges      = "list_privileges"
)

const defaultPageSize = 100

// Config describes how to reach the directory.
type Config struct {
	CredentialsFile string
	Impersonate     string
	Endpoint        string
	// WithoutAuth skips credentials entirely, for emulators.
	WithoutAuth bool
	// Timeout bounds each call; zero leaves it to the caller's context.
	Timeout  time.Duration
	PageSize int64
}

// Client issues directory reads. It holds no per-user state and is safe for
// concurrent use.
type Client struct {
	svc      *admin.Service
	metrics  *Metrics
	timeout  time.Duration
	pageSize int64
}

// NewClient builds a Client from cfg. Extra options are appended after the
// credential options.
func NewClient(ctx context.Context, cfg Config, extra ...option.ClientOption) (*Client, error) {
	opts, err := clientOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}
	svc, err := admin.NewService(ctx, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("directory: new service: %w", err)
	}
	client := NewFromService(svc)
	client.timeout = cfg.Timeout
	if cfg.PageSize > 0 {
		client.pageSize = cfg.PageSize
	}
	return client, nil
}

// NewFromService wraps an already configured Admin SDK service.
func NewFromService(svc *admin.Service) *Client {
	return &Client{svc: svc, pageSize: defaultPageSize}
}

// WithMetrics attaches call instrumentation.
func (c *Client) WithMetrics(m *Metrics) *Client {
	c.metrics = m
	return c
}

func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// GetUser looks up a user by primary email, alias or ID.
func (c *Client) GetUser(ctx context.Context, userKey string) (User, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()
	tracker := c.metrics.Track(OpGetUser)

	u, err := c.svc.Users.Get(userKey).
		Fields("primaryEmail", "isAdmin", "customerId").
		Context(ctx).
		Do()
	if err != nil {
		return User{}, tracker.End(wrapError(OpGetUser, userKey, err))
	}
	tracker.End(nil)
	return User{Email: u.PrimaryEmail, IsAdmin: u.IsAdmin, CustomerID: u.CustomerId}, nil
}

// ListRoleAssignments returns every role assignment of userKey, following
// pagination. A user without roles yields an empty slice.
func (c *Client) ListRoleAssignments(ctx context.Context, userKey, customerID string) ([]RoleAssignment, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()
	tracker := c.metrics.Track(OpListRoleAssignments)

	assignments := make([]RoleAssignment, 0)
	call := c.svc.RoleAssignments.List(customerID).
		UserKey(userKey).
		MaxResults(c.pageSize).
		Context(ctx)
	err := call.Pages(ctx, func(page *admin.RoleAssignments) error {
		for _, item := range page.Items {
			if item == nil {
				continue
			}
			assignments = append(assignments, RoleAssignment{
				UserKey:      userKey,
				RoleID:       formatID(item.RoleId),
				AssignmentID: formatID(item.RoleAssignmentId),
				ScopeType:    item.ScopeType,
				OrgUnitID:    item.OrgUnitId,
			})
		}
		return nil
	})
	if err != nil {
		return nil, tracker.End(wrapError(OpListRoleAssignments, userKey, err))
	}
	tracker.End(nil)
	return assignments, nil
}

// GetRole fetches a role and its privileges.
func (c *Client) GetRole(ctx context.Context, customerID, roleID string) (Role, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()
	tracker := c.metrics.Track(OpGetRole)

	r, err := c.svc.Roles.Get(customerID, roleID).Context(ctx).Do()
	if err != nil {
		return Role{}, tracker.End(wrapError(OpGetRole, roleID, err))
	}
	tracker.End(nil)

	privileges := make([]Privilege, 0, len(r.RolePrivileges))
	for _, p := range r.RolePrivileges {
		if p == nil {
			continue
		}
		privileges = append(privileges, Privilege{Name: p.PrivilegeName, ServiceID: p.ServiceId})
	}
	return Role{RoleID: roleID, Name: r.RoleName, Privileges: privileges}, nil
}

// ListPrivileges returns every privilege the customer can grant, flattened
// from the directory's privilege tree.
func (c *Client) ListPrivileges(ctx context.Context, customerID string) ([]Privilege, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()
	tracker := c.metrics.Track(OpListPrivileges)

	resp, err := c.svc.Privileges.List(customerID).Context(ctx).Do()
	if err != nil {
		return nil, tracker.End(wrapError(OpListPrivileges, customerID, err))
	}
	tracker.End(nil)

	out := make([]Privilege, 0, len(resp.Items))
	var walk func(items []*admin.Privilege)
	walk = func(items []*admin.Privilege) {
		for _, p := range items {
			if p == nil {
				continue
			}
			out = append(out, Privilege{Name: p.PrivilegeName, ServiceID: p.ServiceId, ServiceName: p.ServiceName})
			walk(p.ChildPrivileges)
		}
	}
	walk(resp.Items)
	return out, nil
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
