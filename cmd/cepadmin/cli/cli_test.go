package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cepadmin/cepadmin/internal/directory"
	"github.com/cepadmin/cepadmin/internal/rbac"
)

type stubChecker struct {
	result rbac.Result
	err    error
	seen   string
}

func (s *stubChecker) GetRoles(ctx context.Context, email string) (rbac.Result, error) {
	s.seen = email
	return s.result, s.err
}

type stubLister struct {
	privileges []directory.Privilege
	err        error
	customer   string
}

func (s *stubLister) ListPrivileges(ctx context.Context, customerID string) ([]directory.Privilege, error) {
	s.customer = customerID
	return s.privileges, s.err
}

func tenantPrivileges(entries []rbac.Privilege) []directory.Privilege {
	out := make([]directory.Privilege, 0, len(entries))
	for _, p := range entries {
		out = append(out, directory.Privilege{Name: p.Name, ServiceID: p.ServiceID, ServiceName: "svc"})
	}
	return out
}

func TestCheckCommandExitCodes(t *testing.T) {
	missing := rbac.DefaultCatalog().Entries()[:2]
	tests := []struct {
		name    string
		checker *stubChecker
		want    int
	}{
		{name: "super admin", checker: &stubChecker{result: rbac.Result{IsSuperAdmin: true, IsCEPAdmin: true}}, want: ExitOK},
		{name: "cep admin", checker: &stubChecker{result: rbac.Result{IsCEPAdmin: true}}, want: ExitOK},
		{name: "missing privileges", checker: &stubChecker{result: rbac.Result{MissingPrivileges: missing}}, want: ExitDenied},
		{name: "directory failure", checker: &stubChecker{err: errors.New("rbac: user lookup: 403")}, want: ExitError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
			code := CheckCommand(context.Background(), tc.checker, CheckOptions{User: " dev@example.com ", Stdout: stdout, Stderr: stderr})
			require.Equal(t, tc.want, code)
			require.Equal(t, "dev@example.com", tc.checker.seen)
			if tc.want == ExitError {
				require.Contains(t, stderr.String(), "403")
				require.Empty(t, stdout.String())
			}
		})
	}
}

func TestCheckCommandJSON(t *testing.T) {
	missing := rbac.DefaultCatalog().Entries()[:1]
	stdout := new(bytes.Buffer)
	code := CheckCommand(context.Background(), &stubChecker{result: rbac.Result{MissingPrivileges: missing}}, CheckOptions{
		User:       "dev@example.com",
		JSONOutput: true,
		Stdout:     stdout,
		Stderr:     new(bytes.Buffer),
	})
	require.Equal(t, ExitDenied, code)

	var result rbac.Result
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	require.Equal(t, missing, result.MissingPrivileges)
}

func TestCheckCommandRequiresUser(t *testing.T) {
	stderr := new(bytes.Buffer)
	code := CheckCommand(context.Background(), &stubChecker{}, CheckOptions{Stdout: new(bytes.Buffer), Stderr: stderr})
	require.Equal(t, ExitError, code)
	require.Contains(t, stderr.String(), "--user")
}

func TestValidateCatalogCommandClean(t *testing.T) {
	catalog := rbac.DefaultCatalog()
	lister := &stubLister{privileges: tenantPrivileges(catalog.Entries())}

	stdout := new(bytes.Buffer)
	code := ValidateCatalogCommand(context.Background(), lister, catalog, CatalogOptions{JSONOutput: true, Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Equal(t, ExitOK, code)
	require.Equal(t, rbac.DefaultCustomerID, lister.customer)

	var summary CatalogValidateSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.True(t, summary.OK)
	require.Empty(t, summary.Unknown)
	require.Equal(t, catalog.Len(), summary.Checked)
}

func TestValidateCatalogCommandGaps(t *testing.T) {
	catalog := rbac.DefaultCatalog()
	entries := catalog.Entries()
	lister := &stubLister{privileges: tenantPrivileges(entries[1:])}

	stdout := new(bytes.Buffer)
	code := ValidateCatalogCommand(context.Background(), lister, catalog, CatalogOptions{CustomerID: "C0abc", Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Equal(t, ExitDenied, code)
	require.Equal(t, "C0abc", lister.customer)
	require.Contains(t, stdout.String(), entries[0].Name)
}

func TestValidateCatalogCommandError(t *testing.T) {
	stderr := new(bytes.Buffer)
	code := ValidateCatalogCommand(context.Background(), &stubLister{err: errors.New("boom")}, rbac.DefaultCatalog(), CatalogOptions{Stdout: new(bytes.Buffer), Stderr: stderr})
	require.Equal(t, ExitError, code)
	require.Contains(t, stderr.String(), "boom")
}

func TestRootCatalogShow(t *testing.T) {
	root := NewRootCommand()
	stdout := new(bytes.Buffer)
	root.SetOut(stdout)

	code := execute(context.Background(), root, []string{"catalog", "show", "--json"}, new(bytes.Buffer))
	require.Equal(t, ExitOK, code)

	var listing catalogListing
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &listing))
	require.Equal(t, rbac.DefaultCatalog().Entries(), listing.Privileges)
}

func TestRootCheckRequiresUserFlag(t *testing.T) {
	stderr := new(bytes.Buffer)
	root := NewRootCommand()
	root.SetErr(new(bytes.Buffer))

	code := execute(context.Background(), root, []string{"check"}, stderr)
	require.Equal(t, ExitError, code)
	require.Contains(t, stderr.String(), "user")
}
