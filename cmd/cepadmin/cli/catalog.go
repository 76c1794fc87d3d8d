package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cepadmin/cepadmin/internal/app"
	"github.com/cepadmin/cepadmin/internal/directory"
	"github.com/cepadmin/cepadmin/internal/rbac"
)

// PrivilegeLister lists the privileges a customer can grant.
type PrivilegeLister interface {
	ListPrivileges(ctx context.Context, customerID string) ([]directory.Privilege, error)
}

// CatalogOptions defines available flags for the catalog commands.
type CatalogOptions struct {
	CustomerID string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// CatalogValidateSummary describes the JSON response for catalog validate.
type CatalogValidateSummary struct {
	OK       bool             `json:"ok"`
	Checked  int              `json:"checked"`
	Unknown  []rbac.Privilege `json:"unknown"`
	Customer string           `json:"customer"`
}

type catalogListing struct {
	Privileges []rbac.Privilege `json:"privileges"`
}

func newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the required privilege catalog",
	}

	var showOpts CatalogOptions
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the compiled-in catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			showOpts.Stdout, showOpts.Stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()
			return exitWith(ShowCatalogCommand(rbac.DefaultCatalog(), showOpts))
		},
	}
	show.Flags().BoolVar(&showOpts.JSONOutput, "json", false, "print the catalog as JSON")

	var validateOpts CatalogOptions
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check that every catalog entry exists in the tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadToolConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			client, err := directory.NewClient(cmd.Context(), cfg.DirectoryConfig())
			if err != nil {
				return err
			}
			if validateOpts.CustomerID == "" {
				validateOpts.CustomerID = cfg.DirectoryCustomerID
			}
			validateOpts.Stdout, validateOpts.Stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()
			return exitWith(ValidateCatalogCommand(cmd.Context(), client, rbac.DefaultCatalog(), validateOpts))
		},
	}
	validate.Flags().StringVar(&validateOpts.CustomerID, "customer", "", "customer id (defaults to DIRECTORY_CUSTOMER_ID)")
	validate.Flags().BoolVar(&validateOpts.JSONOutput, "json", false, "print the summary as JSON")

	cmd.AddCommand(show, validate)
	return cmd
}

// ShowCatalogCommand prints the catalog in evaluation order.
func ShowCatalogCommand(catalog rbac.Catalog, opts CatalogOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	entries := catalog.Entries()
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(catalogListing{Privileges: entries}); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "catalog show: encode json: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
	_, _ = fmt.Fprintf(opts.Stdout, "%d required privilege(s):\n", len(entries))
	renderPrivileges(opts.Stdout, entries)
	return ExitOK
}

// ValidateCatalogCommand reports catalog entries the tenant does not know.
// Such an entry can never be granted, so nobody but a super admin would pass.
func ValidateCatalogCommand(ctx context.Context, lister PrivilegeLister, catalog rbac.Catalog, opts CatalogOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.CustomerID == "" {
		opts.CustomerID = rbac.DefaultCustomerID
	}
	tenant, err := lister.ListPrivileges(ctx, opts.CustomerID)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "catalog validate: %v\n", err)
		return ExitError
	}
	known := rbac.AggregatePrivileges([]directory.Role{{Privileges: tenant}})
	unknown := catalog.Missing(known)

	if opts.JSONOutput {
		summary := CatalogValidateSummary{
			OK:       len(unknown) == 0,
			Checked:  catalog.Len(),
			Unknown:  unknown,
			Customer: opts.CustomerID,
		}
		if summary.Unknown == nil {
			summary.Unknown = []rbac.Privilege{}
		}
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "catalog validate: encode json: %v\n", err)
			return ExitError
		}
	} else if len(unknown) == 0 {
		_, _ = fmt.Fprintf(opts.Stdout, "All %d catalog entries exist for customer %s.\n", catalog.Len(), opts.CustomerID)
	} else {
		_, _ = fmt.Fprintf(opts.Stdout, "%d catalog entr(ies) unknown to customer %s:\n", len(unknown), opts.CustomerID)
		renderPrivileges(opts.Stdout, unknown)
	}
	if len(unknown) > 0 {
		return ExitDenied
	}
	return ExitOK
}
