package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cepadmin/cepadmin/internal/app"
	"github.com/cepadmin/cepadmin/internal/directory"
	"github.com/cepadmin/cepadmin/internal/rbac"
)

// RoleChecker evaluates a user against the required catalog.
type RoleChecker interface {
	GetRoles(ctx context.Context, email string) (rbac.Result, error)
}

// CheckOptions defines available flags for the check command.
type CheckOptions struct {
	User       string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

func newCheckCommand() *cobra.Command {
	var opts CheckOptions
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate one user against the live directory",
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
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
			svc := rbac.NewService(client, rbac.DefaultCatalog(), cfg.ServiceConfig(), logger)

			opts.Stdout, opts.Stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()
			return exitWith(CheckCommand(cmd.Context(), svc, opts))
		},
	}
	cmd.Flags().StringVar(&opts.User, "user", "", "primary email of the user to evaluate")
	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// CheckCommand runs one evaluation and prints the outcome. It returns
// ExitOK for a CEP admin, ExitDenied for a user lacking privileges and
// ExitError when the answer could not be determined.
func CheckCommand(ctx context.Context, checker RoleChecker, opts CheckOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	user := strings.TrimSpace(opts.User)
	if user == "" {
		_, _ = fmt.Fprintln(opts.Stderr, "check: --user is required")
		return ExitError
	}
	result, err := checker.GetRoles(ctx, user)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "check: %v\n", err)
		return ExitError
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(result); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "check: encode json: %v\n", err)
			return ExitError
		}
	} else {
		renderCheckHuman(opts.Stdout, user, result)
	}
	if !result.IsCEPAdmin {
		return ExitDenied
	}
	return ExitOK
}

func renderCheckHuman(out io.Writer, user string, result rbac.Result) {
	switch {
	case result.IsSuperAdmin:
		_, _ = fmt.Fprintf(out, "%s is a super admin.\n", user)
	case result.IsCEPAdmin:
		_, _ = fmt.Fprintf(out, "%s holds every required privilege.\n", user)
	default:
		_, _ = fmt.Fprintf(out, "%s is missing %d privilege(s):\n", user, len(result.MissingPrivileges))
		renderPrivileges(out, result.MissingPrivileges)
	}
}

func renderPrivileges(out io.Writer, privileges []rbac.Privilege) {
	for _, p := range privileges {
		_, _ = fmt.Fprintf(out, " - %s (service %s)\n", p.Name, p.ServiceID)
	}
}
