package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Process exit codes of the operator commands.
const (
	ExitOK    = 0
	ExitError = 1
	// ExitDenied reports a completed check whose answer is "no": the user is
	// not a CEP admin, or the catalog has gaps.
	ExitDenied = 10
)

type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func exitWith(code int) error {
	if code == ExitOK {
		return nil
	}
	return exitError{code: code}
}

// NewRootCommand assembles the cepadmin command tree. Running it without a
// subcommand starts the HTTP server.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cepadmin",
		Short:         "Decide whether a Workspace user may administer Chrome Enterprise Plus",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCommand(), newCheckCommand(), newCatalogCommand())
	return root
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	return execute(ctx, NewRootCommand(), args, os.Stderr)
}

func execute(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	var exit exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	_, _ = fmt.Fprintf(stderr, "cepadmin: %v\n", err)
	return ExitError
}
