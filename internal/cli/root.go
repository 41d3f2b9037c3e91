package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/auth-xyz/process-info/internal/config"
	"github.com/auth-xyz/process-info/internal/errors"
	"github.com/spf13/cobra"
)

const rootLong = `Show live CPU, memory, and GPU usage for a set of processes.

Each name in the comma-separated list becomes one row, in the order given.
A name may be an executable name, a PID, or "self" for procinfo itself.
The table refreshes about every two seconds (a one-second CPU window plus
a one-second pause) until you press Ctrl+C or the --watch time runs out.

Examples:
  procinfo nginx
  procinfo nginx,postgres,redis-server
  procinfo self,4123 --watch 60s`

// newRootCmd builds the root command. Flag values live in the closure so
// each call gets independent state.
func newRootCmd() *cobra.Command {
	var watchFlag string

	cmd := &cobra.Command{
		Use:           "procinfo <processes>",
		Short:         "Live per-process CPU, memory, and GPU dashboard",
		Long:          rootLong,
		Args:          processesArg,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewRunConfig(args[0], watchFlag, cmd.Flags().Changed("watch"))
			if err != nil {
				return err
			}
			return monitorCommand(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&watchFlag, "watch", "", "stop after this many seconds, e.g. 60s")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.WrapWithCode(err, errors.ErrUsage,
			"Couldn't parse the command line",
			"Run 'procinfo --help' for usage")
	})

	cmd.AddCommand(newVersionCmd())
	return cmd
}

// processesArg requires exactly one positional argument: the process list.
func processesArg(_ *cobra.Command, args []string) error {
	switch len(args) {
	case 1:
		return nil
	case 0:
		return errors.New(errors.ErrUsage,
			"No process names given",
			"Pass a comma-separated list, e.g. procinfo nginx,postgres")
	default:
		return errors.New(errors.ErrUsage,
			fmt.Sprintf("Expected one comma-separated list, got %d arguments", len(args)),
			"Join the names with commas and no spaces, e.g. procinfo nginx,postgres")
	}
}

var rootCmd = newRootCmd()

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimRight(err.Error(), "\n"))
		if errors.IsCode(err, errors.ErrUsage) {
			fmt.Fprintln(os.Stderr, "\nRun 'procinfo --help' for usage.")
		}
		stop()
		os.Exit(1)
	}
}
