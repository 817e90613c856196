// Command sequestra estimates the CO2 stored by land-restoration projects.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rshade/sequestra/internal/cli"
	"github.com/rshade/sequestra/pkg/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI with args and returns the process exit code.
func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRoot()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return exitCode(err)
}

// newRoot builds the root command. --version prints the full build banner.
func newRoot() *cobra.Command {
	root := cli.NewRootCmd(version.GetVersion())
	root.SilenceErrors = true
	root.SetVersionTemplate(version.Info() + "\n")
	return root
}

// exitCode maps a command error to a process exit code. An interrupt is not
// a failure.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	default:
		return 1
	}
}
