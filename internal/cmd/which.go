package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/execkit/internal/exec"
)

// errNotFound is reported when which finds no executable.
var errNotFound = errors.New("executable not found")

func newWhichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "which [--dir D] name",
		Short: "Locate an executable",
		Long: `Locate an executable by name.

Each candidate directory is checked for name, name.exe and name.bat, in that
order, and the first regular file the host considers executable is printed.
With --dir only that directory is searched; otherwise every $PATH entry is.
Exits with status 1 when nothing is found.`,
		Example: `  # Search $PATH
  execkit which git

  # Search a single directory
  execkit which --dir ./bin tool`,
		Args: cobra.ExactArgs(1),
		RunE: runWhichCmd,
	}

	cmd.Flags().String("dir", "", "search only this directory")

	return cmd
}

func runWhichCmd(cmd *cobra.Command, args []string) error {
	name := args[0]

	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return fmt.Errorf("get dir flag: %w", err)
	}

	var (
		path string
		ok   bool
	)
	if dir != "" {
		path, ok = exec.FindExe(dir, name)
	} else {
		path, ok = exec.FindInPath(name)
	}

	if !ok {
		return &ExitError{Code: 1, Err: fmt.Errorf("%w: %s", errNotFound, name)}
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
