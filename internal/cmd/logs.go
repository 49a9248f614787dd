package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/execkit/internal/history"
	"github.com/jmgilman/execkit/internal/logging"
)

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs <run-id>",
		Short: "View the captured output of a run",
		Long: `View the captured output of a run recorded by 'execkit run'.

The log holds the command line followed by the child's standard output and
standard error sections and its exit code.`,
		Example: `  # View recent output (last 100 lines)
  execkit logs focused_turing

  # Show last 500 lines
  execkit logs focused_turing -n 500

  # Show the entire log
  execkit logs focused_turing --full`,
		Args: cobra.ExactArgs(1),
		RunE: runLogsCmd,
	}

	cmd.Flags().IntP("lines", "n", logging.DefaultTailLines, "number of lines to show")
	cmd.Flags().Bool("full", false, "show the entire log")

	return cmd
}

func runLogsCmd(cmd *cobra.Command, args []string) error {
	runID := args[0]

	lines, err := cmd.Flags().GetInt("lines")
	if err != nil {
		return fmt.Errorf("get lines flag: %w", err)
	}
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("get full flag: %w", err)
	}

	ctx := cmd.Context()
	store, err := requireStore(ctx)
	if err != nil {
		return err
	}

	entry, err := store.Get(ctx, runID)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("run %s not found", runID)
		}
		return fmt.Errorf("get run: %w", err)
	}

	cfg := ConfigFromContext(ctx)
	if cfg == nil {
		return errors.New("config not loaded")
	}
	pathMgr := logging.NewPathManager(cfg.Storage.Logs)
	if !pathMgr.LogExists(entry.ID) {
		return fmt.Errorf("no log file found for run %s", runID)
	}

	reader := logging.NewReader(pathMgr)
	var logLines []string
	if full {
		logLines, err = reader.ReadAll(entry.ID)
	} else {
		logLines, err = reader.ReadLastN(entry.ID, lines)
	}
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, line := range logLines {
		fmt.Fprintln(out, line)
	}

	return nil
}
