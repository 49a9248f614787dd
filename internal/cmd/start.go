package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmgilman/execkit/internal/history"
	"github.com/jmgilman/execkit/internal/logging"
	"github.com/jmgilman/execkit/internal/slogger"
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start [flags] -- command [args...]",
		Short: "Start a command without waiting for it",
		Long: `Start a command as a child process and return immediately, printing the
run ID.

The child's stdout and stderr are appended to the run's log file, which
'execkit logs <id>' shows while the child is still running. The child
keeps running after execkit exits and its exit status is not recorded.
Use 'execkit run' to wait for the result.`,
		Example: `  # Start a background job
  execkit start -- ./scripts/warm-cache.sh

  # Start with an environment override
  execkit start -e MODE=fast --line "./worker --once"`,
		Args: cobra.ArbitraryArgs,
		RunE: runStartCmd,
	}

	addCommandFlags(cmd)

	return cmd
}

func runStartCmd(cmd *cobra.Command, args []string) error {
	c, err := commandFromFlags(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	executor, err := requireExecutor(ctx)
	if err != nil {
		return err
	}
	store, err := requireStore(ctx)
	if err != nil {
		return err
	}

	id, err := newRunID(ctx, store)
	if err != nil {
		return err
	}
	entry := newEntry(id, c, history.StatusStarted)

	c.OutputPath, entry.LogPath = prepareStartLog(ctx, id, c.Args)
	if err := executor.RunAsync(ctx, c); err != nil {
		entry.Status = history.StatusFailed
		entry.Error = err.Error()
		if addErr := store.Add(ctx, entry); addErr != nil {
			slogger.L(ctx).Warn("failed to record run", "id", id, "error", addErr)
		}
		return err
	}

	if err := store.Add(ctx, entry); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

// prepareStartLog returns where a detached child's output goes and the log
// path to record. The child must never write to a pipe nobody reads once
// execkit exits, so without a usable log the output goes to the null device.
func prepareStartLog(ctx context.Context, id string, args []string) (output, logPath string) {
	cfg := ConfigFromContext(ctx)
	if cfg == nil {
		return os.DevNull, ""
	}

	path, err := logging.NewPathManager(cfg.Storage.Logs).EnsureRunLog(id)
	if err == nil {
		err = logging.WriteHeader(path, args)
	}
	if err != nil {
		slogger.L(ctx).Warn("failed to prepare run log", "id", id, "error", err)
		return os.DevNull, ""
	}
	return path, path
}
