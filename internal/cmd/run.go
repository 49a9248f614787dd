package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmgilman/execkit/internal/exec"
	"github.com/jmgilman/execkit/internal/history"
	"github.com/jmgilman/execkit/internal/logging"
	"github.com/jmgilman/execkit/internal/slogger"
	"github.com/jmgilman/execkit/internal/spinner"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Run a command and wait for it",
		Long: `Run a command as a child process and wait until it has exited and both of
its output streams have been read to the end.

The child's standard input is closed. Its captured standard output and
standard error are printed once it finishes, and execkit exits with the
child's exit code. The run is recorded in the history and its output is
written to a log file.`,
		Example: `  # Run a command
  execkit run -- ls -la

  # Override environment and working directory
  execkit run -e GOFLAGS=-mod=mod -C ./src -- go build ./...

  # Split a command line on whitespace
  execkit run --line "make test"

  # Fail with the captured output when the command exits non-zero
  execkit run --check -- make lint`,
		Args: cobra.ArbitraryArgs,
		RunE: runRunCmd,
	}

	addCommandFlags(cmd)
	cmd.Flags().Bool("check", false, "treat a non-zero exit as an error that includes the captured output")
	cmd.Flags().Bool("no-log", false, "do not write the captured output to a log file")

	return cmd
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return fmt.Errorf("get check flag: %w", err)
	}
	noLog, err := cmd.Flags().GetBool("no-log")
	if err != nil {
		return fmt.Errorf("get no-log flag: %w", err)
	}

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
	entry := newEntry(id, c, history.StatusRunning)
	if err := store.Add(ctx, entry); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	slogger.L(ctx).Info("run started", "id", id, "args", c.Args)

	result, runErr := runWithProgress(ctx, cmd.ErrOrStderr(), executor, c)
	entry.FinishedAt = time.Now()

	if runErr != nil {
		entry.Status = history.StatusFailed
		entry.Error = runErr.Error()
		updateEntry(ctx, store, entry)
		return runErr
	}

	entry.Status = history.StatusExited
	entry.ExitCode = result.ExitCode
	if !noLog {
		entry.LogPath = writeRunLog(ctx, id, c.Args, result)
	}
	updateEntry(ctx, store, entry)

	if check {
		if err := result.EnsureOK(); err != nil {
			return &ExitError{Code: result.ExitCode, Err: err}
		}
	}

	if _, err := io.WriteString(cmd.OutOrStdout(), result.Stdout); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}
	if _, err := io.WriteString(cmd.ErrOrStderr(), result.Stderr); err != nil {
		return fmt.Errorf("write stderr: %w", err)
	}

	if result.ExitCode != 0 {
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}

// runWithProgress runs c, showing a spinner on w while waiting when w is a
// terminal.
func runWithProgress(ctx context.Context, w io.Writer, executor exec.Executor, c exec.Command) (*exec.Result, error) {
	run := func() (*exec.Result, error) {
		return executor.Run(ctx, c)
	}

	if f, ok := w.(*os.File); ok && spinner.Enabled(f) {
		return spinner.Run(w, "running "+strings.Join(c.Args, " "), run)
	}
	return run()
}

// writeRunLog writes the run's captured output and returns the log path, or
// "" when it could not be written.
func writeRunLog(ctx context.Context, id string, args []string, result *exec.Result) string {
	cfg := ConfigFromContext(ctx)
	if cfg == nil {
		return ""
	}

	path, err := logging.NewPathManager(cfg.Storage.Logs).EnsureRunLog(id)
	if err == nil {
		err = logging.WriteResult(path, args, result)
	}
	if err != nil {
		slogger.L(ctx).Warn("failed to write run log", "id", id, "error", err)
		return ""
	}
	return path
}

// updateEntry stores the final state of a run. The run itself has already
// happened, so a failure here is only logged.
func updateEntry(ctx context.Context, store history.Store, entry history.Entry) {
	if err := store.Update(ctx, entry); err != nil {
		slogger.L(ctx).Warn("failed to update run history", "id", entry.ID, "error", err)
	}
}
