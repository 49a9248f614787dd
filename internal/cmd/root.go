// Package cmd implements the execkit CLI commands using Cobra.
// It provides commands for running programs with captured output, locating
// executables, inspecting the host platform and reviewing past runs.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmgilman/execkit/internal/config"
	"github.com/jmgilman/execkit/internal/exec"
	"github.com/jmgilman/execkit/internal/history"
	"github.com/jmgilman/execkit/internal/prompt"
	"github.com/jmgilman/execkit/internal/slogger"
)

// NewRootCmd builds the execkit command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "execkit",
		Short: "Run programs and capture their output",
		Long: `Execkit launches programs as child processes, captures their standard
output and standard error concurrently, and reports their exit status.

Every run is recorded in a local history and its captured output is kept in a
log file, so past runs can be reviewed with 'execkit history' and
'execkit logs'.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().CountP("verbose", "v", "increase log verbosity (-v info, -vv debug)")

	rootCmd.AddCommand(
		newRunCmd(),
		newStartCmd(),
		newWhichCmd(),
		newSplitCmd(),
		newPlatformCmd(),
		newHistoryCmd(),
		newLogsCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the CLI with the given context.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// Main runs the CLI against the process arguments and returns the exit code.
func Main() int {
	return exitCode(Execute(context.Background()), os.Stderr)
}

// exitCode maps an Execute error to a process exit code, reporting it on w.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(w, "Error: %v\n", exitErr.Err)
		}
		return exitErr.ExitCode()
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}

// setup loads configuration and wires dependencies into the command context.
// Dependencies already present in the context are kept, which lets tests
// substitute their own.
func setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	loader := LoaderFromContext(ctx)
	if loader == nil {
		var err error
		loader, err = config.NewLoader()
		if err != nil {
			return fmt.Errorf("init config loader: %w", err)
		}
		ctx = WithLoader(ctx, loader)
	}

	cfg := ConfigFromContext(ctx)
	if cfg == nil {
		var err error
		cfg, err = loader.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		ctx = WithConfig(ctx, cfg)
	}

	verbosity, err := cmd.Flags().GetCount("verbose")
	if err != nil {
		return fmt.Errorf("get verbose flag: %w", err)
	}
	if verbosity == 0 {
		verbosity = cfg.Log.Verbosity
	}
	ctx = slogger.WithLogger(ctx, slogger.New(slogger.Config{
		Verbosity: verbosity,
		Output:    cmd.ErrOrStderr(),
	}))

	if ExecutorFromContext(ctx) == nil {
		ctx = WithExecutor(ctx, exec.New())
	}
	if StoreFromContext(ctx) == nil {
		ctx = WithStore(ctx, history.NewStore(cfg.Storage.History, history.WithMaxEntries(cfg.Storage.MaxRuns)))
	}
	if PrompterFromContext(ctx) == nil {
		ctx = WithPrompter(ctx, prompt.New(cmd.OutOrStdout()))
	}

	cmd.SetContext(ctx)
	return nil
}
