// Package exec launches child processes and captures their output.
//
// A launched child gets its stdin closed immediately, and its stdout and
// stderr are each consumed by a dedicated drain goroutine. A synchronous
// run returns only once the child has exited and both streams have been
// read to the end.
package exec

import (
	"context"
	"fmt"
)

// Command describes a child process to launch.
type Command struct {
	Args []string          // Argument vector; Args[0] is the executable name or path (required)
	Env  map[string]string // Overrides applied on top of the inherited environment
	Dir  string            // Working directory (empty = current)

	// OutputPath, when set, sends the child's stdout and stderr to this file
	// (created or appended) instead of capturing them. The child then keeps
	// working after the launching process exits, and the Result streams are
	// empty.
	OutputPath string
}

// Result holds the outcome of a completed command.
// Non-zero exit codes are reported here, not as errors.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// EnsureOK returns a *CommandFailedError when the command exited non-zero.
func (r *Result) EnsureOK() error {
	if r.ExitCode == 0 {
		return nil
	}
	return &CommandFailedError{
		ExitCode: r.ExitCode,
		Stdout:   r.Stdout,
		Stderr:   r.Stderr,
	}
}

// String summarizes the result for log output.
func (r *Result) String() string {
	return fmt.Sprintf("exit=%d stdout=%dB stderr=%dB", r.ExitCode, len(r.Stdout), len(r.Stderr))
}

// Executor launches child processes.
//
// The context passed to each method carries the logger (see slogger). It does
// not cancel or time out the child; use Start and Process.Kill for that.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/executor.go . Executor
type Executor interface {
	// Run launches the command and blocks until it has exited and both of
	// its output streams are drained.
	// Returns *RunError if the process could not be spawned or waited on.
	Run(ctx context.Context, cmd Command) (*Result, error)

	// RunAsync launches the command and returns without waiting for it.
	// Returns *RunError if the process could not be spawned.
	RunAsync(ctx context.Context, cmd Command) error

	// Start launches the command and returns a handle to it.
	// Returns *LaunchError if the process could not be spawned.
	Start(ctx context.Context, cmd Command) (*Process, error)
}
