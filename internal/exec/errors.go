package exec

import (
	"errors"
	"fmt"
)

// ErrEmptyCommand is returned when a command has no arguments.
var ErrEmptyCommand = errors.New("empty command")

// LaunchError is returned when the host could not spawn a process.
type LaunchError struct {
	Args []string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %v: %v", e.Args, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// RunError is returned when a run fails at the host level, either while
// spawning the process or while waiting for it.
type RunError struct {
	Args []string
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %v: %v", e.Args, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// StreamReadError describes an I/O failure while draining an output stream.
// It is logged and never returned; the output read before the failure is kept.
type StreamReadError struct {
	Stream string
	Err    error
}

func (e *StreamReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Stream, e.Err)
}

func (e *StreamReadError) Unwrap() error {
	return e.Err
}

// CommandFailedError is returned by Result.EnsureOK for a non-zero exit.
type CommandFailedError struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("exec process returned %d.  stdout:\n%s\nstderr:\n%s", e.ExitCode, e.Stdout, e.Stderr)
}
