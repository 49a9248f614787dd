package exec

import (
	"context"
	"errors"
	"fmt"
	"os"
	osexec "os/exec"

	"github.com/jmgilman/execkit/internal/slogger"
)

// Process is a handle to a launched child process.
type Process struct {
	args   []string
	cmd    *osexec.Cmd
	mon    *monitor
	stdout *Drain
	stderr *Drain
}

// Pid returns the operating system process ID of the child.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Stdout returns the drain bound to the child's standard output.
func (p *Process) Stdout() *Drain {
	return p.stdout
}

// Stderr returns the drain bound to the child's standard error.
func (p *Process) Stderr() *Drain {
	return p.stderr
}

// Alive reports whether the child has not yet been observed to exit.
func (p *Process) Alive() bool {
	p.mon.mu.Lock()
	defer p.mon.mu.Unlock()
	return !p.mon.exited
}

// Kill terminates the child. Killing a child that already exited is not an error.
func (p *Process) Kill() error {
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill process %d: %w", p.Pid(), err)
	}
	return nil
}

// Wait blocks until the child has exited and both output streams are drained.
// Exit and drain completion may happen in either order. Wait may be called
// more than once and from several goroutines.
//
// A non-zero exit is reported through Result.ExitCode. A child killed by a
// signal reports -1. Returns *RunError if waiting on the child failed.
func (p *Process) Wait() (*Result, error) {
	p.mon.mu.Lock()
	for !p.mon.complete() {
		p.mon.cond.Wait()
	}
	result := &Result{
		ExitCode: p.mon.exitCode,
		Stdout:   p.stdout.buf.String(),
		Stderr:   p.stderr.buf.String(),
	}
	waitErr := p.mon.waitErr
	p.mon.mu.Unlock()

	if waitErr != nil {
		return result, &RunError{Args: p.args, Err: waitErr}
	}
	return result, nil
}

// reap waits for the child to exit. It is the only caller of cmd.Wait.
func (p *Process) reap(ctx context.Context) {
	err := p.cmd.Wait()

	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) {
		err = nil
	}
	code := p.cmd.ProcessState.ExitCode()

	p.mon.mu.Lock()
	p.mon.exited = true
	p.mon.exitCode = code
	p.mon.waitErr = err
	p.mon.cond.Broadcast()
	p.mon.mu.Unlock()

	if err != nil {
		slogger.L(ctx).Error("wait for process", "pid", p.Pid(), "error", err)
		return
	}
	slogger.L(ctx).Debug("process exited", "pid", p.Pid(), "status", code)
}
