package exec

import (
	"context"

	"github.com/jmgilman/execkit/internal/slogger"
)

type executor struct{}

// New returns a new Executor that uses os/exec.
func New() Executor {
	return &executor{}
}

func (e *executor) Run(ctx context.Context, cmd Command) (*Result, error) {
	p, err := launch(ctx, cmd)
	if err != nil {
		return nil, &RunError{Args: cmd.Args, Err: err}
	}

	result, err := p.Wait()
	if err != nil {
		return result, err
	}

	slogger.L(ctx).Info("exec finished", "status", result.ExitCode)
	return result, nil
}

func (e *executor) RunAsync(ctx context.Context, cmd Command) error {
	if _, err := launch(ctx, cmd); err != nil {
		return &RunError{Args: cmd.Args, Err: err}
	}
	return nil
}

func (e *executor) Start(ctx context.Context, cmd Command) (*Process, error) {
	return launch(ctx, cmd)
}
