package exec

import (
	"context"
	"fmt"
	"maps"
	"os"
	osexec "os/exec"
	"slices"
	"strings"

	"github.com/jmgilman/execkit/internal/slogger"
)

// launch spawns the child described by c, closes its stdin and starts the
// drain and reaper goroutines.
func launch(ctx context.Context, c Command) (*Process, error) {
	if len(c.Args) == 0 {
		return nil, &LaunchError{Args: c.Args, Err: ErrEmptyCommand}
	}

	// The drains and reaper outlive the caller's context for async runs.
	ctx = context.WithoutCancel(ctx)
	slogger.L(ctx).Debug("exec", "args", c.Args, "dir", c.Dir)

	// G204: This is intentional - we're an executor that runs caller-specified commands.
	cmd := osexec.Command(c.Args[0], c.Args[1:]...) //nolint:gosec // Intentional subprocess execution
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), c.Env)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &LaunchError{Args: c.Args, Err: fmt.Errorf("create stdin pipe: %w", err)}
	}

	mon := newMonitor()
	p := &Process{
		args:   c.Args,
		cmd:    cmd,
		mon:    mon,
		stdout: newDrain(stdoutStream, mon),
		stderr: newDrain(stderrStream, mon),
	}

	if c.OutputPath != "" {
		err = startToFile(p, c.OutputPath)
	} else {
		err = startPiped(ctx, p)
	}
	if err != nil {
		stdin.Close()
		return nil, &LaunchError{Args: c.Args, Err: err}
	}

	// No input is ever sent; the child sees EOF on stdin.
	stdin.Close()

	go p.reap(ctx)

	return p, nil
}

// mergeEnv appends overrides to base, dropping base entries whose key is
// overridden. Overrides are appended in key order.
func mergeEnv(base []string, overrides map[string]string) []string {
	env := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[key]; ok {
			continue
		}
		env = append(env, kv)
	}
	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		env = append(env, key+"="+overrides[key])
	}
	return env
}

// startPiped starts the child with one pipe per output stream and a drain
// reading each. *os.File writers are handed to the child directly, so the
// parent drops its copies of the write ends once the child holds them.
func startPiped(ctx context.Context, p *Process) error {
	outR, outW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		closeAll(outR, outW)
		return fmt.Errorf("create stderr pipe: %w", err)
	}

	p.cmd.Stdout = outW
	p.cmd.Stderr = errW

	startErr := p.cmd.Start()
	closeAll(outW, errW)
	if startErr != nil {
		closeAll(outR, errR)
		return startErr
	}

	go p.stdout.run(ctx, outR)
	go p.stderr.run(ctx, errR)
	return nil
}

// startToFile starts the child with both output streams appended to path.
// Nothing is captured, so both drains are finished up front.
func startToFile(p *Process, path string) error {
	//nolint:gosec // G304: path is chosen by the caller, like the command itself
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer f.Close()

	p.cmd.Stdout = f
	p.cmd.Stderr = f
	if err := p.cmd.Start(); err != nil {
		return err
	}

	p.stdout.finish()
	p.stderr.finish()
	return nil
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		f.Close()
	}
}
