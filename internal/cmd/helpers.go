package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmgilman/execkit/internal/exec"
	"github.com/jmgilman/execkit/internal/history"
	"github.com/jmgilman/execkit/internal/names"
)

// ExitError makes the CLI exit with Code. Err, when set, is reported first.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns Code clamped to a valid process exit status. A child
// killed by a signal reports -1, which maps to 1.
func (e *ExitError) ExitCode() int {
	if e.Code <= 0 || e.Code > 255 {
		return 1
	}
	return e.Code
}

func requireExecutor(ctx context.Context) (exec.Executor, error) {
	e := ExecutorFromContext(ctx)
	if e == nil {
		return nil, errors.New("executor not initialized")
	}
	return e, nil
}

func requireStore(ctx context.Context) (history.Store, error) {
	store := StoreFromContext(ctx)
	if store == nil {
		return nil, errors.New("history store not initialized")
	}
	return store, nil
}

// addCommandFlags registers the flags that describe a child process.
func addCommandFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("env", "e", nil, "set an environment variable for the child (KEY=VALUE, repeatable)")
	cmd.Flags().StringP("dir", "C", "", "working directory for the child")
	cmd.Flags().String("line", "", "command line to split on whitespace instead of arguments")
}

// commandFromFlags builds the child command from positional arguments or
// --line, layering --env over the configured exec.env defaults.
func commandFromFlags(cmd *cobra.Command, args []string) (exec.Command, error) {
	envFlag, err := cmd.Flags().GetStringArray("env")
	if err != nil {
		return exec.Command{}, fmt.Errorf("get env flag: %w", err)
	}
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return exec.Command{}, fmt.Errorf("get dir flag: %w", err)
	}
	line, err := cmd.Flags().GetString("line")
	if err != nil {
		return exec.Command{}, fmt.Errorf("get line flag: %w", err)
	}

	// ParseEnv drops entries with an empty key or value, so reject them here
	// rather than silently ignoring the flag.
	for _, entry := range envFlag {
		if key, value, ok := strings.Cut(entry, "="); !ok || key == "" || value == "" {
			return exec.Command{}, fmt.Errorf("invalid --env %q: expected KEY=VALUE", entry)
		}
	}

	var env []string
	if cfg := ConfigFromContext(cmd.Context()); cfg != nil {
		env = append(env, cfg.Exec.Env...)
		if dir == "" {
			dir = cfg.Exec.Dir
		}
	}
	env = append(env, envFlag...)

	var c exec.Command
	switch {
	case line != "" && len(args) > 0:
		return exec.Command{}, errors.New("use either --line or arguments, not both")
	case line != "":
		c = exec.ParseCommand(line, env, dir)
	default:
		c = exec.Command{Args: args, Env: exec.ParseEnv(env), Dir: dir}
	}

	if len(c.Args) == 0 {
		return exec.Command{}, fmt.Errorf("%w: pass it after -- or with --line", exec.ErrEmptyCommand)
	}
	return c, nil
}

// newRunID returns a run ID not yet present in the store.
func newRunID(ctx context.Context, store history.Store) (string, error) {
	return names.RunID(func(id string) bool {
		_, err := store.Get(ctx, id)
		return err == nil
	}, 0)
}

// newEntry records the launch parameters of c.
func newEntry(id string, c exec.Command, status history.Status) history.Entry {
	return history.Entry{
		ID:        id,
		Args:      c.Args,
		Dir:       c.Dir,
		Env:       envList(c.Env),
		Status:    status,
		StartedAt: time.Now(),
	}
}

// envList renders overrides as sorted KEY=VALUE entries.
func envList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	list := make([]string, 0, len(env))
	for k, v := range env {
		list = append(list, k+"="+v)
	}
	sort.Strings(list)
	return list
}

// formatTimeAgo formats a time as a human-readable relative time.
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// formatDuration renders a run's duration, or "-" while it is unfinished.
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
