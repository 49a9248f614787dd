package exec

import (
	"context"
	"strings"
)

// Split breaks a command line into arguments on runs of whitespace.
// Quoting and escaping are not supported; build Command.Args directly for
// arguments that contain spaces. A blank line yields an empty slice.
func Split(line string) []string {
	return strings.Fields(line)
}

// ParseEnv converts KEY=VALUE strings into an override map. Entries without
// a separator, with an empty key or with an empty value are skipped.
func ParseEnv(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" || value == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// ParseCommand builds a Command from a command line, KEY=VALUE environment
// overrides and a working directory.
func ParseCommand(line string, env []string, dir string) Command {
	return Command{
		Args: Split(line),
		Env:  ParseEnv(env),
		Dir:  dir,
	}
}

// RunLine splits line, applies the KEY=VALUE env overrides and dir, and runs
// the result synchronously with e.
func RunLine(ctx context.Context, e Executor, line string, env []string, dir string) (*Result, error) {
	return e.Run(ctx, ParseCommand(line, env, dir))
}

// RunLineAsync is RunLine without waiting for the child.
func RunLineAsync(ctx context.Context, e Executor, line string, env []string, dir string) error {
	return e.RunAsync(ctx, ParseCommand(line, env, dir))
}
