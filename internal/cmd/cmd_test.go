package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/execkit/internal/config"
	"github.com/jmgilman/execkit/internal/exec"
	execmocks "github.com/jmgilman/execkit/internal/exec/mocks"
	"github.com/jmgilman/execkit/internal/history"
	historymocks "github.com/jmgilman/execkit/internal/history/mocks"
	"github.com/jmgilman/execkit/internal/platform"
	promptmocks "github.com/jmgilman/execkit/internal/prompt/mocks"
)

// harness runs the CLI against an isolated config and history.
type harness struct {
	loader   *config.Loader
	cfg      *config.Config
	executor *execmocks.ExecutorMock
	store    history.Store
	prompter *promptmocks.PrompterMock
	printed  []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	home := t.TempDir()
	loader := config.NewLoaderAt(home, filepath.Join(home, "config.yaml"))
	cfg, err := loader.Load()
	require.NoError(t, err)

	h := &harness{
		loader:   loader,
		cfg:      cfg,
		executor: &execmocks.ExecutorMock{},
		store:    history.NewStore(cfg.Storage.History),
	}
	h.prompter = &promptmocks.PrompterMock{
		PrintFunc: func(message string) { h.printed = append(h.printed, message) },
	}
	return h
}

func (h *harness) execute(args ...string) (string, string, error) {
	ctx := context.Background()
	ctx = WithLoader(ctx, h.loader)
	ctx = WithConfig(ctx, h.cfg)
	ctx = WithExecutor(ctx, h.executor)
	ctx = WithStore(ctx, h.store)
	ctx = WithPrompter(ctx, h.prompter)

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func (h *harness) entries(t *testing.T) []history.Entry {
	t.Helper()
	entries, err := h.store.List(context.Background(), history.ListFilter{})
	require.NoError(t, err)
	return entries
}

func returning(result *exec.Result, err error) func(context.Context, exec.Command) (*exec.Result, error) {
	return func(context.Context, exec.Command) (*exec.Result, error) {
		return result, err
	}
}

func TestRunCmd(t *testing.T) {
	t.Run("prints captured output and records the run", func(t *testing.T) {
		h := newHarness(t)
		h.executor.RunFunc = returning(&exec.Result{Stdout: "hello\n", Stderr: "warn\n"}, nil)

		stdout, stderr, err := h.execute("run", "--", "echo", "hello")

		require.NoError(t, err)
		assert.Equal(t, "hello\n", stdout)
		assert.Contains(t, stderr, "warn\n")

		calls := h.executor.RunCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"echo", "hello"}, calls[0].Cmd.Args)

		entries := h.entries(t)
		require.Len(t, entries, 1)
		assert.Equal(t, history.StatusExited, entries[0].Status)
		assert.Equal(t, 0, entries[0].ExitCode)
		assert.False(t, entries[0].FinishedAt.IsZero())
		require.NotEmpty(t, entries[0].LogPath)

		data, err := os.ReadFile(entries[0].LogPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "$ echo hello")
		assert.Contains(t, string(data), "hello\n")
	})

	t.Run("layers flags over configured defaults", func(t *testing.T) {
		h := newHarness(t)
		h.cfg.Exec.Env = []string{"A=1", "B=2"}
		h.cfg.Exec.Dir = "/configured"
		h.executor.RunFunc = returning(&exec.Result{}, nil)

		_, _, err := h.execute("run", "-e", "B=3", "-e", "C=x=y", "-C", "/flag", "--", "env")

		require.NoError(t, err)
		calls := h.executor.RunCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, map[string]string{"A": "1", "B": "3", "C": "x=y"}, calls[0].Cmd.Env)
		assert.Equal(t, "/flag", calls[0].Cmd.Dir)
		assert.Equal(t, []string{"A=1", "B=3", "C=x=y"}, h.entries(t)[0].Env)
	})

	t.Run("uses configured directory when no flag is given", func(t *testing.T) {
		h := newHarness(t)
		h.cfg.Exec.Dir = "/configured"
		h.executor.RunFunc = returning(&exec.Result{}, nil)

		_, _, err := h.execute("run", "--", "pwd")

		require.NoError(t, err)
		assert.Equal(t, "/configured", h.executor.RunCalls()[0].Cmd.Dir)
	})

	t.Run("splits --line on whitespace", func(t *testing.T) {
		h := newHarness(t)
		h.executor.RunFunc = returning(&exec.Result{}, nil)

		_, _, err := h.execute("run", "--line", "  go   test ./... ")

		require.NoError(t, err)
		assert.Equal(t, []string{"go", "test", "./..."}, h.executor.RunCalls()[0].Cmd.Args)
	})

	t.Run("exits with the child's exit code", func(t *testing.T) {
		h := newHarness(t)
		h.executor.RunFunc = returning(&exec.Result{ExitCode: 3, Stdout: "partial\n"}, nil)

		stdout, _, err := h.execute("run", "--", "false")

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 3, exitErr.ExitCode())
		assert.Equal(t, "partial\n", stdout)
		assert.Equal(t, 3, h.entries(t)[0].ExitCode)
	})

	t.Run("--check reports the captured output", func(t *testing.T) {
		h := newHarness(t)
		h.executor.RunFunc = returning(&exec.Result{ExitCode: 2, Stdout: "out\n", Stderr: "bad\n"}, nil)

		stdout, _, err := h.execute("run", "--check", "--", "lint")

		var failed *exec.CommandFailedError
		require.ErrorAs(t, err, &failed)
		assert.Equal(t, 2, failed.ExitCode)
		assert.Equal(t, "bad\n", failed.Stderr)
		assert.Empty(t, stdout)
	})

	t.Run("--check exits with the child's exit code", func(t *testing.T) {
		h := newHarness(t)
		h.executor.RunFunc = returning(&exec.Result{ExitCode: 7, Stderr: "bad\n"}, nil)

		_, _, err := h.execute("run", "--check", "--", "lint")

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 7, exitErr.ExitCode())

		var errOut bytes.Buffer
		assert.Equal(t, 7, exitCode(err, &errOut))
		assert.Contains(t, errOut.String(), "Error: exec process returned 7")
	})

	t.Run("records launch failures", func(t *testing.T) {
		h := newHarness(t)
		runErr := &exec.RunError{Args: []string{"missing"}, Err: errors.New("not found")}
		h.executor.RunFunc = returning(nil, runErr)

		_, _, err := h.execute("run", "--", "missing")

		require.ErrorIs(t, err, runErr)
		entries := h.entries(t)
		require.Len(t, entries, 1)
		assert.Equal(t, history.StatusFailed, entries[0].Status)
		assert.Contains(t, entries[0].Error, "not found")
		assert.Empty(t, entries[0].LogPath)
	})

	t.Run("--no-log skips the log file", func(t *testing.T) {
		h := newHarness(t)
		h.executor.RunFunc = returning(&exec.Result{Stdout: "x"}, nil)

		_, _, err := h.execute("run", "--no-log", "--", "true")

		require.NoError(t, err)
		assert.Empty(t, h.entries(t)[0].LogPath)
	})

	t.Run("does not launch when the run cannot be recorded", func(t *testing.T) {
		h := newHarness(t)
		h.store = &historymocks.StoreMock{
			GetFunc: func(context.Context, string) (*history.Entry, error) {
				return nil, history.ErrNotFound
			},
			AddFunc: func(context.Context, history.Entry) error {
				return history.ErrLockTimeout
			},
		}

		_, _, err := h.execute("run", "--", "true")

		assert.ErrorIs(t, err, history.ErrLockTimeout)
		assert.Empty(t, h.executor.RunCalls())
	})

	t.Run("keeps the result when the history update fails", func(t *testing.T) {
		h := newHarness(t)
		h.executor.RunFunc = returning(&exec.Result{Stdout: "done\n"}, nil)
		store := &historymocks.StoreMock{
			GetFunc: func(context.Context, string) (*history.Entry, error) {
				return nil, history.ErrNotFound
			},
			AddFunc: func(context.Context, history.Entry) error { return nil },
			UpdateFunc: func(context.Context, history.Entry) error {
				return history.ErrNotFound
			},
		}
		h.store = store

		stdout, _, err := h.execute("run", "--", "true")

		require.NoError(t, err)
		assert.Equal(t, "done\n", stdout)
		require.Len(t, store.UpdateCalls(), 1)
		assert.Equal(t, history.StatusExited, store.UpdateCalls()[0].Entry.Status)
	})

	t.Run("rejects a missing command", func(t *testing.T) {
		h := newHarness(t)

		_, _, err := h.execute("run")

		assert.ErrorIs(t, err, exec.ErrEmptyCommand)
		assert.Empty(t, h.executor.RunCalls())
	})

	t.Run("rejects --line with arguments", func(t *testing.T) {
		h := newHarness(t)

		_, _, err := h.execute("run", "--line", "ls", "--", "ls")

		assert.Error(t, err)
		assert.Empty(t, h.executor.RunCalls())
	})

	t.Run("rejects malformed --env", func(t *testing.T) {
		h := newHarness(t)

		_, _, err := h.execute("run", "-e", "NOPE", "--", "true")

		assert.ErrorContains(t, err, "KEY=VALUE")
	})

	t.Run("rejects --env with an empty key or value", func(t *testing.T) {
		for _, entry := range []string{"FOO=", "=bar"} {
			h := newHarness(t)

			_, _, err := h.execute("run", "-e", entry, "--", "true")

			assert.ErrorContains(t, err, "KEY=VALUE", entry)
			assert.Empty(t, h.executor.RunCalls(), entry)
		}
	})
}

func TestRunCmd_RealExecutor(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	h := newHarness(t)
	ctx := context.Background()
	ctx = WithLoader(ctx, h.loader)
	ctx = WithConfig(ctx, h.cfg)
	ctx = WithExecutor(ctx, exec.New())
	ctx = WithStore(ctx, h.store)
	ctx = WithPrompter(ctx, h.prompter)

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs([]string{"run", "-e", "GREETING=hi", "--", "sh", "-c", `echo "$GREETING"; echo oops >&2; exit 4`})
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(ctx)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 4, exitErr.Code)
	assert.Equal(t, "hi\n", stdout.String())
	assert.Contains(t, stderr.String(), "oops\n")
}

func TestStartCmd(t *testing.T) {
	t.Run("prints the run id", func(t *testing.T) {
		h := newHarness(t)
		h.executor.RunAsyncFunc = func(context.Context, exec.Command) error { return nil }

		stdout, _, err := h.execute("start", "--", "sleep", "5")

		require.NoError(t, err)
		require.Len(t, h.executor.RunAsyncCalls(), 1)
		assert.Equal(t, []string{"sleep", "5"}, h.executor.RunAsyncCalls()[0].Cmd.Args)

		entries := h.entries(t)
		require.Len(t, entries, 1)
		assert.Equal(t, entries[0].ID+"\n", stdout)
		assert.Equal(t, history.StatusStarted, entries[0].Status)
	})

	t.Run("sends child output to the run log", func(t *testing.T) {
		h := newHarness(t)
		h.executor.RunAsyncFunc = func(context.Context, exec.Command) error { return nil }

		_, _, err := h.execute("start", "--", "./worker", "--once")

		require.NoError(t, err)
		entries := h.entries(t)
		require.Len(t, entries, 1)
		require.NotEmpty(t, entries[0].LogPath)
		assert.Equal(t, entries[0].LogPath, h.executor.RunAsyncCalls()[0].Cmd.OutputPath)

		data, err := os.ReadFile(entries[0].LogPath)
		require.NoError(t, err)
		assert.Equal(t, "$ ./worker --once\n--- output ---\n", string(data))
	})

	t.Run("discards child output when the log cannot be created", func(t *testing.T) {
		h := newHarness(t)
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0o600))
		h.cfg.Storage.Logs = filepath.Join(blocker, "logs")
		h.executor.RunAsyncFunc = func(context.Context, exec.Command) error { return nil }

		_, _, err := h.execute("start", "--", "sleep", "5")

		require.NoError(t, err)
		assert.Equal(t, os.DevNull, h.executor.RunAsyncCalls()[0].Cmd.OutputPath)
		assert.Empty(t, h.entries(t)[0].LogPath)
	})

	t.Run("records launch failures", func(t *testing.T) {
		h := newHarness(t)
		h.executor.RunAsyncFunc = func(context.Context, exec.Command) error {
			return &exec.RunError{Args: []string{"missing"}, Err: errors.New("not found")}
		}

		stdout, _, err := h.execute("start", "--", "missing")

		var runErr *exec.RunError
		require.ErrorAs(t, err, &runErr)
		assert.Empty(t, stdout)
		assert.Equal(t, history.StatusFailed, h.entries(t)[0].Status)
	})
}

func TestWhichCmd(t *testing.T) {
	t.Run("finds an executable in a directory", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("relies on unix permission bits")
		}
		dir := t.TempDir()
		path := filepath.Join(dir, "tool")
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))

		stdout, _, err := newHarness(t).execute("which", "--dir", dir, "tool")

		require.NoError(t, err)
		assert.Equal(t, path+"\n", stdout)
	})

	t.Run("exits 1 when nothing is found", func(t *testing.T) {
		_, _, err := newHarness(t).execute("which", "--dir", t.TempDir(), "tool")

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 1, exitErr.ExitCode())
		assert.ErrorIs(t, err, errNotFound)
	})
}

func TestSplitCmd(t *testing.T) {
	stdout, _, err := newHarness(t).execute("split", "a  b\tc")

	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", stdout)
}

func TestPlatformCmd(t *testing.T) {
	t.Run("shows tag and binary directory", func(t *testing.T) {
		stdout, _, err := newHarness(t).execute("platform")

		require.NoError(t, err)
		assert.Contains(t, stdout, "platform: "+platform.Detect()+"\n")
		assert.Contains(t, stdout, "self:")
	})

	t.Run("--unix", func(t *testing.T) {
		stdout, _, err := newHarness(t).execute("platform", "--unix")

		require.NoError(t, err)
		want := "false\n"
		if platform.IsUnix(platform.Detect()) {
			want = "true\n"
		}
		assert.Equal(t, want, stdout)
	})
}

func TestHistoryCmd(t *testing.T) {
	seed := func(t *testing.T, h *harness) string {
		t.Helper()
		h.executor.RunFunc = returning(&exec.Result{ExitCode: 1, Stdout: "x\n"}, nil)
		_, _, err := h.execute("run", "--", "make", "test")
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		return h.entries(t)[0].ID
	}

	t.Run("lists recorded runs", func(t *testing.T) {
		h := newHarness(t)
		id := seed(t, h)

		for _, args := range [][]string{{"history"}, {"history", "list"}} {
			stdout, _, err := h.execute(args...)

			require.NoError(t, err)
			assert.Contains(t, stdout, "ID")
			assert.Contains(t, stdout, id)
			assert.Contains(t, stdout, "exited")
			assert.Contains(t, stdout, "make test")
		}
	})

	t.Run("filters by status", func(t *testing.T) {
		h := newHarness(t)
		seed(t, h)

		stdout, _, err := h.execute("history", "list", "--status", "failed")

		require.NoError(t, err)
		assert.Empty(t, stdout)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, _, err := newHarness(t).execute("history", "list", "--status", "bogus")

		assert.ErrorContains(t, err, "invalid status")
	})

	t.Run("clear asks for confirmation", func(t *testing.T) {
		h := newHarness(t)
		seed(t, h)
		h.prompter.ConfirmFunc = func(string, string) (bool, error) { return false, nil }

		_, _, err := h.execute("history", "clear")

		require.NoError(t, err)
		assert.Len(t, h.prompter.ConfirmCalls(), 1)
		assert.Len(t, h.entries(t), 1)
		assert.Equal(t, []string{"Canceled."}, h.printed)
	})

	t.Run("clear --yes removes runs and logs", func(t *testing.T) {
		h := newHarness(t)
		id := seed(t, h)

		_, _, err := h.execute("history", "clear", "--yes")

		require.NoError(t, err)
		assert.Empty(t, h.prompter.ConfirmCalls())
		assert.Empty(t, h.entries(t))
		assert.NoFileExists(t, filepath.Join(h.cfg.Storage.Logs, id+".log"))
		assert.Equal(t, []string{"Removed 1 run(s)."}, h.printed)
	})
}

func TestLogsCmd(t *testing.T) {
	t.Run("prints the captured output", func(t *testing.T) {
		h := newHarness(t)
		h.executor.RunFunc = returning(&exec.Result{Stdout: "one\ntwo\n", Stderr: "three\n"}, nil)
		_, _, err := h.execute("run", "--", "gen")
		require.NoError(t, err)
		id := h.entries(t)[0].ID

		stdout, _, err := h.execute("logs", id, "--full")
		require.NoError(t, err)
		assert.Equal(t, "$ gen\n--- stdout ---\none\ntwo\n--- stderr ---\nthree\n--- exit 0 ---\n", stdout)

		stdout, _, err = h.execute("logs", id, "-n", "2")
		require.NoError(t, err)
		assert.Equal(t, "three\n--- exit 0 ---\n", stdout)
	})

	t.Run("unknown run", func(t *testing.T) {
		_, _, err := newHarness(t).execute("logs", "nobody_here")

		assert.ErrorContains(t, err, "not found")
	})

	t.Run("run without a log", func(t *testing.T) {
		h := newHarness(t)
		h.executor.RunFunc = returning(&exec.Result{}, nil)
		_, _, err := h.execute("run", "--no-log", "--", "true")
		require.NoError(t, err)

		_, _, err = h.execute("logs", h.entries(t)[0].ID)

		assert.ErrorContains(t, err, "no log file")
	})
}

func TestConfigCmd(t *testing.T) {
	t.Run("shows a key", func(t *testing.T) {
		h := newHarness(t)

		stdout, _, err := h.execute("config", "log.verbosity")

		require.NoError(t, err)
		assert.Equal(t, "0\n", stdout)
	})

	t.Run("shows everything as yaml", func(t *testing.T) {
		stdout, _, err := newHarness(t).execute("config")

		require.NoError(t, err)
		assert.Contains(t, stdout, "storage:")
		assert.Contains(t, stdout, "verbosity: 0")
	})

	t.Run("sets a key", func(t *testing.T) {
		h := newHarness(t)

		stdout, _, err := h.execute("config", "log.verbosity", "2")

		require.NoError(t, err)
		assert.Equal(t, "Set log.verbosity = 2\n", stdout)

		cfg, err := h.loader.Load()
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Log.Verbosity)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		_, _, err := newHarness(t).execute("config", "exec.shell")

		assert.ErrorIs(t, err, config.ErrInvalidKey)
	})

	t.Run("--edit requires $EDITOR", func(t *testing.T) {
		t.Setenv("EDITOR", "")

		_, _, err := newHarness(t).execute("config", "--edit")

		assert.ErrorIs(t, err, config.ErrNoEditor)
	})
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := newHarness(t).execute("version")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "execkit "))
	assert.Contains(t, stdout, "commit:")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    int
		wantOut string
	}{
		{name: "success", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: 1, wantOut: "Error: boom\n"},
		{name: "child exit code", err: &ExitError{Code: 42}, want: 42},
		{name: "signal death", err: &ExitError{Code: -1}, want: 1},
		{name: "out of range", err: &ExitError{Code: 300}, want: 1},
		{name: "exit with message", err: &ExitError{Code: 1, Err: errors.New("nope")}, want: 1, wantOut: "Error: nope\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, tt.want, exitCode(tt.err, &out))
			assert.Equal(t, tt.wantOut, out.String())
		})
	}
}
