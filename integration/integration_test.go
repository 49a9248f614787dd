// Package integration provides end-to-end tests for the execkit CLI using testscript.
package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/jmgilman/execkit/internal/cmd"
	"github.com/jmgilman/execkit/internal/config"
	"github.com/jmgilman/execkit/internal/history"
)

// TestMain registers the in-process execkit command for testscript.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"execkit": cmd.Main,
	}))
}

// TestScripts runs all testscript files in testdata/scripts.
func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata/scripts",
		Setup: setupTestEnv,
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"last_run": cmdLastRun,
			"sleep":    cmdSleep,
		},
		Condition: evalCondition,
	})
}

// setupTestEnv isolates config, history and logs under the work directory.
func setupTestEnv(env *testscript.Env) error {
	testHome := filepath.Join(env.WorkDir, "home")
	configDir := filepath.Join(testHome, config.DefaultConfigDir)

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", configDir, err)
	}

	env.Setenv("HOME", testHome)
	env.Setenv("XDG_CONFIG_HOME", filepath.Join(testHome, ".config"))
	env.Setenv("XDG_DATA_HOME", filepath.Join(testHome, ".local", "share"))

	return nil
}

// evalCondition evaluates custom conditions for testscript.
func evalCondition(cond string) (bool, error) {
	switch cond {
	case "unix":
		return runtime.GOOS != "windows" && runtime.GOOS != "plan9", nil
	case "linux":
		return runtime.GOOS == "linux", nil
	case "darwin":
		return runtime.GOOS == "darwin", nil
	default:
		return false, fmt.Errorf("unknown condition: %s", cond)
	}
}

// cmdLastRun sets $RUN_ID to the most recently recorded run and, with an
// argument, checks its status.
func cmdLastRun(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) > 1 {
		ts.Fatalf("usage: last_run [status]")
	}

	path := filepath.Join(ts.Getenv("HOME"), config.DefaultDataDir, "history.json")
	entries, err := history.NewStore(path).List(context.Background(), history.ListFilter{Limit: 1})
	ts.Check(err)

	if len(entries) == 0 {
		if !neg {
			ts.Fatalf("no runs recorded")
		}
		return
	}
	if neg && len(args) == 0 {
		ts.Fatalf("unexpected run %s", entries[0].ID)
	}

	last := entries[0]
	ts.Setenv("RUN_ID", last.ID)

	if len(args) == 1 {
		matched := string(last.Status) == args[0]
		if matched == neg {
			ts.Fatalf("run %s has status %s", last.ID, last.Status)
		}
	}
}

// cmdSleep pauses execution for the specified number of seconds.
func cmdSleep(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("sleep does not support negation")
	}
	if len(args) < 1 {
		ts.Fatalf("usage: sleep <seconds>")
	}

	var secs float64
	if _, err := fmt.Sscanf(args[0], "%f", &secs); err != nil {
		ts.Fatalf("invalid sleep duration: %s", args[0])
	}

	time.Sleep(time.Duration(secs * float64(time.Second)))
}
