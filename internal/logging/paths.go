// Package logging persists the captured output of execkit runs.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const logExt = ".log"

// PathManager handles log file path construction and directory management.
type PathManager struct {
	baseDir string
}

// NewPathManager creates a new PathManager with the given base directory.
// The base directory is typically ~/.local/share/execkit/logs.
func NewPathManager(baseDir string) *PathManager {
	return &PathManager{baseDir: baseDir}
}

// BaseDir returns the base log directory.
func (p *PathManager) BaseDir() string {
	return p.baseDir
}

// RunLogPath returns the full path for a run's log file.
// Path format: <baseDir>/<runID>.log
func (p *PathManager) RunLogPath(runID string) string {
	return filepath.Join(p.baseDir, runID+logExt)
}

// EnsureRunLog creates the base directory if needed and returns the run's
// log file path.
func (p *PathManager) EnsureRunLog(runID string) (string, error) {
	if err := os.MkdirAll(p.baseDir, 0o750); err != nil {
		return "", fmt.Errorf("create log directory: %w", err)
	}
	return p.RunLogPath(runID), nil
}

// LogExists checks if a log file exists for the given run.
func (p *PathManager) LogExists(runID string) bool {
	_, err := os.Stat(p.RunLogPath(runID))
	return err == nil
}

// RemoveAll removes every run log under the base directory and returns how
// many were removed.
func (p *PathManager) RemoveAll() (int, error) {
	runs, err := p.ListRunLogs()
	if err != nil {
		return 0, err
	}
	for _, id := range runs {
		if err := os.Remove(p.RunLogPath(id)); err != nil && !os.IsNotExist(err) {
			return 0, fmt.Errorf("remove run log: %w", err)
		}
	}
	return len(runs), nil
}

// ListRunLogs returns the IDs of runs that have log files.
func (p *PathManager) ListRunLogs() ([]string, error) {
	entries, err := os.ReadDir(p.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log directory: %w", err)
	}

	var runs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(entry.Name(), logExt); ok {
			runs = append(runs, name)
		}
	}
	return runs, nil
}
