// Package history records the commands launched through execkit.
package history

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for history operations.
var (
	ErrNotFound           = errors.New("run not found")
	ErrAlreadyExists      = errors.New("run already exists")
	ErrLockTimeout        = errors.New("failed to acquire history lock")
	ErrUnsupportedVersion = errors.New("unsupported history file version")
)

// Status represents the lifecycle state of a recorded run.
type Status string

const (
	StatusRunning Status = "running" // Synchronous run in progress
	StatusStarted Status = "started" // Asynchronous run; outcome is never observed
	StatusExited  Status = "exited"  // Completed; ExitCode is valid
	StatusFailed  Status = "failed"  // Could not be launched or waited on
)

// Entry represents a recorded run.
type Entry struct {
	ID         string    `json:"id"`
	Args       []string  `json:"args"`
	Dir        string    `json:"dir,omitempty"`
	Env        []string  `json:"env,omitempty"` // Overrides only, KEY=VALUE
	Status     Status    `json:"status"`
	ExitCode   int       `json:"exit_code"`
	Error      string    `json:"error,omitempty"`
	LogPath    string    `json:"log_path,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// Duration returns how long a finished run took, or zero while it is unfinished.
func (e *Entry) Duration() time.Duration {
	if e.FinishedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

// ListFilter filters history queries.
type ListFilter struct {
	Status Status // Filter by status (empty = all)
	Limit  int    // Return only the most recent Limit entries (0 = all)
}

// Store provides persistent storage for run entries.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/store.go . Store
type Store interface {
	// Add records a new run.
	// Returns ErrAlreadyExists if an entry with the same ID exists.
	Add(ctx context.Context, entry Entry) error

	// Get retrieves a run by ID.
	// Returns ErrNotFound if not found.
	Get(ctx context.Context, id string) (*Entry, error)

	// Update replaces an existing run.
	// Returns ErrNotFound if not found.
	Update(ctx context.Context, entry Entry) error

	// List returns runs matching the filter, oldest first.
	List(ctx context.Context, filter ListFilter) ([]Entry, error)

	// Clear removes every run and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
