package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

const (
	lockTimeout = 5 * time.Second
	fileMode    = 0o644
	dirMode     = 0o755

	// fileVersion is the on-disk format written by this package.
	fileVersion = 1
)

// historyFile represents the on-disk history format. Entries are kept in
// the order they were added, oldest first.
type historyFile struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

type jsonStore struct {
	path       string
	maxEntries int
	mu         sync.RWMutex
}

// Option configures a history store.
type Option func(*jsonStore)

// WithMaxEntries caps the history at n runs. Adding a run beyond the cap
// drops the oldest finished runs together with their log files. Runs still
// in progress are never dropped. n <= 0 keeps every run.
func WithMaxEntries(n int) Option {
	return func(s *jsonStore) {
		s.maxEntries = n
	}
}

// NewStore creates a new JSON-backed history store.
func NewStore(path string, opts ...Option) Store {
	s := &jsonStore{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *jsonStore) Add(ctx context.Context, entry Entry) error {
	var dropped []Entry

	err := s.withExclusiveLock(ctx, func(hf *historyFile) error {
		for _, e := range hf.Entries {
			if e.ID == entry.ID {
				return ErrAlreadyExists
			}
		}

		hf.Entries = append(hf.Entries, entry)
		hf.Entries, dropped = prune(hf.Entries, s.maxEntries)
		return nil
	})
	if err != nil {
		return err
	}

	removeLogs(dropped)
	return nil
}

// prune drops the oldest entries until at most limit remain. Running
// entries are skipped, so the result can stay above limit while many runs
// are in progress.
func prune(entries []Entry, limit int) (kept, dropped []Entry) {
	excess := len(entries) - limit
	if limit <= 0 || excess <= 0 {
		return entries, nil
	}

	kept = make([]Entry, 0, limit)
	for _, e := range entries {
		if excess > 0 && e.Status != StatusRunning {
			dropped = append(dropped, e)
			excess--
			continue
		}
		kept = append(kept, e)
	}
	return kept, dropped
}

// removeLogs deletes the log files of dropped runs. The history no longer
// points at them, so failures only leave a stray file behind.
func removeLogs(entries []Entry) {
	for _, e := range entries {
		if e.LogPath != "" {
			os.Remove(e.LogPath) //nolint:errcheck // best effort
		}
	}
}

func (s *jsonStore) Get(ctx context.Context, id string) (*Entry, error) {
	var result *Entry

	err := s.withSharedLock(ctx, func(hf *historyFile) error {
		for i := range hf.Entries {
			if hf.Entries[i].ID == id {
				entry := hf.Entries[i]
				result = &entry
				return nil
			}
		}
		return ErrNotFound
	})

	return result, err
}

func (s *jsonStore) Update(ctx context.Context, entry Entry) error {
	return s.withExclusiveLock(ctx, func(hf *historyFile) error {
		for i := range hf.Entries {
			if hf.Entries[i].ID == entry.ID {
				hf.Entries[i] = entry
				return nil
			}
		}
		return ErrNotFound
	})
}

func (s *jsonStore) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	result := []Entry{}

	err := s.withSharedLock(ctx, func(hf *historyFile) error {
		for _, e := range hf.Entries {
			if filter.Status != "" && e.Status != filter.Status {
				continue
			}
			result = append(result, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[len(result)-filter.Limit:]
	}
	return result, nil
}

func (s *jsonStore) Clear(ctx context.Context) (int, error) {
	var removed int

	err := s.withExclusiveLock(ctx, func(hf *historyFile) error {
		removed = len(hf.Entries)
		hf.Entries = []Entry{}
		return nil
	})

	return removed, err
}

// withSharedLock executes fn with a shared (read) lock.
func (s *jsonStore) withSharedLock(ctx context.Context, fn func(*historyFile) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hf, file, err := s.openAndLock(ctx, false)
	if err != nil {
		return err
	}
	defer unlockAndClose(file)

	return fn(hf)
}

// withExclusiveLock executes fn with an exclusive (write) lock.
// Changes made by fn are persisted to disk.
func (s *jsonStore) withExclusiveLock(ctx context.Context, fn func(*historyFile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hf, file, err := s.openAndLock(ctx, true)
	if err != nil {
		return err
	}
	defer unlockAndClose(file)

	if err := fn(hf); err != nil {
		return err
	}

	return s.save(hf)
}

// openAndLock opens the history file and acquires a lock.
func (s *jsonStore) openAndLock(ctx context.Context, exclusive bool) (*historyFile, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return nil, nil, fmt.Errorf("create history directory: %w", err)
	}

	file, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE, fileMode)
	if err != nil {
		return nil, nil, fmt.Errorf("open history file: %w", err)
	}

	lockType := syscall.LOCK_SH
	if exclusive {
		lockType = syscall.LOCK_EX
	}

	if err := acquireLock(ctx, file, lockType); err != nil {
		file.Close()
		return nil, nil, err
	}

	hf, err := load(file)
	if err != nil {
		unlockAndClose(file)
		return nil, nil, err
	}

	return hf, file, nil
}

// acquireLock attempts to acquire a file lock, polling until lockTimeout.
func acquireLock(ctx context.Context, file *os.File, lockType int) error {
	deadline := time.Now().Add(lockTimeout)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := syscall.Flock(int(file.Fd()), lockType|syscall.LOCK_NB)
		if err == nil {
			return nil
		}

		if err != syscall.EWOULDBLOCK {
			return fmt.Errorf("acquire file lock: %w", err)
		}

		if time.Now().After(deadline) {
			return ErrLockTimeout
		}

		time.Sleep(10 * time.Millisecond)
	}
}

func unlockAndClose(file *os.File) {
	syscall.Flock(int(file.Fd()), syscall.LOCK_UN) //nolint:errcheck // closing releases the lock anyway
	file.Close()
}

// load reads and parses the history file.
func load(file *os.File) (*historyFile, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat history file: %w", err)
	}

	if info.Size() == 0 {
		return &historyFile{Version: fileVersion, Entries: []Entry{}}, nil
	}

	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("seek history file: %w", err)
	}

	var hf historyFile
	if err := json.NewDecoder(file).Decode(&hf); err != nil {
		return nil, fmt.Errorf("decode history file: %w", err)
	}
	if hf.Version > fileVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, hf.Version)
	}

	return &hf, nil
}

// save writes the history to disk atomically.
func (s *jsonStore) save(hf *historyFile) error {
	hf.Version = fileVersion

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "history-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(hf); err != nil {
		tmp.Close()
		return fmt.Errorf("encode history: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename history file: %w", err)
	}

	tmpPath = ""
	return nil
}
