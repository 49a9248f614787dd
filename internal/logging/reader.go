package logging

import (
	"bufio"
	"fmt"
	"os"
)

// DefaultTailLines is the default number of lines to read when tailing.
const DefaultTailLines = 100

// Reader provides functionality to read run log files.
type Reader struct {
	pathMgr *PathManager
}

// NewReader creates a new Reader with the given PathManager.
func NewReader(pathMgr *PathManager) *Reader {
	return &Reader{pathMgr: pathMgr}
}

// ReadAll reads the entire log file for a run.
func (r *Reader) ReadAll(runID string) ([]string, error) {
	return readAllLines(r.pathMgr.RunLogPath(runID))
}

// ReadLastN reads the last n lines from a run's log file.
// If n <= 0, uses DefaultTailLines.
func (r *Reader) ReadLastN(runID string, n int) ([]string, error) {
	if n <= 0 {
		n = DefaultTailLines
	}
	return readLastNLines(r.pathMgr.RunLogPath(runID), n)
}

// newScanner returns a line scanner that accepts lines up to 1 MiB, since
// captured output is not line-limited.
func newScanner(file *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return scanner
}

// readAllLines reads all lines from a file.
func readAllLines(path string) ([]string, error) {
	//nolint:gosec // G304: path is constructed from trusted PathManager
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := newScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log file: %w", err)
	}

	return lines, nil
}

// readLastNLines reads the last n lines from a file using a ring buffer.
func readLastNLines(path string, n int) ([]string, error) {
	//nolint:gosec // G304: path is constructed from trusted PathManager
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	ring := make([]string, n)
	idx := 0
	count := 0

	scanner := newScanner(file)
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % n
		count++
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log file: %w", err)
	}

	if count == 0 {
		return nil, nil
	}

	if count < n {
		return ring[:count], nil
	}

	result := make([]string, n)
	for i := range n {
		result[i] = ring[(idx+i)%n]
	}
	return result, nil
}
