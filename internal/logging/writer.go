package logging

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jmgilman/execkit/internal/exec"
)

// Section markers written around each captured stream.
const (
	stdoutHeader = "--- stdout ---"
	stderrHeader = "--- stderr ---"
	outputHeader = "--- output ---"
	exitFooter   = "--- exit %d ---"
)

// WriteResult writes the command line and captured output of a run to path,
// replacing any existing file.
func WriteResult(path string, args []string, result *exec.Result) error {
	//nolint:gosec // G304: path is constructed from trusted PathManager, not arbitrary user input
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create log file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "$ %s\n", strings.Join(args, " "))
	writeSection(w, stdoutHeader, result.Stdout)
	writeSection(w, stderrHeader, result.Stderr)
	fmt.Fprintf(w, exitFooter+"\n", result.ExitCode)

	if err := w.Flush(); err != nil {
		return fmt.Errorf("write log file: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync log file: %w", err)
	}
	return nil
}

// WriteHeader starts the log of a detached run at path, replacing any existing
// file. The child's combined output is appended after the header by the
// process itself, so the log has no exit footer.
func WriteHeader(path string, args []string) error {
	//nolint:gosec // G304: path is constructed from trusted PathManager, not arbitrary user input
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create log file: %w", err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "$ %s\n%s\n", strings.Join(args, " "), outputHeader); err != nil {
		return fmt.Errorf("write log file: %w", err)
	}
	return nil
}

func writeSection(w *bufio.Writer, header, text string) {
	w.WriteString(header + "\n")
	w.WriteString(text)
	if text != "" && !strings.HasSuffix(text, "\n") {
		w.WriteString("\n")
	}
}
