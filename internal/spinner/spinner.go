// Package spinner shows a one-line progress indicator while a command runs.
// The line shows a spinning indicator, a title and the elapsed time, and is
// cleared when the spinner stops so it never lands in the terminal buffer.
package spinner

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// defaultWidth is used when the terminal size cannot be read.
const defaultWidth = 80

// Spinner displays a spinner next to a status title.
type Spinner struct {
	program *tea.Program
	output  io.Writer
	title   string
	started chan struct{}
	once    sync.Once
}

// Enabled reports whether f is a terminal a spinner can draw on.
func Enabled(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// New creates a Spinner that writes to output (os.Stderr when nil).
func New(output io.Writer, title string) *Spinner {
	if output == nil {
		output = os.Stderr
	}
	return &Spinner{
		output:  output,
		title:   title,
		started: make(chan struct{}),
	}
}

// Start runs the spinner until Stop is called. It blocks, so callers run it
// in a goroutine.
func (s *Spinner) Start() error {
	width := defaultWidth
	if f, ok := s.output.(*os.File); ok && Enabled(f) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	s.program = tea.NewProgram(newModel(s.title, width, time.Now()),
		tea.WithOutput(s.output),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	close(s.started)

	_, err := s.program.Run()
	return err
}

// Stop stops the spinner and clears its line. It is safe to call more than
// once and before Start.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		select {
		case <-s.started:
			s.program.Quit()
		default:
		}
	})
}

// Run shows the spinner while fn executes and returns fn's error.
func Run[T any](output io.Writer, title string, fn func() (T, error)) (T, error) {
	s := New(output, title)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Start()
	}()

	v, err := fn()

	<-s.started
	s.Stop()
	<-done
	return v, err
}

// model is the bubbletea model for the spinner.
type model struct {
	spinner  spinner.Model
	title    string
	width    int
	start    time.Time
	now      time.Time
	quitting bool
}

func newModel(title string, width int, start time.Time) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		spinner: s,
		title:   title,
		width:   width,
		start:   start,
		now:     start,
	}
}

// Init implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.now = msg.Time
		return m, cmd

	case tea.QuitMsg:
		m.quitting = true
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) View() string {
	if m.quitting {
		return ""
	}

	elapsed := m.now.Sub(m.start).Truncate(time.Second)
	status := fmt.Sprintf("%s (%s)", m.title, elapsed)

	// Spinner glyph plus one space.
	maxLineWidth := max(m.width-3, 10)
	return m.spinner.View() + " " + truncate(status, maxLineWidth)
}

// truncate shortens a string to fit within maxWidth.
// If truncated, it adds "..." at the end.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return ""
	}
	if len(s) <= maxWidth {
		return s
	}
	return s[:maxWidth-3] + "..."
}
