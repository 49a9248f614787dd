package exec

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/jmgilman/execkit/internal/slogger"
)

// monitor is the single coordination point of a launched process. The reaper
// and both drains record their completion here and wake every waiter.
type monitor struct {
	mu       sync.Mutex
	cond     *sync.Cond
	exited   bool
	finished [2]bool
	exitCode int
	waitErr  error
}

func newMonitor() *monitor {
	m := &monitor{exitCode: -1}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// complete reports whether the process exited and both streams are drained.
// Callers must hold mu.
func (m *monitor) complete() bool {
	return m.exited && m.finished[stdoutStream] && m.finished[stderrStream]
}

type stream int

const (
	stdoutStream stream = iota
	stderrStream
)

func (s stream) String() string {
	if s == stdoutStream {
		return "stdout"
	}
	return "stderr"
}

// Drain consumes one output stream of a child process into memory.
type Drain struct {
	stream stream
	mon    *monitor
	buf    bytes.Buffer // written only by run
}

func newDrain(s stream, mon *monitor) *Drain {
	return &Drain{stream: s, mon: mon}
}

// run reads r until EOF or a read error. The drain is marked finished before
// r is closed.
func (d *Drain) run(ctx context.Context, r io.ReadCloser) {
	defer r.Close()
	defer d.finish()

	if _, err := d.buf.ReadFrom(r); err != nil {
		slogger.L(ctx).Error("error reading from stream",
			"error", &StreamReadError{Stream: d.stream.String(), Err: err})
	}
}

func (d *Drain) finish() {
	d.mon.mu.Lock()
	d.mon.finished[d.stream] = true
	d.mon.cond.Broadcast()
	d.mon.mu.Unlock()
}

// Finished reports whether the stream has been read to the end.
func (d *Drain) Finished() bool {
	d.mon.mu.Lock()
	defer d.mon.mu.Unlock()
	return d.mon.finished[d.stream]
}

// Output returns the captured text once the drain has finished.
// The second return value is false while the stream is still being read.
func (d *Drain) Output() (string, bool) {
	d.mon.mu.Lock()
	defer d.mon.mu.Unlock()
	if !d.mon.finished[d.stream] {
		return "", false
	}
	return d.buf.String(), true
}
