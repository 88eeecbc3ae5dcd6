// Package event serializes the driver's totally ordered event stream.
// The writer is stateful: it tracks open test-program and test-case
// scopes and rejects events that would violate the stream's nesting
// invariants, treating that as a structural bug rather than a
// user-facing error.
package event

import (
	"bufio"
	"fmt"
	"io"
)

// Writer emits the atf-tps wire format to an underlying sink and enforces
// event ordering across the run.
type Writer struct {
	w            *bufio.Writer
	countEmitted bool
	inProgram    bool
	programCases int
	casesSeen    int
	inCase       bool
	currentCase  string
}

// NewWriter wraps sink and immediately emits the format header:
// Content-Type: application/X-atf-tps; version="3".
func NewWriter(sink io.Writer) (*Writer, error) {
	w := &Writer{w: bufio.NewWriter(sink)}
	if _, err := fmt.Fprintln(w.w, `Content-Type: application/X-atf-tps; version="3"`); err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintln(w.w); err != nil {
		return nil, err
	}
	return w, nil
}

// TpsCount emits the run-wide program count. Must be the first event.
func (w *Writer) TpsCount(n int) error {
	if w.countEmitted {
		return fmt.Errorf("tps-count already emitted")
	}
	w.countEmitted = true
	return w.line("tps-count: %d", n)
}

// TpStart opens a test-program scope with its declared case count.
func (w *Writer) TpStart(path string, caseCount int) error {
	if !w.countEmitted {
		return fmt.Errorf("tp-start before tps-count")
	}
	if w.inProgram {
		return fmt.Errorf("tp-start while another program is still open")
	}
	w.inProgram = true
	w.programCases = caseCount
	w.casesSeen = 0
	return w.line("tp-start: %s, %d", path, caseCount)
}

// TcStart opens a test-case scope within the current program.
func (w *Writer) TcStart(name string) error {
	if !w.inProgram {
		return fmt.Errorf("tc-start outside of an open test program")
	}
	if w.inCase {
		return fmt.Errorf("tc-start while case %q is still open", w.currentCase)
	}
	w.inCase = true
	w.currentCase = name
	return w.line("tc-start: %s", name)
}

// TcStdout emits one captured stdout line for the current case.
func (w *Writer) TcStdout(line string) error {
	if !w.inCase {
		return fmt.Errorf("tc-so outside of an open test case")
	}
	return w.line("tc-so: %s", line)
}

// TcStderr emits one captured stderr line for the current case.
func (w *Writer) TcStderr(line string) error {
	if !w.inCase {
		return fmt.Errorf("tc-se outside of an open test case")
	}
	return w.line("tc-se: %s", line)
}

// TcEnd closes the current case with its arbitrated state and reason. name
// must match the case opened by the most recent TcStart.
func (w *Writer) TcEnd(name, state, reason string) error {
	if !w.inCase {
		return fmt.Errorf("tc-end without a matching tc-start")
	}
	if w.currentCase != name {
		return fmt.Errorf("tc-end for %q does not match open case %q", name, w.currentCase)
	}
	w.inCase = false
	w.casesSeen++
	return w.line("tc-end: %s, %s, %s", name, state, reason)
}

// TpEnd closes the current program scope. errMsg empty means success.
func (w *Writer) TpEnd(path, errMsg string) error {
	if !w.inProgram {
		return fmt.Errorf("tp-end without a matching tp-start")
	}
	if w.inCase {
		return fmt.Errorf("tp-end while case %q is still open", w.currentCase)
	}
	w.inProgram = false
	if err := w.line("tp-end: %s, %s", path, errMsg); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) line(format string, args ...interface{}) error {
	_, err := fmt.Fprintf(w.w, format+"\n", args...)
	return err
}
