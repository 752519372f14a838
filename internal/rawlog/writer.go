package rawlog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"latency-monitor/internal/models"
)

const (
	filePrefix = "ping_results_"
	fileSuffix = ".txt"
)

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	" ", "_",
)

// Filename returns the raw log file name for a target
func Filename(target string) string {
	return filePrefix + filenameReplacer.Replace(target) + fileSuffix
}

// Writer appends one line per probe record to a target's raw log file
type Writer struct {
	path       string
	file       *os.File
	buf        *bufio.Writer
	flushEvery int
	pending    int
	closed     bool
}

// Open creates (or appends to) the raw log of target inside dir. Buffered
// lines are flushed every flushEvery records.
func Open(dir, target string, flushEvery int) (*Writer, error) {
	if flushEvery < 1 {
		flushEvery = 1
	}
	path := filepath.Join(dir, Filename(target))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw log for %s: %w", target, err)
	}
	return &Writer{
		path:       path,
		file:       f,
		buf:        bufio.NewWriter(f),
		flushEvery: flushEvery,
	}, nil
}

func (w *Writer) Path() string { return w.path }

// Append writes the record's outcome as one line
func (w *Writer) Append(rec models.Record) error {
	if w.closed {
		return errors.New("raw log is closed")
	}
	if _, err := w.buf.WriteString(rec.Outcome.String() + "\n"); err != nil {
		return fmt.Errorf("failed to write %s: %w", w.path, err)
	}
	w.pending++
	if w.pending >= w.flushEvery {
		return w.Flush()
	}
	return nil
}

// Flush pushes buffered lines to the file
func (w *Writer) Flush() error {
	if w.closed {
		return nil
	}
	w.pending = 0
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", w.path, err)
	}
	return nil
}

// Close flushes and closes the file. Closing twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	flushErr := w.Flush()
	w.closed = true
	closeErr := w.file.Close()
	return errors.Join(flushErr, closeErr)
}

// MultiSink fans records out to several sinks, e.g. a file and the history database
type MultiSink []models.RecordSink

func (m MultiSink) Append(rec models.Record) error {
	for _, s := range m {
		if err := s.Append(rec); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Flush() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
