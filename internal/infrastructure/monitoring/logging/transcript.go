package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Transcript is the per-run log file appended to the output directory by each
// pipeline command.  It records the invocation line, start and finish
// timestamps, warnings, and per-file outcomes, tee'd to an optional console
// writer.  The transcript is peripheral to the pipeline's correctness: every
// write failure is swallowed so that transcript problems can never fail a run.
type Transcript struct {
	file    *os.File
	console io.Writer
}

// OpenTranscript opens (appending, creating if absent) the transcript file
// for the named command in dir, e.g. dir/predict_log.txt, and writes the run
// header: a blank separator, the invocation line, and the start timestamp.
func OpenTranscript(dir, command string, argv []string) (*Transcript, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: create transcript dir: %w", err)
	}
	path := filepath.Join(dir, command+"_log.txt")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open transcript %s: %w", path, err)
	}
	t := &Transcript{file: f, console: os.Stdout}
	t.Printf("")
	t.Printf("%s", strings.Join(argv, " "))
	t.Printf("Start time: %s", Timestamp())
	return t, nil
}

// WithConsole replaces the console writer (stdout by default).  Passing nil
// silences console output; the file sink is unaffected.
func (t *Transcript) WithConsole(w io.Writer) *Transcript {
	t.console = w
	return t
}

// Printf writes one line to the transcript file and the console.
func (t *Transcript) Printf(format string, args ...interface{}) {
	if t == nil {
		return
	}
	line := fmt.Sprintf(format, args...) + "\n"
	if t.file != nil {
		_, _ = t.file.WriteString(line)
	}
	if t.console != nil {
		_, _ = io.WriteString(t.console, line)
	}
}

// Close writes the finish timestamp and closes the file sink.
func (t *Transcript) Close() error {
	if t == nil || t.file == nil {
		return nil
	}
	t.Printf("Finish time: %s", Timestamp())
	err := t.file.Close()
	t.file = nil
	return err
}

// Timestamp returns the wall-clock time in the fixed layout used by all
// transcript entries.
func Timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}
