// Package trace persists and reads back per-invocation trace records.
//
// Each tool has its own append-only log, trace-<tool>.txt, beside the
// wrapper executable. A record is a sentinel-delimited text block whose
// byte sections hold the child's streams verbatim:
//
//	---
//	ARGS:<wrapper argv, space-joined>
//	CMD:<toolchain command line>
//	CWD:<working directory used>
//	PATH:<inherited PATH>
//	EXITCODE:<int>
//	STDIN:
//	<bytes>
//	STDOUT:
//	<bytes>
//	STDERR:
//	<bytes>
//	***
package trace

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"zigcc/internal/logging"
)

// Record describes one toolchain invocation. Never mutated once built.
type Record struct {
	Args     []string
	Command  string
	Dir      string
	Path     string
	ExitCode int
	Stdin    []byte
	Stdout   []byte
	Stderr   []byte
}

const (
	beginSentinel = "---\n"
	endSentinel   = "\n***\n"

	stdinHeader  = "STDIN:\n"
	stdoutHeader = "\nSTDOUT:\n"
	stderrHeader = "\nSTDERR:\n"
)

// Render returns the record's on-disk form.
func (r Record) Render() []byte {
	var b bytes.Buffer
	b.Grow(256 + len(r.Stdin) + len(r.Stdout) + len(r.Stderr))
	b.WriteString(beginSentinel)
	b.WriteString("ARGS:" + strings.Join(r.Args, " ") + "\n")
	b.WriteString("CMD:" + r.Command + "\n")
	b.WriteString("CWD:" + r.Dir + "\n")
	b.WriteString("PATH:" + r.Path + "\n")
	b.WriteString("EXITCODE:" + strconv.Itoa(r.ExitCode) + "\n")
	b.WriteString(stdinHeader)
	b.Write(r.Stdin)
	b.WriteString(stdoutHeader)
	b.Write(r.Stdout)
	b.WriteString(stderrHeader)
	b.Write(r.Stderr)
	b.WriteString(endSentinel)
	return b.Bytes()
}

// WriteError means the trace log could not be opened or written. The
// traced invocation itself is unaffected.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write trace %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// FileName returns the trace log name for tool.
func FileName(tool string) string {
	return "trace-" + tool + ".txt"
}

// FilePath returns the trace log for tool inside dir.
func FilePath(dir, tool string) string {
	return filepath.Join(dir, FileName(tool))
}

// Append adds rec to the log at path, creating it if needed. The record
// goes out in a single write so concurrent invocations do not interleave.
func Append(path string, rec Record) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if _, err := f.Write(rec.Render()); err != nil {
		f.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	logging.TraceDebug("appended record to %s (exit=%d)", path, rec.ExitCode)
	return nil
}

// Recorder writes records for every tool into one directory.
type Recorder struct {
	Dir string
}

// Path returns the log file used for tool.
func (r Recorder) Path(tool string) string {
	return FilePath(r.Dir, tool)
}

// Record appends rec to tool's log.
func (r Recorder) Record(tool string, rec Record) error {
	return Append(r.Path(tool), rec)
}
