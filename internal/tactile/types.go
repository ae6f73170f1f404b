// Package tactile launches the toolchain child and relays its output.
//
// A Child owns the parent's ends of the stdout/stderr pipes (and the stdin
// pipe when forwarding is on). The pipes are plain OS pipes rather than
// exec.Cmd's copying pipes, so Wait can run concurrently with the tee
// workers: Wait never closes the read ends, and each worker drains its pipe
// to end-of-stream on its own.
package tactile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Stream selects one of the child's standard streams.
type Stream int

const (
	StreamStdout Stream = iota
	StreamStderr
	StreamStdin
)

func (s Stream) String() string {
	switch s {
	case StreamStdout:
		return "stdout"
	case StreamStderr:
		return "stderr"
	case StreamStdin:
		return "stdin"
	default:
		return fmt.Sprintf("stream(%d)", int(s))
	}
}

// Destinations are the caller-visible streams output is relayed to.
type Destinations struct {
	Stdout io.Writer
	Stderr io.Writer
}

// StdDestinations relays to the wrapper's own stdout and stderr.
func StdDestinations() Destinations {
	return Destinations{Stdout: os.Stdout, Stderr: os.Stderr}
}

// For returns the destination for stream, or io.Discard when none is set.
func (d Destinations) For(s Stream) io.Writer {
	var w io.Writer
	switch s {
	case StreamStdout:
		w = d.Stdout
	case StreamStderr:
		w = d.Stderr
	}
	if w == nil {
		return io.Discard
	}
	return w
}

// Command describes one toolchain invocation: `<Binary> <Tool> <Arguments...>`.
type Command struct {
	// Binary is the toolchain executable.
	Binary string

	// Tool is the toolchain subcommand (cc, c++, ranlib, ...).
	Tool string

	// Arguments follow the subcommand.
	Arguments []string

	// WorkingDirectory is the child's cwd. Empty inherits the wrapper's.
	WorkingDirectory string

	// Environment in KEY=VALUE form. Nil inherits the wrapper's.
	Environment []string

	// ForwardStdin pipes stdin to the child instead of the null device.
	ForwardStdin bool
}

// Argv returns the child's argument vector after the binary.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Arguments)+1)
	argv = append(argv, c.Tool)
	return append(argv, c.Arguments...)
}

// CommandString returns the full command as a string (for display/logging).
func (c Command) CommandString() string {
	return strings.Join(append([]string{c.Binary}, c.Argv()...), " ")
}

// ExitOutcome is the result of waiting on the child.
type ExitOutcome struct {
	// Exited is false when the child terminated without an exit code.
	Exited bool

	// Code is the exit status; only meaningful when Exited.
	Code int

	// Reason describes an abnormal termination (e.g. "signal: killed").
	Reason string
}

// Capture is the output one worker collected. Data is complete up to Err.
type Capture struct {
	Stream Stream
	Data   []byte
	Err    error
}

// ErrUnknownExitCode matches AbnormalExitError.
var ErrUnknownExitCode = errors.New("unknown exit code")

// SpawnError means the child could not be started; no process exists.
type SpawnError struct {
	Command string
	Dir     string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to run `%s` in %q: %v", e.Command, e.Dir, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// AbnormalExitError means the child terminated without an exit code.
type AbnormalExitError struct {
	Command string
	Reason  string
}

func (e *AbnormalExitError) Error() string {
	return fmt.Sprintf("fail to run `%s` with unknown code (%s)", e.Command, e.Reason)
}

func (e *AbnormalExitError) Is(target error) bool { return target == ErrUnknownExitCode }

// StreamError is a mid-stream read failure; the capture is partial.
type StreamError struct {
	Stream Stream
	Err    error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("error reading child %s: %v", e.Stream, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }
