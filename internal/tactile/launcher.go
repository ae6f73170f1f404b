package tactile

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"zigcc/internal/logging"
)

// Child is a running toolchain process. The caller owns the pipe ends until
// the tee workers have drained them and Wait has returned.
type Child struct {
	cmd     *exec.Cmd
	command Command

	// Stdout and Stderr are the parent's read ends.
	Stdout *os.File
	Stderr *os.File

	// Stdin is the parent's write end; nil unless ForwardStdin was set.
	Stdin *os.File
}

// Start spawns the child. On failure every pipe end is closed and a
// *SpawnError is returned.
func Start(cmd Command) (*Child, error) {
	logging.LaunchDebug("Executing: %s (dir=%s)", cmd.CommandString(), cmd.WorkingDirectory)

	var parentEnds, childEnds []*os.File
	closeAll := func(files []*os.File) {
		for _, f := range files {
			f.Close()
		}
	}
	spawnErr := func(err error) error {
		closeAll(parentEnds)
		closeAll(childEnds)
		return &SpawnError{Command: cmd.CommandString(), Dir: cmd.WorkingDirectory, Err: err}
	}

	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, spawnErr(fmt.Errorf("stdout pipe: %w", err))
	}
	parentEnds, childEnds = append(parentEnds, outR), append(childEnds, outW)

	errR, errW, err := os.Pipe()
	if err != nil {
		return nil, spawnErr(fmt.Errorf("stderr pipe: %w", err))
	}
	parentEnds, childEnds = append(parentEnds, errR), append(childEnds, errW)

	execCmd := exec.Command(cmd.Binary, cmd.Argv()...)
	execCmd.Dir = cmd.WorkingDirectory
	execCmd.Env = cmd.Environment
	execCmd.Stdout = outW
	execCmd.Stderr = errW

	child := &Child{cmd: execCmd, command: cmd, Stdout: outR, Stderr: errR}

	if cmd.ForwardStdin {
		inR, inW, err := os.Pipe()
		if err != nil {
			return nil, spawnErr(fmt.Errorf("stdin pipe: %w", err))
		}
		parentEnds, childEnds = append(parentEnds, inW), append(childEnds, inR)
		execCmd.Stdin = inR
		child.Stdin = inW
	}

	if err := execCmd.Start(); err != nil {
		logging.LaunchDebug("Command failed to start: %s - %v", cmd.Binary, err)
		return nil, spawnErr(err)
	}

	// The child holds its own copies now; keeping ours open would stop the
	// read ends from ever seeing end-of-stream.
	closeAll(childEnds)

	return child, nil
}

// Command returns the command the child was started with.
func (c *Child) Command() Command { return c.command }

// Pid returns the child's process id.
func (c *Child) Pid() int { return c.cmd.Process.Pid }

// Wait blocks until the child exits. The error is non-nil only when the
// wait itself failed; a non-zero or missing exit code is reported in the
// outcome.
func (c *Child) Wait() (ExitOutcome, error) {
	err := c.cmd.Wait()
	state := c.cmd.ProcessState
	if state == nil {
		return ExitOutcome{}, fmt.Errorf("wait for %s: %w", c.command.Binary, err)
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return ExitOutcome{}, fmt.Errorf("wait for %s: %w", c.command.Binary, err)
	}

	if code := state.ExitCode(); code >= 0 {
		logging.LaunchDebug("Command exited: %s -> %d", c.command.Binary, code)
		return ExitOutcome{Exited: true, Code: code}, nil
	}

	reason := describeTermination(state)
	logging.LaunchDebug("Command terminated without exit code: %s (%s)", c.command.Binary, reason)
	return ExitOutcome{Reason: reason}, nil
}

// Close releases any pipe ends still held by the parent.
func (c *Child) Close() {
	for _, f := range []*os.File{c.Stdout, c.Stderr, c.Stdin} {
		if f != nil {
			_ = f.Close()
		}
	}
}
