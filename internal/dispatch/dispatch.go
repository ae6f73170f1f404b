// Package dispatch runs one toolchain invocation end to end: rewrite the
// arguments, spawn the child, relay its output, wait, and optionally append
// a trace record.
package dispatch

import (
	"io"
	"strings"

	"zigcc/internal/build"
	"zigcc/internal/config"
	"zigcc/internal/logging"
	"zigcc/internal/rewrite"
	"zigcc/internal/tactile"
	"zigcc/internal/trace"
)

// Invocation is one request to run a toolchain subcommand.
type Invocation struct {
	// Binary is the toolchain executable.
	Binary string

	// Tool is the subcommand (cc, c++, ar, ...).
	Tool string

	// Defaults come from configuration and precede Args.
	Defaults []string

	// Args are the caller's arguments, without the program name.
	Args []string
}

// NewInvocation builds the invocation of tool described by cfg.
func NewInvocation(cfg *config.Config, tool string, args []string) Invocation {
	return Invocation{
		Binary:   cfg.Zig,
		Tool:     tool,
		Defaults: DefaultArgs(cfg, tool),
		Args:     args,
	}
}

// Options are the per-invocation switches taken from configuration.
type Options struct {
	Trace        bool
	ForwardStdin bool
	IDEMarkers   []string
}

// OptionsFrom extracts Options from cfg.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		Trace:        cfg.Trace,
		ForwardStdin: cfg.ForwardStdin,
		IDEMarkers:   cfg.IDEMarkers,
	}
}

// Env is what the invocation takes from the wrapper process.
type Env struct {
	// InstallDir holds the wrapper executable, its config and trace logs.
	InstallDir string

	// Cwd is the caller's working directory.
	Cwd string

	// Path is the inherited PATH value.
	Path string

	// Environ is the inherited environment.
	Environ []string

	// WrapperArgs is the wrapper's full argv, recorded in traces.
	WrapperArgs []string

	// Stdin is forwarded to the child when forwarding is on.
	Stdin io.Reader

	// Dst receives the relayed child output.
	Dst tactile.Destinations

	// TempDir holds generated files; empty means the system default.
	TempDir string
}

// Run executes inv and returns the exit status to report. The error is set
// whenever something other than the child's own exit code needs reporting;
// for a trace write failure the status is still the child's.
func Run(inv Invocation, opts Options, env Env) (int, error) {
	// Rewriting
	temps := rewrite.NewTempSet(env.TempDir)
	defer temps.Cleanup()

	args, err := rewrite.New().Rewrite(inv.Tool, inv.Defaults, inv.Args, temps)
	if err != nil {
		return 1, err
	}
	probes := rewrite.DetectProbes(inv.Defaults, inv.Args, env.Cwd, opts.IDEMarkers)
	dir := rewrite.WorkDir(probes, env.Cwd, env.InstallDir)
	if probes.Any() {
		logging.Rewrite("probe %+v: running in %s", probes, dir)
	}

	// Spawning
	cmd := tactile.Command{
		Binary:           inv.Binary,
		Tool:             inv.Tool,
		Arguments:        args,
		WorkingDirectory: dir,
		Environment:      build.ChildEnv(env.Environ, inv.Binary, env.Path),
		ForwardStdin:     opts.ForwardStdin,
	}
	child, err := tactile.Start(cmd)
	if err != nil {
		return 1, err
	}
	defer child.Close()
	logging.LaunchDebug("started pid %d", child.Pid())

	// Running
	finished := tactile.NewFinished()
	tees := tactile.StartTees(child, env.Dst)
	var fwd *tactile.Forwarder
	if child.Stdin != nil {
		stdin := env.Stdin
		if stdin == nil {
			stdin = strings.NewReader("")
		}
		fwd = tactile.StartForwarder(stdin, child.Stdin, finished)
	}

	outcome, waitErr := child.Wait()
	finished.Set()
	stdout, stderr, streamErr := tees.Join()
	if streamErr != nil {
		logging.LaunchDebug("output capture incomplete: %v", streamErr)
	}

	// Exited
	if waitErr != nil {
		return 1, waitErr
	}
	command := child.Command().CommandString()
	if !outcome.Exited {
		return 1, &tactile.AbnormalExitError{Command: command, Reason: outcome.Reason}
	}
	logging.Launch("%s exited with %d", command, outcome.Code)
	if !opts.Trace {
		return outcome.Code, nil
	}

	// Tracing. The forwarder is only joined here: with tracing off a
	// forwarder blocked on an idle stdin must not hold up the exit.
	var forwarded []byte
	if fwd != nil {
		forwarded = fwd.Join().Data
	}
	rec := trace.Record{
		Args:     env.WrapperArgs,
		Command:  command,
		Dir:      dir,
		Path:     env.Path,
		ExitCode: outcome.Code,
		Stdin:    forwarded,
		Stdout:   stdout.Data,
		Stderr:   stderr.Data,
	}
	if err := (trace.Recorder{Dir: env.InstallDir}).Record(inv.Tool, rec); err != nil {
		return outcome.Code, err
	}
	return outcome.Code, nil
}
