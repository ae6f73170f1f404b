package dispatch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"zigcc/internal/build"
	"zigcc/internal/config"
	"zigcc/internal/logging"
	"zigcc/internal/tactile"
)

// Process is the wrapper process as seen by Execute.
type Process struct {
	// Args is the full argv, program name first.
	Args []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// InstallDir overrides the executable's directory.
	InstallDir string
}

// CurrentProcess describes the running wrapper.
func CurrentProcess() Process {
	return Process{
		Args:   os.Args,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Main runs tool for the current process and returns its exit status.
func Main(tool string) int {
	return Execute(tool, CurrentProcess())
}

// Execute loads the configuration beside the executable, runs tool with
// the process's arguments and returns the exit status.
func Execute(tool string, p Process) int {
	stopCatch := catchBrokenPipe()
	defer stopCatch()

	stderr := p.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	name := AliasPrefix + tool
	if len(p.Args) > 0 {
		name = filepath.Base(p.Args[0])
	}
	fail := func(err error) int {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return 1
	}

	// Console-only logging until the config says otherwise.
	if err := logging.Initialize(logging.Options{Stderr: stderr}); err != nil {
		return fail(err)
	}
	defer logging.CloseAll()

	installDir := p.InstallDir
	if installDir == "" {
		dir, err := config.InstallDir()
		if err != nil {
			return fail(err)
		}
		installDir = dir
	}

	cfg, err := config.LoadFromDir(installDir)
	if err != nil {
		return fail(err)
	}

	if err := logging.Initialize(logging.Options{
		Debug:  cfg.Logging.Debug,
		Level:  cfg.Logging.EffectiveLevel(),
		Dir:    installDir,
		Stderr: stderr,
	}); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
	}
	logging.WithInvocation(uuid.NewString())
	timer := logging.StartTimer(logging.CategoryBoot, "invoke "+tool)
	defer timer.Stop()

	cwd, err := os.Getwd()
	if err != nil {
		return fail(fmt.Errorf("can't get current directory: %w", err))
	}

	var args []string
	if len(p.Args) > 1 {
		args = p.Args[1:]
	}
	environ := os.Environ()
	path, _ := build.LookupEnv(environ, "PATH")
	logging.Boot("tool=%s zig=%s cwd=%s args=%q", tool, cfg.Zig, cwd, args)

	code, err := Run(NewInvocation(cfg, tool, args), OptionsFrom(cfg), Env{
		InstallDir:  installDir,
		Cwd:         cwd,
		Path:        path,
		Environ:     environ,
		WrapperArgs: p.Args,
		Stdin:       p.Stdin,
		Dst:         tactile.Destinations{Stdout: p.Stdout, Stderr: stderr},
	})
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
	}
	return code
}
