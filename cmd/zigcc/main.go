// Command zigcc is the multicall front end of the toolchain wrappers.
//
// Run as `zigcc <tool> args...` it behaves like the zig-<tool> binary.
// Copied or linked under a zig-<tool> name it is that binary. The config
// and trace subcommands manage zig.toml and the per-tool trace logs that
// live beside the executable.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"zigcc/internal/config"
	"zigcc/internal/dispatch"
)

// app carries state shared by the subcommands.
type app struct {
	// dir overrides the install directory (tests, --dir).
	dir string

	// exitCode is returned by main after Execute.
	exitCode int
}

func (a *app) installDir() (string, error) {
	if a.dir != "" {
		return a.dir, nil
	}
	return config.InstallDir()
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "zigcc",
		Short: "Drive the zig toolchain as a C/C++ compiler and binutils",
		Long: `zigcc forwards compiler and binutils invocations to zig.

Each tool alias (cc, c++, ar, ranlib, ...) runs "zig <tool>" with the options
configured in zig.toml beside this executable. Probe invocations that read
from stdin or write to the null device are rewritten to use generated files.

With trace = true every invocation is appended to trace-<tool>.txt.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.dir, "dir", "", "Install directory (default: beside the executable)")

	for _, tool := range dispatch.ToolNames() {
		rootCmd.AddCommand(newToolCmd(a, tool))
	}
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newTraceCmd(a))
	return rootCmd
}

// newToolCmd forwards every argument untouched, flags included.
func newToolCmd(a *app, tool string) *cobra.Command {
	return &cobra.Command{
		Use:                tool + " [args...]",
		Short:              fmt.Sprintf("Run zig %s", tool),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			argv := append([]string{dispatch.AliasPrefix + tool}, args...)
			a.exitCode = dispatch.Execute(tool, dispatch.Process{
				Args:       argv,
				Stdin:      cmd.InOrStdin(),
				Stdout:     cmd.OutOrStdout(),
				Stderr:     cmd.ErrOrStderr(),
				InstallDir: a.dir,
			})
			return nil
		},
	}
}

// run executes the CLI for argv and returns the process exit status.
func run(argv []string, stdout, stderr io.Writer) int {
	if tool, ok := dispatch.ToolFromExecutable(argv[0]); ok {
		return dispatch.Execute(tool, dispatch.Process{
			Args:   argv,
			Stdin:  os.Stdin,
			Stdout: stdout,
			Stderr: stderr,
		})
	}

	a := &app{}
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(argv[1:])
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return a.exitCode
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}
