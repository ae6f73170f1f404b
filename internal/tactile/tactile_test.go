package tactile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const fakeToolchainEnv = "TACTILE_FAKE_TOOLCHAIN"

func TestMain(m *testing.M) {
	if os.Getenv(fakeToolchainEnv) == "1" {
		os.Exit(fakeToolchain(os.Args[1:]))
	}
	goleak.VerifyTestMain(m)
}

// fakeToolchain stands in for `zig <tool> ...` when the test binary is
// re-executed as a child.
func fakeToolchain(args []string) int {
	if len(args) == 0 {
		return 2
	}
	switch args[0] {
	case "echo":
		fmt.Fprint(os.Stdout, strings.Join(args[1:], " "))
		fmt.Fprint(os.Stderr, "warning: "+strings.Join(args[1:], ","))
		return 0
	case "exit":
		code, _ := strconv.Atoi(args[1])
		fmt.Fprintf(os.Stderr, "exiting with %d", code)
		return code
	case "pwd":
		wd, _ := os.Getwd()
		fmt.Fprint(os.Stdout, wd)
		return 0
	case "path":
		fmt.Fprint(os.Stdout, os.Getenv("PATH"))
		return 0
	case "cat":
		_, _ = io.Copy(os.Stdout, os.Stdin)
		return 0
	case "flood":
		out := bytes.Repeat([]byte("o"), 4096)
		errb := bytes.Repeat([]byte("e"), 4096)
		for i := 0; i < 256; i++ {
			os.Stdout.Write(out)
			os.Stderr.Write(errb)
		}
		return 0
	case "binary":
		os.Stdout.Write([]byte{0x00, 0x01, 0xff, '\n', 0x00})
		return 0
	case "kill":
		p, _ := os.FindProcess(os.Getpid())
		_ = p.Signal(os.Kill)
		time.Sleep(5 * time.Second)
		return 0
	}
	return 2
}

func fakeCommand(t *testing.T, tool string, args ...string) Command {
	t.Helper()
	exe, err := os.Executable()
	require.NoError(t, err)
	return Command{
		Binary:      exe,
		Tool:        tool,
		Arguments:   args,
		Environment: append(os.Environ(), fakeToolchainEnv+"=1"),
	}
}

type runResult struct {
	outcome ExitOutcome
	stdout  Capture
	stderr  Capture
}

func run(t *testing.T, cmd Command, dst Destinations) runResult {
	t.Helper()
	child, err := Start(cmd)
	require.NoError(t, err)
	defer child.Close()

	tees := StartTees(child, dst)
	outcome, err := child.Wait()
	require.NoError(t, err)
	stdout, stderr, err := tees.Join()
	require.NoError(t, err)
	return runResult{outcome: outcome, stdout: stdout, stderr: stderr}
}

func TestStart_RelaysAndCaptures(t *testing.T) {
	var out, errOut bytes.Buffer
	res := run(t, fakeCommand(t, "echo", "-c", "foo.c"), Destinations{Stdout: &out, Stderr: &errOut})

	assert.True(t, res.outcome.Exited)
	assert.Equal(t, 0, res.outcome.Code)
	assert.Equal(t, "-c foo.c", out.String())
	assert.Equal(t, "warning: -c,foo.c", errOut.String())
	assert.Equal(t, out.Bytes(), res.stdout.Data)
	assert.Equal(t, errOut.Bytes(), res.stderr.Data)
	assert.Equal(t, StreamStdout, res.stdout.Stream)
	assert.Equal(t, StreamStderr, res.stderr.Stream)
}

func TestStart_ExitCodePropagates(t *testing.T) {
	for _, code := range []int{0, 1, 3, 42} {
		t.Run(strconv.Itoa(code), func(t *testing.T) {
			res := run(t, fakeCommand(t, "exit", strconv.Itoa(code)), Destinations{})
			assert.True(t, res.outcome.Exited)
			assert.Equal(t, code, res.outcome.Code)
			assert.Equal(t, fmt.Sprintf("exiting with %d", code), string(res.stderr.Data))
		})
	}
}

func TestStart_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	cmd := fakeCommand(t, "pwd")
	cmd.WorkingDirectory = dir

	res := run(t, cmd, Destinations{})
	got, err := filepath.EvalSymlinks(string(res.stdout.Data))
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStart_Environment(t *testing.T) {
	cmd := fakeCommand(t, "path")
	cmd.Environment = append(cmd.Environment, "PATH=/opt/zig")

	res := run(t, cmd, Destinations{})
	assert.Equal(t, "/opt/zig", string(res.stdout.Data))
}

func TestStart_LargeOutputOnBothStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	res := run(t, fakeCommand(t, "flood"), Destinations{Stdout: &out, Stderr: &errOut})

	assert.Equal(t, 0, res.outcome.Code)
	assert.Len(t, res.stdout.Data, 256*4096)
	assert.Len(t, res.stderr.Data, 256*4096)
	assert.Equal(t, out.Len(), len(res.stdout.Data))
	assert.Equal(t, errOut.Len(), len(res.stderr.Data))
}

func TestStart_BinaryOutputVerbatim(t *testing.T) {
	res := run(t, fakeCommand(t, "binary"), Destinations{})
	assert.Equal(t, []byte{0x00, 0x01, 0xff, '\n', 0x00}, res.stdout.Data)
}

func TestStart_StdinIsNullByDefault(t *testing.T) {
	res := run(t, fakeCommand(t, "cat"), Destinations{})
	assert.Equal(t, 0, res.outcome.Code)
	assert.Empty(t, res.stdout.Data)
}

func TestStart_ForwardStdin(t *testing.T) {
	cmd := fakeCommand(t, "cat")
	cmd.ForwardStdin = true

	child, err := Start(cmd)
	require.NoError(t, err)
	defer child.Close()
	require.NotNil(t, child.Stdin)

	finished := NewFinished()
	fwd := StartForwarder(strings.NewReader("int x;\n"), child.Stdin, finished)
	tees := StartTees(child, Destinations{})

	outcome, err := child.Wait()
	require.NoError(t, err)
	finished.Set()

	stdout, _, err := tees.Join()
	require.NoError(t, err)
	stdin := fwd.Join()

	assert.Equal(t, 0, outcome.Code)
	assert.Equal(t, "int x;\n", string(stdout.Data))
	assert.Equal(t, "int x;\n", string(stdin.Data))
	assert.Equal(t, StreamStdin, stdin.Stream)
}

func TestStart_KilledHasNoExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("signals are not delivered on Windows")
	}
	res := run(t, fakeCommand(t, "kill"), Destinations{})
	assert.False(t, res.outcome.Exited)
	assert.Contains(t, res.outcome.Reason, "signal")
}

func TestStart_SpawnErrors(t *testing.T) {
	t.Run("missing binary", func(t *testing.T) {
		cmd := Command{Binary: filepath.Join(t.TempDir(), "no-such-zig"), Tool: "cc"}
		_, err := Start(cmd)
		require.Error(t, err)

		var spawnErr *SpawnError
		require.True(t, errors.As(err, &spawnErr))
		assert.Contains(t, spawnErr.Command, "no-such-zig cc")
	})

	t.Run("invalid working directory", func(t *testing.T) {
		cmd := fakeCommand(t, "pwd")
		cmd.WorkingDirectory = filepath.Join(t.TempDir(), "gone")
		_, err := Start(cmd)

		var spawnErr *SpawnError
		require.True(t, errors.As(err, &spawnErr))
		assert.Equal(t, cmd.WorkingDirectory, spawnErr.Dir)
	})
}

func TestCommand_CommandString(t *testing.T) {
	cmd := Command{Binary: "/opt/zig/zig", Tool: "cc", Arguments: []string{"-target", "x86_64-linux", "-c", "foo.c"}}
	assert.Equal(t, "/opt/zig/zig cc -target x86_64-linux -c foo.c", cmd.CommandString())
	assert.Equal(t, []string{"cc", "-target", "x86_64-linux", "-c", "foo.c"}, cmd.Argv())

	assert.Equal(t, "zig ranlib", Command{Binary: "zig", Tool: "ranlib"}.CommandString())
}

func TestDestinations_For(t *testing.T) {
	var out, errOut bytes.Buffer
	d := Destinations{Stdout: &out, Stderr: &errOut}
	assert.Same(t, &out, d.For(StreamStdout))
	assert.Same(t, &errOut, d.For(StreamStderr))
	assert.Equal(t, io.Discard, d.For(StreamStdin))
	assert.Equal(t, io.Discard, Destinations{}.For(StreamStdout))
}

// chunkRecorder records the size of every write.
type chunkRecorder struct {
	mu     sync.Mutex
	sizes  []int
	buf    bytes.Buffer
	failAt int
}

func (c *chunkRecorder) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failAt > 0 && len(c.sizes)+1 >= c.failAt {
		return 0, errors.New("destination closed")
	}
	c.sizes = append(c.sizes, len(p))
	return c.buf.Write(p)
}

func TestTee_Chunking(t *testing.T) {
	input := bytes.Repeat([]byte("x"), 3000)
	dst := &chunkRecorder{}

	capture := Tee(StreamStdout, bytes.NewReader(input), dst)

	require.NoError(t, capture.Err)
	assert.Equal(t, input, capture.Data)
	assert.Equal(t, input, dst.buf.Bytes())
	assert.Equal(t, []int{1024, 1024, 952}, dst.sizes)
}

func TestTee_ReadErrorKeepsPartialOutput(t *testing.T) {
	boom := errors.New("pipe broke")
	src := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(boom))
	var dst bytes.Buffer

	capture := Tee(StreamStderr, src, &dst)

	assert.Equal(t, "partial", string(capture.Data))
	assert.Equal(t, "partial", dst.String())

	var streamErr *StreamError
	require.True(t, errors.As(capture.Err, &streamErr))
	assert.Equal(t, StreamStderr, streamErr.Stream)
	assert.True(t, errors.Is(capture.Err, boom))
}

func TestTee_DestinationFailureKeepsCapturing(t *testing.T) {
	input := bytes.Repeat([]byte("y"), 4000)
	dst := &chunkRecorder{failAt: 2}

	capture := Tee(StreamStdout, bytes.NewReader(input), dst)

	require.NoError(t, capture.Err)
	assert.Equal(t, input, capture.Data)
	assert.Equal(t, []int{1024}, dst.sizes)
}

type closeRecorder struct {
	bytes.Buffer
	closed bool
	err    error
}

func (c *closeRecorder) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	return c.Buffer.Write(p)
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestForwarder_StopsWhenFinished(t *testing.T) {
	finished := NewFinished()
	finished.Set()
	dst := &closeRecorder{}

	capture := StartForwarder(strings.NewReader("never read"), dst, finished).Join()

	assert.Empty(t, capture.Data)
	assert.True(t, dst.closed)
}

func TestForwarder_StopsOnWriteFailure(t *testing.T) {
	dst := &closeRecorder{err: errors.New("broken pipe")}

	capture := StartForwarder(strings.NewReader("data"), dst, NewFinished()).Join()

	assert.Empty(t, capture.Data)
	assert.NoError(t, capture.Err)
	assert.True(t, dst.closed)
}

func TestForwarder_ReadError(t *testing.T) {
	boom := errors.New("tty gone")
	dst := &closeRecorder{}

	capture := StartForwarder(io.MultiReader(strings.NewReader("ab"), iotest.ErrReader(boom)), dst, NewFinished()).Join()

	assert.Equal(t, "ab", string(capture.Data))
	assert.Equal(t, "ab", dst.String())
	assert.True(t, errors.Is(capture.Err, boom))
}

func TestFinished(t *testing.T) {
	f := NewFinished()
	assert.False(t, f.IsSet())
	f.Set()
	assert.True(t, f.IsSet())
}
