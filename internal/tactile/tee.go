package tactile

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"zigcc/internal/logging"
)

// ChunkSize is the read size of the relay workers; relayed output lags the
// child by at most this many bytes.
const ChunkSize = 1024

// Tee copies src to dst chunk by chunk and keeps a copy of everything read.
// A failing dst stops the relay but not the capture, so the child never
// blocks on a full pipe. A read error other than end-of-stream ends the
// copy early and is returned in Capture.Err.
func Tee(stream Stream, src io.Reader, dst io.Writer) Capture {
	buf := make([]byte, ChunkSize)
	capture := Capture{Stream: stream}
	relay := true

	for {
		n, err := src.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if relay {
				if _, werr := dst.Write(chunk); werr != nil {
					logging.TeeWarn("relay of child %s stopped: %v", stream, werr)
					relay = false
				}
			}
			capture.Data = append(capture.Data, chunk...)
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			logging.TeeDebug("child %s drained (%d bytes)", stream, len(capture.Data))
			return capture
		}
		logging.TeeError("Error reading child stream: %v", err)
		capture.Err = &StreamError{Stream: stream, Err: err}
		return capture
	}
}

// Tees runs one relay worker per output pipe of a child.
type Tees struct {
	g      errgroup.Group
	stdout Capture
	stderr Capture
}

// StartTees starts the stdout and stderr workers. Each worker closes its
// pipe when it finishes.
func StartTees(child *Child, dst Destinations) *Tees {
	t := &Tees{}
	t.g.Go(func() error {
		t.stdout = teePipe(StreamStdout, child.Stdout, dst)
		return t.stdout.Err
	})
	t.g.Go(func() error {
		t.stderr = teePipe(StreamStderr, child.Stderr, dst)
		return t.stderr.Err
	})
	return t
}

func teePipe(stream Stream, src *os.File, dst Destinations) Capture {
	defer src.Close()
	return Tee(stream, src, dst.For(stream))
}

// Join blocks until both workers are done. The captures are safe to read
// afterwards; the error is the first StreamError, already logged.
func (t *Tees) Join() (stdout, stderr Capture, err error) {
	err = t.g.Wait()
	return t.stdout, t.stderr, err
}
