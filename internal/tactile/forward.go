package tactile

import (
	"errors"
	"io"
	"sync/atomic"

	"zigcc/internal/logging"
)

// Finished is the "child finished" signal for one invocation. The waiter
// sets it once; the stdin forwarder polls it between reads.
type Finished struct {
	done atomic.Bool
}

// NewFinished returns an unset flag.
func NewFinished() *Finished {
	return &Finished{}
}

// Set marks the child as finished.
func (f *Finished) Set() { f.done.Store(true) }

// IsSet reports whether the child has finished.
func (f *Finished) IsSet() bool { return f.done.Load() }

// Forwarder copies the wrapper's stdin to the child.
type Forwarder struct {
	result chan Capture
}

// StartForwarder copies src to dst until src is exhausted, a write fails,
// or finished is set. dst is closed when the forwarder stops so the child
// sees end-of-input. A read already blocked on src only returns when src
// produces data or EOF.
func StartForwarder(src io.Reader, dst io.WriteCloser, finished *Finished) *Forwarder {
	f := &Forwarder{result: make(chan Capture, 1)}
	go func() {
		f.result <- forward(src, dst, finished)
	}()
	return f
}

func forward(src io.Reader, dst io.WriteCloser, finished *Finished) Capture {
	defer dst.Close()

	capture := Capture{Stream: StreamStdin}
	buf := make([]byte, ChunkSize)
	for !finished.IsSet() {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				logging.TeeDebug("stdin forwarding stopped: %v", werr)
				return capture
			}
			capture.Data = append(capture.Data, buf[:n]...)
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			logging.TeeError("Error reading stdin: %v", err)
			capture.Err = &StreamError{Stream: StreamStdin, Err: err}
		}
		return capture
	}
	return capture
}

// Join waits for the forwarder to stop and returns what it forwarded.
func (f *Forwarder) Join() Capture {
	return <-f.result
}
