//go:build !windows

package dispatch

import (
	"os"
	"os/signal"
	"syscall"
)

// catchBrokenPipe turns a write to a closed stdout or stderr into an EPIPE
// error instead of process death. A handler is installed rather than
// SIG_IGN so the toolchain child still starts with the default disposition.
func catchBrokenPipe() (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGPIPE)
	return func() { signal.Stop(ch) }
}
