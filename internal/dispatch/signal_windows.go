//go:build windows

package dispatch

// catchBrokenPipe is a no-op: Windows reports a closed pipe as a write error.
func catchBrokenPipe() (stop func()) {
	return func() {}
}
