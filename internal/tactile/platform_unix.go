//go:build !windows

package tactile

import (
	"os"
	"syscall"
)

// describeTermination explains why a child has no exit code on Unix.
func describeTermination(state *os.ProcessState) string {
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok {
		return state.String()
	}
	switch {
	case ws.Signaled():
		desc := "killed by signal " + ws.Signal().String()
		if ws.CoreDump() {
			desc += " (core dumped)"
		}
		return desc
	case ws.Stopped():
		return "stopped by signal " + ws.StopSignal().String()
	default:
		return state.String()
	}
}
