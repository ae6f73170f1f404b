//go:build windows

package tactile

import "os"

// describeTermination explains why a child has no exit code on Windows.
// ExitCode only reports -1 there when the process state is incomplete.
func describeTermination(state *os.ProcessState) string {
	return state.String()
}
