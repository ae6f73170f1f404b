// Command zig-cppfilt runs "zig cppfilt" with the options from zig.toml.
package main

import (
	"os"

	"zigcc/internal/dispatch"
)

func main() {
	os.Exit(dispatch.Main("cppfilt"))
}
