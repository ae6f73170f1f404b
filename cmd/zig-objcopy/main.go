// Command zig-objcopy runs "zig objcopy" with the options from zig.toml.
package main

import (
	"os"

	"zigcc/internal/dispatch"
)

func main() {
	os.Exit(dispatch.Main("objcopy"))
}
