// Command zig-dlltool runs "zig dlltool" with the options from zig.toml.
package main

import (
	"os"

	"zigcc/internal/dispatch"
)

func main() {
	os.Exit(dispatch.Main("dlltool"))
}
