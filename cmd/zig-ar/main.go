// Command zig-ar runs "zig ar" with the options from zig.toml.
package main

import (
	"os"

	"zigcc/internal/dispatch"
)

func main() {
	os.Exit(dispatch.Main("ar"))
}
