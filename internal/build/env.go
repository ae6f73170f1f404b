// Package build assembles the environment handed to the toolchain child.
//
// The child inherits the wrapper's environment with one change: the
// directory holding the toolchain binary is prepended to PATH so helper
// binaries shipped next to it (lld, llvm-ar, ...) are found first.
package build

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"zigcc/internal/logging"
)

// ToolchainDir returns the directory containing the toolchain binary,
// or "." for a bare name.
func ToolchainDir(toolchain string) string {
	dir := filepath.Dir(toolchain)
	if dir == "" {
		return "."
	}
	return dir
}

// PrependPath puts dir in front of an existing PATH value using the
// platform's list separator.
func PrependPath(dir, path string) string {
	if path == "" {
		return dir
	}
	return dir + string(os.PathListSeparator) + path
}

// ChildEnv returns a copy of base whose PATH starts with the toolchain
// directory. inheritedPath is the caller's PATH value.
func ChildEnv(base []string, toolchain, inheritedPath string) []string {
	childPath := PrependPath(ToolchainDir(toolchain), inheritedPath)
	env := MergeEnv(base, "PATH="+childPath)
	logging.LaunchDebug("child PATH: %s", childPath)
	return env
}

// LookupEnv returns the value of key in env.
func LookupEnv(env []string, key string) (string, bool) {
	for _, e := range env {
		k, v, ok := strings.Cut(e, "=")
		if ok && envKeyEqual(k, key) {
			return v, true
		}
	}
	return "", false
}

// setEnvKey sets or updates an environment variable. On Windows the
// existing spelling of the key (e.g. "Path") is kept.
func setEnvKey(env []string, key, value string) []string {
	for i, e := range env {
		k, _, ok := strings.Cut(e, "=")
		if ok && envKeyEqual(k, key) {
			env[i] = k + "=" + value
			return env
		}
	}
	return append(env, key+"="+value)
}

// MergeEnv merges additional environment variables into base env.
// Later values override earlier ones.
func MergeEnv(base []string, additional ...string) []string {
	result := make([]string, len(base))
	copy(result, base)

	for _, add := range additional {
		parts := strings.SplitN(add, "=", 2)
		if len(parts) == 2 {
			result = setEnvKey(result, parts[0], parts[1])
		}
	}

	return result
}

func envKeyEqual(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
