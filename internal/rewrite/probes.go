package rewrite

import (
	"slices"
	"strings"
)

// Introspection flags whose output must not depend on the caller's cwd.
const FlagPrintSearchDirs = "-print-search-dirs"

var versionFlags = []string{"-version", "--version"}

// DefaultIDEMarkers identify directories IDEs use for toolchain probes.
var DefaultIDEMarkers = []string{"QtCreator"}

// Probes records which introspection heuristics matched an invocation.
type Probes struct {
	SearchDirs bool
	Version    bool
	IDE        bool
}

// Any reports whether the child should run from the install directory.
func (p Probes) Any() bool {
	return p.SearchDirs || p.Version || p.IDE
}

// DetectProbes evaluates the probe heuristics. Flags may come from either
// list; the IDE check looks at the caller's real working directory.
func DetectProbes(defaults, args []string, cwd string, ideMarkers []string) Probes {
	has := func(flag string) bool {
		return slices.Contains(defaults, flag) || slices.Contains(args, flag)
	}
	p := Probes{
		SearchDirs: has(FlagPrintSearchDirs),
		IDE:        looksLikeIDEProbeDir(cwd, ideMarkers),
	}
	for _, flag := range versionFlags {
		if has(flag) {
			p.Version = true
		}
	}
	return p
}

// WorkDir picks the child's working directory.
func WorkDir(p Probes, cwd, installDir string) string {
	if p.Any() {
		return installDir
	}
	return cwd
}

func looksLikeIDEProbeDir(cwd string, markers []string) bool {
	if cwd == "" {
		return false
	}
	marked := false
	for _, m := range markers {
		if m != "" && strings.Contains(cwd, m) {
			marked = true
			break
		}
	}
	if !marked {
		return false
	}
	segments := strings.FieldsFunc(cwd, func(r rune) bool { return r == '/' || r == '\\' })
	return slices.Contains(segments, "bin")
}
