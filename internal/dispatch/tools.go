package dispatch

import (
	"path/filepath"
	"sort"
	"strings"

	"zigcc/internal/config"
)

// OptionFamily selects which configured option list a tool receives.
type OptionFamily int

const (
	FamilyC OptionFamily = iota
	FamilyCpp
	FamilyTools
)

func (f OptionFamily) String() string {
	switch f {
	case FamilyC:
		return "c_options"
	case FamilyCpp:
		return "cpp_options"
	default:
		return "tools_options"
	}
}

// toolFamilies maps every supported alias to its option family.
var toolFamilies = map[string]OptionFamily{
	"cc":      FamilyC,
	"c++":     FamilyCpp,
	"ar":      FamilyTools,
	"ranlib":  FamilyTools,
	"lib":     FamilyTools,
	"dlltool": FamilyTools,
	"cppfilt": FamilyTools,
	"objcopy": FamilyTools,
}

// AliasPrefix starts the file name of every per-tool binary.
const AliasPrefix = "zig-"

// LookupTool returns the option family of tool.
func LookupTool(tool string) (OptionFamily, bool) {
	f, ok := toolFamilies[tool]
	return f, ok
}

// ToolNames returns the supported aliases in sorted order.
func ToolNames() []string {
	names := make([]string, 0, len(toolFamilies))
	for name := range toolFamilies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToolFromExecutable maps a binary name such as "zig-c++.exe" to its tool.
func ToolFromExecutable(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(base), ".exe") {
		base = base[:len(base)-len(".exe")]
	}
	tool, ok := strings.CutPrefix(base, AliasPrefix)
	if !ok {
		return "", false
	}
	if _, known := toolFamilies[tool]; !known {
		return "", false
	}
	return tool, true
}

// DefaultArgs returns the configured options for tool.
func DefaultArgs(cfg *config.Config, tool string) []string {
	family, ok := LookupTool(tool)
	if !ok {
		family = FamilyTools
	}
	switch family {
	case FamilyC:
		return cfg.COptions
	case FamilyCpp:
		return cfg.CppOptions
	default:
		return cfg.ToolsOptions
	}
}
