package rewrite

import "slices"

// Placeholder values meaning "no real file here".
const (
	PlaceholderStdio = "-"
	PlaceholderNull  = "nul"
)

// FlagMacroDump asks the preprocessor to print predefined macros.
const FlagMacroDump = "-dM"

// Rule rewrites one caller argument. Rules are tried in order and the first
// whose Applies returns true replaces the argument with Expand's output.
type Rule struct {
	Name string

	// Applies reports whether the rule fires for arg, given the arguments
	// accumulated so far (defaults plus already-rewritten caller args).
	Applies func(arg string, acc []string) bool

	// Expand produces the replacement arguments.
	Expand func(gen *Generator) ([]string, error)
}

// Generator hands out temp files to rule expansions.
type Generator struct {
	Temps        *TempSet
	SourceSuffix string
	ObjectSuffix string
}

// IsPlaceholder reports whether arg stands for stdin/stdout or the null device.
func IsPlaceholder(arg string) bool {
	return arg == PlaceholderStdio || arg == PlaceholderNull
}

// DefaultRules is the probe rewrite table for compiling subcommands.
//
//	macro-dump    placeholder after -dM   -> <temp-source>
//	compile-probe placeholder             -> -c <temp-source> -o <temp-object>
var DefaultRules = []Rule{
	{
		Name: "macro-dump",
		Applies: func(arg string, acc []string) bool {
			return IsPlaceholder(arg) && slices.Contains(acc, FlagMacroDump)
		},
		Expand: func(gen *Generator) ([]string, error) {
			src, err := gen.Temps.Source(gen.SourceSuffix)
			if err != nil {
				return nil, err
			}
			return []string{src}, nil
		},
	},
	{
		Name:    "compile-probe",
		Applies: func(arg string, _ []string) bool { return IsPlaceholder(arg) },
		Expand: func(gen *Generator) ([]string, error) {
			src, err := gen.Temps.Source(gen.SourceSuffix)
			if err != nil {
				return nil, err
			}
			obj, err := gen.Temps.Object(gen.ObjectSuffix)
			if err != nil {
				return nil, err
			}
			return []string{"-c", src, "-o", obj}, nil
		},
	},
}
