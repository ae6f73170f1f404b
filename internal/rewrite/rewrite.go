// Package rewrite turns a tool's configured defaults and the caller's
// arguments into the argument list handed to the toolchain.
//
// Build systems probe compilers with commands that read from stdin or write
// to the null device (`cc -E -dM -`, `cc -x c -`, `cc ... -o nul`). The
// toolchain child never sees the wrapper's stdin, so those placeholders are
// replaced with generated files according to a rule table.
package rewrite

import (
	"fmt"

	"zigcc/internal/logging"
)

// Rewriter applies a rule table to compiling subcommands.
type Rewriter struct {
	Rules []Rule
}

// New returns a Rewriter using DefaultRules.
func New() *Rewriter {
	return &Rewriter{Rules: DefaultRules}
}

// CompilesSource reports whether tool is a compiler front end.
func CompilesSource(tool string) bool {
	return tool == "cc" || tool == "c++"
}

func sourceSuffix(tool string) string {
	if tool == "c++" {
		return ".cpp"
	}
	return ".c"
}

// Rewrite returns defaults followed by the caller's args, with placeholder
// arguments rewritten for compiling subcommands. Generated files are
// registered in temps; on error the ones created so far are removed.
func (r *Rewriter) Rewrite(tool string, defaults, args []string, temps *TempSet) ([]string, error) {
	out := make([]string, 0, len(defaults)+len(args))
	out = append(out, defaults...)

	if !CompilesSource(tool) {
		return append(out, args...), nil
	}

	gen := &Generator{Temps: temps, SourceSuffix: sourceSuffix(tool), ObjectSuffix: ".o"}
	for _, arg := range args {
		rule, ok := r.match(arg, out)
		if !ok {
			out = append(out, arg)
			continue
		}
		repl, err := rule.Expand(gen)
		if err != nil {
			temps.Cleanup()
			return nil, fmt.Errorf("rewrite %q (%s): %w", arg, rule.Name, err)
		}
		logging.RewriteDebug("rule %s: %q -> %q", rule.Name, arg, repl)
		out = append(out, repl...)
	}
	return out, nil
}

func (r *Rewriter) match(arg string, acc []string) (Rule, bool) {
	for _, rule := range r.Rules {
		if rule.Applies(arg, acc) {
			return rule, true
		}
	}
	return Rule{}, false
}
