package rewrite

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTemps(t *testing.T) (*TempSet, string) {
	t.Helper()
	dir := t.TempDir()
	temps := NewTempSet(dir)
	t.Cleanup(temps.Cleanup)
	return temps, dir
}

func TestRewrite_PassThrough(t *testing.T) {
	defaults := []string{"-target", "x86_64-linux"}
	tests := []struct {
		name string
		tool string
		args []string
	}{
		{"cc compile", "cc", []string{"-c", "foo.c", "-o", "foo.o"}},
		{"c++ link", "c++", []string{"a.o", "b.o", "-o", "app"}},
		{"cc no args", "cc", nil},
		{"ranlib keeps placeholder", "ranlib", []string{"-", "nul"}},
		{"ar", "ar", []string{"rcs", "libfoo.a", "foo.o"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			temps, _ := newTemps(t)
			got, err := New().Rewrite(tt.tool, defaults, tt.args, temps)
			require.NoError(t, err)

			want := append(append([]string{}, defaults...), tt.args...)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Rewrite() mismatch (-want +got):\n%s", diff)
			}
			assert.Empty(t, temps.Paths())
		})
	}
}

func TestRewrite_MacroDump(t *testing.T) {
	temps, dir := newTemps(t)

	got, err := New().Rewrite("cc", []string{"-target", "x86_64-linux"}, []string{"-E", "-dM", "-"}, temps)
	require.NoError(t, err)

	require.Len(t, got, 5)
	assert.Equal(t, []string{"-target", "x86_64-linux", "-E", "-dM"}, got[:4])
	src := got[4]
	assert.Equal(t, dir, filepath.Dir(src))
	assert.True(t, strings.HasSuffix(src, ".c"))
	assert.NotContains(t, got, "-c")
	assert.NotContains(t, got, "-o")

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Contains(t, string(data), "int main")
	assert.Equal(t, []string{src}, temps.Paths())
}

func TestRewrite_MacroDumpFromDefaults(t *testing.T) {
	temps, _ := newTemps(t)

	got, err := New().Rewrite("c++", []string{"-dM"}, []string{"-E", "nul"}, temps)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, strings.HasSuffix(got[2], ".cpp"))
}

func TestRewrite_MacroDumpAfterPlaceholder(t *testing.T) {
	// -dM appearing after the placeholder does not trigger the macro-dump rule.
	temps, _ := newTemps(t)

	got, err := New().Rewrite("cc", nil, []string{"-E", "-", "-dM"}, temps)
	require.NoError(t, err)
	assert.Equal(t, "-c", got[1])
	assert.Equal(t, "-dM", got[len(got)-1])
}

func TestRewrite_CompileProbe(t *testing.T) {
	for _, placeholder := range []string{"-", "nul"} {
		t.Run(placeholder, func(t *testing.T) {
			temps, _ := newTemps(t)

			got, err := New().Rewrite("cc", []string{"-target", "x86_64-linux"}, []string{"-x", "c", placeholder}, temps)
			require.NoError(t, err)

			require.Len(t, got, 8)
			assert.Equal(t, []string{"-target", "x86_64-linux", "-x", "c", "-c"}, got[:5])
			src, obj := got[5], got[7]
			assert.Equal(t, "-o", got[6])
			assert.NotEqual(t, src, obj)
			assert.True(t, strings.HasSuffix(src, ".c"))
			assert.True(t, strings.HasSuffix(obj, ".o"))
			assert.ElementsMatch(t, []string{src, obj}, temps.Paths())

			temps.Cleanup()
			assert.NoFileExists(t, src)
			assert.NoFileExists(t, obj)
		})
	}
}

func TestRewrite_MultiplePlaceholdersGetDistinctFiles(t *testing.T) {
	temps, _ := newTemps(t)

	got, err := New().Rewrite("cc", nil, []string{"-", "-"}, temps)
	require.NoError(t, err)
	require.Len(t, got, 8)
	assert.Len(t, temps.Paths(), 4)
	assert.NotEqual(t, got[1], got[5])
}

func TestRewrite_TempFailureCleansUp(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	temps := NewTempSet(missing)

	_, err := New().Rewrite("cc", nil, []string{"-"}, temps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Empty(t, temps.Paths())
}

func TestRewrite_CustomRuleTable(t *testing.T) {
	temps, _ := newTemps(t)
	r := &Rewriter{Rules: []Rule{{
		Name:    "drop-nul",
		Applies: func(arg string, _ []string) bool { return arg == PlaceholderNull },
		Expand:  func(*Generator) ([]string, error) { return nil, nil },
	}}}

	got, err := r.Rewrite("cc", nil, []string{"-E", "nul", "-"}, temps)
	require.NoError(t, err)
	assert.Equal(t, []string{"-E", "-"}, got)
}

func TestTempSet_CleanupIdempotent(t *testing.T) {
	temps, _ := newTemps(t)
	src, err := temps.Source(".c")
	require.NoError(t, err)
	require.FileExists(t, src)

	temps.Cleanup()
	temps.Cleanup()
	assert.NoFileExists(t, src)
	assert.Empty(t, temps.Paths())
}

func TestTempSet_CleanupToleratesRemovedFiles(t *testing.T) {
	temps, _ := newTemps(t)
	obj, err := temps.Object(".o")
	require.NoError(t, err)
	require.NoError(t, os.Remove(obj))

	assert.NotPanics(t, temps.Cleanup)
}
