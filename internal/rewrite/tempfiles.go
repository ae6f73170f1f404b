package rewrite

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"zigcc/internal/logging"
)

// minimalMain is a translation unit that is valid C and C++.
const minimalMain = `
int main(int argc, char** argv) {
    return 0;
    (void)argc;
    (void)argv;
}
`

const tempPrefix = "zig-cc-"

// TempSet tracks files generated for one invocation so they can be removed
// on every exit path. Callers defer Cleanup right after creating the set.
type TempSet struct {
	dir string

	mu    sync.Mutex
	paths []string
}

// NewTempSet creates files under dir, or os.TempDir() when dir is empty.
func NewTempSet(dir string) *TempSet {
	return &TempSet{dir: dir}
}

// Source writes the minimal translation unit to a fresh file.
func (s *TempSet) Source(suffix string) (string, error) {
	return s.create(suffix, []byte(minimalMain))
}

// Object reserves a fresh path for compiler output.
func (s *TempSet) Object(suffix string) (string, error) {
	return s.create(suffix, nil)
}

func (s *TempSet) create(suffix string, content []byte) (string, error) {
	f, err := os.CreateTemp(s.dir, tempPrefix+"*"+suffix)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	s.register(path)

	if len(content) > 0 {
		if _, err := f.Write(content); err != nil {
			f.Close()
			return "", fmt.Errorf("write temp file %s: %w", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file %s: %w", path, err)
	}
	logging.RewriteDebug("generated %s", path)
	return path, nil
}

func (s *TempSet) register(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path)
}

// Paths returns the files generated so far.
func (s *TempSet) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

// Cleanup removes every generated file. Safe to call more than once.
func (s *TempSet) Cleanup() {
	s.mu.Lock()
	paths := s.paths
	s.paths = nil
	s.mu.Unlock()

	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.RewriteWarn("failed to remove %s: %v", path, err)
		}
	}
}
