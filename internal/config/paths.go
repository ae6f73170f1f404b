package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File names looked up beside the executable, in order.
const (
	ConfigFileName     = "zig.toml"
	YAMLConfigFileName = "zig.yaml"
)

// executable is swapped in tests.
var executable = os.Executable

// InstallDir returns the directory containing the running executable.
func InstallDir() (string, error) {
	exe, err := executable()
	if err != nil {
		return "", &Error{Err: fmt.Errorf("can't locate executable: %w", err)}
	}
	if !filepath.IsAbs(exe) {
		return "", &Error{Err: fmt.Errorf("can't get parent directory from %q", exe)}
	}
	return filepath.Dir(exe), nil
}

// FindConfig returns the first existing config file in dir.
func FindConfig(dir string) (string, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", &Error{Path: path, Err: err}
		}
	}
	return "", &Error{
		Path: filepath.Join(dir, ConfigFileName),
		Err:  fmt.Errorf("no %s or %s found: %w", ConfigFileName, YAMLConfigFileName, os.ErrNotExist),
	}
}
