package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"zigcc/internal/logging"
)

// Config holds the wrapper configuration read from zig.toml.
type Config struct {
	// Zig is the toolchain binary every alias forwards to.
	Zig string `toml:"zig" yaml:"zig"`

	// Option lists prepended to the caller's arguments, per tool family.
	COptions     []string `toml:"c_options" yaml:"c_options"`
	CppOptions   []string `toml:"cpp_options" yaml:"cpp_options"`
	ToolsOptions []string `toml:"tools_options" yaml:"tools_options"`

	// Trace appends a record of every invocation to trace-<tool>.txt.
	Trace bool `toml:"trace" yaml:"trace"`

	// ForwardStdin pipes the wrapper's stdin to the toolchain. Off by
	// default: the child gets the null device.
	ForwardStdin bool `toml:"forward_stdin" yaml:"forward_stdin"`

	// IDEMarkers are path fragments identifying an IDE probe directory.
	IDEMarkers []string `toml:"ide_markers" yaml:"ide_markers"`

	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// ErrConfig is matched by every configuration failure.
var ErrConfig = errors.New("configuration error")

// Error describes a configuration failure for a specific file.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error in %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports ErrConfig as a match so callers need not know the concrete type.
func (e *Error) Is(target error) bool { return target == ErrConfig }

// DefaultConfig returns the configuration written by `zigcc config init`.
func DefaultConfig() *Config {
	return &Config{
		Zig:          "zig",
		COptions:     []string{},
		CppOptions:   []string{},
		ToolsOptions: []string{},
		IDEMarkers:   []string{"QtCreator"},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load loads configuration from a TOML file, or YAML when the extension is
// .yaml/.yml. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &Error{Path: path, Err: fmt.Errorf("failed to parse config: %w", err)}
		}
	default:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, &Error{Path: path, Err: fmt.Errorf("failed to parse config: %w", err)}
		}
		for _, key := range md.Undecoded() {
			logging.ConfigWarn("ignoring unknown key %q in %s", key.String(), path)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	logging.ConfigDebug("loaded %s: zig=%s trace=%v forward_stdin=%v", path, cfg.Zig, cfg.Trace, cfg.ForwardStdin)
	return cfg, nil
}

// LoadFromDir loads zig.toml from dir, falling back to zig.yaml.
func LoadFromDir(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Save writes the configuration as TOML, or YAML for .yaml/.yml paths.
func (c *Config) Save(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	default:
		if err := toml.NewEncoder(f).Encode(c); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	}
	return f.Close()
}

// YAML renders the configuration for display.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// Validate checks fields that have no usable default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Zig) == "" {
		return errors.New("zig: toolchain path is required")
	}
	if _, err := logLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if zig := os.Getenv("ZIGCC_ZIG"); zig != "" {
		c.Zig = zig
	}
	if v, ok := envBool("ZIGCC_TRACE"); ok {
		c.Trace = v
	}
	if v, ok := envBool("ZIGCC_DEBUG"); ok {
		c.Logging.Debug = v
	}
}

func envBool(key string) (bool, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		logging.ConfigWarn("ignoring %s=%q: %v", key, raw, err)
		return false, false
	}
	return v, true
}
