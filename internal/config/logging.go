package config

import (
	"fmt"
	"strings"
)

// LoggingConfig configures the wrapper's own diagnostics.
type LoggingConfig struct {
	// Debug writes every category to zigcc-debug.log beside the executable.
	Debug bool `toml:"debug" yaml:"debug"`

	// Level is the minimum level printed on stderr: debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`
}

func logLevel(level string) (string, error) {
	switch strings.ToLower(level) {
	case "", "warn", "warning":
		return "warn", nil
	case "debug", "info", "error":
		return strings.ToLower(level), nil
	default:
		return "", fmt.Errorf("logging.level: unknown level %q", level)
	}
}

// EffectiveLevel returns the normalized stderr level.
func (c LoggingConfig) EffectiveLevel() string {
	level, err := logLevel(c.Level)
	if err != nil {
		return "warn"
	}
	return level
}
