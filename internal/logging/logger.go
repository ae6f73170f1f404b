// Package logging provides categorized diagnostics for the wrapper.
//
// Warnings and errors always go to the wrapper's own diagnostic stream
// (stderr), which is shared with the relayed toolchain output, so nothing
// below warn level is printed there by default. When debug mode is enabled
// every category also writes JSON lines to zigcc-debug.log beside the
// executable.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config resolution
	CategoryConfig  Category = "config"  // Config file loading
	CategoryRewrite Category = "rewrite" // Argument rewriting, probe detection
	CategoryLaunch  Category = "launch"  // Child spawn and wait
	CategoryTee     Category = "tee"     // Stream relay workers
	CategoryTrace   Category = "trace"   // Trace log persistence
)

// DebugLogName is the file written beside the executable in debug mode.
const DebugLogName = "zigcc-debug.log"

// Options controls Initialize.
type Options struct {
	// Debug enables the JSON debug log file in Dir.
	Debug bool

	// Level is the minimum level printed on Stderr (debug, info, warn, error).
	// Empty means warn.
	Level string

	// Dir is where the debug log is created.
	Dir string

	// Stderr is the diagnostic stream. Defaults to os.Stderr.
	Stderr io.Writer
}

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	loggers = make(map[Category]*zap.SugaredLogger)
	logFile *os.File
)

// Initialize builds the process-wide logger. It may be called again to
// reconfigure; the previous debug file is closed.
func Initialize(opts Options) error {
	level := zapcore.WarnLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	consoleCfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		NameKey:          "logger",
		EncodeLevel:      zapcore.LowercaseLevelEncoder,
		ConsoleSeparator: " ",
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(stderr), level),
	}

	var file *os.File
	if opts.Debug {
		if opts.Dir == "" {
			return fmt.Errorf("debug log directory required")
		}
		path := filepath.Join(opts.Dir, DebugLogName)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open debug log %s: %w", path, err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(f),
			zapcore.DebugLevel,
		))
	}

	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	base = zap.New(zapcore.NewTee(cores...))
	logFile = file
	loggers = make(map[Category]*zap.SugaredLogger)
	return nil
}

// WithInvocation tags every subsequent entry with the invocation id.
func WithInvocation(id string) {
	mu.Lock()
	defer mu.Unlock()
	base = base.With(zap.String("invocation", id))
	loggers = make(map[Category]*zap.SugaredLogger)
}

// Get returns (or creates) a logger for the given category.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := base.Named(string(category)).Sugar()
	loggers[category] = l
	return l
}

// CloseAll flushes and closes the debug log (call at shutdown).
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	base = zap.NewNop()
	loggers = make(map[Category]*zap.SugaredLogger)
}

func closeLocked() {
	_ = base.Sync()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

func Boot(format string, args ...interface{}) { Get(CategoryBoot).Infof(format, args...) }

func ConfigDebug(format string, args ...interface{}) { Get(CategoryConfig).Debugf(format, args...) }
func ConfigWarn(format string, args ...interface{})  { Get(CategoryConfig).Warnf(format, args...) }

func Rewrite(format string, args ...interface{})      { Get(CategoryRewrite).Infof(format, args...) }
func RewriteDebug(format string, args ...interface{}) { Get(CategoryRewrite).Debugf(format, args...) }
func RewriteWarn(format string, args ...interface{})  { Get(CategoryRewrite).Warnf(format, args...) }

func Launch(format string, args ...interface{})      { Get(CategoryLaunch).Infof(format, args...) }
func LaunchDebug(format string, args ...interface{}) { Get(CategoryLaunch).Debugf(format, args...) }

func TeeDebug(format string, args ...interface{}) { Get(CategoryTee).Debugf(format, args...) }
func TeeWarn(format string, args ...interface{})  { Get(CategoryTee).Warnf(format, args...) }
func TeeError(format string, args ...interface{}) { Get(CategoryTee).Errorf(format, args...) }

func TraceDebug(format string, args ...interface{}) { Get(CategoryTrace).Debugf(format, args...) }
func TraceError(format string, args ...interface{}) { Get(CategoryTrace).Errorf(format, args...) }

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	return elapsed
}
