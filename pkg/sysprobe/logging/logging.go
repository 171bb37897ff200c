// Package logging provides component loggers for sysprobe on top of
// charmbracelet/log. The CLI and the probe packages share this package.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Close()
//
//	logger := logging.Get("mounts")
//	logger.Debug("sizing call", "count", 12)
//
// Loggers obtained before Init are valid. They discard output until Init
// is called and pick up the new sinks afterwards.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) toCharmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty disables file output.
	Path string

	// Components maps component names to their log levels.
	Components map[string]string

	// ConsoleLevel enables stderr output at the specified level.
	// Empty disables console output.
	ConsoleLevel string

	// Console overrides the console writer. Nil means os.Stderr.
	Console io.Writer
}

// Logger is a named component logger. It is cheap to copy and safe for
// concurrent use.
type Logger struct {
	component string
	fields    []interface{}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args...)
}

// With returns a logger that adds args to every entry.
func (l *Logger) With(args ...interface{}) *Logger {
	fields := make([]interface{}, 0, len(l.fields)+len(args))
	fields = append(fields, l.fields...)
	fields = append(fields, args...)
	return &Logger{component: l.component, fields: fields}
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	sinks := globalState.sinksFor(l.component)
	if len(l.fields) > 0 {
		args = append(append([]interface{}{}, l.fields...), args...)
	}
	for _, sink := range sinks {
		logTo(sink, level, msg, args...)
	}
}

func logTo(logger *log.Logger, level Level, msg string, args ...interface{}) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, args...)
	case LevelInfo:
		logger.Info(msg, args...)
	case LevelWarn:
		logger.Warn(msg, args...)
	case LevelError:
		logger.Error(msg, args...)
	}
}

// state holds the global logging state.
type state struct {
	mu          sync.RWMutex
	initialized bool
	file        *os.File
	cfg         resolvedConfig
	sinks       map[string][]*log.Logger
}

type resolvedConfig struct {
	level          Level
	components     map[string]Level
	consoleEnabled bool
	consoleLevel   Level
	console        io.Writer
}

var globalState = &state{
	sinks: make(map[string][]*log.Logger),
}

// Init initializes the logging system. Calling it again replaces the
// previous configuration and closes the previous log file.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	resolved := resolvedConfig{
		level:      level,
		components: make(map[string]Level, len(cfg.Components)),
		console:    cfg.Console,
	}
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		resolved.components[comp] = parsed
	}
	if cfg.ConsoleLevel != "" {
		consoleLevel, err := ParseLevel(cfg.ConsoleLevel)
		if err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
		resolved.consoleLevel = consoleLevel
		resolved.consoleEnabled = true
	}
	if resolved.console == nil {
		resolved.console = os.Stderr
	}

	var file *os.File
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		file, err = os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
	}

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.file != nil {
		_ = globalState.file.Close()
	}
	globalState.file = file
	globalState.cfg = resolved
	globalState.sinks = make(map[string][]*log.Logger)
	globalState.initialized = true

	return nil
}

// Get returns a logger for the given component.
func Get(component string) *Logger {
	return &Logger{component: component}
}

// sinksFor returns the charm loggers for component, creating them on
// first use after Init.
func (s *state) sinksFor(component string) []*log.Logger {
	s.mu.RLock()
	if !s.initialized {
		s.mu.RUnlock()
		return nil
	}
	if sinks, ok := s.sinks[component]; ok {
		s.mu.RUnlock()
		return sinks
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil
	}
	if sinks, ok := s.sinks[component]; ok {
		return sinks
	}

	level := s.cfg.level
	if compLevel, ok := s.cfg.components[component]; ok {
		level = compLevel
	}

	var sinks []*log.Logger
	if s.file != nil {
		sinks = append(sinks, log.NewWithOptions(s.file, log.Options{
			Level:           level.toCharmLevel(),
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		}))
	}
	if s.cfg.consoleEnabled {
		consoleLevel := s.cfg.consoleLevel
		if level > consoleLevel {
			consoleLevel = level
		}
		sinks = append(sinks, log.NewWithOptions(s.cfg.console, log.Options{
			Level:           consoleLevel.toCharmLevel(),
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          component,
		}))
	}

	s.sinks[component] = sinks
	return sinks
}

// Close flushes and closes the log file. Loggers discard afterwards.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if !globalState.initialized {
		return nil
	}

	globalState.initialized = false
	globalState.sinks = make(map[string][]*log.Logger)

	if globalState.file != nil {
		err := globalState.file.Close()
		globalState.file = nil
		if err != nil {
			return fmt.Errorf("closing log file: %w", err)
		}
	}

	return nil
}

// DefaultLogPath returns $XDG_STATE_HOME/sysprobe/sysprobe.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "sysprobe", "sysprobe.log")
}
