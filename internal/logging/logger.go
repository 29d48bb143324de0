package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/cristianoliveira/tab-recall/internal/colors"
)

// Logger is the structured logging interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// With returns a new logger with additional key-value pairs.
	With(args ...any) Logger
	// Shutdown flushes any buffered logs and releases resources.
	Shutdown() error
}

// fileLogger writes JSON lines through charmbracelet/log.
type fileLogger struct {
	mu       *sync.RWMutex
	clogger  *clog.Logger
	file     *os.File
	redactor *redactor
	fields   map[string]any
	path     string
}

// Init creates a Logger for cfg. A disabled config yields a no-op logger.
// Old files are rotated away before the new file is opened.
func Init(cfg Config) (Logger, error) {
	if !cfg.Enabled {
		return noopLogger{}, nil
	}
	logDir, err := LogDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine log directory: %w", err)
	}
	if err := rotate(logDir, cfg.MaxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
	}
	path := filepath.Join(logDir, fileName(cfg, time.Now()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	clogger := clog.NewWithOptions(f, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           parseLevel(cfg.Level),
	})
	clogger.SetFormatter(clog.JSONFormatter)
	clogger = clogger.With("pid", cfg.PID, "command", cfg.Command)
	return &fileLogger{
		mu:       &sync.RWMutex{},
		clogger:  clogger,
		file:     f,
		redactor: newRedactor(),
		fields:   map[string]any{},
		path:     path,
	}, nil
}

func fileName(cfg Config, now time.Time) string {
	command := strings.Map(func(r rune) rune {
		if r == ' ' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, cfg.Command)
	return fmt.Sprintf("%s%s_PID%d_%s.log", filePrefix, now.Format("20060102_150405"), cfg.PID, command)
}

// parseLevel converts a string level to clog.Level.
func parseLevel(level string) clog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return clog.DebugLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

func (l *fileLogger) Debug(msg string, args ...any) { l.log(clog.DebugLevel, msg, args) }
func (l *fileLogger) Info(msg string, args ...any)  { l.log(clog.InfoLevel, msg, args) }
func (l *fileLogger) Warn(msg string, args ...any)  { l.log(clog.WarnLevel, msg, args) }
func (l *fileLogger) Error(msg string, args ...any) { l.log(clog.ErrorLevel, msg, args) }

func (l *fileLogger) log(level clog.Level, msg string, args []any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.file == nil {
		return
	}
	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	all := make([]any, 0, len(keys)*2+len(args))
	for _, k := range keys {
		all = append(all, k, l.fields[k])
	}
	all = append(all, args...)
	l.clogger.Log(level, msg, l.redactor.redact(all)...)
}

func (l *fileLogger) With(args ...any) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fields := make(map[string]any, len(l.fields)+len(args)/2)
	for k, v := range l.fields {
		fields[k] = v
	}
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			fields[key] = args[i+1]
		}
	}
	return &fileLogger{
		mu:       l.mu,
		clogger:  l.clogger,
		file:     l.file,
		redactor: l.redactor,
		fields:   fields,
		path:     l.path,
	}
}

// Shutdown closes the underlying file. Children created with With share it.
func (l *fileLogger) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// noopLogger is a logger that discards all output.
type noopLogger struct{}

func (n noopLogger) Debug(msg string, args ...any) {}
func (n noopLogger) Info(msg string, args ...any)  {}
func (n noopLogger) Warn(msg string, args ...any)  {}
func (n noopLogger) Error(msg string, args ...any) {}
func (n noopLogger) With(args ...any) Logger       { return n }
func (n noopLogger) Shutdown() error               { return nil }

var (
	globalLogger   Logger
	globalLoggerMu sync.RWMutex
)

// InitGlobal initializes the global logger from the global config and mirrors
// console output into it. Calling it again replaces the previous logger.
func InitGlobal() error {
	logger, err := Init(FromGlobalConfig())
	if err != nil {
		return err
	}
	globalLoggerMu.Lock()
	previous := globalLogger
	globalLogger = logger
	globalLoggerMu.Unlock()
	if previous != nil {
		_ = previous.Shutdown()
	}
	colors.SetLogger(logger)
	if path := CurrentLogFile(); path != "" {
		colors.Debug("logging to file: " + path)
	}
	return nil
}

// GetGlobal returns the global logger, or a no-op logger if not initialized.
func GetGlobal() Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	if globalLogger == nil {
		return noopLogger{}
	}
	return globalLogger
}

// Debug logs a debug message using the global logger.
func Debug(msg string, args ...any) { GetGlobal().Debug(msg, args...) }

// Info logs an info message using the global logger.
func Info(msg string, args ...any) { GetGlobal().Info(msg, args...) }

// Warn logs a warning message using the global logger.
func Warn(msg string, args ...any) { GetGlobal().Warn(msg, args...) }

// Error logs an error message using the global logger.
func Error(msg string, args ...any) { GetGlobal().Error(msg, args...) }

// With returns a new global logger with additional key-value pairs.
func With(args ...any) Logger { return GetGlobal().With(args...) }

// ShutdownGlobal shuts down the global logger and detaches it from console output.
func ShutdownGlobal() error {
	globalLoggerMu.Lock()
	logger := globalLogger
	globalLogger = nil
	globalLoggerMu.Unlock()
	colors.SetLogger(nil)
	if logger == nil {
		return nil
	}
	return logger.Shutdown()
}

// CurrentLogFile returns the path of the active log file, or "" when logging
// is disabled.
func CurrentLogFile() string {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	if fl, ok := globalLogger.(*fileLogger); ok {
		return fl.path
	}
	return ""
}
