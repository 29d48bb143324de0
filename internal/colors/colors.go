// Package colors provides color output utilities.
package colors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles used for console output. lipgloss drops the colors when the output
// is not a terminal.
var (
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	DebugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

const checkmark = "✓"

// Logger defines the interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var (
	debugEnabled    = false
	inErrorHandling = false
	errorMutex      sync.RWMutex
	logger          Logger
	loggerMu        sync.RWMutex

	outputMu  sync.RWMutex
	stdoutW   io.Writer
	stderrW   io.Writer
	quietMode bool
)

func init() {
	if val := os.Getenv("TAB_RECALL_DEBUG"); val == "true" || val == "1" {
		debugEnabled = true
	}
}

// SetDebug enables or disables debug output.
func SetDebug(enabled bool) {
	debugEnabled = enabled
}

// DebugEnabled reports whether debug output is on.
func DebugEnabled() bool {
	return debugEnabled
}

// SetQuiet suppresses Info and Success messages.
func SetQuiet(enabled bool) {
	outputMu.Lock()
	defer outputMu.Unlock()
	quietMode = enabled
}

// SetLogger sets the structured logger to mirror console output.
func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// SetOutput redirects console output. A nil writer restores the process
// stream. The native messaging host routes everything to stderr because
// stdout carries the protocol.
func SetOutput(stdout, stderr io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	stdoutW = stdout
	stderrW = stderr
}

func outWriter() io.Writer {
	outputMu.RLock()
	defer outputMu.RUnlock()
	if stdoutW != nil {
		return stdoutW
	}
	return os.Stdout
}

func errWriter() io.Writer {
	outputMu.RLock()
	defer outputMu.RUnlock()
	if stderrW != nil {
		return stderrW
	}
	return os.Stderr
}

func isQuiet() bool {
	outputMu.RLock()
	defer outputMu.RUnlock()
	return quietMode
}

func currentLogger() Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// errorFallback logs an error message without using colors to avoid recursion.
func errorFallback(msg string) {
	fmt.Fprintf(errWriter(), "%s\n", msg)
}

// emit writes line to w and reports write failures once, falling back to a
// plain stderr write when already handling a failure.
func emit(w io.Writer, line, what string, report func(...string)) {
	_, err := fmt.Fprintln(w, line)
	if err == nil {
		return
	}
	errorMutex.RLock()
	alreadyHandling := inErrorHandling
	errorMutex.RUnlock()
	if alreadyHandling {
		errorFallback("failed to print " + what + " message: " + err.Error())
		return
	}
	errorMutex.Lock()
	inErrorHandling = true
	errorMutex.Unlock()
	defer func() {
		errorMutex.Lock()
		inErrorHandling = false
		errorMutex.Unlock()
	}()
	report("failed to print " + what + " message: " + err.Error())
}

// Error outputs an error message to stderr.
func Error(msgs ...string) {
	msg := strings.Join(msgs, " ")
	if l := currentLogger(); l != nil {
		l.Error(msg)
	}
	emit(errWriter(), ErrorStyle.Render("Error:")+" "+msg, "error", Warning)
}

// Success outputs a success message to stdout.
func Success(msgs ...string) {
	msg := strings.Join(msgs, " ")
	if l := currentLogger(); l != nil {
		l.Info(msg, "type", "success")
	}
	if isQuiet() {
		return
	}
	emit(outWriter(), SuccessStyle.Render(checkmark)+" "+msg, "success", Warning)
}

// Warning outputs a warning message to stderr.
func Warning(msgs ...string) {
	msg := strings.Join(msgs, " ")
	if l := currentLogger(); l != nil {
		l.Warn(msg)
	}
	emit(errWriter(), WarningStyle.Render("Warning:")+" "+msg, "warning", Error)
}

// Info outputs an informational message to stdout.
func Info(msgs ...string) {
	msg := strings.Join(msgs, " ")
	if l := currentLogger(); l != nil {
		l.Info(msg)
	}
	if isQuiet() {
		return
	}
	emit(outWriter(), InfoStyle.Render(msg), "info", Warning)
}

// LogInfo outputs a log informational message to stderr.
func LogInfo(msgs ...string) {
	msg := strings.Join(msgs, " ")
	if l := currentLogger(); l != nil {
		l.Info(msg)
	}
	emit(errWriter(), InfoStyle.Render(msg), "log info", Warning)
}

// Debug outputs a debug message to stderr if debug is enabled.
func Debug(msgs ...string) {
	if !debugEnabled {
		return
	}
	msg := strings.Join(msgs, " ")
	if l := currentLogger(); l != nil {
		l.Debug(msg)
	}
	emit(errWriter(), DebugStyle.Render("Debug:")+" "+msg, "debug", Warning)
}
