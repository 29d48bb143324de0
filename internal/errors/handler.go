// Package errors reports command failures to the user and maps them to
// process exit codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"sync"
)

// Exit codes returned by the tab-recall binary.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ErrUsage marks errors caused by bad command-line input.
var ErrUsage = stderrors.New("usage error")

// Usagef returns an error wrapping ErrUsage.
func Usagef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case stderrors.Is(err, ErrUsage):
		return ExitUsage
	default:
		return ExitFailure
	}
}

// ErrorHandler is the interface for error handling.
type ErrorHandler interface {
	Error(msg string)
	Warning(msg string)
	Info(msg string)
	Success(msg string)
}

// ColorOutput is the sink CLIHandler writes to.
type ColorOutput interface {
	Error(msgs ...string)
	Warning(msgs ...string)
	Info(msgs ...string)
	Success(msgs ...string)
}

// CLIHandler reports errors to the console. Calls are serialized so that
// concurrent reports never interleave.
type CLIHandler struct {
	colors ColorOutput
	mu     sync.Mutex
}

var _ ErrorHandler = (*CLIHandler)(nil)

func NewCLIHandler(colors ColorOutput) *CLIHandler {
	return &CLIHandler{colors: colors}
}

// Handle reports err, if any, and returns the exit code for it.
func (h *CLIHandler) Handle(err error) int {
	if err == nil {
		return ExitOK
	}
	h.Error(err.Error())
	return ExitCode(err)
}

func (h *CLIHandler) Error(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors.Error(msg)
}

func (h *CLIHandler) Warning(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors.Warning(msg)
}

func (h *CLIHandler) Info(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors.Info(msg)
}

func (h *CLIHandler) Success(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors.Success(msg)
}
