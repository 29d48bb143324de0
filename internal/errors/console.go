package errors

import "github.com/cristianoliveira/tab-recall/internal/colors"

// printer is one severity level of console output.
type printer func(msgs ...string)

// console routes each severity to its own printer.
type console struct {
	errorf, warning, info, success printer
}

var _ ColorOutput = console{}

// stdConsole prints through the colors package: errors and warnings on
// stderr, the rest on stdout.
var stdConsole = console{
	errorf:  colors.Error,
	warning: colors.Warning,
	info:    colors.Info,
	success: colors.Success,
}

func (c console) Error(msgs ...string)   { c.errorf(msgs...) }
func (c console) Warning(msgs ...string) { c.warning(msgs...) }
func (c console) Info(msgs ...string)    { c.info(msgs...) }
func (c console) Success(msgs ...string) { c.success(msgs...) }

// NewDefaultCLIHandler returns a handler that reports on the terminal.
func NewDefaultCLIHandler() *CLIHandler {
	return NewCLIHandler(stdConsole)
}
