package app

import "fmt"

// Context carries the run's verbosity settings and doubles as the
// kclog.Logger every keychain read is handed. There are no timeouts or
// cancellation to carry here: a dump is a single bounded pass over a
// file already read into memory, and the CLI's own Ctrl-C handling is
// the only cancellation path.
type Context struct {
	Verbose bool
	Quiet   bool
}

// NewContext creates a new application context.
func NewContext() *Context {
	return &Context{}
}

// Error outputs an error message unless quiet
func (c *Context) Error(message string) {
	if !c.Quiet {
		println("Error:", message)
	}
}

// Debugf implements kclog.Logger: a debug line, shown only when Verbose
// and not Quiet.
func (c *Context) Debugf(format string, args ...any) {
	if !c.Quiet && c.Verbose {
		println(fmt.Sprintf(format, args...))
	}
}

// Warnf implements kclog.Logger: a warning line, shown unless Quiet.
func (c *Context) Warnf(format string, args ...any) {
	if !c.Quiet {
		println("warning:", fmt.Sprintf(format, args...))
	}
}
