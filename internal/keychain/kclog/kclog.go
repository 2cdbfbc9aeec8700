// Package kclog defines the small logging sink the keychain core is
// built against. The core never owns a global logger: every component
// that needs to report a non-fatal condition (a skipped record, a
// missing table, a failed unwrap) takes a Logger so callers can capture
// diagnostic output in tests or route it to their own logging setup.
package kclog

// Logger is the minimal sink the keychain core logs through.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Nop discards every message. It is the default when a caller doesn't
// care about diagnostics.
type Nop struct{}

func (Nop) Debugf(string, ...any) {}
func (Nop) Warnf(string, ...any)  {}

// Func adapts two plain functions into a Logger.
type Func struct {
	Debug func(string, ...any)
	Warn  func(string, ...any)
}

func (f Func) Debugf(format string, args ...any) {
	if f.Debug != nil {
		f.Debug(format, args...)
	}
}

func (f Func) Warnf(format string, args ...any) {
	if f.Warn != nil {
		f.Warn(format, args...)
	}
}
