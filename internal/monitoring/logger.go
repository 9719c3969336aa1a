// Package monitoring carries the module's diagnostic logging hook. Parse and
// session code log through Logf so tests can mute the chatter.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger and returns the logger it replaced
// so callers can restore it. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) (prev func(format string, v ...interface{})) {
	prev = Logf
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	Logf = f
	return prev
}
