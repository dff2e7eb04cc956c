// Package logger provides leveled logging for the SwapSync CLI.
// Debug, Info and Warn messages are printed to stderr only when verbose
// mode is enabled via the --verbose flag, so sync decisions can be traced
// without cluttering normal output. Error messages are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func write(always bool, level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if always || verbose {
		fmt.Fprintf(output, "["+level+"] "+format+"\n", args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(false, "DEBUG", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(false, "INFO", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	write(false, "WARN", format, args...)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	write(true, "ERROR", format, args...)
}

// Scope prefixes every message with a component name, e.g. "[DEBUG] sync: ...".
type Scope string

// Debug logs through the package Debug with the scope prefix.
func (s Scope) Debug(format string, args ...any) {
	Debug(string(s)+": "+format, args...)
}

// Info logs through the package Info with the scope prefix.
func (s Scope) Info(format string, args ...any) {
	Info(string(s)+": "+format, args...)
}

// Warn logs through the package Warn with the scope prefix.
func (s Scope) Warn(format string, args ...any) {
	Warn(string(s)+": "+format, args...)
}

// Error logs through the package Error with the scope prefix.
func (s Scope) Error(format string, args ...any) {
	Error(string(s)+": "+format, args...)
}
