// Package logger provides verbose logging for the shipforge CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow the deployment pipeline.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type state struct {
	mu      sync.RWMutex
	verbose bool
	out     io.Writer
}

var std = &state{out: os.Stderr}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	std.mu.Lock()
	std.verbose = v
	std.mu.Unlock()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	std.mu.RLock()
	defer std.mu.RUnlock()
	return std.verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	std.out = w
	std.mu.Unlock()
}

func emit(prefix, format string, args ...any) {
	std.mu.RLock()
	defer std.mu.RUnlock()
	if !std.verbose {
		return
	}
	fmt.Fprintf(std.out, prefix+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	emit("[DEBUG] ", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	emit("[INFO] ", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	emit("[WARN] ", format, args...)
}

// Section prints a pipeline stage header if verbose mode is enabled.
func Section(name string) {
	emit("", "\n=== %s ===", name)
}
