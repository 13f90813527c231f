// Package logger provides leveled logging for the kbase CLI.
// When verbose mode is enabled via the --verbose flag, debug and info
// messages are written to stderr to help users follow the ingest and
// query pipelines. Warnings and errors are always written.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/felixgeelhaar/bolt/v3"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	format            = FormatConsole
	log               = build()
)

// build creates the bolt logger for the current settings. Callers hold mu.
func build() *bolt.Logger {
	var handler bolt.Handler
	if format == FormatJSON {
		handler = bolt.NewJSONHandler(output)
	} else {
		handler = bolt.NewConsoleHandler(output)
	}

	level := bolt.WARN
	if verbose {
		level = bolt.DEBUG
	}
	return bolt.New(handler).SetLevel(level)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	log = build()
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
	log = build()
}

// SetFormat selects console or json output. Unknown formats fall back to console.
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	if f != FormatJSON {
		f = FormatConsole
	}
	format = f
	log = build()
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debug().Msg(fmt.Sprintf(format, args...))
}

// Section logs a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	log.Info().Str("section", name).Msg("=== " + name + " ===")
}

// Info logs an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Info().Msg(fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs an error together with a message.
func Error(err error, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	log.Error().Err(err).Msg(fmt.Sprintf(format, args...))
}

// Transition logs a flow state change if verbose mode is enabled.
func Transition(flow, from, to string) {
	mu.RLock()
	defer mu.RUnlock()
	log.Debug().Str("flow", flow).Str("from_state", from).Str("to_state", to).Msg("state transition")
}
