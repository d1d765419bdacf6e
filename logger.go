// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"fmt"
	"io"
	"log/syslog"
	"os"
	"strings"
	"sync"
	"time"
)

// MaxLogValueLength limits the length of log values to prevent log
// injection and excessive log file growth. Longer values are truncated.
const MaxLogValueLength = 1024

// Logger interface for pluggable logging support
//
// Implementations should use structured logging with key-value pairs.
// The library provides two implementations:
//   - BridgeLogger: leveled logging to a configurable set of destinations
//     (stderr, stdout, file, syslog)
//   - NoOpLogger: zero-overhead logging when disabled (default)
//
// Example custom logger integration:
//
//	type SlogAdapter struct {
//	    logger *slog.Logger
//	}
//
//	func (s *SlogAdapter) Debug(msg string, keysAndValues ...any) {
//	    s.logger.Debug(msg, keysAndValues...)
//	}
//	// ... implement other methods
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// LogLevel represents the severity threshold for logging
type LogLevel int

const (
	// LogLevelDebug enables all log levels (most verbose)
	LogLevelDebug LogLevel = iota

	// LogLevelInfo enables Info, Warn, and Error logs
	LogLevelInfo

	// LogLevelWarn enables Warn and Error logs
	LogLevelWarn

	// LogLevelError enables only Error logs
	LogLevelError

	// LogLevelNone disables all logging
	LogLevelNone
)

// String returns the string representation of a LogLevel
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelNone:
		return "NONE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", l)
	}
}

// LogDestination is a bitmask selecting where BridgeLogger output goes.
// Destinations can be combined, e.g. LogStderr|LogSyslog.
type LogDestination int

const (
	// LogStderr writes timestamped lines to standard error
	LogStderr LogDestination = 1 << iota

	// LogStdout writes timestamped lines to standard output
	LogStdout

	// LogSyslog writes to the system logger under the configured ident
	LogSyslog

	// LogFile writes timestamped lines to the file set with SetFile
	LogFile
)

// BridgeLogger is a leveled logger writing to a configurable destination
// set. It is a process-scoped object configured once at startup and passed
// to the components that emit through it; there is no ambient global
// logging state.
//
// Non-syslog destinations get a syslog-style timestamp prefix; syslog
// applies its own. Output format after the prefix:
//
//	ident: [LEVEL] message key1=value1 key2=value2
//
// Example:
//
//	logger, err := snmpbridge.NewBridgeLogger("snmpd-bridge", snmpbridge.LogLevelInfo,
//	    snmpbridge.LogStderr|snmpbridge.LogSyslog)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Close()
type BridgeLogger struct {
	ident string
	level LogLevel
	dst   LogDestination

	mu   sync.Mutex
	file *os.File
	sys  *syslog.Writer

	// test seams; default to the real streams
	stderr io.Writer
	stdout io.Writer
	now    func() time.Time
}

// NewBridgeLogger creates a BridgeLogger with the given ident, maximum
// level and destination bitmask. When the bitmask includes LogSyslog the
// system logger is opened immediately; an error opening it is returned
// rather than silently dropped. A LogFile destination additionally
// requires SetFile before file output appears.
func NewBridgeLogger(ident string, level LogLevel, dst LogDestination) (*BridgeLogger, error) {
	l := &BridgeLogger{
		ident:  ident,
		level:  level,
		dst:    dst,
		stderr: os.Stderr,
		stdout: os.Stdout,
		now:    time.Now,
	}
	if dst&LogSyslog != 0 {
		sys, err := syslog.New(syslog.LOG_INFO|syslog.LOG_USER, ident)
		if err != nil {
			return nil, fmt.Errorf("failed to open syslog: %w", err)
		}
		l.sys = sys
	}
	return l, nil
}

// SetFile opens (appending) the file used by the LogFile destination,
// closing any previously set file.
func (l *BridgeLogger) SetFile(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
	}
	l.file = f
	return nil
}

// Close releases the file and syslog resources held by the logger.
// Safe to call multiple times.
func (l *BridgeLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var err error
	if l.file != nil {
		err = l.file.Close()
		l.file = nil
	}
	if l.sys != nil {
		if cerr := l.sys.Close(); err == nil {
			err = cerr
		}
		l.sys = nil
	}
	return err
}

// Debug logs a debug message with structured key-value pairs
func (l *BridgeLogger) Debug(msg string, keysAndValues ...any) {
	if l.level <= LogLevelDebug {
		l.log(LogLevelDebug, msg, keysAndValues...)
	}
}

// Info logs an informational message with structured key-value pairs
func (l *BridgeLogger) Info(msg string, keysAndValues ...any) {
	if l.level <= LogLevelInfo {
		l.log(LogLevelInfo, msg, keysAndValues...)
	}
}

// Warn logs a warning message with structured key-value pairs
func (l *BridgeLogger) Warn(msg string, keysAndValues ...any) {
	if l.level <= LogLevelWarn {
		l.log(LogLevelWarn, msg, keysAndValues...)
	}
}

// Error logs an error message with structured key-value pairs
func (l *BridgeLogger) Error(msg string, keysAndValues ...any) {
	if l.level <= LogLevelError {
		l.log(LogLevelError, msg, keysAndValues...)
	}
}

// log formats and fans a message out to every enabled destination. All
// key-value pairs are sanitized to prevent log injection; the message
// string is trusted library text and passed through as is.
func (l *BridgeLogger) log(level LogLevel, msg string, keysAndValues ...any) {
	estimatedSize := len(l.ident) + len(msg) + 12 + len(keysAndValues)*25
	var builder strings.Builder
	builder.Grow(estimatedSize)

	builder.WriteString(l.ident)
	builder.WriteString(": [")
	builder.WriteString(level.String())
	builder.WriteString("] ")
	builder.WriteString(msg)

	for i := 0; i < len(keysAndValues); i += 2 {
		builder.WriteString(" ")
		builder.WriteString(sanitizeLogValue(keysAndValues[i]))
		if i+1 < len(keysAndValues) {
			builder.WriteString("=")
			builder.WriteString(sanitizeLogValue(keysAndValues[i+1]))
		} else {
			// odd-length array: mark missing value explicitly
			builder.WriteString("=<MISSING>")
		}
	}
	line := builder.String()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dst&LogSyslog != 0 && l.sys != nil {
		switch level {
		case LogLevelDebug:
			l.sys.Debug(line) //nolint:errcheck // syslog errors are not recoverable here
		case LogLevelInfo:
			l.sys.Info(line) //nolint:errcheck
		case LogLevelWarn:
			l.sys.Warning(line) //nolint:errcheck
		default:
			l.sys.Err(line) //nolint:errcheck
		}
	}

	// syslog applies its own timestamp; the plain sinks mimic it
	stamp := l.now().Format("Jan _2 15:04:05")
	if l.dst&LogStderr != 0 {
		fmt.Fprintf(l.stderr, "%s: %s\n", stamp, line)
	}
	if l.dst&LogStdout != 0 {
		fmt.Fprintf(l.stdout, "%s: %s\n", stamp, line)
	}
	if l.dst&LogFile != 0 && l.file != nil {
		fmt.Fprintf(l.file, "%s: %s\n", stamp, line)
	}
}

// sanitizeLogValue sanitizes a log value to prevent log injection attacks
// and limit log size. Control characters are replaced with safe
// alternatives so attacker-controlled values cannot forge log entries.
func sanitizeLogValue(val any) string {
	str := fmt.Sprintf("%v", val)

	if len(str) > MaxLogValueLength {
		str = str[:MaxLogValueLength] + "...[TRUNCATED]"
	}

	var builder strings.Builder
	builder.Grow(len(str))
	for _, r := range str {
		switch {
		case r == '\n' || r == '\r' || r == '\t' || r == '\f':
			builder.WriteRune(' ')
		case r < 32 || r == 127:
			builder.WriteRune('.')
		default:
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// NoOpLogger is a no-operation logger that discards all log messages
//
// This is the default logger used when no custom logger is configured.
type NoOpLogger struct{}

// Debug discards the log message
func (n *NoOpLogger) Debug(_ string, _ ...any) {}

// Info discards the log message
func (n *NoOpLogger) Info(_ string, _ ...any) {}

// Warn discards the log message
func (n *NoOpLogger) Warn(_ string, _ ...any) {}

// Error discards the log message
func (n *NoOpLogger) Error(_ string, _ ...any) {}
