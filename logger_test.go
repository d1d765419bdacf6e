// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// newTestLogger creates a BridgeLogger writing to in-memory buffers with a
// fixed clock.
func newTestLogger(level LogLevel, dst LogDestination) (*BridgeLogger, *bytes.Buffer, *bytes.Buffer) {
	errBuf := &bytes.Buffer{}
	outBuf := &bytes.Buffer{}
	l := &BridgeLogger{
		ident:  "snmpd-bridge",
		level:  level,
		dst:    dst,
		stderr: errBuf,
		stdout: outBuf,
		now:    func() time.Time { return time.Date(2024, 3, 7, 12, 30, 45, 0, time.UTC) },
	}
	return l, errBuf, outBuf
}

// TestBridgeLogger_LogLevels verifies log level filtering
func TestBridgeLogger_LogLevels(t *testing.T) {
	tests := []struct {
		name          string
		level         LogLevel
		logFunc       func(*BridgeLogger)
		expectMessage bool
	}{
		{
			name:          "debug level logs debug",
			level:         LogLevelDebug,
			logFunc:       func(l *BridgeLogger) { l.Debug("test message") },
			expectMessage: true,
		},
		{
			name:          "info level filters debug",
			level:         LogLevelInfo,
			logFunc:       func(l *BridgeLogger) { l.Debug("test message") },
			expectMessage: false,
		},
		{
			name:          "info level logs info",
			level:         LogLevelInfo,
			logFunc:       func(l *BridgeLogger) { l.Info("test message") },
			expectMessage: true,
		},
		{
			name:          "warn level filters info",
			level:         LogLevelWarn,
			logFunc:       func(l *BridgeLogger) { l.Info("test message") },
			expectMessage: false,
		},
		{
			name:          "error level filters warn",
			level:         LogLevelError,
			logFunc:       func(l *BridgeLogger) { l.Warn("test message") },
			expectMessage: false,
		},
		{
			name:          "error level logs error",
			level:         LogLevelError,
			logFunc:       func(l *BridgeLogger) { l.Error("test message") },
			expectMessage: true,
		},
		{
			name:          "none level filters error",
			level:         LogLevelNone,
			logFunc:       func(l *BridgeLogger) { l.Error("test message") },
			expectMessage: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, errBuf, _ := newTestLogger(tt.level, LogStderr)
			tt.logFunc(l)

			got := errBuf.String()
			if tt.expectMessage && !strings.Contains(got, "test message") {
				t.Errorf("expected message in output, got %q", got)
			}
			if !tt.expectMessage && got != "" {
				t.Errorf("expected no output, got %q", got)
			}
		})
	}
}

func TestBridgeLogger_Format(t *testing.T) {
	l, errBuf, _ := newTestLogger(LogLevelDebug, LogStderr)
	l.Info("session established", "target", "192.168.1.1", "port", 830)

	want := "Mar  7 12:30:45: snmpd-bridge: [INFO] session established target=192.168.1.1 port=830\n"
	if got := errBuf.String(); got != want {
		t.Errorf("log line = %q, want %q", got, want)
	}
}

func TestBridgeLogger_Destinations(t *testing.T) {
	tests := []struct {
		name       string
		dst        LogDestination
		wantStderr bool
		wantStdout bool
	}{
		{
			name:       "stderr only",
			dst:        LogStderr,
			wantStderr: true,
		},
		{
			name:       "stdout only",
			dst:        LogStdout,
			wantStdout: true,
		},
		{
			name:       "combined stderr and stdout",
			dst:        LogStderr | LogStdout,
			wantStderr: true,
			wantStdout: true,
		},
		{
			name: "no plain destinations",
			dst:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, errBuf, outBuf := newTestLogger(LogLevelInfo, tt.dst)
			l.Info("fan out")

			if got := strings.Contains(errBuf.String(), "fan out"); got != tt.wantStderr {
				t.Errorf("stderr output = %v, want %v", got, tt.wantStderr)
			}
			if got := strings.Contains(outBuf.String(), "fan out"); got != tt.wantStdout {
				t.Errorf("stdout output = %v, want %v", got, tt.wantStdout)
			}
		})
	}
}

func TestBridgeLogger_FileDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.log")
	l, _, _ := newTestLogger(LogLevelInfo, LogFile)
	if err := l.SetFile(path); err != nil {
		t.Fatalf("SetFile() error = %v", err)
	}
	l.Info("persisted line", "key", "value")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "persisted line key=value") {
		t.Errorf("file content = %q, want persisted line", string(data))
	}

	// Close is safe to call again
	if err := l.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestBridgeLogger_OddKeyValuePairs(t *testing.T) {
	l, errBuf, _ := newTestLogger(LogLevelInfo, LogStderr)
	l.Info("odd pairs", "lonely")

	if !strings.Contains(errBuf.String(), "lonely=<MISSING>") {
		t.Errorf("expected <MISSING> marker, got %q", errBuf.String())
	}
}

// TestSanitizeLogValue verifies log injection prevention
func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{
			name:  "plain string",
			input: "hello",
			want:  "hello",
		},
		{
			name:  "newline replaced",
			input: "line1\nline2",
			want:  "line1 line2",
		},
		{
			name:  "carriage return replaced",
			input: "a\rb",
			want:  "a b",
		},
		{
			name:  "tab replaced",
			input: "a\tb",
			want:  "a b",
		},
		{
			name:  "control character replaced",
			input: "a\x07b",
			want:  "a.b",
		},
		{
			name:  "delete character replaced",
			input: "a\x7fb",
			want:  "a.b",
		},
		{
			name:  "integer value",
			input: 830,
			want:  "830",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogValue(tt.input); got != tt.want {
				t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeLogValue_Truncation(t *testing.T) {
	long := strings.Repeat("x", MaxLogValueLength+100)
	got := sanitizeLogValue(long)

	if !strings.HasSuffix(got, "...[TRUNCATED]") {
		t.Errorf("long value not truncated: %d chars", len(got))
	}
	if len(got) != MaxLogValueLength+len("...[TRUNCATED]") {
		t.Errorf("truncated length = %d, want %d", len(got), MaxLogValueLength+len("...[TRUNCATED]"))
	}
}

func TestNoOpLogger(t *testing.T) {
	// must be safe to call with any arguments
	l := &NoOpLogger{}
	l.Debug("msg", "key", "value")
	l.Info("msg")
	l.Warn("msg", "odd")
	l.Error("msg", nil, nil)
}

func TestNewBridgeLogger_NoSyslog(t *testing.T) {
	l, err := NewBridgeLogger("test", LogLevelInfo, LogStderr)
	if err != nil {
		t.Fatalf("NewBridgeLogger() error = %v", err)
	}
	defer l.Close() //nolint:errcheck
	if l.sys != nil {
		t.Errorf("syslog opened without LogSyslog destination")
	}
}
