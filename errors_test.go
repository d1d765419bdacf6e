// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestBridgeErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *BridgeError
		want string
	}{
		{
			name: "with underlying error",
			err:  storeError("commit", "rpc failed", fmt.Errorf("connection reset")),
			want: "snmpbridge: commit failed: rpc failed: connection reset",
		},
		{
			name: "without underlying error",
			err:  internalError("scalar-get", "value does not encode", nil),
			want: "snmpbridge: scalar-get failed: value does not encode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBridgeErrorUnwrap(t *testing.T) {
	underlying := fmt.Errorf("connection reset")
	err := storeError("get-config", "rpc failed", underlying)

	if !errors.Is(err, underlying) {
		t.Errorf("errors.Is() failed to find underlying error")
	}

	var bridgeErr *BridgeError
	if !errors.As(err, &bridgeErr) {
		t.Fatalf("errors.As() failed to find BridgeError")
	}
	if bridgeErr.Kind != KindStore {
		t.Errorf("Kind = %v, want store", bridgeErr.Kind)
	}
	if bridgeErr.Operation != "get-config" {
		t.Errorf("Operation = %q, want get-config", bridgeErr.Operation)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindInternal, "internal"},
		{KindStore, "store"},
		{KindProtocol, "protocol"},
		{ErrorKind(9), "unknown(9)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestParseRPCErrors(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantCount int
		wantTag   string
		wantMsg   string
	}{
		{
			name:      "no errors",
			raw:       `<rpc-reply><ok/></rpc-reply>`,
			wantCount: 0,
		},
		{
			name: "single error",
			raw: `<rpc-reply>
				<rpc-error>
					<error-type>application</error-type>
					<error-tag>invalid-value</error-tag>
					<error-severity>error</error-severity>
					<error-message>value out of range</error-message>
				</rpc-error>
			</rpc-reply>`,
			wantCount: 1,
			wantTag:   "invalid-value",
			wantMsg:   "value out of range",
		},
		{
			name: "multiple errors",
			raw: `<rpc-reply>
				<rpc-error><error-tag>invalid-value</error-tag></rpc-error>
				<rpc-error><error-tag>data-missing</error-tag></rpc-error>
			</rpc-reply>`,
			wantCount: 2,
			wantTag:   "invalid-value",
		},
		{
			name:      "empty reply",
			raw:       "",
			wantCount: 0,
		},
		{
			name:      "reply mentioning rpc-error in text only",
			raw:       `<rpc-reply><data><note>no rpc-error here</note></data></rpc-reply>`,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseRPCErrors(tt.raw)
			if len(errs) != tt.wantCount {
				t.Fatalf("parseRPCErrors() returned %d errors, want %d", len(errs), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			if errs[0].Tag != tt.wantTag {
				t.Errorf("Tag = %q, want %q", errs[0].Tag, tt.wantTag)
			}
			if tt.wantMsg != "" && strings.TrimSpace(errs[0].Message) != tt.wantMsg {
				t.Errorf("Message = %q, want %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestRPCErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  RPCError
		want string
	}{
		{
			name: "with message",
			err:  RPCError{Type: "application", Severity: "error", Tag: "invalid-value", Message: "value out of range"},
			want: "rpc-error (application/error): value out of range",
		},
		{
			name: "falls back to tag",
			err:  RPCError{Type: "protocol", Severity: "error", Tag: "operation-failed"},
			want: "rpc-error (protocol/error): operation-failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
