// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// ErrorKind classifies a bridge error per the handling policy: protocol
// errors surface to the SNMP client as a non-fatal status, everything else
// is reported as a generic internal error for the current PDU only.
type ErrorKind int

const (
	// KindInternal covers faults inside the bridge itself: codec failures,
	// malformed schema, transaction sequencing violations
	KindInternal ErrorKind = iota

	// KindStore covers RPC-level failures reported by the config-store,
	// including rpc-error elements parsed out of a reply
	KindStore

	// KindProtocol covers malformed client input reported back to the SNMP
	// client as a standard error status (wrong type, no such instance)
	KindProtocol
)

// String returns the string representation of an ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindStore:
		return "store"
	case KindProtocol:
		return "protocol"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// BridgeError represents a structured bridge error with operation context
type BridgeError struct {
	// Operation name that failed (e.g. "scalar-get", "commit")
	Operation string

	// Kind classifies the error for status mapping
	Kind ErrorKind

	// Message is the human-readable error message
	Message string

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface
func (e *BridgeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("snmpbridge: %s failed: %s: %s", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("snmpbridge: %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As chains
func (e *BridgeError) Unwrap() error {
	return e.Err
}

func internalError(operation, message string, err error) *BridgeError {
	return &BridgeError{Operation: operation, Kind: KindInternal, Message: message, Err: err}
}

func storeError(operation, message string, err error) *BridgeError {
	return &BridgeError{Operation: operation, Kind: KindStore, Message: message, Err: err}
}

func protocolError(operation, message string, err error) *BridgeError {
	return &BridgeError{Operation: operation, Kind: KindProtocol, Message: message, Err: err}
}

// RPCError is a NETCONF rpc-error element parsed from a store reply
type RPCError struct {
	Type     string `xml:"error-type"`
	Tag      string `xml:"error-tag"`
	Severity string `xml:"error-severity"`
	Path     string `xml:"error-path"`
	Message  string `xml:"error-message"`
}

// Error implements the error interface
func (e RPCError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = e.Tag
	}
	return fmt.Sprintf("rpc-error (%s/%s): %s", e.Type, e.Severity, msg)
}

// parseRPCErrors extracts rpc-error elements from a raw NETCONF reply.
// Returns nil when the reply contains none.
func parseRPCErrors(raw string) []RPCError {
	if !strings.Contains(raw, "<rpc-error") {
		return nil
	}

	var errs []RPCError
	decoder := xml.NewDecoder(strings.NewReader(raw))
	for {
		tok, err := decoder.Token()
		if err != nil {
			return errs
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "rpc-error" {
			continue
		}
		var rpcErr RPCError
		if err := decoder.DecodeElement(&rpcErr, &start); err != nil {
			return errs
		}
		errs = append(errs, rpcErr)
	}
}
