// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import "fmt"

// Status is the fixed enumeration returned across the agent callback
// boundary. Every handler invocation resolves to exactly one Status; no
// panic or Go error crosses the boundary.
type Status int

const (
	// StatusNoError indicates the phase completed successfully
	StatusNoError Status = iota

	// StatusGenErr indicates an internal fault; the PDU is aborted but the
	// agent process continues serving subsequent PDUs
	StatusGenErr

	// StatusWrongType indicates the inbound wire value's type tag does not
	// match the schema-derived expected type
	StatusWrongType

	// StatusNoSuchInstance indicates the addressed optional leaf or table
	// cell is absent; a normal outcome, not an error
	StatusNoSuchInstance

	// StatusNoSuchObject indicates the request OID does not address any
	// object below the registered subtree
	StatusNoSuchObject

	// StatusNotWritable indicates a set request addressed a read-only object
	StatusNotWritable
)

// String returns the string representation of a Status
func (s Status) String() string {
	switch s {
	case StatusNoError:
		return "noError"
	case StatusGenErr:
		return "genErr"
	case StatusWrongType:
		return "wrongType"
	case StatusNoSuchInstance:
		return "noSuchInstance"
	case StatusNoSuchObject:
		return "noSuchObject"
	case StatusNotWritable:
		return "notWritable"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}
