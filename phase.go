// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import "fmt"

// Phase identifies the protocol phase of a handler invocation. The agent
// runtime drives a write PDU through TypeCheck, Reserve, Action and then
// either Commit or Undo, followed by Free; read PDUs use Get or GetNext
// alone.
type Phase int

const (
	// PhaseGet reads the current value of the addressed object
	PhaseGet Phase = iota

	// PhaseGetNext advances to the lexicographically next object instance
	PhaseGetNext

	// PhaseTypeCheck verifies the inbound wire value against the schema type
	// without touching the store
	PhaseTypeCheck

	// PhaseReserve reserves per-request resources; no store effect
	PhaseReserve

	// PhaseAction stages the new value into the candidate configuration
	PhaseAction

	// PhaseCommit durably commits the previously staged candidate
	PhaseCommit

	// PhaseUndo discards the staged candidate, restoring prior state
	PhaseUndo

	// PhaseFree releases per-request scratch resources
	PhaseFree
)

// String returns the string representation of a Phase
func (p Phase) String() string {
	switch p {
	case PhaseGet:
		return "get"
	case PhaseGetNext:
		return "get-next"
	case PhaseTypeCheck:
		return "type-check"
	case PhaseReserve:
		return "reserve"
	case PhaseAction:
		return "action"
	case PhaseCommit:
		return "commit"
	case PhaseUndo:
		return "undo"
	case PhaseFree:
		return "free"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// txState tracks the write transaction of a binding between phases. The
// runtime's phase ordering contract is enforced here as a precondition
// rather than assumed: an out-of-order phase is rejected before any store
// call is made, and Commit/Undo are accepted at most once per staged
// action.
type txState int

const (
	txIdle txState = iota
	txChecked
	txReserved
	txStaged
)

// String returns the string representation of a txState
func (s txState) String() string {
	switch s {
	case txIdle:
		return "idle"
	case txChecked:
		return "checked"
	case txReserved:
		return "reserved"
	case txStaged:
		return "staged"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// transition returns the successor state for the given phase, or false if
// the phase is not legal from the current state.
//
// Legal transitions:
//
//	idle     --get/get-next--> idle
//	idle     --type-check----> checked
//	checked  --type-check----> checked   (safe to re-invoke)
//	checked  --reserve-------> reserved
//	reserved --reserve-------> reserved  (safe to re-invoke)
//	reserved --action--------> staged
//	staged   --action--------> staged    (re-stage is safe)
//	staged   --commit/undo---> idle      (at most once)
//	any      --free----------> idle
func (s txState) transition(p Phase) (txState, bool) {
	if p == PhaseFree {
		return txIdle, true
	}
	switch s {
	case txIdle:
		switch p {
		case PhaseGet, PhaseGetNext:
			return txIdle, true
		case PhaseTypeCheck:
			return txChecked, true
		}
	case txChecked:
		switch p {
		case PhaseTypeCheck:
			return txChecked, true
		case PhaseReserve:
			return txReserved, true
		}
	case txReserved:
		switch p {
		case PhaseReserve:
			return txReserved, true
		case PhaseAction:
			return txStaged, true
		}
	case txStaged:
		switch p {
		case PhaseAction:
			return txStaged, true
		case PhaseCommit, PhaseUndo:
			return txIdle, true
		}
	}
	return s, false
}
