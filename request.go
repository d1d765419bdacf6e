// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import "github.com/gosnmp/gosnmp"

// Request is the per-PDU context supplied by the agent runtime for one
// handler invocation. It is owned by the runtime: the bridge reads and
// writes through it during the call and never retains a reference beyond
// the call's return.
//
// For read phases the bridge fills Value with the result varbind,
// including its Name (the instance OID) and wire type. For write phases
// Value carries the inbound varbind to be checked and staged.
type Request struct {
	// Phase is the protocol phase of this invocation
	Phase Phase

	// OID is the object identifier addressed by the PDU. The registered
	// OID of the routed binding is always a prefix of it.
	OID OID

	// Value is the varbind slot. Inbound for set phases, outbound for
	// get/get-next. A get-next that runs past the registered subtree sets
	// Value.Type to gosnmp.EndOfMibView.
	Value gosnmp.SnmpPDU
}

// setResult fills the outbound value slot with an instance OID, wire type
// and value.
func (r *Request) setResult(oid OID, typ gosnmp.Asn1BER, value any) {
	r.Value.Name = "." + oid.String()
	r.Value.Type = typ
	r.Value.Value = value
}

// setEndOfMibView marks the outbound slot as past the end of the
// registered subtree.
func (r *Request) setEndOfMibView() {
	r.Value.Name = "." + r.OID.String()
	r.Value.Type = gosnmp.EndOfMibView
	r.Value.Value = nil
}
