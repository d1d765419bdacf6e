// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

// Package snmpbridge bridges SNMP sub-agent callbacks onto a NETCONF
// configuration datastore.
//
// The bridge owns the translation in both directions: protocol phases of a
// PDU are dispatched through a per-binding state machine, object values
// travel between their SNMP wire representation and the datastore's typed
// string representation, and writes are staged in the candidate datastore
// and promoted (or discarded) when the protocol says so.
//
// A schema module describes the datastore layout; scalar bindings map one
// OID to one leaf and table bindings map an OID subtree to a keyed list:
//
//	store, err := snmpbridge.NewNetconfStore("192.168.1.1",
//	    snmpbridge.Username("admin"),
//	    snmpbridge.Password("secret"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	bridge, err := snmpbridge.NewBridge(store)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mod := snmpbridge.NewModule("example-system", "urn:example:system", "2024-01-15")
//	system := mod.Container("system")
//	hostname := system.Leaf("hostname", snmpbridge.TypeString)
//
//	oid, _ := snmpbridge.ParseOID("1.3.6.1.4.1.99999.1.1")
//	if _, err := bridge.RegisterScalar(oid, hostname); err != nil {
//	    log.Fatal(err)
//	}
//
//	req := &snmpbridge.Request{Phase: snmpbridge.PhaseGet, OID: oid}
//	status := bridge.Handle(context.Background(), req)
//
// The agent runtime invokes Handle once per phase; the bridge never
// panics or returns a Go error across that boundary, every invocation
// resolves to a Status value.
package snmpbridge
