// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"testing"

	"github.com/gosnmp/gosnmp"
)

func TestRequestSetResult(t *testing.T) {
	req := &Request{Phase: PhaseGet, OID: OID{1, 3, 6, 1}}
	req.setResult(OID{1, 3, 6, 1}, gosnmp.Gauge32, uint32(42))

	if req.Value.Name != ".1.3.6.1" {
		t.Errorf("Name = %q, want .1.3.6.1", req.Value.Name)
	}
	if req.Value.Type != gosnmp.Gauge32 {
		t.Errorf("Type = %v, want Gauge32", req.Value.Type)
	}
	if got := req.Value.Value.(uint32); got != 42 {
		t.Errorf("Value = %v, want 42", got)
	}
}

func TestRequestSetEndOfMibView(t *testing.T) {
	req := &Request{Phase: PhaseGetNext, OID: OID{1, 3, 6, 2}}
	req.setEndOfMibView()

	if req.Value.Name != ".1.3.6.2" {
		t.Errorf("Name = %q, want .1.3.6.2", req.Value.Name)
	}
	if req.Value.Type != gosnmp.EndOfMibView {
		t.Errorf("Type = %v, want EndOfMibView", req.Value.Type)
	}
	if req.Value.Value != nil {
		t.Errorf("Value = %v, want nil", req.Value.Value)
	}
}
