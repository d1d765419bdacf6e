// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"testing"

	"github.com/gosnmp/gosnmp"
)

func buildTestModule() *Node {
	mod := NewModule("example-system", "urn:example:system", "2024-01-15")
	sys := mod.Container("system")
	sys.Leaf("hostname", TypeString)
	sys.LeafWithDefault("refresh-interval", TypeGauge32, "42")
	ifaces := mod.Container("interfaces").List("interface", "name")
	ifaces.Leaf("name", TypeString)
	ifaces.Leaf("mtu", TypeUint32)
	ifaces.Leaf("address", TypeIPAddress)
	return mod
}

func TestNodeTreeNavigation(t *testing.T) {
	mod := buildTestModule()

	sys := mod.Child("system")
	if sys == nil || sys.Kind() != KindContainer {
		t.Fatalf("Child(system) = %v, want container", sys)
	}
	hostname := sys.Child("hostname")
	if hostname == nil || hostname.Kind() != KindLeaf {
		t.Fatalf("Child(hostname) = %v, want leaf", hostname)
	}
	if hostname.Type() != TypeString {
		t.Errorf("hostname type = %v, want string", hostname.Type())
	}
	if hostname.Parent() != sys {
		t.Errorf("hostname parent = %v, want system", hostname.Parent())
	}
	if hostname.Module() != mod {
		t.Errorf("hostname module = %v, want example-system", hostname.Module())
	}
	if got := hostname.Namespace(); got != "urn:example:system" {
		t.Errorf("Namespace() = %q, want urn:example:system", got)
	}
	if got := hostname.Revision(); got != "2024-01-15" {
		t.Errorf("Revision() = %q, want 2024-01-15", got)
	}
}

func TestNodePath(t *testing.T) {
	mod := buildTestModule()

	tests := []struct {
		name string
		node *Node
		want string
	}{
		{
			name: "module path",
			node: mod,
			want: "/",
		},
		{
			name: "container path",
			node: mod.Child("system"),
			want: "/system",
		},
		{
			name: "leaf path",
			node: mod.Child("system").Child("hostname"),
			want: "/system/hostname",
		},
		{
			name: "list leaf path",
			node: mod.Child("interfaces").Child("interface").Child("mtu"),
			want: "/interfaces/interface/mtu",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.Path(); got != tt.want {
				t.Errorf("Path() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNodeDefault(t *testing.T) {
	mod := buildTestModule()
	sys := mod.Child("system")

	if _, ok := sys.Child("hostname").Default(); ok {
		t.Errorf("hostname has unexpected default")
	}
	defval, ok := sys.Child("refresh-interval").Default()
	if !ok || defval != "42" {
		t.Errorf("refresh-interval default = %q, %v, want 42, true", defval, ok)
	}
}

func TestKeyLeaves(t *testing.T) {
	tests := []struct {
		name     string
		node     func() *Node
		wantKeys []string
		wantErr  bool
	}{
		{
			name: "valid single key",
			node: func() *Node {
				return buildTestModule().Child("interfaces").Child("interface")
			},
			wantKeys: []string{"name"},
		},
		{
			name: "composite key",
			node: func() *Node {
				mod := NewModule("m", "urn:m", "")
				list := mod.List("entry", "vrf", "prefix")
				list.Leaf("vrf", TypeString)
				list.Leaf("prefix", TypeString)
				return list
			},
			wantKeys: []string{"vrf", "prefix"},
		},
		{
			name: "not a list",
			node: func() *Node {
				return buildTestModule().Child("system")
			},
			wantErr: true,
		},
		{
			name: "no keys declared",
			node: func() *Node {
				mod := NewModule("m", "urn:m", "")
				return mod.List("entry")
			},
			wantErr: true,
		},
		{
			name: "key names missing leaf",
			node: func() *Node {
				mod := NewModule("m", "urn:m", "")
				list := mod.List("entry", "id")
				list.Leaf("other", TypeInt32)
				return list
			},
			wantErr: true,
		},
		{
			name: "key names a container",
			node: func() *Node {
				mod := NewModule("m", "urn:m", "")
				list := mod.List("entry", "id")
				list.Container("id")
				return list
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leaves, err := tt.node().KeyLeaves()
			if (err != nil) != tt.wantErr {
				t.Fatalf("KeyLeaves() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(leaves) != len(tt.wantKeys) {
				t.Fatalf("KeyLeaves() returned %d leaves, want %d", len(leaves), len(tt.wantKeys))
			}
			for i, leaf := range leaves {
				if leaf.Name() != tt.wantKeys[i] {
					t.Errorf("key %d = %q, want %q", i, leaf.Name(), tt.wantKeys[i])
				}
			}
		})
	}
}

func TestAddChildToLeafPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("adding a child to a leaf did not panic")
		}
	}()
	mod := NewModule("m", "urn:m", "")
	leaf := mod.Leaf("x", TypeInt32)
	leaf.Leaf("y", TypeInt32)
}

func TestValueTypeASN1(t *testing.T) {
	tests := []struct {
		typ  ValueType
		want gosnmp.Asn1BER
	}{
		{TypeInt32, gosnmp.Integer},
		{TypeUint32, gosnmp.Uinteger32},
		{TypeCounter32, gosnmp.Counter32},
		{TypeCounter64, gosnmp.Counter64},
		{TypeGauge32, gosnmp.Gauge32},
		{TypeTimeTicks, gosnmp.TimeTicks},
		{TypeString, gosnmp.OctetString},
		{TypeIPAddress, gosnmp.IPAddress},
		{TypeUnknown, gosnmp.Null},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			if got := tt.typ.ASN1(); got != tt.want {
				t.Errorf("ASN1() = %v, want %v", got, tt.want)
			}
		})
	}
}
