// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"
)

// NodeKind identifies the structural role of a schema node.
type NodeKind int

const (
	// KindModule is a top-level module node carrying namespace and revision
	KindModule NodeKind = iota

	// KindContainer is an interior grouping node with no value of its own
	KindContainer

	// KindLeaf is a single typed value addressable by a scalar binding
	KindLeaf

	// KindList is a keyed list of entries addressable by a table binding
	KindList
)

// String returns the string representation of a NodeKind
func (k NodeKind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindContainer:
		return "container"
	case KindLeaf:
		return "leaf"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// ValueType is the datastore-side type tag of a leaf. Each type pairs a
// canonical string representation with exactly one SNMP ASN.1 wire tag.
type ValueType int

const (
	// TypeUnknown is the zero value; leaves must never carry it
	TypeUnknown ValueType = iota

	// TypeInt32 is a signed 32-bit integer (ASN.1 INTEGER)
	TypeInt32

	// TypeUint32 is an unsigned 32-bit integer (ASN.1 Unsigned32)
	TypeUint32

	// TypeCounter32 is a monotonically increasing 32-bit counter
	TypeCounter32

	// TypeCounter64 is a monotonically increasing 64-bit counter
	TypeCounter64

	// TypeGauge32 is a non-monotonic unsigned 32-bit value
	TypeGauge32

	// TypeTimeTicks is a duration in hundredths of a second
	TypeTimeTicks

	// TypeString is an octet string carried as UTF-8 text
	TypeString

	// TypeIPAddress is an IPv4 address in dotted-quad text form
	TypeIPAddress
)

// String returns the string representation of a ValueType
func (t ValueType) String() string {
	switch t {
	case TypeInt32:
		return "int32"
	case TypeUint32:
		return "uint32"
	case TypeCounter32:
		return "counter32"
	case TypeCounter64:
		return "counter64"
	case TypeGauge32:
		return "gauge32"
	case TypeTimeTicks:
		return "timeticks"
	case TypeString:
		return "string"
	case TypeIPAddress:
		return "ipaddress"
	default:
		return fmt.Sprintf("unknown(%d)", t)
	}
}

// ASN1 returns the SNMP wire tag corresponding to the value type.
// TypeUnknown maps to gosnmp.Null.
func (t ValueType) ASN1() gosnmp.Asn1BER {
	switch t {
	case TypeInt32:
		return gosnmp.Integer
	case TypeUint32:
		return gosnmp.Uinteger32
	case TypeCounter32:
		return gosnmp.Counter32
	case TypeCounter64:
		return gosnmp.Counter64
	case TypeGauge32:
		return gosnmp.Gauge32
	case TypeTimeTicks:
		return gosnmp.TimeTicks
	case TypeString:
		return gosnmp.OctetString
	case TypeIPAddress:
		return gosnmp.IPAddress
	default:
		return gosnmp.Null
	}
}

// Node is a node in the immutable schema tree shared by all bindings.
//
// The tree mirrors the shape of the configuration datastore: a module node
// at the top carrying the XML namespace, containers and keyed lists below
// it, and typed leaves at the edges. Trees are built once at startup with
// NewModule and the Container/List/Leaf builders and must not be modified
// after bindings are registered.
//
// Example:
//
//	mod := snmpbridge.NewModule("example-system", "urn:example:system", "2024-01-15")
//	sys := mod.Container("system")
//	sys.Leaf("hostname", snmpbridge.TypeString)
//	sys.LeafWithDefault("refresh-interval", snmpbridge.TypeGauge32, "42")
type Node struct {
	name       string
	kind       NodeKind
	typ        ValueType
	defval     string
	hasDefault bool
	namespace  string
	revision   string
	keys       []string
	parent     *Node
	children   []*Node
	byName     map[string]*Node
}

// NewModule creates a top-level module node. The namespace is used both as
// the XML namespace of every datastore payload addressing nodes below this
// module and in RFC 7895 modules-state reporting. The revision may be empty.
func NewModule(name, namespace, revision string) *Node {
	return &Node{
		name:      name,
		kind:      KindModule,
		namespace: namespace,
		revision:  revision,
		byName:    map[string]*Node{},
	}
}

// Container adds an interior container node and returns it.
func (n *Node) Container(name string) *Node {
	return n.addChild(&Node{name: name, kind: KindContainer})
}

// List adds a keyed list node and returns it. The keys name the child
// leaves, in order, whose values identify a list entry. Key leaves must be
// added to the returned node before the list is bound to a table.
func (n *Node) List(name string, keys ...string) *Node {
	return n.addChild(&Node{name: name, kind: KindList, keys: keys})
}

// Leaf adds a typed leaf node with no declared default and returns it.
func (n *Node) Leaf(name string, typ ValueType) *Node {
	return n.addChild(&Node{name: name, kind: KindLeaf, typ: typ})
}

// LeafWithDefault adds a typed leaf node carrying a schema default. The
// default is used by scalar get when the datastore holds no value for the
// leaf. The default must be in the canonical string form of the type.
func (n *Node) LeafWithDefault(name string, typ ValueType, defval string) *Node {
	return n.addChild(&Node{name: name, kind: KindLeaf, typ: typ, defval: defval, hasDefault: true})
}

func (n *Node) addChild(child *Node) *Node {
	if n.kind == KindLeaf {
		panic(fmt.Sprintf("snmpbridge: cannot add child %q to leaf %q", child.name, n.name))
	}
	child.parent = n
	child.byName = map[string]*Node{}
	n.children = append(n.children, child)
	n.byName[child.name] = child
	return child
}

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Kind returns the node's structural role.
func (n *Node) Kind() NodeKind { return n.kind }

// Type returns the leaf's value type, or TypeUnknown for non-leaf nodes.
func (n *Node) Type() ValueType { return n.typ }

// Default returns the leaf's declared default value and whether one exists.
func (n *Node) Default() (string, bool) { return n.defval, n.hasDefault }

// Keys returns the key leaf names of a list node, in declared order.
func (n *Node) Keys() []string {
	keys := make([]string, len(n.keys))
	copy(keys, n.keys)
	return keys
}

// Parent returns the parent node, or nil for a module.
func (n *Node) Parent() *Node { return n.parent }

// Child returns the named child node, or nil.
func (n *Node) Child(name string) *Node { return n.byName[name] }

// Children returns the node's children in declared order.
func (n *Node) Children() []*Node {
	children := make([]*Node, len(n.children))
	copy(children, n.children)
	return children
}

// Module returns the module node at the top of this node's tree.
func (n *Node) Module() *Node {
	nd := n
	for nd.parent != nil {
		nd = nd.parent
	}
	return nd
}

// Namespace returns the XML namespace inherited from the module.
func (n *Node) Namespace() string { return n.Module().namespace }

// Revision returns the module revision, or "" if none was declared.
func (n *Node) Revision() string { return n.Module().revision }

// Path returns the datastore path of the node below its module, e.g.
// "/system/hostname". A module node's path is "/".
func (n *Node) Path() string {
	nodes := n.pathNodes()
	if len(nodes) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, nd := range nodes {
		b.WriteByte('/')
		b.WriteString(nd.name)
	}
	return b.String()
}

// pathNodes returns the nodes from the module's first descendant down to n,
// excluding the module itself. Empty for a module node.
func (n *Node) pathNodes() []*Node {
	var nodes []*Node
	for nd := n; nd.parent != nil; nd = nd.parent {
		nodes = append(nodes, nd)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return nodes
}

// KeyLeaves resolves the key names of a list node to its key leaf nodes.
// Returns an error if the node is not a list, declares no keys, or names
// a key that is not a leaf child of the list.
func (n *Node) KeyLeaves() ([]*Node, error) {
	if n.kind != KindList {
		return nil, fmt.Errorf("node %q is a %s, not a list", n.name, n.kind)
	}
	if len(n.keys) == 0 {
		return nil, fmt.Errorf("list %q declares no keys", n.name)
	}
	leaves := make([]*Node, 0, len(n.keys))
	for _, key := range n.keys {
		leaf := n.byName[key]
		if leaf == nil || leaf.kind != KindLeaf {
			return nil, fmt.Errorf("list %q key %q is not a leaf child", n.name, key)
		}
		leaves = append(leaves, leaf)
	}
	return leaves, nil
}
