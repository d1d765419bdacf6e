// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gosnmp/gosnmp"
)

// BindingKind identifies what a binding maps its OID subtree onto.
type BindingKind int

const (
	// ScalarBinding maps one OID to one datastore leaf
	ScalarBinding BindingKind = iota

	// TableBinding maps an OID subtree to a keyed datastore list
	TableBinding
)

// String returns the string representation of a BindingKind
func (k BindingKind) String() string {
	switch k {
	case ScalarBinding:
		return "scalar"
	case TableBinding:
		return "table"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Binding associates one schema node with one registered OID subtree. It
// is created at registration time, never mutated after creation apart from
// its transaction state, and lives for the lifetime of the bridge.
type Binding struct {
	kind   BindingKind
	oid    OID
	node   *Node
	bridge *Bridge

	// scalar: default value resolved at registration (option override
	// wins over the schema-declared default)
	defval     string
	hasDefault bool
	readOnly   bool

	// table: key leaves resolved at registration and lazily materialized
	// row cache
	keyLeaves []*Node
	table     *tableCache

	// write transaction state, driven by the phase FSM
	tx txState
}

// Kind returns what the binding maps onto.
func (bd *Binding) Kind() BindingKind { return bd.kind }

// OID returns the registered OID subtree.
func (bd *Binding) OID() OID { return bd.oid.Clone() }

// Node returns the bound schema node (a leaf or a list).
func (bd *Binding) Node() *Node { return bd.node }

// Bridge is the request dispatcher: the single entry point invoked by the
// agent runtime for every protocol phase of every PDU touching a
// registered OID subtree.
//
// Bindings are registered once at startup; the runtime then calls Handle
// (or the per-binding handler) synchronously per phase. The bridge assumes
// no concurrent PDU processing: the agent runtime serializes callbacks on
// its own thread.
//
// Example:
//
//	store, _ := snmpbridge.NewNetconfStore("192.168.1.1",
//	    snmpbridge.Username("admin"), snmpbridge.Password("secret"))
//	bridge, _ := snmpbridge.NewBridge(store)
//
//	mod := snmpbridge.NewModule("example-system", "urn:example:system", "2024-01-15")
//	leaf := mod.Container("system").LeafWithDefault("refresh-interval", snmpbridge.TypeGauge32, "42")
//
//	oid, _ := snmpbridge.ParseOID("1.3.6.1.4.1.99999.1.1")
//	bridge.RegisterScalar(oid, leaf)
//
//	status := bridge.Handle(ctx, &snmpbridge.Request{Phase: snmpbridge.PhaseGet, OID: oid})
type Bridge struct {
	store    Store
	logger   Logger
	scratch  *bufferPool
	mu       sync.Mutex
	bindings []*Binding
}

// NewBridge creates a bridge dispatching to the given config-store.
//
// Returns a configured Bridge or an error if store is nil.
func NewBridge(store Store, opts ...func(*Bridge)) (*Bridge, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	bridge := &Bridge{
		store:   store,
		logger:  &NoOpLogger{},
		scratch: newBufferPool(),
	}
	for _, opt := range opts {
		opt(bridge)
	}
	return bridge, nil
}

// RegisterScalar binds a leaf schema node to an OID and returns the
// binding. The leaf's type must be supported by the value codec; a
// declared default (schema or WithDefault option) is validated against the
// type at registration so get never fails on it later.
func (b *Bridge) RegisterScalar(oid OID, leaf *Node, opts ...func(*Binding)) (*Binding, error) {
	if leaf == nil || leaf.Kind() != KindLeaf {
		return nil, fmt.Errorf("scalar binding requires a leaf node")
	}
	for nd := leaf.Parent(); nd != nil; nd = nd.Parent() {
		if nd.Kind() == KindList {
			return nil, fmt.Errorf("leaf %s sits inside list %s, use RegisterTable", leaf.Name(), nd.Name())
		}
	}
	bd := &Binding{kind: ScalarBinding, oid: oid.Clone(), node: leaf, bridge: b}
	if defval, ok := leaf.Default(); ok {
		bd.defval = defval
		bd.hasDefault = true
	}
	for _, opt := range opts {
		opt(bd)
	}
	if leaf.Type() == TypeUnknown || leaf.Type().ASN1() == gosnmp.Null {
		return nil, fmt.Errorf("leaf %s has unsupported type %s", leaf.Name(), leaf.Type())
	}
	if bd.hasDefault {
		if _, err := EncodeValue(bd.defval, leaf.Type()); err != nil {
			return nil, fmt.Errorf("default value for %s: %w", leaf.Name(), err)
		}
	}
	if err := b.register(bd); err != nil {
		return nil, err
	}
	return bd, nil
}

// RegisterTable binds a keyed list schema node to an OID subtree and
// returns the binding. The list's key leaves are resolved here; key types
// must be index-encodable (integer kinds or strings).
func (b *Bridge) RegisterTable(oid OID, list *Node, opts ...func(*Binding)) (*Binding, error) {
	if list == nil || list.Kind() != KindList {
		return nil, fmt.Errorf("table binding requires a list node")
	}
	keyLeaves, err := list.KeyLeaves()
	if err != nil {
		return nil, err
	}
	for _, key := range keyLeaves {
		if !indexEncodable(key.Type()) {
			return nil, fmt.Errorf("list %s key %s has type %s, not index-encodable", list.Name(), key.Name(), key.Type())
		}
	}
	bd := &Binding{kind: TableBinding, oid: oid.Clone(), node: list, bridge: b, keyLeaves: keyLeaves}
	for _, opt := range opts {
		opt(bd)
	}
	if err := b.register(bd); err != nil {
		return nil, err
	}
	return bd, nil
}

// register adds a binding, rejecting empty and overlapping OID subtrees.
// Sub-agent registration guarantees disjoint subtrees externally; this
// enforces the same precondition locally.
func (b *Bridge) register(bd *Binding) error {
	if len(bd.oid) == 0 {
		return fmt.Errorf("registration OID cannot be empty")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.bindings {
		if existing.oid.HasPrefix(bd.oid) || bd.oid.HasPrefix(existing.oid) {
			return fmt.Errorf("OID %s overlaps registered subtree %s", bd.oid, existing.oid)
		}
	}
	b.bindings = append(b.bindings, bd)
	b.logger.Info("binding registered",
		"kind", bd.kind.String(),
		"oid", bd.oid.String(),
		"node", bd.node.Name())
	return nil
}

// Handle routes a request to the binding registered for its OID subtree
// and dispatches the phase. Requests whose OID falls under no registered
// subtree resolve to StatusNoSuchObject.
func (b *Bridge) Handle(ctx context.Context, req *Request) Status {
	bd := b.lookup(req.OID)
	if bd == nil {
		b.logger.Debug("no binding for request",
			"oid", req.OID.String(),
			"phase", req.Phase.String())
		return StatusNoSuchObject
	}
	return bd.Handle(ctx, req)
}

// lookup returns the binding whose registered OID is a prefix of oid.
func (b *Bridge) lookup(oid OID) *Binding {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bd := range b.bindings {
		if oid.HasPrefix(bd.oid) {
			return bd
		}
	}
	return nil
}

// Handle processes one protocol phase for this binding. This is the
// per-subtree handler surface handed to the agent runtime.
//
// Every invocation resolves to a Status from the fixed enumeration; no
// panic or error escapes the callback boundary. Phase ordering is enforced
// by the transaction state machine before any store access happens.
func (bd *Binding) Handle(ctx context.Context, req *Request) (status Status) {
	defer func() {
		if r := recover(); r != nil {
			bd.bridge.logger.Error("panic in handler",
				"oid", bd.oid.String(),
				"phase", req.Phase.String(),
				"panic", fmt.Sprintf("%v", r))
			bd.tx = txIdle
			status = StatusGenErr
		}
	}()

	// registration guarantees the routed OID sits under the subtree;
	// verify the invariant rather than assume it
	if !req.OID.HasPrefix(bd.oid) {
		bd.bridge.logger.Error("request OID outside registered subtree",
			"request", req.OID.String(),
			"registered", bd.oid.String())
		return StatusGenErr
	}

	bd.bridge.logger.Debug("handling request",
		"kind", bd.kind.String(),
		"oid", req.OID.String(),
		"phase", req.Phase.String(),
		"tx", bd.tx.String())

	next, ok := bd.tx.transition(req.Phase)
	if !ok {
		bd.bridge.logger.Error("illegal phase for transaction state",
			"oid", bd.oid.String(),
			"phase", req.Phase.String(),
			"tx", bd.tx.String())
		bd.tx = txIdle
		return StatusGenErr
	}

	if bd.readOnly {
		switch req.Phase {
		case PhaseTypeCheck, PhaseReserve, PhaseAction, PhaseCommit, PhaseUndo:
			bd.tx = txIdle
			return StatusNotWritable
		}
	}

	var result Status
	switch bd.kind {
	case ScalarBinding:
		result = bd.handleScalar(ctx, req)
	case TableBinding:
		result = bd.handleTable(ctx, req)
	default:
		result = StatusGenErr
	}

	// advance only on success so a failed phase can be retried or freed
	// without the state machine believing it happened
	if result == StatusNoError {
		bd.tx = next
	} else if req.Phase == PhaseFree {
		bd.tx = txIdle
	}
	return result
}

// bufferPool hands out scratch buffers for XML construction. Acquisition
// and release are balanced on every path; the counters exist so tests can
// verify no scoped resource outlives its call.
type bufferPool struct {
	pool sync.Pool
	gets atomic.Int64
	puts atomic.Int64
}

func newBufferPool() *bufferPool {
	p := &bufferPool{}
	p.pool.New = func() any { return &bytes.Buffer{} }
	return p
}

func (p *bufferPool) get() *bytes.Buffer {
	p.gets.Add(1)
	return p.pool.Get().(*bytes.Buffer)
}

func (p *bufferPool) put(buf *bytes.Buffer) {
	buf.Reset()
	p.puts.Add(1)
	p.pool.Put(buf)
}

// outstanding returns the number of buffers currently held.
func (p *bufferPool) outstanding() int64 {
	return p.gets.Load() - p.puts.Load()
}
