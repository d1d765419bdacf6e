// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/gosnmp/gosnmp"
)

// Table phase handling: an OID subtree over a keyed datastore list.
//
// Cell addressing follows the conceptual-table layout: the registered OID
// names the table, arc 1 below it the entry, the next arc the column
// (1-based over the list's leaf children in declared order), and the
// remaining arcs the row index derived from the key leaf values. Integer
// keys encode as one arc each; string keys as a length arc followed by
// one arc per byte.

// tableEntryArc sits between the table OID and the column arc.
const tableEntryArc = 1

// tableCache is the materialized row set of a table binding, fetched
// lazily from the datastore and invalidated when a write transaction
// finishes or the request is freed.
type tableCache struct {
	rows []tableRow
}

// tableRow is one list entry with its derived index.
type tableRow struct {
	index  OID
	values listEntry
}

func (bd *Binding) handleTable(ctx context.Context, req *Request) Status {
	switch req.Phase {
	case PhaseGet:
		return bd.tableGet(ctx, req)
	case PhaseGetNext:
		return bd.tableGetNext(ctx, req)
	case PhaseTypeCheck:
		return bd.tableTypeCheck(req)
	case PhaseReserve:
		return StatusNoError
	case PhaseAction:
		return bd.tableAction(ctx, req)
	case PhaseCommit:
		bd.table = nil
		return bd.finishCommit(ctx)
	case PhaseUndo:
		bd.table = nil
		return bd.finishUndo(ctx)
	case PhaseFree:
		bd.table = nil
		return StatusNoError
	default:
		return StatusGenErr
	}
}

// tableGet resolves one cell: column leaf from the column arc, row from
// the index arcs, value from the row with the leaf default as fallback.
func (bd *Binding) tableGet(ctx context.Context, req *Request) Status {
	leaf, indexArcs, ok := bd.parseCell(req.OID)
	if !ok {
		req.setResult(req.OID, gosnmp.NoSuchObject, nil)
		return StatusNoSuchObject
	}

	cache, status := bd.loadTable(ctx)
	if status != StatusNoError {
		return status
	}
	row := cache.find(indexArcs)
	if row == nil {
		req.setResult(req.OID, gosnmp.NoSuchInstance, nil)
		return StatusNoSuchInstance
	}

	value, found := cellValue(row, leaf)
	if !found {
		req.setResult(req.OID, gosnmp.NoSuchInstance, nil)
		return StatusNoSuchInstance
	}
	return bd.fillCell(req, req.OID, leaf, value)
}

// tableGetNext walks cells in conceptual-table order (column-major: all
// rows of a column before the next column) and answers with the first
// cell whose OID is strictly greater than the request OID. Past the last
// cell the varbind is marked end-of-mib-view so the runtime moves to the
// next registration.
func (bd *Binding) tableGetNext(ctx context.Context, req *Request) Status {
	cache, status := bd.loadTable(ctx)
	if status != StatusNoError {
		return status
	}

	for _, leaf := range bd.columnLeaves() {
		col, _ := bd.columnOf(leaf)
		for i := range cache.rows {
			row := &cache.rows[i]
			cellOID := bd.oid.Append(tableEntryArc).Append(col)
			cellOID = append(cellOID, row.index...)
			if cellOID.Compare(req.OID) <= 0 {
				continue
			}
			value, found := cellValue(row, leaf)
			if !found {
				continue
			}
			return bd.fillCell(req, cellOID, leaf, value)
		}
	}
	req.setEndOfMibView()
	return StatusNoError
}

// tableTypeCheck validates the inbound wire tag against the addressed
// column's type. Key columns identify the row and are not writable
// through the table surface.
func (bd *Binding) tableTypeCheck(req *Request) Status {
	leaf, _, ok := bd.parseCell(req.OID)
	if !ok {
		return StatusNoSuchObject
	}
	if bd.isKeyLeaf(leaf) {
		return StatusNotWritable
	}
	if req.Value.Type == gosnmp.Null {
		return StatusNoError
	}
	if want := leaf.Type().ASN1(); req.Value.Type != want {
		bd.bridge.logger.Warn("set rejected for wire type mismatch",
			"oid", req.OID.String(),
			"column", leaf.Name(),
			"got", uint8(req.Value.Type),
			"want", uint8(want))
		return StatusWrongType
	}
	return StatusNoError
}

// tableAction decodes the inbound varbind and stages it into the
// candidate datastore, addressing the list entry by the key values
// recovered from the index arcs. Merging a cell into a row that does not
// exist yet creates the row, keys included.
func (bd *Binding) tableAction(ctx context.Context, req *Request) Status {
	leaf, indexArcs, ok := bd.parseCell(req.OID)
	if !ok {
		return StatusNoSuchObject
	}
	if bd.isKeyLeaf(leaf) {
		return StatusNotWritable
	}
	keyVals, err := decodeIndex(bd.keyLeaves, indexArcs)
	if err != nil {
		bd.bridge.logger.Warn("index does not decode",
			"oid", req.OID.String(),
			"error", err.Error())
		return StatusNoSuchInstance
	}

	value, found, err := DecodeValue(req.Value, leaf.Type())
	if err != nil {
		bd.bridge.logger.Warn("inbound value does not decode",
			"oid", req.OID.String(),
			"error", err.Error())
		return StatusWrongType
	}
	if !found {
		return StatusNoError
	}

	buf := bd.bridge.scratch.get()
	defer bd.bridge.scratch.put(buf)
	writeListCellFragment(buf, bd.node, bd.keyLeaves, keyVals, leaf, value)

	if err := bd.bridge.store.EditConfigCandidate(ctx, buf.String()); err != nil {
		bd.bridge.logger.Error("staging edit failed",
			"oid", req.OID.String(),
			"path", leaf.Path(),
			"error", err.Error())
		return StatusGenErr
	}
	bd.table = nil
	bd.bridge.logger.Debug("cell staged",
		"path", leaf.Path(),
		"keys", fmt.Sprintf("%v", keyVals),
		"value", sanitizeLogValue(value))
	return StatusNoError
}

// fillCell encodes a character value for the column's type and writes the
// outbound varbind.
func (bd *Binding) fillCell(req *Request, oid OID, leaf *Node, value string) Status {
	wire, err := EncodeValue(value, leaf.Type())
	if err != nil {
		bd.bridge.logger.Error("datastore value does not encode",
			"oid", oid.String(),
			"path", leaf.Path(),
			"value", sanitizeLogValue(value),
			"error", err.Error())
		return StatusGenErr
	}
	req.setResult(oid, leaf.Type().ASN1(), wire)
	return StatusNoError
}

// loadTable fetches and caches the list's entries. Rows whose key leaves
// are absent or do not index-encode are dropped with a warning; they
// cannot be addressed through the table surface anyway.
func (bd *Binding) loadTable(ctx context.Context) (*tableCache, Status) {
	if bd.table != nil {
		return bd.table, StatusNoError
	}

	buf := bd.bridge.scratch.get()
	defer bd.bridge.scratch.put(buf)
	writeSubtreeFilter(buf, bd.node)

	data, err := bd.bridge.store.GetConfig(ctx, buf.String())
	if err != nil {
		bd.bridge.logger.Error("get-config failed",
			"path", bd.node.Path(),
			"error", err.Error())
		return nil, StatusGenErr
	}
	entries, err := extractListEntries(data, pathNames(bd.node))
	if err != nil {
		bd.bridge.logger.Error("reply extraction failed",
			"path", bd.node.Path(),
			"error", err.Error())
		return nil, StatusGenErr
	}

	cache := &tableCache{rows: make([]tableRow, 0, len(entries))}
	for _, entry := range entries {
		keyVals := make([]string, 0, len(bd.keyLeaves))
		complete := true
		for _, key := range bd.keyLeaves {
			v, ok := entry[key.Name()]
			if !ok {
				complete = false
				break
			}
			keyVals = append(keyVals, v)
		}
		if !complete {
			bd.bridge.logger.Warn("list entry missing key leaf, skipped",
				"path", bd.node.Path())
			continue
		}
		index, err := encodeIndex(bd.keyLeaves, keyVals)
		if err != nil {
			bd.bridge.logger.Warn("list entry index does not encode, skipped",
				"path", bd.node.Path(),
				"error", err.Error())
			continue
		}
		cache.rows = append(cache.rows, tableRow{index: index, values: entry})
	}
	sort.Slice(cache.rows, func(i, j int) bool {
		return cache.rows[i].index.Compare(cache.rows[j].index) < 0
	})

	bd.table = cache
	return cache, StatusNoError
}

// find returns the row with the given index arcs, or nil.
func (c *tableCache) find(index OID) *tableRow {
	for i := range c.rows {
		if c.rows[i].index.Equal(index) {
			return &c.rows[i]
		}
	}
	return nil
}

// cellValue resolves a cell's character value: the row's entry first, the
// column leaf's declared default second.
func cellValue(row *tableRow, leaf *Node) (string, bool) {
	if v, ok := row.values[leaf.Name()]; ok {
		return v, true
	}
	return leaf.Default()
}

// parseCell splits a cell OID under this table into its column leaf and
// index arcs. Returns false when the OID does not address a column of
// this table.
func (bd *Binding) parseCell(oid OID) (*Node, OID, bool) {
	suffix := oid[len(bd.oid):]
	if len(suffix) < 2 || suffix[0] != tableEntryArc {
		return nil, nil, false
	}
	leaf := bd.columnLeaf(suffix[1])
	if leaf == nil {
		return nil, nil, false
	}
	return leaf, OID(suffix[2:]), true
}

// columnLeaves returns the list's leaf children in declared order.
func (bd *Binding) columnLeaves() []*Node {
	var leaves []*Node
	for _, child := range bd.node.Children() {
		if child.Kind() == KindLeaf {
			leaves = append(leaves, child)
		}
	}
	return leaves
}

// columnLeaf resolves a 1-based column arc to a leaf child.
func (bd *Binding) columnLeaf(col uint32) *Node {
	leaves := bd.columnLeaves()
	if col < 1 || int(col) > len(leaves) {
		return nil
	}
	return leaves[col-1]
}

// columnOf returns the 1-based column arc of a leaf child.
func (bd *Binding) columnOf(leaf *Node) (uint32, bool) {
	for i, l := range bd.columnLeaves() {
		if l == leaf {
			return uint32(i + 1), true
		}
	}
	return 0, false
}

func (bd *Binding) isKeyLeaf(leaf *Node) bool {
	for _, key := range bd.keyLeaves {
		if key == leaf {
			return true
		}
	}
	return false
}

// indexEncodable reports whether a key leaf type can be carried in OID
// index arcs.
func indexEncodable(t ValueType) bool {
	switch t {
	case TypeInt32, TypeUint32, TypeGauge32, TypeString:
		return true
	default:
		return false
	}
}

// encodeIndex derives index arcs from key leaf values in key order.
// Integer keys become one arc; string keys become a length arc followed
// by one arc per byte.
func encodeIndex(keyLeaves []*Node, keyVals []string) (OID, error) {
	var index OID
	for i, key := range keyLeaves {
		val := keyVals[i]
		switch key.Type() {
		case TypeInt32, TypeUint32, TypeGauge32:
			n, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("key %s value %q is not an unsigned 32-bit integer: %w", key.Name(), val, err)
			}
			index = append(index, uint32(n))
		case TypeString:
			index = append(index, uint32(len(val)))
			for _, b := range []byte(val) {
				index = append(index, uint32(b))
			}
		default:
			return nil, fmt.Errorf("key %s has type %s, not index-encodable", key.Name(), key.Type())
		}
	}
	return index, nil
}

// decodeIndex recovers key leaf values from index arcs. The arcs must be
// consumed exactly; leftovers or truncation mean the OID addresses no
// instance.
func decodeIndex(keyLeaves []*Node, index OID) ([]string, error) {
	vals := make([]string, 0, len(keyLeaves))
	rest := index
	for _, key := range keyLeaves {
		switch key.Type() {
		case TypeInt32, TypeUint32, TypeGauge32:
			if len(rest) < 1 {
				return nil, fmt.Errorf("index truncated at key %s", key.Name())
			}
			vals = append(vals, strconv.FormatUint(uint64(rest[0]), 10))
			rest = rest[1:]
		case TypeString:
			if len(rest) < 1 {
				return nil, fmt.Errorf("index truncated at key %s", key.Name())
			}
			n := int(rest[0])
			rest = rest[1:]
			if len(rest) < n {
				return nil, fmt.Errorf("index truncated inside key %s", key.Name())
			}
			b := make([]byte, n)
			for i := 0; i < n; i++ {
				if rest[i] > 255 {
					return nil, fmt.Errorf("index arc %d exceeds a byte in key %s", rest[i], key.Name())
				}
				b[i] = byte(rest[i])
			}
			vals = append(vals, string(b))
			rest = rest[n:]
		default:
			return nil, fmt.Errorf("key %s has type %s, not index-encodable", key.Name(), key.Type())
		}
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("index has %d trailing arcs", len(rest))
	}
	return vals, nil
}
