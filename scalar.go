// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"context"

	"github.com/gosnmp/gosnmp"
)

// Scalar phase handling: one registered OID, one datastore leaf.

func (bd *Binding) handleScalar(ctx context.Context, req *Request) Status {
	switch req.Phase {
	case PhaseGet:
		return bd.scalarGet(ctx, req, false)
	case PhaseGetNext:
		return bd.scalarGet(ctx, req, true)
	case PhaseTypeCheck:
		return bd.scalarTypeCheck(req)
	case PhaseReserve:
		// nothing to reserve for a scalar: the candidate datastore is
		// the staging area and merge cannot fail for capacity
		return StatusNoError
	case PhaseAction:
		return bd.scalarAction(ctx, req)
	case PhaseCommit:
		return bd.finishCommit(ctx)
	case PhaseUndo:
		return bd.finishUndo(ctx)
	case PhaseFree:
		return StatusNoError
	default:
		return StatusGenErr
	}
}

// scalarGet resolves the leaf's value: datastore first, schema default
// second, absent third. The agent runtime's instance helper normally
// rewrites get-next into get before the callback fires; when one arrives
// anyway it is answered for the registered OID itself and EndOfMibView
// past it.
func (bd *Binding) scalarGet(ctx context.Context, req *Request, next bool) Status {
	if next && !req.OID.Equal(bd.oid) {
		req.setEndOfMibView()
		return StatusNoError
	}

	value, found, status := bd.fetchLeaf(ctx, bd.node)
	if status != StatusNoError {
		return status
	}
	if !found {
		if !bd.hasDefault {
			if next {
				req.setEndOfMibView()
				return StatusNoError
			}
			req.setResult(req.OID, gosnmp.NoSuchInstance, nil)
			return StatusNoSuchInstance
		}
		value = bd.defval
	}

	wire, err := EncodeValue(value, bd.node.Type())
	if err != nil {
		bd.bridge.logger.Error("datastore value does not encode",
			"oid", bd.oid.String(),
			"path", bd.node.Path(),
			"value", sanitizeLogValue(value),
			"error", err.Error())
		return StatusGenErr
	}
	req.setResult(bd.oid, bd.node.Type().ASN1(), wire)
	return StatusNoError
}

// scalarTypeCheck compares the inbound wire tag against the tag the
// schema type maps to. No datastore access happens here; a mismatch is
// rejected before anything is staged. A Null varbind carries no value and
// passes vacuously.
func (bd *Binding) scalarTypeCheck(req *Request) Status {
	if req.Value.Type == gosnmp.Null {
		return StatusNoError
	}
	if want := bd.node.Type().ASN1(); req.Value.Type != want {
		bd.bridge.logger.Warn("set rejected for wire type mismatch",
			"oid", bd.oid.String(),
			"got", uint8(req.Value.Type),
			"want", uint8(want))
		return StatusWrongType
	}
	return StatusNoError
}

// scalarAction decodes the inbound varbind and stages it into the
// candidate datastore with a merge edit. A varbind carrying no value
// succeeds without touching the store.
func (bd *Binding) scalarAction(ctx context.Context, req *Request) Status {
	value, found, err := DecodeValue(req.Value, bd.node.Type())
	if err != nil {
		bd.bridge.logger.Warn("inbound value does not decode",
			"oid", bd.oid.String(),
			"error", err.Error())
		return StatusWrongType
	}
	if !found {
		return StatusNoError
	}

	buf := bd.bridge.scratch.get()
	defer bd.bridge.scratch.put(buf)
	writeLeafFragment(buf, bd.node, value)

	if err := bd.bridge.store.EditConfigCandidate(ctx, buf.String()); err != nil {
		bd.bridge.logger.Error("staging edit failed",
			"oid", bd.oid.String(),
			"path", bd.node.Path(),
			"error", err.Error())
		return StatusGenErr
	}
	bd.bridge.logger.Debug("value staged",
		"path", bd.node.Path(),
		"value", sanitizeLogValue(value))
	return StatusNoError
}

// finishCommit promotes the staged candidate to running.
func (bd *Binding) finishCommit(ctx context.Context) Status {
	if err := bd.bridge.store.Commit(ctx); err != nil {
		bd.bridge.logger.Error("commit failed",
			"oid", bd.oid.String(),
			"error", err.Error())
		return StatusGenErr
	}
	return StatusNoError
}

// finishUndo discards the staged candidate.
func (bd *Binding) finishUndo(ctx context.Context) Status {
	if err := bd.bridge.store.DiscardChanges(ctx); err != nil {
		bd.bridge.logger.Error("discard failed",
			"oid", bd.oid.String(),
			"error", err.Error())
		return StatusGenErr
	}
	return StatusNoError
}

// fetchLeaf retrieves one leaf's character value from the datastore via a
// subtree-filtered get-config. Absence is a normal outcome.
func (bd *Binding) fetchLeaf(ctx context.Context, leaf *Node) (string, bool, Status) {
	buf := bd.bridge.scratch.get()
	defer bd.bridge.scratch.put(buf)
	writeSubtreeFilter(buf, leaf)

	data, err := bd.bridge.store.GetConfig(ctx, buf.String())
	if err != nil {
		bd.bridge.logger.Error("get-config failed",
			"path", leaf.Path(),
			"error", err.Error())
		return "", false, StatusGenErr
	}

	value, found, err := extractLeafValue(data, pathNames(leaf))
	if err != nil {
		bd.bridge.logger.Error("reply extraction failed",
			"path", leaf.Path(),
			"error", err.Error())
		return "", false, StatusGenErr
	}
	return value, found, StatusNoError
}
