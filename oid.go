// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"fmt"
	"strings"
)

// OID is an SNMP object identifier expressed as a sequence of numeric arcs.
//
// The zero value is an empty OID. OIDs are compared lexicographically by
// arc value, which matches the ordering used for SNMP get-next traversal.
type OID []uint32

// ParseOID parses a dotted OID string (e.g., "1.3.6.1.2.1.1.3") into an OID.
// A single leading dot is accepted and ignored.
//
// Example:
//
//	oid, err := snmpbridge.ParseOID(".1.3.6.1.2.1.2.2")
//	if err != nil {
//	    log.Fatal(err)
//	}
func ParseOID(s string) (OID, error) {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return nil, fmt.Errorf("empty OID")
	}

	parts := strings.Split(s, ".")
	oid := make(OID, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("empty arc in OID %q", s)
		}
		var arc uint64
		for i := 0; i < len(part); i++ {
			c := part[i]
			if c < '0' || c > '9' {
				return nil, fmt.Errorf("invalid character %q in OID %q", c, s)
			}
			arc = arc*10 + uint64(c-'0')
			if arc > 1<<32-1 {
				return nil, fmt.Errorf("arc %q overflows 32 bits in OID %q", part, s)
			}
		}
		oid = append(oid, uint32(arc))
	}
	return oid, nil
}

// String returns the dotted string representation of the OID.
func (o OID) String() string {
	if len(o) == 0 {
		return ""
	}
	var b strings.Builder
	for i, arc := range o {
		if i > 0 {
			b.WriteByte('.')
		}
		fmt.Fprintf(&b, "%d", arc)
	}
	return b.String()
}

// HasPrefix reports whether the OID starts with the given prefix.
func (o OID) HasPrefix(prefix OID) bool {
	if len(prefix) > len(o) {
		return false
	}
	for i, arc := range prefix {
		if o[i] != arc {
			return false
		}
	}
	return true
}

// Equal reports whether two OIDs are identical.
func (o OID) Equal(other OID) bool {
	return len(o) == len(other) && o.HasPrefix(other)
}

// Compare returns -1, 0, or 1 ordering the OIDs lexicographically by arc.
// A strict prefix sorts before any of its extensions.
func (o OID) Compare(other OID) int {
	n := len(o)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		switch {
		case o[i] < other[i]:
			return -1
		case o[i] > other[i]:
			return 1
		}
	}
	switch {
	case len(o) < len(other):
		return -1
	case len(o) > len(other):
		return 1
	}
	return 0
}

// Append returns a new OID with the given arcs appended. The receiver is
// not modified.
func (o OID) Append(arcs ...uint32) OID {
	result := make(OID, 0, len(o)+len(arcs))
	result = append(result, o...)
	result = append(result, arcs...)
	return result
}

// Clone returns an independent copy of the OID.
func (o OID) Clone() OID {
	if o == nil {
		return nil
	}
	result := make(OID, len(o))
	copy(result, o)
	return result
}
