// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"fmt"
	"net"
	"strconv"

	"github.com/gosnmp/gosnmp"
)

// Value codec: the only place the datastore's typed string representation
// and the SNMP wire representation meet. Both directions are exhaustive
// over the supported type set and reject unsupported types explicitly
// rather than truncating.

// EncodeValue translates a datastore string value into the SNMP wire value
// for the given type.
//
// The returned value uses the Go representation conventional for gosnmp
// varbinds: int for INTEGER, uint32 for Counter32/Gauge32/Unsigned32/
// TimeTicks, uint64 for Counter64, []byte for OCTET STRING, and a
// dotted-quad string for IpAddress. The wire tag is the type's ASN1 tag.
//
// Example:
//
//	val, err := snmpbridge.EncodeValue("1234", snmpbridge.TypeGauge32)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pdu := gosnmp.SnmpPDU{Type: snmpbridge.TypeGauge32.ASN1(), Value: val}
//
// Returns a KindInternal *BridgeError for malformed literals and for
// unsupported types: the literal came from the datastore or the schema,
// never from the SNMP client.
func EncodeValue(value string, typ ValueType) (any, error) {
	switch typ {
	case TypeInt32:
		v, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return nil, internalError("encode", fmt.Sprintf("malformed int32 literal %q", value), err)
		}
		return int(v), nil
	case TypeUint32, TypeCounter32, TypeGauge32, TypeTimeTicks:
		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return nil, internalError("encode", fmt.Sprintf("malformed %s literal %q", typ, value), err)
		}
		return uint32(v), nil
	case TypeCounter64:
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, internalError("encode", fmt.Sprintf("malformed counter64 literal %q", value), err)
		}
		return v, nil
	case TypeString:
		return []byte(value), nil
	case TypeIPAddress:
		ip := net.ParseIP(value)
		if ip == nil || ip.To4() == nil {
			return nil, internalError("encode", fmt.Sprintf("malformed IPv4 address %q", value), nil)
		}
		return ip.To4().String(), nil
	default:
		return nil, internalError("encode", fmt.Sprintf("unsupported value type %s", typ), nil)
	}
}

// DecodeValue translates an inbound SNMP wire value into the canonical
// datastore string for the given type.
//
// The second return value reports whether the varbind carried a value at
// all: a Null-typed varbind decodes to ("", false, nil), which set handlers
// treat as success with no store mutation. A varbind whose wire tag does
// not match the type's expected tag is an error; type tag mismatches are
// normally caught earlier, at the type-check phase.
//
// Errors are KindProtocol *BridgeError values: the varbind is client input.
// An unsupported type is KindInternal, since registration should have
// rejected the leaf.
func DecodeValue(pdu gosnmp.SnmpPDU, typ ValueType) (string, bool, error) {
	if pdu.Type == gosnmp.Null {
		return "", false, nil
	}
	if expected := typ.ASN1(); pdu.Type != expected {
		return "", false, protocolError("decode", fmt.Sprintf("wire type %#x does not match expected %#x for %s", byte(pdu.Type), byte(expected), typ), nil)
	}

	switch typ {
	case TypeInt32:
		switch v := pdu.Value.(type) {
		case int:
			if v < -1<<31 || v > 1<<31-1 {
				return "", false, protocolError("decode", fmt.Sprintf("int32 value %d out of range", v), nil)
			}
			return strconv.Itoa(v), true, nil
		case int32:
			return strconv.FormatInt(int64(v), 10), true, nil
		default:
			return "", false, protocolError("decode", fmt.Sprintf("invalid encoding %T for int32", pdu.Value), nil)
		}
	case TypeUint32, TypeCounter32, TypeGauge32, TypeTimeTicks:
		switch v := pdu.Value.(type) {
		case uint32:
			return strconv.FormatUint(uint64(v), 10), true, nil
		case uint:
			if uint64(v) > 1<<32-1 {
				return "", false, protocolError("decode", fmt.Sprintf("%s value %d out of range", typ, v), nil)
			}
			return strconv.FormatUint(uint64(v), 10), true, nil
		default:
			return "", false, protocolError("decode", fmt.Sprintf("invalid encoding %T for %s", pdu.Value, typ), nil)
		}
	case TypeCounter64:
		switch v := pdu.Value.(type) {
		case uint64:
			return strconv.FormatUint(v, 10), true, nil
		case uint32:
			return strconv.FormatUint(uint64(v), 10), true, nil
		default:
			return "", false, protocolError("decode", fmt.Sprintf("invalid encoding %T for counter64", pdu.Value), nil)
		}
	case TypeString:
		switch v := pdu.Value.(type) {
		case []byte:
			return string(v), true, nil
		case string:
			return v, true, nil
		default:
			return "", false, protocolError("decode", fmt.Sprintf("invalid encoding %T for string", pdu.Value), nil)
		}
	case TypeIPAddress:
		s, ok := pdu.Value.(string)
		if !ok {
			return "", false, protocolError("decode", fmt.Sprintf("invalid encoding %T for ipaddress", pdu.Value), nil)
		}
		ip := net.ParseIP(s)
		if ip == nil || ip.To4() == nil {
			return "", false, protocolError("decode", fmt.Sprintf("invalid IPv4 address %q", s), nil)
		}
		return ip.To4().String(), true, nil
	default:
		return "", false, internalError("decode", fmt.Sprintf("unsupported value type %s", typ), nil)
	}
}
