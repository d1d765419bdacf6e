// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// XML construction and extraction for datastore payloads. Fragments are
// built from schema path nodes so the element nesting always mirrors the
// tree; values are escaped on the way in and whitespace-trimmed on the
// way out.

// writeSubtreeFilter writes a get-config subtree filter selecting the
// given schema node: nested elements from the module's first descendant
// down to the node, the innermost left empty. The top element carries the
// module namespace.
func writeSubtreeFilter(buf *bytes.Buffer, node *Node) {
	nodes := node.pathNodes()
	writeNestedOpen(buf, nodes, node.Namespace())
	writeNestedClose(buf, nodes)
}

// writeLeafFragment writes an edit-config fragment carrying a value for a
// leaf outside any list. The namespace goes on the outermost element, which
// is the leaf itself when it sits directly under its module.
func writeLeafFragment(buf *bytes.Buffer, leaf *Node, value string) {
	nodes := leaf.pathNodes()
	parents := nodes[:len(nodes)-1]
	if len(parents) == 0 {
		writeElementNS(buf, leaf.Name(), leaf.Namespace(), value)
		return
	}
	writeNestedOpen(buf, parents, leaf.Namespace())
	writeElement(buf, leaf.Name(), value)
	writeNestedClose(buf, parents)
}

// writeListCellFragment writes an edit-config fragment addressing one leaf
// inside one keyed list entry: the key leaves identify the entry, the cell
// leaf carries the value. When cell is nil only the entry itself (its
// keys) is written, which creates the row on merge.
func writeListCellFragment(buf *bytes.Buffer, list *Node, keyLeaves []*Node, keyVals []string, cell *Node, value string) {
	nodes := list.pathNodes()
	writeNestedOpen(buf, nodes, list.Namespace())
	for i, key := range keyLeaves {
		writeElement(buf, key.Name(), keyVals[i])
	}
	if cell != nil {
		writeElement(buf, cell.Name(), value)
	}
	writeNestedClose(buf, nodes)
}

func writeNestedOpen(buf *bytes.Buffer, nodes []*Node, namespace string) {
	for i, nd := range nodes {
		buf.WriteByte('<')
		buf.WriteString(nd.Name())
		if i == 0 && namespace != "" {
			buf.WriteString(` xmlns="`)
			xml.EscapeText(buf, []byte(namespace)) //nolint:errcheck // bytes.Buffer writes cannot fail
			buf.WriteByte('"')
		}
		buf.WriteByte('>')
	}
}

func writeNestedClose(buf *bytes.Buffer, nodes []*Node) {
	for i := len(nodes) - 1; i >= 0; i-- {
		buf.WriteString("</")
		buf.WriteString(nodes[i].Name())
		buf.WriteByte('>')
	}
}

func writeElementNS(buf *bytes.Buffer, name, namespace, value string) {
	buf.WriteByte('<')
	buf.WriteString(name)
	if namespace != "" {
		buf.WriteString(` xmlns="`)
		xml.EscapeText(buf, []byte(namespace)) //nolint:errcheck // bytes.Buffer writes cannot fail
		buf.WriteByte('"')
	}
	buf.WriteByte('>')
	xml.EscapeText(buf, []byte(value)) //nolint:errcheck // bytes.Buffer writes cannot fail
	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
}

func writeElement(buf *bytes.Buffer, name, value string) {
	buf.WriteByte('<')
	buf.WriteString(name)
	buf.WriteByte('>')
	xml.EscapeText(buf, []byte(value)) //nolint:errcheck // bytes.Buffer writes cannot fail
	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
}

// extractLeafValue finds the first element whose enclosing element names
// end with the given path and returns its character data. The reply may
// wrap the subtree arbitrarily (e.g. in <data>), so the path is matched as
// a suffix of the element stack.
//
// Returns ("", false, nil) when the path does not occur: an absent
// optional leaf is a normal outcome, not an error.
func extractLeafValue(data string, path []string) (string, bool, error) {
	if len(path) == 0 {
		return "", false, fmt.Errorf("empty extraction path")
	}

	decoder := xml.NewDecoder(strings.NewReader(data))
	var stack []string
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return "", false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("malformed reply XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			if stackMatches(stack, path) {
				var value string
				if err := decoder.DecodeElement(&value, &t); err != nil {
					return "", false, fmt.Errorf("malformed leaf element: %w", err)
				}
				return strings.TrimSpace(value), true, nil
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
}

// listEntry is one decoded entry of a list element: child leaf name to
// trimmed character data.
type listEntry map[string]string

// extractListEntries collects every entry of the list addressed by path
// (matched as a stack suffix, like extractLeafValue). Each occurrence of
// the innermost path element is decoded into a flat map of its child
// leaves.
func extractListEntries(data string, path []string) ([]listEntry, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("empty extraction path")
	}

	var entries []listEntry
	decoder := xml.NewDecoder(strings.NewReader(data))
	var stack []string
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("malformed reply XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			if stackMatches(stack, path) {
				entry, err := decodeEntry(decoder)
				if err != nil {
					return nil, err
				}
				entries = append(entries, entry)
				stack = stack[:len(stack)-1]
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
}

// decodeEntry reads the children of the current element into a flat map
// until the matching end element. Nested containers inside entries are not
// modeled by table bindings and are skipped.
func decodeEntry(decoder *xml.Decoder) (listEntry, error) {
	entry := listEntry{}
	depth := 0
	var current string
	var text strings.Builder
	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("malformed list entry: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				current = t.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if depth == 1 {
				text.Write(t)
			}
		case xml.EndElement:
			if depth == 0 {
				return entry, nil
			}
			if depth == 1 && current != "" {
				entry[current] = strings.TrimSpace(text.String())
				current = ""
			}
			depth--
		}
	}
}

func stackMatches(stack, path []string) bool {
	if len(stack) < len(path) {
		return false
	}
	offset := len(stack) - len(path)
	for i, name := range path {
		if stack[offset+i] != name {
			return false
		}
	}
	return true
}

// pathNames returns the element names of a node's datastore path.
func pathNames(node *Node) []string {
	nodes := node.pathNodes()
	names := make([]string, len(nodes))
	for i, nd := range nodes {
		names[i] = nd.Name()
	}
	return names
}
