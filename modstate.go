// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2025 Daniel Schmidt

package snmpbridge

import (
	"encoding/xml"
	"fmt"
	"hash/fnv"
	"sort"
)

// yangLibraryNamespace is the ietf-yang-library namespace (RFC 7895).
const yangLibraryNamespace = "urn:ietf:params:xml:ns:yang:ietf-yang-library"

type modulesState struct {
	XMLName     xml.Name     `xml:"modules-state"`
	Namespace   string       `xml:"xmlns,attr"`
	ModuleSetID string       `xml:"module-set-id"`
	Modules     []moduleInfo `xml:"module"`
}

type moduleInfo struct {
	Name            string `xml:"name"`
	Revision        string `xml:"revision"`
	Namespace       string `xml:"namespace"`
	ConformanceType string `xml:"conformance-type"`
}

// ModulesState renders the set of schema modules the bridge exposes as an
// ietf-yang-library modules-state XML document. Each module referenced by
// at least one binding appears once, sorted by name, with implement
// conformance. Every member module must declare a namespace; one without
// is an error. The module-set-id is derived from the member names and
// revisions so it changes exactly when the set does.
//
// Example:
//
//	doc, err := bridge.ModulesState()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(doc)
func (b *Bridge) ModulesState() (string, error) {
	b.mu.Lock()
	seen := map[*Node]bool{}
	var modules []*Node
	for _, bd := range b.bindings {
		mod := bd.node.Module()
		if !seen[mod] {
			seen[mod] = true
			modules = append(modules, mod)
		}
	}
	b.mu.Unlock()

	sort.Slice(modules, func(i, j int) bool {
		return modules[i].Name() < modules[j].Name()
	})

	state := modulesState{
		Namespace:   yangLibraryNamespace,
		ModuleSetID: moduleSetID(modules),
		Modules:     make([]moduleInfo, 0, len(modules)),
	}
	for _, mod := range modules {
		if mod.Namespace() == "" {
			return "", internalError("modules-state", fmt.Sprintf("module %s declares no namespace", mod.Name()), nil)
		}
		state.Modules = append(state.Modules, moduleInfo{
			Name:            mod.Name(),
			Revision:        mod.Revision(),
			Namespace:       mod.Namespace(),
			ConformanceType: "implement",
		})
	}

	out, err := xml.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", fmt.Errorf("rendering modules-state: %w", err)
	}
	return string(out), nil
}

// moduleSetID hashes member names and revisions into a stable identifier.
func moduleSetID(modules []*Node) string {
	// hash.Hash writes cannot fail
	h := fnv.New32a()
	for _, mod := range modules {
		h.Write([]byte(mod.Name()))
		h.Write([]byte{0})
		h.Write([]byte(mod.Revision()))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%08x", h.Sum32())
}
