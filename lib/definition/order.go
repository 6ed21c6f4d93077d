// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package definition

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// memberOrder maps each object-valued top-level field to its member
// names in document order. A name declared twice keeps its first
// position.
type memberOrder map[string][]string

// member is one name/value pair of a JSON object, value undecoded.
type member struct {
	name  string
	value json.RawMessage
}

// objectMembers splits a JSON object into its members in document
// order. ok is false when data is not an object.
func objectMembers(data []byte) (members []member, ok bool, err error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	token, err := decoder.Token()
	if err != nil {
		return nil, false, err
	}
	if token != json.Delim('{') {
		return nil, false, nil
	}
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, false, err
		}
		name, _ := token.(string)
		var value json.RawMessage
		if err := decoder.Decode(&value); err != nil {
			return nil, false, err
		}
		members = append(members, member{name: name, value: value})
	}
	return members, true, nil
}

func jsonMemberOrder(data []byte) (memberOrder, error) {
	top, _, err := objectMembers(data)
	if err != nil {
		return nil, fmt.Errorf("reading member order: %w", err)
	}
	order := make(memberOrder)
	for _, field := range top {
		inner, isObject, err := objectMembers(field.value)
		if err != nil {
			return nil, fmt.Errorf("reading member order of %q: %w", field.name, err)
		}
		// The last declaration of a field is the one decoded.
		if !isObject {
			delete(order, field.name)
			continue
		}
		names := make([]string, 0, len(inner))
		for _, entry := range inner {
			names = append(names, entry.name)
		}
		order[field.name] = firstOccurrences(names)
	}
	return order, nil
}

func yamlMemberOrder(data []byte) (memberOrder, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("reading member order: %w", err)
	}
	top := dealias(&root)
	if top.Kind == yaml.DocumentNode && len(top.Content) > 0 {
		top = dealias(top.Content[0])
	}
	order := make(memberOrder)
	if top.Kind != yaml.MappingNode {
		return order, nil
	}
	for i := 0; i+1 < len(top.Content); i += 2 {
		field := top.Content[i].Value
		value := dealias(top.Content[i+1])
		if value.Kind != yaml.MappingNode {
			delete(order, field)
			continue
		}
		names := make([]string, 0, len(value.Content)/2)
		for j := 0; j+1 < len(value.Content); j += 2 {
			names = append(names, value.Content[j].Value)
		}
		order[field] = firstOccurrences(names)
	}
	return order, nil
}

func dealias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func firstOccurrences(names []string) []string {
	seen := make(map[string]bool, len(names))
	unique := names[:0]
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			unique = append(unique, name)
		}
	}
	return unique
}
