// SPDX-License-Identifier: MIT
//
// This file defines Node, the in-memory form of one element of a model file.
// A node knows its `$type`, its Name and its Children; every other property is
// kept as raw JSON in file order, so a load/save cycle does not lose fields
// added by newer engine versions.
package apsimx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

const (
	keyType     = "$type"
	keyName     = "Name"
	keyChildren = "Children"
)

// Node is a single element of a model tree.
type Node struct {
	Type     string
	Name     string
	Children []*Node

	parent *Node
	order  []string
	props  map[string]json.RawMessage
}

// Kind returns the short type name of the node, e.g. "Physical" for
// "Models.Soils.Physical, Models".
func (n *Node) Kind() string {
	return KindOf(n.Type)
}

// KindOf extracts the short type name from a full `$type` string.
func KindOf(fullType string) string {
	t := fullType
	if i := strings.Index(t, ","); i >= 0 {
		t = t[:i]
	}
	t = strings.TrimSpace(t)
	if i := strings.LastIndex(t, "."); i >= 0 {
		t = t[i+1:]
	}
	return t
}

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Root returns the top-most ancestor of n.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// Ancestor returns the closest ancestor of the given kind, or nil.
func (n *Node) Ancestor(kind string) *Node {
	for p := n.parent; p != nil; p = p.parent {
		if p.Kind() == kind {
			return p
		}
	}
	return nil
}

// FullPath returns the absolute dotted path of the node, root included.
func (n *Node) FullPath() string {
	var names []string
	for p := n; p != nil; p = p.parent {
		names = append(names, p.Name)
	}
	slices.Reverse(names)
	return "." + strings.Join(names, ".")
}

// Child returns the direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AddChild appends child to n and sets its parent.
func (n *Node) AddChild(child *Node) {
	child.parent = n
	n.Children = append(n.Children, child)
	n.touch(keyChildren)
}

// RemoveChild detaches child from n. It reports whether child was found.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = slices.Delete(n.Children, i, i+1)
			child.parent = nil
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth-first. Returning false from fn
// stops the descent into that node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Has reports whether the node carries the property.
func (n *Node) Has(key string) bool {
	_, ok := n.props[key]
	return ok
}

// Raw returns the raw JSON of a property.
func (n *Node) Raw(key string) (json.RawMessage, bool) {
	raw, ok := n.props[key]
	return raw, ok
}

// Keys returns the names of all non-structural properties, in file order.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.props))
	for _, k := range n.order {
		if _, ok := n.props[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Get decodes a property into v. It reports false if the property is absent
// or null.
func (n *Node) Get(key string, v any) (bool, error) {
	raw, ok := n.props[key]
	if !ok || isNull(raw) {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %s.%s: %w", n.Name, key, err)
	}
	return true, nil
}

// Set encodes v and stores it under key, keeping the key's position if it
// already exists.
func (n *Node) Set(key string, v any) error {
	switch key {
	case keyType, keyName, keyChildren:
		return fmt.Errorf("property %q is structural and cannot be set directly", key)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s.%s: %w", n.Name, key, err)
	}
	return n.SetRaw(key, raw)
}

// SetRaw stores already encoded JSON under key.
func (n *Node) SetRaw(key string, raw json.RawMessage) error {
	switch key {
	case keyType, keyName, keyChildren:
		return fmt.Errorf("property %q is structural and cannot be set directly", key)
	}
	if !json.Valid(raw) {
		return fmt.Errorf("invalid JSON for %s.%s", n.Name, key)
	}
	if n.props == nil {
		n.props = make(map[string]json.RawMessage)
	}
	n.props[key] = raw
	n.touch(key)
	return nil
}

// Delete removes a property.
func (n *Node) Delete(key string) {
	delete(n.props, key)
	n.order = slices.DeleteFunc(n.order, func(k string) bool { return k == key })
}

// touch records key in the output order. New keys go before Children so
// that saved files keep the engine's usual layout.
func (n *Node) touch(key string) {
	if slices.Contains(n.order, key) {
		return
	}
	if i := slices.Index(n.order, keyChildren); i >= 0 && key != keyChildren {
		n.order = slices.Insert(n.order, i, key)
		return
	}
	n.order = append(n.order, key)
}

// Clone returns a deep copy of the subtree rooted at n. The copy has no
// parent.
func (n *Node) Clone() *Node {
	c := &Node{
		Type:  n.Type,
		Name:  n.Name,
		order: slices.Clone(n.order),
		props: make(map[string]json.RawMessage, len(n.props)),
	}
	for k, v := range n.props {
		c.props[k] = slices.Clone(v)
	}
	for _, child := range n.Children {
		cc := child.Clone()
		cc.parent = c
		c.Children = append(c.Children, cc)
	}
	return c
}

// UnmarshalJSON decodes one node and, recursively, its children while
// remembering the order of the keys.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("model node must be a JSON object, got %v", tok)
	}

	n.props = make(map[string]json.RawMessage)
	n.order = n.order[:0]
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in model node", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode property %q: %w", key, err)
		}
		n.order = append(n.order, key)

		switch key {
		case keyType:
			if err := json.Unmarshal(raw, &n.Type); err != nil {
				return fmt.Errorf("decode $type: %w", err)
			}
		case keyName:
			if err := json.Unmarshal(raw, &n.Name); err != nil {
				return fmt.Errorf("decode Name: %w", err)
			}
		case keyChildren:
			var children []*Node
			if err := json.Unmarshal(raw, &children); err != nil {
				return fmt.Errorf("decode children of %q: %w", n.Name, err)
			}
			n.Children = children
		default:
			n.props[key] = raw
		}
	}
	for _, c := range n.Children {
		c.parent = n
	}
	return nil
}

// MarshalJSON encodes the node with its keys in their original order.
func (n *Node) MarshalJSON() ([]byte, error) {
	order := n.order
	if !slices.Contains(order, keyType) {
		order = append([]string{keyType}, order...)
	}
	if !slices.Contains(order, keyName) {
		order = slices.Insert(slices.Clone(order), 1, keyName)
	}
	if !slices.Contains(order, keyChildren) {
		order = append(slices.Clone(order), keyChildren)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, value []byte) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
	}

	for _, key := range order {
		var (
			value []byte
			err   error
		)
		switch key {
		case keyType:
			value, err = json.Marshal(n.Type)
		case keyName:
			value, err = json.Marshal(n.Name)
		case keyChildren:
			children := n.Children
			if children == nil {
				children = []*Node{}
			}
			value, err = json.Marshal(children)
		default:
			raw, ok := n.props[key]
			if !ok {
				continue
			}
			value = raw
		}
		if err != nil {
			return nil, err
		}
		write(key, value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}
