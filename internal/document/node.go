// Package document holds the parser-independent tree that policies and
// configuration snapshots are evaluated over. Nodes are built once by a
// decoder and never mutated afterwards.
package document

import (
	"errors"
	"math"
)

// Kind tags a Node value.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindMapping
	KindSequence
)

// String returns the JSON-style name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindMapping:
		return "object"
	case KindSequence:
		return "array"
	}
	return "unknown"
}

var (
	ErrNotAMapping  = errors.New("document: node is not a mapping")
	ErrNotASequence = errors.New("document: node is not a sequence")
)

// Node is one value in a parsed document tree. Scalar values are held as
// bool, int64, float64 or string; mappings keep key insertion order.
type Node struct {
	kind   Kind
	value  any
	keys   []string
	fields map[string]*Node
	items  []*Node
}

// Null returns a null node.
func Null() *Node {
	return &Node{kind: KindNull}
}

// Bool returns a boolean node.
func Bool(v bool) *Node {
	return &Node{kind: KindBoolean, value: v}
}

// Int returns a number node holding an integer value.
func Int(v int64) *Node {
	return &Node{kind: KindNumber, value: v}
}

// Float returns a number node holding a floating-point value.
func Float(v float64) *Node {
	return &Node{kind: KindNumber, value: v}
}

// String returns a string node.
func String(v string) *Node {
	return &Node{kind: KindString, value: v}
}

// Mapping returns an empty mapping node.
func Mapping() *Node {
	return &Node{kind: KindMapping, fields: map[string]*Node{}}
}

// Sequence returns a sequence node over the given elements.
func Sequence(items ...*Node) *Node {
	return &Node{kind: KindSequence, items: items}
}

// Set adds or replaces a key in a mapping node. Panics when called on a
// non-mapping node; decoders and tests only build mappings with Mapping().
func (n *Node) Set(key string, child *Node) {
	if n.kind != KindMapping {
		panic("document: Set on non-mapping node")
	}
	if _, exists := n.fields[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = child
}

// Kind returns the node's kind tag.
func (n *Node) Kind() Kind {
	return n.kind
}

// Get returns the child stored under key, or nil when the key is absent.
// Fails with ErrNotAMapping for non-mapping nodes.
func (n *Node) Get(key string) (*Node, error) {
	if n.kind != KindMapping {
		return nil, ErrNotAMapping
	}
	return n.fields[key], nil
}

// Keys returns the mapping keys in insertion order.
func (n *Node) Keys() ([]string, error) {
	if n.kind != KindMapping {
		return nil, ErrNotAMapping
	}
	return n.keys, nil
}

// Elements returns the sequence elements in order.
func (n *Node) Elements() ([]*Node, error) {
	if n.kind != KindSequence {
		return nil, ErrNotASequence
	}
	return n.items, nil
}

// Value returns the scalar value; nil for null and container nodes.
func (n *Node) Value() any {
	return n.value
}

// Number returns the numeric value as float64 when the node is a number.
func (n *Node) Number() (float64, bool) {
	if n.kind != KindNumber {
		return 0, false
	}
	switch v := n.value.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// IsInteger reports whether the node is a number with an integral value.
func (n *Node) IsInteger() bool {
	switch v := n.value.(type) {
	case int64:
		return true
	case float64:
		return v == math.Trunc(v) && !math.IsInf(v, 0)
	}
	return false
}

func (n *Node) has(key string) bool {
	if n.kind != KindMapping {
		return false
	}
	_, ok := n.fields[key]
	return ok
}
