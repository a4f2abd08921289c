package document

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAML parses a YAML document into a Node tree. Mapping key order is
// preserved; duplicate keys are rejected.
func FromYAML(data []byte) (*Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 {
		// empty document
		return Null(), nil
	}
	return fromYAMLNode(&root)
}

func fromYAMLNode(n *yaml.Node) (*Node, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return fromYAMLNode(n.Content[0])

	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)

	case yaml.MappingNode:
		m := Mapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := n.Content[i]
			var key string
			if err := keyNode.Decode(&key); err != nil {
				return nil, fmt.Errorf("line %d: mapping key is not a scalar", keyNode.Line)
			}
			if m.has(key) {
				return nil, fmt.Errorf("line %d: duplicate mapping key %q", keyNode.Line, key)
			}
			child, err := fromYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(key, child)
		}
		return m, nil

	case yaml.SequenceNode:
		items := make([]*Node, 0, len(n.Content))
		for _, el := range n.Content {
			child, err := fromYAMLNode(el)
			if err != nil {
				return nil, err
			}
			items = append(items, child)
		}
		return Sequence(items...), nil

	case yaml.ScalarNode:
		return fromYAMLScalar(n)
	}

	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func fromYAMLScalar(n *yaml.Node) (*Node, error) {
	switch n.Tag {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %v", n.Line, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i), nil
		}
		// out of int64 range, fall back to float
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %v", n.Line, err)
		}
		return Float(f), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %v", n.Line, err)
		}
		return Float(f), nil
	default:
		// !!str, !!timestamp and custom tags are kept as strings
		return String(n.Value), nil
	}
}
