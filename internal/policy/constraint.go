// Package policy implements the conformance-checking engine: it compiles a
// policy document into a constraint tree and evaluates configuration
// documents against it, producing a drift report.
package policy

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/driftcheck/driftcheck/internal/document"
	"github.com/driftcheck/driftcheck/internal/models"
)

// ErrInvalidPolicy marks a policy document that is structurally unusable as
// a constraint tree. Fatal for the run; no partial report is produced.
var ErrInvalidPolicy = errors.New("invalid policy")

var typeNames = map[string]bool{
	"object":  true,
	"array":   true,
	"string":  true,
	"number":  true,
	"integer": true,
	"boolean": true,
	"null":    true,
}

// Constraint is one compiled policy node. A zero Constraint matches
// anything (open policy).
type Constraint struct {
	Type       string
	Enum       []*document.Node
	Pattern    *regexp.Regexp
	PatternSrc string
	Minimum    *float64
	Maximum    *float64
	Required   []string
	PropOrder  []string
	Properties map[string]*Constraint
	Items      *Constraint
}

// Parse compiles a policy document into a constraint tree. The root must be
// a mapping or sequence; a bare scalar cannot describe constraints.
func Parse(root *document.Node) (*Constraint, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: empty policy document", ErrInvalidPolicy)
	}
	switch root.Kind() {
	case document.KindMapping:
		return parseNode(root, nil)
	case document.KindSequence:
		// no recognized constraint keys: matches anything
		return &Constraint{}, nil
	default:
		return nil, fmt.Errorf("%w: policy root must be a mapping, got %s", ErrInvalidPolicy, root.Kind())
	}
}

func parseNode(n *document.Node, at models.Path) (*Constraint, error) {
	if n.Kind() != document.KindMapping {
		return nil, fmt.Errorf("%w: constraint %s must be a mapping, got %s", ErrInvalidPolicy, atLabel(at), n.Kind())
	}

	c := &Constraint{}

	if tn := field(n, "type"); tn != nil {
		name, ok := tn.Value().(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s: \"type\" must be a string", ErrInvalidPolicy, atLabel(at))
		}
		if !typeNames[name] {
			return nil, fmt.Errorf("%w: %s: unknown type %q", ErrInvalidPolicy, atLabel(at), name)
		}
		c.Type = name
	}

	if en := field(n, "enum"); en != nil {
		members, err := en.Elements()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: \"enum\" must be a sequence", ErrInvalidPolicy, atLabel(at))
		}
		for _, m := range members {
			switch m.Kind() {
			case document.KindMapping, document.KindSequence:
				return nil, fmt.Errorf("%w: %s: \"enum\" members must be scalar values", ErrInvalidPolicy, atLabel(at))
			}
		}
		c.Enum = members
	}

	if pn := field(n, "pattern"); pn != nil {
		src, ok := pn.Value().(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s: \"pattern\" must be a string", ErrInvalidPolicy, atLabel(at))
		}
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: bad pattern: %v", ErrInvalidPolicy, atLabel(at), err)
		}
		c.Pattern = re
		c.PatternSrc = src
	}

	if mn := field(n, "minimum"); mn != nil {
		v, ok := mn.Number()
		if !ok {
			return nil, fmt.Errorf("%w: %s: \"minimum\" must be a number", ErrInvalidPolicy, atLabel(at))
		}
		c.Minimum = &v
	}

	if mn := field(n, "maximum"); mn != nil {
		v, ok := mn.Number()
		if !ok {
			return nil, fmt.Errorf("%w: %s: \"maximum\" must be a number", ErrInvalidPolicy, atLabel(at))
		}
		c.Maximum = &v
	}

	if rn := field(n, "required"); rn != nil {
		keys, err := rn.Elements()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: \"required\" must be a sequence", ErrInvalidPolicy, atLabel(at))
		}
		for _, kn := range keys {
			key, ok := kn.Value().(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s: \"required\" entries must be strings", ErrInvalidPolicy, atLabel(at))
			}
			c.Required = append(c.Required, key)
		}
	}

	if pn := field(n, "properties"); pn != nil {
		keys, err := pn.Keys()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: \"properties\" must be a mapping", ErrInvalidPolicy, atLabel(at))
		}
		c.Properties = make(map[string]*Constraint, len(keys))
		for _, key := range keys {
			childDoc, _ := pn.Get(key)
			child, err := parseNode(childDoc, at.Key("properties").Key(key))
			if err != nil {
				return nil, err
			}
			c.PropOrder = append(c.PropOrder, key)
			c.Properties[key] = child
		}
	}

	if in := field(n, "items"); in != nil {
		child, err := parseNode(in, at.Key("items"))
		if err != nil {
			return nil, err
		}
		c.Items = child
	}

	return c, nil
}

// field reads a mapping key, nil when absent or not a mapping.
func field(n *document.Node, key string) *document.Node {
	child, err := n.Get(key)
	if err != nil {
		return nil
	}
	return child
}

func atLabel(p models.Path) string {
	if len(p) == 0 {
		return "at policy root"
	}
	return "at " + p.String()
}
