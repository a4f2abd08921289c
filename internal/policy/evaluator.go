package policy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/driftcheck/driftcheck/internal/document"
	"github.com/driftcheck/driftcheck/internal/models"
)

type evaluator struct {
	closedWorld bool
}

// evaluate walks one policy constraint against one data node, depth-first,
// collecting a violation for every failed check. It is total: data of the
// wrong shape is a finding, never an error.
//
// Check order per node: type, enum (stops further checks on failure),
// pattern, minimum/maximum, required, properties, items.
func (e *evaluator) evaluate(c *Constraint, data *document.Node, path models.Path) []models.Violation {
	if data == nil {
		return nil
	}

	var out []models.Violation

	shapeOK := true
	if c.Type != "" && !typeMatches(c.Type, data) {
		out = append(out, models.Violation{
			Path:     path,
			Rule:     models.RuleTypeMismatch,
			Expected: c.Type,
			Actual:   data.Kind().String(),
		})
		shapeOK = false
	}

	if len(c.Enum) > 0 && !enumHas(c.Enum, data) {
		out = append(out, models.Violation{
			Path:     path,
			Rule:     models.RuleEnumMismatch,
			Expected: enumLabel(c.Enum),
			Actual:   render(data),
		})
		// no further constraints apply to an enum-failed value
		return out
	}

	if c.Pattern != nil && data.Kind() == document.KindString {
		s, _ := data.Value().(string)
		if !c.Pattern.MatchString(s) {
			out = append(out, models.Violation{
				Path:     path,
				Rule:     models.RulePatternMismatch,
				Expected: fmt.Sprintf("match for pattern %q", c.PatternSrc),
				Actual:   s,
			})
		}
	}

	if num, ok := data.Number(); ok {
		if c.Minimum != nil && num < *c.Minimum {
			out = append(out, models.Violation{
				Path:     path,
				Rule:     models.RuleRangeViolation,
				Expected: ">= " + formatNumber(*c.Minimum),
				Actual:   render(data),
			})
		}
		if c.Maximum != nil && num > *c.Maximum {
			out = append(out, models.Violation{
				Path:     path,
				Rule:     models.RuleRangeViolation,
				Expected: "<= " + formatNumber(*c.Maximum),
				Actual:   render(data),
			})
		}
	}

	// container constraints assume the declared shape; skip them after a
	// type mismatch so one root cause does not cascade
	if shapeOK && data.Kind() == document.KindMapping {
		for _, key := range c.Required {
			child, _ := data.Get(key)
			if child == nil {
				out = append(out, models.Violation{
					Path:     path.Key(key),
					Rule:     models.RuleMissingRequired,
					Expected: "required key",
					Actual:   "absent",
				})
			}
		}

		for _, key := range c.PropOrder {
			child, _ := data.Get(key)
			if child == nil {
				// absence is reported by "required" alone
				continue
			}
			out = append(out, e.evaluate(c.Properties[key], child, path.Key(key))...)
		}

		if e.closedWorld && c.Properties != nil {
			keys, _ := data.Keys()
			for _, key := range keys {
				if _, declared := c.Properties[key]; declared {
					continue
				}
				child, _ := data.Get(key)
				out = append(out, models.Violation{
					Path:     path.Key(key),
					Rule:     models.RuleUnknownField,
					Expected: "key declared in policy",
					Actual:   render(child),
				})
			}
		}
	}

	if shapeOK && data.Kind() == document.KindSequence && c.Items != nil {
		elements, _ := data.Elements()
		for i, el := range elements {
			out = append(out, e.evaluate(c.Items, el, path.Index(i))...)
		}
	}

	return out
}

func typeMatches(name string, n *document.Node) bool {
	switch name {
	case "object":
		return n.Kind() == document.KindMapping
	case "array":
		return n.Kind() == document.KindSequence
	case "string":
		return n.Kind() == document.KindString
	case "number":
		return n.Kind() == document.KindNumber
	case "integer":
		return n.Kind() == document.KindNumber && n.IsInteger()
	case "boolean":
		return n.Kind() == document.KindBoolean
	case "null":
		return n.Kind() == document.KindNull
	}
	return false
}

func enumHas(members []*document.Node, data *document.Node) bool {
	for _, m := range members {
		if scalarEqual(m, data) {
			return true
		}
	}
	return false
}

// scalarEqual compares by exact value semantics: numbers compare numerically
// across int/float representations, and nothing coerces across kinds.
func scalarEqual(a, b *document.Node) bool {
	if an, ok := a.Number(); ok {
		bn, ok := b.Number()
		return ok && an == bn
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case document.KindNull:
		return true
	case document.KindBoolean, document.KindString:
		return a.Value() == b.Value()
	}
	return false
}

// render formats a node for the Actual field of a violation.
func render(n *document.Node) string {
	switch n.Kind() {
	case document.KindNull:
		return "null"
	case document.KindBoolean:
		return strconv.FormatBool(n.Value().(bool))
	case document.KindNumber:
		if v, ok := n.Value().(int64); ok {
			return strconv.FormatInt(v, 10)
		}
		f, _ := n.Number()
		return formatNumber(f)
	case document.KindString:
		return n.Value().(string)
	}
	return n.Kind().String()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func enumLabel(members []*document.Node) string {
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = render(m)
	}
	return "one of [" + strings.Join(parts, ", ") + "]"
}
