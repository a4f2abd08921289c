package models

import (
	"strconv"
	"strings"
)

// RuleKind identifies which constraint produced a violation.
type RuleKind string

const (
	RuleTypeMismatch    RuleKind = "TYPE_MISMATCH"
	RuleEnumMismatch    RuleKind = "ENUM_MISMATCH"
	RulePatternMismatch RuleKind = "PATTERN_MISMATCH"
	RuleRangeViolation  RuleKind = "RANGE_VIOLATION"
	RuleMissingRequired RuleKind = "MISSING_REQUIRED"
	RuleUnknownField    RuleKind = "UNKNOWN_FIELD"
)

// Path locates a node in a document: one element per mapping key or
// sequence index, from the root down.
type Path []string

// Key returns a new Path extended with a mapping key. The receiver is not
// modified, so sibling paths never share a violation's backing array.
func (p Path) Key(k string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = k
	return out
}

// Index returns a new Path extended with a sequence index.
func (p Path) Index(i int) Path {
	return p.Key(strconv.Itoa(i))
}

// String renders the path as a JSON Pointer (RFC 6901). The root is "".
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, el := range p {
		sb.WriteByte('/')
		el = strings.ReplaceAll(el, "~", "~0")
		el = strings.ReplaceAll(el, "/", "~1")
		sb.WriteString(el)
	}
	return sb.String()
}

// Violation is one discovered constraint failure: where it happened, which
// rule failed, what the policy expected and what the data held.
type Violation struct {
	Path     Path     `json:"path"`
	Rule     RuleKind `json:"rule"`
	Expected string   `json:"expected"`
	Actual   string   `json:"actual"`
}
