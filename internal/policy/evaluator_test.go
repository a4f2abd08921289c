package policy

import (
	"reflect"
	"testing"

	"github.com/driftcheck/driftcheck/internal/document"
	"github.com/driftcheck/driftcheck/internal/models"
)

func mustYAML(t *testing.T, src string) *document.Node {
	t.Helper()
	n, err := document.FromYAML([]byte(src))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return n
}

func check(t *testing.T, policySrc, dataSrc string) *models.DriftReport {
	t.Helper()
	engine := NewEngine(Options{})
	report, err := engine.Check(mustYAML(t, policySrc), mustYAML(t, dataSrc))
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	return report
}

func TestCheck_PortOutOfRange(t *testing.T) {
	report := check(t, `
type: object
required: [port]
properties:
  port:
    type: number
    minimum: 1
    maximum: 65535
`, `
port: 70000
`)

	if len(report.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(report.Violations), report.Violations)
	}
	v := report.Violations[0]
	if v.Rule != models.RuleRangeViolation {
		t.Errorf("rule = %s, want %s", v.Rule, models.RuleRangeViolation)
	}
	if v.Path.String() != "/port" {
		t.Errorf("path = %q, want /port", v.Path.String())
	}
	if v.Expected != "<= 65535" {
		t.Errorf("expected = %q, want <= 65535", v.Expected)
	}
	if v.Actual != "70000" {
		t.Errorf("actual = %q, want 70000", v.Actual)
	}
}

func TestCheck_EnumMismatch(t *testing.T) {
	report := check(t, `
type: object
properties:
  tls:
    type: boolean
    enum: [true]
`, `
tls: false
`)

	if len(report.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(report.Violations), report.Violations)
	}
	v := report.Violations[0]
	if v.Rule != models.RuleEnumMismatch {
		t.Errorf("rule = %s, want %s", v.Rule, models.RuleEnumMismatch)
	}
	if v.Path.String() != "/tls" {
		t.Errorf("path = %q, want /tls", v.Path.String())
	}
	if v.Actual != "false" {
		t.Errorf("actual = %q, want false", v.Actual)
	}
}

func TestCheck_MissingRequired(t *testing.T) {
	report := check(t, `
type: object
required: [admins]
`, `{}`)

	if len(report.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(report.Violations), report.Violations)
	}
	v := report.Violations[0]
	if v.Rule != models.RuleMissingRequired {
		t.Errorf("rule = %s, want %s", v.Rule, models.RuleMissingRequired)
	}
	if v.Path.String() != "/admins" {
		t.Errorf("path = %q, want /admins", v.Path.String())
	}
	if v.Actual != "absent" {
		t.Errorf("actual = %q, want absent", v.Actual)
	}
}

func TestCheck_Compliant(t *testing.T) {
	report := check(t, `
type: object
properties:
  x:
    type: string
`, `
x: ok
`)

	if !report.Compliant {
		t.Errorf("expected compliant report, got violations: %+v", report.Violations)
	}
	if len(report.Violations) != 0 {
		t.Errorf("expected no violations, got %d", len(report.Violations))
	}
}

func TestCheck_MissingRequiredDoesNotCascade(t *testing.T) {
	// a missing key must produce exactly one violation, not a trailing
	// type/property failure for the same root cause
	report := check(t, `
type: object
required: [server]
properties:
  server:
    type: object
    required: [host, port]
    properties:
      host:
        type: string
`, `{}`)

	if len(report.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(report.Violations), report.Violations)
	}
	if report.Violations[0].Rule != models.RuleMissingRequired {
		t.Errorf("rule = %s, want %s", report.Violations[0].Rule, models.RuleMissingRequired)
	}
}

func TestCheck_TypeMismatchSkipsContainerConstraints(t *testing.T) {
	report := check(t, `
type: object
required: [a]
properties:
  a:
    type: string
`, `
- 1
- 2
`)

	if len(report.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(report.Violations), report.Violations)
	}
	v := report.Violations[0]
	if v.Rule != models.RuleTypeMismatch {
		t.Errorf("rule = %s, want %s", v.Rule, models.RuleTypeMismatch)
	}
	if v.Expected != "object" || v.Actual != "array" {
		t.Errorf("expected/actual = %q/%q, want object/array", v.Expected, v.Actual)
	}
}

func TestCheck_EnumFailureStopsFurtherChecks(t *testing.T) {
	// the value fails both enum and pattern; only the enum violation may
	// be reported
	report := check(t, `
type: object
properties:
  level:
    enum: [low, high]
    pattern: "^(low|high)$"
`, `
level: medium
`)

	if len(report.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(report.Violations), report.Violations)
	}
	if report.Violations[0].Rule != models.RuleEnumMismatch {
		t.Errorf("rule = %s, want %s", report.Violations[0].Rule, models.RuleEnumMismatch)
	}
}

func TestCheck_PatternMismatch(t *testing.T) {
	report := check(t, `
type: object
properties:
  hostname:
    type: string
    pattern: "^[a-z][a-z0-9-]*$"
`, `
hostname: "-bad-host"
`)

	if len(report.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(report.Violations), report.Violations)
	}
	v := report.Violations[0]
	if v.Rule != models.RulePatternMismatch {
		t.Errorf("rule = %s, want %s", v.Rule, models.RulePatternMismatch)
	}
	if v.Actual != "-bad-host" {
		t.Errorf("actual = %q, want -bad-host", v.Actual)
	}
}

func TestCheck_BothBoundsViolated(t *testing.T) {
	// minimum and maximum each report their own violation, minimum first
	report := check(t, `
type: object
properties:
  ratio:
    minimum: 10
    maximum: 5
`, `
ratio: 7
`)

	if len(report.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d: %+v", len(report.Violations), report.Violations)
	}
	if report.Violations[0].Expected != ">= 10" {
		t.Errorf("first violation expected = %q, want >= 10", report.Violations[0].Expected)
	}
	if report.Violations[1].Expected != "<= 5" {
		t.Errorf("second violation expected = %q, want <= 5", report.Violations[1].Expected)
	}
}

func TestCheck_BoundsAreInclusive(t *testing.T) {
	report := check(t, `
type: object
properties:
  port:
    type: number
    minimum: 1
    maximum: 65535
`, `
port: 1
`)

	if !report.Compliant {
		t.Errorf("boundary value should satisfy inclusive bounds: %+v", report.Violations)
	}
}

func TestCheck_ItemsRecursion(t *testing.T) {
	report := check(t, `
type: object
properties:
  ports:
    type: array
    items:
      type: number
      maximum: 1024
`, `
ports: [22, 80, 8443]
`)

	if len(report.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(report.Violations), report.Violations)
	}
	if got := report.Violations[0].Path.String(); got != "/ports/2" {
		t.Errorf("path = %q, want /ports/2", got)
	}
}

func TestCheck_NestedPropertyPath(t *testing.T) {
	report := check(t, `
type: object
properties:
  server:
    type: object
    properties:
      port:
        type: number
`, `
server:
  port: not-a-number
`)

	if len(report.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(report.Violations), report.Violations)
	}
	if got := report.Violations[0].Path.String(); got != "/server/port" {
		t.Errorf("path = %q, want /server/port", got)
	}
}

func TestCheck_OpenWorldIgnoresExtraFields(t *testing.T) {
	report := check(t, `
type: object
properties:
  x:
    type: string
`, `
x: ok
y: extra
z: [1, 2, 3]
`)

	if !report.Compliant {
		t.Errorf("extra fields must not be drift in open-world mode: %+v", report.Violations)
	}
}

func TestCheck_ClosedWorldFlagsExtraFields(t *testing.T) {
	engine := NewEngine(Options{ClosedWorld: true})
	report, err := engine.Check(mustYAML(t, `
type: object
properties:
  x:
    type: string
`), mustYAML(t, `
x: ok
y: extra
`))
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}

	if len(report.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(report.Violations), report.Violations)
	}
	v := report.Violations[0]
	if v.Rule != models.RuleUnknownField {
		t.Errorf("rule = %s, want %s", v.Rule, models.RuleUnknownField)
	}
	if v.Path.String() != "/y" {
		t.Errorf("path = %q, want /y", v.Path.String())
	}
}

func TestCheck_IntegerType(t *testing.T) {
	tests := []struct {
		name string
		data string
		ok   bool
	}{
		{"whole number", "replicas: 3", true},
		{"whole float", "replicas: 3.0", true},
		{"fractional", "replicas: 3.5", false},
		{"string", "replicas: three", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := check(t, `
type: object
properties:
  replicas:
    type: integer
`, tt.data)
			if report.Compliant != tt.ok {
				t.Errorf("compliant = %v, want %v (violations: %+v)", report.Compliant, tt.ok, report.Violations)
			}
		})
	}
}

func TestCheck_NumericEnumCrossRepresentation(t *testing.T) {
	// 1 in the policy must match 1.0 in the data: exact value semantics,
	// not representation identity
	report := check(t, `
type: object
properties:
  weight:
    enum: [1, 2]
`, `
weight: 1.0
`)

	if !report.Compliant {
		t.Errorf("1.0 should be a member of enum [1, 2]: %+v", report.Violations)
	}
}

func TestCheck_NoStringNumberCoercion(t *testing.T) {
	report := check(t, `
type: object
properties:
  port:
    enum: [443]
`, `
port: "443"
`)

	if report.Compliant {
		t.Error("string \"443\" must not match numeric enum member 443")
	}
}

func TestCheck_OpenPolicyNodeMatchesAnything(t *testing.T) {
	report := check(t, `
type: object
properties:
  anything: {}
`, `
anything:
  deeply: [nested, true, 1.5]
`)

	if !report.Compliant {
		t.Errorf("constraint-free policy node must match anything: %+v", report.Violations)
	}
}

func TestCheck_Deterministic(t *testing.T) {
	policySrc := `
type: object
required: [a, b, c]
properties:
  a:
    type: string
  b:
    type: number
    minimum: 10
  c:
    type: boolean
`
	dataSrc := `
a: 1
b: 2
c: 3
`
	first := check(t, policySrc, dataSrc)
	for i := 0; i < 10; i++ {
		next := check(t, policySrc, dataSrc)
		if !reflect.DeepEqual(first.Violations, next.Violations) {
			t.Fatalf("violation order changed between runs:\nfirst: %+v\nnext:  %+v", first.Violations, next.Violations)
		}
	}
}

func TestCheck_ViolationOrderFollowsPolicyDeclaration(t *testing.T) {
	report := check(t, `
type: object
required: [first, second]
properties:
  third:
    type: number
`, `
third: not-a-number
`)

	want := []string{"/first", "/second", "/third"}
	if len(report.Violations) != len(want) {
		t.Fatalf("expected %d violations, got %d: %+v", len(want), len(report.Violations), report.Violations)
	}
	for i, w := range want {
		if got := report.Violations[i].Path.String(); got != w {
			t.Errorf("violation %d path = %q, want %q", i, got, w)
		}
	}
}
