package policy

import (
	"errors"
	"testing"

	"github.com/driftcheck/driftcheck/internal/document"
)

func TestEngine_InvalidPolicyRoot(t *testing.T) {
	engine := NewEngine(Options{})
	data := mustYAML(t, `{x: 1}`)

	policyDoc := mustYAML(t, `just-a-scalar`)
	report, err := engine.Check(policyDoc, data)
	if !errors.Is(err, ErrInvalidPolicy) {
		t.Errorf("Check error = %v, want ErrInvalidPolicy", err)
	}
	if report != nil {
		t.Error("no partial report may be produced for an invalid policy")
	}
}

func TestEngine_TotalOverShapeMismatches(t *testing.T) {
	// whatever shape the data takes, Check must return a report, never an
	// error, once the policy itself is valid
	policySrc := `
type: object
required: [a]
properties:
  a:
    type: number
    minimum: 0
    enum: [1, 2]
    pattern: x
  b:
    type: array
    items:
      type: string
`
	dataSrcs := []string{
		`{}`,
		`[]`,
		`a string`,
		`123`,
		`true`,
		`null`,
		`{a: {nested: map}, b: "not an array"}`,
		`{a: [1, 2], b: [1, {x: y}, null]}`,
	}

	engine := NewEngine(Options{})
	policyDoc := mustYAML(t, policySrc)

	for _, src := range dataSrcs {
		report, err := engine.Check(policyDoc, mustYAML(t, src))
		if err != nil {
			t.Errorf("Check(%q) returned error %v, want report", src, err)
			continue
		}
		if report == nil {
			t.Errorf("Check(%q) returned nil report", src)
		}
	}
}

func TestEngine_CompliantIffNoViolations(t *testing.T) {
	engine := NewEngine(Options{})
	policyDoc := mustYAML(t, `{type: object, required: [k]}`)

	drifted, err := engine.Check(policyDoc, mustYAML(t, `{}`))
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if drifted.Compliant || len(drifted.Violations) == 0 {
		t.Errorf("compliant = %v with %d violations; want false with findings", drifted.Compliant, len(drifted.Violations))
	}

	clean, err := engine.Check(policyDoc, mustYAML(t, `{k: present}`))
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !clean.Compliant || len(clean.Violations) != 0 {
		t.Errorf("compliant = %v with %d violations; want true with none", clean.Compliant, len(clean.Violations))
	}
}

func TestEngine_StatelessAcrossCalls(t *testing.T) {
	engine := NewEngine(Options{})
	policyDoc := mustYAML(t, `{type: object, required: [k]}`)

	// a drifted run must not leak findings into the next run
	if _, err := engine.Check(policyDoc, mustYAML(t, `{}`)); err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	report, err := engine.Check(policyDoc, mustYAML(t, `{k: 1}`))
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !report.Compliant {
		t.Errorf("second run inherited violations: %+v", report.Violations)
	}
}

func TestEngine_JSONAndYAMLAgree(t *testing.T) {
	engine := NewEngine(Options{})

	policyYAML := mustYAML(t, `
type: object
required: [port]
properties:
  port:
    type: number
    maximum: 1024
`)
	dataJSON, err := document.FromJSON([]byte(`{"port": 8080}`))
	if err != nil {
		t.Fatalf("failed to parse JSON fixture: %v", err)
	}

	report, err := engine.Check(policyYAML, dataJSON)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if len(report.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d: %+v", len(report.Violations), report.Violations)
	}
	if got := report.Violations[0].Path.String(); got != "/port" {
		t.Errorf("path = %q, want /port", got)
	}
}
