package policy

import (
	"github.com/driftcheck/driftcheck/internal/document"
	"github.com/driftcheck/driftcheck/internal/models"
)

// Options control evaluation behavior.
type Options struct {
	// ClosedWorld reports data keys not declared under "properties" as
	// UNKNOWN_FIELD violations. The default is open-world: extra keys in
	// the configuration are never drift.
	ClosedWorld bool
}

// Engine checks configuration documents against a policy document. It holds
// no state between calls; every Check is an independent evaluation, so one
// Engine may be shared across goroutines for separate document pairs.
type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Check evaluates dataDoc against policyDoc and returns the drift report.
// The only error it can return is ErrInvalidPolicy; any shape mismatch in
// the data surfaces as a violation inside a normal report.
func (e *Engine) Check(policyDoc, dataDoc *document.Node) (*models.DriftReport, error) {
	c, err := Parse(policyDoc)
	if err != nil {
		return nil, err
	}
	ev := &evaluator{closedWorld: e.opts.ClosedWorld}
	return models.BuildReport(ev.evaluate(c, dataDoc, nil)), nil
}
