// Package differ compares two configuration snapshots structurally and
// classifies what changed between them. Unlike a policy check, a diff needs
// no policy: it answers "what moved", not "what is wrong".
package differ

import (
	"encoding/json"
	"fmt"

	"github.com/driftcheck/driftcheck/internal/document"
	"github.com/wI2L/jsondiff"
)

// ChangeType indicates what kind of difference was detected
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeUpdated ChangeType = "changed"
)

// Change is one classified difference between snapshots
type Change struct {
	Type     ChangeType
	Path     string // JSON Pointer into the snapshot
	Severity SeverityLevel
	Message  string
}

// Result contains the complete diff result
type Result struct {
	HasChanges bool
	Changes    []Change
}

// Compare renders both snapshots to canonical JSON, computes a JSON Patch
// between them, and classifies every operation.
func Compare(baseline, current *document.Node) (*Result, error) {
	baselineJSON, err := json.Marshal(baseline)
	if err != nil {
		return nil, fmt.Errorf("failed to encode baseline snapshot: %w", err)
	}
	currentJSON, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("failed to encode current snapshot: %w", err)
	}

	patch, err := jsondiff.CompareJSON(baselineJSON, currentJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to compute diff: %w", err)
	}

	result := &Result{Changes: []Change{}}
	for _, op := range patch {
		change, ok := classify(op)
		if !ok {
			continue
		}
		result.Changes = append(result.Changes, change)
	}
	result.HasChanges = len(result.Changes) > 0

	return result, nil
}

// classify one patch operation
func classify(op jsondiff.Operation) (Change, bool) {
	switch op.Type {
	case jsondiff.OperationAdd:
		return Change{
			Type:     ChangeAdded,
			Path:     op.Path,
			Severity: GetSeverity(op.Path, ChangeAdded),
			Message:  fmt.Sprintf("setting added: %s", renderValue(op.Value)),
		}, true
	case jsondiff.OperationRemove:
		return Change{
			Type:     ChangeRemoved,
			Path:     op.Path,
			Severity: GetSeverity(op.Path, ChangeRemoved),
			Message:  "setting removed",
		}, true
	case jsondiff.OperationReplace:
		return Change{
			Type:     ChangeUpdated,
			Path:     op.Path,
			Severity: GetSeverity(op.Path, ChangeUpdated),
			Message:  fmt.Sprintf("value changed to %s", renderValue(op.Value)),
		}, true
	default:
		return Change{}, false
	}
}

// renderValue for human-readable messages, truncated so one huge blob does
// not swallow the report
func renderValue(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "?"
	}
	s := string(data)
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
