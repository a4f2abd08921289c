package models

// DriftReport is the aggregate verdict for one check run. Immutable after
// construction; violations are listed in discovery order.
type DriftReport struct {
	Compliant  bool        `json:"compliant"`
	Violations []Violation `json:"violations"`
}

// BuildReport wraps a violation list into a report. Compliant is true iff
// the list is empty.
func BuildReport(violations []Violation) *DriftReport {
	if violations == nil {
		violations = []Violation{}
	}
	return &DriftReport{
		Compliant:  len(violations) == 0,
		Violations: violations,
	}
}
