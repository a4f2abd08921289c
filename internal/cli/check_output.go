package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/driftcheck/driftcheck/internal/models"
)

// ANSI color codes
const (
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// CheckResult output structure
type CheckResult struct {
	PolicyFile string            `json:"policyFile"`
	ConfigFile string            `json:"configFile"`
	Mode       string            `json:"mode"` // "open" or "strict"
	Summary    CheckSummary      `json:"summary"`
	Violations []ViolationOutput `json:"violations"`
	Outcome    string            `json:"outcome"` // "COMPLIANT" or "DRIFT"
}

// CheckSummary counts by rule
type CheckSummary struct {
	Total  int            `json:"total"`
	ByRule map[string]int `json:"byRule,omitempty"`
}

// ViolationOutput one finding, path rendered as a JSON Pointer
type ViolationOutput struct {
	Path     string `json:"path"`
	Rule     string `json:"rule"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// BuildCheckResult from the drift report
func BuildCheckResult(policyFile, configFile string, strict bool, report *models.DriftReport) *CheckResult {
	mode := "open"
	if strict {
		mode = "strict"
	}

	result := &CheckResult{
		PolicyFile: policyFile,
		ConfigFile: configFile,
		Mode:       mode,
		Violations: []ViolationOutput{},
		Outcome:    "COMPLIANT",
	}

	for _, v := range report.Violations {
		result.Violations = append(result.Violations, ViolationOutput{
			Path:     v.Path.String(),
			Rule:     string(v.Rule),
			Expected: v.Expected,
			Actual:   v.Actual,
		})
	}

	result.Summary = summarize(report)

	if !report.Compliant {
		result.Outcome = "DRIFT"
	}

	return result
}

// summarize counts
func summarize(report *models.DriftReport) CheckSummary {
	summary := CheckSummary{Total: len(report.Violations)}
	if summary.Total > 0 {
		summary.ByRule = make(map[string]int)
		for _, v := range report.Violations {
			summary.ByRule[string(v.Rule)]++
		}
	}
	return summary
}

// FormatTextOutput human readable
func FormatTextOutput(result *CheckResult) string {
	var sb strings.Builder

	if result.Outcome == "COMPLIANT" {
		sb.WriteString(fmt.Sprintf("%sdriftcheck: COMPLIANT%s (policy=%s, mode=%s)\n",
			colorGreen, colorReset, result.PolicyFile, result.Mode))
		sb.WriteString(fmt.Sprintf("%s✓ configuration matches policy%s\n", colorGreen, colorReset))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("%sdriftcheck: DRIFT%s (policy=%s, mode=%s)\n",
		colorRed, colorReset, result.PolicyFile, result.Mode))
	sb.WriteString(fmt.Sprintf("Config: %s\n", result.ConfigFile))
	sb.WriteString(fmt.Sprintf("Violations: %d\n\n", result.Summary.Total))

	// one line per violation, in discovery order
	for _, v := range result.Violations {
		sb.WriteString(fmt.Sprintf("%s- %s%s %s: expected %s, got %s\n",
			colorYellow, pointerLabel(v.Path), colorReset, v.Rule, v.Expected, v.Actual))
	}

	return sb.String()
}

func pointerLabel(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}

// FormatJSONOutput raw json
func FormatJSONOutput(result *CheckResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
