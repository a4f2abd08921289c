package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/driftcheck/driftcheck/internal/alert"
	"github.com/driftcheck/driftcheck/internal/loader"
	"github.com/driftcheck/driftcheck/internal/models"
	"github.com/driftcheck/driftcheck/internal/observability"
	"github.com/driftcheck/driftcheck/internal/observability/logging"
	otelobs "github.com/driftcheck/driftcheck/internal/observability/otel"
	"github.com/driftcheck/driftcheck/internal/policy"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// checkCmd verifies a configuration snapshot against a security policy
var checkCmd = &cobra.Command{
	Use:   "check <policy-file> <config-file>",
	Short: "Check a configuration snapshot against a security policy",
	Long: `Compares a configuration snapshot against a policy and reports every
deviation as a structured violation.

Both files may be YAML or JSON; the format is detected from the extension.
Extra fields in the configuration are not drift unless --strict is set.

Examples:
  # Basic conformance check
  driftcheck check policy.yaml config.yaml

  # Get JSON output for CI
  driftcheck check policy.yaml config.json --format=json

  # Treat undeclared configuration keys as drift
  driftcheck check policy.yaml config.yaml --strict

  # Send a webhook alert when drift is found
  driftcheck check policy.yaml config.yaml --alert --alert-webhook=https://hooks.example.com/drift`,
	Args:         cobra.ExactArgs(2),
	RunE:         runCheck,
	SilenceUsage: true,
}

var (
	checkFormatFlag  string
	checkStrictFlag  bool
	checkAlertFlag   bool
	checkWebhookFlag string
)

func init() {
	checkCmd.Flags().StringVar(&checkFormatFlag, "format", "text", "Output format: text or json")
	checkCmd.Flags().BoolVar(&checkStrictFlag, "strict", false, "Closed-world mode: undeclared configuration keys are drift")
	checkCmd.Flags().BoolVar(&checkAlertFlag, "alert", false, "Dispatch an alert when drift is found")
	checkCmd.Flags().StringVar(&checkWebhookFlag, "alert-webhook", "", "Webhook URL for alerts (structured log event when empty)")
}

// GetCheckCmd export
func GetCheckCmd() *cobra.Command {
	return checkCmd
}

func runCheck(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	log := logging.From(ctx)
	start := time.Now()

	policyPath, configPath := args[0], args[1]

	// Start OTel span if enabled
	if h := otelobs.From(ctx); h != nil {
		var span trace.Span
		ctx, span = h.Tracer.Start(ctx, "driftcheck.check",
			trace.WithAttributes(
				attribute.String("driftcheck.op_id", observability.OpID(ctx)),
				attribute.String("driftcheck.command", "check"),
				attribute.String("driftcheck.policy_file", policyPath),
				attribute.String("driftcheck.config_file", configPath),
			))
		defer func() {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed")
			} else {
				span.SetStatus(codes.Ok, "success")
			}
			span.End()
		}()
	}

	log.Event(ctx, "check.start", map[string]any{
		"policy_file": policyPath,
		"config_file": configPath,
		"strict":      checkStrictFlag,
	})

	var resultStatus string
	defer func() {
		log.Event(ctx, "check.complete", map[string]any{
			"duration_ms": time.Since(start).Milliseconds(),
			"result":      resultStatus,
		})
	}()

	// Validate format
	if checkFormatFlag != "text" && checkFormatFlag != "json" {
		resultStatus = "fail"
		return fmt.Errorf("invalid format: %s (use text or json)", checkFormatFlag)
	}

	// Load both documents; parse failures abort before the engine runs
	policyDoc, loadErr := loader.LoadFile(policyPath)
	if loadErr != nil {
		resultStatus = "fail"
		return fmt.Errorf("failed to load policy: %w", loadErr)
	}

	configDoc, loadErr := loader.LoadFile(configPath)
	if loadErr != nil {
		resultStatus = "fail"
		return fmt.Errorf("failed to load configuration: %w", loadErr)
	}

	engine := policy.NewEngine(policy.Options{ClosedWorld: checkStrictFlag})
	report, checkErr := engine.Check(policyDoc, configDoc)
	if checkErr != nil {
		resultStatus = "fail"
		return checkErr
	}

	result := BuildCheckResult(policyPath, configPath, checkStrictFlag, report)

	// Output result
	if checkFormatFlag == "json" {
		jsonOutput, jsonErr := FormatJSONOutput(result)
		if jsonErr != nil {
			resultStatus = "fail"
			return fmt.Errorf("failed to format JSON output: %w", jsonErr)
		}
		fmt.Println(string(jsonOutput))
	} else {
		fmt.Print(FormatTextOutput(result))
	}

	if !report.Compliant {
		log.Warn("check", "policy drift detected", "violations", len(report.Violations))

		if checkAlertFlag {
			if alertErr := dispatchAlert(ctx, policyPath, configPath, report); alertErr != nil {
				log.Error("check", "alert dispatch failed", "error", alertErr.Error())
			} else {
				log.Event(ctx, "check.alert_sent", map[string]any{
					"violations": len(report.Violations),
				})
			}
		}

		resultStatus = "drift"
		// For JSON format, exit without returning error to keep stdout valid JSON
		if checkFormatFlag == "json" {
			os.Exit(1)
		}
		return fmt.Errorf("policy drift detected: %d violation(s) found", len(report.Violations))
	}

	resultStatus = "success"
	return nil
}

func dispatchAlert(ctx context.Context, policyPath, configPath string, report *models.DriftReport) error {
	a := alert.Alert{
		Source:     "driftcheck",
		PolicyFile: policyPath,
		ConfigFile: configPath,
		Timestamp:  time.Now().UTC(),
		Report:     report,
	}

	var notifier alert.Notifier = alert.LogNotifier{}
	if checkWebhookFlag != "" {
		notifier = alert.NewWebhook(checkWebhookFlag)
	}
	return notifier.Notify(ctx, a)
}
