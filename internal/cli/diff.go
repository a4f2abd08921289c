package cli

import (
	"fmt"
	"os"

	"github.com/driftcheck/driftcheck/internal/differ"
	"github.com/driftcheck/driftcheck/internal/loader"
	"github.com/driftcheck/driftcheck/internal/observability/logging"
	"github.com/spf13/cobra"
)

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff <baseline-file> <current-file>",
	Short: "Compare two configuration snapshots",
	Long: `Diff compares a current configuration snapshot against a baseline and
reports what has changed, without applying any policy.

Changes are classified by direction (added, removed, changed) and severity;
paths touching security-sensitive keys are flagged critical.

Example:
  driftcheck diff baseline.yaml current.yaml
  driftcheck diff snapshot-monday.json snapshot-friday.json`,
	Args:         cobra.ExactArgs(2),
	RunE:         runDiff,
	SilenceUsage: true,
}

// GetDiffCmd returns the diff command
func GetDiffCmd() *cobra.Command {
	return diffCmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logging.From(ctx)

	baseline, err := loader.LoadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load baseline snapshot: %w", err)
	}

	current, err := loader.LoadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to load current snapshot: %w", err)
	}

	result, err := differ.Compare(baseline, current)
	if err != nil {
		return fmt.Errorf("diff failed: %w", err)
	}

	log.Event(ctx, "diff.complete", map[string]any{
		"baseline": args[0],
		"current":  args[1],
		"changes":  len(result.Changes),
	})

	// Exit 0 = snapshots match
	if !result.HasChanges {
		fmt.Printf("%s✓ No changes detected - snapshots match%s\n", colorGreen, colorReset)
		return nil
	}

	fmt.Printf("%sCHANGES DETECTED (%d)%s\n\n", colorYellow, len(result.Changes), colorReset)
	for _, change := range result.Changes {
		printChange(change)
	}

	// Exit 1 = drift between snapshots
	os.Exit(1)
	return nil
}

func printChange(c differ.Change) {
	var icon string
	switch c.Type {
	case differ.ChangeAdded:
		icon = "+"
	case differ.ChangeRemoved:
		icon = "-"
	case differ.ChangeUpdated:
		icon = "~"
	default:
		icon = " "
	}

	color := getColorForSeverity(c.Severity)
	fmt.Printf("%s[%s] %s%s (%s)\n", color, icon, c.Path, colorReset, differ.SeverityString(c.Severity))
	fmt.Printf("    %s\n", c.Message)
}

func getColorForSeverity(severity differ.SeverityLevel) string {
	switch severity {
	case differ.SeverityCritical:
		return colorRed
	case differ.SeverityModerate:
		return colorYellow
	case differ.SeverityInfo:
		return colorGreen
	default:
		return colorReset
	}
}
