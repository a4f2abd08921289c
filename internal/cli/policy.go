package cli

import (
	"fmt"

	"github.com/driftcheck/driftcheck/internal/loader"
	"github.com/driftcheck/driftcheck/internal/policy"
	"github.com/spf13/cobra"
)

// policyCmd group
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Policy management commands",
	Long:  `Validate and inspect security policy files.`,
}

// policyLintCmd compiles a policy without checking any configuration
var policyLintCmd = &cobra.Command{
	Use:   "lint <policy-file>",
	Short: "Validate a policy file",
	Long: `Lint parses and compiles a policy file, reporting structural problems
(bad type names, invalid patterns, non-numeric bounds) without needing a
configuration snapshot.

Example:
  driftcheck policy lint policy.yaml`,
	Args:         cobra.ExactArgs(1),
	RunE:         runPolicyLint,
	SilenceUsage: true,
}

func init() {
	policyCmd.AddCommand(policyLintCmd)
}

// GetPolicyCmd export
func GetPolicyCmd() *cobra.Command {
	return policyCmd
}

func runPolicyLint(cmd *cobra.Command, args []string) error {
	doc, err := loader.LoadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}

	if _, err := policy.Parse(doc); err != nil {
		return err
	}

	fmt.Printf("%s✓ policy is valid%s\n", colorGreen, colorReset)
	return nil
}
