/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/josephgoksu/smarttask/internal/config"
	"github.com/josephgoksu/smarttask/internal/policy"
	"github.com/josephgoksu/smarttask/internal/task"
)

// DefaultRegoPolicy is the default policy file content.
const DefaultRegoPolicy = `# smarttask default policy
# Evaluated against every batch right before it is sent for analysis.
# Learn more: https://www.openpolicyagent.org/docs/latest/policy-language/
#
# input.tasks         the batch, as sent to the service
# input.strategy      the chosen sorting strategy
# input.summary       {"count": n, "total_hours": h}
# input.dependencies  {"unknown": [...], "self_refs": [...], "duplicates": [...], "cycle": [...]}

package smarttask.policy

import rego.v1

# ═══════════════════════════════════════════════════════════════════════════════
# BLOCKING RULES
# ═══════════════════════════════════════════════════════════════════════════════

# Refuse batches too large to be useful in one ranking.
deny contains msg if {
    input.summary.count > 200
    msg := sprintf("BLOCKED: batch has %d tasks, the limit is 200", [input.summary.count])
}

# ═══════════════════════════════════════════════════════════════════════════════
# WARNINGS - Advisory messages that don't block the analysis
# ═══════════════════════════════════════════════════════════════════════════════

warn contains msg if {
    input.summary.total_hours > 40
    msg := sprintf("WARNING: batch needs %v hours, more than a 40 hour week", [input.summary.total_hours])
}

warn contains msg if {
    count(input.dependencies.cycle) > 0
    msg := sprintf("WARNING: dependency cycle %s", [concat(" -> ", input.dependencies.cycle)])
}

warn contains msg if {
    some t in input.tasks
    days := smarttask.days_until(t.due_date)
    days < 0
    msg := sprintf("WARNING: '%s' is %d day(s) overdue", [t.title, 0 - days])
}
`

// DefaultRegoPolicyTest exercises DefaultRegoPolicy.
const DefaultRegoPolicyTest = `package smarttask.policy

import rego.v1

test_small_batch_allowed if {
    count(deny) == 0 with input as {"tasks": [], "strategy": "smart_balance", "summary": {"count": 3, "total_hours": 6}, "dependencies": {}}
}

test_huge_batch_denied if {
    count(deny) == 1 with input as {"tasks": [], "strategy": "smart_balance", "summary": {"count": 201, "total_hours": 6}, "dependencies": {}}
}
`

// policyCmd represents the policy parent command
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage OPA policies checked before analysis",
	Long: `Manage Open Policy Agent (OPA) policies evaluated against a batch before
it is sent to the analysis service.

Policies are written in Rego and stored in .smarttask/policies/*.rego (or
policy.dir). A deny rule blocks the analysis; a warn rule is only logged.

Examples:
  smarttask policy init             # Create default policy file
  smarttask policy list             # List loaded policies
  smarttask policy check tasks.json # Check a batch against policies
  smarttask policy test             # Run policy tests`,
}

var policyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default policy file",
	Long: `Create .smarttask/policies/default.rego and default_test.rego.

The default policy:
  • Blocks batches of more than 200 tasks
  • Warns when a batch needs more than 40 hours
  • Warns on dependency cycles and overdue tasks`,
	Args: cobra.NoArgs,
	RunE: runPolicyInit,
}

var policyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded policies",
	Args:  cobra.NoArgs,
	RunE:  runPolicyList,
}

var policyCheckCmd = &cobra.Command{
	Use:   "check [file|-]",
	Short: "Check a batch against policies",
	Long: `Validate a batch and evaluate it against the loaded policies without
sending it anywhere. Exits non-zero when a deny rule fires.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPolicyCheck,
}

var policyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Run policy tests",
	Long: `Run *_test.rego unit tests in the policies directory.

Test file example (.smarttask/policies/default_test.rego):
  package smarttask.policy

  test_huge_batch_denied if {
      count(deny) == 1 with input as {"summary": {"count": 500}}
  }`,
	Args: cobra.NoArgs,
	RunE: runPolicyTest,
}

var (
	policyCheckFormat   string
	policyCheckStrategy string
	policyInitForce     bool
)

func init() {
	rootCmd.AddCommand(policyCmd)

	policyCmd.AddCommand(policyInitCmd)
	policyCmd.AddCommand(policyListCmd)
	policyCmd.AddCommand(policyCheckCmd)
	policyCmd.AddCommand(policyTestCmd)

	policyInitCmd.Flags().BoolVar(&policyInitForce, "force", false, "overwrite existing policy files")
	policyCheckCmd.Flags().StringVar(&policyCheckFormat, "format", "", "stdin format: json or yaml")
	policyCheckCmd.Flags().StringVarP(&policyCheckStrategy, "strategy", "s", "", "strategy to evaluate with")
}

func resolvePoliciesDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return config.GetPoliciesDir(GetConfig().Policy.Dir, wd), nil
}

func runPolicyInit(cmd *cobra.Command, args []string) error {
	policiesDir, err := resolvePoliciesDir()
	if err != nil {
		return err
	}
	defaultPolicyPath := filepath.Join(policiesDir, "default.rego")
	defaultTestPath := filepath.Join(policiesDir, "default_test.rego")

	if exists, _ := afero.Exists(appFs, defaultPolicyPath); exists && !policyInitForce {
		if isJSON() {
			return printJSON(cmd, map[string]any{"status": "exists", "path": defaultPolicyPath})
		}
		if !isQuiet() {
			cmd.Printf("Policy file already exists: %s\n", defaultPolicyPath)
			cmd.Println("Use --force to overwrite.")
		}
		return nil
	}

	if err := appFs.MkdirAll(policiesDir, 0755); err != nil {
		return fmt.Errorf("create policies directory: %w", err)
	}
	if err := afero.WriteFile(appFs, defaultPolicyPath, []byte(DefaultRegoPolicy), 0644); err != nil {
		return fmt.Errorf("write default policy: %w", err)
	}
	if err := afero.WriteFile(appFs, defaultTestPath, []byte(DefaultRegoPolicyTest), 0644); err != nil {
		return fmt.Errorf("write default policy test: %w", err)
	}

	if isJSON() {
		return printJSON(cmd, map[string]any{
			"created": []string{defaultPolicyPath, defaultTestPath},
			"status":  "success",
		})
	}

	cmd.Printf("✓ Created default policy: %s\n", defaultPolicyPath)
	cmd.Println("\nThe default policy:")
	cmd.Println("  • Blocks batches of more than 200 tasks")
	cmd.Println("  • Warns when a batch needs more than 40 hours")
	cmd.Println("  • Warns on dependency cycles and overdue tasks")
	cmd.Printf("\nCustomize this file or add more .rego files to %s\n", policiesDir)
	return nil
}

func runPolicyList(cmd *cobra.Command, args []string) error {
	policiesDir, err := resolvePoliciesDir()
	if err != nil {
		return err
	}
	policies, err := policy.NewLoader(appFs, policiesDir).Check()
	if err != nil {
		return fmt.Errorf("load policies: %w", err)
	}

	if isJSON() {
		return printJSON(cmd, map[string]any{
			"policies_dir": policiesDir,
			"count":        len(policies),
			"policies":     policies,
		})
	}

	if len(policies) == 0 {
		cmd.Println("No policies loaded.")
		cmd.Println("Run 'smarttask policy init' to create the default policy.")
		return nil
	}

	cmd.Printf("Policies directory: %s\n", policiesDir)
	cmd.Printf("Loaded %d policy file(s):\n\n", len(policies))
	for _, p := range policies {
		relPath, err := filepath.Rel(policiesDir, p.Path)
		if err != nil {
			relPath = p.Path
		}
		if p.ParseError != "" {
			cmd.Printf("  ✗ %s (%s): %s\n", p.Name, relPath, p.ParseError)
			continue
		}
		cmd.Printf("  • %s (%s)\n", p.Name, relPath)
	}
	return nil
}

func runPolicyCheck(cmd *cobra.Command, args []string) error {
	strategy, err := resolveStrategy(policyCheckStrategy)
	if err != nil {
		return err
	}
	tasks, _, err := readBatch(cmd, args, policyCheckFormat)
	if err != nil {
		return reportValidationError(cmd, err)
	}

	engine, err := newPolicyEngine()
	if err != nil {
		return fmt.Errorf("create policy engine: %w", err)
	}

	if engine.PolicyCount() == 0 {
		if isJSON() {
			return printJSON(cmd, map[string]any{
				"status":  "allow",
				"message": "No policies loaded - batch allowed",
				"tasks":   len(tasks),
			})
		}
		cmd.Println("No policies loaded - batch allowed by default.")
		cmd.Println("Run 'smarttask policy init' to create the default policy.")
		return nil
	}

	decision, err := engine.EvaluateBatch(cmd.Context(), tasks, strategy)
	if err != nil {
		return fmt.Errorf("evaluate policies: %w", err)
	}

	if isJSON() {
		if err := printJSON(cmd, map[string]any{
			"status":      decision.Result,
			"decision_id": decision.DecisionID,
			"tasks":       len(tasks),
			"violations":  decision.Violations,
			"warnings":    decision.Warnings,
		}); err != nil {
			return err
		}
	} else {
		cmd.Printf("Checking %d task(s) against %d policy file(s)...\n\n", len(tasks), engine.PolicyCount())
		for _, w := range decision.Warnings {
			cmd.Printf("  ⚠ %s\n", w)
		}
		if len(decision.Warnings) > 0 {
			cmd.Println()
		}
	}

	if decision.IsAllowed() {
		if !isJSON() {
			cmd.Println("✓ Batch passed policy checks")
		}
		return nil
	}

	if !isJSON() {
		cmd.Println("✗ Policy violations detected:")
		for _, v := range decision.Violations {
			cmd.Printf("  %s\n", v)
		}
	}
	// Return error to signal failure for CI/CD
	return fmt.Errorf("policy check failed with %d violation(s)", len(decision.Violations))
}

func runPolicyTest(cmd *cobra.Command, args []string) error {
	policiesDir, err := resolvePoliciesDir()
	if err != nil {
		return err
	}

	if exists, _ := afero.DirExists(appFs, policiesDir); !exists {
		if isJSON() {
			return printJSON(cmd, map[string]any{
				"status":  "error",
				"message": "No policies directory found",
			})
		}
		cmd.Println("No policies directory found.")
		cmd.Println("Run 'smarttask policy init' to create the default policy.")
		return nil
	}

	runner := policy.NewTestRunner(appFs, policiesDir)
	hasTests, err := runner.HasTests()
	if err != nil {
		return fmt.Errorf("check for test files: %w", err)
	}
	if !hasTests {
		if isJSON() {
			return printJSON(cmd, map[string]any{
				"status":  "success",
				"message": "No test files found",
				"tests":   0,
			})
		}
		cmd.Println("No test files found in", policiesDir)
		cmd.Println("\nCreate *_test.rego files to add policy tests.")
		return nil
	}

	summary, err := runner.Run(cmd.Context())
	if err != nil {
		if isJSON() {
			_ = printJSON(cmd, map[string]any{"status": "error", "message": err.Error()})
		}
		return fmt.Errorf("run tests: %w", err)
	}

	if isJSON() {
		if err := printJSON(cmd, map[string]any{
			"status":   "success",
			"passed":   summary.Passed,
			"failed":   summary.Failed,
			"errored":  summary.Errored,
			"skipped":  summary.Skipped,
			"total":    summary.Total,
			"duration": summary.Duration.String(),
			"results":  summary.Results,
		}); err != nil {
			return err
		}
	} else {
		cmd.Printf("Running OPA tests in %s...\n\n", policiesDir)
		for _, result := range summary.Results {
			name := result.ShortName()
			switch {
			case result.Passed:
				cmd.Printf("  ✓ %s (%s)\n", name, result.Duration.Round(time.Millisecond))
			case result.Failed:
				cmd.Printf("  ✗ %s: FAIL\n", name)
			case result.Error != "":
				cmd.Printf("  ✗ %s: %s\n", name, result.Error)
			case result.Skipped:
				cmd.Printf("  - %s: skipped\n", name)
			}
			for _, out := range result.Output {
				cmd.Printf("      %s\n", out)
			}
		}
		cmd.Print(summary.FormatSummary())
	}

	if !summary.AllPassed() {
		return fmt.Errorf("policy tests failed: %d failures, %d errors", summary.Failed, summary.Errored)
	}
	return nil
}

// batchFormat maps a --format flag to a task.Format; unknown values mean JSON.
func batchFormat(flag string) task.Format {
	if f := strings.ToLower(flag); f == "yaml" || f == "yml" {
		return task.FormatYAML
	}
	return task.FormatJSON
}
