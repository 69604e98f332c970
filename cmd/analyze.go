/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/josephgoksu/smarttask/internal/task"
	"github.com/josephgoksu/smarttask/internal/ui"
	"github.com/josephgoksu/smarttask/models"
)

var (
	analyzeFormat   string
	analyzeStrategy string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Validate a batch and rank it with the analysis service",
	Long: `Validate a JSON or YAML batch, check it against the local policies and
send it to the analysis service. The ranked tasks are shown in the order
the service returned them.

Strategies:
  smart_balance    Balanced approach considering all factors (default)
  fastest_wins     Prioritize quick, low-effort tasks
  high_impact      Focus on most important tasks first
  deadline_driven  Sort by urgency and due dates

Examples:
  smarttask analyze tasks.json
  smarttask analyze tasks.yaml --strategy deadline-driven
  smarttask analyze - --json < tasks.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "", "stdin format: json or yaml (files use their extension)")
	analyzeCmd.Flags().StringVarP(&analyzeStrategy, "strategy", "s", "", "sorting strategy (default from analysis.strategy)")
}

// analyzeOutput is the --json shape of an analysis.
type analyzeOutput struct {
	Strategy    models.SortingStrategy `json:"strategy"`
	SortedTasks []models.AnalyzedTask  `json:"sorted_tasks"`
	Summary     models.PriorityCounts  `json:"summary"`
	Warnings    []string               `json:"warnings,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	strategy, err := resolveStrategy(analyzeStrategy)
	if err != nil {
		return err
	}

	tasks, source, err := readBatch(cmd, args, analyzeFormat)
	rec := newRecorder()
	defer func() { _ = rec.Close() }()
	rec.BatchValidated(source, len(tasks), err)
	if err != nil {
		return reportValidationError(cmd, err)
	}

	sess, err := newSession(strategy, rec)
	if err != nil {
		return err
	}
	if err := sess.Import(tasks); err != nil {
		return err
	}

	svc := newAnalyzer()
	var ranked []models.AnalyzedTask
	title := fmt.Sprintf("Analyzing %d tasks...", len(tasks))
	err = ui.RunWithSpinner(cmd.Context(), cmd.ErrOrStderr(), isInteractive() && !isJSON() && !isQuiet(), title, func() error {
		var aerr error
		ranked, aerr = sess.Analyze(cmd.Context(), svc)
		return aerr
	})
	if err != nil {
		return err
	}

	warnings := task.InspectDependencies(tasks).Warnings()
	if isJSON() {
		return printJSON(cmd, analyzeOutput{
			Strategy:    strategy,
			SortedTasks: ranked,
			Summary:     models.CountPriorities(ranked),
			Warnings:    warnings,
		})
	}
	if isQuiet() {
		for i, t := range ranked {
			cmd.Printf("%d. %s [%s]\n", i+1, t.Title, t.PriorityLevel)
		}
		return nil
	}
	if len(warnings) > 0 {
		cmd.Println(ui.RenderWarnings(warnings))
		cmd.Println()
	}
	cmd.Println(ui.RenderResults(ranked, strategy, false))
	return nil
}
