/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/josephgoksu/smarttask/internal/logger"
	"github.com/josephgoksu/smarttask/internal/task"
	"github.com/josephgoksu/smarttask/internal/telemetry"
	"github.com/josephgoksu/smarttask/internal/ui"
	"github.com/josephgoksu/smarttask/internal/watch"
	"github.com/josephgoksu/smarttask/models"
)

var (
	validateFormat string
	validateWatch  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [file|-]",
	Short: "Validate a task batch without sending it",
	Long: `Parse and validate a JSON or YAML batch of tasks.

The batch must be an array of objects with a non-empty title, due_date in
YYYY-MM-DD form, a positive estimated_hours and an importance from 1 to 10.
Dependency problems (unknown ids, self references, cycles) are reported as
warnings only.

With --watch the file is re-validated every time it is saved.

Examples:
  smarttask validate tasks.json
  cat tasks.yaml | smarttask validate - --format yaml
  smarttask validate tasks.json --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateFormat, "format", "", "stdin format: json or yaml (files use their extension)")
	validateCmd.Flags().BoolVarP(&validateWatch, "watch", "w", false, "re-validate the file whenever it changes")
}

// validateOutput is the --json shape of a validation.
type validateOutput struct {
	Valid        bool                  `json:"valid"`
	Tasks        []models.Task         `json:"tasks,omitempty"`
	Dependencies *task.DependencyReport `json:"dependencies,omitempty"`
	Error        string                `json:"error,omitempty"`
	Kind         string                `json:"kind,omitempty"`
	Index        *int                  `json:"index,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	rec := newRecorder()
	defer func() { _ = rec.Close() }()

	if !validateWatch {
		return validateOnce(cmd, args, rec)
	}
	if len(args) == 0 || args[0] == "-" {
		return errors.New("--watch needs a file argument")
	}

	w, err := watch.New(args[0], watch.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("watch %s: %w", args[0], err)
	}
	defer func() { _ = w.Close() }()

	_ = validateOnce(cmd, args, rec)
	if !isQuiet() && !isJSON() {
		cmd.Printf("\nWatching %s for changes. Press Ctrl+C to stop.\n", args[0])
	}
	return w.Run(cmd.Context(), func() {
		if !isJSON() {
			cmd.Println()
		}
		if err := validateOnce(cmd, args, rec); err != nil {
			logger.Debug("batch still invalid", "file", args[0], "error", err)
		}
	})
}

func validateOnce(cmd *cobra.Command, args []string, rec *telemetry.Recorder) error {
	tasks, source, err := readBatch(cmd, args, validateFormat)
	rec.BatchValidated(source, len(tasks), err)
	if err != nil {
		return reportValidationError(cmd, err)
	}

	report := task.InspectDependencies(tasks)
	if isJSON() {
		out := validateOutput{Valid: true, Tasks: tasks}
		if !report.Empty() {
			out.Dependencies = &report
		}
		return printJSON(cmd, out)
	}

	if isQuiet() {
		cmd.Printf("%d valid task(s)\n", len(tasks))
		return nil
	}
	cmd.Println(ui.RenderPageHeader("Task Batch", fmt.Sprintf("%d valid task(s)", len(tasks))))
	cmd.Println(ui.RenderTasks(tasks))
	if w := report.Warnings(); len(w) > 0 {
		cmd.Println()
		cmd.Println(ui.RenderWarnings(w))
	}
	return nil
}

// reportValidationError prints err in JSON mode and returns it so the exit
// code is non-zero.
func reportValidationError(cmd *cobra.Command, err error) error {
	if !isJSON() {
		return err
	}
	out := validateOutput{Valid: false, Error: err.Error(), Kind: task.KindOf(err).String()}
	var verr *task.ValidationError
	if errors.As(err, &verr) && verr.Index >= 0 {
		idx := verr.Index
		out.Index = &idx
	}
	if perr := printJSON(cmd, out); perr != nil {
		return perr
	}
	return err
}
