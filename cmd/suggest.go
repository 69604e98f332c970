package cmd

import (
	"github.com/spf13/cobra"

	"github.com/josephgoksu/smarttask/internal/ui"
	"github.com/josephgoksu/smarttask/models"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Show the tasks the analysis service recommends next",
	Long: `Ask the analysis service which tasks to work on next.

Suggestions come from the service's own state; the local batch is not sent.`,
	Args: cobra.NoArgs,
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	svc := newAnalyzer()

	var suggestions []models.SuggestedTask
	err := ui.RunWithSpinner(cmd.Context(), cmd.ErrOrStderr(), isInteractive() && !isJSON() && !isQuiet(), "Fetching suggestions...", func() error {
		var serr error
		suggestions, serr = svc.Suggest(cmd.Context())
		return serr
	})
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd, map[string]any{"suggestions": suggestions})
	}
	if isQuiet() {
		for _, s := range suggestions {
			cmd.Printf("%s\t%s\n", s.Title, s.SuggestionReason)
		}
		return nil
	}
	cmd.Println(ui.RenderSuggestions(suggestions))
	return nil
}
