package cmd

import (
	"github.com/spf13/cobra"

	"github.com/josephgoksu/smarttask/internal/ui"
	"github.com/josephgoksu/smarttask/models"
)

var strategiesCmd = &cobra.Command{
	Use:     "strategies",
	Aliases: []string{"strategy"},
	Short:   "List the sorting strategies",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := resolveStrategy("")
		if err != nil {
			current = models.DefaultStrategy
		}
		if isJSON() {
			type item struct {
				Value       models.SortingStrategy `json:"value"`
				Label       string                 `json:"label"`
				Description string                 `json:"description"`
				Default     bool                   `json:"default"`
			}
			items := make([]item, 0, len(models.Strategies))
			for _, s := range models.Strategies {
				items = append(items, item{Value: s, Label: ui.StrategyLabel(s), Description: s.Description(), Default: s == current})
			}
			return printJSON(cmd, items)
		}
		cmd.Print(ui.RenderStrategies(current))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
