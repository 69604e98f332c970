/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/josephgoksu/smarttask/internal/config"
)

// configWriter returns the writer for the global config file. Tests replace it.
var configWriter = config.NewGlobalWriter

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	Long: `Show the effective configuration or edit ~/.smarttask/config.yaml.

Project files (.smarttask.yaml), SMARTTASK_* environment variables and
flags override the global file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if isJSON() {
			return printJSON(cmd, GetConfig())
		}
		if used := viper.ConfigFileUsed(); used != "" {
			cmd.Printf("Config file: %s\n\n", used)
		}
		for _, key := range config.KnownKeys() {
			value := viper.Get(key)
			if key == "telemetry.apiKey" && viper.GetString(key) != "" {
				value = "********"
			}
			if list, ok := value.([]string); ok {
				value = strings.Join(list, ", ")
			}
			cmd.Printf("%-24s %v\n", key, value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the global config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.ParseValue(args[0], args[1])
		if err != nil {
			return err
		}
		w, err := configWriter()
		if err != nil {
			return err
		}
		if err := w.Set(args[0], value); err != nil {
			return err
		}
		if !isQuiet() {
			cmd.Printf("✓ %s = %v (%s)\n", args[0], value, w.Path())
		}
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a value from the global config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := config.Defaults()[args[0]]; !ok {
			return fmt.Errorf("unknown config key %q", args[0])
		}
		w, err := configWriter()
		if err != nil {
			return err
		}
		if err := w.Unset(args[0]); err != nil {
			return err
		}
		if !isQuiet() {
			cmd.Printf("✓ %s unset\n", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd, configUnsetCmd)
}
