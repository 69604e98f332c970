/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/josephgoksu/smarttask/internal/telemetry"
)

// telemetryStore locates the consent file. Tests replace it.
var telemetryStore = telemetry.DefaultStore

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Manage telemetry settings",
	Long: `View and manage smarttask's anonymous telemetry settings.

Telemetry is off until you enable it. Events carry task counts, the chosen
strategy and error categories only, never task titles or dates.`,
}

var telemetryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current telemetry status",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := telemetryStore()
		if err != nil {
			return err
		}
		consent, err := store.Load()
		if err != nil {
			return fmt.Errorf("failed to read telemetry status: %w", err)
		}
		hardOff := GetConfig().Telemetry.Disabled

		if isJSON() {
			return printJSON(cmd, map[string]any{
				"enabled":      consent.Enabled && !hardOff,
				"consent":      consent.Enabled,
				"disabled":     hardOff,
				"anonymous_id": consent.AnonymousID,
			})
		}

		switch {
		case hardOff:
			cmd.Println("📊 Telemetry: disabled by config (telemetry.disabled)")
		case consent.Enabled:
			cmd.Println("📊 Telemetry: enabled")
			cmd.Printf("   Anonymous ID: %s\n", consent.AnonymousID)
			if !consent.UpdatedAt.IsZero() {
				cmd.Printf("   Enabled on: %s\n", consent.UpdatedAt.Format("2006-01-02"))
			}
			cmd.Println()
			cmd.Println("   To disable: smarttask telemetry disable")
		default:
			cmd.Println("📊 Telemetry: disabled")
			cmd.Println()
			cmd.Println("   To enable: smarttask telemetry enable")
		}
		return nil
	},
}

var telemetryEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable anonymous telemetry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTelemetry(cmd, true)
	},
}

var telemetryDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable anonymous telemetry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTelemetry(cmd, false)
	},
}

func setTelemetry(cmd *cobra.Command, enabled bool) error {
	store, err := telemetryStore()
	if err != nil {
		return err
	}
	if _, err := store.SetEnabled(enabled); err != nil {
		state := "disable"
		if enabled {
			state = "enable"
		}
		return fmt.Errorf("failed to %s telemetry: %w", state, err)
	}
	if isQuiet() {
		return nil
	}
	if enabled {
		cmd.Println("✓ Telemetry enabled. Thank you for helping improve smarttask!")
	} else {
		cmd.Println("✓ Telemetry disabled.")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(telemetryCmd)
	telemetryCmd.AddCommand(telemetryStatusCmd, telemetryEnableCmd, telemetryDisableCmd)
}
