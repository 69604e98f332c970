/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/josephgoksu/smarttask/internal/logger"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// version is the application version, set at build time.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "smarttask",
	Short: "smarttask - prioritize a batch of tasks with a remote analysis service",
	Long: `smarttask builds a batch of tasks, validates it, sends it to a
prioritization service and shows the ranked result.

Build a batch in the interactive shell or import one from a JSON or YAML
file, then rank it with one of four sorting strategies.

Examples:
  smarttask validate tasks.json
  smarttask analyze tasks.yaml --strategy deadline_driven
  smarttask suggest
  smarttask shell`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetCommand(cmd.CommandPath())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		PrintError("Error: "+err.Error(), err)
		os.Exit(1)
	}
}

// GetVersion returns the build version.
func GetVersion() string {
	return version
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.smarttask/.smarttask.yaml or $HOME/.smarttask.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("json", false, "print machine-readable JSON")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "print only essential output")
	rootCmd.PersistentFlags().String("api-url", "", "analysis service base URL (overrides api.url)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		if isJSON() {
			return printJSON(cmd, map[string]string{"version": GetVersion()})
		}
		cmd.Printf("smarttask %s\n", GetVersion())
		return nil
	},
}
