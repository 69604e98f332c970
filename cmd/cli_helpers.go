package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/josephgoksu/smarttask/internal/analyzer"
	"github.com/josephgoksu/smarttask/internal/config"
	"github.com/josephgoksu/smarttask/internal/logger"
	"github.com/josephgoksu/smarttask/internal/policy"
	"github.com/josephgoksu/smarttask/internal/session"
	"github.com/josephgoksu/smarttask/internal/task"
	"github.com/josephgoksu/smarttask/internal/telemetry"
	"github.com/josephgoksu/smarttask/internal/ui"
	"github.com/josephgoksu/smarttask/models"
)

// appFs is the filesystem batch files and policies are read from.
var appFs afero.Fs = afero.NewOsFs()

// isInteractive reports whether forms and spinners may be shown. Tests turn it off.
var isInteractive = ui.IsInteractive

func isJSON() bool {
	return viper.GetBool("json")
}

func isQuiet() bool {
	return viper.GetBool("quiet")
}

func isVerbose() bool {
	return viper.GetBool("verbose")
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// readBatch reads a batch from the file named in args, or from stdin when
// args is empty or "-". Stdin is JSON unless format says otherwise.
func readBatch(cmd *cobra.Command, args []string, format string) ([]models.Task, string, error) {
	v := task.NewValidator(nil)
	if len(args) == 0 || args[0] == "-" {
		tasks, err := v.ParseReader(cmd.InOrStdin(), batchFormat(format))
		return tasks, "stdin", err
	}
	logger.SetLastInput(args[0])
	tasks, err := v.ParseFile(appFs, args[0])
	return tasks, "file", err
}

// resolveStrategy parses flagValue, falling back to analysis.strategy.
func resolveStrategy(flagValue string) (models.SortingStrategy, error) {
	if flagValue == "" {
		flagValue = GetConfig().Analysis.Strategy
	}
	return models.ParseStrategy(flagValue)
}

// newAnalyzer builds the analysis client from api.url and api.timeoutSeconds.
var newAnalyzer = func() analyzer.Service {
	cfg := GetConfig()
	return analyzer.NewWithOptions(analyzer.Options{
		BaseURL: cfg.API.URL,
		Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		Debug:   isVerbose() && !isJSON(),
	})
}

// newPolicyEngine loads the policies from policy.dir or ./.smarttask/policies.
func newPolicyEngine() (*policy.Engine, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return policy.NewEngine(policy.EngineConfig{
		PoliciesDir: config.GetPoliciesDir(GetConfig().Policy.Dir, wd),
		Fs:          appFs,
	})
}

// newRecorder returns a telemetry recorder. It records nothing unless the
// user opted in and an API key is configured.
func newRecorder() *telemetry.Recorder {
	cfg := GetConfig().Telemetry
	if cfg.Disabled || cfg.APIKey == "" {
		return telemetry.NewRecorder(nil)
	}
	store, err := telemetry.DefaultStore()
	if err != nil {
		LogError("telemetry store unavailable", err)
		return telemetry.NewRecorder(nil)
	}
	consent, err := store.Load()
	if err != nil {
		LogError("telemetry consent unreadable", err)
		return telemetry.NewRecorder(nil)
	}
	client, err := telemetry.New(telemetry.ClientConfig{
		APIKey:   cfg.APIKey,
		Endpoint: cfg.Endpoint,
		Version:  GetVersion(),
		Config:   consent,
	})
	if err != nil {
		LogError("telemetry client init failed", err)
		return telemetry.NewRecorder(nil)
	}
	return telemetry.NewRecorder(client)
}

// newSession builds a session gated by the loaded policies and observed by rec.
func newSession(strategy models.SortingStrategy, rec *telemetry.Recorder, extra ...session.Option) (*session.Session, error) {
	engine, err := newPolicyEngine()
	if err != nil {
		return nil, err
	}
	opts := []session.Option{session.WithStrategy(strategy)}
	if engine.PolicyCount() > 0 {
		logger.Debug("policies loaded", "count", engine.PolicyCount(), "names", engine.PolicyNames())
		opts = append(opts, session.WithGate(engine.Check))
	}
	if rec != nil {
		opts = append(opts, session.WithListener(rec.Listener()))
	}
	return session.New(append(opts, extra...)...), nil
}
