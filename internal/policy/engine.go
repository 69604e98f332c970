package policy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/spf13/afero"

	"github.com/josephgoksu/smarttask/internal/logger"
	"github.com/josephgoksu/smarttask/models"
)

// DefaultPolicyPackage is the Rego package queried for deny and warn rules.
const DefaultPolicyPackage = "smarttask.policy"

// Engine wraps OPA for policy evaluation.
// It loads policies from .rego files once and evaluates them against a batch.
// An Engine is safe for concurrent use.
type Engine struct {
	policies      []*PolicyFile
	policyPackage string
}

// EngineConfig holds configuration for creating an Engine.
type EngineConfig struct {
	// WorkDir is the project root. Used to derive PoliciesDir when unset.
	WorkDir string

	// PoliciesDir is the directory containing .rego policy files.
	// If empty, defaults to {WorkDir}/.smarttask/policies
	PoliciesDir string

	// PolicyPackage is the Rego package to query.
	// If empty, defaults to "smarttask.policy"
	PolicyPackage string

	// Fs is the filesystem to load policies from. Nil means the OS filesystem.
	Fs afero.Fs
}

// NewEngine creates a policy engine and loads policies from the configured directory.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.PoliciesDir == "" && cfg.WorkDir != "" {
		cfg.PoliciesDir = GetPoliciesPath(cfg.WorkDir)
	}
	if cfg.PolicyPackage == "" {
		cfg.PolicyPackage = DefaultPolicyPackage
	}

	RegisterBuiltins()

	loader := NewLoader(cfg.Fs, cfg.PoliciesDir)
	policies, err := loader.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load policies: %w", err)
	}

	return &Engine{
		policies:      policies,
		policyPackage: cfg.PolicyPackage,
	}, nil
}

// NewEngineWithPolicies creates an engine with explicitly provided policies.
func NewEngineWithPolicies(policies []*PolicyFile) *Engine {
	RegisterBuiltins()
	return &Engine{
		policies:      policies,
		policyPackage: DefaultPolicyPackage,
	}
}

// PolicyCount returns the number of loaded policies.
func (e *Engine) PolicyCount() int {
	return len(e.policies)
}

// PolicyNames returns the names of all loaded policies.
func (e *Engine) PolicyNames() []string {
	names := make([]string, len(e.policies))
	for i, p := range e.policies {
		names[i] = p.Name
	}
	return names
}

// Evaluate runs all loaded policies against input.
//
// Strings produced by "deny" rules become violations that block the batch.
// Strings produced by "warn" rules are reported but never block.
func (e *Engine) Evaluate(ctx context.Context, input any) (*Decision, error) {
	decision := &Decision{
		DecisionID:  uuid.New().String(),
		PolicyPath:  e.policyPackage,
		Result:      ResultAllow,
		Input:       input,
		EvaluatedAt: time.Now().UTC(),
	}
	policies := e.policies
	if len(policies) == 0 {
		return decision, nil
	}

	value, err := toRegoValue(input)
	if err != nil {
		return nil, fmt.Errorf("encode policy input: %w", err)
	}

	modules := make([]func(*rego.Rego), len(policies))
	for i, p := range policies {
		modules[i] = rego.Module(p.Path, p.Content)
	}

	violations, err := e.querySet(ctx, value, "deny", modules)
	if err != nil {
		return nil, fmt.Errorf("query deny rules: %w", err)
	}
	warnings, err := e.querySet(ctx, value, "warn", modules)
	if err != nil {
		return nil, fmt.Errorf("query warn rules: %w", err)
	}

	if len(violations) > 0 {
		decision.Result = ResultDeny
		decision.Violations = violations
	}
	decision.Warnings = warnings
	return decision, nil
}

// querySet queries a set-generating rule (deny or warn) and returns its string members.
func (e *Engine) querySet(ctx context.Context, input any, ruleName string, modules []func(*rego.Rego)) ([]string, error) {
	query := fmt.Sprintf("data.%s.%s", e.policyPackage, ruleName)

	opts := []func(*rego.Rego){
		rego.Query(query),
		rego.Input(input),
	}
	opts = append(opts, modules...)

	rs, err := rego.New(opts...).Eval(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "undefined") {
			return nil, nil
		}
		return nil, err
	}

	var results []string
	for _, result := range rs {
		for _, expr := range result.Expressions {
			if set, ok := expr.Value.([]any); ok {
				for _, item := range set {
					if s, ok := item.(string); ok {
						results = append(results, s)
					}
				}
			}
		}
	}
	return results, nil
}

// EvaluateBatch evaluates the policies against tasks submitted with strategy.
func (e *Engine) EvaluateBatch(ctx context.Context, tasks []models.Task, strategy models.SortingStrategy) (*Decision, error) {
	return e.Evaluate(ctx, BuildInput(tasks, strategy))
}

// Check evaluates a batch and returns a *ViolationError when it is denied.
// Warnings are logged. Its signature matches session.Gate.
func (e *Engine) Check(ctx context.Context, tasks []models.Task, strategy models.SortingStrategy) error {
	decision, err := e.EvaluateBatch(ctx, tasks, strategy)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	for _, w := range decision.Warnings {
		log.Warn("policy warning", "decision", decision.DecisionID, "message", w)
	}
	if decision.IsDenied() {
		log.Info("batch denied by policy", "decision", decision.DecisionID, "violations", len(decision.Violations))
		return &ViolationError{DecisionID: decision.DecisionID, Violations: decision.Violations}
	}
	return nil
}

// ValidatePolicy checks if a policy has valid Rego syntax.
func ValidatePolicy(content string) error {
	RegisterBuiltins()
	_, err := rego.New(
		rego.Query("data"),
		rego.Module("validation.rego", content),
	).PrepareForEval(context.Background())
	if err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	return nil
}
