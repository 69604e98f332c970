package policy

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/tester"
	"github.com/open-policy-agent/opa/v1/topdown"
	"github.com/spf13/afero"
)

// testTimeout bounds a whole `policy test` run.
const testTimeout = 30 * time.Second

// TestResult is the outcome of one test_ rule.
type TestResult struct {
	Name     string        `json:"name"` // e.g. data.smarttask.policy.test_huge_batch_denied
	Package  string        `json:"package"`
	Passed   bool          `json:"passed"`
	Failed   bool          `json:"failed"`
	Skipped  bool          `json:"skipped"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
	// Output holds trace notes and print() output.
	Output []string `json:"output,omitempty"`
}

// ShortName drops the package path from Name.
func (r *TestResult) ShortName() string {
	if i := strings.LastIndex(r.Name, "."); i > 0 {
		return r.Name[i+1:]
	}
	return r.Name
}

// TestSummary aggregates a test run.
type TestSummary struct {
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Errored  int           `json:"errored"`
	Total    int           `json:"total"`
	Duration time.Duration `json:"duration"`
	Results  []*TestResult `json:"results"`
}

func (s *TestSummary) add(r *TestResult) {
	s.Results = append(s.Results, r)
	s.Total++
	switch {
	case r.Passed:
		s.Passed++
	case r.Failed:
		s.Failed++
	case r.Skipped:
		s.Skipped++
	default:
		s.Errored++
	}
}

// TestRunner runs the *_test.rego files of a policies directory against the
// policies next to them.
type TestRunner struct {
	loader *Loader
}

func NewTestRunner(fs afero.Fs, policiesDir string) *TestRunner {
	return &TestRunner{loader: NewLoader(fs, policiesDir)}
}

// HasTests reports whether the directory holds any *_test.rego file.
func (r *TestRunner) HasTests() (bool, error) {
	paths, err := r.loader.files(true)
	if err != nil {
		return false, err
	}
	for _, p := range paths {
		if strings.HasSuffix(p, regoTestExt) {
			return true, nil
		}
	}
	return false, nil
}

// Run compiles every .rego file in the directory and runs the test_ rules.
func (r *TestRunner) Run(ctx context.Context) (*TestSummary, error) {
	start := time.Now()
	RegisterBuiltins()

	modules, err := r.parseModules()
	if err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	summary := &TestSummary{Results: []*TestResult{}}
	if len(modules) == 0 {
		summary.Duration = time.Since(start)
		return summary, nil
	}

	compiler := ast.NewCompiler()
	compiler.Compile(modules)
	if compiler.Failed() {
		msgs := make([]string, 0, len(compiler.Errors))
		for _, e := range compiler.Errors {
			msgs = append(msgs, e.Error())
		}
		return nil, fmt.Errorf("compile policies: %s", strings.Join(msgs, "; "))
	}

	ch, err := tester.NewRunner().
		SetCompiler(compiler).
		SetModules(modules).
		EnableTracing(true).
		SetTimeout(testTimeout).
		RunTests(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("run tests: %w", err)
	}
	for tr := range ch {
		summary.add(toTestResult(tr))
	}
	summary.Duration = time.Since(start)
	return summary, nil
}

func toTestResult(tr *tester.Result) *TestResult {
	res := &TestResult{Name: tr.Name, Package: tr.Package, Duration: tr.Duration}
	switch {
	case tr.Skip:
		res.Skipped = true
	case tr.Error != nil:
		res.Error = tr.Error.Error()
	case tr.Fail:
		res.Failed = true
	default:
		res.Passed = true
	}
	for _, evt := range tr.Trace {
		if evt.Op == topdown.NoteOp && evt.Message != "" {
			res.Output = append(res.Output, evt.Message)
		}
	}
	return res
}

// parseModules parses policies and tests, keyed by path relative to the
// policies directory.
func (r *TestRunner) parseModules() (map[string]*ast.Module, error) {
	paths, err := r.loader.files(true)
	if err != nil {
		return nil, err
	}
	modules := make(map[string]*ast.Module, len(paths))
	for _, path := range paths {
		f, err := r.loader.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		mod, err := ast.ParseModule(path, f.Content)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		key, err := filepath.Rel(r.loader.baseDir, path)
		if err != nil || key == "" {
			key = path
		}
		modules[key] = mod
	}
	return modules, nil
}

// FormatSummary renders "N tests, P passed, F failed in 12ms".
func (s *TestSummary) FormatSummary() string {
	if s.Total == 0 {
		return "No tests found.\n"
	}
	parts := []string{fmt.Sprintf("%d tests", s.Total), fmt.Sprintf("%d passed", s.Passed)}
	for _, c := range []struct {
		n     int
		label string
	}{{s.Failed, "failed"}, {s.Errored, "errored"}, {s.Skipped, "skipped"}} {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, c.label))
		}
	}
	return fmt.Sprintf("\n%s in %s\n", strings.Join(parts, ", "), s.Duration.Round(time.Millisecond))
}

// AllPassed reports whether nothing failed or errored.
func (s *TestSummary) AllPassed() bool {
	return s.Failed == 0 && s.Errored == 0
}
