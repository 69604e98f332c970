package policy

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// DefaultPoliciesDir is the policy directory inside .smarttask.
const DefaultPoliciesDir = "policies"

const (
	regoExt     = ".rego"
	regoTestExt = "_test.rego"
)

// PolicyFile is one Rego source file.
type PolicyFile struct {
	Path    string `json:"path"`
	Name    string `json:"name"` // base name without .rego
	Content string `json:"content"`
	// ParseError is set by Loader.Check when the file does not compile.
	ParseError string `json:"parse_error,omitempty"`
}

// Loader reads the .rego files of one policies directory.
type Loader struct {
	fs      afero.Fs
	baseDir string
}

func NewLoader(fs afero.Fs, baseDir string) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{fs: fs, baseDir: baseDir}
}

// LoadAll returns every policy under the directory, recursively and sorted
// by path. *_test.rego files are skipped; they belong to the TestRunner.
// A missing directory holds no policies.
func (l *Loader) LoadAll() ([]*PolicyFile, error) {
	paths, err := l.files(false)
	if err != nil {
		return nil, err
	}
	policies := make([]*PolicyFile, 0, len(paths))
	for _, path := range paths {
		p, err := l.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load policy %s: %w", path, err)
		}
		policies = append(policies, p)
	}
	return policies, nil
}

// Check loads every policy and records a ParseError on each file that does
// not compile on its own.
func (l *Loader) Check() ([]*PolicyFile, error) {
	policies, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	for _, p := range policies {
		if err := ValidatePolicy(p.Content); err != nil {
			p.ParseError = err.Error()
		}
	}
	return policies, nil
}

// LoadFile reads a single policy file.
func (l *Loader) LoadFile(path string) (*PolicyFile, error) {
	content, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, err
	}
	return &PolicyFile{
		Path:    path,
		Name:    strings.TrimSuffix(filepath.Base(path), regoExt),
		Content: string(content),
	}, nil
}

// files lists the .rego files under baseDir. Test files are included only
// when withTests is set.
func (l *Loader) files(withTests bool) ([]string, error) {
	exists, err := afero.DirExists(l.fs, l.baseDir)
	if err != nil {
		return nil, fmt.Errorf("check policies directory: %w", err)
	}
	if !exists {
		return nil, nil
	}

	var paths []string
	err = afero.Walk(l.fs, l.baseDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name := info.Name()
		if info.IsDir() || !strings.HasSuffix(name, regoExt) {
			return nil
		}
		if !withTests && strings.HasSuffix(name, regoTestExt) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk policies directory: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// GetPoliciesPath returns the policies directory of a project root.
func GetPoliciesPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".smarttask", DefaultPoliciesDir)
}
