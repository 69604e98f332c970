package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Writer edits a YAML config file on fs.
type Writer struct {
	fs   afero.Fs
	path string
}

// NewWriter returns a Writer for the file at path.
func NewWriter(fs afero.Fs, path string) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Writer{fs: fs, path: path}
}

// NewGlobalWriter returns a Writer for ~/.smarttask/config.yaml.
func NewGlobalWriter() (*Writer, error) {
	path, err := GetGlobalConfigPath()
	if err != nil {
		return nil, err
	}
	return NewWriter(afero.NewOsFs(), path), nil
}

// Path returns the file the writer edits.
func (w *Writer) Path() string {
	return w.path
}

// KnownKeys returns every settable key, sorted.
func KnownKeys() []string {
	keys := make([]string, 0, len(Defaults()))
	for k := range Defaults() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseValue converts raw to the type of key's default value.
// List values are comma separated.
func ParseValue(key, raw string) (any, error) {
	def, ok := Defaults()[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(KnownKeys(), ", "))
	}
	raw = strings.TrimSpace(raw)
	switch def.(type) {
	case int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer", key)
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return b, nil
	case []string:
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
	return raw, nil
}

// Load reads the file into a nested map. A missing file is empty.
func (w *Writer) Load() (map[string]any, error) {
	doc := map[string]any{}
	data, err := afero.ReadFile(w.fs, w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, fmt.Errorf("read %s: %w", w.path, err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", w.path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// Set stores value under the dotted key, creating parent mappings.
func (w *Writer) Set(key string, value any) error {
	doc, err := w.Load()
	if err != nil {
		return err
	}

	parts := strings.Split(key, ".")
	node := doc
	for _, p := range parts[:len(parts)-1] {
		child, ok := node[p].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[p] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = value

	return w.save(doc)
}

// Unset removes the dotted key. Missing keys are ignored.
func (w *Writer) Unset(key string) error {
	doc, err := w.Load()
	if err != nil {
		return err
	}
	parts := strings.Split(key, ".")
	node := doc
	for _, p := range parts[:len(parts)-1] {
		child, ok := node[p].(map[string]any)
		if !ok {
			return nil
		}
		node = child
	}
	delete(node, parts[len(parts)-1])
	return w.save(doc)
}

func (w *Writer) save(doc map[string]any) error {
	if err := w.fs.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	content := append([]byte("# smarttask configuration\n"), data...)
	if err := afero.WriteFile(w.fs, w.path, content, 0600); err != nil {
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	return nil
}
