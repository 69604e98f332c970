package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/josephgoksu/smarttask/models"
)

// Format is the textual encoding of a pasted or stored batch.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the format from a file extension. Anything that is
// not .yaml or .yml is read as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ParseJSON decodes and validates a JSON batch.
func ParseJSON(data []byte) ([]models.Task, error) {
	return defaultValidator.Parse(data, FormatJSON)
}

// ParseYAML decodes and validates a YAML batch.
func ParseYAML(data []byte) ([]models.Task, error) {
	return defaultValidator.Parse(data, FormatYAML)
}

// Parse decodes data in the given format and validates the result.
func (v *Validator) Parse(data []byte, format Format) ([]models.Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, batchError(KindEmptyInput)
	}

	var raw any
	switch format {
	case FormatYAML:
		var err error
		if raw, err = decodeYAML(data); err != nil {
			return nil, &ValidationError{Kind: KindInvalidSyntax, Index: -1, Cause: err}
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, &ValidationError{Kind: KindInvalidSyntax, Index: -1, Cause: err}
		}
	}

	return v.Validate(raw)
}

// decodeYAML decodes the first document of data into the same generic shapes
// encoding/json produces. Timestamps keep their source text so that an
// unquoted due_date reaches the validator as the string the user wrote.
func decodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return yamlValue(&doc)
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[n.Content[i].Value] = v
		}
		return out, nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!timestamp" {
			return n.Value, nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

// ParseReader reads everything from r and validates it.
func (v *Validator) ParseReader(r io.Reader, format Format) ([]models.Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	return v.Parse(data, format)
}

// ParseFile reads path from fs and validates it, choosing the format by extension.
func (v *Validator) ParseFile(fs afero.Fs, path string) ([]models.Task, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read batch file %s: %w", path, err)
	}
	return v.Parse(data, FormatForPath(path))
}

// ParseFile validates a batch file with the default id generator.
func ParseFile(fs afero.Fs, path string) ([]models.Task, error) {
	return defaultValidator.ParseFile(fs, path)
}
