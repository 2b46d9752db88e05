package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/tasklist-go/internal/todo"
)

// Format is a serialization format for the task collection.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat normalizes s into a known format. Empty input means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected json, yaml, or toml)", s)
	}
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatJSON
	}
	return f
}

// tomlDocument wraps the list because TOML has no top-level arrays.
type tomlDocument struct {
	Tasks []todo.Task `toml:"tasks"`
}

// Encode serializes tasks. JSON output is a bare array with 2-space
// indentation and a trailing newline.
func Encode(format Format, tasks []todo.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []todo.Task{}
	}
	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(tasks)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return data, nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(tomlDocument{Tasks: tasks}); err != nil {
			return nil, fmt.Errorf("marshal toml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// Decode parses tasks. Blank input decodes to nil.
func Decode(format Format, data []byte) ([]todo.Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	switch format {
	case FormatJSON, "":
		var tasks []todo.Task
		if err := json.Unmarshal(data, &tasks); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return tasks, nil
	case FormatYAML:
		var tasks []todo.Task
		if err := yaml.Unmarshal(data, &tasks); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		return tasks, nil
	case FormatTOML:
		var doc tomlDocument
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
		return doc.Tasks, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// ToJSON converts a stored document of any format into the JSON layout
// without going through todo.Task, so structural problems survive for
// schema validation.
func ToJSON(format Format, data []byte) ([]byte, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var generic any
	switch format {
	case FormatJSON, "":
		if !json.Valid(data) {
			return nil, fmt.Errorf("stored document is not valid JSON")
		}
		return data, nil
	case FormatYAML:
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatTOML:
		var doc map[string]any
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
		generic = doc["tasks"]
		if generic == nil {
			generic = []any{}
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	out, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("convert %s to json: %w", format, err)
	}
	return out, nil
}
