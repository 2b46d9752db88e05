package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed tasks.schema.json
var schemaJSON []byte

const schemaURL = "tasklist://tasks.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Schema returns the JSON Schema of the serialized task collection.
func Schema() []byte {
	return bytes.Clone(schemaJSON)
}

// DocumentError is a problem found in a serialized task collection.
type DocumentError struct {
	Path string // dotted path to the offending value, e.g. [2].date
	Err  error
}

func (e *DocumentError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *DocumentError) Unwrap() error {
	return e.Err
}

// DocumentReport is the outcome of ValidateDocument.
type DocumentReport struct {
	Valid    bool
	Tasks    int
	Errors   []error
	Warnings []string
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// ValidateDocument checks a JSON task collection against the embedded schema
// and the collection invariants (unique ids, unique active texts).
// The returned error is non-nil only when the schema itself cannot be
// compiled.
func ValidateDocument(data []byte) (*DocumentReport, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, err
	}

	report := &DocumentReport{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	if len(bytes.TrimSpace(data)) == 0 {
		report.Warnings = append(report.Warnings, "no tasks stored")
		return report, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		report.Valid = false
		report.Errors = append(report.Errors, &DocumentError{Err: fmt.Errorf("invalid JSON: %w", err)})
		return report, nil
	}

	if err := schema.Validate(doc); err != nil {
		report.Valid = false
		appendSchemaErrors(report, err)
		return report, nil
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		report.Valid = false
		report.Errors = append(report.Errors, &DocumentError{Err: fmt.Errorf("decode tasks: %w", err)})
		return report, nil
	}
	report.Tasks = len(tasks)
	checkInvariants(report, tasks)
	return report, nil
}

// checkInvariants reports duplicate ids as errors and duplicate active texts
// as warnings. Reopening a completed task can legitimately produce the latter.
func checkInvariants(report *DocumentReport, tasks []Task) {
	seenIDs := make(map[int]int, len(tasks))
	activeTexts := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if prev, ok := seenIDs[t.ID]; ok {
			report.Valid = false
			report.Errors = append(report.Errors, &DocumentError{
				Path: fmt.Sprintf("[%d].id", i),
				Err:  fmt.Errorf("duplicate id %d (also at [%d])", t.ID, prev),
			})
		} else {
			seenIDs[t.ID] = i
		}

		if t.Completed {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(t.Text))
		if prev, ok := activeTexts[key]; ok {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("[%d].text: duplicates active task at [%d]", i, prev))
			continue
		}
		activeTexts[key] = i
	}
}

func appendSchemaErrors(report *DocumentReport, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		report.Errors = append(report.Errors, err)
		return
	}
	collectSchemaErrors(report, ve)
}

func collectSchemaErrors(report *DocumentReport, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		report.Errors = append(report.Errors, &DocumentError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(report, cause)
	}
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
