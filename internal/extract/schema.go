// Package extract turns free text into typed records by prompting a hosted
// model with schema-derived formatting instructions and parsing its answer.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"go-jobscraper/internal/ai"
)

// ParseError means the model answered but the answer does not fit the schema.
// It is the only error the extractor retries.
type ParseError struct {
	Schema string
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s output: %s: %v", e.Schema, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s output: %s", e.Schema, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is or wraps a *ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Schema is the target shape of one extraction, derived from the Go type T
type Schema[T any] struct {
	name         string
	required     []string
	instructions string
}

// NewSchema derives the JSON schema of T. Fields without omitempty are required;
// pointer and slice fields accept null.
func NewSchema[T any](name string) (*Schema[T], error) {
	js, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, fmt.Errorf("infer schema for %s: %w", name, err)
	}
	raw, err := json.Marshal(js)
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %s: %w", name, err)
	}
	return &Schema[T]{
		name:         name,
		required:     append([]string(nil), js.Required...),
		instructions: buildFormatInstructions(string(raw)),
	}, nil
}

// Name is the schema name used in errors and logs
func (s *Schema[T]) Name() string { return s.name }

// FormatInstructions is the machine-readable shape description embedded in prompts
func (s *Schema[T]) FormatInstructions() string { return s.instructions }

// Parse decodes a raw model answer into T
func (s *Schema[T]) Parse(raw string) (T, error) {
	var out T

	body, ok := jsonObject(raw)
	if !ok {
		return out, &ParseError{Schema: s.name, Reason: "no JSON object in response", Raw: raw}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return out, &ParseError{Schema: s.name, Reason: "invalid JSON", Raw: raw, Err: err}
	}
	for _, key := range s.required {
		if _, present := fields[key]; !present {
			return out, &ParseError{Schema: s.name, Reason: fmt.Sprintf("missing field %q", key), Raw: raw}
		}
	}

	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return out, &ParseError{Schema: s.name, Reason: "field type mismatch", Raw: raw, Err: err}
	}
	return out, nil
}

// jsonObject finds the JSON object in a response that may be fenced or
// surrounded by prose
func jsonObject(raw string) (string, bool) {
	text := ai.CleanMarkdownJSON(raw)
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return text, true
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func buildFormatInstructions(schema string) string {
	return `The output should be formatted as a JSON instance that conforms to the JSON schema below.

As an example, for the schema {"properties": {"foo": {"description": "a list of strings", "type": "array", "items": {"type": "string"}}}, "required": ["foo"]}
the object {"foo": ["bar", "baz"]} is a well-formatted instance of the schema. The object {"properties": {"foo": ["bar", "baz"]}} is not well-formatted.

Here is the output schema:
` + "```\n" + schema + "\n```"
}
