// Package jsonx recovers JSON objects from free-form model output.
//
// LLM completions are not guaranteed to be well-formed JSON: they often wrap
// the object in markdown code fences or surround it with commentary. This
// package is the single place that fragile contract is handled, so it can be
// tested independently of any provider.
package jsonx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var fencedObjectRE = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractObject locates and parses a JSON object inside raw model output.
//
// Recovery order: a fenced ```json block, then the span between the first
// '{' and the last '}'. The returned message is re-marshaled, so it is
// always compact valid JSON.
func ExtractObject(raw string) (json.RawMessage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty response")
	}

	var candidate string
	if m := fencedObjectRE.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	} else {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start == -1 || end <= start {
			return nil, fmt.Errorf("no JSON object found in response")
		}
		candidate = raw[start : end+1]
	}

	var parsed any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode JSON object: %w", err)
	}
	if _, ok := parsed.(map[string]any); !ok {
		return nil, fmt.Errorf("response is not a JSON object")
	}

	normalized, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize JSON object: %w", err)
	}
	return normalized, nil
}

// ExtractStringMap parses a flat identifier->value object, coercing scalar
// values to strings and dropping nulls and nested structures.
func ExtractStringMap(raw string) (map[string]string, error) {
	obj, err := ExtractObject(raw)
	if err != nil {
		return nil, err
	}

	var generic map[string]any
	if err := json.Unmarshal(obj, &generic); err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}

	out := make(map[string]string, len(generic))
	for k, v := range generic {
		switch val := v.(type) {
		case string:
			out[k] = val
		case bool:
			if val {
				out[k] = "true"
			} else {
				out[k] = "false"
			}
		case float64:
			out[k] = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", val), "0"), ".")
		default:
			// Nested objects/arrays and nulls carry no single fillable value.
			continue
		}
	}
	return out, nil
}

// Validate checks a parsed JSON document against a JSON Schema.
func Validate(schemaRaw, doc json.RawMessage) error {
	if len(schemaRaw) == 0 || len(doc) == 0 {
		return nil
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(schemaRaw)); err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(doc, &decoded); err != nil {
		return fmt.Errorf("failed to decode document for validation: %w", err)
	}

	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("document does not match schema: %w", err)
	}
	return nil
}
