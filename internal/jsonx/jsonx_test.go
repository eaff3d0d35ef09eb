package jsonx

import (
	"encoding/json"
	"testing"
)

func TestExtractObject(t *testing.T) {
	t.Run("raw object", func(t *testing.T) {
		got, err := ExtractObject(`{"a": 1}`)
		if err != nil {
			t.Fatalf("ExtractObject() error = %v", err)
		}
		if string(got) != `{"a":1}` {
			t.Errorf("got %s, want {\"a\":1}", got)
		}
	})

	t.Run("fenced json block", func(t *testing.T) {
		raw := "Here is the result:\n```json\n{\"name\": \"Jane\"}\n```\nDone."
		got, err := ExtractObject(raw)
		if err != nil {
			t.Fatalf("ExtractObject() error = %v", err)
		}
		if string(got) != `{"name":"Jane"}` {
			t.Errorf("got %s", got)
		}
	})

	t.Run("fence without language tag", func(t *testing.T) {
		raw := "```\n{\"x\": true}\n```"
		got, err := ExtractObject(raw)
		if err != nil {
			t.Fatalf("ExtractObject() error = %v", err)
		}
		if string(got) != `{"x":true}` {
			t.Errorf("got %s", got)
		}
	})

	t.Run("brace scan with surrounding prose", func(t *testing.T) {
		raw := `Sure! The mapping is {"T2": "Jane", "T3": "Doe"} as requested.`
		got, err := ExtractObject(raw)
		if err != nil {
			t.Fatalf("ExtractObject() error = %v", err)
		}
		var m map[string]string
		if err := json.Unmarshal(got, &m); err != nil {
			t.Fatalf("result not valid JSON: %v", err)
		}
		if m["T2"] != "Jane" || m["T3"] != "Doe" {
			t.Errorf("unexpected map %v", m)
		}
	})

	t.Run("no object", func(t *testing.T) {
		if _, err := ExtractObject("no json here"); err == nil {
			t.Error("expected error for text without JSON")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if _, err := ExtractObject("   "); err == nil {
			t.Error("expected error for empty input")
		}
	})

	t.Run("malformed object", func(t *testing.T) {
		if _, err := ExtractObject(`{"a": }`); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})

	t.Run("array is rejected", func(t *testing.T) {
		if _, err := ExtractObject(`[1, 2, 3]`); err == nil {
			t.Error("expected error for non-object JSON")
		}
	})
}

func TestExtractStringMap(t *testing.T) {
	t.Run("coerces scalars", func(t *testing.T) {
		got, err := ExtractStringMap(`{"a": "x", "b": true, "c": 10, "d": null}`)
		if err != nil {
			t.Fatalf("ExtractStringMap() error = %v", err)
		}
		if got["a"] != "x" {
			t.Errorf("a = %q, want x", got["a"])
		}
		if got["b"] != "true" {
			t.Errorf("b = %q, want true", got["b"])
		}
		if got["c"] != "10" {
			t.Errorf("c = %q, want 10", got["c"])
		}
		if _, ok := got["d"]; ok {
			t.Error("null value should be dropped")
		}
	})

	t.Run("drops nested values", func(t *testing.T) {
		got, err := ExtractStringMap(`{"a": {"nested": 1}, "b": "keep"}`)
		if err != nil {
			t.Fatalf("ExtractStringMap() error = %v", err)
		}
		if len(got) != 1 || got["b"] != "keep" {
			t.Errorf("got %v, want only b=keep", got)
		}
	})
}

func TestValidate(t *testing.T) {
	schema := json.RawMessage(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"}
		},
		"required": ["name"]
	}`)

	t.Run("valid document", func(t *testing.T) {
		if err := Validate(schema, json.RawMessage(`{"name": "Jane"}`)); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("missing required property", func(t *testing.T) {
		if err := Validate(schema, json.RawMessage(`{}`)); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		if err := Validate(schema, json.RawMessage(`{"name": 5}`)); err == nil {
			t.Error("expected validation error for non-string name")
		}
	})

	t.Run("empty schema is a no-op", func(t *testing.T) {
		if err := Validate(nil, json.RawMessage(`{}`)); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}
