package formschema

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseEmptySchema(t *testing.T) {
	for _, raw := range []json.RawMessage{nil, json.RawMessage(``)} {
		schema, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", raw, err)
		}
		if schema != nil {
			t.Fatalf("Parse(%q) = %v, want nil", raw, schema)
		}
	}
}

func TestParseValidSchema(t *testing.T) {
	raw := json.RawMessage(`[
		{"name":"company","label":"Company","type":"text","required":true,"validation":{"minLength":2,"maxLength":80}},
		{"name":"tickets","label":"Tickets","type":"number","validation":{"min":1,"max":10}},
		{"name":"meal","label":"Meal","type":"select","options":[{"value":"veg","label":"Vegetarian"},{"value":"nonveg","label":"Non-vegetarian"}]}
	]`)
	schema, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(schema) != 3 {
		t.Fatalf("len = %d, want 3", len(schema))
	}
	if schema[0].Name != "company" || !schema[0].Required {
		t.Errorf("unexpected first field: %+v", schema[0])
	}
	if schema[1].Validation == nil || schema[1].Validation.Min == nil || *schema[1].Validation.Min != 1 {
		t.Errorf("number bounds not decoded: %+v", schema[1].Validation)
	}
	if len(schema[2].Options) != 2 {
		t.Errorf("select options not decoded: %+v", schema[2])
	}
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{"not json", `{`, "decode form schema"},
		{"missing name", `[{"label":"X","type":"text"}]`, "name is required"},
		{"reserved name", `[{"name":"email","type":"text"}]`, "reserved"},
		{"duplicate name", `[{"name":"a","type":"text"},{"name":"a","type":"text"}]`, "duplicate"},
		{"unknown type", `[{"name":"a","type":"checkbox"}]`, "unknown type"},
		{"select without options", `[{"name":"a","type":"select"}]`, "requires options"},
		{"bad pattern", `[{"name":"a","type":"text","validation":{"pattern":"["}}]`, "invalid pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(json.RawMessage(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestDisplayLabel(t *testing.T) {
	if got := (Field{Name: "company", Label: "Company"}).DisplayLabel(); got != "Company" {
		t.Errorf("DisplayLabel = %q, want Company", got)
	}
	if got := (Field{Name: "company"}).DisplayLabel(); got != "company" {
		t.Errorf("DisplayLabel fallback = %q, want company", got)
	}
}
