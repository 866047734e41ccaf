// Package formschema defines per-event custom registration forms and
// validates submissions against them. Validation is synchronous and pure.
package formschema

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// FieldType identifies how a field is rendered and validated.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeTextarea FieldType = "textarea"
	TypeEmail    FieldType = "email"
	TypeNumber   FieldType = "number"
	TypeDate     FieldType = "date"
	TypeSelect   FieldType = "select"
)

// knownTypes is the set of field types validation is exhaustive over.
// Fields with other types in a stored schema are ignored at submission time
// so an old form render can still be accepted after a schema edit.
var knownTypes = map[FieldType]bool{
	TypeText:     true,
	TypeTextarea: true,
	TypeEmail:    true,
	TypeNumber:   true,
	TypeDate:     true,
	TypeSelect:   true,
}

// Rules holds optional per-field validation constraints.
type Rules struct {
	MinLength int      `json:"minLength,omitempty"`
	MaxLength int      `json:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
}

// Option is one choice of a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is one organizer-defined registration form field. Name is the storage
// key for the submitted value and must be unique within a schema.
type Field struct {
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	Type       FieldType `json:"type"`
	Required   bool      `json:"required,omitempty"`
	Options    []Option  `json:"options,omitempty"`
	Validation *Rules    `json:"validation,omitempty"`
}

// Schema is the ordered list of custom fields for one event.
type Schema []Field

// Reserved field names: the built-in contact fields are always collected and
// may not be shadowed by custom fields.
var reservedNames = map[string]bool{"name": true, "email": true, "phone": true}

// Parse decodes and checks a stored form schema. A nil or empty raw value is a
// valid empty schema. Parse is strict (used when an organizer saves a schema);
// Validate is lenient about unknown types (used at submission time).
func Parse(raw json.RawMessage) (Schema, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var schema Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("decode form schema: %w", err)
	}
	seen := make(map[string]bool, len(schema))
	for i, f := range schema {
		if f.Name == "" {
			return nil, fmt.Errorf("field %d: name is required", i)
		}
		if reservedNames[f.Name] {
			return nil, fmt.Errorf("field %q: name is reserved", f.Name)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("field %q: duplicate name", f.Name)
		}
		seen[f.Name] = true
		if !knownTypes[f.Type] {
			return nil, fmt.Errorf("field %q: unknown type %q", f.Name, f.Type)
		}
		if f.Type == TypeSelect && len(f.Options) == 0 {
			return nil, fmt.Errorf("field %q: select requires options", f.Name)
		}
		if f.Validation != nil && f.Validation.Pattern != "" {
			if _, err := regexp.Compile(f.Validation.Pattern); err != nil {
				return nil, fmt.Errorf("field %q: invalid pattern: %w", f.Name, err)
			}
		}
	}
	return schema, nil
}

// DisplayLabel returns the label to show for a field, falling back to its name.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}
