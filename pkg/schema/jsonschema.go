package schema

import (
	"strconv"
	"strings"
)

// ToJSONSchema converts the schema to JSON Schema format for structured output
// and for strict validation.
func (s Schema) ToJSONSchema() map[string]any {
	schema := objectSchema(s.Fields)
	if s.Description != "" {
		schema["description"] = s.Description
	}
	return schema
}

func objectSchema(fields []Field) map[string]any {
	properties := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))

	for _, field := range fields {
		properties[field.Name] = fieldToJSONSchema(field)
		if field.Required {
			required = append(required, field.Name)
		}
	}

	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false, // Required for strict mode
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// fieldToJSONSchema converts a Field to JSON Schema format.
func fieldToJSONSchema(f Field) map[string]any {
	var schema map[string]any

	switch {
	case f.Type == TypeObject && f.Values != nil:
		schema = map[string]any{
			"type":                 "object",
			"additionalProperties": fieldToJSONSchema(*f.Values),
		}
	case f.Type == TypeObject:
		schema = objectSchema(f.Properties)
	default:
		schema = map[string]any{"type": string(f.Type)}
	}

	if f.Description != "" {
		schema["description"] = f.Description
	}
	if len(f.Examples) > 0 {
		schema["examples"] = f.Examples
	}

	if f.Type == TypeArray && f.Items != nil {
		schema["items"] = fieldToJSONSchema(*f.Items)
	}

	if f.Type == TypeInteger || f.Type == TypeNumber {
		if p, ok := f.rule("min"); ok {
			if n, err := strconv.ParseFloat(p, 64); err == nil {
				schema["minimum"] = n
			}
		}
		if p, ok := f.rule("max"); ok {
			if n, err := strconv.ParseFloat(p, 64); err == nil {
				schema["maximum"] = n
			}
		}
	}

	if f.Type == TypeString {
		if p, ok := f.rule("oneof"); ok {
			enum := strings.Fields(p)
			if f.has("omitempty") {
				enum = append([]string{""}, enum...)
			}
			schema["enum"] = enum
		}
	}

	return schema
}
