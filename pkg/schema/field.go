// Package schema derives JSON Schemas from Go document types and decodes
// untrusted JSON into them, either leniently (field-level fallback to
// defaults) or strictly (struct rules with field paths).
package schema

import "strings"

// FieldType represents the type of a schema field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Field represents a single field in the schema.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Required    bool
	Items       *Field  // For array types
	Properties  []Field // For struct-backed object types
	Values      *Field  // For map-backed object types
	Validators  []string
	Examples    []string
}

// rule returns the parameter of a validator tag such as "min=1", if present.
func (f Field) rule(name string) (string, bool) {
	for _, v := range f.Validators {
		if k, p, ok := strings.Cut(v, "="); ok && k == name {
			return p, true
		}
	}
	return "", false
}

func (f Field) has(tag string) bool {
	for _, v := range f.Validators {
		if v == tag {
			return true
		}
	}
	return false
}

// ValidationError is one failed rule, addressed by its dotted JSON path
// (e.g. "sections.skills.items.0.level"). Path is empty for document-level issues.
type ValidationError struct {
	Path    string
	Message string
	Value   any
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}
