package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Schema describes a document type for structured model output.
type Schema struct {
	Name        string
	Description string
	Fields      []Field

	target reflect.Type
}

// SchemaOption configures schema creation.
type SchemaOption func(*schemaBuilder)

type schemaBuilder struct {
	description string
}

// WithDescription sets the schema description.
func WithDescription(desc string) SchemaOption {
	return func(b *schemaBuilder) {
		b.description = desc
	}
}

// NewSchema creates a Schema from a struct type using reflection.
func NewSchema[T any](opts ...SchemaOption) (Schema, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return Schema{}, fmt.Errorf("schema must be created from a struct type, got interface")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return Schema{}, fmt.Errorf("schema must be created from a struct type, got %v", t.Kind())
	}

	builder := &schemaBuilder{}
	for _, opt := range opts {
		opt(builder)
	}

	fields, err := extractFields(t)
	if err != nil {
		return Schema{}, err
	}

	return Schema{
		Name:        t.Name(),
		Description: builder.description,
		Fields:      fields,
		target:      t,
	}, nil
}

// Without returns a copy of the schema minus the named top-level fields.
func (s Schema) Without(names ...string) Schema {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := s
	out.Fields = make([]Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if !drop[f.Name] {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

// Field looks up a top-level field by JSON name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// extractFields recursively extracts field definitions from a struct type.
func extractFields(t reflect.Type) ([]Field, error) {
	fields := make([]Field, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if isInlined(sf) {
			inner, err := extractFields(sf.Type)
			if err != nil {
				return nil, err
			}
			fields = append(fields, inner...)
			continue
		}
		if !sf.IsExported() || sf.Tag.Get("json") == "-" {
			continue
		}

		field, err := extractFieldFromType(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		field.Name = getJSONName(sf)
		field.Description = sf.Tag.Get("description")
		field.Required = !hasOmitempty(sf) && sf.Type.Kind() != reflect.Ptr
		field.Validators = parseValidators(sf.Tag.Get("validate"))
		if examples := sf.Tag.Get("examples"); examples != "" {
			field.Examples = strings.Split(examples, ",")
		}

		fields = append(fields, field)
	}

	return fields, nil
}

// extractFieldFromType extracts a Field definition from a reflect.Type.
func extractFieldFromType(t reflect.Type) (Field, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	field := Field{}

	switch t.Kind() {
	case reflect.String:
		field.Type = TypeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		field.Type = TypeInteger
	case reflect.Float32, reflect.Float64:
		field.Type = TypeNumber
	case reflect.Bool:
		field.Type = TypeBoolean
	case reflect.Slice:
		field.Type = TypeArray
		itemField, err := extractFieldFromType(t.Elem())
		if err != nil {
			return Field{}, err
		}
		field.Items = &itemField
	case reflect.Struct:
		field.Type = TypeObject
		props, err := extractFields(t)
		if err != nil {
			return Field{}, err
		}
		field.Properties = props
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return Field{}, fmt.Errorf("unsupported map key type: %v", t.Key().Kind())
		}
		field.Type = TypeObject
		valueField, err := extractFieldFromType(t.Elem())
		if err != nil {
			return Field{}, err
		}
		field.Values = &valueField
	default:
		return Field{}, fmt.Errorf("unsupported type: %v", t.Kind())
	}

	return field, nil
}

// isInlined reports an untagged embedded struct, whose fields encoding/json
// promotes into the parent object.
func isInlined(sf reflect.StructField) bool {
	return sf.Anonymous && sf.Tag.Get("json") == "" && sf.Type.Kind() == reflect.Struct
}

// getJSONName returns the JSON field name from struct tags.
func getJSONName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" || tag == "-" {
		return sf.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name != "" {
		return name
	}
	return sf.Name
}

// hasOmitempty checks if the json tag contains omitempty.
func hasOmitempty(sf reflect.StructField) bool {
	return strings.Contains(sf.Tag.Get("json"), "omitempty")
}

// parseValidators extracts validator tags.
func parseValidators(tag string) []string {
	if tag == "" {
		return nil
	}
	return strings.Split(tag, ",")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// structValidator reports field names by their JSON tag so that error paths
// match the wire format.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(sf reflect.StructField) string {
			if isInlined(sf) {
				return inlineSegment
			}
			return getJSONName(sf)
		})
	})
	return validate
}

// Validate checks a value of the schema's type against its `validate` tags.
func (s Schema) Validate(data any) []ValidationError {
	return ValidateStruct(data)
}

// ValidateStruct checks any struct against its `validate` tags.
func ValidateStruct(data any) []ValidationError {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return []ValidationError{{Message: "value is nil"}}
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	err := structValidator().Struct(data)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, ValidationError{
			Path:    namespacePath(e.Namespace()),
			Message: formatValidationError(e),
			Value:   e.Value(),
		})
	}
	return out
}

// inlineSegment names embedded structs in validator namespaces so that
// namespacePath can drop them.
const inlineSegment = "^"

// namespacePath turns "Data.sections.skills.items[2].level" into
// "sections.skills.items.2.level".
func namespacePath(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return ""
	}
	rest = strings.NewReplacer("[", ".", "]", "").Replace(rest)
	parts := strings.Split(rest, ".")
	out := parts[:0]
	for _, p := range parts {
		if p != inlineSegment {
			out = append(out, p)
		}
	}
	return strings.Join(out, ".")
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		if e.Kind() == reflect.String || e.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s element(s)", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max", "lte":
		if e.Kind() == reflect.String || e.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s element(s)", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "hexcolor":
		return "must be a hex color"
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
