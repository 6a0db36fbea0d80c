package resume

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jasonyy2018/rresume/pkg/schema"
)

// Origin records who produced a document that failed validation.
type Origin int

const (
	// OriginInput is data supplied by the caller (imports).
	OriginInput Origin = iota
	// OriginModel is data produced by a language model.
	OriginModel
)

func (o Origin) String() string {
	if o == OriginModel {
		return "model output"
	}
	return "input"
}

// ServerControlled lists the top-level fields the model is never asked for.
var ServerControlled = []string{"picture", "customSections", "metadata"}

// ValidationError reports every rule a document broke.
type ValidationError struct {
	Origin Origin
	Issues []schema.ValidationError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, iss := range e.Issues {
		parts = append(parts, iss.Error())
	}
	return fmt.Sprintf("invalid resume (%s): %s", e.Origin, strings.Join(parts, "; "))
}

// Flattened groups issues by field path. Issues without a path are form errors.
type Flattened struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

// Flatten summarises the issues for display.
func (e *ValidationError) Flatten() Flattened {
	f := Flattened{FormErrors: []string{}, FieldErrors: map[string][]string{}}
	for _, iss := range e.Issues {
		if iss.Path == "" {
			f.FormErrors = append(f.FormErrors, iss.Message)
			continue
		}
		f.FieldErrors[iss.Path] = append(f.FieldErrors[iss.Path], iss.Message)
	}
	return f
}

// Summary is the flattened issues as compact JSON.
func (e *ValidationError) Summary() string {
	b, err := json.Marshal(e.Flatten())
	if err != nil {
		return e.Error()
	}
	return string(b)
}

var (
	docOnce   sync.Once
	docSchema schema.Schema
	compiled  *jsonschema.Schema
	docErr    error
)

func loadSchema() error {
	docOnce.Do(func() {
		docSchema, docErr = schema.NewSchema[Data](schema.WithDescription("A resume document."))
		if docErr != nil {
			return
		}
		b, err := json.Marshal(docSchema.ToJSONSchema())
		if err != nil {
			docErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("resume.json", bytes.NewReader(b)); err != nil {
			docErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiled, docErr = compiler.Compile("resume.json")
	})
	return docErr
}

// JSONSchema returns the JSON Schema of the full document.
func JSONSchema() (map[string]any, error) {
	if err := loadSchema(); err != nil {
		return nil, err
	}
	return docSchema.ToJSONSchema(), nil
}

// ModelSchema returns the JSON Schema the model must answer with: the
// document minus the server-controlled fields.
func ModelSchema() (map[string]any, error) {
	if err := loadSchema(); err != nil {
		return nil, err
	}
	return docSchema.Without(ServerControlled...).ToJSONSchema(), nil
}

// Validate runs the strict check: struct rules first, then the document's
// JSON Schema against its wire form. It returns a *ValidationError on failure.
func Validate(d Data, origin Origin) error {
	if err := loadSchema(); err != nil {
		return fmt.Errorf("load resume schema: %w", err)
	}

	if issues := schema.ValidateStruct(d); len(issues) > 0 {
		return &ValidationError{Origin: origin, Issues: issues}
	}

	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal resume: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal resume: %w", err)
	}

	if err := compiled.Validate(v); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return fmt.Errorf("validate resume: %w", err)
		}
		return &ValidationError{Origin: origin, Issues: schemaIssues(verr)}
	}
	return nil
}

// schemaIssues collects the leaf causes of a JSON Schema failure.
func schemaIssues(verr *jsonschema.ValidationError) []schema.ValidationError {
	var out []schema.ValidationError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, schema.ValidationError{
				Path:    pointerPath(e.InstanceLocation),
				Message: e.Message,
			})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// pointerPath turns "/sections/skills/items/0" into "sections.skills.items.0".
func pointerPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		parts[i] = strings.NewReplacer("~1", "/", "~0", "~").Replace(p)
	}
	return strings.Join(parts, ".")
}
