package resume

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/jasonyy2018/rresume/pkg/schema"
)

func issue(path, msg string) schema.ValidationError {
	return schema.ValidationError{Path: path, Message: msg}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Validate(Default(), OriginInput); err != nil {
		t.Fatalf("default document should validate: %v", err)
	}
}

func TestDefault_MarshalsFullShape(t *testing.T) {
	raw, err := json.Marshal(Default())
	if err != nil {
		t.Fatal(err)
	}
	s := string(raw)
	for _, want := range []string{`"customSections":[]`, `"items":[]`, `"customFields":[]`, `"template":"onyx"`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
	if strings.Contains(s, "null") {
		t.Errorf("default document should not contain null: %s", s)
	}
}

func TestNormalize_OverlaysServerControlledFields(t *testing.T) {
	raw := []byte(`{
		"picture": {"url": "https://evil.example/p.png", "size": 100},
		"metadata": {"template": "hacked", "notes": "x"},
		"customSections": [{"id": "c1", "title": "Injected", "columns": 1, "hidden": false, "items": []}],
		"basics": {"name": "Ada Lovelace", "headline": "Engineer", "email": "ada@example.com"},
		"sections": {
			"skills": {"title": "Skills", "columns": 2, "hidden": false, "items": [
				{"id": "s1", "hidden": false, "icon": "", "name": "Go", "proficiency": "Expert", "level": 5, "keywords": ["concurrency"]}
			]}
		}
	}`)

	d, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if !reflect.DeepEqual(d.Picture, DefaultPicture()) {
		t.Errorf("picture = %+v, want default", d.Picture)
	}
	if !reflect.DeepEqual(d.Metadata, DefaultMetadata()) {
		t.Errorf("metadata not reset: template=%q notes=%q", d.Metadata.Template, d.Metadata.Notes)
	}
	if d.CustomSections == nil || len(d.CustomSections) != 0 {
		t.Errorf("customSections = %#v, want empty", d.CustomSections)
	}

	if d.Basics.Name != "Ada Lovelace" {
		t.Errorf("name = %q", d.Basics.Name)
	}
	skills := d.Sections.Skills
	if skills.Columns != 2 || len(skills.Items) != 1 || skills.Items[0].Level != 5 {
		t.Errorf("skills = %+v", skills)
	}
	if d.Sections.Experience.Title != "Experience" || d.Sections.Experience.Items == nil {
		t.Errorf("missing section should keep defaults, got %+v", d.Sections.Experience)
	}
}

func TestNormalize_RepairsLeaves(t *testing.T) {
	raw := []byte(`{
		"summary": {"columns": 0, "content": 7},
		"sections": {
			"experience": {"items": [
				{"company": "Acme", "position": "Dev"},
				{"company": 12}
			]},
			"languages": "none"
		}
	}`)

	d, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if d.Summary.Columns != 1 || d.Summary.Content != "" {
		t.Errorf("summary = %+v", d.Summary)
	}
	items := d.Sections.Experience.Items
	if len(items) != 2 {
		t.Fatalf("items = %+v", items)
	}
	if items[0].ID == "" || items[1].ID == "" || items[0].ID == items[1].ID {
		t.Errorf("items should receive distinct ids: %q %q", items[0].ID, items[1].ID)
	}
	if items[1].Company != "" {
		t.Errorf("wrong-typed company should be empty, got %q", items[1].Company)
	}
	if d.Sections.Languages.Title != "Languages" {
		t.Errorf("wrong-typed section should keep default, got %+v", d.Sections.Languages)
	}
}

func TestNormalize_NotAnObject(t *testing.T) {
	for _, raw := range []string{`[]`, `"resume"`, `not json`} {
		_, err := Normalize([]byte(raw))
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected *ValidationError, got %v", raw, err)
		}
		if verr.Origin != OriginModel {
			t.Errorf("%s: origin = %v, want model", raw, verr.Origin)
		}
		if len(verr.Flatten().FormErrors) != 1 {
			t.Errorf("%s: expected one form error, got %+v", raw, verr.Flatten())
		}
	}
}

func TestValidate_StructRules(t *testing.T) {
	d := Default()
	d.Sections.Skills.Columns = 0
	d.Sections.Skills.Items = []Skill{{Name: "Go", Level: 7, Keywords: []string{}}}

	err := Validate(d, OriginInput)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	fe := verr.Flatten().FieldErrors
	for _, path := range []string{"sections.skills.columns", "sections.skills.items.0.id", "sections.skills.items.0.level"} {
		if len(fe[path]) == 0 {
			t.Errorf("expected issue at %s, got %v", path, fe)
		}
	}
}

func TestValidate_JSONSchema(t *testing.T) {
	d := Default()
	// nil marshals to null, which the schema rejects for an array.
	d.Sections.Skills.Items = []Skill{{Item: Item{ID: "s1"}, Name: "Go"}}

	err := Validate(d, OriginModel)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Origin != OriginModel {
		t.Errorf("origin = %v", verr.Origin)
	}
	found := false
	for _, iss := range verr.Issues {
		if strings.HasPrefix(iss.Path, "sections.skills.items.0.keywords") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected keywords issue, got %v", verr.Issues)
	}
}

func TestValidationError_Summary(t *testing.T) {
	verr := &ValidationError{Origin: OriginInput}
	verr.Issues = append(verr.Issues,
		issue("", "expected object"),
		issue("basics.name", "is required"),
		issue("basics.name", "too short"),
	)

	var got Flattened
	if err := json.Unmarshal([]byte(verr.Summary()), &got); err != nil {
		t.Fatalf("summary is not JSON: %v", err)
	}
	want := Flattened{
		FormErrors:  []string{"expected object"},
		FieldErrors: map[string][]string{"basics.name": {"is required", "too short"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if !strings.Contains(verr.Error(), "invalid resume (input)") {
		t.Errorf("Error() = %q", verr.Error())
	}
}

func TestModelSchema_OmitsServerControlledFields(t *testing.T) {
	js, err := ModelSchema()
	if err != nil {
		t.Fatal(err)
	}
	props := js["properties"].(map[string]any)
	for _, name := range ServerControlled {
		if _, ok := props[name]; ok {
			t.Errorf("model schema should not contain %q", name)
		}
	}
	for _, name := range []string{"basics", "summary", "sections"} {
		if _, ok := props[name]; !ok {
			t.Errorf("model schema missing %q", name)
		}
	}

	full, _ := JSONSchema()
	if _, ok := full["properties"].(map[string]any)["metadata"]; !ok {
		t.Error("full schema should contain metadata")
	}
}

func TestAssignIDs_Deterministic(t *testing.T) {
	d := Default()
	d.Sections.Projects.Items = []Project{{Name: "a"}, {Item: Item{ID: "keep"}, Name: "b"}}
	d.Basics.CustomFields = []CustomField{{Text: "x"}}
	d.CustomSections = []CustomSection{{Columns: 1, Items: []CustomItem{{Title: "t"}}}}

	n := 0
	AssignIDs(&d, func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})

	if d.Sections.Projects.Items[0].ID != "id-1" || d.Sections.Projects.Items[1].ID != "keep" {
		t.Errorf("projects = %+v", d.Sections.Projects.Items)
	}
	if d.Basics.CustomFields[0].ID == "" || d.CustomSections[0].ID == "" || d.CustomSections[0].Items[0].ID == "" {
		t.Error("custom fields and sections should receive ids")
	}
	if n != 4 {
		t.Errorf("generated %d ids, want 4", n)
	}
}
