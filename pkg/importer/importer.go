// Package importer converts structured resume exports into documents.
// Each dialect has its own adapter; the caller picks one explicitly.
package importer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jasonyy2018/rresume/internal/logger"
	"github.com/jasonyy2018/rresume/pkg/aierr"
	"github.com/jasonyy2018/rresume/pkg/resume"
)

// Type is an import source selected by the user.
type Type string

const (
	TypePDF              Type = "pdf"
	TypeDOCX             Type = "docx"
	TypeReactiveResume   Type = "reactive-resume-json"
	TypeReactiveResumeV4 Type = "reactive-resume-v4-json"
	TypeJSONResume       Type = "json-resume-json"
)

// Types lists every import type in display order.
var Types = []Type{TypeReactiveResume, TypeReactiveResumeV4, TypeJSONResume, TypePDF, TypeDOCX}

// ParseType validates an import type name.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	names := make([]string, len(Types))
	for i, t := range Types {
		names[i] = string(t)
	}
	return "", aierr.BadRequestf("unknown import type %q (available: %s)", s, strings.Join(names, ", "))
}

// UsesAI reports whether the type is parsed by a language model rather
// than by an adapter.
func (t Type) UsesAI() bool {
	return t == TypePDF || t == TypeDOCX
}

// Importer parses one structured dialect.
type Importer interface {
	Name() string
	Parse(raw []byte) (resume.Data, error)
}

// ForType returns the adapter for t. Model-backed types have no adapter.
func ForType(t Type) (Importer, error) {
	switch t {
	case TypeReactiveResume:
		return ReactiveResume{}, nil
	case TypeReactiveResumeV4:
		return ReactiveResumeV4{}, nil
	case TypeJSONResume:
		return JSONResume{}, nil
	case TypePDF, TypeDOCX:
		return nil, aierr.BadRequestf("import type %q is parsed with AI, not with a JSON adapter", t)
	}
	return nil, aierr.BadRequestf("unknown import type %q", t)
}

func mustShape(s string) *gojsonschema.Schema {
	sch, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("importer: invalid shape schema: %v", err))
	}
	return sch
}

var objectShape = mustShape(`{"type": "object"}`)

// checkShape rejects input that is not JSON or not the dialect's base shape.
func checkShape(name string, shape *gojsonschema.Schema, raw []byte) error {
	if !json.Valid(raw) {
		return aierr.BadRequestf("The file is not valid JSON and cannot be imported as %s.", name)
	}
	res, err := shape.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &aierr.Error{
			Kind:    aierr.BadRequest,
			Message: fmt.Sprintf("The file is not valid JSON and cannot be imported as %s.", name),
			Cause:   err,
		}
	}
	if res.Valid() {
		return nil
	}

	reasons := make([]string, 0, len(res.Errors()))
	for _, desc := range res.Errors() {
		reasons = append(reasons, desc.String())
	}
	return aierr.BadRequestf("The file is not a valid %s export: %s", name, strings.Join(reasons, "; "))
}

// finish gives every entry an id and runs the strict check.
func finish(name string, d resume.Data) (resume.Data, error) {
	resume.AssignIDs(&d, nil)
	if len(d.Metadata.Layout.Pages) == 0 {
		d.Metadata.Layout.Pages = resume.DefaultMetadata().Layout.Pages
	}
	if err := resume.Validate(d, resume.OriginInput); err != nil {
		return resume.Data{}, aierr.Translate(err)
	}
	logger.Debug("imported resume", "format", name, "experience", len(d.Sections.Experience.Items), "skills", len(d.Sections.Skills.Items))
	return d, nil
}

// richText normalises an HTML or plain-text field.
func richText(s string) string {
	out, err := resume.Fragment(s)
	if err != nil {
		return resume.FromPlain(s)
	}
	return out
}

// period joins a start and end date. An open range ends at "Present".
func period(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start == "" && end == "":
		return ""
	case start == "":
		return end
	case end == "":
		return start + " - Present"
	}
	return start + " - " + end
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func within(v, lo, hi, def int) int {
	if v < lo || v > hi {
		return def
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func sortCustom(cs []resume.CustomSection) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Title != cs[j].Title {
			return cs[i].Title < cs[j].Title
		}
		return cs[i].ID < cs[j].ID
	})
}
