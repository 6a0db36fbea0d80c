// Package prompts holds the prompt templates sent to language models.
// Templates are markdown files embedded at compile time.
package prompts

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed *.md
var promptFiles embed.FS

// Template names.
const (
	PDFSystem      = "pdf-parser-system"
	PDFUser        = "pdf-parser-user"
	DOCXSystem     = "docx-parser-system"
	DOCXUser       = "docx-parser-user"
	ImproveContent = "improve-content"
)

// NotProvided replaces optional placeholders that have no value.
const NotProvided = "Not provided"

// Get returns the template with the given name.
func Get(name string) (string, error) {
	b, err := promptFiles.ReadFile(name + ".md")
	if err != nil {
		return "", fmt.Errorf("failed to read prompt %s: %w", name, err)
	}
	return strings.TrimSpace(string(b)), nil
}

// MustGet is Get for templates that ship with the binary.
func MustGet(name string) string {
	p, err := Get(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return p
}

// Render replaces {{key}} placeholders in tmpl. Empty values become NotProvided.
func Render(tmpl string, values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(values)*2)
	for _, k := range keys {
		v := strings.TrimSpace(values[k])
		if v == "" {
			v = NotProvided
		}
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Improve renders the content improvement prompt.
func Improve(content, jobDescription, instructions string) string {
	return Render(MustGet(ImproveContent), map[string]string{
		"content":        content,
		"jobDescription": jobDescription,
		"instructions":   instructions,
	})
}

// Pair is the system and user prompt for one parse operation.
type Pair struct {
	System string
	User   string
}

// PDF returns the prompt pair for PDF parsing.
func PDF() Pair {
	return Pair{System: MustGet(PDFSystem), User: MustGet(PDFUser)}
}

// DOCX returns the prompt pair for Word parsing.
func DOCX() Pair {
	return Pair{System: MustGet(DOCXSystem), User: MustGet(DOCXUser)}
}
