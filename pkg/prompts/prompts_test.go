package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	for _, name := range []string{PDFSystem, PDFUser, DOCXSystem, DOCXUser, ImproveContent} {
		p, err := Get(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, p, name)
	}

	_, err := Get("nonexistent")
	assert.ErrorContains(t, err, "failed to read prompt")
	assert.Panics(t, func() { MustGet("nonexistent") })
}

func TestPairs(t *testing.T) {
	assert.Contains(t, PDF().System, "PDF")
	assert.Contains(t, DOCX().System, "Word")
	assert.NotEqual(t, PDF().User, DOCX().User)
}

func TestImprove_FallbackText(t *testing.T) {
	got := Improve("<p>Built things</p>", "", "  ")

	assert.Contains(t, got, "<p>Built things</p>")
	assert.Equal(t, 2, strings.Count(got, NotProvided))
	assert.NotContains(t, got, "{{")
}

func TestImprove_AllValues(t *testing.T) {
	got := Improve("c", "Senior Go engineer", "Keep it short")

	assert.Contains(t, got, "Senior Go engineer")
	assert.Contains(t, got, "Keep it short")
	assert.NotContains(t, got, NotProvided)
}

func TestRender_ValuesAreNotReexpanded(t *testing.T) {
	got := Render("A={{a}} B={{b}}", map[string]string{"a": "{{b}}", "b": "x"})
	assert.Equal(t, "A={{b}} B=x", got)
}
