// Package policy decides, before any network call, whether a request may be
// sent to the configured provider.
package policy

import (
	"encoding/base64"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jasonyy2018/rresume/pkg/aierr"
	"github.com/jasonyy2018/rresume/pkg/llm"
)

// Operation is a pipeline call kind.
type Operation int

const (
	TestConnection Operation = iota
	ParsePDF
	ParseDOCX
	ImproveText
)

func (op Operation) String() string {
	switch op {
	case TestConnection:
		return "test-connection"
	case ParsePDF:
		return "parse-pdf"
	case ParseDOCX:
		return "parse-docx"
	case ImproveText:
		return "improve-content"
	}
	return "unknown"
}

// IsParse reports whether op extracts a document from an attached file.
func (op Operation) IsParse() bool {
	return op == ParsePDF || op == ParseDOCX
}

// document names the file kind in user-facing messages.
func (op Operation) document() string {
	if op == ParseDOCX {
		return "Word document"
	}
	return "PDF"
}

// MaxFileSize is the largest decoded payload a parse request may carry.
const MaxFileSize = 10 << 20

// OpenAIEndpoint is the only OpenAI base URL trusted with documents.
const OpenAIEndpoint = "https://api.openai.com/v1"

// parseEligible answers, per provider, whether documents may be sent to the
// given base URL.
type parseEligible struct{ baseURL string }

func (parseEligible) Ollama() bool          { return false }
func (e parseEligible) OpenAI() bool        { return officialOpenAI(e.baseURL) }
func (parseEligible) Gemini() bool          { return true }
func (parseEligible) Anthropic() bool       { return false }
func (parseEligible) VercelAIGateway() bool { return false }
func (parseEligible) Cerebras() bool        { return false }
func (parseEligible) SiliconFlow() bool     { return false }

func officialOpenAI(baseURL string) bool {
	u := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return u == "" || u == OpenAIEndpoint
}

// CheckEligibility rejects parse operations without a provider or for
// providers that cannot be trusted with document attachments. Other
// operations always pass.
func CheckEligibility(op Operation, id llm.ID, baseURL string) error {
	if !op.IsParse() {
		return nil
	}
	if id.IsZero() {
		return aierr.BadRequestf("provider is required (available: %s)", strings.Join(llm.Names(), ", "))
	}
	if llm.Match[bool](id, parseEligible{baseURL: baseURL}) {
		return nil
	}
	return aierr.BadRequestf(
		"The provider %q (with baseURL %q) does not support %s parsing. This feature requires official OpenAI or Google Gemini.",
		id.String(), baseURL, op.document(),
	)
}

// DecodeFile decodes a base64 payload and enforces MaxFileSize.
func DecodeFile(op Operation, data string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, &aierr.Error{
			Kind:    aierr.BadRequest,
			Message: "The file is not valid base64 data.",
			Cause:   err,
		}
	}
	if len(b) > MaxFileSize {
		return nil, aierr.BadRequestf(
			"The %s is too large (%s). Please upload a file smaller than %s.",
			fileNoun(op), humanize.IBytes(uint64(len(b))), humanize.IBytes(MaxFileSize),
		)
	}
	return b, nil
}

func fileNoun(op Operation) string {
	if op == ParseDOCX {
		return "Word document"
	}
	return "PDF file"
}
