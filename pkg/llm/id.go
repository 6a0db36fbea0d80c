package llm

import (
	"fmt"
	"strings"
)

// ID identifies a provider. The set is closed: the only valid values are the
// package-level variables below, and strings from outside enter through ParseID.
type ID struct {
	name string
}

var (
	Ollama          = ID{"ollama"}
	OpenAI          = ID{"openai"}
	Gemini          = ID{"gemini"}
	Anthropic       = ID{"anthropic"}
	VercelAIGateway = ID{"vercel-ai-gateway"}
	Cerebras        = ID{"cerebras"}
	SiliconFlow     = ID{"siliconflow"}
)

// All lists every provider in display order.
var All = []ID{Ollama, OpenAI, Gemini, Anthropic, VercelAIGateway, Cerebras, SiliconFlow}

// Cases is implemented once per decision that depends on the provider.
// Adding a provider adds a method here, so every implementation has to
// handle it before the module compiles again.
type Cases[T any] interface {
	Ollama() T
	OpenAI() T
	Gemini() T
	Anthropic() T
	VercelAIGateway() T
	Cerebras() T
	SiliconFlow() T
}

// Match dispatches id to the matching method of c.
// It panics on the zero ID, which no exported API hands out.
func Match[T any](id ID, c Cases[T]) T {
	switch id {
	case Ollama:
		return c.Ollama()
	case OpenAI:
		return c.OpenAI()
	case Gemini:
		return c.Gemini()
	case Anthropic:
		return c.Anthropic()
	case VercelAIGateway:
		return c.VercelAIGateway()
	case Cerebras:
		return c.Cerebras()
	case SiliconFlow:
		return c.SiliconFlow()
	}
	panic("llm: match on zero provider ID")
}

// ParseID converts a provider name to an ID.
func ParseID(s string) (ID, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, id := range All {
		if id.name == name {
			return id, nil
		}
	}
	return ID{}, fmt.Errorf("unknown provider: %q (available: %s)", s, strings.Join(Names(), ", "))
}

// Names returns the provider names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, id := range All {
		names[i] = id.name
	}
	return names
}

// String returns the provider name.
func (id ID) String() string {
	return id.name
}

// IsZero reports whether id is unset.
func (id ID) IsZero() bool {
	return id.name == ""
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
