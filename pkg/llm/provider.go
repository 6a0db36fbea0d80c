// Package llm provides a unified interface over the language-model backends
// a resume document can be parsed or rewritten with.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Attachment is a binary file sent alongside a user message.
type Attachment struct {
	Filename  string
	MediaType string
	Data      []byte
}

// Message represents a chat message.
type Message struct {
	Role    Role
	Content string
	// Attachments are only honoured on user messages and only by providers
	// that implement AttachmentHandler.
	Attachments []Attachment
}

// Request represents a completion request to the LLM.
type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONSchema  map[string]any // For structured output
	StrictMode  bool           // Use strict JSON schema validation (only for supported models)
}

// HasAttachments reports whether any message carries a file.
func (r Request) HasAttachments() bool {
	for _, m := range r.Messages {
		if len(m.Attachments) > 0 {
			return true
		}
	}
	return false
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response represents the result of an LLM execution.
type Response struct {
	Content      string
	FinishReason string
	Usage        Usage
	Model        string // Actual model used (may differ from requested for gateways)
	Duration     time.Duration
}

// Provider is the core interface that all LLM backends must implement.
type Provider interface {
	// Execute sends a completion request and returns the response.
	Execute(ctx context.Context, req Request) (*Response, error)

	// Name returns the provider identifier (e.g., "openai", "gemini").
	Name() string

	// Model returns the configured model name.
	Model() string
}

// AttachmentHandler is an optional interface for providers that accept
// multimodal file attachments (PDF, Word) in user messages.
type AttachmentHandler interface {
	SupportsAttachments() bool
}

// CanAttachFiles returns true if the provider accepts file attachments.
func CanAttachFiles(p Provider) bool {
	ah, ok := p.(AttachmentHandler)
	return ok && ah.SupportsAttachments()
}

// ProviderConfig holds common configuration for providers.
type ProviderConfig struct {
	APIKey  string
	BaseURL string // Empty means the provider default
	Model   string
	// MaxRetries is passed to SDKs that retry on their own. Zero disables it.
	MaxRetries int
	// Timeout bounds a single request at the transport. Zero means none.
	Timeout time.Duration
}

// DefaultProviderConfig returns the settings every provider starts from.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		MaxRetries: 0,
		Timeout:    120 * time.Second,
	}
}

// ProviderError wraps any failure reported by a backend or its transport.
type ProviderError struct {
	Provider   string
	StatusCode int // HTTP status when known, 0 otherwise
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ErrAttachmentsUnsupported is returned by providers that cannot take files.
var ErrAttachmentsUnsupported = errors.New("provider does not accept file attachments")

// ErrEmptyResponse is returned when a backend answers without any choice or candidate.
var ErrEmptyResponse = errors.New("no content in response")

func providerErr(name string, status int, err error) error {
	return &ProviderError{Provider: name, StatusCode: status, Err: err}
}
