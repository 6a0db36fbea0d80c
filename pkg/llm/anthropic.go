package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements Provider for the Anthropic messages API.
// Structured output goes through a forced tool call.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(cfg ProviderConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	model := cfg.Model
	if model == "" {
		model = GetDefaultModel(Anthropic)
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

// Execute sends a completion request to Anthropic.
func (p *AnthropicProvider) Execute(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if req.HasAttachments() {
		return nil, fmt.Errorf("anthropic: %w", ErrAttachmentsUnsupported)
	}

	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	var systemPrompt string

	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			systemPrompt = msg.Content
		case RoleUser:
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int64(maxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(req.Temperature),
	}

	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	// Anthropic has no response_format; a forced tool call carries the schema.
	if req.JSONSchema != nil {
		properties, _ := req.JSONSchema["properties"].(map[string]any)

		params.Tools = []anthropic.ToolUnionParam{
			{
				OfTool: &anthropic.ToolParam{
					Name:        "emit_resume",
					Description: anthropic.String("Return the structured resume data"),
					InputSchema: anthropic.ToolInputSchemaParam{
						Type:       "object",
						Properties: properties,
						Required:   requiredFields(req.JSONSchema),
					},
				},
			},
		}
		params.ToolChoice = anthropic.ToolChoiceParamOfTool("emit_resume")
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, providerErr("anthropic", apiErr.StatusCode, err)
		}
		return nil, providerErr("anthropic", 0, err)
	}

	var content string
	for _, block := range resp.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			content = b.Text
		case anthropic.ToolUseBlock:
			// The tool input is the structured answer.
			jsonBytes, err := json.Marshal(b.Input)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal tool input: %w", err)
			}
			content = string(jsonBytes)
		}
	}

	return &Response{
		Content:      content,
		FinishReason: string(resp.StopReason),
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
		Model:    string(resp.Model),
		Duration: time.Since(start),
	}, nil
}

// requiredFields reads the "required" list of a JSON schema whether it was
// built as []string or decoded as []any.
func requiredFields(schema map[string]any) []string {
	switch r := schema["required"].(type) {
	case []string:
		return r
	case []any:
		out := make([]string, 0, len(r))
		for _, v := range r {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Name returns the provider identifier.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Model returns the configured model name.
func (p *AnthropicProvider) Model() string {
	return p.model
}

var _ Provider = (*AnthropicProvider)(nil)
