package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider implements Provider for the OpenAI chat completions API.
// The same client serves every OpenAI-compatible endpoint; see CompatibleProvider.
type OpenAIProvider struct {
	client      openai.Client
	name        string
	model       string
	attachments bool
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg ProviderConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}

	model := cfg.Model
	if model == "" {
		model = GetDefaultModel(OpenAI)
	}

	return &OpenAIProvider{
		client:      openai.NewClient(openAIOptions(cfg, cfg.BaseURL)...),
		name:        OpenAI.String(),
		model:       model,
		attachments: true,
	}, nil
}

func openAIOptions(cfg ProviderConfig, baseURL string) []option.RequestOption {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return opts
}

// Execute sends a completion request to OpenAI.
func (p *OpenAIProvider) Execute(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if req.HasAttachments() && !p.attachments {
		return nil, fmt.Errorf("%s: %w", p.name, ErrAttachmentsUnsupported)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case RoleUser:
			messages = append(messages, openAIUserMessage(msg))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(p.model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
		Temperature:         openai.Float(req.Temperature),
	}

	// Use native structured outputs if schema provided
	if req.JSONSchema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "resume",
					Schema: req.JSONSchema,
					Strict: openai.Bool(req.StrictMode),
				},
			},
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, p.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, providerErr(p.name, 0, ErrEmptyResponse)
	}

	return &Response{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		Model:    resp.Model,
		Duration: time.Since(start),
	}, nil
}

func openAIUserMessage(msg Message) openai.ChatCompletionMessageParamUnion {
	if len(msg.Attachments) == 0 {
		return openai.UserMessage(msg.Content)
	}

	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(msg.Attachments)+1)
	if msg.Content != "" {
		parts = append(parts, openai.TextContentPart(msg.Content))
	}
	for _, a := range msg.Attachments {
		parts = append(parts, openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
			FileData: openai.String(DataURL(a)),
			Filename: openai.String(a.Filename),
		}))
	}
	return openai.UserMessage(parts)
}

// DataURL encodes an attachment as a base64 data URL.
func DataURL(a Attachment) string {
	return "data:" + a.MediaType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

func (p *OpenAIProvider) wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return providerErr(p.name, apiErr.StatusCode, err)
	}
	return providerErr(p.name, 0, err)
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Model returns the configured model name.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// SupportsAttachments reports whether file parts may be sent.
func (p *OpenAIProvider) SupportsAttachments() bool {
	return p.attachments
}

var (
	_ Provider          = (*OpenAIProvider)(nil)
	_ AttachmentHandler = (*OpenAIProvider)(nil)
)
