package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	gopt "google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GeminiProvider implements Provider for Google Gemini. Clients are created
// per call because the SDK binds them to a context.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(cfg ProviderConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key required")
	}

	model := cfg.Model
	if model == "" {
		model = GetDefaultModel(Gemini)
	}

	return &GeminiProvider{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   model,
		timeout: cfg.Timeout,
	}, nil
}

// Execute sends a generation request to Gemini.
func (p *GeminiProvider) Execute(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	opts := []gopt.ClientOption{gopt.WithAPIKey(p.apiKey)}
	if p.baseURL != "" {
		opts = append(opts, gopt.WithEndpoint(GeminiEndpoint(p.baseURL)))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, providerErr("gemini", 0, fmt.Errorf("failed to create client: %w", err))
	}
	defer func() { _ = client.Close() }()

	model := client.GenerativeModel(p.model)
	model.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.JSONSchema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = GeminiSchema(req.JSONSchema)
	}

	var system []string
	var contents []*genai.Content
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, msg.Content)
		case RoleUser:
			contents = append(contents, &genai.Content{Role: "user", Parts: geminiParts(msg)})
		case RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))}}
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("gemini: request has no user message")
	}

	cs := model.StartChat()
	cs.History = contents[:len(contents)-1]
	resp, err := cs.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		return nil, providerErr("gemini", geminiStatus(err), err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, providerErr("gemini", 0, ErrEmptyResponse)
	}

	cand := resp.Candidates[0]
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	out := &Response{
		Content:      sb.String(),
		FinishReason: strings.ToLower(cand.FinishReason.String()),
		Model:        p.model,
		Duration:     time.Since(start),
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

func geminiParts(msg Message) []genai.Part {
	parts := make([]genai.Part, 0, len(msg.Attachments)+1)
	if msg.Content != "" {
		parts = append(parts, genai.Text(msg.Content))
	}
	for _, a := range msg.Attachments {
		parts = append(parts, genai.Blob{MIMEType: a.MediaType, Data: a.Data})
	}
	return parts
}

// GeminiEndpoint converts a base URL such as
// https://generativelanguage.googleapis.com/v1beta into the host:port form the
// gRPC transport dials. Paths are dropped; a bare host:port passes through.
func GeminiEndpoint(baseURL string) string {
	raw := strings.TrimSpace(baseURL)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimSpace(baseURL)
	}
	if u.Port() != "" {
		return u.Host
	}
	if u.Scheme == "http" {
		return u.Host + ":80"
	}
	return u.Host + ":443"
}

// geminiStatus extracts an HTTP status from REST or gRPC errors.
func geminiStatus(err error) int {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
			return http.StatusBadRequest
		case codes.Unauthenticated:
			return http.StatusUnauthorized
		case codes.PermissionDenied:
			return http.StatusForbidden
		case codes.NotFound:
			return http.StatusNotFound
		case codes.ResourceExhausted:
			return http.StatusTooManyRequests
		case codes.Unavailable:
			return http.StatusServiceUnavailable
		case codes.DeadlineExceeded:
			return http.StatusGatewayTimeout
		case codes.Internal, codes.Unknown:
			return http.StatusInternalServerError
		}
	}
	return 0
}

// GeminiSchema converts a JSON Schema map into the subset Gemini accepts.
// Keywords Gemini does not know (additionalProperties, examples, default) are dropped.
func GeminiSchema(js map[string]any) *genai.Schema {
	if js == nil {
		return nil
	}

	s := &genai.Schema{}
	if d, ok := js["description"].(string); ok {
		s.Description = d
	}

	switch t := js["type"].(type) {
	case string:
		s.Type = geminiType(t)
	case []string:
		s.Type, s.Nullable = geminiUnionType(t)
	case []any:
		names := make([]string, 0, len(t))
		for _, v := range t {
			if n, ok := v.(string); ok {
				names = append(names, n)
			}
		}
		s.Type, s.Nullable = geminiUnionType(names)
	}

	switch e := js["enum"].(type) {
	case []string:
		s.Enum = e
	case []any:
		for _, v := range e {
			if str, ok := v.(string); ok {
				s.Enum = append(s.Enum, str)
			}
		}
	}
	if len(s.Enum) > 0 {
		s.Format = "enum"
	}

	if items, ok := js["items"].(map[string]any); ok {
		s.Items = GeminiSchema(items)
	}

	if props, ok := js["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if m, ok := raw.(map[string]any); ok {
				s.Properties[name] = GeminiSchema(m)
			}
		}
		s.Required = requiredFields(js)
		sort.Strings(s.Required)
	}

	return s
}

func geminiUnionType(names []string) (genai.Type, bool) {
	var t genai.Type
	nullable := false
	for _, n := range names {
		if n == "null" {
			nullable = true
			continue
		}
		if t == genai.TypeUnspecified {
			t = geminiType(n)
		}
	}
	return t, nullable
}

func geminiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	}
	return genai.TypeUnspecified
}

// Name returns the provider identifier.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Model returns the configured model name.
func (p *GeminiProvider) Model() string {
	return p.model
}

// SupportsAttachments reports that Gemini accepts inline PDF and Word blobs.
func (p *GeminiProvider) SupportsAttachments() bool {
	return true
}

var (
	_ Provider          = (*GeminiProvider)(nil)
	_ AttachmentHandler = (*GeminiProvider)(nil)
)
