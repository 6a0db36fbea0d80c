package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jasonyy2018/rresume/internal/logger"
	"github.com/jasonyy2018/rresume/pkg/aierr"
	"github.com/jasonyy2018/rresume/pkg/importer"
	"github.com/jasonyy2018/rresume/pkg/llm"
	"github.com/jasonyy2018/rresume/pkg/policy"
	"github.com/jasonyy2018/rresume/pkg/prompts"
	"github.com/jasonyy2018/rresume/pkg/resume"
)

// Credentials select and authenticate a provider for one call. An empty
// BaseURL means the provider default.
type Credentials struct {
	Provider llm.ID `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"apiKey"`
	BaseURL  string `json:"baseURL"`
}

// FilePayload is an uploaded file with base64 content.
type FilePayload struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// MediaType of a document sent for parsing.
type MediaType string

const (
	MediaPDF  MediaType = "application/pdf"
	MediaDOC  MediaType = "application/msword"
	MediaDOCX MediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

func (m MediaType) operation() (policy.Operation, bool) {
	switch m {
	case MediaPDF:
		return policy.ParsePDF, true
	case MediaDOC, MediaDOCX:
		return policy.ParseDOCX, true
	}
	return 0, false
}

// ImproveInput is the text to rewrite and optional guidance.
type ImproveInput struct {
	Content        string `json:"content"`
	JobDescription string `json:"jobDescription,omitempty"`
	Instructions   string `json:"instructions,omitempty"`
}

// Sentinel is the answer a working connection must contain.
const Sentinel = "1"

const improveUserMessage = "Please improve the content as instructed in the system prompt."

// ErrAIDisabled is returned when a model-backed import is requested
// without provider credentials.
var ErrAIDisabled = errors.New("This feature requires AI Integration to be enabled. Please enable it in the settings.")

// Service runs pipeline operations. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	config Config
}

// New creates a Service.
func New(opts ...Option) *Service {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.NewProvider == nil {
		cfg.NewProvider = llm.NewProvider
	}
	return &Service{config: cfg}
}

// TestConnection asks the model to echo the sentinel. A reply without it is
// reported as false; transport failures and timeouts are errors.
func (s *Service) TestConnection(ctx context.Context, creds Credentials) (bool, error) {
	const op = "test-connection"

	ctx, cancel := context.WithTimeout(ctx, TestConnectionTimeout)
	defer cancel()

	logger.InfoContext(ctx, "testing connection", "provider", creds.Provider, "model", creds.Model, "api_key", logger.Mask(creds.APIKey))

	p, err := s.provider(creds, TestConnectionTimeout)
	if err != nil {
		return false, s.fail(ctx, op, err)
	}

	resp, err := s.execute(ctx, op, p, llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: `Respond with only the number "` + Sentinel + `".`}},
	})
	if err != nil {
		return false, s.fail(ctx, op, err)
	}

	ok := strings.Contains(strings.TrimSpace(resp.Content), Sentinel)
	logger.InfoContext(ctx, "connection tested", "provider", p.Name(), "model", p.Model(), "ok", ok, "duration", resp.Duration)
	return ok, nil
}

// ParseDocument extracts a resume from a PDF or Word file. The policy gate
// and size check run before any provider is contacted.
func (s *Service) ParseDocument(ctx context.Context, creds Credentials, file FilePayload, media MediaType) (resume.Data, error) {
	op, ok := media.operation()
	if !ok {
		return resume.Data{}, s.fail(ctx, "parse", aierr.BadRequestf("unsupported media type %q", media))
	}
	opName := op.String()

	if err := policy.CheckEligibility(op, creds.Provider, creds.BaseURL); err != nil {
		return resume.Data{}, s.fail(ctx, opName, err)
	}
	data, err := policy.DecodeFile(op, file.Data)
	if err != nil {
		return resume.Data{}, s.fail(ctx, opName, err)
	}

	p, err := s.provider(creds, s.config.ParseTimeout)
	if err != nil {
		return resume.Data{}, s.fail(ctx, opName, err)
	}
	if !llm.CanAttachFiles(p) {
		return resume.Data{}, s.fail(ctx, opName, aierr.BadRequestf("provider %s cannot read attached files", p.Name()))
	}

	js, err := resume.ModelSchema()
	if err != nil {
		return resume.Data{}, s.fail(ctx, opName, err)
	}

	pair := prompts.PDF()
	if op == policy.ParseDOCX {
		pair = prompts.DOCX()
	}

	logger.InfoContext(ctx, "parsing document",
		"op", opName,
		"file", file.Name,
		"size", humanize.IBytes(uint64(len(data))),
		"provider", p.Name(),
		"model", p.Model(),
	)
	started := time.Now()

	ctx, cancel := withCap(ctx, s.config.ParseTimeout)
	defer cancel()

	resp, err := s.execute(ctx, opName, p, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: pair.System},
			{Role: llm.RoleUser, Content: pair.User, Attachments: []llm.Attachment{{
				Filename:  file.Name,
				MediaType: string(media),
				Data:      data,
			}}},
		},
		MaxTokens:   s.config.ParseMaxTokens,
		Temperature: s.config.Temperature,
		JSONSchema:  js,
	})
	if err != nil {
		return resume.Data{}, s.fail(ctx, opName, err)
	}

	d, err := resume.Normalize([]byte(llm.StripCodeFence(resp.Content)))
	if err != nil {
		return resume.Data{}, s.fail(ctx, opName, err)
	}

	logger.InfoContext(ctx, "parsed document", "op", opName, "file", file.Name, "duration", time.Since(started).Round(time.Millisecond))
	return d, nil
}

// ImproveText rewrites content and returns it as an HTML fragment.
func (s *Service) ImproveText(ctx context.Context, creds Credentials, in ImproveInput) (string, error) {
	const op = "improve-content"

	if strings.TrimSpace(in.Content) == "" {
		return "", s.fail(ctx, op, aierr.BadRequestf("content is required"))
	}

	p, err := s.provider(creds, s.config.ImproveTimeout)
	if err != nil {
		return "", s.fail(ctx, op, err)
	}

	ctx, cancel := withCap(ctx, s.config.ImproveTimeout)
	defer cancel()

	resp, err := s.execute(ctx, op, p, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.Improve(in.Content, in.JobDescription, in.Instructions)},
			{Role: llm.RoleUser, Content: improveUserMessage},
		},
		MaxTokens:   s.config.ImproveMaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return "", s.fail(ctx, op, err)
	}

	text := llm.StripCodeFence(resp.Content)
	if text == "" {
		return "", s.fail(ctx, op, aierr.Upstream(llm.ErrEmptyResponse, "failed to improve content"))
	}

	out, err := resume.Fragment(text)
	if err != nil {
		return "", s.fail(ctx, op, err)
	}
	if out == "" {
		return "", s.fail(ctx, op, aierr.Upstream(llm.ErrEmptyResponse, "failed to improve content"))
	}
	return out, nil
}

// ImportRequest selects an import type and carries the raw file. Credentials
// are only needed for the model-backed types.
type ImportRequest struct {
	Type        importer.Type
	Name        string
	Data        []byte
	MediaType   MediaType
	Credentials *Credentials
}

// Import turns an uploaded file into a document, through AI parsing or a
// structured adapter depending on the type.
func (s *Service) Import(ctx context.Context, req ImportRequest) (resume.Data, error) {
	if req.Type.UsesAI() {
		if req.Credentials == nil {
			return resume.Data{}, s.fail(ctx, "import", &aierr.Error{Kind: aierr.BadRequest, Message: ErrAIDisabled.Error(), Cause: ErrAIDisabled})
		}
		media := MediaPDF
		if req.Type == importer.TypeDOCX {
			media = MediaDOCX
			if req.MediaType == MediaDOC {
				media = MediaDOC
			}
		}
		file := FilePayload{Name: req.Name, Data: base64.StdEncoding.EncodeToString(req.Data)}
		return s.ParseDocument(ctx, *req.Credentials, file, media)
	}

	imp, err := importer.ForType(req.Type)
	if err != nil {
		return resume.Data{}, s.fail(ctx, "import", err)
	}
	d, err := imp.Parse(req.Data)
	if err != nil {
		return resume.Data{}, s.fail(ctx, "import", err)
	}
	logger.InfoContext(ctx, "imported resume", "format", imp.Name(), "file", req.Name, "size", humanize.IBytes(uint64(len(req.Data))))
	return d, nil
}

// provider builds the backend for creds. A positive timeout replaces the
// default per-request transport timeout.
func (s *Service) provider(creds Credentials, timeout time.Duration) (llm.Provider, error) {
	if creds.Provider.IsZero() {
		return nil, aierr.BadRequestf("provider is required (available: %s)", strings.Join(llm.Names(), ", "))
	}
	cfg := llm.DefaultProviderConfig()
	cfg.APIKey = creds.APIKey
	cfg.BaseURL = creds.BaseURL
	cfg.Model = creds.Model
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	p, err := s.config.NewProvider(creds.Provider, cfg)
	if err != nil {
		return nil, &aierr.Error{Kind: aierr.BadRequest, Message: err.Error(), Cause: err}
	}
	return p, nil
}

// execute runs one model call and reports it to the observer.
func (s *Service) execute(ctx context.Context, op string, p llm.Provider, req llm.Request) (*llm.Response, error) {
	started := time.Now()
	resp, err := p.Execute(ctx, req)
	if err == nil && resp == nil {
		err = &llm.ProviderError{Provider: p.Name(), Err: llm.ErrEmptyResponse}
	}
	if s.config.Observer != nil {
		s.config.Observer.OnLLMCall(ctx, llm.NewCallEvent(op, p, req, resp, err, started))
	}
	return resp, err
}

// fail translates err and logs it once at the pipeline boundary.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	e := aierr.Translate(err)
	args := []any{"op", op, "kind", e.Kind.String(), "error", err}
	if e.Kind == aierr.BadRequest {
		logger.WarnContext(ctx, "ai request rejected", args...)
	} else {
		logger.ErrorContext(ctx, "ai request failed", args...)
	}
	return e
}

func withCap(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
