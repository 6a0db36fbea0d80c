package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonyy2018/rresume/pkg/aierr"
	"github.com/jasonyy2018/rresume/pkg/importer"
	"github.com/jasonyy2018/rresume/pkg/llm"
	"github.com/jasonyy2018/rresume/pkg/policy"
	"github.com/jasonyy2018/rresume/pkg/prompts"
	"github.com/jasonyy2018/rresume/pkg/resume"
)

type fakeProvider struct {
	mu       sync.Mutex
	name     string
	attach   bool
	reply    string
	err      error
	block    bool
	requests []llm.Request
	deadline time.Time
}

func (f *fakeProvider) Execute(ctx context.Context, req llm.Request) (*llm.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.deadline, _ = ctx.Deadline()
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, &llm.ProviderError{Provider: f.name, Err: ctx.Err()}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.reply, Model: "fake-model", FinishReason: "stop"}, nil
}

func (f *fakeProvider) Name() string              { return f.name }
func (f *fakeProvider) Model() string             { return "fake-model" }
func (f *fakeProvider) SupportsAttachments() bool { return f.attach }

type harness struct {
	svc      *Service
	fake     *fakeProvider
	built    int
	events   []llm.LLMCallEvent
	lastConf llm.ProviderConfig
}

func newHarness(fake *fakeProvider, opts ...Option) *harness {
	h := &harness{fake: fake}
	opts = append([]Option{
		WithProviderFactory(func(id llm.ID, cfg llm.ProviderConfig) (llm.Provider, error) {
			h.built++
			h.lastConf = cfg
			return fake, nil
		}),
		WithObserver(llm.ObserverFunc(func(_ context.Context, ev llm.LLMCallEvent) {
			h.events = append(h.events, ev)
		})),
	}, opts...)
	h.svc = New(opts...)
	return h
}

func creds(id llm.ID) Credentials {
	return Credentials{Provider: id, Model: "m", APIKey: "sk-test-123456"}
}

func requireKind(t *testing.T, err error, kind aierr.Kind) *aierr.Error {
	t.Helper()
	var e *aierr.Error
	require.True(t, errors.As(err, &e), "expected *aierr.Error, got %T %v", err, err)
	assert.Equal(t, kind, e.Kind, e.Message)
	return e
}

func TestTestConnection(t *testing.T) {
	tests := []struct {
		reply string
		want  bool
	}{
		{"1", true},
		{"  1\n", true},
		{"The answer is 1.", true},
		{"one", false},
		{"", false},
	}
	for _, tt := range tests {
		h := newHarness(&fakeProvider{name: "ollama", reply: tt.reply})
		ok, err := h.svc.TestConnection(context.Background(), creds(llm.Ollama))
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, "reply %q", tt.reply)
	}
}

func TestTestConnection_Request(t *testing.T) {
	h := newHarness(&fakeProvider{name: "anthropic", reply: "1"})
	_, err := h.svc.TestConnection(context.Background(), Credentials{Provider: llm.Anthropic, Model: "claude", APIKey: "k", BaseURL: "https://proxy.example"})
	require.NoError(t, err)

	require.Len(t, h.fake.requests, 1)
	req := h.fake.requests[0]
	require.Len(t, req.Messages, 1)
	assert.Equal(t, `Respond with only the number "1".`, req.Messages[0].Content)
	assert.Nil(t, req.JSONSchema)
	assert.Equal(t, llm.ProviderConfig{APIKey: "k", BaseURL: "https://proxy.example", Model: "claude", Timeout: TestConnectionTimeout}, h.lastConf)

	require.Len(t, h.events, 1)
	assert.Equal(t, "test-connection", h.events[0].Operation)
}

func TestTestConnection_Timeout(t *testing.T) {
	h := newHarness(&fakeProvider{name: "openai", block: true})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ok, err := h.svc.TestConnection(ctx, creds(llm.OpenAI))
	assert.False(t, ok)
	e := requireKind(t, err, aierr.UpstreamUnavailable)
	assert.Contains(t, e.Message, "AI Provider Error")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTestConnection_CapsUnboundedContext(t *testing.T) {
	h := newHarness(&fakeProvider{name: "openai", reply: "1"})
	started := time.Now()

	_, err := h.svc.TestConnection(context.Background(), creds(llm.OpenAI))
	require.NoError(t, err)

	require.False(t, h.fake.deadline.IsZero(), "provider should see a deadline")
	assert.WithinDuration(t, started.Add(30*time.Second), h.fake.deadline, 2*time.Second)
}

func TestTestConnection_KeepsEarlierCallerDeadline(t *testing.T) {
	h := newHarness(&fakeProvider{name: "openai", reply: "1"})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	want, _ := ctx.Deadline()

	_, err := h.svc.TestConnection(ctx, creds(llm.OpenAI))
	require.NoError(t, err)
	assert.Equal(t, want, h.fake.deadline)
}

func TestTestConnection_TransportError(t *testing.T) {
	h := newHarness(&fakeProvider{name: "ollama", err: &llm.ProviderError{Provider: "ollama", Err: errors.New("connection refused")}})
	_, err := h.svc.TestConnection(context.Background(), creds(llm.Ollama))
	e := requireKind(t, err, aierr.UpstreamUnavailable)
	assert.Contains(t, e.Message, "connection refused")
}

func TestTestConnection_MissingProvider(t *testing.T) {
	h := newHarness(&fakeProvider{})
	_, err := h.svc.TestConnection(context.Background(), Credentials{})
	requireKind(t, err, aierr.BadRequest)
	assert.Zero(t, h.built)
}

func pdfPayload(n int) FilePayload {
	return FilePayload{Name: "cv.pdf", Data: base64.StdEncoding.EncodeToString(make([]byte, n))}
}

const modelAnswer = "```json\n" + `{
	"basics": {"name": "Ada Lovelace", "headline": "Analyst", "email": "ada@example.com"},
	"summary": {"title": "Summary", "columns": 1, "hidden": false, "content": "<p>First programmer.</p>"},
	"sections": {"skills": {"title": "Skills", "columns": 1, "hidden": false, "items": [
		{"id": "s1", "hidden": false, "icon": "", "name": "Mathematics", "proficiency": "Expert", "level": 5, "keywords": []}
	]}},
	"picture": {"url": "https://tracker.example/pixel.png", "size": 512},
	"metadata": {"template": "injected"},
	"customSections": [{"id": "x", "title": "Injected", "columns": 1, "hidden": false, "items": []}]
}` + "\n```"

func TestParseDocument_PDF(t *testing.T) {
	h := newHarness(&fakeProvider{name: "gemini", attach: true, reply: modelAnswer})

	d, err := h.svc.ParseDocument(context.Background(), creds(llm.Gemini), pdfPayload(128), MediaPDF)
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", d.Basics.Name)
	require.Len(t, d.Sections.Skills.Items, 1)
	assert.Equal(t, 5, d.Sections.Skills.Items[0].Level)
	assert.Equal(t, resume.DefaultPicture(), d.Picture)
	assert.Equal(t, resume.DefaultMetadata(), d.Metadata)
	assert.Empty(t, d.CustomSections)

	require.Len(t, h.fake.requests, 1)
	req := h.fake.requests[0]
	require.Len(t, req.Messages, 2)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, prompts.PDF().System, req.Messages[0].Content)
	assert.Equal(t, prompts.PDF().User, req.Messages[1].Content)

	att := req.Messages[1].Attachments
	require.Len(t, att, 1)
	assert.Equal(t, "cv.pdf", att[0].Filename)
	assert.Equal(t, "application/pdf", att[0].MediaType)
	assert.Len(t, att[0].Data, 128)

	props := req.JSONSchema["properties"].(map[string]any)
	assert.NotContains(t, props, "metadata")
	assert.NotContains(t, props, "picture")
	assert.Contains(t, props, "sections")

	require.Len(t, h.events, 1)
	assert.Equal(t, "parse-pdf", h.events[0].Operation)
	assert.Equal(t, 128, h.events[0].Request.AttachmentBytes)
}

func TestParseDocument_Word(t *testing.T) {
	for _, media := range []MediaType{MediaDOC, MediaDOCX} {
		h := newHarness(&fakeProvider{name: "openai", attach: true, reply: `{"basics": {"name": "Grace"}}`})
		file := FilePayload{Name: "cv.docx", Data: base64.StdEncoding.EncodeToString([]byte("PK"))}

		d, err := h.svc.ParseDocument(context.Background(), creds(llm.OpenAI), file, media)
		require.NoError(t, err)
		assert.Equal(t, "Grace", d.Basics.Name)

		req := h.fake.requests[0]
		assert.Equal(t, prompts.DOCX().System, req.Messages[0].Content)
		assert.Equal(t, string(media), req.Messages[1].Attachments[0].MediaType)
	}
}

func TestParseDocument_GateRunsFirst(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		file  FilePayload
		media MediaType
	}{
		{"ineligible provider", creds(llm.Anthropic), pdfPayload(10), MediaPDF},
		{"siliconflow", creds(llm.SiliconFlow), pdfPayload(10), MediaDOCX},
		{"openai proxy", Credentials{Provider: llm.OpenAI, APIKey: "k", BaseURL: "https://proxy.example/v1"}, pdfPayload(10), MediaPDF},
		{"too large", creds(llm.Gemini), pdfPayload(policy.MaxFileSize + 1), MediaPDF},
		{"bad base64", creds(llm.Gemini), FilePayload{Name: "x", Data: "%%%"}, MediaPDF},
		{"media type", creds(llm.Gemini), pdfPayload(10), MediaType("text/plain")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(&fakeProvider{name: "x", attach: true, reply: "{}"})
			_, err := h.svc.ParseDocument(context.Background(), tt.creds, tt.file, tt.media)
			requireKind(t, err, aierr.BadRequest)
			assert.Zero(t, h.built, "no provider may be built")
			assert.Empty(t, h.fake.requests)
		})
	}
}

func TestParseDocument_MissingProvider(t *testing.T) {
	for _, media := range []MediaType{MediaPDF, MediaDOC, MediaDOCX} {
		h := newHarness(&fakeProvider{attach: true})
		var err error
		require.NotPanics(t, func() {
			_, err = h.svc.ParseDocument(context.Background(), Credentials{Model: "m", APIKey: "k"}, pdfPayload(16), media)
		})
		e := requireKind(t, err, aierr.BadRequest)
		assert.Contains(t, e.Message, "provider is required")
		assert.Zero(t, h.built)
	}
}

func TestProviderTimeoutPerOperation(t *testing.T) {
	h := newHarness(&fakeProvider{name: "gemini", attach: true, reply: modelAnswer})
	_, err := h.svc.ParseDocument(context.Background(), creds(llm.Gemini), pdfPayload(16), MediaPDF)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ParseTimeout, h.lastConf.Timeout)
	assert.Zero(t, h.lastConf.MaxRetries)

	h = newHarness(&fakeProvider{name: "gemini", reply: "Better."})
	_, err = h.svc.ImproveText(context.Background(), creds(llm.Gemini), ImproveInput{Content: "ok"})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ImproveTimeout, h.lastConf.Timeout)

	h = newHarness(&fakeProvider{name: "gemini", reply: "Better."}, WithImproveTimeout(0))
	_, err = h.svc.ImproveText(context.Background(), creds(llm.Gemini), ImproveInput{Content: "ok"})
	require.NoError(t, err)
	assert.Equal(t, llm.DefaultProviderConfig().Timeout, h.lastConf.Timeout)
}

func TestParseDocument_ExactlyMaxSize(t *testing.T) {
	h := newHarness(&fakeProvider{name: "gemini", attach: true, reply: "{}"})
	_, err := h.svc.ParseDocument(context.Background(), creds(llm.Gemini), pdfPayload(policy.MaxFileSize), MediaPDF)
	require.NoError(t, err)
}

func TestParseDocument_Failures(t *testing.T) {
	tests := []struct {
		name    string
		fake    *fakeProvider
		kind    aierr.Kind
		message string
	}{
		{
			name:    "bad gateway",
			fake:    &fakeProvider{name: "openai", attach: true, err: &llm.ProviderError{Provider: "openai", StatusCode: 502, Err: errors.New("gateway")}},
			kind:    aierr.UpstreamUnavailable,
			message: aierr.BadGatewayMessage,
		},
		{
			name:    "provider error",
			fake:    &fakeProvider{name: "gemini", attach: true, err: &llm.ProviderError{Provider: "gemini", StatusCode: 429, Err: errors.New("quota exceeded")}},
			kind:    aierr.UpstreamUnavailable,
			message: "quota exceeded",
		},
		{
			name:    "not an object",
			fake:    &fakeProvider{name: "gemini", attach: true, reply: `["a"]`},
			kind:    aierr.InternalFailure,
			message: "formErrors",
		},
		{
			name: "no attachment support",
			fake: &fakeProvider{name: "gemini", attach: false, reply: "{}"},
			kind: aierr.BadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.fake)
			_, err := h.svc.ParseDocument(context.Background(), creds(llm.Gemini), pdfPayload(8), MediaPDF)
			e := requireKind(t, err, tt.kind)
			assert.Contains(t, e.Message, tt.message)
		})
	}
}

func TestImproveText(t *testing.T) {
	h := newHarness(&fakeProvider{name: "openai", reply: "```html\n<p>Led a team of <strong>5</strong>.</p>\n```"})

	out, err := h.svc.ImproveText(context.Background(), creds(llm.OpenAI), ImproveInput{Content: "led team of 5"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Led a team of <strong>5</strong>.</p>", out)

	req := h.fake.requests[0]
	require.Len(t, req.Messages, 2)
	system := req.Messages[0].Content
	assert.Contains(t, system, "led team of 5")
	assert.Equal(t, 2, strings.Count(system, prompts.NotProvided))
	assert.Equal(t, "Please improve the content as instructed in the system prompt.", req.Messages[1].Content)
}

func TestImproveText_PlainReply(t *testing.T) {
	h := newHarness(&fakeProvider{name: "ollama", reply: "Led a team.\n\nShipped v2."})
	out, err := h.svc.ImproveText(context.Background(), creds(llm.Ollama), ImproveInput{Content: "x", JobDescription: "Go", Instructions: "short"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Led a team.</p><p>Shipped v2.</p>", out)
	assert.NotContains(t, h.fake.requests[0].Messages[0].Content, prompts.NotProvided)
}

func TestImproveText_Empty(t *testing.T) {
	for _, reply := range []string{"", "   ", "```\n```"} {
		h := newHarness(&fakeProvider{name: "openai", reply: reply})
		_, err := h.svc.ImproveText(context.Background(), creds(llm.OpenAI), ImproveInput{Content: "x"})
		e := requireKind(t, err, aierr.UpstreamUnavailable)
		assert.Equal(t, "failed to improve content", e.Message)
	}

	h := newHarness(&fakeProvider{name: "openai", reply: "x"})
	_, err := h.svc.ImproveText(context.Background(), creds(llm.OpenAI), ImproveInput{})
	requireKind(t, err, aierr.BadRequest)
}

func TestImport_AIWithoutProvider(t *testing.T) {
	h := newHarness(&fakeProvider{attach: true})
	_, err := h.svc.Import(context.Background(), ImportRequest{
		Type:        importer.TypePDF,
		Name:        "cv.pdf",
		Data:        []byte("%PDF"),
		Credentials: &Credentials{APIKey: "k"},
	})
	requireKind(t, err, aierr.BadRequest)
	assert.Zero(t, h.built)
}

func TestImport(t *testing.T) {
	h := newHarness(&fakeProvider{name: "gemini", attach: true, reply: `{"basics": {"name": "From PDF"}}`})
	ctx := context.Background()

	d, err := h.svc.Import(ctx, ImportRequest{Type: importer.TypeJSONResume, Name: "r.json", Data: []byte(`{"basics": {"name": "From JSON"}}`)})
	require.NoError(t, err)
	assert.Equal(t, "From JSON", d.Basics.Name)
	assert.Zero(t, h.built)

	_, err = h.svc.Import(ctx, ImportRequest{Type: importer.TypeReactiveResume, Data: []byte(`[]`)})
	requireKind(t, err, aierr.BadRequest)

	_, err = h.svc.Import(ctx, ImportRequest{Type: importer.TypePDF, Data: []byte("%PDF")})
	e := requireKind(t, err, aierr.BadRequest)
	assert.ErrorIs(t, e, ErrAIDisabled)

	c := creds(llm.Gemini)
	d, err = h.svc.Import(ctx, ImportRequest{Type: importer.TypeDOCX, Name: "cv.doc", Data: []byte("DOC"), MediaType: MediaDOC, Credentials: &c})
	require.NoError(t, err)
	assert.Equal(t, "From PDF", d.Basics.Name)
	att := h.fake.requests[0].Messages[1].Attachments[0]
	assert.Equal(t, string(MediaDOC), att.MediaType)
	assert.Equal(t, []byte("DOC"), att.Data)
}
