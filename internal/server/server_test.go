package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonyy2018/rresume/pkg/ai"
	"github.com/jasonyy2018/rresume/pkg/llm"
	"github.com/jasonyy2018/rresume/pkg/resume"
)

type stubProvider struct {
	reply string
	err   error
	calls int
}

func (p *stubProvider) Execute(_ context.Context, _ llm.Request) (*llm.Response, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Content: p.reply, Model: "stub"}, nil
}

func (p *stubProvider) Name() string              { return "stub" }
func (p *stubProvider) Model() string             { return "stub" }
func (p *stubProvider) SupportsAttachments() bool { return true }

func newTestServer(p *stubProvider) *Server {
	svc := ai.New(ai.WithProviderFactory(func(llm.ID, llm.ProviderConfig) (llm.Provider, error) {
		return p, nil
	}))
	return New(svc, DefaultConfig())
}

func post(t *testing.T, s *Server, path string, body any) (int, []byte) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decodeError(t *testing.T, raw []byte) errorResponse {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(raw, &e), string(raw))
	return e
}

func TestHealth(t *testing.T) {
	s := newTestServer(&stubProvider{})
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTestConnection(t *testing.T) {
	s := newTestServer(&stubProvider{reply: "1"})
	status, body := post(t, s, "/api/ai/test-connection", map[string]string{
		"provider": "openai", "model": "gpt-4o", "apiKey": "sk-x",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "true", string(body))
}

func TestInvalidPayload(t *testing.T) {
	s := newTestServer(&stubProvider{})
	status, body := post(t, s, "/api/ai/test-connection", map[string]string{"provider": "acme"})
	assert.Equal(t, http.StatusBadRequest, status)
	e := decodeError(t, body)
	assert.Equal(t, "BAD_REQUEST", e.Code)
	assert.Contains(t, e.Message, "invalid payload")
}

func TestParsePDF_PolicyRejected(t *testing.T) {
	p := &stubProvider{}
	s := newTestServer(p)
	status, body := post(t, s, "/api/ai/parse-pdf", map[string]any{
		"provider": "anthropic", "model": "claude", "apiKey": "k",
		"file": map[string]string{"name": "cv.pdf", "data": base64.StdEncoding.EncodeToString([]byte("%PDF"))},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decodeError(t, body).Message, "does not support PDF")
	assert.Zero(t, p.calls)
}

func TestParse_MissingProvider(t *testing.T) {
	file := map[string]string{"name": "cv.pdf", "data": base64.StdEncoding.EncodeToString([]byte("%PDF"))}
	tests := []struct {
		name string
		path string
		body map[string]any
	}{
		{"pdf", "/api/ai/parse-pdf", map[string]any{"model": "m", "apiKey": "k", "file": file}},
		{"docx", "/api/ai/parse-docx", map[string]any{"model": "m", "apiKey": "k", "file": file, "mediaType": "application/msword"}},
		{"import", "/api/import", map[string]any{"type": "pdf", "file": file, "credentials": map[string]string{"model": "m", "apiKey": "k"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProvider{}
			status, body := post(t, newTestServer(p), tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, status, string(body))
			e := decodeError(t, body)
			assert.Equal(t, "BAD_REQUEST", e.Code)
			assert.Contains(t, e.Message, "provider is required")
			assert.Zero(t, p.calls)
		})
	}
}

func TestParsePDF(t *testing.T) {
	s := newTestServer(&stubProvider{reply: "```json\n{\"basics\":{\"name\":\"Ada\"}}\n```"})
	status, body := post(t, s, "/api/ai/parse-pdf", map[string]any{
		"provider": "gemini", "model": "gemini-2.5-flash", "apiKey": "k",
		"file": map[string]string{"name": "cv.pdf", "data": base64.StdEncoding.EncodeToString([]byte("%PDF"))},
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var d resume.Data
	require.NoError(t, json.Unmarshal(body, &d))
	assert.Equal(t, "Ada", d.Basics.Name)
	assert.Equal(t, resume.DefaultMetadata(), d.Metadata)
}

func TestParseDOCX_RequiresWordMediaType(t *testing.T) {
	s := newTestServer(&stubProvider{})
	status, _ := post(t, s, "/api/ai/parse-docx", map[string]any{
		"provider": "gemini", "apiKey": "k", "mediaType": "application/pdf",
		"file": map[string]string{"name": "cv.docx", "data": "AAAA"},
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestParse_ModelAnswerInvalid(t *testing.T) {
	s := newTestServer(&stubProvider{reply: "[]"})
	status, body := post(t, s, "/api/ai/parse-pdf", map[string]any{
		"provider": "gemini", "apiKey": "k",
		"file": map[string]string{"name": "cv.pdf", "data": "AAAA"},
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	e := decodeError(t, body)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", e.Code)
	assert.NotNil(t, e.Data)
}

func TestImproveContent(t *testing.T) {
	s := newTestServer(&stubProvider{reply: "Delivered faster releases."})
	status, body := post(t, s, "/api/ai/improve-content", map[string]string{
		"provider": "openai", "apiKey": "k", "content": "did releases",
	})
	require.Equal(t, http.StatusOK, status)
	var out string
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "<p>Delivered faster releases.</p>", out)
}

func TestImproveContent_UpstreamFailure(t *testing.T) {
	s := newTestServer(&stubProvider{err: &llm.ProviderError{Provider: "stub", StatusCode: http.StatusBadGateway, Err: errors.New("gateway")}})
	status, body := post(t, s, "/api/ai/improve-content", map[string]string{
		"provider": "openai", "apiKey": "k", "content": "x",
	})
	assert.Equal(t, http.StatusBadGateway, status)
	e := decodeError(t, body)
	assert.Equal(t, "BAD_GATEWAY", e.Code)
	assert.Contains(t, e.Message, "Bad Gateway (502)")
}

func TestImport_JSONResume(t *testing.T) {
	s := newTestServer(&stubProvider{})
	doc := `{"basics":{"name":"Grace Hopper","label":"Rear Admiral"}}`
	status, body := post(t, s, "/api/import", map[string]any{
		"type": "json-resume-json",
		"file": map[string]string{"name": "resume.json", "data": base64.StdEncoding.EncodeToString([]byte(doc))},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	var d resume.Data
	require.NoError(t, json.Unmarshal(body, &d))
	assert.Equal(t, "Grace Hopper", d.Basics.Name)
}

func TestImport_Rejections(t *testing.T) {
	s := newTestServer(&stubProvider{})
	tests := []struct {
		name string
		body map[string]any
	}{
		{"unknown type", map[string]any{"type": "linkedin", "file": map[string]string{"data": ""}}},
		{"bad base64", map[string]any{"type": "json-resume-json", "file": map[string]string{"data": "!!"}}},
		{"ai without credentials", map[string]any{"type": "pdf", "file": map[string]string{"data": "AAAA"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, s, "/api/import", tt.body)
			assert.Equal(t, http.StatusBadRequest, status, string(body))
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(&stubProvider{})
	status, body := post(t, s, "/api/nope", map[string]string{})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, body).Code)
}
