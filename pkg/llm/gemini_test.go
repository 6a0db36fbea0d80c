package llm

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGeminiSchema(t *testing.T) {
	js := map[string]any{
		"type":                 "object",
		"description":          "A resume.",
		"additionalProperties": false,
		"required":             []string{"name", "level", "tags"},
		"properties": map[string]any{
			"name":  map[string]any{"type": "string"},
			"level": map[string]any{"type": []any{"integer", "null"}},
			"kind":  map[string]any{"type": "string", "enum": []any{"a", "b"}},
			"tags":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	}

	s := GeminiSchema(js)
	if s.Type != genai.TypeObject || s.Description != "A resume." {
		t.Fatalf("root = %+v", s)
	}
	if !reflect.DeepEqual(s.Required, []string{"level", "name", "tags"}) {
		t.Errorf("required = %v", s.Required)
	}
	if lvl := s.Properties["level"]; lvl.Type != genai.TypeInteger || !lvl.Nullable {
		t.Errorf("level = %+v", lvl)
	}
	if k := s.Properties["kind"]; k.Format != "enum" || !reflect.DeepEqual(k.Enum, []string{"a", "b"}) {
		t.Errorf("kind = %+v", k)
	}
	if tags := s.Properties["tags"]; tags.Type != genai.TypeArray || tags.Items.Type != genai.TypeString {
		t.Errorf("tags = %+v", tags)
	}
	if GeminiSchema(nil) != nil {
		t.Error("nil schema should convert to nil")
	}
}

func TestGeminiStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"rest", fmt.Errorf("call: %w", &googleapi.Error{Code: http.StatusBadGateway}), http.StatusBadGateway},
		{"grpc unauthenticated", status.Error(codes.Unauthenticated, "bad key"), http.StatusUnauthorized},
		{"grpc quota", status.Error(codes.ResourceExhausted, "quota"), http.StatusTooManyRequests},
		{"plain", errors.New("dial tcp"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := geminiStatus(tt.err); got != tt.want {
				t.Errorf("geminiStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGeminiEndpoint(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://generativelanguage.googleapis.com/v1beta", "generativelanguage.googleapis.com:443"},
		{"https://generativelanguage.googleapis.com/", "generativelanguage.googleapis.com:443"},
		{"http://localhost/v1", "localhost:80"},
		{"https://proxy.example:8443/gemini", "proxy.example:8443"},
		{"generativelanguage.googleapis.com:443", "generativelanguage.googleapis.com:443"},
		{"proxy.example", "proxy.example:443"},
	}
	for _, tt := range tests {
		if got := GeminiEndpoint(tt.in); got != tt.want {
			t.Errorf("GeminiEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
