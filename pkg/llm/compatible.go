package llm

import (
	"fmt"

	"github.com/openai/openai-go"
)

// CompatibleProvider talks to a hosted OpenAI-compatible endpoint
// (Vercel AI Gateway, Cerebras, SiliconFlow). These gateways do not
// reliably accept file parts, so attachments are refused locally.
type CompatibleProvider struct {
	*OpenAIProvider
	baseURL string
}

// NewCompatibleProvider creates a provider for id. An empty cfg.BaseURL
// falls back to defaultBaseURL.
func NewCompatibleProvider(id ID, defaultBaseURL string, cfg ProviderConfig) (*CompatibleProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key required", id)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = GetDefaultModel(id)
	}

	return &CompatibleProvider{
		OpenAIProvider: &OpenAIProvider{
			client: openai.NewClient(openAIOptions(cfg, baseURL)...),
			name:   id.String(),
			model:  model,
		},
		baseURL: baseURL,
	}, nil
}

// BaseURL returns the endpoint requests are sent to.
func (p *CompatibleProvider) BaseURL() string {
	return p.baseURL
}

var _ Provider = (*CompatibleProvider)(nil)
