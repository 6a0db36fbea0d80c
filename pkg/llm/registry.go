package llm

import (
	"os"
)

// ProviderFactory creates providers from config.
type ProviderFactory func(cfg ProviderConfig) (Provider, error)

// Default endpoints for providers that are reached through the
// OpenAI-compatible client.
const (
	CerebrasBaseURL        = "https://api.cerebras.ai/v1"
	SiliconFlowBaseURL     = "https://api.siliconflow.cn/v1"
	VercelAIGatewayBaseURL = "https://ai-gateway.vercel.sh/v1"
	OllamaBaseURL          = "http://localhost:11434"
)

type factories struct{}

func (factories) Ollama() ProviderFactory {
	return func(cfg ProviderConfig) (Provider, error) { return NewOllamaProvider(cfg) }
}

func (factories) OpenAI() ProviderFactory {
	return func(cfg ProviderConfig) (Provider, error) { return NewOpenAIProvider(cfg) }
}

func (factories) Gemini() ProviderFactory {
	return func(cfg ProviderConfig) (Provider, error) { return NewGeminiProvider(cfg) }
}

func (factories) Anthropic() ProviderFactory {
	return func(cfg ProviderConfig) (Provider, error) { return NewAnthropicProvider(cfg) }
}

func (factories) VercelAIGateway() ProviderFactory {
	return compatible(VercelAIGateway, VercelAIGatewayBaseURL)
}

func (factories) Cerebras() ProviderFactory {
	return compatible(Cerebras, CerebrasBaseURL)
}

func (factories) SiliconFlow() ProviderFactory {
	return compatible(SiliconFlow, SiliconFlowBaseURL)
}

func compatible(id ID, defaultBaseURL string) ProviderFactory {
	return func(cfg ProviderConfig) (Provider, error) {
		return NewCompatibleProvider(id, defaultBaseURL, cfg)
	}
}

// NewProvider creates the client for id. Every ID has exactly one construction rule.
func NewProvider(id ID, cfg ProviderConfig) (Provider, error) {
	return Match[ProviderFactory](id, factories{})(cfg)
}

type defaultModels struct{}

func (defaultModels) Ollama() string          { return "llama3.2" }
func (defaultModels) OpenAI() string          { return "gpt-4o" }
func (defaultModels) Gemini() string          { return "gemini-2.5-flash" }
func (defaultModels) Anthropic() string       { return "claude-sonnet-4-20250514" }
func (defaultModels) VercelAIGateway() string { return "openai/gpt-4o" }
func (defaultModels) Cerebras() string        { return "llama-3.3-70b" }
func (defaultModels) SiliconFlow() string     { return "Qwen/Qwen2.5-72B-Instruct" }

// GetDefaultModel returns the default model for a provider.
func GetDefaultModel(id ID) string {
	return Match[string](id, defaultModels{})
}

type envKeys struct{}

func (envKeys) Ollama() string          { return "" }
func (envKeys) OpenAI() string          { return "OPENAI_API_KEY" }
func (envKeys) Gemini() string          { return "GEMINI_API_KEY" }
func (envKeys) Anthropic() string       { return "ANTHROPIC_API_KEY" }
func (envKeys) VercelAIGateway() string { return "AI_GATEWAY_API_KEY" }
func (envKeys) Cerebras() string        { return "CEREBRAS_API_KEY" }
func (envKeys) SiliconFlow() string     { return "SILICONFLOW_API_KEY" }

// APIKeyEnv returns the environment variable conventionally holding the key
// for id, or "" when the provider needs none.
func APIKeyEnv(id ID) string {
	return Match[string](id, envKeys{})
}

// HasAPIKey checks if an API key environment variable is set for the given provider.
func HasAPIKey(id ID) bool {
	env := APIKeyEnv(id)
	return env != "" && os.Getenv(env) != ""
}

// DetectProvider auto-detects a provider based on available API keys.
// Priority: OpenAI > Gemini > Anthropic > the remaining hosted providers > ollama (no key needed)
func DetectProvider() (ID, string) {
	for _, id := range []ID{OpenAI, Gemini, Anthropic, VercelAIGateway, Cerebras, SiliconFlow} {
		if key := os.Getenv(APIKeyEnv(id)); key != "" {
			return id, key
		}
	}
	return Ollama, ""
}
