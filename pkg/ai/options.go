// Package ai runs the AI side of document import: connectivity checks,
// PDF and Word parsing into resume documents, and content improvement.
package ai

import (
	"time"

	"github.com/jasonyy2018/rresume/pkg/llm"
)

// TestConnectionTimeout bounds a connectivity check, on top of the caller's context.
const TestConnectionTimeout = 30 * time.Second

// ProviderFactory builds the client for one request.
type ProviderFactory func(id llm.ID, cfg llm.ProviderConfig) (llm.Provider, error)

// Config holds Service configuration.
type Config struct {
	NewProvider ProviderFactory
	Observer    llm.LLMObserver

	// Upper bounds for model calls. The caller's context may end them sooner.
	ParseTimeout   time.Duration
	ImproveTimeout time.Duration

	// Generation settings
	ParseMaxTokens   int
	ImproveMaxTokens int
	Temperature      float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		NewProvider:      llm.NewProvider,
		Observer:         llm.LogObserver{},
		ParseTimeout:     10 * time.Minute,
		ImproveTimeout:   2 * time.Minute,
		ParseMaxTokens:   16384,
		ImproveMaxTokens: 4096,
		Temperature:      0.2,
	}
}

// Option configures a Service.
type Option func(*Config)

// WithProviderFactory replaces the provider registry, mainly for tests.
func WithProviderFactory(f ProviderFactory) Option {
	return func(c *Config) {
		c.NewProvider = f
	}
}

// WithObserver sets the observer notified after every model call.
// A nil observer disables notifications.
func WithObserver(obs llm.LLMObserver) Option {
	return func(c *Config) {
		c.Observer = obs
	}
}

// WithParseTimeout caps document parsing calls.
func WithParseTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ParseTimeout = d
	}
}

// WithImproveTimeout caps content improvement calls.
func WithImproveTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ImproveTimeout = d
	}
}

// WithTemperature sets the sampling temperature for parse and improve calls.
func WithTemperature(t float64) Option {
	return func(c *Config) {
		c.Temperature = t
	}
}
