// Package llm wraps the OpenAI-compatible chat and embedding APIs behind a
// sealed set of providers. Provider selection happens once at construction;
// mock fallbacks are decided by the caller from the returned error.
package llm

import (
	"time"

	"github.com/hivehr/hivehr/internal/domain"
)

// ChatProvider identifies a supported chat backend
type ChatProvider string

const (
	ChatProviderOpenAI ChatProvider = "openai"
	ChatProviderGroq   ChatProvider = "groq"
	ChatProviderOllama ChatProvider = "ollama"
)

// EmbeddingProvider identifies a supported embedding backend
type EmbeddingProvider string

const (
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
	EmbeddingProviderOllama EmbeddingProvider = "ollama"
)

const (
	DefaultChatModel      = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-3-small"

	// EmbeddingDimensions is fixed regardless of backend; the policy_chunks
	// vector column is declared with this width.
	EmbeddingDimensions = 1536

	// DefaultTimeout bounds every provider HTTP call.
	DefaultTimeout = 30 * time.Second

	groqBaseURL          = "https://api.groq.com/openai/v1"
	defaultOllamaBaseURL = "http://localhost:11434/v1"
)

// Config selects and parameterizes the chat and embedding backends for one
// organization (or the process defaults).
type Config struct {
	ChatProvider      ChatProvider
	ChatModel         string
	EmbeddingProvider EmbeddingProvider
	EmbeddingModel    string
	APIKey            string
	BaseURL           string // used by the ollama provider
	Timeout           time.Duration
}

func (c Config) withDefaults() Config {
	if c.ChatProvider == "" {
		c.ChatProvider = ChatProviderOpenAI
	}
	if c.ChatModel == "" {
		c.ChatModel = DefaultChatModel
	}
	if c.EmbeddingProvider == "" {
		c.EmbeddingProvider = EmbeddingProviderOpenAI
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = DefaultEmbeddingModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// FromAIConfig merges an organization's stored AI config over the process
// defaults. A nil aiConfig returns the defaults unchanged.
func FromAIConfig(defaults Config, aiConfig *domain.AIConfig) Config {
	cfg := defaults
	if aiConfig == nil {
		return cfg.withDefaults()
	}
	if aiConfig.ChatProvider != "" {
		cfg.ChatProvider = ChatProvider(aiConfig.ChatProvider)
	}
	if aiConfig.ChatModel != "" {
		cfg.ChatModel = aiConfig.ChatModel
	}
	if aiConfig.EmbeddingProvider != "" {
		cfg.EmbeddingProvider = EmbeddingProvider(aiConfig.EmbeddingProvider)
	}
	if aiConfig.EmbeddingModel != "" {
		cfg.EmbeddingModel = aiConfig.EmbeddingModel
	}
	if aiConfig.APIKey != "" {
		cfg.APIKey = aiConfig.APIKey
	}
	if aiConfig.BaseURL != "" {
		cfg.BaseURL = aiConfig.BaseURL
	}
	return cfg.withDefaults()
}
