package llm

import (
	"testing"

	"github.com/hivehr/hivehr/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChatClient_OpenAIRequiresKey(t *testing.T) {
	_, err := NewChatClient(Config{ChatProvider: ChatProviderOpenAI})
	assert.ErrorIs(t, err, domain.ErrMissingProviderKey)
}

func TestNewChatClient_GroqRequiresKey(t *testing.T) {
	_, err := NewChatClient(Config{ChatProvider: ChatProviderGroq})
	assert.ErrorIs(t, err, domain.ErrMissingProviderKey)
}

func TestNewChatClient_OllamaNeedsNoKey(t *testing.T) {
	client, err := NewChatClient(Config{ChatProvider: ChatProviderOllama})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewChatClient_UnknownProvider(t *testing.T) {
	_, err := NewChatClient(Config{ChatProvider: ChatProvider("anthropic")})
	assert.ErrorIs(t, err, domain.ErrUnknownChatProvider)
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, ChatProviderOpenAI, cfg.ChatProvider)
	assert.Equal(t, DefaultChatModel, cfg.ChatModel)
	assert.Equal(t, EmbeddingProviderOpenAI, cfg.EmbeddingProvider)
	assert.Equal(t, DefaultEmbeddingModel, cfg.EmbeddingModel)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestFromAIConfig(t *testing.T) {
	defaults := Config{
		ChatProvider: ChatProviderOpenAI,
		APIKey:       "sk-process-default",
	}

	t.Run("NilUsesDefaults", func(t *testing.T) {
		cfg := FromAIConfig(defaults, nil)
		assert.Equal(t, ChatProviderOpenAI, cfg.ChatProvider)
		assert.Equal(t, "sk-process-default", cfg.APIKey)
	})

	t.Run("OrgOverrides", func(t *testing.T) {
		cfg := FromAIConfig(defaults, &domain.AIConfig{
			ChatProvider: "groq",
			ChatModel:    "llama-3.3-70b-versatile",
			APIKey:       "gsk-org-key",
		})
		assert.Equal(t, ChatProviderGroq, cfg.ChatProvider)
		assert.Equal(t, "llama-3.3-70b-versatile", cfg.ChatModel)
		assert.Equal(t, "gsk-org-key", cfg.APIKey)
		// Unset fields keep their defaults.
		assert.Equal(t, DefaultEmbeddingModel, cfg.EmbeddingModel)
	})
}

func TestToOpenAIMessages_ToolRoundTrip(t *testing.T) {
	messages := []ChatMessage{
		{Role: RoleSystem, Content: "You are an HR assistant."},
		{Role: RoleUser, Content: "How many vacation days do I have?"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{
			{ID: "call_1", Name: "check_leave_balance", Arguments: `{}`},
		}},
		{Role: RoleTool, ToolCallID: "call_1", Content: `{"balances":[]}`},
	}

	out := toOpenAIMessages(messages)
	require.Len(t, out, 4)
	assert.Equal(t, "system", out[0].Role)
	require.Len(t, out[2].ToolCalls, 1)
	assert.Equal(t, "check_leave_balance", out[2].ToolCalls[0].Function.Name)
	assert.Equal(t, "call_1", out[3].ToolCallID)
}

func TestToOpenAITools_Empty(t *testing.T) {
	assert.Nil(t, toOpenAITools(nil))
}
