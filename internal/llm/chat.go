package llm

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/hivehr/hivehr/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// Message roles, mirroring the OpenAI wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a structured request from the model to invoke a named tool.
// Arguments is the raw JSON argument object as produced by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ChatMessage is one turn of model context
type ChatMessage struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall // assistant turns that requested tools
	ToolCallID string     // tool turns: the call this result answers
}

// Tool declares a callable operation to the model
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON schema object
}

// ChatResponse is the model's reply to one completion call. Either Content
// is the final text, or ToolCalls is non-empty and the caller must execute
// them and call again.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// ChatClient is the single-shot and streaming chat completion interface the
// agent loop consumes.
type ChatClient interface {
	// Complete submits the full message list plus tool catalog and returns
	// the model's next message.
	Complete(ctx context.Context, messages []ChatMessage, tools []Tool) (*ChatResponse, error)

	// Stream behaves like Complete but emits content tokens through onToken
	// as they are produced. Tool-call fragments are accumulated internally
	// and returned on the final response, not streamed.
	Stream(ctx context.Context, messages []ChatMessage, tools []Tool, onToken func(token string) error) (*ChatResponse, error)
}

// NewChatClient resolves the configured chat provider once and returns a
// client for it. A configuration-class DomainError means the caller should
// run in mock mode; it is never returned from a later call.
func NewChatClient(cfg Config) (ChatClient, error) {
	cfg = cfg.withDefaults()

	var clientCfg openai.ClientConfig
	switch cfg.ChatProvider {
	case ChatProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, domain.ErrMissingProviderKey
		}
		clientCfg = openai.DefaultConfig(cfg.APIKey)
	case ChatProviderGroq:
		if cfg.APIKey == "" {
			return nil, domain.ErrMissingProviderKey
		}
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		clientCfg.BaseURL = groqBaseURL
	case ChatProviderOllama:
		// Ollama serves an OpenAI-compatible API and needs no key.
		clientCfg = openai.DefaultConfig("ollama")
		clientCfg.BaseURL = defaultOllamaBaseURL
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
	default:
		return nil, domain.ErrUnknownChatProvider
	}

	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &chatClient{
		api:   openai.NewClientWithConfig(clientCfg),
		model: cfg.ChatModel,
	}, nil
}

type chatClient struct {
	api   *openai.Client
	model string
}

func (c *chatClient) Complete(ctx context.Context, messages []ChatMessage, tools []Tool) (*ChatResponse, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
		Tools:    toOpenAITools(tools),
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeProviderFailure, "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeProviderFailure, "chat completion returned no choices")
	}

	msg := resp.Choices[0].Message
	out := &ChatResponse{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

func (c *chatClient) Stream(ctx context.Context, messages []ChatMessage, tools []Tool, onToken func(string) error) (*ChatResponse, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(messages),
		Tools:    toOpenAITools(tools),
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeProviderFailure, "chat completion stream failed", err)
	}
	defer stream.Close()

	out := &ChatResponse{}
	// Tool-call fragments arrive indexed; arguments build up across deltas.
	calls := make(map[int]*ToolCall)
	maxIndex := -1

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeProviderFailure, "chat completion stream failed", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta
		if delta.Content != "" {
			out.Content += delta.Content
			if err := onToken(delta.Content); err != nil {
				return nil, err
			}
		}
		for _, tc := range delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			call, ok := calls[idx]
			if !ok {
				call = &ToolCall{}
				calls[idx] = call
				if idx > maxIndex {
					maxIndex = idx
				}
			}
			if tc.ID != "" {
				call.ID = tc.ID
			}
			if tc.Function.Name != "" {
				call.Name = tc.Function.Name
			}
			call.Arguments += tc.Function.Arguments
		}
	}

	for i := 0; i <= maxIndex; i++ {
		if call, ok := calls[i]; ok {
			out.ToolCalls = append(out.ToolCalls, *call)
		}
	}
	return out, nil
}

func toOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func toOpenAITools(tools []Tool) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}
