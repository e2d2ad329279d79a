package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/hivehr/hivehr/internal/domain"
	"github.com/hivehr/hivehr/internal/llm"
)

// MaxToolRounds bounds the number of model calls per user turn. A model
// still requesting tools on the final round gets the fallback reply instead
// of another call, so every turn terminates.
const MaxToolRounds = 5

// processingLimitReply is sent when a turn exhausts its tool rounds.
const processingLimitReply = "I reached my processing limit for this request. Please try rephrasing your question or splitting it into smaller parts."

const systemPromptTemplate = `You are an AI HR assistant for %s. You help employees with HR-related questions and tasks.

Your capabilities:
- Check leave balances and submit leave requests
- Look up employee information
- Search and explain company HR policies
- Generate HR documents (resignation letters, experience letters, salary certificates, etc.)

Guidelines:
- Be professional, friendly, and concise.
- Always use the available tools to look up real data — never guess or make up numbers.
- When an employee asks about policies, use the search_policies tool first.
- If you cannot find the answer, say so honestly and suggest contacting HR directly.
- Protect employee privacy — only share information about the requesting employee.
- For leave requests, confirm the details with the employee before submitting.`

// Canned replies for mock mode, keyed by keyword bucket.
var mockReplies = map[string]string{
	"leave":    "I'd be happy to help with your leave balance! In mock mode, I can't access real data. Please configure an AI provider for full functionality. Your mock leave balance: Annual: 15 remaining, Sick: 10 remaining.",
	"policy":   "I can help you find policy information! In mock mode, I'm using canned responses. Please configure an AI provider for RAG-powered policy search.",
	"document": "I can generate HR documents for you! In mock mode, document generation is simulated. Please configure an AI provider for full functionality.",
	"resign":   "I understand you're considering resignation. In mock mode, I can guide you through the general process: 1) Submit a formal resignation letter, 2) Serve your notice period, 3) Complete handover. Please configure an AI provider for personalized assistance.",
	"default":  "Hello! I'm your AI HR assistant. I can help with leave management, policy questions, and document generation. In mock mode, my responses are limited. Please configure an AI provider for full functionality.",
}

// MessageStore is the conversation persistence surface the agent needs:
// durably append turns and rebuild ordered history.
type MessageStore interface {
	AppendMessage(ctx context.Context, conversationID string, role domain.MessageRole, content string, toolCalls []domain.ToolCallRecord) (*domain.Message, error)
	History(ctx context.Context, conversationID string) ([]*domain.Message, error)
}

// ToolExecutor is the tool catalog surface the agent drives.
type ToolExecutor interface {
	Definitions() []llm.Tool
	Execute(ctx context.Context, identity Identity, toolName, argumentsJSON string) string
}

// AgentReply is the outcome of one user turn.
type AgentReply struct {
	Response       string
	ToolCalls      []domain.ToolCallRecord // nil when no tools ran
	ConversationID string
}

// HRAgent drives the bounded tool-calling loop against the configured chat
// model, or answers with canned replies when no model is configured. One
// instance serves one organization's provider configuration; the calling
// layer serializes turns per conversation.
type HRAgent struct {
	chat     llm.ChatClient // nil means mock mode
	tools    ToolExecutor
	messages MessageStore
}

// NewHRAgent creates a new HRAgent instance. Pass a nil chat client to run
// in mock mode.
func NewHRAgent(chat llm.ChatClient, tools ToolExecutor, messages MessageStore) *HRAgent {
	return &HRAgent{
		chat:     chat,
		tools:    tools,
		messages: messages,
	}
}

// IsMock reports whether the agent answers from canned replies instead of a
// live model. Decided once at construction, never re-evaluated.
func (a *HRAgent) IsMock() bool {
	return a.chat == nil
}

// Chat processes one user message and returns the assistant's reply. The
// user message is persisted before any model work so history is never lost
// to a provider failure.
func (a *HRAgent) Chat(ctx context.Context, identity Identity, conversationID, userMessage, orgName string) (*AgentReply, error) {
	if _, err := a.messages.AppendMessage(ctx, conversationID, domain.RoleUser, userMessage, nil); err != nil {
		return nil, err
	}

	if a.IsMock() {
		reply := mockReply(userMessage)
		if _, err := a.messages.AppendMessage(ctx, conversationID, domain.RoleAssistant, reply, nil); err != nil {
			return nil, err
		}
		return &AgentReply{Response: reply, ConversationID: conversationID}, nil
	}

	messages, err := a.buildModelMessages(ctx, conversationID, orgName)
	if err != nil {
		return nil, err
	}

	reply, records, err := a.runToolLoop(ctx, identity, messages, loopHooks{})
	if err != nil {
		return nil, err
	}

	if _, err := a.messages.AppendMessage(ctx, conversationID, domain.RoleAssistant, reply, records); err != nil {
		return nil, err
	}
	return &AgentReply{Response: reply, ToolCalls: records, ConversationID: conversationID}, nil
}

// loopHooks carries the optional per-event callbacks of the streaming
// variant. The zero value runs the loop silently.
type loopHooks struct {
	onToken      func(token string) error
	onToolCall   func(tool string, arguments map[string]any) error
	onToolResult func(tool string, result any) error
}

// runToolLoop executes up to MaxToolRounds model calls, dispatching any
// requested tool calls between rounds. With an onToken hook present the
// model is driven through its streaming API; tool rounds typically produce
// no tokens.
func (a *HRAgent) runToolLoop(
	ctx context.Context,
	identity Identity,
	messages []llm.ChatMessage,
	hooks loopHooks,
) (string, []domain.ToolCallRecord, error) {
	catalog := a.tools.Definitions()
	var records []domain.ToolCallRecord

	for round := 1; round <= MaxToolRounds; round++ {
		var resp *llm.ChatResponse
		var err error
		if hooks.onToken != nil {
			resp, err = a.chat.Stream(ctx, messages, catalog, hooks.onToken)
		} else {
			resp, err = a.chat.Complete(ctx, messages, catalog)
		}
		if err != nil {
			return "", nil, err
		}

		if len(resp.ToolCalls) == 0 {
			return resp.Content, records, nil
		}

		// Echo the assistant's tool request back into context, then answer
		// each call with a tool message before the next round.
		messages = append(messages, llm.ChatMessage{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			arguments := parseToolArguments(tc.Arguments)
			if hooks.onToolCall != nil {
				if err := hooks.onToolCall(tc.Name, arguments); err != nil {
					return "", nil, err
				}
			}

			raw := a.tools.Execute(ctx, identity, tc.Name, tc.Arguments)
			result := parseToolResult(raw)
			records = append(records, domain.ToolCallRecord{
				Tool:      tc.Name,
				Arguments: arguments,
				Result:    result,
			})
			if hooks.onToolResult != nil {
				if err := hooks.onToolResult(tc.Name, result); err != nil {
					return "", nil, err
				}
			}

			messages = append(messages, llm.ChatMessage{
				Role:       llm.RoleTool,
				Content:    raw,
				ToolCallID: tc.ID,
			})
		}
	}

	log.Printf("agent turn exceeded %d tool rounds, replying with fallback", MaxToolRounds)
	if hooks.onToken != nil {
		if err := hooks.onToken(processingLimitReply); err != nil {
			return "", nil, err
		}
	}
	return processingLimitReply, records, nil
}

// buildModelMessages rebuilds model context from persisted history. Only
// user and assistant text turns are replayed; stored tool-call records are
// display metadata and never re-enter model context.
func (a *HRAgent) buildModelMessages(ctx context.Context, conversationID, orgName string) ([]llm.ChatMessage, error) {
	history, err := a.messages.History(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.ChatMessage, 0, len(history)+1)
	messages = append(messages, llm.ChatMessage{
		Role:    llm.RoleSystem,
		Content: fmt.Sprintf(systemPromptTemplate, orgName),
	})
	for _, msg := range history {
		switch msg.Role {
		case domain.RoleUser:
			messages = append(messages, llm.ChatMessage{Role: llm.RoleUser, Content: msg.Content})
		case domain.RoleAssistant:
			messages = append(messages, llm.ChatMessage{Role: llm.RoleAssistant, Content: msg.Content})
		}
	}
	return messages, nil
}

func mockReply(userMessage string) string {
	lower := strings.ToLower(userMessage)
	switch {
	case containsAny(lower, "leave", "vacation", "day off", "pto", "time off"):
		return mockReplies["leave"]
	case containsAny(lower, "policy", "rule", "guideline", "handbook"):
		return mockReplies["policy"]
	case containsAny(lower, "document", "letter", "certificate", "generate"):
		return mockReplies["document"]
	case containsAny(lower, "resign", "quit", "leaving"):
		return mockReplies["resign"]
	default:
		return mockReplies["default"]
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func parseToolArguments(raw string) map[string]any {
	args := make(map[string]any)
	if raw == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{"raw": raw}
	}
	return args
}

func parseToolResult(raw string) any {
	var result any
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return raw
	}
	return result
}
