package service

import (
	"context"

	"github.com/hivehr/hivehr/internal/domain"
)

// AgentEventType enumerates the streaming event kinds.
type AgentEventType string

const (
	EventToken      AgentEventType = "token"
	EventToolCall   AgentEventType = "tool_call"
	EventToolResult AgentEventType = "tool_result"
	EventDone       AgentEventType = "done"
	EventError      AgentEventType = "error"
)

// AgentEvent is one entry of the ordered stream a turn produces. Events for
// one tool call always arrive as tool_call followed by tool_result; done or
// error is always the final event.
type AgentEvent struct {
	Type           AgentEventType `json:"type"`
	Content        string         `json:"content,omitempty"`
	Tool           string         `json:"tool,omitempty"`
	Arguments      map[string]any `json:"arguments,omitempty"`
	Result         any            `json:"result,omitempty"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Message        string         `json:"message,omitempty"`
}

// ChatStream runs the same state machine as Chat but emits incremental
// events on the returned channel. The channel is closed after the terminal
// done or error event. The consumer must drain it; emission blocks until
// the consumer receives or ctx is cancelled.
func (a *HRAgent) ChatStream(ctx context.Context, identity Identity, conversationID, userMessage, orgName string) <-chan AgentEvent {
	events := make(chan AgentEvent)

	go func() {
		defer close(events)
		a.streamTurn(ctx, identity, conversationID, userMessage, orgName, events)
	}()

	return events
}

func (a *HRAgent) streamTurn(ctx context.Context, identity Identity, conversationID, userMessage, orgName string, events chan<- AgentEvent) {
	emit := func(ev AgentEvent) error {
		select {
		case events <- ev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	fail := func(err error) {
		_ = emit(AgentEvent{Type: EventError, Message: err.Error()})
	}

	if _, err := a.messages.AppendMessage(ctx, conversationID, domain.RoleUser, userMessage, nil); err != nil {
		fail(err)
		return
	}

	if a.IsMock() {
		reply := mockReply(userMessage)
		if _, err := a.messages.AppendMessage(ctx, conversationID, domain.RoleAssistant, reply, nil); err != nil {
			fail(err)
			return
		}
		if err := emit(AgentEvent{Type: EventToken, Content: reply}); err != nil {
			return
		}
		_ = emit(AgentEvent{Type: EventDone, ConversationID: conversationID})
		return
	}

	messages, err := a.buildModelMessages(ctx, conversationID, orgName)
	if err != nil {
		fail(err)
		return
	}

	hooks := loopHooks{
		onToken: func(token string) error {
			return emit(AgentEvent{Type: EventToken, Content: token})
		},
		onToolCall: func(tool string, arguments map[string]any) error {
			return emit(AgentEvent{Type: EventToolCall, Tool: tool, Arguments: arguments})
		},
		onToolResult: func(tool string, result any) error {
			return emit(AgentEvent{Type: EventToolResult, Tool: tool, Result: result})
		},
	}

	reply, records, err := a.runToolLoop(ctx, identity, messages, hooks)
	if err != nil {
		fail(err)
		return
	}

	if _, err := a.messages.AppendMessage(ctx, conversationID, domain.RoleAssistant, reply, records); err != nil {
		fail(err)
		return
	}
	_ = emit(AgentEvent{Type: EventDone, ConversationID: conversationID})
}
