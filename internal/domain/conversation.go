package domain

import "time"

// ConversationChannel identifies where a conversation originated
type ConversationChannel string

const (
	ChannelWeb      ConversationChannel = "web"
	ChannelWhatsApp ConversationChannel = "whatsapp"
	ChannelEmail    ConversationChannel = "email"
)

// ConversationStatus represents the lifecycle state of a conversation
type ConversationStatus string

const (
	ConversationStatusActive ConversationStatus = "active"
	ConversationStatusClosed ConversationStatus = "closed"
)

// MessageRole identifies the author of a conversation message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// ValidateMessageRole checks that the given value is a known message role
func ValidateMessageRole(r MessageRole) error {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return nil
	default:
		return ErrInvalidMessageRole
	}
}

// Conversation is one chat thread between an employee and the agent
type Conversation struct {
	ID         string
	OrgID      string
	EmployeeID string
	Channel    ConversationChannel
	Status     ConversationStatus
	StartedAt  time.Time
	EndedAt    *time.Time
}

// ToolCallRecord summarizes one executed tool call for persistence alongside
// an assistant message. It is display metadata only; it is never replayed
// into model context.
type ToolCallRecord struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
	Result    any            `json:"result"`
}

// Message is one turn in a conversation
type Message struct {
	ID             string
	ConversationID string
	Role           MessageRole
	Content        string
	ToolCalls      []ToolCallRecord // nil for turns without tool activity
	CreatedAt      time.Time
}
