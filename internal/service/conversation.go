package service

import (
	"context"
	"log"
	"time"

	"github.com/hivehr/hivehr/internal/domain"
)

// ConversationRepositoryInterface defines persistence for conversations.
type ConversationRepositoryInterface interface {
	Create(ctx context.Context, conversation *domain.Conversation) error
	GetByIDForOrg(ctx context.Context, id, orgID string) (*domain.Conversation, error)
	ListByEmployee(ctx context.Context, orgID, employeeID string) ([]*domain.Conversation, error)
	Update(ctx context.Context, conversation *domain.Conversation) error
}

// MessageRepositoryInterface defines persistence for conversation messages.
type MessageRepositoryInterface interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error)
}

// ConversationService manages conversation lifecycle and message history for
// the agent. It implements MessageStore.
type ConversationService struct {
	conversations ConversationRepositoryInterface
	messages      MessageRepositoryInterface
	uuidGen       UUIDGenerator
}

// NewConversationService creates a new ConversationService instance
func NewConversationService(conversations ConversationRepositoryInterface, messages MessageRepositoryInterface) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		uuidGen:       &DefaultUUIDGenerator{},
	}
}

// Start opens a new active conversation for an employee on the given
// channel. An empty channel defaults to web.
func (s *ConversationService) Start(ctx context.Context, orgID, employeeID string, channel domain.ConversationChannel) (*domain.Conversation, error) {
	if channel == "" {
		channel = domain.ChannelWeb
	}

	conversation := &domain.Conversation{
		ID:         s.uuidGen.NewString(),
		OrgID:      orgID,
		EmployeeID: employeeID,
		Channel:    channel,
		Status:     domain.ConversationStatusActive,
		StartedAt:  time.Now().UTC(),
	}
	if err := s.conversations.Create(ctx, conversation); err != nil {
		return nil, err
	}

	log.Printf("created conversation %s for employee %s", conversation.ID, employeeID)
	return conversation, nil
}

// Get returns a conversation scoped to its organization.
func (s *ConversationService) Get(ctx context.Context, id, orgID string) (*domain.Conversation, error) {
	return s.conversations.GetByIDForOrg(ctx, id, orgID)
}

// List returns all conversations for an employee, newest first.
func (s *ConversationService) List(ctx context.Context, orgID, employeeID string) ([]*domain.Conversation, error) {
	return s.conversations.ListByEmployee(ctx, orgID, employeeID)
}

// Close marks a conversation closed. Closing an already-closed conversation
// is a no-op and returns the conversation unchanged.
func (s *ConversationService) Close(ctx context.Context, id, orgID string) (*domain.Conversation, error) {
	conversation, err := s.conversations.GetByIDForOrg(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	if conversation.Status == domain.ConversationStatusClosed {
		return conversation, nil
	}

	now := time.Now().UTC()
	conversation.Status = domain.ConversationStatusClosed
	conversation.EndedAt = &now
	if err := s.conversations.Update(ctx, conversation); err != nil {
		return nil, err
	}

	log.Printf("closed conversation %s", id)
	return conversation, nil
}

// EnsureOpen verifies the conversation exists for the organization, belongs
// to the employee and is still active. The agent calls this before a turn.
func (s *ConversationService) EnsureOpen(ctx context.Context, id, orgID, employeeID string) (*domain.Conversation, error) {
	conversation, err := s.conversations.GetByIDForOrg(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	if conversation.EmployeeID != employeeID {
		return nil, domain.ErrConversationNotFound
	}
	if conversation.Status == domain.ConversationStatusClosed {
		return nil, domain.ErrConversationClosed
	}
	return conversation, nil
}

// AppendMessage durably appends one turn to a conversation.
func (s *ConversationService) AppendMessage(ctx context.Context, conversationID string, role domain.MessageRole, content string, toolCalls []domain.ToolCallRecord) (*domain.Message, error) {
	if err := domain.ValidateMessageRole(role); err != nil {
		return nil, err
	}

	message := &domain.Message{
		ID:             s.uuidGen.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		ToolCalls:      toolCalls,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// History returns all messages in a conversation in creation order.
func (s *ConversationService) History(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	return s.messages.ListByConversation(ctx, conversationID)
}
