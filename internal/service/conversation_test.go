package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hivehr/hivehr/internal/domain"
)

type mockConversationRepo struct {
	mock.Mock
}

func (m *mockConversationRepo) Create(ctx context.Context, conversation *domain.Conversation) error {
	args := m.Called(ctx, conversation)
	return args.Error(0)
}

func (m *mockConversationRepo) GetByIDForOrg(ctx context.Context, id, orgID string) (*domain.Conversation, error) {
	args := m.Called(ctx, id, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *mockConversationRepo) ListByEmployee(ctx context.Context, orgID, employeeID string) ([]*domain.Conversation, error) {
	args := m.Called(ctx, orgID, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Conversation), args.Error(1)
}

func (m *mockConversationRepo) Update(ctx context.Context, conversation *domain.Conversation) error {
	args := m.Called(ctx, conversation)
	return args.Error(0)
}

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Create(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *mockMessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func newTestConversationService() (*ConversationService, *mockConversationRepo, *mockMessageRepo) {
	conversations := new(mockConversationRepo)
	messages := new(mockMessageRepo)
	svc := NewConversationService(conversations, messages)
	svc.uuidGen = &fixedUUIDGenerator{}
	return svc, conversations, messages
}

func TestConversationService_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("creates active conversation", func(t *testing.T) {
		svc, conversations, _ := newTestConversationService()
		conversations.On("Create", ctx, mock.Anything).Return(nil)

		conversation, err := svc.Start(ctx, "org-1", "emp-1", domain.ChannelWhatsApp)

		require.NoError(t, err)
		assert.Equal(t, domain.ConversationStatusActive, conversation.Status)
		assert.Equal(t, domain.ChannelWhatsApp, conversation.Channel)
		assert.Equal(t, "emp-1", conversation.EmployeeID)
		assert.Nil(t, conversation.EndedAt)
		conversations.AssertExpectations(t)
	})

	t.Run("empty channel defaults to web", func(t *testing.T) {
		svc, conversations, _ := newTestConversationService()
		conversations.On("Create", ctx, mock.Anything).Return(nil)

		conversation, err := svc.Start(ctx, "org-1", "emp-1", "")

		require.NoError(t, err)
		assert.Equal(t, domain.ChannelWeb, conversation.Channel)
	})
}

func TestConversationService_Close(t *testing.T) {
	ctx := context.Background()

	t.Run("sets closed status and end time", func(t *testing.T) {
		svc, conversations, _ := newTestConversationService()
		conversations.On("GetByIDForOrg", ctx, "conv-1", "org-1").Return(&domain.Conversation{
			ID:     "conv-1",
			OrgID:  "org-1",
			Status: domain.ConversationStatusActive,
		}, nil)
		conversations.On("Update", ctx, mock.Anything).Return(nil)

		conversation, err := svc.Close(ctx, "conv-1", "org-1")

		require.NoError(t, err)
		assert.Equal(t, domain.ConversationStatusClosed, conversation.Status)
		require.NotNil(t, conversation.EndedAt)
		assert.WithinDuration(t, time.Now().UTC(), *conversation.EndedAt, time.Minute)
		conversations.AssertExpectations(t)
	})

	t.Run("closing twice is a no-op", func(t *testing.T) {
		svc, conversations, _ := newTestConversationService()
		ended := time.Now().UTC().Add(-time.Hour)
		conversations.On("GetByIDForOrg", ctx, "conv-1", "org-1").Return(&domain.Conversation{
			ID:      "conv-1",
			Status:  domain.ConversationStatusClosed,
			EndedAt: &ended,
		}, nil)

		conversation, err := svc.Close(ctx, "conv-1", "org-1")

		require.NoError(t, err)
		assert.Equal(t, ended, *conversation.EndedAt)
		conversations.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing conversation", func(t *testing.T) {
		svc, conversations, _ := newTestConversationService()
		conversations.On("GetByIDForOrg", ctx, "conv-x", "org-1").Return(nil, domain.ErrConversationNotFound)

		_, err := svc.Close(ctx, "conv-x", "org-1")

		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})
}

func TestConversationService_EnsureOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("active conversation for the caller", func(t *testing.T) {
		svc, conversations, _ := newTestConversationService()
		conversations.On("GetByIDForOrg", ctx, "conv-1", "org-1").Return(&domain.Conversation{
			ID:         "conv-1",
			EmployeeID: "emp-1",
			Status:     domain.ConversationStatusActive,
		}, nil)

		conversation, err := svc.EnsureOpen(ctx, "conv-1", "org-1", "emp-1")

		require.NoError(t, err)
		assert.Equal(t, "conv-1", conversation.ID)
	})

	t.Run("another employee's conversation reads as not found", func(t *testing.T) {
		svc, conversations, _ := newTestConversationService()
		conversations.On("GetByIDForOrg", ctx, "conv-1", "org-1").Return(&domain.Conversation{
			ID:         "conv-1",
			EmployeeID: "emp-2",
			Status:     domain.ConversationStatusActive,
		}, nil)

		_, err := svc.EnsureOpen(ctx, "conv-1", "org-1", "emp-1")

		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	t.Run("closed conversation rejects new turns", func(t *testing.T) {
		svc, conversations, _ := newTestConversationService()
		conversations.On("GetByIDForOrg", ctx, "conv-1", "org-1").Return(&domain.Conversation{
			ID:         "conv-1",
			EmployeeID: "emp-1",
			Status:     domain.ConversationStatusClosed,
		}, nil)

		_, err := svc.EnsureOpen(ctx, "conv-1", "org-1", "emp-1")

		assert.ErrorIs(t, err, domain.ErrConversationClosed)
	})
}

func TestConversationService_AppendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("persists turn with tool calls", func(t *testing.T) {
		svc, _, messages := newTestConversationService()

		var captured *domain.Message
		messages.On("Create", ctx, mock.Anything).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(*domain.Message)
			}).
			Return(nil)

		records := []domain.ToolCallRecord{{Tool: ToolSearchPolicies, Arguments: map[string]any{"query": "x"}}}
		msg, err := svc.AppendMessage(ctx, "conv-1", domain.RoleAssistant, "answer", records)

		require.NoError(t, err)
		assert.Equal(t, domain.RoleAssistant, msg.Role)
		require.NotNil(t, captured)
		assert.Equal(t, records, captured.ToolCalls)
		messages.AssertExpectations(t)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		svc, _, messages := newTestConversationService()

		_, err := svc.AppendMessage(ctx, "conv-1", "moderator", "hi", nil)

		assert.ErrorIs(t, err, domain.ErrInvalidMessageRole)
		messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
