package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hivehr/hivehr/internal/api"
	"github.com/hivehr/hivehr/internal/api/middleware"
	"github.com/hivehr/hivehr/internal/domain"
)

// ConversationService is the full conversation surface behind the
// conversation endpoints.
type ConversationService interface {
	Start(ctx context.Context, orgID, employeeID string, channel domain.ConversationChannel) (*domain.Conversation, error)
	Get(ctx context.Context, id, orgID string) (*domain.Conversation, error)
	List(ctx context.Context, orgID, employeeID string) ([]*domain.Conversation, error)
	Close(ctx context.Context, id, orgID string) (*domain.Conversation, error)
	History(ctx context.Context, conversationID string) ([]*domain.Message, error)
}

type ConversationHandler struct {
	svc ConversationService
}

func NewConversationHandler(svc ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type StartConversationRequest struct {
	Channel string `json:"channel"`
}

type ConversationResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Channel    string `json:"channel"`
	Status     string `json:"status"`
	StartedAt  string `json:"started_at"`
	EndedAt    string `json:"ended_at,omitempty"`
}

type MessageResponse struct {
	ID        string                  `json:"id"`
	Role      string                  `json:"role"`
	Content   string                  `json:"content"`
	ToolCalls []domain.ToolCallRecord `json:"tool_calls,omitempty"`
	CreatedAt string                  `json:"created_at"`
}

type ConversationDetailResponse struct {
	Conversation *ConversationResponse `json:"conversation"`
	Messages     []*MessageResponse    `json:"messages"`
}

func conversationToResponse(c *domain.Conversation) *ConversationResponse {
	resp := &ConversationResponse{
		ID:         c.ID,
		EmployeeID: c.EmployeeID,
		Channel:    string(c.Channel),
		Status:     string(c.Status),
		StartedAt:  c.StartedAt.Format("2006-01-02T15:04:05Z"),
	}
	if c.EndedAt != nil {
		resp.EndedAt = c.EndedAt.Format("2006-01-02T15:04:05Z")
	}
	return resp
}

func messageToResponse(m *domain.Message) *MessageResponse {
	return &MessageResponse{
		ID:        m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		ToolCalls: m.ToolCalls,
		CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ownedConversation loads a conversation and hides other employees' threads
// behind not-found.
func (h *ConversationHandler) ownedConversation(ctx context.Context, id, orgID, employeeID string) (*domain.Conversation, error) {
	conversation, err := h.svc.Get(ctx, id, orgID)
	if err != nil {
		return nil, err
	}
	if conversation.EmployeeID != employeeID {
		return nil, domain.ErrConversationNotFound
	}
	return conversation, nil
}

func (h *ConversationHandler) Start(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	employeeID := middleware.GetEmployeeID(r.Context())

	var req StartConversationRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	conversation, err := h.svc.Start(r.Context(), orgID, employeeID, domain.ConversationChannel(req.Channel))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, conversationToResponse(conversation))
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	employeeID := middleware.GetEmployeeID(r.Context())

	conversations, err := h.svc.List(r.Context(), orgID, employeeID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		items = append(items, conversationToResponse(c))
	}

	api.Success(w, http.StatusOK, items)
}

func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	employeeID := middleware.GetEmployeeID(r.Context())
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	conversation, err := h.ownedConversation(r.Context(), id, orgID, employeeID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	history, err := h.svc.History(r.Context(), conversation.ID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	messages := make([]*MessageResponse, 0, len(history))
	for _, m := range history {
		messages = append(messages, messageToResponse(m))
	}

	api.Success(w, http.StatusOK, &ConversationDetailResponse{
		Conversation: conversationToResponse(conversation),
		Messages:     messages,
	})
}

func (h *ConversationHandler) Close(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	employeeID := middleware.GetEmployeeID(r.Context())
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if _, err := h.ownedConversation(r.Context(), id, orgID, employeeID); err != nil {
		api.HandleError(w, err)
		return
	}

	conversation, err := h.svc.Close(r.Context(), id, orgID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, conversationToResponse(conversation))
}
