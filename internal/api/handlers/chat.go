package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hivehr/hivehr/internal/api"
	"github.com/hivehr/hivehr/internal/api/middleware"
	"github.com/hivehr/hivehr/internal/domain"
	"github.com/hivehr/hivehr/internal/service"
)

// ConversationManager is the conversation lifecycle surface the chat
// endpoints need.
type ConversationManager interface {
	Start(ctx context.Context, orgID, employeeID string, channel domain.ConversationChannel) (*domain.Conversation, error)
	EnsureOpen(ctx context.Context, id, orgID, employeeID string) (*domain.Conversation, error)
}

type ChatHandler struct {
	orgs          OrganizationGetter
	registry      AgentRegistry
	conversations ConversationManager
}

func NewChatHandler(orgs OrganizationGetter, registry AgentRegistry, conversations ConversationManager) *ChatHandler {
	return &ChatHandler{
		orgs:          orgs,
		registry:      registry,
		conversations: conversations,
	}
}

type ChatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

type ChatResponse struct {
	Response       string                  `json:"response"`
	ConversationID string                  `json:"conversation_id"`
	ToolCalls      []domain.ToolCallRecord `json:"tool_calls,omitempty"`
}

// resolveTurn validates the request and pins down the organization, open
// conversation and agent bundle for one chat turn.
func (h *ChatHandler) resolveTurn(r *http.Request) (*domain.Organization, *domain.Conversation, *service.AgentBundle, *ChatRequest, error) {
	orgID := middleware.GetOrgID(r.Context())
	employeeID := middleware.GetEmployeeID(r.Context())

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, nil, nil, nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid request body")
	}
	if req.Message == "" {
		return nil, nil, nil, nil, domain.NewDomainError(domain.ErrCodeValidation, "message is required")
	}

	org, err := h.orgs.GetByID(r.Context(), orgID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var conversation *domain.Conversation
	if req.ConversationID == "" {
		conversation, err = h.conversations.Start(r.Context(), orgID, employeeID, domain.ChannelWeb)
	} else {
		conversation, err = h.conversations.EnsureOpen(r.Context(), req.ConversationID, orgID, employeeID)
	}
	if err != nil {
		return nil, nil, nil, nil, err
	}

	bundle, err := h.registry.ForOrganization(org)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return org, conversation, bundle, &req, nil
}

// Chat processes one user message and returns the full assistant reply.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	org, conversation, bundle, req, err := h.resolveTurn(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	identity := service.Identity{
		OrgID:      org.ID,
		EmployeeID: conversation.EmployeeID,
	}

	reply, err := bundle.Agent.Chat(r.Context(), identity, conversation.ID, req.Message, org.Name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, &ChatResponse{
		Response:       reply.Response,
		ConversationID: reply.ConversationID,
		ToolCalls:      reply.ToolCalls,
	})
}

// ChatStream processes one user message and streams agent events over SSE.
// Each event is one JSON-encoded AgentEvent in a data frame.
func (h *ChatHandler) ChatStream(w http.ResponseWriter, r *http.Request) {
	org, conversation, bundle, req, err := h.resolveTurn(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	identity := service.Identity{
		OrgID:      org.ID,
		EmployeeID: conversation.EmployeeID,
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := bundle.Agent.ChatStream(r.Context(), identity, conversation.ID, req.Message, org.Name)
	for event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		if _, err := w.Write([]byte("data: ")); err != nil {
			return
		}
		if _, err := w.Write(payload); err != nil {
			return
		}
		if _, err := w.Write([]byte("\n\n")); err != nil {
			return
		}
		flusher.Flush()
	}
}
