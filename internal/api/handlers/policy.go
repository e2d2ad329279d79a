package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hivehr/hivehr/internal/api"
	"github.com/hivehr/hivehr/internal/api/middleware"
	"github.com/hivehr/hivehr/internal/domain"
	"github.com/hivehr/hivehr/internal/service"
)

type PolicyService interface {
	Create(ctx context.Context, input service.CreatePolicyInput) (*domain.PolicyDocument, error)
	Get(ctx context.Context, id, orgID string) (*domain.PolicyDocument, error)
	List(ctx context.Context, input service.ListPoliciesInput) (*service.PolicyPageResult, error)
	Update(ctx context.Context, input service.UpdatePolicyInput) (*domain.PolicyDocument, error)
	Deactivate(ctx context.Context, id, orgID string) error
	EnqueueIngest(ctx context.Context, policyID, orgID string) (bool, error)
	ReindexOrg(ctx context.Context, orgID string) (int, error)
}

type PolicyHandler struct {
	svc PolicyService
}

func NewPolicyHandler(svc PolicyService) *PolicyHandler {
	return &PolicyHandler{svc: svc}
}

type CreatePolicyRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

type UpdatePolicyRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	IsActive *bool  `json:"is_active"`
}

type PolicyResponse struct {
	ID        string `json:"id"`
	OrgID     string `json:"org_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category,omitempty"`
	IsActive  bool   `json:"is_active"`
	UpdatedAt string `json:"updated_at"`
}

type PolicyListResponse struct {
	Items      []*PolicyResponse `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
	HasMore    bool              `json:"has_more"`
}

func policyToResponse(p *domain.PolicyDocument) *PolicyResponse {
	return &PolicyResponse{
		ID:        p.ID,
		OrgID:     p.OrgID,
		Title:     p.Title,
		Content:   p.Content,
		Category:  p.Category,
		IsActive:  p.IsActive,
		UpdatedAt: p.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *PolicyHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	policy, err := h.svc.Create(r.Context(), service.CreatePolicyInput{
		OrgID:    orgID,
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, policyToResponse(policy))
}

func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	policy, err := h.svc.Get(r.Context(), id, orgID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, policyToResponse(policy))
}

func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())

	limit := 0
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed < 1 || parsed > 100 {
			api.Error(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	result, err := h.svc.List(r.Context(), service.ListPoliciesInput{
		OrgID:  orgID,
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*PolicyResponse, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, policyToResponse(p))
	}

	api.Success(w, http.StatusOK, &PolicyListResponse{
		Items:      items,
		NextCursor: result.NextCursor,
		HasMore:    result.HasMore,
	})
}

func (h *PolicyHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req UpdatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	policy, err := h.svc.Update(r.Context(), service.UpdatePolicyInput{
		ID:       id,
		OrgID:    orgID,
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		IsActive: req.IsActive,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, policyToResponse(policy))
}

func (h *PolicyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.Deactivate(r.Context(), id, orgID); err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusNoContent, nil)
}

// Ingest enqueues chunk-and-embed for one policy. Processing is
// asynchronous; the response only acknowledges the request.
func (h *PolicyHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if _, err := h.svc.Get(r.Context(), id, orgID); err != nil {
		api.HandleError(w, err)
		return
	}

	enqueued, err := h.svc.EnqueueIngest(r.Context(), id, orgID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, map[string]any{
		"policy_id": id,
		"enqueued":  enqueued,
	})
}

// Reindex enqueues ingestion for every active policy of the organization.
func (h *PolicyHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())

	enqueued, err := h.svc.ReindexOrg(r.Context(), orgID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusAccepted, map[string]any{
		"enqueued": enqueued,
	})
}
