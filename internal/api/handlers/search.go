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

// OrganizationGetter loads the authenticated organization record.
type OrganizationGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
}

// AgentRegistry hands out the organization's agent and pipeline.
type AgentRegistry interface {
	ForOrganization(org *domain.Organization) (*service.AgentBundle, error)
}

type SearchHandler struct {
	orgs     OrganizationGetter
	registry AgentRegistry
}

func NewSearchHandler(orgs OrganizationGetter, registry AgentRegistry) *SearchHandler {
	return &SearchHandler{orgs: orgs, registry: registry}
}

type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type SearchResultItem struct {
	PolicyID   string         `json:"policy_id"`
	ChunkText  string         `json:"chunk_text"`
	ChunkIndex int            `json:"chunk_index"`
	Similarity float64        `json:"similarity"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type SearchResponse struct {
	Results []*SearchResultItem `json:"results"`
}

// Search runs a semantic query over the organization's indexed policies.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgID(r.Context())
	if orgID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	// Clamp rather than reject: a greedy client gets the maximum.
	topK := req.TopK
	if topK < 1 {
		topK = service.DefaultTopK
	}
	if topK > 20 {
		topK = 20
	}

	org, err := h.orgs.GetByID(r.Context(), orgID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	bundle, err := h.registry.ForOrganization(org)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	chunks, err := bundle.RAG.Query(r.Context(), req.Query, orgID, topK)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	results := make([]*SearchResultItem, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, &SearchResultItem{
			PolicyID:   c.PolicyID,
			ChunkText:  c.ChunkText,
			ChunkIndex: c.ChunkIndex,
			Similarity: c.Similarity,
			Metadata:   c.Metadata,
		})
	}

	api.Success(w, http.StatusOK, &SearchResponse{Results: results})
}
