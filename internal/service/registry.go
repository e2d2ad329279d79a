package service

import (
	"log"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hivehr/hivehr/internal/domain"
	"github.com/hivehr/hivehr/internal/llm"
)

const (
	registryTTL   = 10 * time.Minute
	registrySweep = 15 * time.Minute
)

// AgentBundle is the per-organization service set: the agent wired to that
// organization's provider configuration plus the pipeline it searches with.
type AgentBundle struct {
	Agent *HRAgent
	RAG   *RAGService
}

// RegistryDeps are the shared, organization-independent dependencies the
// registry wires into every bundle.
type RegistryDeps struct {
	Defaults    llm.Config
	ChunkConfig ChunkConfig

	Policies       PolicyReader
	ActivePolicies ActivePolicyReader
	Searcher       ChunkSearcher
	Tx             TxRunner

	Balances      LeaveBalanceReader
	LeaveRequests LeaveRequestWriter
	Employees     EmployeeReader
	Documents     DocumentWriter
	Messages      MessageStore
	Renderer      DocumentRenderer // may be nil
}

// Registry hands out per-organization agent and pipeline instances, built
// from each organization's AI configuration and cached with a TTL so a
// config change propagates without a restart.
type Registry struct {
	deps  RegistryDeps
	cache *gocache.Cache
}

// NewRegistry creates a new Registry instance
func NewRegistry(deps RegistryDeps) *Registry {
	return &Registry{
		deps:  deps,
		cache: gocache.New(registryTTL, registrySweep),
	}
}

// ForOrganization returns the cached bundle for the organization, building
// one from its AI configuration on a cache miss. A missing or unusable chat
// configuration yields a mock-mode agent rather than an error.
func (r *Registry) ForOrganization(org *domain.Organization) (*AgentBundle, error) {
	if cached, ok := r.cache.Get(org.ID); ok {
		return cached.(*AgentBundle), nil
	}

	bundle, err := r.build(org)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(org.ID, bundle)
	return bundle, nil
}

// Invalidate drops the cached bundle so the next request rebuilds it. Called
// after an organization's AI configuration changes.
func (r *Registry) Invalidate(orgID string) {
	r.cache.Delete(orgID)
}

func (r *Registry) build(org *domain.Organization) (*AgentBundle, error) {
	cfg := llm.FromAIConfig(r.deps.Defaults, org.AIConfig)

	chunker, err := NewChunker(r.deps.ChunkConfig)
	if err != nil {
		return nil, err
	}

	embedder := llm.ResolveEmbedder(cfg)
	if embedder.IsMock() {
		log.Printf("org %s: no usable embedding provider, using mock embeddings", org.ID)
	}

	rag := NewRAGService(chunker, embedder, r.deps.Policies, r.deps.Searcher, r.deps.Tx)

	chat, err := llm.NewChatClient(cfg)
	if err != nil {
		// Configuration-class failures mean mock mode, not a broken org.
		log.Printf("org %s: no usable chat provider (%v), agent running in mock mode", org.ID, err)
		chat = nil
	}

	tools := NewToolRegistry(
		r.deps.Balances,
		r.deps.LeaveRequests,
		r.deps.Employees,
		r.deps.Documents,
		r.deps.ActivePolicies,
		rag,
		r.deps.Renderer,
	)

	return &AgentBundle{
		Agent: NewHRAgent(chat, tools, r.deps.Messages),
		RAG:   rag,
	}, nil
}
