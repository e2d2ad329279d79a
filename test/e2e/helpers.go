//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivehr/hivehr/internal/api/handlers"
	"github.com/hivehr/hivehr/internal/domain"
	"github.com/hivehr/hivehr/internal/jobs"
	"github.com/hivehr/hivehr/internal/llm"
	"github.com/hivehr/hivehr/internal/repository"
	"github.com/hivehr/hivehr/internal/server"
	"github.com/hivehr/hivehr/internal/service"
	"github.com/hivehr/hivehr/internal/testutil"
)

// E2ETestEnv holds all resources needed for end-to-end tests: a pgvector
// container, the full service stack wired like the serve command (minus S3),
// the ingest worker and an authenticated HTTP client.
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	Pool       *pgxpool.Pool
	Server     *httptest.Server
	HTTPClient *http.Client

	OrgID      string
	EmployeeID string
	Token      string

	stopWorker func()
}

// SetupE2EEnv starts the container, wires the stack and seeds one
// organization, one employee and one API key.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	orgRepo := repository.NewOrgRepository(pool)
	apiKeyRepo := repository.NewAPIKeyRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)
	policyRepo := repository.NewPolicyRepository(pool)
	chunkRepo := repository.NewPolicyChunkRepository(pool)
	ingestJobRepo := repository.NewIngestJobRepository(pool)
	leaveBalanceRepo := repository.NewLeaveBalanceRepository(pool)
	leaveRequestRepo := repository.NewLeaveRequestRepository(pool)
	conversationRepo := repository.NewConversationRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	uuidGen := &service.DefaultUUIDGenerator{}
	conversationSvc := service.NewConversationService(conversationRepo, messageRepo)
	authSvc := service.NewAuthService(orgRepo, apiKeyRepo, employeeRepo, uuidGen)
	policySvc := service.NewPolicyService(policyRepo, ingestJobRepo, uuidGen)

	// No API key configured: every organization runs with the mock
	// embedder and mock chat agent.
	registry := service.NewRegistry(service.RegistryDeps{
		Defaults:       llm.Config{},
		ChunkConfig:    service.DefaultChunkConfig(),
		Policies:       policyRepo,
		ActivePolicies: policyRepo,
		Searcher:       chunkRepo,
		Tx:             txRunner,
		Balances:       leaveBalanceRepo,
		LeaveRequests:  leaveRequestRepo,
		Employees:      employeeRepo,
		Documents:      documentRepo,
		Messages:       conversationSvc,
	})

	dispatcher := service.NewIngestDispatcher(orgRepo, registry)
	worker := jobs.NewWorker(jobs.NewIngestWorker(ingestJobRepo, dispatcher), 200*time.Millisecond)
	workerCtx, cancelWorker := context.WithCancel(ctx)
	go worker.Start(workerCtx)

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:       authSvc,
		PolicyHandler:       handlers.NewPolicyHandler(policySvc),
		SearchHandler:       handlers.NewSearchHandler(orgRepo, registry),
		ChatHandler:         handlers.NewChatHandler(orgRepo, registry, conversationSvc),
		ConversationHandler: handlers.NewConversationHandler(conversationSvc),
	})

	srv := httptest.NewServer(router)

	org, err := authSvc.CreateOrg(ctx, "E2E Test Org")
	if err != nil {
		t.Fatalf("failed to create org: %v", err)
	}

	employee := &domain.Employee{
		ID:           uuidGen.NewString(),
		OrgID:        org.ID,
		EmployeeCode: "E2E-001",
		FullName:     "Test Employee",
		Email:        "test@example.com",
		Department:   "Engineering",
		Position:     "Engineer",
		Status:       domain.EmployeeStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	if err := employeeRepo.Create(ctx, employee); err != nil {
		t.Fatalf("failed to create employee: %v", err)
	}

	token, err := authSvc.CreateAPIKey(ctx, org.ID, employee.ID, "e2e")
	if err != nil {
		t.Fatalf("failed to create API key: %v", err)
	}

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		Pool:       pool,
		Server:     srv,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		OrgID:      org.ID,
		EmployeeID: employee.ID,
		Token:      token,
		stopWorker: func() {
			cancelWorker()
			worker.Stop()
		},
	}

	t.Cleanup(func() {
		env.stopWorker()
		srv.Close()
		pool.Close()
		pgC.Terminate(ctx)
	})

	return env
}

// DoRequest sends an authenticated JSON request to the test server and
// returns the response.
func (env *E2ETestEnv) DoRequest(method, path string, body any) *http.Response {
	env.T.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			env.T.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, reader)
	if err != nil {
		env.T.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+env.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := env.HTTPClient.Do(req)
	if err != nil {
		env.T.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

// DecodeData decodes the success envelope of a response into out.
func DecodeData(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response envelope: %v", err)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("failed to decode response data: %v", err)
		}
	}
}

// WaitForChunks polls until the policy has at least one chunk indexed or the
// timeout elapses.
func (env *E2ETestEnv) WaitForChunks(policyID string, timeout time.Duration) int {
	env.T.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var count int
		err := env.Pool.QueryRow(env.Ctx,
			"SELECT COUNT(*) FROM policy_chunks WHERE policy_id = $1", policyID,
		).Scan(&count)
		if err != nil {
			env.T.Fatalf("failed to count chunks: %v", err)
		}
		if count > 0 {
			return count
		}
		time.Sleep(200 * time.Millisecond)
	}

	env.T.Fatalf("policy %s was not ingested within %s", policyID, timeout)
	return 0
}

// IngestJobStatus reads the latest ingest job status for a policy.
func (env *E2ETestEnv) IngestJobStatus(policyID string) string {
	env.T.Helper()

	var status string
	err := env.Pool.QueryRow(env.Ctx,
		"SELECT status FROM ingest_jobs WHERE policy_id = $1 ORDER BY created_at DESC LIMIT 1", policyID,
	).Scan(&status)
	if err != nil {
		env.T.Fatalf("failed to read ingest job status: %v", err)
	}
	return status
}

func drainBody(resp *http.Response) string {
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}
