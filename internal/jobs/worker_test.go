package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hivehr/hivehr/internal/domain"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockIngestJobQueue is a mock implementation of IngestJobQueue
type MockIngestJobQueue struct {
	mock.Mock
}

func (m *MockIngestJobQueue) ClaimPending(ctx context.Context, limit int) ([]*domain.IngestJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.IngestJob), args.Error(1)
}

func (m *MockIngestJobQueue) UpdateStatus(ctx context.Context, id string, status domain.IngestJobStatus, errMsg string) error {
	args := m.Called(ctx, id, status, errMsg)
	return args.Error(0)
}

func (m *MockIngestJobQueue) IncrementRetries(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPolicyIngester is a mock implementation of PolicyIngester
type MockPolicyIngester struct {
	mock.Mock
}

func (m *MockPolicyIngester) Ingest(ctx context.Context, policyID, orgID string) (int, error) {
	args := m.Called(ctx, policyID, orgID)
	return args.Int(0), args.Error(1)
}

func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

func TestIngestWorker_ProcessJobs_NoJobs(t *testing.T) {
	queue := new(MockIngestJobQueue)
	ingester := new(MockPolicyIngester)
	queue.On("ClaimPending", mock.Anything, claimBatchSize).Return([]*domain.IngestJob{}, nil)

	worker := NewIngestWorker(queue, ingester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	ingester.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestWorker_ProcessJobs_Success(t *testing.T) {
	queue := new(MockIngestJobQueue)
	ingester := new(MockPolicyIngester)

	job := domain.NewIngestJob("job-1", "policy-1", "org-1", time.Now().UTC())
	job.Status = domain.IngestJobStatusProcessing

	queue.On("ClaimPending", mock.Anything, claimBatchSize).Return([]*domain.IngestJob{job}, nil)
	ingester.On("Ingest", mock.Anything, "policy-1", "org-1").Return(7, nil)
	queue.On("UpdateStatus", mock.Anything, "job-1", domain.IngestJobStatusCompleted, "").Return(nil)

	worker := NewIngestWorker(queue, ingester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	queue.AssertExpectations(t)
	ingester.AssertExpectations(t)
}

func TestIngestWorker_ProcessJobs_RetryOnFailure(t *testing.T) {
	queue := new(MockIngestJobQueue)
	ingester := new(MockPolicyIngester)

	job := domain.NewIngestJob("job-1", "policy-1", "org-1", time.Now().UTC())
	job.Status = domain.IngestJobStatusProcessing

	ingestErr := errors.New("embedding provider unavailable")
	queue.On("ClaimPending", mock.Anything, claimBatchSize).Return([]*domain.IngestJob{job}, nil)
	ingester.On("Ingest", mock.Anything, "policy-1", "org-1").Return(0, ingestErr)
	queue.On("IncrementRetries", mock.Anything, "job-1").Return(nil)
	queue.On("UpdateStatus", mock.Anything, "job-1", domain.IngestJobStatusPending,
		"retry 1: embedding provider unavailable").Return(nil)

	worker := NewIngestWorker(queue, ingester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	queue.AssertExpectations(t)
}

func TestIngestWorker_ProcessJobs_MaxRetriesExceeded(t *testing.T) {
	queue := new(MockIngestJobQueue)
	ingester := new(MockPolicyIngester)

	job := domain.NewIngestJob("job-1", "policy-1", "org-1", time.Now().UTC())
	job.Status = domain.IngestJobStatusProcessing
	job.Retries = MaxRetries - 1

	ingestErr := errors.New("embedding provider unavailable")
	queue.On("ClaimPending", mock.Anything, claimBatchSize).Return([]*domain.IngestJob{job}, nil)
	ingester.On("Ingest", mock.Anything, "policy-1", "org-1").Return(0, ingestErr)
	queue.On("IncrementRetries", mock.Anything, "job-1").Return(nil)
	queue.On("UpdateStatus", mock.Anything, "job-1", domain.IngestJobStatusFailed,
		"max retries exceeded: embedding provider unavailable").Return(nil)

	worker := NewIngestWorker(queue, ingester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	queue.AssertExpectations(t)
}

func TestIngestWorker_ProcessJobs_ContinuesPastFailingJob(t *testing.T) {
	queue := new(MockIngestJobQueue)
	ingester := new(MockPolicyIngester)

	first := domain.NewIngestJob("job-1", "policy-1", "org-1", time.Now().UTC())
	second := domain.NewIngestJob("job-2", "policy-2", "org-1", time.Now().UTC())

	queue.On("ClaimPending", mock.Anything, claimBatchSize).Return([]*domain.IngestJob{first, second}, nil)
	ingester.On("Ingest", mock.Anything, "policy-1", "org-1").Return(0, errors.New("boom"))
	queue.On("IncrementRetries", mock.Anything, "job-1").Return(errors.New("db down"))
	ingester.On("Ingest", mock.Anything, "policy-2", "org-1").Return(3, nil)
	queue.On("UpdateStatus", mock.Anything, "job-2", domain.IngestJobStatusCompleted, "").Return(nil)

	worker := NewIngestWorker(queue, ingester)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	queue.AssertExpectations(t)
	ingester.AssertExpectations(t)
}
