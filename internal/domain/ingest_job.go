package domain

import (
	"fmt"
	"time"
)

// IngestJobStatus represents the status of a policy ingestion job
type IngestJobStatus string

const (
	IngestJobStatusPending    IngestJobStatus = "pending"
	IngestJobStatusProcessing IngestJobStatus = "processing"
	IngestJobStatusCompleted  IngestJobStatus = "completed"
	IngestJobStatusFailed     IngestJobStatus = "failed"
)

// IngestJob represents an async chunk-and-embed job for one policy document.
// Jobs are claimed exclusively by the worker, which serializes re-ingestion
// of the same document.
type IngestJob struct {
	ID          string
	PolicyID    string
	OrgID       string
	Status      IngestJobStatus
	Retries     int32
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// NewIngestJob creates a new pending IngestJob instance
func NewIngestJob(id, policyID, orgID string, createdAt time.Time) *IngestJob {
	return &IngestJob{
		ID:        id,
		PolicyID:  policyID,
		OrgID:     orgID,
		Status:    IngestJobStatusPending,
		CreatedAt: createdAt,
	}
}

// ValidateIngestJob validates an IngestJob instance
func ValidateIngestJob(j *IngestJob) error {
	if j == nil {
		return fmt.Errorf("ingest job cannot be nil")
	}

	if j.ID == "" {
		return fmt.Errorf("ingest job ID is required")
	}

	if j.PolicyID == "" {
		return fmt.Errorf("ingest job PolicyID is required")
	}

	if j.OrgID == "" {
		return fmt.Errorf("ingest job OrgID is required")
	}

	if !isValidIngestJobStatus(j.Status) {
		return fmt.Errorf("ingest job Status is invalid: %s", j.Status)
	}

	return nil
}

func isValidIngestJobStatus(s IngestJobStatus) bool {
	switch s {
	case IngestJobStatusPending, IngestJobStatusProcessing, IngestJobStatusCompleted, IngestJobStatusFailed:
		return true
	default:
		return false
	}
}
