package models

import (
	"time"

	"github.com/google/uuid"
)

// CrawlTrigger tells what started a crawl
type CrawlTrigger string

const (
	CrawlTriggerRequest CrawlTrigger = "request"
	CrawlTriggerWarmup  CrawlTrigger = "warmup"
	CrawlTriggerRefresh CrawlTrigger = "refresh"
)

// CrawlStatus represents the status of a crawl
type CrawlStatus string

const (
	CrawlStatusInProgress CrawlStatus = "in-progress"
	CrawlStatusCompleted  CrawlStatus = "completed"
	CrawlStatusFailed     CrawlStatus = "failed"
)

// CrawlRun records one full aggregation of the organization
type CrawlRun struct {
	ID                    string       `json:"id"`
	Org                   string       `json:"org"`
	Trigger               CrawlTrigger `json:"trigger"`
	Status                CrawlStatus  `json:"status"`
	RepositoryCount       int          `json:"repositoryCount"`
	FailedRepositoryCount int          `json:"failedRepositoryCount"`
	ContributorCount      int          `json:"contributorCount"`
	EnrichedCount         int          `json:"enrichedCount"`
	ErrorMessage          *string      `json:"errorMessage"`
	StartedAt             *time.Time   `json:"startedAt"`
	CompletedAt           *time.Time   `json:"completedAt"`
	CreatedAt             time.Time    `json:"createdAt"`
}

// NewCrawlRun creates a new CrawlRun with a generated UUID
func NewCrawlRun(org string, trigger CrawlTrigger) *CrawlRun {
	return &CrawlRun{
		ID:        uuid.New().String(),
		Org:       org,
		Trigger:   trigger,
		Status:    CrawlStatusInProgress,
		CreatedAt: time.Now(),
	}
}

// MarkStarted marks the crawl as started
func (r *CrawlRun) MarkStarted() {
	now := time.Now()
	r.Status = CrawlStatusInProgress
	r.StartedAt = &now
}

// MarkCompleted marks the crawl as completed
func (r *CrawlRun) MarkCompleted() {
	now := time.Now()
	r.Status = CrawlStatusCompleted
	r.CompletedAt = &now
}

// MarkFailed marks the crawl as failed with the given message
func (r *CrawlRun) MarkFailed(message string) {
	now := time.Now()
	r.Status = CrawlStatusFailed
	r.ErrorMessage = &message
	r.CompletedAt = &now
}

// Duration returns how long the crawl took, or zero while it is running
func (r *CrawlRun) Duration() time.Duration {
	if r.StartedAt == nil || r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(*r.StartedAt)
}
