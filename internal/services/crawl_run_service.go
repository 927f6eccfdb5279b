package services

import (
	"github.com/alimgiray/orgscope/internal/models"
	"github.com/alimgiray/orgscope/internal/repositories"
	"github.com/alimgiray/orgscope/pkg/logger"
	"github.com/sirupsen/logrus"
)

const defaultCrawlRunLimit = 20

// CrawlRunService records the history of full organization crawls.
// Recording failures are logged and never fail the crawl itself.
type CrawlRunService struct {
	crawlRunRepo *repositories.CrawlRunRepository
	org          string
}

// NewCrawlRunService creates a new crawl run service
func NewCrawlRunService(crawlRunRepo *repositories.CrawlRunRepository, org string) *CrawlRunService {
	return &CrawlRunService{
		crawlRunRepo: crawlRunRepo,
		org:          org,
	}
}

// Start records a crawl that is about to run
func (s *CrawlRunService) Start(trigger models.CrawlTrigger) *models.CrawlRun {
	run := models.NewCrawlRun(s.org, trigger)
	run.MarkStarted()

	if err := s.crawlRunRepo.Create(run); err != nil {
		logger.WithError(err).WithField("crawl_run_id", run.ID).Error("Failed to record crawl start")
	}
	return run
}

// Complete records a finished crawl
func (s *CrawlRunService) Complete(run *models.CrawlRun, result *AggregationResult, contributors []models.AggregatedContributor) {
	run.RepositoryCount = result.RepositoryCount
	run.FailedRepositoryCount = len(result.FailedRepositories)
	run.ContributorCount = len(contributors)
	run.EnrichedCount = countEnriched(contributors)
	run.MarkCompleted()

	if err := s.crawlRunRepo.Update(run); err != nil {
		logger.WithError(err).WithField("crawl_run_id", run.ID).Error("Failed to record crawl completion")
		return
	}

	logger.WithFields(logrus.Fields{
		"crawl_run_id": run.ID,
		"trigger":      run.Trigger,
		"repositories": run.RepositoryCount,
		"failed":       run.FailedRepositoryCount,
		"contributors": run.ContributorCount,
		"enriched":     run.EnrichedCount,
		"duration":     run.Duration().String(),
	}).Info("Crawl completed")
}

// Fail records a crawl that could not produce a result
func (s *CrawlRunService) Fail(run *models.CrawlRun, cause error) {
	run.MarkFailed(cause.Error())

	if err := s.crawlRunRepo.Update(run); err != nil {
		logger.WithError(err).WithField("crawl_run_id", run.ID).Error("Failed to record crawl failure")
	}
}

// ListRecent returns the latest crawl runs, newest first
func (s *CrawlRunService) ListRecent(limit int) ([]*models.CrawlRun, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultCrawlRunLimit
	}
	runs, err := s.crawlRunRepo.ListRecent(limit)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []*models.CrawlRun{}
	}
	return runs, nil
}
