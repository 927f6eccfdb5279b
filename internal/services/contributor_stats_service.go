package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alimgiray/orgscope/internal/models"
	"github.com/alimgiray/orgscope/pkg/cache"
	"github.com/alimgiray/orgscope/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	AggregatedContributorsKey = "aggregated_contributors"
	repositoryDetailsPrefix   = "repo_details:"
)

// RepositoryDetailsKey is the cache key of one repository's details
func RepositoryDetailsKey(name string) string {
	return repositoryDetailsPrefix + strings.ToLower(name)
}

// ContributorStatsService serves the aggregated contributor list and
// repository details, keeping both behind the cache.
type ContributorStatsService struct {
	repositories *RepositoryService
	contributors *ContributorService
	aggregator   *AggregationService
	enricher     *EnrichmentService
	crawlRuns    *CrawlRunService
	store        *cache.Store

	contributorsTTL time.Duration
	repositoryTTL   time.Duration
	similarity      *LoginSimilarity
}

// NewContributorStatsService creates a new contributor stats service
func NewContributorStatsService(
	repositories *RepositoryService,
	contributors *ContributorService,
	aggregator *AggregationService,
	enricher *EnrichmentService,
	crawlRuns *CrawlRunService,
	store *cache.Store,
	contributorsTTL, repositoryTTL time.Duration,
) *ContributorStatsService {
	return &ContributorStatsService{
		repositories:    repositories,
		contributors:    contributors,
		aggregator:      aggregator,
		enricher:        enricher,
		crawlRuns:       crawlRuns,
		store:           store,
		contributorsTTL: contributorsTTL,
		repositoryTTL:   repositoryTTL,
		similarity:      NewLoginSimilarity(DefaultSuggestionLimit, DefaultSuggestionThreshold),
	}
}

// ListRepositories returns the organization's repositories straight from GitHub
func (s *ContributorStatsService) ListRepositories(ctx context.Context) ([]models.Repository, error) {
	return s.repositories.ListRepositories(ctx)
}

// GetAggregatedContributors returns the cached aggregate list, crawling the
// whole organization on a miss. Concurrent misses share a single crawl.
func (s *ContributorStatsService) GetAggregatedContributors(ctx context.Context) ([]models.AggregatedContributor, error) {
	var contributors []models.AggregatedContributor
	err := s.store.GetOrLoad(ctx, AggregatedContributorsKey, s.contributorsTTL, &contributors, s.crawlLoader(models.CrawlTriggerRequest))
	if err != nil {
		return nil, err
	}
	return contributors, nil
}

// RefreshAggregatedContributors recrawls the organization and replaces the cached list
func (s *ContributorStatsService) RefreshAggregatedContributors(ctx context.Context, trigger models.CrawlTrigger) ([]models.AggregatedContributor, error) {
	var contributors []models.AggregatedContributor
	err := s.store.Refresh(ctx, AggregatedContributorsKey, s.contributorsTTL, &contributors, s.crawlLoader(trigger))
	if err != nil {
		return nil, err
	}
	return contributors, nil
}

// GetSingleAggregatedContributor looks login up in the cached list only.
// It never starts a crawl: an empty cache reports not found.
func (s *ContributorStatsService) GetSingleAggregatedContributor(ctx context.Context, login string) (*models.AggregatedContributor, error) {
	var contributors []models.AggregatedContributor
	ok, err := s.store.Peek(ctx, AggregatedContributorsKey, &contributors)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached contributors: %w", err)
	}
	if !ok {
		return nil, models.NewNotFoundError("contributor", login)
	}

	logins := make([]string, 0, len(contributors))
	for i := range contributors {
		if strings.EqualFold(contributors[i].Login, login) {
			return &contributors[i], nil
		}
		logins = append(logins, contributors[i].Login)
	}
	return nil, &models.NotFoundError{
		Kind:        "contributor",
		Key:         login,
		Suggestions: s.similarity.Suggest(login, logins),
	}
}

// GetRepositoryDetails returns a repository with its contributors, cached per repository
func (s *ContributorStatsService) GetRepositoryDetails(ctx context.Context, name string) (*models.RepositoryDetails, error) {
	name = strings.TrimSpace(name)
	if !ValidRepositoryName(name) {
		return nil, models.NewNotFoundError("repository", name)
	}

	var details models.RepositoryDetails
	err := s.store.GetOrLoad(ctx, RepositoryDetailsKey(name), s.repositoryTTL, &details, func(ctx context.Context) (any, error) {
		return s.loadRepositoryDetails(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return &details, nil
}

// CacheStats reports cache hits and misses
func (s *ContributorStatsService) CacheStats() cache.Stats {
	return s.store.Stats()
}

func (s *ContributorStatsService) loadRepositoryDetails(ctx context.Context, name string) (*models.RepositoryDetails, error) {
	var (
		repo         *models.Repository
		contributors []models.RawContributor
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.repositories.GetRepository(gctx, name)
		if err != nil {
			return err
		}
		repo = r
		return nil
	})
	g.Go(func() error {
		contributors = s.contributors.ListContributors(gctx, name)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.RepositoryDetails{
		Repository:   *repo,
		Contributors: contributors,
	}, nil
}

// crawlLoader runs aggregation and enrichment, recording the crawl
func (s *ContributorStatsService) crawlLoader(trigger models.CrawlTrigger) cache.LoadFunc {
	return func(ctx context.Context) (any, error) {
		run := s.crawlRuns.Start(trigger)
		logger.WithField("crawl_run_id", run.ID).WithField("trigger", trigger).Info("Starting organization crawl")

		result, err := s.aggregator.Aggregate(ctx)
		if err != nil {
			s.crawlRuns.Fail(run, err)
			return nil, err
		}

		contributors := s.enricher.Enrich(ctx, result.Contributors)
		s.crawlRuns.Complete(run, result, contributors)
		return contributors, nil
	}
}
