package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/alimgiray/orgscope/internal/models"
	"github.com/alimgiray/orgscope/pkg/logger"
	"github.com/sirupsen/logrus"
)

// AggregationResult is the merged, not yet enriched, contributor list of one crawl
type AggregationResult struct {
	Contributors       []models.AggregatedContributor
	RepositoryCount    int
	FailedRepositories []string
}

// repoResult is the outcome of fetching one repository's contributors
type repoResult struct {
	repo         string
	contributors []models.RawContributor
	err          error
}

// AggregationService merges contributors across every repository of the organization
type AggregationService struct {
	repositories *RepositoryService
	contributors *ContributorService
}

// NewAggregationService creates a new aggregation service
func NewAggregationService(repositories *RepositoryService, contributors *ContributorService) *AggregationService {
	return &AggregationService{
		repositories: repositories,
		contributors: contributors,
	}
}

// Aggregate lists the organization's repositories, fetches the contributors
// of all of them concurrently and merges the results by login.
//
// Only the repository listing can fail the call. A repository whose
// contributors cannot be fetched is logged, counted and left out.
func (s *AggregationService) Aggregate(ctx context.Context) (*AggregationResult, error) {
	repos, err := s.repositories.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}

	names := repositoryNames(repos)
	results := s.fetchAll(ctx, names)
	contributors, failed := mergeContributors(results)

	for _, res := range results {
		if res.err != nil {
			logger.WithError(res.err).WithField("repo", res.repo).Warn("Skipping repository in aggregation")
		}
	}

	logger.WithFields(logrus.Fields{
		"org":          s.repositories.Org(),
		"repositories": len(names),
		"failed":       len(failed),
		"contributors": len(contributors),
	}).Info("Aggregated organization contributors")

	return &AggregationResult{
		Contributors:       contributors,
		RepositoryCount:    len(names),
		FailedRepositories: failed,
	}, nil
}

// fetchAll starts one goroutine per repository and waits for every one of
// them. Each goroutine writes only its own slot.
func (s *AggregationService) fetchAll(ctx context.Context, names []string) []repoResult {
	results := make([]repoResult, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = repoResult{repo: name, err: fmt.Errorf("contributor fetch panicked: %v", r)}
				}
			}()

			contributors, err := s.contributors.FetchContributors(ctx, name)
			results[i] = repoResult{repo: name, contributors: contributors, err: err}
		}(i, name)
	}
	wg.Wait()

	return results
}

// mergeContributors folds per-repository results into one record per login.
// Records keep first-seen order and repositories keep result order.
func mergeContributors(results []repoResult) ([]models.AggregatedContributor, []string) {
	byLogin := make(map[string]*models.AggregatedContributor)
	var order []string
	failed := []string{}

	for _, res := range results {
		if res.err != nil {
			failed = append(failed, res.repo)
			continue
		}

		for _, raw := range res.contributors {
			aggregate, ok := byLogin[raw.Login]
			if !ok {
				aggregate = models.NewAggregatedContributor(raw.Login)
				byLogin[raw.Login] = aggregate
				order = append(order, raw.Login)
			}

			aggregate.AddContribution(res.repo, raw.Contributions)
			if aggregate.AvatarURL == "" {
				aggregate.AvatarURL = raw.AvatarURL
			}
		}
	}

	merged := make([]models.AggregatedContributor, 0, len(order))
	for _, login := range order {
		merged = append(merged, *byLogin[login])
	}
	return merged, failed
}

// repositoryNames returns the repository names without duplicates
func repositoryNames(repos []models.Repository) []string {
	seen := make(map[string]struct{}, len(repos))
	names := make([]string, 0, len(repos))
	for _, repo := range repos {
		if repo.Name == "" {
			continue
		}
		if _, ok := seen[repo.Name]; ok {
			continue
		}
		seen[repo.Name] = struct{}{}
		names = append(names, repo.Name)
	}
	return names
}
