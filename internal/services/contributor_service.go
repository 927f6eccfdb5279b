package services

import (
	"context"
	"fmt"

	"github.com/alimgiray/orgscope/internal/models"
	"github.com/alimgiray/orgscope/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ContributorService lists the contributors of single repositories
type ContributorService struct {
	source ContributorSource
	org    string
}

// NewContributorService creates a new contributor service
func NewContributorService(source ContributorSource, org string) *ContributorService {
	return &ContributorService{
		source: source,
		org:    org,
	}
}

// FetchContributors returns all contributors of repo or the upstream error
func (s *ContributorService) FetchContributors(ctx context.Context, repo string) ([]models.RawContributor, error) {
	contributors, err := s.source.ListContributors(ctx, s.org, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributors of %s/%s: %w", s.org, repo, err)
	}
	return contributors, nil
}

// ListContributors is FetchContributors that logs a failure and returns an
// empty list instead, so one broken repository never fails its caller.
func (s *ContributorService) ListContributors(ctx context.Context, repo string) []models.RawContributor {
	contributors, err := s.FetchContributors(ctx, repo)
	if err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"org":  s.org,
			"repo": repo,
		}).Warn("Failed to fetch contributors, skipping repository")
		return []models.RawContributor{}
	}
	return contributors
}
