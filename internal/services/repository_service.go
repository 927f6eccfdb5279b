package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/alimgiray/orgscope/internal/githubapi"
	"github.com/alimgiray/orgscope/internal/models"
	"github.com/alimgiray/orgscope/pkg/logger"
	"github.com/sirupsen/logrus"
)

var repositoryNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidRepositoryName reports whether name can be a GitHub repository name
func ValidRepositoryName(name string) bool {
	return name != "." && name != ".." && repositoryNamePattern.MatchString(name)
}

// RepositoryService enumerates the repositories of the configured organization
type RepositoryService struct {
	source RepositorySource
	org    string
}

// NewRepositoryService creates a new repository service
func NewRepositoryService(source RepositorySource, org string) *RepositoryService {
	return &RepositoryService{
		source: source,
		org:    org,
	}
}

// Org returns the organization being crawled
func (s *RepositoryService) Org() string {
	return s.org
}

// ListRepositories returns every repository of the organization.
// A failure here is fatal to the caller.
func (s *RepositoryService) ListRepositories(ctx context.Context) ([]models.Repository, error) {
	repos, err := s.source.ListOrgRepositories(ctx, s.org)
	if err != nil {
		logger.WithError(err).WithField("org", s.org).Error("Failed to list organization repositories")
		return nil, fmt.Errorf("failed to list repositories of %s: %w", s.org, err)
	}

	logger.WithFields(logrus.Fields{
		"org":          s.org,
		"repositories": len(repos),
	}).Info("Listed organization repositories")

	return repos, nil
}

// GetRepository fetches one repository by name
func (s *RepositoryService) GetRepository(ctx context.Context, name string) (*models.Repository, error) {
	name = strings.TrimSpace(name)
	if !ValidRepositoryName(name) {
		return nil, models.NewNotFoundError("repository", name)
	}

	repo, err := s.source.GetRepository(ctx, s.org, name)
	if err != nil {
		if githubapi.IsNotFound(err) {
			return nil, models.NewNotFoundError("repository", name)
		}
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", s.org, name, err)
	}

	return repo, nil
}
