package services

import (
	"context"

	"github.com/alimgiray/orgscope/internal/models"
)

// RepositorySource lists and fetches organization repositories
type RepositorySource interface {
	ListOrgRepositories(ctx context.Context, org string) ([]models.Repository, error)
	GetRepository(ctx context.Context, org, repo string) (*models.Repository, error)
}

// ContributorSource lists the contributors of one repository
type ContributorSource interface {
	ListContributors(ctx context.Context, org, repo string) ([]models.RawContributor, error)
}

// ProfileSource fetches a user's public profile
type ProfileSource interface {
	GetUser(ctx context.Context, login string) (*models.ContributorProfile, error)
}
