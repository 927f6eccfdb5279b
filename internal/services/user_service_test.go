package services

import (
	"testing"

	"github.com/alimgiray/orgscope/internal/models"
	"github.com/alimgiray/orgscope/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertGitHubUser(t *testing.T) {
	service := NewUserService(repositories.NewUserRepository(openTestDB(t)))

	created, err := service.UpsertGitHubUser(&GitHubUser{ID: 7, Login: "alice", Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	updated, err := service.UpsertGitHubUser(&GitHubUser{ID: 7, Login: "alice-renamed", Name: "Alice R."})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "alice-renamed", updated.Username)
	assert.Equal(t, "alice@example.com", updated.Email, "empty email keeps the stored one")

	byID, err := service.GetUserByID(created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "alice-renamed", byID.Username)

	_, err = service.GetUserByID("missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCrawlRunServiceListRecentLimit(t *testing.T) {
	service := NewCrawlRunService(repositories.NewCrawlRunRepository(openTestDB(t)), "acme")

	runs, err := service.ListRecent(0)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	for i := 0; i < 3; i++ {
		run := service.Start(models.CrawlTriggerWarmup)
		service.Complete(run, &AggregationResult{RepositoryCount: i}, nil)
	}

	runs, err = service.ListRecent(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	for _, run := range runs {
		assert.Equal(t, "acme", run.Org)
		assert.Equal(t, models.CrawlStatusCompleted, run.Status)
	}
}
