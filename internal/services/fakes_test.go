package services

import (
	"context"
	"database/sql"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alimgiray/orgscope/internal/githubapi"
	"github.com/alimgiray/orgscope/internal/models"
	"github.com/alimgiray/orgscope/internal/repositories"
	"github.com/alimgiray/orgscope/pkg/cache"
	"github.com/alimgiray/orgscope/pkg/database"
	"github.com/stretchr/testify/require"
)

// fakeGitHub is an in-memory stand-in for githubapi.Client
type fakeGitHub struct {
	mu              sync.Mutex
	repos           []models.Repository
	listErr         error
	contributors    map[string][]models.RawContributor
	contributorErrs map[string]error
	profiles        map[string]*models.ContributorProfile
	profileErrs     map[string]error
	delay           time.Duration

	listCalls        atomic.Int32
	getRepoCalls     atomic.Int32
	contributorCalls atomic.Int32
	profileCalls     atomic.Int32
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		contributors:    make(map[string][]models.RawContributor),
		contributorErrs: make(map[string]error),
		profiles:        make(map[string]*models.ContributorProfile),
		profileErrs:     make(map[string]error),
	}
}

func (f *fakeGitHub) addRepo(name string, contributors ...models.RawContributor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repos = append(f.repos, models.Repository{Name: name, FullName: "acme/" + name})
	f.contributors[name] = contributors
}

func (f *fakeGitHub) sleep(ctx context.Context) error {
	if f.delay == 0 {
		return nil
	}
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeGitHub) ListOrgRepositories(ctx context.Context, org string) ([]models.Repository, error) {
	f.listCalls.Add(1)
	if err := f.sleep(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Repository(nil), f.repos...), nil
}

func (f *fakeGitHub) GetRepository(ctx context.Context, org, repo string) (*models.Repository, error) {
	f.getRepoCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.repos {
		if r.Name == repo {
			found := r
			return &found, nil
		}
	}
	return nil, &githubapi.UpstreamError{
		URL:        "https://api.github.com/repos/" + org + "/" + repo,
		StatusCode: http.StatusNotFound,
		Err:        githubapi.ErrNotFound,
	}
}

func (f *fakeGitHub) ListContributors(ctx context.Context, org, repo string) ([]models.RawContributor, error) {
	f.contributorCalls.Add(1)
	if err := f.sleep(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.contributorErrs[repo]; err != nil {
		return nil, err
	}
	contributors, ok := f.contributors[repo]
	if !ok {
		return nil, &githubapi.UpstreamError{StatusCode: http.StatusNotFound, Err: githubapi.ErrNotFound}
	}
	return append([]models.RawContributor(nil), contributors...), nil
}

func (f *fakeGitHub) GetUser(ctx context.Context, login string) (*models.ContributorProfile, error) {
	f.profileCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.profileErrs[login]; err != nil {
		return nil, err
	}
	if profile, ok := f.profiles[login]; ok {
		copied := *profile
		return &copied, nil
	}
	return &models.ContributorProfile{Name: "Name of " + login, Followers: 1}, nil
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type statsFixture struct {
	service   *ContributorStatsService
	crawlRuns *CrawlRunService
	store     *cache.Store
}

func newStatsFixture(t *testing.T, gh *fakeGitHub) *statsFixture {
	t.Helper()
	return newStatsFixtureWithSources(t, gh, gh, gh)
}

func newStatsFixtureWithSources(t *testing.T, repos RepositorySource, contributors ContributorSource, profiles ProfileSource) *statsFixture {
	t.Helper()

	repoService := NewRepositoryService(repos, "acme")
	contributorService := NewContributorService(contributors, "acme")
	crawlRuns := NewCrawlRunService(repositories.NewCrawlRunRepository(openTestDB(t)), "acme")
	store := cache.NewStore(cache.NewMemoryCache())

	service := NewContributorStatsService(
		repoService,
		contributorService,
		NewAggregationService(repoService, contributorService),
		NewEnrichmentService(profiles, 50),
		crawlRuns,
		store,
		time.Hour,
		6*time.Hour,
	)

	return &statsFixture{service: service, crawlRuns: crawlRuns, store: store}
}
