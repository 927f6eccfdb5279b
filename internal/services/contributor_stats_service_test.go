package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alimgiray/orgscope/internal/githubapi"
	"github.com/alimgiray/orgscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aliceAndBob() *fakeGitHub {
	gh := newFakeGitHub()
	gh.addRepo("A", models.RawContributor{Login: "alice", Contributions: 10}, models.RawContributor{Login: "bob", Contributions: 1})
	gh.addRepo("B", models.RawContributor{Login: "alice", Contributions: 5})
	return gh
}

func TestGetAggregatedContributorsCachesResult(t *testing.T) {
	gh := aliceAndBob()
	fx := newStatsFixture(t, gh)
	ctx := context.Background()

	first, err := fx.service.GetAggregatedContributors(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "alice", first[0].Login)
	assert.Equal(t, 15, first[0].TotalContributions)
	assert.Equal(t, []string{"A", "B"}, first[0].ReposContributedTo)
	require.NotNil(t, first[0].Profile)

	second, err := fx.service.GetAggregatedContributors(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, int32(1), gh.listCalls.Load(), "second call must be served from cache")
	assert.Equal(t, int32(2), gh.contributorCalls.Load())

	runs, err := fx.crawlRuns.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.CrawlStatusCompleted, runs[0].Status)
	assert.Equal(t, models.CrawlTriggerRequest, runs[0].Trigger)
	assert.Equal(t, 2, runs[0].RepositoryCount)
	assert.Equal(t, 2, runs[0].ContributorCount)
	assert.Equal(t, 2, runs[0].EnrichedCount)
}

func TestConcurrentMissesShareOneCrawl(t *testing.T) {
	gh := aliceAndBob()
	gh.delay = 50 * time.Millisecond
	fx := newStatsFixture(t, gh)

	const callers = 10
	var wg sync.WaitGroup
	errs := make([]error, callers)
	lens := make([]int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			list, err := fx.service.GetAggregatedContributors(context.Background())
			errs[i] = err
			lens[i] = len(list)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 2, lens[i])
	}
	assert.Equal(t, int32(1), gh.listCalls.Load())
}

func TestCrawlFailureIsNotCached(t *testing.T) {
	gh := aliceAndBob()
	gh.listErr = &githubapi.RateLimitError{UpstreamError: &githubapi.UpstreamError{StatusCode: http.StatusForbidden, Err: errors.New("limit")}}
	fx := newStatsFixture(t, gh)
	ctx := context.Background()

	_, err := fx.service.GetAggregatedContributors(ctx)
	require.Error(t, err)
	assert.True(t, githubapi.IsRateLimited(err))

	gh.mu.Lock()
	gh.listErr = nil
	gh.mu.Unlock()

	list, err := fx.service.GetAggregatedContributors(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, int32(2), gh.listCalls.Load())

	runs, err := fx.crawlRuns.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	statuses := []models.CrawlStatus{runs[0].Status, runs[1].Status}
	assert.ElementsMatch(t, []models.CrawlStatus{models.CrawlStatusCompleted, models.CrawlStatusFailed}, statuses)
}

func TestGetSingleAggregatedContributor(t *testing.T) {
	gh := aliceAndBob()
	fx := newStatsFixture(t, gh)
	ctx := context.Background()

	_, err := fx.service.GetSingleAggregatedContributor(ctx, "alice")
	assert.ErrorIs(t, err, models.ErrNotFound, "empty cache reports not found")
	assert.Equal(t, int32(0), gh.listCalls.Load(), "lookup never crawls")

	_, err = fx.service.GetAggregatedContributors(ctx)
	require.NoError(t, err)

	testCases := []struct {
		name  string
		login string
		found bool
	}{
		{name: "exact", login: "alice", found: true},
		{name: "upper case", login: "ALICE", found: true},
		{name: "mixed case", login: "Bob", found: true},
		{name: "unknown", login: "carol", found: false},
		{name: "empty", login: "", found: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := fx.service.GetSingleAggregatedContributor(ctx, tc.login)
			if !tc.found {
				assert.ErrorIs(t, err, models.ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.EqualFold(tc.login, c.Login))
		})
	}

	lower, err := fx.service.GetSingleAggregatedContributor(ctx, "alice")
	require.NoError(t, err)
	upper, err := fx.service.GetSingleAggregatedContributor(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, lower, upper)
	assert.Equal(t, 15, upper.TotalContributions)
}

func TestGetRepositoryDetails(t *testing.T) {
	gh := aliceAndBob()
	fx := newStatsFixture(t, gh)
	ctx := context.Background()

	details, err := fx.service.GetRepositoryDetails(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "A", details.Name)
	assert.Equal(t, "acme/A", details.FullName)
	require.Len(t, details.Contributors, 2)
	assert.Equal(t, "alice", details.Contributors[0].Login)

	_, err = fx.service.GetRepositoryDetails(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int32(1), gh.getRepoCalls.Load(), "details are cached per repository")

	var stored models.RepositoryDetails
	ok, err := fx.store.Peek(ctx, RepositoryDetailsKey("a"), &stored)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fx.store.Peek(ctx, AggregatedContributorsKey, &[]models.AggregatedContributor{})
	require.NoError(t, err)
	assert.False(t, ok, "details do not populate the aggregate cache")
}

func TestGetRepositoryDetailsNotFound(t *testing.T) {
	gh := aliceAndBob()
	fx := newStatsFixture(t, gh)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		details, err := fx.service.GetRepositoryDetails(ctx, "nonexistent-repo")
		assert.Nil(t, details)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrNotFound)

		var nf *models.NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "repository", nf.Kind)
	}
	assert.Equal(t, int32(2), gh.getRepoCalls.Load(), "not found is not cached")

	_, err := fx.service.GetRepositoryDetails(ctx, "   ")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetRepositoryDetailsRejectsInvalidNames(t *testing.T) {
	gh := aliceAndBob()
	fx := newStatsFixture(t, gh)
	ctx := context.Background()

	names := []string{"A?evil=1", "A#frag", "A/contributors", "..", ".", "A B", "ä"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			details, err := fx.service.GetRepositoryDetails(ctx, name)
			assert.Nil(t, details)
			assert.ErrorIs(t, err, models.ErrNotFound)

			ok, err := fx.store.Peek(ctx, RepositoryDetailsKey(name), &models.RepositoryDetails{})
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}

	assert.Zero(t, gh.getRepoCalls.Load())
	assert.Zero(t, gh.contributorCalls.Load())
	assert.Zero(t, fx.store.Stats().Loads)
}

func TestValidRepositoryName(t *testing.T) {
	testCases := []struct {
		name  string
		valid bool
	}{
		{name: "core", valid: true},
		{name: "my-repo_2.0", valid: true},
		{name: ".github", valid: true},
		{name: "", valid: false},
		{name: ".", valid: false},
		{name: "..", valid: false},
		{name: "a/b", valid: false},
		{name: "a?b", valid: false},
		{name: "a%2Fb", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, ValidRepositoryName(tc.name))
		})
	}
}

func TestRefreshAggregatedContributors(t *testing.T) {
	gh := aliceAndBob()
	fx := newStatsFixture(t, gh)
	ctx := context.Background()

	_, err := fx.service.GetAggregatedContributors(ctx)
	require.NoError(t, err)

	gh.addRepo("C", models.RawContributor{Login: "carol", Contributions: 7})

	refreshed, err := fx.service.RefreshAggregatedContributors(ctx, models.CrawlTriggerRefresh)
	require.NoError(t, err)
	assert.Len(t, refreshed, 3)

	list, err := fx.service.GetAggregatedContributors(ctx)
	require.NoError(t, err)
	assert.Equal(t, refreshed, list)
	assert.Equal(t, int32(2), gh.listCalls.Load())

	carol, err := fx.service.GetSingleAggregatedContributor(ctx, "CAROL")
	require.NoError(t, err)
	assert.Equal(t, 7, carol.TotalContributions)
}

// TestTwoCallsOneCrawlOverHTTP drives the real client against a fake GitHub
func TestTwoCallsOneCrawlOverHTTP(t *testing.T) {
	var repoListHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		repoListHits.Add(1)
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/orgs/acme/repos?page=2>; rel="next"`, r.Host))
			fmt.Fprint(w, `[{"name":"A","full_name":"acme/A"}]`)
			return
		}
		fmt.Fprint(w, `[{"name":"B","full_name":"acme/B"}]`)
	})
	mux.HandleFunc("/repos/acme/A/contributors", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"login":"alice","contributions":10}]`)
	})
	mux.HandleFunc("/repos/acme/B/contributors", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"login":"alice","contributions":5}]`)
	})
	mux.HandleFunc("/users/alice", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login":"alice","name":"Alice","followers":3,"public_repos":4,"public_gists":1}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := githubapi.NewClient("token", githubapi.WithBaseURL(server.URL))
	require.NoError(t, err)
	fx := newStatsFixtureWithSources(t, client, client, client)

	for i := 0; i < 2; i++ {
		list, err := fx.service.GetAggregatedContributors(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, 15, list[0].TotalContributions)
		assert.Equal(t, []string{"A", "B"}, list[0].ReposContributedTo)
		require.NotNil(t, list[0].Profile)
		assert.Equal(t, 3, list[0].Profile.Followers)
		assert.Equal(t, 4, list[0].Profile.PublicRepos)
		assert.Equal(t, 1, list[0].Profile.PublicGists)
	}

	assert.Equal(t, int32(2), repoListHits.Load(), "one crawl of two pages")
}
