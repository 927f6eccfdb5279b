// Package githubapi is the read-only GitHub REST client used by the crawl:
// a Link-header pager plus the four endpoints the aggregation needs.
package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alimgiray/orgscope/internal/models"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://api.github.com/"
	DefaultPerPage = 100
	DefaultTimeout = 60 * time.Second
)

// Client talks to the GitHub REST API on behalf of one token
type Client struct {
	gh      *github.Client
	perPage int
	timeout time.Duration
}

type clientOptions struct {
	baseURL    string
	perPage    int
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures a Client
type Option func(*clientOptions)

// WithBaseURL points the client at a GitHub Enterprise or test server
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// WithPerPage sets the page size of list requests
func WithPerPage(perPage int) Option {
	return func(o *clientOptions) {
		o.perPage = perPage
	}
}

// WithTimeout bounds every single upstream request
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

// NewClient creates a GitHub client. An empty token sends unauthenticated requests.
func NewClient(token string, opts ...Option) (*Client, error) {
	o := clientOptions{
		baseURL: DefaultBaseURL,
		perPage: DefaultPerPage,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.perPage < 1 || o.perPage > 100 {
		return nil, fmt.Errorf("per page must be between 1 and 100, got %d", o.perPage)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	if o.timeout > 0 {
		// Copy so a caller supplied client is left untouched
		withTimeout := *httpClient
		withTimeout.Timeout = o.timeout
		httpClient = &withTimeout
	}

	gh := github.NewClient(httpClient)
	baseURL, err := parseBaseURL(o.baseURL)
	if err != nil {
		return nil, err
	}
	gh.BaseURL = baseURL

	return &Client{
		gh:      gh,
		perPage: o.perPage,
		timeout: o.timeout,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL %q: %w", raw, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("GitHub API URL %q must be absolute", raw)
	}
	return u, nil
}

// BaseURL returns the API root requests are resolved against
func (c *Client) BaseURL() string {
	return c.gh.BaseURL.String()
}

// withTimeout derives the per-request context
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// ListOrgRepositories returns every repository of org
func (c *Client) ListOrgRepositories(ctx context.Context, org string) ([]models.Repository, error) {
	path := fmt.Sprintf("orgs/%s/repos?per_page=%d", url.PathEscape(org), c.perPage)
	repos, err := FetchAllPages[*github.Repository](ctx, c, path)
	if err != nil {
		return nil, err
	}

	result := make([]models.Repository, 0, len(repos))
	for _, repo := range repos {
		if repo == nil {
			continue
		}
		result = append(result, repositoryFromAPI(repo))
	}
	return result, nil
}

// ListContributors returns every contributor of org/repo
func (c *Client) ListContributors(ctx context.Context, org, repo string) ([]models.RawContributor, error) {
	path := fmt.Sprintf("repos/%s/%s/contributors?per_page=%d", url.PathEscape(org), url.PathEscape(repo), c.perPage)
	contributors, err := FetchAllPages[*github.Contributor](ctx, c, path)
	if err != nil {
		return nil, err
	}

	result := make([]models.RawContributor, 0, len(contributors))
	for _, contributor := range contributors {
		// Anonymous entries carry no login and cannot be merged
		if contributor == nil || contributor.GetLogin() == "" {
			continue
		}
		result = append(result, models.RawContributor{
			Login:         contributor.GetLogin(),
			Contributions: contributor.GetContributions(),
			AvatarURL:     contributor.GetAvatarURL(),
		})
	}
	return result, nil
}

// GetRepository fetches a single repository of org
func (c *Client) GetRepository(ctx context.Context, org, repo string) (*models.Repository, error) {
	var r github.Repository
	if err := c.get(ctx, fmt.Sprintf("repos/%s/%s", url.PathEscape(org), url.PathEscape(repo)), &r); err != nil {
		return nil, err
	}

	result := repositoryFromAPI(&r)
	return &result, nil
}

// GetUser fetches the public profile of login
func (c *Client) GetUser(ctx context.Context, login string) (*models.ContributorProfile, error) {
	var u github.User
	if err := c.get(ctx, "users/"+url.PathEscape(login), &u); err != nil {
		return nil, err
	}
	return profileFromAPI(&u), nil
}

// AuthenticatedUser returns the account owning the client's token
func (c *Client) AuthenticatedUser(ctx context.Context) (*github.User, error) {
	var u github.User
	if err := c.get(ctx, "user", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// get decodes a single resource. path must already be escaped.
func (c *Client) get(ctx context.Context, path string, v any) error {
	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.gh.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return &UpstreamError{URL: path, Err: err}
	}

	resp, err := c.gh.Do(reqCtx, req, v)
	if err != nil {
		return classifyError(req.URL.String(), resp, err)
	}
	return nil
}

func repositoryFromAPI(repo *github.Repository) models.Repository {
	return models.Repository{
		Name:        repo.GetName(),
		FullName:    repo.GetFullName(),
		Description: repo.GetDescription(),
		Stars:       repo.GetStargazersCount(),
		Forks:       repo.GetForksCount(),
		OpenIssues:  repo.GetOpenIssuesCount(),
		Language:    repo.GetLanguage(),
	}
}

func profileFromAPI(u *github.User) *models.ContributorProfile {
	return &models.ContributorProfile{
		Name:        u.GetName(),
		AvatarURL:   u.GetAvatarURL(),
		HTMLURL:     u.GetHTMLURL(),
		Company:     u.GetCompany(),
		Blog:        u.GetBlog(),
		Location:    u.GetLocation(),
		Bio:         u.GetBio(),
		Followers:   u.GetFollowers(),
		Following:   u.GetFollowing(),
		PublicRepos: u.GetPublicRepos(),
		PublicGists: u.GetPublicGists(),
		CreatedAt:   u.GetCreatedAt().Time,
	}
}
