package models

import "time"

// RawContributor is one contributor as reported for a single repository
type RawContributor struct {
	Login         string `json:"login"`
	Contributions int    `json:"contributions"`
	AvatarURL     string `json:"avatarUrl"`
}

// ContributorProfile holds the public account details of a GitHub user
type ContributorProfile struct {
	Name        string    `json:"name"`
	AvatarURL   string    `json:"avatarUrl"`
	HTMLURL     string    `json:"htmlUrl"`
	Company     string    `json:"company"`
	Blog        string    `json:"blog"`
	Location    string    `json:"location"`
	Bio         string    `json:"bio"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	PublicRepos int       `json:"publicRepos"`
	PublicGists int       `json:"publicGists"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AggregatedContributor merges a login's contributions across every
// repository of the organization.
//
// TotalContributions is the sum over all successfully fetched repositories.
// ReposContributedTo keeps the order repositories were merged in and holds
// each name at most once.
type AggregatedContributor struct {
	Login              string              `json:"login"`
	TotalContributions int                 `json:"totalContributions"`
	ReposContributedTo []string            `json:"reposContributedTo"`
	AvatarURL          string              `json:"avatarUrl,omitempty"`
	Profile            *ContributorProfile `json:"profile,omitempty"`
}

// NewAggregatedContributor creates an empty aggregate for login
func NewAggregatedContributor(login string) *AggregatedContributor {
	return &AggregatedContributor{
		Login:              login,
		ReposContributedTo: []string{},
	}
}

// AddContribution records count contributions to repo
func (a *AggregatedContributor) AddContribution(repo string, count int) {
	a.TotalContributions += count
	if !a.ContributedTo(repo) {
		a.ReposContributedTo = append(a.ReposContributedTo, repo)
	}
}

// ContributedTo checks if repo is already recorded
func (a *AggregatedContributor) ContributedTo(repo string) bool {
	for _, name := range a.ReposContributedTo {
		if name == repo {
			return true
		}
	}
	return false
}

// IsEnriched checks if profile details were attached
func (a *AggregatedContributor) IsEnriched() bool {
	return a.Profile != nil
}
