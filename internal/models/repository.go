package models

// Repository is a snapshot of one organization repository
type Repository struct {
	Name        string `json:"name"`
	FullName    string `json:"fullName"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	OpenIssues  int    `json:"openIssues"`
	Language    string `json:"language"`
}

// RepositoryDetails is a repository together with its contributors
type RepositoryDetails struct {
	Repository
	Contributors []RawContributor `json:"contributors"`
}
