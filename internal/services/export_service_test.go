package services

import (
	"testing"

	"github.com/alimgiray/orgscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContributors() []models.AggregatedContributor {
	return []models.AggregatedContributor{
		{Login: "bob", TotalContributions: 5, ReposContributedTo: []string{"A"}},
		{Login: "alice", TotalContributions: 15, ReposContributedTo: []string{"A", "B"},
			Profile: &models.ContributorProfile{Name: "Alice", Followers: 3, PublicRepos: 4, PublicGists: 1}},
		{Login: "Carol", TotalContributions: 5, ReposContributedTo: []string{"C"}},
	}
}

func loginsOf(list []models.AggregatedContributor) []string {
	logins := make([]string, len(list))
	for i, c := range list {
		logins[i] = c.Login
	}
	return logins
}

func TestSortContributors(t *testing.T) {
	testCases := []struct {
		name     string
		order    string
		expected []string
		wantErr  bool
	}{
		{name: "cached order", order: "", expected: []string{"bob", "alice", "Carol"}},
		{name: "by contributions", order: "contributions", expected: []string{"alice", "bob", "Carol"}},
		{name: "by login", order: "LOGIN", expected: []string{"alice", "bob", "Carol"}},
		{name: "unknown", order: "stars", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := sampleContributors()
			sorted, err := SortContributors(input, tc.order)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, loginsOf(sorted))
			assert.Equal(t, []string{"bob", "alice", "Carol"}, loginsOf(input), "input is not reordered")
		})
	}
}

func TestContributorsWorkbook(t *testing.T) {
	f, err := NewExportService().ContributorsWorkbook(sampleContributors())
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ContributorsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, contributorColumns, rows[0])
	assert.Equal(t, []string{"alice", "Alice", "15", "A, B", "2", "3", "4", "1"}, rows[1])
	assert.Equal(t, "bob", rows[2][0])
	assert.Equal(t, "", rows[2][1])
	assert.Equal(t, "Carol", rows[3][0])
}

func TestContributorsWorkbookEmpty(t *testing.T) {
	f, err := NewExportService().ContributorsWorkbook(nil)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ContributorsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
