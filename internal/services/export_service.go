package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alimgiray/orgscope/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	ContributorsSheet = "Contributors"

	SortByContributions = "contributions"
	SortByLogin         = "login"
)

var contributorColumns = []string{
	"Login",
	"Name",
	"Total Contributions",
	"Repositories",
	"Repository Count",
	"Followers",
	"Public Repos",
	"Public Gists",
}

// SortContributors returns a sorted copy of contributors.
// An unknown or empty order keeps the cached order.
func SortContributors(contributors []models.AggregatedContributor, order string) ([]models.AggregatedContributor, error) {
	sorted := make([]models.AggregatedContributor, len(contributors))
	copy(sorted, contributors)

	switch strings.ToLower(order) {
	case "":
	case SortByContributions:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].TotalContributions != sorted[j].TotalContributions {
				return sorted[i].TotalContributions > sorted[j].TotalContributions
			}
			return strings.ToLower(sorted[i].Login) < strings.ToLower(sorted[j].Login)
		})
	case SortByLogin:
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Login) < strings.ToLower(sorted[j].Login)
		})
	default:
		return nil, fmt.Errorf("unknown sort order %q", order)
	}

	return sorted, nil
}

// ExportService renders the aggregate list as a spreadsheet
type ExportService struct{}

// NewExportService creates a new export service
func NewExportService() *ExportService {
	return &ExportService{}
}

// ContributorsWorkbook builds an XLSX workbook with one row per contributor,
// ordered by total contributions
func (s *ExportService) ContributorsWorkbook(contributors []models.AggregatedContributor) (*excelize.File, error) {
	sorted, err := SortContributors(contributors, SortByContributions)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ContributorsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(ContributorsSheet, "A1", &contributorColumns); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	lastColumn, _ := excelize.ColumnNumberToName(len(contributorColumns))
	if err := f.SetCellStyle(ContributorsSheet, "A1", lastColumn+"1", headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, c := range sorted {
		var name string
		var followers, publicRepos, publicGists int
		if c.Profile != nil {
			name = c.Profile.Name
			followers = c.Profile.Followers
			publicRepos = c.Profile.PublicRepos
			publicGists = c.Profile.PublicGists
		}

		row := []any{
			c.Login,
			name,
			c.TotalContributions,
			strings.Join(c.ReposContributedTo, ", "),
			len(c.ReposContributedTo),
			followers,
			publicRepos,
			publicGists,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(ContributorsSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row for %s: %w", c.Login, err)
		}
	}

	if err := f.SetColWidth(ContributorsSheet, "A", "B", 24); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(ContributorsSheet, "D", "D", 60); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}
