package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/alimgiray/orgscope/internal/middleware"
	"github.com/alimgiray/orgscope/internal/services"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type GitHubHandler struct {
	statsService    *services.ContributorStatsService
	exportService   *services.ExportService
	crawlRunService *services.CrawlRunService
}

func NewGitHubHandler(
	statsService *services.ContributorStatsService,
	exportService *services.ExportService,
	crawlRunService *services.CrawlRunService,
) *GitHubHandler {
	return &GitHubHandler{
		statsService:    statsService,
		exportService:   exportService,
		crawlRunService: crawlRunService,
	}
}

// ListRepositories returns every repository of the organization
func (h *GitHubHandler) ListRepositories(c *gin.Context) {
	repos, err := h.statsService.ListRepositories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, repos)
}

// ListContributors returns the aggregated contributor list, optionally sorted
func (h *GitHubHandler) ListContributors(c *gin.Context) {
	contributors, err := h.statsService.GetAggregatedContributors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	sorted, err := services.SortContributors(contributors, c.Query("sort"))
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "sort must be one of: contributions, login")
		return
	}

	c.JSON(http.StatusOK, sorted)
}

// ExportContributors streams the aggregated contributor list as an XLSX file
func (h *GitHubHandler) ExportContributors(c *gin.Context) {
	contributors, err := h.statsService.GetAggregatedContributors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	workbook, err := h.exportService.ContributorsWorkbook(contributors)
	if err != nil {
		respondError(c, err)
		return
	}
	defer workbook.Close()

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("contributors-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GetContributor returns one contributor from the cached aggregate list
func (h *GitHubHandler) GetContributor(c *gin.Context) {
	contributor, err := h.statsService.GetSingleAggregatedContributor(c.Request.Context(), c.Param("login"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contributor)
}

// GetRepository returns a repository with its contributors
func (h *GitHubHandler) GetRepository(c *gin.Context) {
	details, err := h.statsService.GetRepositoryDetails(c.Request.Context(), c.Param("repoName"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// ListCrawls returns the most recent crawl runs
func (h *GitHubHandler) ListCrawls(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "limit must be a number")
		return
	}

	runs, err := h.crawlRunService.ListRecent(limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, runs)
}
