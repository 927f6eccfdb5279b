package handlers

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every endpoint. authRequired guards the /github API
// and token validation.
func SetupRoutes(
	router *gin.Engine,
	githubHandler *GitHubHandler,
	authHandler *AuthHandler,
	healthHandler *HealthHandler,
	authRequired gin.HandlerFunc,
) {
	// Auth routes
	auth := router.Group("/auth")
	{
		auth.GET("/github", authHandler.GitHubLogin)
		auth.GET("/github/callback", authHandler.GitHubCallback)
		auth.GET("/login", authHandler.PlaceholderLogin)
		auth.GET("/validate-token", authRequired, authHandler.ValidateToken)
	}

	// Protected routes
	github := router.Group("/github")
	github.Use(authRequired)
	{
		github.GET("/repositories", githubHandler.ListRepositories)
		github.GET("/contributors", githubHandler.ListContributors)
		github.GET("/contributors/export", githubHandler.ExportContributors)
		github.GET("/contributor/:login", githubHandler.GetContributor)
		github.GET("/repo/:repoName", githubHandler.GetRepository)
		github.GET("/crawls", githubHandler.ListCrawls)
	}

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)

	router.NoRoute(NewNotFoundHandler().NotFound)
}
