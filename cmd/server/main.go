package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/orgscope/internal/githubapi"
	"github.com/alimgiray/orgscope/internal/handlers"
	"github.com/alimgiray/orgscope/internal/middleware"
	"github.com/alimgiray/orgscope/internal/repositories"
	"github.com/alimgiray/orgscope/internal/services"
	"github.com/alimgiray/orgscope/internal/workers"
	"github.com/alimgiray/orgscope/pkg/cache"
	"github.com/alimgiray/orgscope/pkg/config"
	"github.com/alimgiray/orgscope/pkg/database"
	"github.com/alimgiray/orgscope/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize cache
	backend, err := cache.New(context.Background(), cfg.Cache)
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}
	defer backend.Close()
	store := cache.NewStore(backend)

	// Initialize GitHub client
	if cfg.GitHub.Token == "" {
		logger.Warnf("GITHUB_PAT is not set, requests are limited to the anonymous rate limit")
	}
	githubClient, err := githubapi.NewClient(cfg.GitHub.Token,
		githubapi.WithBaseURL(cfg.GitHub.APIURL),
		githubapi.WithPerPage(cfg.GitHub.PerPage),
		githubapi.WithTimeout(cfg.GitHub.RequestTimeout),
	)
	if err != nil {
		logger.Fatalf("Failed to create GitHub client: %v", err)
	}
	logger.WithField("base_url", githubClient.BaseURL()).Info("GitHub client ready")

	// Initialize dependencies
	userRepo := repositories.NewUserRepository(db)
	crawlRunRepo := repositories.NewCrawlRunRepository(db)

	userService := services.NewUserService(userRepo)
	crawlRunService := services.NewCrawlRunService(crawlRunRepo, cfg.GitHub.Org)
	repositoryService := services.NewRepositoryService(githubClient, cfg.GitHub.Org)
	contributorService := services.NewContributorService(githubClient, cfg.GitHub.Org)
	aggregationService := services.NewAggregationService(repositoryService, contributorService)
	enrichmentService := services.NewEnrichmentService(githubClient, cfg.GitHub.EnrichBatchSize)
	statsService := services.NewContributorStatsService(
		repositoryService, contributorService, aggregationService, enrichmentService, crawlRunService,
		store, cfg.Cache.ContributorsTTL, cfg.Cache.RepositoryTTL,
	)
	exportService := services.NewExportService()

	var githubService *services.GitHubService
	if cfg.OAuthEnabled() {
		githubService = services.NewGitHubService(cfg.OAuth, cfg.GitHub.APIURL)
	} else {
		logger.Info("GitHub OAuth is not configured, /auth/github is disabled")
	}

	issuer := middleware.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration)

	workerManager := workers.NewWorkerManager()
	if cfg.Cache.WarmOnStart || cfg.Cache.RefreshInterval > 0 {
		workerManager.Register(workers.NewCacheRefreshWorker(
			"cache-refresh-1", statsService, cfg.Cache.WarmOnStart, cfg.Cache.RefreshInterval,
		))
	}

	// Initialize router
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers.SetupRoutes(router,
		handlers.NewGitHubHandler(statsService, exportService, crawlRunService),
		handlers.NewAuthHandler(userService, githubService, issuer, cfg.Auth.FrontendURL, cfg.Auth.PlaceholderLogin),
		handlers.NewHealthHandler(statsService, workerManager),
		middleware.AuthRequired(issuer),
	)

	// Start workers
	workerManager.StartAll()

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.WithField("org", cfg.GitHub.Org).Infof("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shut down")
	}

	workerManager.StopAll()
	logger.Info("Server stopped")
}
