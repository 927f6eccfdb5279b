package handlers

import (
	"net/http"

	"github.com/alimgiray/orgscope/internal/services"
	"github.com/gin-gonic/gin"
)

// WorkerStatusReporter reports whether each background worker is running
type WorkerStatusReporter interface {
	GetWorkerStatus() map[string]bool
}

type HealthHandler struct {
	statsService *services.ContributorStatsService
	workers      WorkerStatusReporter
}

func NewHealthHandler(statsService *services.ContributorStatsService, workers WorkerStatusReporter) *HealthHandler {
	return &HealthHandler{
		statsService: statsService,
		workers:      workers,
	}
}

// HealthCheck reports liveness, cache counters and worker status
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "orgscope",
		"cache":   h.statsService.CacheStats(),
		"workers": h.workers.GetWorkerStatus(),
	})
}
