package workers

import (
	"context"
	"time"

	"github.com/alimgiray/orgscope/internal/models"
	"github.com/alimgiray/orgscope/pkg/logger"
)

// ContributorRefresher rebuilds the cached aggregate contributor list
type ContributorRefresher interface {
	RefreshAggregatedContributors(ctx context.Context, trigger models.CrawlTrigger) ([]models.AggregatedContributor, error)
}

// CacheRefreshWorker warms the contributor cache on start and rebuilds it on an interval
type CacheRefreshWorker struct {
	*BaseWorker
	refresher   ContributorRefresher
	warmOnStart bool
	interval    time.Duration
}

// NewCacheRefreshWorker creates a refresh worker. An interval of zero disables periodic refresh.
func NewCacheRefreshWorker(workerID string, refresher ContributorRefresher, warmOnStart bool, interval time.Duration) *CacheRefreshWorker {
	return &CacheRefreshWorker{
		BaseWorker:  NewBaseWorker(workerID),
		refresher:   refresher,
		warmOnStart: warmOnStart,
		interval:    interval,
	}
}

// Start begins the refresh loop
func (w *CacheRefreshWorker) Start(ctx context.Context) error {
	w.setRunning(true)
	defer w.setRunning(false)
	logger.WithField("worker", w.WorkerID).Info("Cache refresh worker started")

	if w.warmOnStart {
		w.refresh(ctx, models.CrawlTriggerWarmup)
	}

	// Nothing left to do without an interval, wait for shutdown
	if w.interval <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.StopChan:
			return nil
		}
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.WithField("worker", w.WorkerID).Info("Cache refresh worker stopping due to context cancellation")
			return ctx.Err()
		case <-w.StopChan:
			logger.WithField("worker", w.WorkerID).Info("Cache refresh worker stopping")
			return nil
		case <-ticker.C:
			w.refresh(ctx, models.CrawlTriggerRefresh)
		}
	}
}

func (w *CacheRefreshWorker) refresh(ctx context.Context, trigger models.CrawlTrigger) {
	start := time.Now()
	contributors, err := w.refresher.RefreshAggregatedContributors(ctx, trigger)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.WithError(err).WithField("trigger", trigger).Warn("Contributor cache refresh failed")
		return
	}

	logger.WithField("trigger", trigger).Infof("Contributor cache refreshed with %d contributors in %s",
		len(contributors), time.Since(start).Round(time.Millisecond))
}
