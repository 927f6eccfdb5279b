package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/alimgiray/orgscope/internal/models"
	"github.com/alimgiray/orgscope/pkg/logger"
	"github.com/sirupsen/logrus"
)

const DefaultEnrichBatchSize = 50

// EnrichmentService attaches public profiles to aggregated contributors
type EnrichmentService struct {
	profiles  ProfileSource
	batchSize int

	// onBatch is called before each batch starts, for tests
	onBatch func(batch, size int)
}

// NewEnrichmentService creates a new enrichment service
func NewEnrichmentService(profiles ProfileSource, batchSize int) *EnrichmentService {
	if batchSize < 1 {
		batchSize = DefaultEnrichBatchSize
	}
	return &EnrichmentService{
		profiles:  profiles,
		batchSize: batchSize,
	}
}

// Enrich returns a copy of aggregates with profiles attached.
//
// Batches run one after another and the profiles within a batch are fetched
// concurrently. A login whose profile cannot be fetched keeps its record
// unchanged. The result has one entry per input, in input order.
func (s *EnrichmentService) Enrich(ctx context.Context, aggregates []models.AggregatedContributor) []models.AggregatedContributor {
	enriched := make([]models.AggregatedContributor, len(aggregates))
	copy(enriched, aggregates)

	batch := 0
	for start := 0; start < len(enriched); start += s.batchSize {
		end := min(start+s.batchSize, len(enriched))
		batch++

		if err := ctx.Err(); err != nil {
			logger.WithError(err).WithField("remaining", len(enriched)-start).Warn("Enrichment stopped early")
			break
		}

		if s.onBatch != nil {
			s.onBatch(batch, end-start)
		}
		failed := s.enrichBatch(ctx, enriched[start:end])

		logger.WithFields(logrus.Fields{
			"batch":  batch,
			"size":   end - start,
			"failed": failed,
		}).Debug("Enriched contributor batch")
	}

	return enriched
}

// enrichBatch fetches every profile of batch concurrently and returns the failure count
func (s *EnrichmentService) enrichBatch(ctx context.Context, batch []models.AggregatedContributor) int {
	errs := make([]error, len(batch))

	var wg sync.WaitGroup
	for i := range batch {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("profile fetch panicked: %v", r)
				}
			}()

			profile, err := s.profiles.GetUser(ctx, batch[i].Login)
			if err != nil {
				errs[i] = err
				return
			}
			if profile == nil {
				return
			}

			batch[i].Profile = profile
			if batch[i].AvatarURL == "" {
				batch[i].AvatarURL = profile.AvatarURL
			}
		}(i)
	}
	wg.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			logger.WithError(err).WithField("login", batch[i].Login).Warn("Failed to fetch contributor profile")
		}
	}
	return failed
}

// countEnriched returns how many records carry a profile
func countEnriched(aggregates []models.AggregatedContributor) int {
	n := 0
	for i := range aggregates {
		if aggregates[i].IsEnriched() {
			n++
		}
	}
	return n
}
