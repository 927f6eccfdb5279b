package repositories

import (
	"database/sql"
	"sync"

	"github.com/alimgiray/orgscope/internal/models"
)

const crawlRunColumns = `id, org, trigger_type, status, repository_count, failed_repository_count, contributor_count, enriched_count, error_message, started_at, completed_at, created_at`

// CrawlRunRepository handles database operations for crawl runs
type CrawlRunRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewCrawlRunRepository creates a new CrawlRunRepository
func NewCrawlRunRepository(db *sql.DB) *CrawlRunRepository {
	return &CrawlRunRepository{db: db}
}

// Create creates a new crawl run
func (r *CrawlRunRepository) Create(run *models.CrawlRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		INSERT INTO crawl_runs (` + crawlRunColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.ID,
		run.Org,
		run.Trigger,
		run.Status,
		run.RepositoryCount,
		run.FailedRepositoryCount,
		run.ContributorCount,
		run.EnrichedCount,
		run.ErrorMessage,
		run.StartedAt,
		run.CompletedAt,
		run.CreatedAt,
	)
	return err
}

// Update updates the status and counters of a crawl run
func (r *CrawlRunRepository) Update(run *models.CrawlRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `
		UPDATE crawl_runs
		SET status = ?, repository_count = ?, failed_repository_count = ?, contributor_count = ?,
			enriched_count = ?, error_message = ?, started_at = ?, completed_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		run.Status,
		run.RepositoryCount,
		run.FailedRepositoryCount,
		run.ContributorCount,
		run.EnrichedCount,
		run.ErrorMessage,
		run.StartedAt,
		run.CompletedAt,
		run.ID,
	)
	return err
}

// GetByID retrieves a crawl run by ID
func (r *CrawlRunRepository) GetByID(id string) (*models.CrawlRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + crawlRunColumns + ` FROM crawl_runs WHERE id = ?`

	run := &models.CrawlRun{}
	if err := scanCrawlRun(r.db.QueryRow(query, id), run); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRecent retrieves the latest crawl runs, newest first
func (r *CrawlRunRepository) ListRecent(limit int) ([]*models.CrawlRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `SELECT ` + crawlRunColumns + ` FROM crawl_runs ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.CrawlRun
	for rows.Next() {
		run := &models.CrawlRun{}
		if err := scanCrawlRun(rows, run); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCrawlRun(row rowScanner, run *models.CrawlRun) error {
	return row.Scan(
		&run.ID,
		&run.Org,
		&run.Trigger,
		&run.Status,
		&run.RepositoryCount,
		&run.FailedRepositoryCount,
		&run.ContributorCount,
		&run.EnrichedCount,
		&run.ErrorMessage,
		&run.StartedAt,
		&run.CompletedAt,
		&run.CreatedAt,
	)
}
