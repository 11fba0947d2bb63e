package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// JobStorage implements the JobStorage interface for Badger
type JobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewJobStorage creates a new JobStorage instance
func NewJobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.JobStorage {
	return &JobStorage{db: db, logger: logger}
}

var _ interfaces.JobStorage = (*JobStorage)(nil)

func (s *JobStorage) SaveJob(ctx context.Context, job *models.AnalysisJob) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if err := s.db.Store().Upsert(job.ID, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

func (s *JobStorage) GetJob(ctx context.Context, id string) (*models.AnalysisJob, error) {
	var job models.AnalysisJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("job not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (s *JobStorage) ListJobs(ctx context.Context, limit int) ([]*models.AnalysisJob, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	var jobs []models.AnalysisJob
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	result := make([]*models.AnalysisJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

func (s *JobStorage) ListActiveJobsByScope(ctx context.Context, scope string) ([]*models.AnalysisJob, error) {
	query := badgerhold.Where("Scope").Eq(scope).
		And("Status").In(models.JobStatusPending, models.JobStatusRunning)
	var jobs []models.AnalysisJob
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list active jobs: %w", err)
	}
	result := make([]*models.AnalysisJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}
