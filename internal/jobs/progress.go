// -----------------------------------------------------------------------
// Progress tracker - read-modify-write updates against the job record
// -----------------------------------------------------------------------

package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
)

// ProgressTracker records phase, counters, and a human-readable status into
// the persisted job record polled by external consumers. All updates go
// through a single read-modify-write path against the record store; the
// tracker holds no counters of its own, so concurrent workers on separate
// process instances stay consistent.
type ProgressTracker struct {
	jobID   string
	storage interfaces.JobStorage
	logger  arbor.ILogger
	mu      sync.Mutex
}

// NewProgressTracker creates a tracker bound to one job record
func NewProgressTracker(jobID string, storage interfaces.JobStorage, logger arbor.ILogger) *ProgressTracker {
	return &ProgressTracker{
		jobID:   jobID,
		storage: storage,
		logger:  logger.WithCorrelationId(jobID),
	}
}

// update applies fn to the current job record and persists the result.
// Errors are logged, never propagated; progress bookkeeping must not fail
// the pipeline it observes.
func (t *ProgressTracker) update(ctx context.Context, fn func(job *models.AnalysisJob)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, err := t.storage.GetJob(ctx, t.jobID)
	if err != nil {
		t.logger.Warn().Err(err).Msg("Failed to load job for progress update")
		return
	}
	fn(job)
	if err := t.storage.SaveJob(ctx, job); err != nil {
		t.logger.Warn().Err(err).Msg("Failed to persist progress update")
	}
}

// Start transitions the job to running
func (t *ProgressTracker) Start(ctx context.Context) {
	t.update(ctx, func(job *models.AnalysisJob) {
		job.MarkStarted()
	})
}

// SetPhase records the pipeline stage currently executing
func (t *ProgressTracker) SetPhase(ctx context.Context, phase models.JobPhase, message string) {
	t.logger.Info().Str("phase", string(phase)).Msg(message)
	t.update(ctx, func(job *models.AnalysisJob) {
		job.Phase = phase
		job.ProgressMessage = message
	})
}

// SetTotalItems records how many items the current phase will process
func (t *ProgressTracker) SetTotalItems(ctx context.Context, total int) {
	t.update(ctx, func(job *models.AnalysisJob) {
		job.TotalItems = total
	})
}

// SetCurrentItem records the item a worker is processing now
func (t *ProgressTracker) SetCurrentItem(ctx context.Context, item string) {
	t.update(ctx, func(job *models.AnalysisJob) {
		job.CurrentItem = item
	})
}

// IncrementCompleted records one item's terminal success. Counters only
// ever grow.
func (t *ProgressTracker) IncrementCompleted(ctx context.Context) {
	t.update(ctx, func(job *models.AnalysisJob) {
		job.CompletedItems++
		job.ProgressMessage = fmt.Sprintf("%d/%d items processed", job.CompletedItems+job.FailedItems, job.TotalItems)
	})
}

// IncrementFailed records one item's terminal failure after retries are
// exhausted
func (t *ProgressTracker) IncrementFailed(ctx context.Context) {
	t.update(ctx, func(job *models.AnalysisJob) {
		job.FailedItems++
		job.ProgressMessage = fmt.Sprintf("%d/%d items processed", job.CompletedItems+job.FailedItems, job.TotalItems)
	})
}

// AddWarnings appends non-fatal degradations to the job record
func (t *ProgressTracker) AddWarnings(ctx context.Context, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	t.update(ctx, func(job *models.AnalysisJob) {
		job.Warnings = append(job.Warnings, warnings...)
	})
}

// Complete transitions the job to completed
func (t *ProgressTracker) Complete(ctx context.Context, message string) {
	t.logger.Info().Msg(message)
	t.update(ctx, func(job *models.AnalysisJob) {
		// A superseded job never overwrites its cancelled state.
		if job.Status == models.JobStatusCancelled {
			return
		}
		job.MarkCompleted(message)
	})
}

// CompleteWithDiagnostics completes the job while surfacing a degraded-run
// summary in the error field as a diagnostic, not a failure
func (t *ProgressTracker) CompleteWithDiagnostics(ctx context.Context, message, diagnostics string) {
	t.logger.Info().Str("diagnostics", diagnostics).Msg(message)
	t.update(ctx, func(job *models.AnalysisJob) {
		if job.Status == models.JobStatusCancelled {
			return
		}
		job.MarkCompleted(message)
		job.Error = diagnostics
	})
}

// Fail transitions the job to failed
func (t *ProgressTracker) Fail(ctx context.Context, errorMsg string) {
	t.logger.Error().Msg(errorMsg)
	t.update(ctx, func(job *models.AnalysisJob) {
		if job.Status == models.JobStatusCancelled {
			return
		}
		job.MarkFailed(errorMsg)
	})
}

// IsCancelled reports whether the persisted job has been cancelled by a
// newer job for the same scope. Workers poll this between items;
// cancellation is cooperative.
func (t *ProgressTracker) IsCancelled(ctx context.Context) bool {
	job, err := t.storage.GetJob(ctx, t.jobID)
	if err != nil {
		return false
	}
	return job.Status == models.JobStatusCancelled
}
