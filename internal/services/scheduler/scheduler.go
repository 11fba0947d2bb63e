// -----------------------------------------------------------------------
// Scheduler - periodic re-analysis of stale questions
// -----------------------------------------------------------------------

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/jobs"
	"github.com/ternarybob/quaestio/internal/models"
)

// Scheduler periodically re-analyzes questions whose last analysis is older
// than the configured age, by submitting them as a batch job.
type Scheduler struct {
	cron    *cron.Cron
	storage interfaces.StorageManager
	batch   *jobs.BatchOrchestrator
	config  *common.SchedulerConfig
	logger  arbor.ILogger
	maxAge  time.Duration
}

// New creates a scheduler. The schedule uses 6-field cron syntax with
// seconds.
func New(storage interfaces.StorageManager, batch *jobs.BatchOrchestrator, config *common.SchedulerConfig, logger arbor.ILogger) (*Scheduler, error) {
	maxAge, err := time.ParseDuration(config.MaxAge)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler max_age %q: %w", config.MaxAge, err)
	}

	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		storage: storage,
		batch:   batch,
		config:  config,
		logger:  logger,
		maxAge:  maxAge,
	}, nil
}

// Start registers the re-analysis job and begins the cron loop
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Debug().Msg("Scheduler disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		if err := s.RunStaleReanalysis(context.Background()); err != nil {
			s.logger.Warn().Err(err).Msg("Scheduled re-analysis failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid scheduler cron expression %q: %w", s.config.Schedule, err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", s.config.Schedule).
		Str("max_age", s.config.MaxAge).
		Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunStaleReanalysis finds stale questions and submits one batch job per
// material scope.
func (s *Scheduler) RunStaleReanalysis(ctx context.Context) error {
	cutoff := time.Now().Add(-s.maxAge)
	stale, err := s.storage.QuestionStorage().ListQuestionsAnalyzedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list stale questions: %w", err)
	}
	if len(stale) == 0 {
		s.logger.Debug().Msg("No stale questions to re-analyze")
		return nil
	}

	byScope := make(map[string][]string)
	for _, question := range stale {
		byScope[question.MaterialID] = append(byScope[question.MaterialID], question.ID)
	}

	for scope, questionIDs := range byScope {
		job := models.NewAnalysisJob(common.NewJobID(), models.JobTypeBatchReanalysis, scope)
		if err := s.storage.JobStorage().SaveJob(ctx, job); err != nil {
			s.logger.Warn().Str("scope", scope).Err(err).Msg("Failed to create scheduled batch job")
			continue
		}

		s.logger.Info().
			Str("job_id", job.ID).
			Str("scope", scope).
			Int("question_count", len(questionIDs)).
			Msg("Submitting scheduled re-analysis")

		go func(jobID, scope string, ids []string) {
			if err := s.batch.Run(context.Background(), jobID, scope, ids); err != nil {
				s.logger.Warn().Str("job_id", jobID).Err(err).Msg("Scheduled batch failed")
			}
		}(job.ID, scope, questionIDs)
	}
	return nil
}
