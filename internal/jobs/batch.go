// -----------------------------------------------------------------------
// Batch orchestrator - bounded worker pool with retry and reconciliation
// -----------------------------------------------------------------------

package jobs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
	"github.com/ternarybob/quaestio/internal/services/llm"
	"golang.org/x/time/rate"
)

const reanalysisPromptTemplate = `Answer the following practice question and explain the reasoning.
%s
Question: %s
%s
Return JSON: {"answer": "...", "explanation": "..."}. For multiple choice, "answer" is the letter (A-D) of the correct choice, or comma-separated letters for multiple correct choices.`

// BatchOrchestrator re-analyzes an arbitrary list of questions through a
// fixed-size worker pool with per-item retry, then reconciles the produced
// answers against an externally supplied answer key. It is the second
// pipeline entry point, operating directly on persisted question records.
type BatchOrchestrator struct {
	storage interfaces.StorageManager
	llm     interfaces.LLMService
	config  *common.BatchConfig
	logger  arbor.ILogger
}

// NewBatchOrchestrator creates a batch re-analysis orchestrator
func NewBatchOrchestrator(storage interfaces.StorageManager, llmService interfaces.LLMService, config *common.BatchConfig, logger arbor.ILogger) *BatchOrchestrator {
	return &BatchOrchestrator{
		storage: storage,
		llm:     llmService,
		config:  config,
		logger:  logger,
	}
}

// CancelSupersededJobs marks prior pending/running jobs for the scope as
// cancelled. Last writer wins: in-flight calls of the superseded job are
// not aborted, only its completion bookkeeping is disregarded.
func (o *BatchOrchestrator) CancelSupersededJobs(ctx context.Context, scope, newJobID string) {
	active, err := o.storage.JobStorage().ListActiveJobsByScope(ctx, scope)
	if err != nil {
		o.logger.Warn().Str("scope", scope).Err(err).Msg("Failed to list active jobs for scope")
		return
	}
	for _, job := range active {
		if job.ID == newJobID {
			continue
		}
		job.MarkCancelled()
		if err := o.storage.JobStorage().SaveJob(ctx, job); err != nil {
			o.logger.Warn().Str("job_id", job.ID).Err(err).Msg("Failed to cancel superseded job")
			continue
		}
		o.logger.Info().
			Str("job_id", job.ID).
			Str("scope", scope).
			Str("superseded_by", newJobID).
			Msg("Cancelled superseded job")
	}
}

type itemOutcome struct {
	questionID string
	err        error
}

// Run drains the question list through the worker pool, updates progress
// per terminal item outcome, and finishes with the answer-key
// reconciliation pass. The job fails only when every item failed.
func (o *BatchOrchestrator) Run(ctx context.Context, jobID, scope string, questionIDs []string) error {
	tracker := NewProgressTracker(jobID, o.storage.JobStorage(), o.logger)
	log := o.logger.WithCorrelationId(jobID)

	o.CancelSupersededJobs(ctx, scope, jobID)

	tracker.Start(ctx)
	tracker.SetPhase(ctx, models.PhaseReanalysis, fmt.Sprintf("Re-analyzing %d questions", len(questionIDs)))
	tracker.SetTotalItems(ctx, len(questionIDs))

	outcomes := make([]itemOutcome, len(questionIDs))
	sem := make(chan struct{}, o.config.PoolSize)
	launchGate := rate.NewLimiter(rate.Every(o.config.LaunchInterval), 1)

	var wg sync.WaitGroup
	for i, questionID := range questionIDs {
		// The launch gate bounds burst rate to the provider even when
		// workers finish quickly; the semaphore bounds occupancy.
		if err := launchGate.Wait(ctx); err != nil {
			outcomes[i] = itemOutcome{questionID: questionID, err: err}
			tracker.IncrementFailed(ctx)
			continue
		}
		if tracker.IsCancelled(ctx) {
			log.Warn().Msg("Job cancelled, stopping batch launches")
			break
		}
		sem <- struct{}{}

		wg.Add(1)
		go func(index int, questionID string) {
			defer wg.Done()
			defer func() { <-sem }()

			tracker.SetCurrentItem(ctx, questionID)
			err := o.processItem(ctx, questionID, "")
			outcomes[index] = itemOutcome{questionID: questionID, err: err}
			if err != nil {
				log.Warn().Str("question_id", questionID).Err(err).Msg("Item failed after retries")
				tracker.IncrementFailed(ctx)
				return
			}
			tracker.IncrementCompleted(ctx)
		}(i, questionID)
	}
	wg.Wait()

	failedCount := 0
	for _, outcome := range outcomes {
		if outcome.err != nil {
			failedCount++
		}
	}

	mismatches := o.reconcile(ctx, tracker, scope, outcomes)

	if len(questionIDs) > 0 && failedCount == len(questionIDs) {
		tracker.Fail(ctx, fmt.Sprintf("all %d items failed", failedCount))
		return fmt.Errorf("batch %s: all %d items failed", jobID, failedCount)
	}

	message := fmt.Sprintf("Re-analyzed %d/%d questions", len(questionIDs)-failedCount, len(questionIDs))
	diagnostics := o.buildDiagnostics(failedCount, mismatches)
	if diagnostics != "" {
		tracker.CompleteWithDiagnostics(ctx, message, diagnostics)
	} else {
		tracker.Complete(ctx, message)
	}
	return nil
}

// processItem runs one question's re-analysis with per-item timeout and
// exponential backoff retry. Non-retryable errors fail the item
// immediately; retries are capped by MaxRetries additional attempts.
func (o *BatchOrchestrator) processItem(ctx context.Context, questionID, correctionHint string) error {
	var lastErr error
	for attempt := 0; attempt <= o.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := o.config.RetryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		itemCtx, cancel := context.WithTimeout(ctx, o.config.ItemTimeout)
		lastErr = o.analyzeQuestion(itemCtx, questionID, correctionHint)
		cancel()

		if lastErr == nil {
			return nil
		}
		if !llm.IsRetryable(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("retries exhausted: %w", lastErr)
}

// analyzeQuestion produces and persists a fresh answer and explanation for
// one question
func (o *BatchOrchestrator) analyzeQuestion(ctx context.Context, questionID, correctionHint string) error {
	question, err := o.storage.QuestionStorage().GetQuestion(ctx, questionID)
	if err != nil {
		return llm.NewError(llm.KindFatal, fmt.Errorf("question %s not found: %w", questionID, err))
	}

	raw, err := o.llm.Generate(ctx, []interfaces.Part{
		interfaces.TextPart(buildReanalysisPrompt(question, correctionHint)),
	}, interfaces.GenerateOptions{Structured: true})
	if err != nil {
		return err
	}

	var result struct {
		Answer      string `json:"answer"`
		Explanation string `json:"explanation"`
	}
	if err := llm.DecodeJSON(raw, &result); err != nil {
		return err
	}
	if strings.TrimSpace(result.Answer) == "" {
		return llm.NewError(llm.KindParse, fmt.Errorf("re-analysis returned no answer for %s", questionID))
	}

	now := time.Now()
	question.Answer = result.Answer
	question.Explanation = result.Explanation
	question.AnalyzedAt = &now
	if err := o.storage.QuestionStorage().SaveQuestion(ctx, question); err != nil {
		return llm.NewError(llm.KindFatal, fmt.Errorf("failed to persist question %s: %w", questionID, err))
	}
	return nil
}

// reconcile compares each successfully re-analyzed answer against the
// answer key for the scope. Every mismatch is re-run once with the key
// value injected as a correction hint, then re-compared. Absence of a key,
// or of an entry for an item, skips that item only. Returns the remaining
// mismatched question numbers.
func (o *BatchOrchestrator) reconcile(ctx context.Context, tracker *ProgressTracker, scope string, outcomes []itemOutcome) []int {
	key, err := o.storage.AnswerKeyStorage().GetAnswerKey(ctx, scope)
	if err != nil || key == nil || len(key.Entries) == 0 {
		return nil
	}

	tracker.SetPhase(ctx, models.PhaseReconciliation, "Reconciling answers against answer key")

	var mismatches []int
	for _, outcome := range outcomes {
		if outcome.err != nil {
			continue
		}
		question, err := o.storage.QuestionStorage().GetQuestion(ctx, outcome.questionID)
		if err != nil {
			continue
		}
		entry := key.Lookup(question.Number)
		if entry == nil {
			continue
		}

		if models.NormalizeAnswer(question.Answer) == models.NormalizeAnswer(entry.Expected()) {
			continue
		}

		o.logger.Info().
			Int("question_number", question.Number).
			Str("expected", entry.Expected()).
			Str("got", question.Answer).
			Msg("Answer mismatch, re-running with correction hint")

		hint := fmt.Sprintf("The answer key states the correct answer is: %s. Re-derive the solution; if the key is right, your explanation must support it.", entry.Expected())
		if err := o.processItem(ctx, outcome.questionID, hint); err != nil {
			mismatches = append(mismatches, question.Number)
			continue
		}

		recheck, err := o.storage.QuestionStorage().GetQuestion(ctx, outcome.questionID)
		if err != nil || models.NormalizeAnswer(recheck.Answer) != models.NormalizeAnswer(entry.Expected()) {
			mismatches = append(mismatches, question.Number)
		}
	}
	return mismatches
}

func (o *BatchOrchestrator) buildDiagnostics(failedCount int, mismatches []int) string {
	var parts []string
	if failedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d questions failed", failedCount))
	}
	if len(mismatches) > 0 {
		numbers := make([]string, len(mismatches))
		for i, n := range mismatches {
			numbers[i] = fmt.Sprintf("%d", n)
		}
		parts = append(parts, fmt.Sprintf("%d answer mismatches after re-analysis (questions %s)",
			len(mismatches), strings.Join(numbers, ", ")))
	}
	return strings.Join(parts, "; ")
}

func buildReanalysisPrompt(question *models.Question, correctionHint string) string {
	var choices strings.Builder
	if len(question.Choices) > 0 {
		choices.WriteString("Choices:\n")
		for i, choice := range question.Choices {
			fmt.Fprintf(&choices, "%c. %s\n", 'A'+i, choice)
		}
	}

	hint := ""
	if correctionHint != "" {
		hint = "Correction hint: " + correctionHint + "\n"
	}

	return fmt.Sprintf(reanalysisPromptTemplate, hint, question.Stem, choices.String())
}
