package jobs

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/ternarybob/quaestio/internal/models"
	"github.com/ternarybob/quaestio/internal/services/llm"
)

func batchConfig() *common.BatchConfig {
	return &common.BatchConfig{
		PoolSize:       5,
		LaunchInterval: time.Millisecond,
		ItemTimeout:    5 * time.Second,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}
}

func seedQuestions(t *testing.T, store *memoryStore, count int) []string {
	t.Helper()
	ids := make([]string, count)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("qst_%d", i)
		ids[i] = id
		err := store.SaveQuestion(context.Background(), &models.Question{
			ID:         id,
			MaterialID: "mat_1",
			Number:     i + 1,
			QuestionCandidate: models.QuestionCandidate{
				Stem: fmt.Sprintf("What is item %d?", i),
				Type: models.TypeShortAnswer,
			},
		})
		require.NoError(t, err)
	}
	return ids
}

func seedJob(t *testing.T, store *memoryStore, id, scope string) {
	t.Helper()
	require.NoError(t, store.SaveJob(context.Background(),
		models.NewAnalysisJob(id, models.JobTypeBatchReanalysis, scope)))
}

func answerJSON(answer string) string {
	return fmt.Sprintf(`{"answer": %q, "explanation": "because"}`, answer)
}

func TestBatchRun_RetryThenSucceed(t *testing.T) {
	store := newMemoryStore()
	ids := seedQuestions(t, store, 1)
	seedJob(t, store, "job_1", "mat_1")

	// Fails twice with a retryable error, succeeds on the third attempt.
	llmFake := newCountingLLM(func(_ string, attempt int) (string, error) {
		if attempt < 3 {
			return "", llm.NewError(llm.KindRateLimited, fmt.Errorf("429"))
		}
		return answerJSON("42"), nil
	})
	orchestrator := NewBatchOrchestrator(store, llmFake, batchConfig(), common.GetLogger())

	require.NoError(t, orchestrator.Run(context.Background(), "job_1", "mat_1", ids))

	job, err := store.GetJob(context.Background(), "job_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, 1, job.CompletedItems)
	assert.Equal(t, 0, job.FailedItems, "a retried success must not touch the failed count")

	question, err := store.GetQuestion(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, "42", question.Answer)
	require.NotNil(t, question.AnalyzedAt)
}

func TestBatchRun_ExhaustedRetriesFailsItemOnce(t *testing.T) {
	store := newMemoryStore()
	ids := seedQuestions(t, store, 2)
	seedJob(t, store, "job_1", "mat_1")

	llmFake := newCountingLLM(func(prompt string, _ int) (string, error) {
		if strings.Contains(prompt, "item 0") {
			return "", llm.NewError(llm.KindTimeout, fmt.Errorf("deadline exceeded"))
		}
		return answerJSON("ok"), nil
	})
	orchestrator := NewBatchOrchestrator(store, llmFake, batchConfig(), common.GetLogger())

	require.NoError(t, orchestrator.Run(context.Background(), "job_1", "mat_1", ids))

	job, err := store.GetJob(context.Background(), "job_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status, "partial failure is not job failure")
	assert.Equal(t, 1, job.CompletedItems)
	assert.Equal(t, 1, job.FailedItems, "an exhausted item increments failed exactly once")
	assert.Contains(t, job.Error, "1 questions failed")
}

func TestBatchRun_NonRetryableFailsImmediately(t *testing.T) {
	store := newMemoryStore()
	ids := seedQuestions(t, store, 1)
	seedJob(t, store, "job_1", "mat_1")

	llmFake := newCountingLLM(func(_ string, _ int) (string, error) {
		return "", llm.NewError(llm.KindFatal, fmt.Errorf("invalid credentials"))
	})
	orchestrator := NewBatchOrchestrator(store, llmFake, batchConfig(), common.GetLogger())

	err := orchestrator.Run(context.Background(), "job_1", "mat_1", ids)
	require.Error(t, err, "all items failed")

	assert.Equal(t, 1, len(llmFake.attempts), "non-retryable errors must not be retried")
	for _, attempts := range llmFake.attempts {
		assert.Equal(t, 1, attempts)
	}

	job, getErr := store.GetJob(context.Background(), "job_1")
	require.NoError(t, getErr)
	assert.Equal(t, models.JobStatusFailed, job.Status)
}

func TestBatchRun_PoolBoundsConcurrentCalls(t *testing.T) {
	store := newMemoryStore()
	ids := seedQuestions(t, store, 12)
	seedJob(t, store, "job_1", "mat_1")

	llmFake := newCountingLLM(func(_ string, _ int) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return answerJSON("ok"), nil
	})
	orchestrator := NewBatchOrchestrator(store, llmFake, batchConfig(), common.GetLogger())

	require.NoError(t, orchestrator.Run(context.Background(), "job_1", "mat_1", ids))

	assert.LessOrEqual(t, llmFake.highWater, 5,
		"12 items with pool size 5 must never exceed 5 outstanding calls")

	job, err := store.GetJob(context.Background(), "job_1")
	require.NoError(t, err)
	assert.Equal(t, 12, job.CompletedItems)
}

func TestBatchRun_ReconciliationCorrectsMismatch(t *testing.T) {
	store := newMemoryStore()
	ids := seedQuestions(t, store, 1)
	seedJob(t, store, "job_1", "mat_1")
	require.NoError(t, store.SaveAnswerKey(context.Background(), &models.AnswerKey{
		Scope:   "mat_1",
		Entries: []models.AnswerKeyEntry{{QuestionNumber: 1, Answer: "9.8 m/s^2"}},
	}))

	// First pass answers wrong; the hinted re-run produces the key answer.
	llmFake := newCountingLLM(func(prompt string, _ int) (string, error) {
		if strings.Contains(prompt, "Correction hint") {
			return answerJSON("9.8 m/s^2"), nil
		}
		return answerJSON("10 m/s^2"), nil
	})
	orchestrator := NewBatchOrchestrator(store, llmFake, batchConfig(), common.GetLogger())

	require.NoError(t, orchestrator.Run(context.Background(), "job_1", "mat_1", ids))

	question, err := store.GetQuestion(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, "9.8 m/s^2", question.Answer)

	job, err := store.GetJob(context.Background(), "job_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Empty(t, job.Error, "resolved mismatch leaves no diagnostic")
}

func TestBatchRun_UnresolvedMismatchSurfacesDiagnostic(t *testing.T) {
	store := newMemoryStore()
	ids := seedQuestions(t, store, 1)
	seedJob(t, store, "job_1", "mat_1")
	require.NoError(t, store.SaveAnswerKey(context.Background(), &models.AnswerKey{
		Scope:   "mat_1",
		Entries: []models.AnswerKeyEntry{{QuestionNumber: 1, Answer: "blue"}},
	}))

	llmFake := newCountingLLM(func(_ string, _ int) (string, error) {
		return answerJSON("red"), nil
	})
	orchestrator := NewBatchOrchestrator(store, llmFake, batchConfig(), common.GetLogger())

	require.NoError(t, orchestrator.Run(context.Background(), "job_1", "mat_1", ids))

	job, err := store.GetJob(context.Background(), "job_1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Contains(t, job.Error, "1 answer mismatches")
}

func TestCancelSupersededJobs(t *testing.T) {
	store := newMemoryStore()
	seedJob(t, store, "job_old", "mat_1")
	seedJob(t, store, "job_new", "mat_1")
	seedJob(t, store, "job_other", "mat_2")

	llmFake := newCountingLLM(func(_ string, _ int) (string, error) { return answerJSON("ok"), nil })
	orchestrator := NewBatchOrchestrator(store, llmFake, batchConfig(), common.GetLogger())

	orchestrator.CancelSupersededJobs(context.Background(), "mat_1", "job_new")

	old, err := store.GetJob(context.Background(), "job_old")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, old.Status)

	current, err := store.GetJob(context.Background(), "job_new")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, current.Status, "the new job itself is untouched")

	other, err := store.GetJob(context.Background(), "job_other")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, other.Status, "other scopes are untouched")
}
