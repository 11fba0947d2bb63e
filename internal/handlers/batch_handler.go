package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/jobs"
	"github.com/ternarybob/quaestio/internal/models"
	"gopkg.in/yaml.v3"
)

// BatchHandler handles batch re-analysis and answer key HTTP requests
type BatchHandler struct {
	storage      interfaces.StorageManager
	orchestrator *jobs.BatchOrchestrator
	logger       arbor.ILogger
}

// NewBatchHandler creates a batch handler
func NewBatchHandler(storage interfaces.StorageManager, orchestrator *jobs.BatchOrchestrator, logger arbor.ILogger) *BatchHandler {
	return &BatchHandler{
		storage:      storage,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

type reanalyzeRequest struct {
	Scope       string   `json:"scope"`
	QuestionIDs []string `json:"question_ids,omitempty"`
}

// ReanalyzeHandler handles POST /api/batch/reanalyze. The scope is a
// material ID; omitting question_ids re-analyzes every question in the
// scope. Creating the job cancels prior active jobs for the same scope.
func (h *BatchHandler) ReanalyzeHandler(w http.ResponseWriter, r *http.Request) {
	var req reanalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Scope == "" {
		WriteError(w, http.StatusBadRequest, "scope is required")
		return
	}

	questionIDs := req.QuestionIDs
	if len(questionIDs) == 0 {
		questions, err := h.storage.QuestionStorage().ListQuestionsByMaterial(r.Context(), req.Scope)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list questions for scope")
			return
		}
		for _, question := range questions {
			questionIDs = append(questionIDs, question.ID)
		}
	}
	if len(questionIDs) == 0 {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("no questions found for scope %s", req.Scope))
		return
	}

	job := models.NewAnalysisJob(common.NewJobID(), models.JobTypeBatchReanalysis, req.Scope)
	if err := h.storage.JobStorage().SaveJob(r.Context(), job); err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	go func(jobID, scope string, ids []string) {
		if err := h.orchestrator.Run(context.Background(), jobID, scope, ids); err != nil {
			h.logger.Warn().Str("job_id", jobID).Err(err).Msg("Batch re-analysis failed")
		}
	}(job.ID, req.Scope, questionIDs)

	WriteStarted(w, job.ID, fmt.Sprintf("re-analysis of %d questions started", len(questionIDs)))
}

// AnswerKeyHandler handles PUT /api/scopes/{scope}/answer-key - uploads a
// YAML answer key consumed by the reconciliation pass
func (h *BatchHandler) AnswerKeyHandler(w http.ResponseWriter, r *http.Request) {
	scope := r.PathValue("scope")

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	var entries []models.AnswerKeyEntry
	if err := yaml.Unmarshal(body, &entries); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid answer key YAML: %v", err))
		return
	}
	if len(entries) == 0 {
		WriteError(w, http.StatusBadRequest, "answer key has no entries")
		return
	}
	for i, entry := range entries {
		if entry.QuestionNumber <= 0 {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("entry %d: question number is required", i))
			return
		}
		if entry.Answer == "" && len(entry.Subparts) == 0 {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("entry %d: answer or subparts required", i))
			return
		}
	}

	key := &models.AnswerKey{Scope: scope, Entries: entries}
	if err := h.storage.AnswerKeyStorage().SaveAnswerKey(r.Context(), key); err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to save answer key")
		return
	}

	h.logger.Info().
		Str("scope", scope).
		Int("entry_count", len(entries)).
		Msg("Answer key uploaded")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"scope":   scope,
		"entries": len(entries),
	})
}
