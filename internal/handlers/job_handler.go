package handlers

import (
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/interfaces"
)

// JobHandler serves the job polling surface. Consumers poll job records for
// status, phase, counters, and the progress message; there is no push
// contract.
type JobHandler struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewJobHandler creates a job handler
func NewJobHandler(storage interfaces.StorageManager, logger arbor.ILogger) *JobHandler {
	return &JobHandler{storage: storage, logger: logger}
}

// ListHandler handles GET /api/jobs?limit=N
func (h *JobHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	jobs, err := h.storage.JobStorage().ListJobs(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	WriteJSON(w, http.StatusOK, jobs)
}

// GetHandler handles GET /api/jobs/{id}
func (h *JobHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	job, err := h.storage.JobStorage().GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, job)
}
