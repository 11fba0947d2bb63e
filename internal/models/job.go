// -----------------------------------------------------------------------
// Analysis Job - persisted state machine polled by external consumers
// -----------------------------------------------------------------------

package models

import "time"

// JobStatus is the lifecycle state of an analysis job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// JobType distinguishes the two pipeline entry points
type JobType string

const (
	JobTypeMaterialAnalysis JobType = "material_analysis"
	JobTypeBatchReanalysis  JobType = "batch_reanalysis"
)

// JobPhase names the pipeline stage currently executing
type JobPhase string

const (
	PhaseDownload       JobPhase = "download"
	PhaseChunkExtract   JobPhase = "chunk_extraction"
	PhaseOutline        JobPhase = "outline"
	PhaseSections       JobPhase = "section_extraction"
	PhaseAuthoring      JobPhase = "authoring"
	PhaseReanalysis     JobPhase = "reanalysis"
	PhaseReconciliation JobPhase = "reconciliation"
)

// AnalysisJob is the persisted job record. Consumers poll it at any time and
// observe status, phase, counters and a human-readable progress message.
// Counters are monotonically non-decreasing per terminal item outcome.
type AnalysisJob struct {
	ID    string  `json:"id"`
	Type  JobType `json:"type"`
	Scope string  `json:"scope"` // material ID or named question-set scope

	MaterialID string `json:"material_id,omitempty"`

	Status JobStatus `json:"status"`
	Phase  JobPhase  `json:"phase,omitempty"`

	TotalItems     int    `json:"total_items"`
	CompletedItems int    `json:"completed_items"`
	FailedItems    int    `json:"failed_items"`
	CurrentItem    string `json:"current_item,omitempty"`

	ProgressMessage string   `json:"progress_message,omitempty"`
	Error           string   `json:"error,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewAnalysisJob creates a pending job for the given scope
func NewAnalysisJob(id string, jobType JobType, scope string) *AnalysisJob {
	return &AnalysisJob{
		ID:        id,
		Type:      jobType,
		Scope:     scope,
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
	}
}

// MarkStarted transitions the job to running
func (j *AnalysisJob) MarkStarted() {
	j.Status = JobStatusRunning
	now := time.Now()
	j.StartedAt = &now
}

// MarkCompleted transitions the job to completed
func (j *AnalysisJob) MarkCompleted(message string) {
	j.Status = JobStatusCompleted
	j.ProgressMessage = message
	now := time.Now()
	j.CompletedAt = &now
}

// MarkFailed transitions the job to failed with an error message
func (j *AnalysisJob) MarkFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.Error = errorMsg
	now := time.Now()
	j.CompletedAt = &now
}

// MarkCancelled transitions the job to cancelled. Cancellation is
// cooperative: in-flight calls are not aborted, only bookkeeping stops.
func (j *AnalysisJob) MarkCancelled() {
	j.Status = JobStatusCancelled
	now := time.Now()
	j.CompletedAt = &now
}

// IsTerminal returns true if the job is in a terminal state
func (j *AnalysisJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted ||
		j.Status == JobStatusFailed ||
		j.Status == JobStatusCancelled
}
