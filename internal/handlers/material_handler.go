package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/jobs"
	"github.com/ternarybob/quaestio/internal/models"
	"github.com/ternarybob/quaestio/internal/services/pdfextract"
)

// maxUploadBytes caps material uploads at 50 MB
const maxUploadBytes = 50 << 20

// MaterialHandler handles material upload and analysis HTTP requests
type MaterialHandler struct {
	storage  interfaces.StorageManager
	pipeline *jobs.MaterialPipeline
	logger   arbor.ILogger
}

// NewMaterialHandler creates a material handler
func NewMaterialHandler(storage interfaces.StorageManager, pipeline *jobs.MaterialPipeline, logger arbor.ILogger) *MaterialHandler {
	return &MaterialHandler{
		storage:  storage,
		pipeline: pipeline,
		logger:   logger,
	}
}

// UploadHandler handles POST /api/materials - multipart PDF upload
func (h *MaterialHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing multipart field 'file'")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if !pdfextract.IsPDF(data) {
		WriteError(w, http.StatusBadRequest, "upload is not a PDF document")
		return
	}

	material := &models.Material{
		ID:         common.NewMaterialID(),
		Name:       header.Filename,
		SizeBytes:  int64(len(data)),
		UploadedAt: time.Now(),
	}
	material.ObjectPath = fmt.Sprintf("materials/%s.pdf", material.ID)

	if err := h.storage.ObjectStorage().Upload(r.Context(), material.ObjectPath, data); err != nil {
		h.logger.Error().Err(err).Msg("Failed to store material bytes")
		WriteError(w, http.StatusInternalServerError, "failed to store material")
		return
	}
	if err := h.storage.MaterialStorage().SaveMaterial(r.Context(), material); err != nil {
		h.logger.Error().Err(err).Msg("Failed to save material record")
		WriteError(w, http.StatusInternalServerError, "failed to save material")
		return
	}

	h.logger.Info().
		Str("material_id", material.ID).
		Str("name", material.Name).
		Int64("size", material.SizeBytes).
		Msg("Material uploaded")

	WriteJSON(w, http.StatusCreated, material)
}

// ListHandler handles GET /api/materials
func (h *MaterialHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	materials, err := h.storage.MaterialStorage().ListMaterials(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to list materials")
		return
	}
	WriteJSON(w, http.StatusOK, materials)
}

// GetHandler handles GET /api/materials/{id}
func (h *MaterialHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	material, err := h.storage.MaterialStorage().GetMaterial(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, material)
}

// AnalyzeHandler handles POST /api/materials/{id}/analyze - starts the
// analysis pipeline as a background job and returns the job ID for polling
func (h *MaterialHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	materialID := r.PathValue("id")
	if _, err := h.storage.MaterialStorage().GetMaterial(r.Context(), materialID); err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	job := models.NewAnalysisJob(common.NewJobID(), models.JobTypeMaterialAnalysis, materialID)
	job.MaterialID = materialID
	if err := h.storage.JobStorage().SaveJob(r.Context(), job); err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	go func() {
		if err := h.pipeline.Run(context.Background(), job.ID, materialID); err != nil {
			h.logger.Warn().Str("job_id", job.ID).Err(err).Msg("Material analysis failed")
		}
	}()

	WriteStarted(w, job.ID, fmt.Sprintf("analysis of material %s started", materialID))
}

// TopicsHandler handles GET /api/materials/{id}/topics
func (h *MaterialHandler) TopicsHandler(w http.ResponseWriter, r *http.Request) {
	topics, err := h.storage.TopicStorage().ListTopicsByMaterial(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to list topics")
		return
	}
	WriteJSON(w, http.StatusOK, topics)
}
