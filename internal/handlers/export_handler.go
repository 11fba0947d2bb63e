package handlers

import (
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/services/export"
)

// ExportHandler renders question sets as downloadable PDFs
type ExportHandler struct {
	storage interfaces.StorageManager
	export  *export.Service
	logger  arbor.ILogger
}

// NewExportHandler creates an export handler
func NewExportHandler(storage interfaces.StorageManager, exportService *export.Service, logger arbor.ILogger) *ExportHandler {
	return &ExportHandler{
		storage: storage,
		export:  exportService,
		logger:  logger,
	}
}

// PracticeSetHandler handles GET /api/materials/{id}/export?answers=true
func (h *ExportHandler) PracticeSetHandler(w http.ResponseWriter, r *http.Request) {
	materialID := r.PathValue("id")

	material, err := h.storage.MaterialStorage().GetMaterial(r.Context(), materialID)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	topics, err := h.storage.TopicStorage().ListTopicsByMaterial(r.Context(), materialID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to load topics")
		return
	}
	questions, err := h.storage.QuestionStorage().ListQuestionsByMaterial(r.Context(), materialID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to load questions")
		return
	}
	if len(questions) == 0 {
		WriteError(w, http.StatusNotFound, "material has no questions to export")
		return
	}

	includeAnswers := r.URL.Query().Get("answers") == "true"
	pdfData, err := h.export.ExportPracticeSet(material, topics, questions, includeAnswers)
	if err != nil {
		h.logger.Error().Err(err).Msg("PDF export failed")
		WriteError(w, http.StatusInternalServerError, "failed to render PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("practice-%s.pdf", materialID)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdfData)
}
