package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/interfaces"
)

// QuestionHandler serves persisted question records
type QuestionHandler struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewQuestionHandler creates a question handler
func NewQuestionHandler(storage interfaces.StorageManager, logger arbor.ILogger) *QuestionHandler {
	return &QuestionHandler{storage: storage, logger: logger}
}

// ListByMaterialHandler handles GET /api/materials/{id}/questions
func (h *QuestionHandler) ListByMaterialHandler(w http.ResponseWriter, r *http.Request) {
	questions, err := h.storage.QuestionStorage().ListQuestionsByMaterial(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to list questions")
		return
	}
	WriteJSON(w, http.StatusOK, questions)
}

// ListByTopicHandler handles GET /api/topics/{id}/questions
func (h *QuestionHandler) ListByTopicHandler(w http.ResponseWriter, r *http.Request) {
	questions, err := h.storage.QuestionStorage().ListQuestionsByTopic(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to list questions")
		return
	}
	WriteJSON(w, http.StatusOK, questions)
}

// GetHandler handles GET /api/questions/{id}
func (h *QuestionHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	question, err := h.storage.QuestionStorage().GetQuestion(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, question)
}
