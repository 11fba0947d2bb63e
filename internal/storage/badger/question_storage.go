package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// QuestionStorage implements the QuestionStorage interface for Badger
type QuestionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewQuestionStorage creates a new QuestionStorage instance
func NewQuestionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.QuestionStorage {
	return &QuestionStorage{db: db, logger: logger}
}

var _ interfaces.QuestionStorage = (*QuestionStorage)(nil)

func (s *QuestionStorage) SaveQuestion(ctx context.Context, question *models.Question) error {
	if question.ID == "" {
		return fmt.Errorf("question ID is required")
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now()
	}
	if err := s.db.Store().Upsert(question.ID, question); err != nil {
		return fmt.Errorf("failed to save question: %w", err)
	}
	return nil
}

func (s *QuestionStorage) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := s.db.Store().Get(id, &question); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("question not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &question, nil
}

func (s *QuestionStorage) ListQuestionsByTopic(ctx context.Context, topicID string) ([]*models.Question, error) {
	return s.find(badgerhold.Where("TopicID").Eq(topicID).SortBy("Number"))
}

func (s *QuestionStorage) ListQuestionsByMaterial(ctx context.Context, materialID string) ([]*models.Question, error) {
	return s.find(badgerhold.Where("MaterialID").Eq(materialID).SortBy("Number"))
}

func (s *QuestionStorage) ListQuestionsAnalyzedBefore(ctx context.Context, cutoff time.Time) ([]*models.Question, error) {
	questions, err := s.find(badgerhold.Where("MaterialID").Ne(""))
	if err != nil {
		return nil, err
	}
	// AnalyzedAt is a pointer; filter in memory rather than indexing a
	// nullable field.
	var stale []*models.Question
	for _, question := range questions {
		if question.AnalyzedAt != nil && question.AnalyzedAt.Before(cutoff) {
			stale = append(stale, question)
		}
	}
	return stale, nil
}

func (s *QuestionStorage) find(query *badgerhold.Query) ([]*models.Question, error) {
	var questions []models.Question
	if err := s.db.Store().Find(&questions, query); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	result := make([]*models.Question, len(questions))
	for i := range questions {
		result[i] = &questions[i]
	}
	return result, nil
}
