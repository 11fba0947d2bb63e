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

// TopicStorage implements the TopicStorage interface for Badger
type TopicStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTopicStorage creates a new TopicStorage instance
func NewTopicStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TopicStorage {
	return &TopicStorage{db: db, logger: logger}
}

var _ interfaces.TopicStorage = (*TopicStorage)(nil)

func (s *TopicStorage) SaveTopic(ctx context.Context, topic *models.TopicRecord) error {
	if topic.ID == "" {
		return fmt.Errorf("topic ID is required")
	}
	if topic.CreatedAt.IsZero() {
		topic.CreatedAt = time.Now()
	}
	if err := s.db.Store().Upsert(topic.ID, topic); err != nil {
		return fmt.Errorf("failed to save topic: %w", err)
	}
	return nil
}

func (s *TopicStorage) GetTopic(ctx context.Context, id string) (*models.TopicRecord, error) {
	var topic models.TopicRecord
	if err := s.db.Store().Get(id, &topic); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("topic not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return &topic, nil
}

func (s *TopicStorage) ListTopicsByMaterial(ctx context.Context, materialID string) ([]*models.TopicRecord, error) {
	var topics []models.TopicRecord
	query := badgerhold.Where("MaterialID").Eq(materialID).SortBy("SectionIndex")
	if err := s.db.Store().Find(&topics, query); err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	result := make([]*models.TopicRecord, len(topics))
	for i := range topics {
		result[i] = &topics[i]
	}
	return result, nil
}
