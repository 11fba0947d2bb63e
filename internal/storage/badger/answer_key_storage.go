package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AnswerKeyStorage implements the AnswerKeyStorage interface for Badger.
// Keys are stored one per scope; re-uploading replaces the prior key.
type AnswerKeyStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAnswerKeyStorage creates a new AnswerKeyStorage instance
func NewAnswerKeyStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AnswerKeyStorage {
	return &AnswerKeyStorage{db: db, logger: logger}
}

var _ interfaces.AnswerKeyStorage = (*AnswerKeyStorage)(nil)

func (s *AnswerKeyStorage) SaveAnswerKey(ctx context.Context, key *models.AnswerKey) error {
	if key.Scope == "" {
		return fmt.Errorf("answer key scope is required")
	}
	if err := s.db.Store().Upsert("answerkey:"+key.Scope, key); err != nil {
		return fmt.Errorf("failed to save answer key: %w", err)
	}
	return nil
}

func (s *AnswerKeyStorage) GetAnswerKey(ctx context.Context, scope string) (*models.AnswerKey, error) {
	var key models.AnswerKey
	if err := s.db.Store().Get("answerkey:"+scope, &key); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("no answer key for scope: %s", scope)
		}
		return nil, fmt.Errorf("failed to get answer key: %w", err)
	}
	return &key, nil
}
