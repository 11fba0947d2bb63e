package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/timshannon/badgerhold/v4"
)

// KVStorage implements the KeyValueStorage interface for Badger
type KVStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewKVStorage creates a new KVStorage instance
func NewKVStorage(db *BadgerDB, logger arbor.ILogger) interfaces.KeyValueStorage {
	return &KVStorage{db: db, logger: logger}
}

var _ interfaces.KeyValueStorage = (*KVStorage)(nil)

func (s *KVStorage) Get(ctx context.Context, key string) (string, error) {
	var pair interfaces.KeyValuePair
	if err := s.db.Store().Get("kv:"+key, &pair); err != nil {
		if err == badgerhold.ErrNotFound {
			return "", fmt.Errorf("key not found: %s", key)
		}
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return pair.Value, nil
}

func (s *KVStorage) Set(ctx context.Context, key, value, description string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	pair := interfaces.KeyValuePair{
		Key:         key,
		Value:       value,
		Description: description,
		UpdatedAt:   time.Now(),
	}
	if err := s.db.Store().Upsert("kv:"+key, &pair); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *KVStorage) Delete(ctx context.Context, key string) error {
	if err := s.db.Store().Delete("kv:"+key, &interfaces.KeyValuePair{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
