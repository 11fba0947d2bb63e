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

// MaterialStorage implements the MaterialStorage interface for Badger
type MaterialStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMaterialStorage creates a new MaterialStorage instance
func NewMaterialStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MaterialStorage {
	return &MaterialStorage{db: db, logger: logger}
}

var _ interfaces.MaterialStorage = (*MaterialStorage)(nil)

func (s *MaterialStorage) SaveMaterial(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		return fmt.Errorf("material ID is required")
	}
	if material.UploadedAt.IsZero() {
		material.UploadedAt = time.Now()
	}
	if err := s.db.Store().Upsert(material.ID, material); err != nil {
		return fmt.Errorf("failed to save material: %w", err)
	}
	return nil
}

func (s *MaterialStorage) GetMaterial(ctx context.Context, id string) (*models.Material, error) {
	var material models.Material
	if err := s.db.Store().Get(id, &material); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("material not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	return &material, nil
}

func (s *MaterialStorage) ListMaterials(ctx context.Context) ([]*models.Material, error) {
	var materials []models.Material
	query := badgerhold.Where("ID").Ne("").SortBy("UploadedAt").Reverse()
	if err := s.db.Store().Find(&materials, query); err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	result := make([]*models.Material, len(materials))
	for i := range materials {
		result[i] = &materials[i]
	}
	return result, nil
}

func (s *MaterialStorage) DeleteMaterial(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Material{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete material: %w", err)
	}
	return nil
}
