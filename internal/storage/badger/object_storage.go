package badger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/interfaces"
)

// ObjectStorage stores raw material bytes on the local filesystem under a
// configured root. Paths are slash-separated keys relative to the root.
type ObjectStorage struct {
	root   string
	logger arbor.ILogger
}

// NewObjectStorage creates a filesystem-backed object store
func NewObjectStorage(root string, logger arbor.ILogger) (interfaces.ObjectStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("object storage root is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create object storage root: %w", err)
	}
	return &ObjectStorage{root: root, logger: logger}, nil
}

var _ interfaces.ObjectStorage = (*ObjectStorage)(nil)

// resolve maps a storage key onto the root, rejecting path escapes
func (s *ObjectStorage) resolve(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid object path: %s", path)
	}
	return filepath.Join(s.root, cleaned), nil
}

func (s *ObjectStorage) Upload(ctx context.Context, path string, data []byte) error {
	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("failed to write object %s: %w", path, err)
	}
	s.logger.Debug().Str("path", path).Int("size", len(data)).Msg("Object stored")
	return nil
}

func (s *ObjectStorage) Download(ctx context.Context, path string) ([]byte, error) {
	target, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", path, err)
	}
	return data, nil
}

func (s *ObjectStorage) Delete(ctx context.Context, path string) error {
	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}
	return nil
}
