package repositories

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/talent-screener/internal/models"
)

// BlobStore persists small keyed payloads.
type BlobStore interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(keys ...string) error
}

type gormBlobStore struct {
	db *gorm.DB
}

func NewGormBlobStore(db *gorm.DB) BlobStore {
	return &gormBlobStore{db: db}
}

// Get implements BlobStore.
func (s *gormBlobStore) Get(key string) ([]byte, bool, error) {
	var blob models.SessionBlob
	if err := s.db.Where("key = ?", key).First(&blob).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to find blob %s: %w", key, err)
	}

	return []byte(blob.Value), true, nil
}

// Put implements BlobStore.
func (s *gormBlobStore) Put(key string, value []byte) error {
	blob := models.SessionBlob{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now(),
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&blob).Error
	if err != nil {
		return fmt.Errorf("failed to save blob %s: %w", key, err)
	}

	return nil
}

// Delete implements BlobStore.
func (s *gormBlobStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := s.db.Where("key IN ?", keys).Delete(&models.SessionBlob{}).Error; err != nil {
		return fmt.Errorf("failed to delete blobs: %w", err)
	}

	return nil
}

// fileBlobStore keeps one <key>.json file per blob inside dir.
type fileBlobStore struct {
	mu  sync.Mutex
	dir string
}

func NewFileBlobStore(dir string) (BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &fileBlobStore{dir: dir}, nil
}

// Get implements BlobStore.
func (s *fileBlobStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.pathFor(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read blob %s: %w", key, err)
	}

	return data, true, nil
}

// Put implements BlobStore.
func (s *fileBlobStore) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.pathFor(key)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace blob %s: %w", key, err)
	}

	return nil
}

// Delete implements BlobStore.
func (s *fileBlobStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		path, err := s.pathFor(key)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete blob %s: %w", key, err)
		}
	}

	return nil
}

func (s *fileBlobStore) pathFor(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid blob key: %q", key)
	}

	return filepath.Join(s.dir, key+".json"), nil
}
