package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore keeps settings in a single JSON document on disk.
type FileStore struct {
	mu   sync.RWMutex
	path string
	data Settings
}

// NewFileStore loads the settings document at path, creating it from seed
// when it does not exist.
func NewFileStore(path string, seed Settings) (*FileStore, error) {
	s := &FileStore{path: path}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("decode settings %s: %w", path, err)
		}
		return s, nil
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	now := time.Now().UTC()
	s.data = seed
	s.data.ID = 1
	s.data.CreatedAt = now
	s.data.UpdatedAt = now
	if err := s.save(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the current settings.
func (s *FileStore) Get(_ context.Context) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data, nil
}

// Update validates u, applies it and persists the result.
func (s *FileStore) Update(_ context.Context, u Update) (Settings, error) {
	if err := u.Validate(); err != nil {
		return Settings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.data
	s.data = u.Apply(s.data)
	s.data.UpdatedAt = time.Now().UTC()
	if err := s.save(); err != nil {
		s.data = prev
		return Settings{}, err
	}
	return s.data, nil
}

// Close is a no-op; every update is already on disk.
func (s *FileStore) Close() error { return nil }

// save writes the document atomically. Callers hold the lock or own s exclusively.
func (s *FileStore) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return os.Rename(tmp, s.path)
}
