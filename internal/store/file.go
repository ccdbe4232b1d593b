package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/college-essay-ai/essay-platform/internal/model"
)

// FileBackend persists the thread collection as one JSON document on disk.
type FileBackend struct {
	path string
}

// NewFileBackend creates a file backend writing to path. Parent directories
// are created on demand.
func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("store file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileBackend{path: path}, nil
}

// Load reads the serialized collection. A missing file is an empty
// collection, not an error.
func (b *FileBackend) Load(ctx context.Context) ([]model.Thread, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read thread state: %w", err)
	}

	var threads []model.Thread
	if err := json.Unmarshal(data, &threads); err != nil {
		return nil, fmt.Errorf("failed to parse thread state: %w", err)
	}
	return threads, nil
}

// Save rewrites the collection atomically via a temp file and rename, so a
// crash mid-write never leaves a truncated record behind.
func (b *FileBackend) Save(ctx context.Context, threads []model.Thread) error {
	data, err := json.MarshalIndent(threads, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal thread state: %w", err)
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write thread state: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace thread state: %w", err)
	}
	return nil
}
