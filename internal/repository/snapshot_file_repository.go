package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	"github.com/sasetin42/RidersBUD-sub003/internal/store"
)

// FileSnapshotRepository stores the database document as a JSON file.
type FileSnapshotRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileSnapshotRepository constructs the repository for the given path.
func NewFileSnapshotRepository(path string) *FileSnapshotRepository {
	return &FileSnapshotRepository{path: path}
}

// Load reads the document. Files holding a bare database tree load as version 0.
func (r *FileSnapshotRepository) Load(ctx context.Context) (*models.DatabaseDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

// Save writes doc atomically when the stored version matches expectedVersion.
// A file that cannot be decoded counts as version 0 and is overwritten.
func (r *FileSnapshotRepository) Save(ctx context.Context, doc *models.DatabaseDocument, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var current int64
	existing, err := r.read()
	if err == nil {
		current = existing.Version
	}
	if current != expectedVersion {
		return store.ErrVersionConflict
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (r *FileSnapshotRepository) read() (*models.DatabaseDocument, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, store.ErrNotFound
	}

	var doc models.DatabaseDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if doc.Database != nil {
		return &doc, nil
	}

	var legacy models.Database
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &models.DatabaseDocument{Version: 0, Database: &legacy}, nil
}
