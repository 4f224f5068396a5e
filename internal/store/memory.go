package store

import (
	"context"
	"sync"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
)

// MemoryPersister keeps the document in process memory. Used for tests and STORAGE_BACKEND=memory.
type MemoryPersister struct {
	mu  sync.Mutex
	doc *models.DatabaseDocument
}

// NewMemoryPersister constructs an empty MemoryPersister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load returns a copy of the stored document.
func (p *MemoryPersister) Load(ctx context.Context) (*models.DatabaseDocument, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.doc == nil {
		return nil, ErrNotFound
	}
	return copyDocument(p.doc)
}

// Save stores doc when the current version equals expectedVersion.
func (p *MemoryPersister) Save(ctx context.Context, doc *models.DatabaseDocument, expectedVersion int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var current int64
	if p.doc != nil {
		current = p.doc.Version
	}
	if current != expectedVersion {
		return ErrVersionConflict
	}
	cp, err := copyDocument(doc)
	if err != nil {
		return err
	}
	p.doc = cp
	return nil
}

func copyDocument(doc *models.DatabaseDocument) (*models.DatabaseDocument, error) {
	db, err := doc.Database.Clone()
	if err != nil {
		return nil, err
	}
	return &models.DatabaseDocument{Version: doc.Version, UpdatedAt: doc.UpdatedAt, Database: db}, nil
}
