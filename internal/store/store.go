package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
)

var (
	// ErrNotFound is returned by a Persister when nothing has been saved yet.
	ErrNotFound = errors.New("store: document not found")
	// ErrVersionConflict is returned by a Persister when the stored version is not the expected one.
	ErrVersionConflict = errors.New("store: version conflict")
	// ErrPersist wraps any other failure to write the document.
	ErrPersist = errors.New("store: persist failed")
)

// Persister loads and saves the whole database document.
type Persister interface {
	Load(ctx context.Context) (*models.DatabaseDocument, error)
	// Save writes doc only if the currently stored version equals expectedVersion.
	Save(ctx context.Context, doc *models.DatabaseDocument, expectedVersion int64) error
}

// Source tells subscribers where a change originated.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// Change is delivered to subscribers after every committed snapshot swap.
type Change struct {
	Version int64
	Source  Source
	At      time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithMaxRetries bounds how often Update re-applies a mutation after a version conflict.
func WithMaxRetries(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithClock overrides the time source used for document timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is the authoritative in-process holder of the database tree.
// Mutations are copy-on-write and serialised; readers never observe a partial update.
type Store struct {
	persister  Persister
	logger     *zap.Logger
	maxRetries int
	now        func() time.Time

	writeMu sync.Mutex

	mu      sync.RWMutex
	db      *models.Database
	version int64

	subsMu  sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// New constructs a Store. Call Load before serving traffic.
func New(persister Persister, logger *zap.Logger, opts ...Option) *Store {
	if persister == nil {
		persister = NewMemoryPersister()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		persister:  persister,
		logger:     logger,
		maxRetries: 3,
		now:        func() time.Time { return time.Now().UTC() },
		db:         emptyDatabase(),
		subs:       make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted document. A missing or unreadable document falls back to seed data.
func (s *Store) Load(ctx context.Context, seed func() *models.Database) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, err := s.persister.Load(ctx)
	if err == nil && doc != nil && doc.Database != nil {
		doc.Database.Normalize()
		s.swap(doc.Database, doc.Version)
		s.logger.Info("database loaded", zap.Int64("version", doc.Version))
		return nil
	}

	notFound := errors.Is(err, ErrNotFound) || (err == nil && (doc == nil || doc.Database == nil))
	if notFound {
		s.logger.Info("no persisted database, using seed data")
	} else {
		s.logger.Error("failed to load persisted database, using seed data", zap.Error(err))
	}

	db := emptyDatabase()
	if seed != nil {
		if seeded := seed(); seeded != nil {
			db = seeded
		}
	}
	db.Normalize()

	if !notFound {
		s.swap(db, 0)
		return nil
	}

	initial := &models.DatabaseDocument{Version: 1, UpdatedAt: s.now(), Database: db}
	if err := s.persister.Save(ctx, initial, 0); err != nil {
		s.logger.Warn("failed to persist seed data", zap.Error(err))
		s.swap(db, 0)
		return nil
	}
	s.swap(db, initial.Version)
	return nil
}

// Snapshot returns a deep copy of the current tree.
func (s *Store) Snapshot() *models.Database {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, err := s.db.Clone()
	if err != nil {
		s.logger.Error("snapshot clone failed", zap.Error(err))
		return emptyDatabase()
	}
	return cp
}

// Read runs fn against the current tree without copying. fn must not mutate or retain db.
func (s *Store) Read(fn func(db *models.Database) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.db)
}

// Version returns the version of the current snapshot.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Update applies fn to a copy of the tree, persists it with a version check and swaps it in.
// Errors returned by fn abort the update unchanged. On a version conflict the latest document
// is reloaded and fn runs again, so fn must be safe to re-apply.
func (s *Store) Update(ctx context.Context, fn func(db *models.Database) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	for attempt := 0; ; attempt++ {
		s.mu.RLock()
		base, version := s.db, s.version
		next, err := base.Clone()
		s.mu.RUnlock()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPersist, err)
		}

		if err := fn(next); err != nil {
			return err
		}

		doc := &models.DatabaseDocument{Version: version + 1, UpdatedAt: s.now(), Database: next}
		err = s.persister.Save(ctx, doc, version)
		if err == nil {
			s.swap(next, doc.Version)
			s.notify(Change{Version: doc.Version, Source: SourceLocal, At: doc.UpdatedAt})
			return nil
		}

		if !errors.Is(err, ErrVersionConflict) || attempt >= s.maxRetries {
			s.logger.Error("database persist failed", zap.Int64("version", doc.Version), zap.Int("attempt", attempt), zap.Error(err))
			return fmt.Errorf("%w: %v", ErrPersist, err)
		}

		s.logger.Warn("database version conflict, reloading", zap.Int64("expected", version), zap.Int("attempt", attempt))
		if err := s.reloadLocked(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrPersist, err)
		}
	}
}

// Refresh reloads the persisted document and adopts it when it is newer than the current snapshot.
func (s *Store) Refresh(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.reloadLocked(ctx)
}

// Replace adopts doc when its version is newer. It returns false when doc was stale.
func (s *Store) Replace(doc *models.DatabaseDocument) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.replaceLocked(doc)
}

// Subscribe registers fn for change notifications and returns a function that removes it.
// Notifications are delivered synchronously in commit order; fn must not call Update.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) reloadLocked(ctx context.Context) error {
	doc, err := s.persister.Load(ctx)
	if err != nil {
		return err
	}
	s.replaceLocked(doc)
	return nil
}

func (s *Store) replaceLocked(doc *models.DatabaseDocument) bool {
	if doc == nil || doc.Database == nil {
		return false
	}
	if doc.Version <= s.Version() {
		return false
	}
	doc.Database.Normalize()
	s.swap(doc.Database, doc.Version)
	at := doc.UpdatedAt
	if at.IsZero() {
		at = s.now()
	}
	s.notify(Change{Version: doc.Version, Source: SourceRemote, At: at})
	return true
}

func (s *Store) swap(db *models.Database, version int64) {
	s.mu.Lock()
	s.db = db
	s.version = version
	s.mu.Unlock()
}

func (s *Store) notify(change Change) {
	s.subsMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	fns := make([]func(Change), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("subscriber panicked", zap.Any("recover", r), zap.Int64("version", change.Version))
				}
			}()
			fn(change)
		}()
	}
}

func emptyDatabase() *models.Database {
	return &models.Database{Settings: models.DefaultSettings()}
}
