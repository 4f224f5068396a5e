package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	"github.com/sasetin42/RidersBUD-sub003/internal/store"
)

const snapshotSchema = `CREATE TABLE IF NOT EXISTS app_snapshots (
    storage_key TEXT PRIMARY KEY,
    version BIGINT NOT NULL,
    document JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

type snapshotRow struct {
	Version   int64     `db:"version"`
	Document  []byte    `db:"document"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PostgresSnapshotRepository stores the database document as one JSONB row per storage key.
type PostgresSnapshotRepository struct {
	db  *sqlx.DB
	key string
}

// NewPostgresSnapshotRepository constructs the repository.
func NewPostgresSnapshotRepository(db *sqlx.DB, key string) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{db: db, key: key}
}

// EnsureSchema creates the snapshot table when missing.
func (r *PostgresSnapshotRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return nil
}

// Load fetches the current document.
func (r *PostgresSnapshotRepository) Load(ctx context.Context) (*models.DatabaseDocument, error) {
	const query = `SELECT version, document, updated_at FROM app_snapshots WHERE storage_key = $1`
	var row snapshotRow
	if err := r.db.GetContext(ctx, &row, query, r.key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("load snapshot %s: %w", r.key, err)
	}

	var db models.Database
	if err := json.Unmarshal(row.Document, &db); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", r.key, err)
	}
	return &models.DatabaseDocument{Version: row.Version, UpdatedAt: row.UpdatedAt, Database: &db}, nil
}

// Save writes doc when the stored version matches expectedVersion.
// A stored document that cannot be decoded counts as version 0 and is overwritten.
func (r *PostgresSnapshotRepository) Save(ctx context.Context, doc *models.DatabaseDocument, expectedVersion int64) error {
	payload, err := json.Marshal(doc.Database)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", r.key, err)
	}

	var result sql.Result
	if expectedVersion == 0 {
		const insert = `INSERT INTO app_snapshots (storage_key, version, document, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (storage_key) DO NOTHING`
		result, err = r.db.ExecContext(ctx, insert, r.key, doc.Version, payload, doc.UpdatedAt)
	} else {
		const update = `UPDATE app_snapshots SET version = $1, document = $2, updated_at = $3
WHERE storage_key = $4 AND version = $5`
		result, err = r.db.ExecContext(ctx, update, doc.Version, payload, doc.UpdatedAt, r.key, expectedVersion)
	}
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", r.key, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", r.key, err)
	}
	if affected == 0 {
		if expectedVersion == 0 {
			return r.overwriteUndecodable(ctx, doc, payload)
		}
		return store.ErrVersionConflict
	}
	return nil
}

func (r *PostgresSnapshotRepository) overwriteUndecodable(ctx context.Context, doc *models.DatabaseDocument, payload []byte) error {
	const query = `SELECT version, document, updated_at FROM app_snapshots WHERE storage_key = $1`
	var row snapshotRow
	if err := r.db.GetContext(ctx, &row, query, r.key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrVersionConflict
		}
		return fmt.Errorf("save snapshot %s: %w", r.key, err)
	}
	var current models.Database
	if json.Unmarshal(row.Document, &current) == nil {
		return store.ErrVersionConflict
	}

	const update = `UPDATE app_snapshots SET version = $1, document = $2, updated_at = $3
WHERE storage_key = $4 AND version = $5`
	result, err := r.db.ExecContext(ctx, update, doc.Version, payload, doc.UpdatedAt, r.key, row.Version)
	if err != nil {
		return fmt.Errorf("overwrite snapshot %s: %w", r.key, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("overwrite snapshot %s: %w", r.key, err)
	}
	if affected == 0 {
		return store.ErrVersionConflict
	}
	return nil
}
