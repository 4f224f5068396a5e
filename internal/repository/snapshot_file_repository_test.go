package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sasetin42/RidersBUD-sub003/internal/store"
)

func TestFileSnapshotRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "db.json")
	repo := NewFileSnapshotRepository(path)

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, repo.Save(context.Background(), sampleDocument(1), 0))
	require.NoError(t, repo.Save(context.Background(), sampleDocument(2), 1))

	doc, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Version)
	assert.Equal(t, "Oil Change", doc.Database.Services[0].Name)
}

func TestFileSnapshotRepositoryRejectsStaleVersion(t *testing.T) {
	repo := NewFileSnapshotRepository(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, repo.Save(context.Background(), sampleDocument(1), 0))

	err := repo.Save(context.Background(), sampleDocument(1), 0)
	require.ErrorIs(t, err, store.ErrVersionConflict)
}

func TestFileSnapshotRepositoryReadsBareTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	legacy := `{"services":[{"id":"svc-1","name":"Oil Change","category":"Maintenance","price":1500}],"settings":{"bookingSlotDuration":30,"appName":"RidersBUD"}}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	repo := NewFileSnapshotRepository(path)
	doc, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), doc.Version)
	assert.Equal(t, 30, doc.Database.Settings.BookingSlotDuration)

	require.NoError(t, repo.Save(context.Background(), sampleDocument(1), 0))
}

func TestFileSnapshotRepositoryOverwritesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo := NewFileSnapshotRepository(path)
	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, repo.Save(context.Background(), sampleDocument(1), 0))
	doc, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Version)
}
