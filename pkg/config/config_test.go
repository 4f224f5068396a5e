package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageFile, cfg.Storage.Backend)
	assert.Equal(t, "ridersbud_db", cfg.Storage.Key)
	assert.Equal(t, SlotPolicyFit, cfg.Booking.SlotPolicy)
	assert.Equal(t, 2*time.Minute, cfg.Availability.CacheTTL)
	assert.Equal(t, int64(5*1024*1024), cfg.Uploads.MaxFileSize)
}

func TestLoadNormalisesUnknownValues(t *testing.T) {
	chdirTemp(t)
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("BOOKING_SLOT_POLICY", "OVERHANG")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageFile, cfg.Storage.Backend)
	assert.Equal(t, SlotPolicyOverhang, cfg.Booking.SlotPolicy)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 3*time.Second, parseDuration("3s", time.Minute))
}

func TestLocationFallsBackToLocal(t *testing.T) {
	assert.Equal(t, time.Local, (&Config{Timezone: "Nowhere/Invalid"}).Location())
	assert.Equal(t, time.Local, (&Config{}).Location())
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
