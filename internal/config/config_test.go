package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "studylog.db"), cfg.DB)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 7, cfg.UpcomingDays)
	assert.Equal(t, int64(1), cfg.UserID)
	assert.Equal(t, "rmj", cfg.NeuralSignature)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "cache_ttl: 30s\nupcoming_days: 14\ntimezone: UTC\nneural_signature: abc\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(yaml), 0600))

	t.Setenv("STUDYLOG_UPCOMING_DAYS", "3")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.UpcomingDays)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "abc", cfg.NeuralSignature)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("cache_ttl: [\n"), 0600))
		_, err := Load(dir)
		assert.Error(t, err)
	})

	t.Run("bad env duration", func(t *testing.T) {
		t.Setenv("STUDYLOG_CACHE_TTL", "soon")
		_, err := Load(t.TempDir())
		assert.ErrorContains(t, err, "CACHE_TTL")
	})

	t.Run("bad timezone", func(t *testing.T) {
		t.Setenv("STUDYLOG_TIMEZONE", "Mars/Olympus")
		_, err := Load(t.TempDir())
		assert.ErrorContains(t, err, "timezone")
	})
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	cfg.UpcomingDays = 10
	cfg.Timezone = "UTC"
	require.NoError(t, cfg.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
