package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"database_path":        "catalog.db",
		"storage_dir":          "/srv/vault",
		"blob_backend":         "s3",
		"secret_key":           "my_secret_key",
		"session_ttl":          "45m",
		"retention_days":       7,
		"erase_passes":         5,
		"share_default_expiry": "12h",
		"share_max_expiry":     "240h",
		"sweep_interval":       "1m",
		"s3_bucket":            "bucket",
		"s3_region":            "region",
		"s3_access_key":        "user",
		"s3_secret_key":        "password",
		"s3_base_endpoint":     "base_endpoint",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "catalog.db", cfg.DatabasePath)
		assert.Equal(t, "/srv/vault", cfg.StorageDir)
		assert.Equal(t, "s3", cfg.BlobBackend)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 45*time.Minute, cfg.SessionTTL)
		assert.Equal(t, 7, cfg.RetentionDays)
		assert.Equal(t, 5, cfg.ErasePasses)
		assert.Equal(t, 12*time.Hour, cfg.ShareDefaultExpiry)
		assert.Equal(t, 240*time.Hour, cfg.ShareMaxExpiry)
		assert.Equal(t, 1*time.Minute, cfg.SweepInterval)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "user", cfg.S3AccessKey)
		assert.Equal(t, "password", cfg.S3SecretKey)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
	})

	t.Run("absent keys keep defaults", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{
			"database_path": "other.db",
		})
		os.Args = []string{"testbin", "-config", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "other.db", cfg.DatabasePath)
		assert.Equal(t, "vault_data", cfg.StorageDir)
		assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
		assert.Equal(t, 7, cfg.RetentionDays)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			DatabasePath: "vault.db",
			StorageDir:   "dir",
			SecretKey:    "key",
			SessionTTL:   2 * time.Minute,
		}
		parseJson(cfg)

		assert.Equal(t, "vault.db", cfg.DatabasePath)
		assert.Equal(t, "dir", cfg.StorageDir)
		assert.Equal(t, "key", cfg.SecretKey)
		assert.Equal(t, 2*time.Minute, cfg.SessionTTL)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
