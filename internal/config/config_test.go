package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "v1", cfg.Scoring.CatalogVersion)
	assert.Equal(t, 8, cfg.Task.PoolSize)
	assert.Empty(t, cfg.ConfigFile())
}

func TestLoadFromFile(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9000"
  mode: release
database:
  host: db.internal
  dbname: verifund_test
auth:
  jwt_secret: s3cret
  token_ttl: 2h
storage:
  provider: s3
  s3:
    bucket: reports
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "verifund_test", cfg.Database.DBName)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "reports", cfg.Storage.S3.Bucket)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigFile())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VERIFUND_SERVER_PORT", "7070")
	t.Setenv("VERIFUND_DATABASE_HOST", "env-host")

	cfg, err := Load(writeConfig(t, "database:\n  host: file-host\n"))
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "env-host", cfg.Database.Host)
}

func TestValidate(t *testing.T) {
	t.Run("release requires secret", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server:\n  mode: release\n"))
		assert.Error(t, err)
	})

	t.Run("unknown storage provider", func(t *testing.T) {
		_, err := Load(writeConfig(t, "storage:\n  provider: ftp\n"))
		assert.Error(t, err)
	})
}
