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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
jwt:
  secret: file-secret
store:
  backend: postgres
  batch_delay: 500ms
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, 20, cfg.Store.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Store.BatchDelay)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 1920, cfg.AWS.MaxImageDimension)
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("AUTH_GATEWAY_SECRET", "gateway")

	path := writeConfig(t, "jwt:\n  secret: file-secret\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "gateway", cfg.Auth.GatewaySecret)
}

func TestLoad_SheetsRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("SPREADSHEET_ID", "")

	path := writeConfig(t, "jwt:\n  secret: s\nstore:\n  backend: sheets\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate())

	cfg.JWT.Secret = "s"
	assert.NoError(t, cfg.Validate())

	cfg.Store.Backend = "excel"
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "barrierfree", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=barrierfree sslmode=disable", db.DSN())
}
