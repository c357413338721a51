package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
database:
  url: postgres://localhost/invoices
sender:
  default_from_email: invoices@fakturo.io
  default_from_name: Fakturo
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.postmarkapp.com", cfg.Postmark.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Postmark.Timeout())
	assert.Equal(t, "eu-central-1", cfg.Storage.S3Region)
	assert.Equal(t, "postgres://localhost/invoices", cfg.Database.URL)
	assert.Equal(t, "invoices@fakturo.io", cfg.Sender.DefaultFromEmail)
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfigFile(t, `
server:
  host: 127.0.0.1
  port: 9090
postmark:
  base_url: https://postmark.local
  server_token: srv-token
  account_token: acc-token
  timeout_seconds: 5
storage:
  s3_bucket: fakturo-documents
  s3_region: eu-west-1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://postmark.local", cfg.Postmark.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Postmark.Timeout())
	assert.Equal(t, "fakturo-documents", cfg.Storage.S3Bucket)
	assert.Equal(t, "eu-west-1", cfg.Storage.S3Region)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
database:
  url: postgres://localhost/invoices
postmark:
  server_token: file-token
`)

	t.Setenv("DATABASE_URL", "postgres://db.internal/invoices")
	t.Setenv("POSTMARK_SERVER_TOKEN", "env-srv-token")
	t.Setenv("POSTMARK_ACCOUNT_TOKEN", "env-acc-token")
	t.Setenv("DOCS_S3_BUCKET", "fakturo-documents-prod")
	t.Setenv("DOCS_S3_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("DOCS_S3_SECRET_ACCESS_KEY", "secret")
	t.Setenv("DEFAULT_FROM_EMAIL", "invoices@fakturo.io")

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://db.internal/invoices", cfg.Database.URL)
	assert.Equal(t, "env-srv-token", cfg.Postmark.ServerToken)
	assert.Equal(t, "env-acc-token", cfg.Postmark.AccountToken)
	assert.Equal(t, "fakturo-documents-prod", cfg.Storage.S3Bucket)
	assert.Equal(t, "AKIAEXAMPLE", cfg.Storage.AccessKeyID)
	assert.Equal(t, "secret", cfg.Storage.SecretAccessKey)
	assert.Equal(t, "invoices@fakturo.io", cfg.Sender.DefaultFromEmail)
}

func TestLoadFromEnvKeepsFileValues(t *testing.T) {
	path := writeConfigFile(t, `
database:
  url: postgres://localhost/invoices
postmark:
  server_token: file-token
`)

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/invoices", cfg.Database.URL)
	assert.Equal(t, "file-token", cfg.Postmark.ServerToken)
}
