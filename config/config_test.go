package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/stowback/config"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.False(t, cfg.IsProd())
	assert.Equal(t, 5708, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, time.Duration(0), cfg.Server.WriteTimeout)
	assert.False(t, cfg.Archive.Compress)
	assert.Equal(t, "filesystem", cfg.Storage.Backend)
	assert.Equal(t, "stowback", cfg.Storage.Container)
	assert.Equal(t, "./data", cfg.Storage.Path)
	assert.Equal(t, "us-east-1", cfg.Storage.S3.Region)
	assert.True(t, cfg.Storage.S3.UseSSL)
	assert.Equal(t, uint64(16<<20), cfg.Storage.S3.PartSize)
	assert.Equal(t, 900, cfg.Storage.Stowry.Expires)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "stowback.db", cfg.Database.DSN)
	assert.Equal(t, "stowback_jobs", cfg.Database.Tables.Jobs)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
env: prod
server:
  port: 8080
  read_timeout: 10s
archive:
  compress: true
storage:
  backend: s3
  container: nightly
  s3:
    endpoint: minio:9000
    region: eu-west-1
    access_key: AKIATEST
    secret_key: secret
    use_ssl: false
    part_size: 5242880
database:
  enabled: true
  type: postgres
  dsn: postgres://localhost/test
  tables:
    jobs: custom_jobs
metrics:
  enabled: true
log:
  level: debug
`)

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Archive.Compress)
	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, "nightly", cfg.Storage.Container)
	assert.Equal(t, "minio:9000", cfg.Storage.S3.Endpoint)
	assert.Equal(t, "eu-west-1", cfg.Storage.S3.Region)
	assert.Equal(t, "AKIATEST", cfg.Storage.S3.AccessKey)
	assert.Equal(t, "secret", cfg.Storage.S3.SecretKey)
	assert.False(t, cfg.Storage.S3.UseSSL)
	assert.Equal(t, uint64(5242880), cfg.Storage.S3.PartSize)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgres://localhost/test", cfg.Database.DSN)
	assert.Equal(t, "custom_jobs", cfg.Database.Tables.Jobs)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	base := writeConfig(t, "base.yaml", `
server:
  port: 5708
storage:
  backend: stowry
  container: backups
  stowry:
    endpoint: http://stowry:5708
    timeout: 5s
`)
	override := writeConfig(t, "override.yaml", `
server:
  port: 9000
archive:
  compress: true
`)

	cfg, err := config.Load([]string{base, override}, nil)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Archive.Compress)
	assert.Equal(t, "stowry", cfg.Storage.Backend)
	assert.Equal(t, "http://stowry:5708", cfg.Storage.Stowry.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Storage.Stowry.Timeout)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "invalid port",
			content: "server:\n  port: 99999\n",
			wantMsg: "validate config",
		},
		{
			name:    "invalid log level",
			content: "log:\n  level: verbose\n",
			wantMsg: "validate config",
		},
		{
			name:    "invalid log format",
			content: "log:\n  format: xml\n",
			wantMsg: "validate config",
		},
		{
			name:    "invalid env",
			content: "env: staging\n",
			wantMsg: "validate config",
		},
		{
			name:    "unknown backend",
			content: "storage:\n  backend: ftp\n",
			wantMsg: "storage.backend",
		},
		{
			name:    "empty container",
			content: "storage:\n  container: \"\"\n",
			wantMsg: "storage.container",
		},
		{
			name:    "s3 without endpoint",
			content: "storage:\n  backend: s3\n",
			wantMsg: "storage.s3.endpoint",
		},
		{
			name:    "stowry without endpoint",
			content: "storage:\n  backend: stowry\n",
			wantMsg: "storage.stowry.endpoint",
		},
		{
			name:    "ledger with unknown type",
			content: "database:\n  enabled: true\n  type: mysql\n",
			wantMsg: "database.type",
		},
		{
			name:    "ledger with bad table name",
			content: "database:\n  enabled: true\n  tables:\n    jobs: Bad-Name\n",
			wantMsg: "jobs table name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "config.yaml", tt.content)

			_, err := config.Load([]string{path}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad_DisabledLedgerIsNotValidated(t *testing.T) {
	path := writeConfig(t, "config.yaml", "database:\n  type: mysql\n")

	_, err := config.Load([]string{path}, nil)
	assert.NoError(t, err)
}

func TestLoad_WithCORS(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
cors:
  enabled: true
  allowed_origins:
    - https://example.com
    - https://app.example.com
  allowed_methods:
    - GET
    - PUT
  allowed_headers:
    - Content-Type
  max_age: 600
`)

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"https://example.com", "https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"GET", "PUT"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, []string{"Content-Type"}, cfg.CORS.AllowedHeaders)
	assert.Equal(t, 600, cfg.CORS.MaxAge)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("STOWBACK_SERVER_PORT", "9090")
	t.Setenv("STOWBACK_DATABASE_TYPE", "postgres")
	t.Setenv("STOWBACK_STORAGE_S3_ACCESS_KEY", "AKIAENV")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "AKIAENV", cfg.Storage.S3.AccessKey)
}

func TestLoad_LegacyEnvironmentVariables(t *testing.T) {
	t.Run("legacy names apply", func(t *testing.T) {
		t.Setenv("S3_BUCKET_NAME", "legacy-bucket")
		t.Setenv("COMPRESS", "true")

		cfg, err := config.Load(nil, nil)
		require.NoError(t, err)

		assert.Equal(t, "legacy-bucket", cfg.Storage.Container)
		assert.True(t, cfg.Archive.Compress)
	})

	t.Run("prefixed names win", func(t *testing.T) {
		t.Setenv("S3_BUCKET_NAME", "legacy-bucket")
		t.Setenv("STOWBACK_STORAGE_CONTAINER", "new-bucket")

		cfg, err := config.Load(nil, nil)
		require.NoError(t, err)

		assert.Equal(t, "new-bucket", cfg.Storage.Container)
	})
}

func TestLoad_Flags(t *testing.T) {
	t.Setenv("STOWBACK_SERVER_PORT", "9090")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 5708, "")
	flags.Bool("compress", false, "")
	flags.String("storage-path", "", "")
	require.NoError(t, flags.Parse([]string{"--port=7000", "--compress", "--storage-path=/var/backups"}))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port, "flags override env")
	assert.True(t, cfg.Archive.Compress)
	assert.Equal(t, "/var/backups", cfg.Storage.Path)
}
