package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))
	return configFile
}

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 20
  write_timeout: 20
  idle_timeout: 180
  allowed_origins:
    - "https://app.example.com"
database:
  host: localhost
  port: 5432
  user: testuser
  password: testpass
  dbname: testdb
auth:
  jwt_public_key: "test-public-key"
nats:
  url: "nats://localhost:4222"
  stream_name: "TEST_STREAM"
  consumer_name: "api-1"
cache:
  unseen_count_ttl: "1m"
  unseen_count_size: 50
link_retry:
  max_retries: 5
  initial_interval: "10ms"
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 20, cfg.Server.ReadTimeout)
				assert.Equal(t, 180, cfg.Server.IdleTimeout)
				assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
				assert.Equal(t, "postgres", cfg.Database.Driver)
				assert.Equal(t, "testdb", cfg.Database.DBName)
				assert.Equal(t, "test-public-key", cfg.Auth.JWTPublicKey)
				assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
				assert.Equal(t, "TEST_STREAM", cfg.NATS.StreamName)
				assert.Equal(t, "api-1", cfg.NATS.ConsumerName)
				assert.Equal(t, "ugc", cfg.NATS.SubjectPrefix)
				assert.Equal(t, time.Minute, cfg.Cache.UnseenCountTTL)
				assert.Equal(t, 50, cfg.Cache.UnseenCountSize)
				assert.Equal(t, 5, cfg.LinkRetry.MaxRetries)
				assert.Equal(t, 10*time.Millisecond, cfg.LinkRetry.InitialInterval)
				assert.Equal(t, time.Second, cfg.LinkRetry.MaxInterval)
			},
		},
		{
			name:       "missing config file - should work with env vars",
			configFile: "",
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.False(t, cfg.Debug)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "postgres", cfg.Database.Driver)
				assert.Empty(t, cfg.NATS.URL)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.Equal(t, 10, cfg.Server.ReadTimeout)
				assert.Equal(t, 10, cfg.Server.WriteTimeout)
				assert.Equal(t, 120, cfg.Server.IdleTimeout)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, "UGC_EVENTS", cfg.NATS.StreamName)
				assert.Equal(t, 10, cfg.NATS.MaxReconnects)
				assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait)
				assert.Equal(t, 5*time.Minute, cfg.NATS.ConsumerInactiveThreshold)
				assert.Equal(t, 30*time.Second, cfg.Cache.UnseenCountTTL)
				assert.Equal(t, 10000, cfg.Cache.UnseenCountSize)
				assert.Equal(t, 3, cfg.LinkRetry.MaxRetries)
				assert.Equal(t, 50*time.Millisecond, cfg.LinkRetry.InitialInterval)
			},
		},
		{
			name: "sqlite driver",
			configFile: `
database:
  driver: sqlite
  sqlite_path: "/tmp/ugc.db"
`,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.Equal(t, "sqlite", cfg.Database.Driver)
				assert.Equal(t, "/tmp/ugc.db", cfg.Database.SQLitePath)
			},
		},
		{
			name: "unknown driver",
			configFile: `
database:
  driver: mysql
`,
			expectError: true,
		},
		{
			name: "malformed yaml",
			configFile: `
server: [
`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var configFile string
			if tt.configFile != "" {
				configFile = writeConfig(t, tt.configFile)
			}

			cfg, err := LoadAPIConfig(configFile, "")

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadCLIConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadCLIConfig(writeConfig(t, "debug: true\n"), "")
		require.NoError(t, err)
		assert.True(t, cfg.Debug)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 8, cfg.Worker.WorkerPoolSize)
		assert.Equal(t, 1024, cfg.Worker.WorkerQueueSize)
	})

	t.Run("sqlite without a path", func(t *testing.T) {
		cfg, err := LoadCLIConfig(writeConfig(t, "database:\n  driver: sqlite\n  sqlite_path: \"\"\n"), "")
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		config   DatabaseConfig
		expected string
	}{
		{
			name: "complete config",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "testpass",
				DBName:   "testdb",
				SSLMode:  "require",
			},
			expected: "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require",
		},
		{
			name: "with special characters in password",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "p@ssw0rd!",
				DBName:   "testdb",
				SSLMode:  "disable",
			},
			expected: "host=localhost port=5432 user=testuser password=p@ssw0rd! dbname=testdb sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.DSN())
		})
	}
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	tmpDir := t.TempDir()

	envDir := filepath.Join(tmpDir, "env")
	require.NoError(t, os.MkdirAll(envDir, 0750))

	// Viper uses the FF_UGC_ prefix
	envFile := filepath.Join(envDir, ".env")
	envContent := `FF_UGC_DEBUG=true
FF_UGC_DATABASE_HOST=env-host
FF_UGC_DATABASE_PORT=6543
FF_UGC_DATABASE_DBNAME=env-db
FF_UGC_CACHE_UNSEEN_COUNT_TTL=2m
`
	require.NoError(t, os.WriteFile(envFile, []byte(envContent), 0600))

	// per-service local file overrides the shared one
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env.api.local"), []byte("FF_UGC_DATABASE_DBNAME=local-db\n"), 0600))

	for _, key := range []string{
		"FF_UGC_DEBUG",
		"FF_UGC_DATABASE_HOST",
		"FF_UGC_DATABASE_PORT",
		"FF_UGC_DATABASE_DBNAME",
		"FF_UGC_CACHE_UNSEEN_COUNT_TTL",
	} {
		t.Cleanup(func() { _ = os.Unsetenv(key) })
	}

	configPath := writeConfig(t, `
debug: false
database:
  host: file-host
  port: 5432
  dbname: file-db
`)

	cfg, err := LoadAPIConfig(configPath, envDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// values from the env files override the config file
	assert.True(t, cfg.Debug)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "local-db", cfg.Database.DBName)
	assert.Equal(t, 2*time.Minute, cfg.Cache.UnseenCountTTL)
}
