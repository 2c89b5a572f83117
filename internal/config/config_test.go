package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIngestConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *IngestConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
environment: prod
run_group: survivor-prod
mode: temporal
force: true
datasets:
  - castaways
  - vote_history
full_replace:
  - challenge_summary
database:
  host: localhost
  port: 5433
  user: testuser
  password: testpass
  dbname: testdb
  sslmode: require
temporal:
  host_port: "temporal:7233"
  pipeline_task_queue: "pipeline-test"
source:
  kind: http
  base_url: "https://example.com/csv"
  timeout: "15s"
  retry:
    initial_interval: "1s"
    max_elapsed_time: "30s"
  breaker:
    max_failures: 3
loader:
  worker:
    pool_size: 8
  coercion_failure_threshold: 0.1
remediation:
  fuzzy_threshold: 0.9
  fallback_path: "config/fallback.json"
`,
			validate: func(t *testing.T, cfg *IngestConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "prod", cfg.Environment)
				assert.Equal(t, "survivor-prod", cfg.RunGroup)
				assert.Equal(t, "temporal", cfg.Mode)
				assert.True(t, cfg.Force)
				assert.Equal(t, []string{"castaways", "vote_history"}, cfg.Datasets)
				assert.Equal(t, []string{"challenge_summary"}, cfg.FullReplace)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5433, cfg.Database.Port)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, "temporal:7233", cfg.Temporal.HostPort)
				assert.Equal(t, "pipeline-test", cfg.Temporal.PipelineTaskQueue)
				assert.Equal(t, "https://example.com/csv", cfg.Source.BaseURL)
				assert.Equal(t, 15*time.Second, cfg.Source.Timeout)
				assert.Equal(t, time.Second, cfg.Source.Retry.InitialInterval)
				assert.Equal(t, 30*time.Second, cfg.Source.Retry.MaxElapsedTime)
				assert.Equal(t, uint32(3), cfg.Source.Breaker.MaxFailures)
				assert.Equal(t, 8, cfg.Loader.Worker.WorkerPoolSize)
				assert.InDelta(t, 0.1, cfg.Loader.CoercionFailureThreshold, 1e-9)
				assert.InDelta(t, 0.9, cfg.Remediation.FuzzyThreshold, 1e-9)
				assert.Equal(t, "config/fallback.json", cfg.Remediation.FallbackPath)
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
			validate: func(t *testing.T, cfg *IngestConfig) {
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
				assert.Equal(t, "local", cfg.Mode)
				assert.Equal(t, "dev", cfg.Environment)
				assert.Equal(t, "survivor", cfg.RunGroup)
				assert.Equal(t, "warehouse-pipeline", cfg.Temporal.PipelineTaskQueue)
				assert.Equal(t, "http", cfg.Source.Kind)
				assert.NotEmpty(t, cfg.Source.BaseURL)
				assert.Equal(t, 60*time.Second, cfg.Source.Timeout)
				assert.Equal(t, uint32(5), cfg.Source.Breaker.MaxFailures)
				assert.Equal(t, 4, cfg.Loader.Worker.WorkerPoolSize)
				assert.InDelta(t, 0.05, cfg.Loader.CoercionFailureThreshold, 1e-9)
				assert.InDelta(t, 0.85, cfg.Remediation.FuzzyThreshold, 1e-9)
				assert.Equal(t, 10, cfg.Remediation.SampleSize)
				assert.Equal(t, 6*time.Hour, cfg.LockTTL)
			},
		},
		{
			name: "dir source requires dir",
			configFile: `
source:
  kind: dir
`,
			expectError: true,
		},
		{
			name: "unknown mode",
			configFile: `
mode: cron
`,
			expectError: true,
		},
		{
			name: "threshold out of range",
			configFile: `
loader:
  coercion_failure_threshold: 1.5
`,
			expectError: true,
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configFile := filepath.Join(tmpDir, "config.yaml")
			err := os.WriteFile(configFile, []byte(tt.configFile), 0600)
			require.NoError(t, err)

			cfg, err := LoadIngestConfig(configFile, tmpDir)

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

func TestLoadWorkerPipelineConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	err := os.WriteFile(configFile, []byte(`
source:
  kind: dir
  dir: /data/survivor
metrics:
  port: 9191
`), 0600)
	require.NoError(t, err)

	cfg, err := LoadWorkerPipelineConfig(configFile, tmpDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "dir", cfg.Source.Kind)
	assert.Equal(t, "/data/survivor", cfg.Source.Dir)
	assert.Equal(t, "0.0.0.0", cfg.Metrics.Host)
	assert.Equal(t, 9191, cfg.Metrics.Port)
	assert.Equal(t, 4, cfg.Temporal.MaxConcurrentActivityExecutionSize)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		config   DatabaseConfig
		expected string
		read     string
	}{
		{
			name: "complete config",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				ReadHost: "replica",
				ReadPort: 5433,
				User:     "testuser",
				Password: "testpass",
				DBName:   "testdb",
				SSLMode:  "require",
			},
			expected: "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require",
			read:     "host=replica port=5433 user=testuser password=testpass dbname=testdb sslmode=require",
		},
		{
			name: "read port falls back to port",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				ReadHost: "replica",
				User:     "user",
				Password: "p@ss",
				DBName:   "db",
				SSLMode:  "disable",
			},
			expected: "host=localhost port=5432 user=user password=p@ss dbname=db sslmode=disable",
			read:     "host=replica port=5432 user=user password=p@ss dbname=db sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.DSN())
			assert.Equal(t, tt.read, tt.config.ReadDSN())
		})
	}
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	tmpDir := t.TempDir()

	envDir := filepath.Join(tmpDir, "env")
	err := os.MkdirAll(envDir, 0750)
	require.NoError(t, err)

	// Viper uses the GAMEBOT_ prefix
	envFile := filepath.Join(envDir, ".env")
	envContent := `GAMEBOT_DEBUG=true
GAMEBOT_DATABASE_HOST=env-host
GAMEBOT_DATABASE_PORT=6543
GAMEBOT_SOURCE_KIND=dir
GAMEBOT_SOURCE_DIR=/srv/extracts
GAMEBOT_DATASETS=castaways,episodes
`
	err = os.WriteFile(envFile, []byte(envContent), 0600)
	require.NoError(t, err)
	for _, key := range []string{
		"GAMEBOT_DEBUG", "GAMEBOT_DATABASE_HOST", "GAMEBOT_DATABASE_PORT",
		"GAMEBOT_SOURCE_KIND", "GAMEBOT_SOURCE_DIR", "GAMEBOT_DATASETS",
	} {
		key := key
		t.Cleanup(func() { _ = os.Unsetenv(key) })
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	err = os.WriteFile(configPath, []byte(`
debug: false
database:
  host: file-host
  port: 5432
`), 0600)
	require.NoError(t, err)

	cfg, err := LoadIngestConfig(configPath, envDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// .env values are loaded with godotenv.Overload and win over the file
	assert.True(t, cfg.Debug)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "dir", cfg.Source.Kind)
	assert.Equal(t, "/srv/extracts", cfg.Source.Dir)
	assert.Equal(t, []string{"castaways", "episodes"}, cfg.Datasets)
}
