package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/gamebot/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadHost        string        `mapstructure:"read_host"`
	ReadPort        int           `mapstructure:"read_port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// TemporalConfig holds Temporal configuration
type TemporalConfig struct {
	HostPort                           string        `mapstructure:"host_port"`
	Namespace                          string        `mapstructure:"namespace"`
	PipelineTaskQueue                  string        `mapstructure:"pipeline_task_queue"`
	MaxConcurrentActivityExecutionSize int           `mapstructure:"max_concurrent_activity_execution_size"`
	WorkerActivitiesPerSecond          float64       `mapstructure:"worker_activities_per_second"`
	MaxConcurrentActivityTaskPollers   int           `mapstructure:"max_concurrent_activity_task_pollers"`
	StageTimeout                       time.Duration `mapstructure:"stage_timeout"`  // Start-to-close timeout of a stage activity
	FetchAttempts                      int32         `mapstructure:"fetch_attempts"` // Attempts for the stages that read upstream
}

// RetryConfig bounds the exponential backoff of upstream fetches
type RetryConfig struct {
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

// BreakerConfig configures the circuit breaker in front of the upstream
type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"` // Consecutive failures before the breaker opens
	OpenTimeout time.Duration `mapstructure:"open_timeout"` // How long the breaker stays open before probing
}

// SourceConfig holds upstream source configuration
type SourceConfig struct {
	Kind    string        `mapstructure:"kind"` // "http" or "dir"
	BaseURL string        `mapstructure:"base_url"`
	Dir     string        `mapstructure:"dir"`
	Timeout time.Duration `mapstructure:"timeout"` // Hard timeout for a single fetch
	Retry   RetryConfig   `mapstructure:"retry"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	WorkerPoolSize int `mapstructure:"pool_size"`
}

// LoaderConfig holds raw loader configuration
type LoaderConfig struct {
	Worker                   WorkerConfig `mapstructure:"worker"`
	CoercionFailureThreshold float64      `mapstructure:"coercion_failure_threshold"` // Share of rows (0..1) allowed to have coercion failures
	BatchSize                int          `mapstructure:"batch_size"`
}

// RemediationConfig holds referential remediation configuration
type RemediationConfig struct {
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold"` // Minimum similarity (0..1) to accept a fuzzy match
	FallbackPath   string  `mapstructure:"fallback_path"`
	SampleSize     int     `mapstructure:"sample_size"` // Fuzzy acceptances surfaced in the report per dataset
}

// ServerConfig holds the metrics HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// EngineConfig holds the settings shared by every program that runs pipeline stages
type EngineConfig struct {
	Environment string            `mapstructure:"environment"`
	RunGroup    string            `mapstructure:"run_group"`
	CatalogPath string            `mapstructure:"catalog_path"`
	Datasets    []string          `mapstructure:"datasets"`
	FullReplace []string          `mapstructure:"full_replace"`
	LockTTL     time.Duration     `mapstructure:"lock_ttl"`
	Source      SourceConfig      `mapstructure:"source"`
	Loader      LoaderConfig      `mapstructure:"loader"`
	Remediation RemediationConfig `mapstructure:"remediation"`
}

// IngestConfig holds configuration for the ingest command
type IngestConfig struct {
	BaseConfig   `mapstructure:",squash"`
	EngineConfig `mapstructure:",squash"`
	Database     DatabaseConfig `mapstructure:"database"`
	Temporal     TemporalConfig `mapstructure:"temporal"`
	// Mode is "local" to run every stage in process or "temporal" to submit a workflow
	Mode  string `mapstructure:"mode"`
	Force bool   `mapstructure:"force"`
}

// WorkerPipelineConfig holds configuration for worker-pipeline
type WorkerPipelineConfig struct {
	BaseConfig   `mapstructure:",squash"`
	EngineConfig `mapstructure:",squash"`
	Database     DatabaseConfig `mapstructure:"database"`
	Temporal     TemporalConfig `mapstructure:"temporal"`
	Metrics      ServerConfig   `mapstructure:"metrics"`
}

// setEngineDefaults sets defaults shared by every pipeline program
func setEngineDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.pipeline_task_queue", "warehouse-pipeline")
	v.SetDefault("temporal.max_concurrent_activity_execution_size", 4)
	v.SetDefault("temporal.worker_activities_per_second", 10)
	v.SetDefault("temporal.max_concurrent_activity_task_pollers", 2)
	v.SetDefault("temporal.stage_timeout", "30m")
	v.SetDefault("temporal.fetch_attempts", 3)
	v.SetDefault("environment", domain.DEFAULT_ENVIRONMENT)
	v.SetDefault("run_group", domain.DEFAULT_RUN_GROUP)
	v.SetDefault("lock_ttl", "6h")
	v.SetDefault("source.kind", "http")
	v.SetDefault("source.base_url", "https://raw.githubusercontent.com/doehm/survivoR/master/dev/csv")
	v.SetDefault("source.timeout", "60s")
	v.SetDefault("source.retry.initial_interval", "2s")
	v.SetDefault("source.retry.max_interval", "30s")
	v.SetDefault("source.retry.max_elapsed_time", "2m")
	v.SetDefault("source.breaker.max_failures", 5)
	v.SetDefault("source.breaker.open_timeout", "30s")
	v.SetDefault("loader.worker.pool_size", 4)
	v.SetDefault("loader.coercion_failure_threshold", 0.05)
	v.SetDefault("loader.batch_size", 500)
	v.SetDefault("remediation.fuzzy_threshold", 0.85)
	v.SetDefault("remediation.sample_size", 10)
}

// LoadIngestConfig loads configuration for the ingest command
func LoadIngestConfig(configFile string, envPath string) (*IngestConfig, error) {
	v := configureViper("ingest", configFile, envPath)

	// Set defaults
	setEngineDefaults(v)
	v.SetDefault("mode", "local")
	v.SetDefault("force", false)

	if err := v.ReadInConfig(); err != nil {
		var error viper.ConfigFileNotFoundError
		if errors.As(err, &error) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg IngestConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Mode != "local" && cfg.Mode != "temporal" {
		return nil, fmt.Errorf("invalid mode %q: expected local or temporal", cfg.Mode)
	}
	if err := cfg.EngineConfig.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWorkerPipelineConfig loads configuration for worker-pipeline
func LoadWorkerPipelineConfig(configFile string, envPath string) (*WorkerPipelineConfig, error) {
	v := configureViper("worker-pipeline", configFile, envPath)

	// Set defaults
	setEngineDefaults(v)
	v.SetDefault("metrics.host", "0.0.0.0")
	v.SetDefault("metrics.port", 9090)

	if err := v.ReadInConfig(); err != nil {
		var error viper.ConfigFileNotFoundError
		if errors.As(err, &error) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg WorkerPipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.EngineConfig.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *EngineConfig) validate() error {
	switch c.Source.Kind {
	case "http":
		if c.Source.BaseURL == "" {
			return errors.New("source.base_url is required for http source")
		}
	case "dir":
		if c.Source.Dir == "" {
			return errors.New("source.dir is required for dir source")
		}
	default:
		return fmt.Errorf("invalid source.kind %q: expected http or dir", c.Source.Kind)
	}
	if c.Loader.CoercionFailureThreshold < 0 || c.Loader.CoercionFailureThreshold > 1 {
		return errors.New("loader.coercion_failure_threshold must be between 0 and 1")
	}
	if c.Remediation.FuzzyThreshold <= 0 || c.Remediation.FuzzyThreshold > 1 {
		return errors.New("remediation.fuzzy_threshold must be in (0, 1]")
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("GAMEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.read_host",
		"database.read_port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Temporal
		"temporal.host_port",
		"temporal.namespace",
		"temporal.pipeline_task_queue",
		"temporal.max_concurrent_activity_execution_size",
		"temporal.worker_activities_per_second",
		"temporal.max_concurrent_activity_task_pollers",
		"temporal.stage_timeout",
		"temporal.fetch_attempts",
		// Engine
		"environment",
		"run_group",
		"catalog_path",
		"datasets",
		"full_replace",
		"lock_ttl",
		"mode",
		"force",
		// Source
		"source.kind",
		"source.base_url",
		"source.dir",
		"source.timeout",
		"source.retry.initial_interval",
		"source.retry.max_interval",
		"source.retry.max_elapsed_time",
		"source.breaker.max_failures",
		"source.breaker.open_timeout",
		// Loader
		"loader.worker.pool_size",
		"loader.coercion_failure_threshold",
		"loader.batch_size",
		// Remediation
		"remediation.fuzzy_threshold",
		"remediation.fallback_path",
		"remediation.sample_size",
		// Metrics server
		"metrics.host",
		"metrics.port",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ReadDSN returns the read-replica database connection string.
// If ReadPort is not configured, it falls back to Port.
func (c *DatabaseConfig) ReadDSN() string {
	port := c.ReadPort
	if port == 0 {
		port = c.Port
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.ReadHost, port, c.User, c.Password, c.DBName, c.SSLMode)
}
