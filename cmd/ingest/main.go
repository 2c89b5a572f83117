package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/gamebot/internal/adapter"
	"github.com/feral-file/gamebot/internal/catalog"
	"github.com/feral-file/gamebot/internal/config"
	"github.com/feral-file/gamebot/internal/domain"
	"github.com/feral-file/gamebot/internal/features"
	"github.com/feral-file/gamebot/internal/freshness"
	"github.com/feral-file/gamebot/internal/loader"
	"github.com/feral-file/gamebot/internal/logger"
	"github.com/feral-file/gamebot/internal/pipeline"
	temporal "github.com/feral-file/gamebot/internal/providers/temporal"
	"github.com/feral-file/gamebot/internal/registry"
	"github.com/feral-file/gamebot/internal/remediation"
	"github.com/feral-file/gamebot/internal/source"
	"github.com/feral-file/gamebot/internal/store"
	"github.com/feral-file/gamebot/internal/transform"
	"github.com/feral-file/gamebot/internal/workflows"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file")
	envPath     = flag.String("env", "config/", "Path to environment files")
	mode        = flag.String("mode", "", "Override run mode: local or temporal")
	force       = flag.Bool("force", false, "Load every selected dataset regardless of freshness")
	datasets    = flag.String("datasets", "", "Comma separated dataset names to ingest (default: all)")
	fullReplace = flag.String("full-replace", "", "Comma separated dataset names to truncate and reload")
	notes       = flag.String("notes", "", "Free-form notes stored with the run")
	wait        = flag.Bool("wait", true, "In temporal mode, wait for the workflow result")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadIngestConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if *mode != "" {
		cfg.Mode = *mode
	}

	// Cancel the run on interrupt so stages stop and the report is still written
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service":     "ingest",
			"environment": cfg.Environment,
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	req := pipeline.RunRequest{
		Datasets:    pick(splitList(*datasets), cfg.Datasets),
		FullReplace: pick(splitList(*fullReplace), cfg.FullReplace),
		Force:       *force || cfg.Force,
		Notes:       *notes,
	}
	logger.InfoCtx(ctx, "Starting ingestion",
		zap.String("mode", cfg.Mode),
		zap.String("run_group", cfg.RunGroup),
		zap.Strings("datasets", req.Datasets),
		zap.Strings("full_replace", req.FullReplace),
		zap.Bool("force", req.Force),
	)

	var status domain.RunStatus
	switch cfg.Mode {
	case "temporal":
		status = runTemporal(ctx, cfg, req)
	default:
		status = runLocal(ctx, cfg, req)
	}

	if status == domain.RunStatusFailed {
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}
}

// runLocal executes every stage in this process
func runLocal(ctx context.Context, cfg *config.IngestConfig, req pipeline.RunRequest) domain.RunStatus {
	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	if cfg.Database.ReadHost != "" {
		if err := store.UseReadReplica(db, cfg.Database.ReadDSN()); err != nil {
			logger.FatalCtx(ctx, "Failed to register read replica", zap.Error(err), zap.String("read_host", cfg.Database.ReadHost))
		}
	}
	dataStore := store.NewPGStore(db)

	clockAdapter := adapter.NewClock()
	fileSystem := adapter.NewFileSystem()

	cat, err := catalog.LoadOrDefault(cfg.CatalogPath)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load catalog", zap.Error(err), zap.String("path", cfg.CatalogPath))
	}

	var upstream source.Source
	switch cfg.Source.Kind {
	case "dir":
		upstream = source.NewDirSource(cfg.Source.Dir, fileSystem)
	default:
		httpClient := adapter.NewHTTPClient(cfg.Source.Timeout, adapter.RetryConfig{
			InitialInterval: cfg.Source.Retry.InitialInterval,
			MaxInterval:     cfg.Source.Retry.MaxInterval,
			MaxElapsedTime:  cfg.Source.Retry.MaxElapsedTime,
		})
		upstream = source.NewHTTPSource(source.HTTPConfig{
			BaseURL:     cfg.Source.BaseURL,
			Timeout:     cfg.Source.Timeout,
			MaxFailures: cfg.Source.Breaker.MaxFailures,
			OpenTimeout: cfg.Source.Breaker.OpenTimeout,
		}, httpClient, clockAdapter)
	}

	fallback, err := registry.NewFallbackRegistryLoader(fileSystem).Load(cfg.Remediation.FallbackPath)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load fallback registry", zap.Error(err), zap.String("path", cfg.Remediation.FallbackPath))
	}

	engine := pipeline.NewEngine(pipeline.Config{
		Environment: cfg.Environment,
		RunGroup:    cfg.RunGroup,
		LockTTL:     cfg.LockTTL,
	}, pipeline.Deps{
		Catalog:  cat,
		Store:    dataStore,
		Detector: freshness.NewDetector(upstream, dataStore, cfg.Loader.Worker.WorkerPoolSize),
		Loader: loader.NewLoader(loader.Config{
			WorkerPoolSize:           cfg.Loader.Worker.WorkerPoolSize,
			CoercionFailureThreshold: cfg.Loader.CoercionFailureThreshold,
			BatchSize:                cfg.Loader.BatchSize,
		}, cat, upstream, dataStore, clockAdapter),
		Remediator: remediation.NewRemediator(remediation.Config{
			FuzzyThreshold: cfg.Remediation.FuzzyThreshold,
			SampleSize:     cfg.Remediation.SampleSize,
		}, cat, dataStore, fallback),
		Transformer: transform.NewTransformer(cat, dataStore),
		Aggregator:  features.NewAggregator(dataStore, adapter.NewJCS(), clockAdapter),
		Clock:       clockAdapter,
	})

	rep, err := engine.Run(ctx, req)
	if rep == nil {
		logger.ErrorCtx(ctx, fmt.Errorf("ingestion run failed: %w", err))
		return domain.RunStatusFailed
	}
	if err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("ingestion run %s failed: %w", rep.RunID, err))
	}

	logger.InfoCtx(ctx, "Ingestion run finished",
		zap.String("runId", rep.RunID),
		zap.String("status", string(rep.Status)),
		zap.Strings("degradedBy", rep.DegradedBy),
		zap.Duration("duration", rep.EndedAt.Sub(rep.StartedAt)),
	)
	return rep.Status
}

// runTemporal submits the pipeline workflow and optionally waits for it
func runTemporal(ctx context.Context, cfg *config.IngestConfig, req pipeline.RunRequest) domain.RunStatus {
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporal.NewZapLoggerAdapter(logger.Default()),
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Temporal", zap.Error(err), zap.String("host_port", cfg.Temporal.HostPort))
	}
	defer temporalClient.Close()

	run, err := temporal.StartIngestPipeline(ctx, temporalClient, cfg.Temporal.PipelineTaskQueue, cfg.RunGroup, req)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("run_group", cfg.RunGroup))
		return domain.RunStatusFailed
	}
	logger.InfoCtx(ctx, "Submitted ingestion workflow",
		zap.String("workflowId", run.GetID()),
		zap.String("runId", run.GetRunID()),
	)
	if !*wait {
		return domain.RunStatusRunning
	}

	var result workflows.RunResult
	if err := run.Get(ctx, &result); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("ingestion workflow failed: %w", err), zap.String("workflowId", run.GetID()))
		return domain.RunStatusFailed
	}
	logger.InfoCtx(ctx, "Ingestion workflow finished",
		zap.String("runId", result.RunID),
		zap.String("status", string(result.Status)),
		zap.Strings("degradedBy", result.DegradedBy),
	)
	return result.Status
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func pick(flagged, configured []string) []string {
	if len(flagged) > 0 {
		return flagged
	}
	return configured
}
