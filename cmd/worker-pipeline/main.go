package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/gamebot/internal/adapter"
	"github.com/feral-file/gamebot/internal/catalog"
	"github.com/feral-file/gamebot/internal/config"
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
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadWorkerPipelineConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service":     "worker-pipeline",
			"environment": cfg.Environment,
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Worker Pipeline")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	if cfg.Database.ReadHost != "" {
		if err := store.UseReadReplica(db, cfg.Database.ReadDSN()); err != nil {
			logger.FatalCtx(ctx, "Failed to register read replica", zap.Error(err), zap.String("read_host", cfg.Database.ReadHost))
		}
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
		zap.Bool("read_replica", cfg.Database.ReadHost != ""),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	fileSystem := adapter.NewFileSystem()
	jcsAdapter := adapter.NewJCS()

	// Load the dataset catalog
	cat, err := catalog.LoadOrDefault(cfg.CatalogPath)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load catalog", zap.Error(err), zap.String("path", cfg.CatalogPath))
	}
	logger.InfoCtx(ctx, "Loaded catalog", zap.String("version", cat.Version), zap.Int("datasets", len(cat.Datasets)))

	// Initialize upstream source
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

	// Load remediation fallback registry
	fallback, err := registry.NewFallbackRegistryLoader(fileSystem).Load(cfg.Remediation.FallbackPath)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load fallback registry", zap.Error(err), zap.String("path", cfg.Remediation.FallbackPath))
	}
	logger.InfoCtx(ctx, "Loaded fallback registry", zap.Int("entries", fallback.Len()))

	// Initialize pipeline engine
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
		Aggregator:  features.NewAggregator(dataStore, jcsAdapter, clockAdapter),
		Clock:       clockAdapter,
	})

	// Initialize executor for activities
	executor := workflows.NewExecutor(engine, clockAdapter)

	// Connect to Temporal with logger integration
	temporalLogger := temporal.NewZapLoggerAdapter(logger.Default())
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporalLogger,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Temporal", zap.Error(err), zap.String("host_port", cfg.Temporal.HostPort))
	}
	defer temporalClient.Close()

	logger.InfoCtx(ctx, "Connected to Temporal",
		zap.String("host_port", cfg.Temporal.HostPort),
		zap.String("namespace", cfg.Temporal.Namespace),
	)

	// Create Temporal worker with the Sentry interceptor
	sentryInterceptor := temporal.NewSentryActivityInterceptor(adapter.NewActivity())
	temporalWorker := worker.New(temporalClient,
		cfg.Temporal.PipelineTaskQueue,
		worker.Options{
			MaxConcurrentActivityExecutionSize: cfg.Temporal.MaxConcurrentActivityExecutionSize,
			WorkerActivitiesPerSecond:          cfg.Temporal.WorkerActivitiesPerSecond,
			MaxConcurrentActivityTaskPollers:   cfg.Temporal.MaxConcurrentActivityTaskPollers,
			Interceptors: []interceptor.WorkerInterceptor{
				sentryInterceptor,
			},
		})

	// Create pipeline worker instance
	workerPipeline := workflows.NewWorkerPipeline(executor, workflows.WorkerPipelineConfig{
		StageTimeout:  cfg.Temporal.StageTimeout,
		FetchAttempts: cfg.Temporal.FetchAttempts,
	})

	// Register workflows
	temporalWorker.RegisterWorkflow(workerPipeline.IngestPipeline)
	logger.InfoCtx(ctx, "Registered workflows")

	// Register activities
	temporalWorker.RegisterActivity(executor.StartRun)
	temporalWorker.RegisterActivity(executor.AcquireRunLock)
	temporalWorker.RegisterActivity(executor.ReleaseRunLock)
	temporalWorker.RegisterActivity(executor.DetectFreshness)
	temporalWorker.RegisterActivity(executor.LoadRaw)
	temporalWorker.RegisterActivity(executor.Remediate)
	temporalWorker.RegisterActivity(executor.Transform)
	temporalWorker.RegisterActivity(executor.Aggregate)
	temporalWorker.RegisterActivity(executor.FinishRun)
	logger.InfoCtx(ctx, "Registered activities")

	// Serve metrics
	metricsServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Metrics.Host, strconv.Itoa(cfg.Metrics.Port)),
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorCtx(ctx, fmt.Errorf("metrics server failed: %w", err))
		}
	}()
	logger.InfoCtx(ctx, "Serving metrics", zap.String("addr", metricsServer.Addr))

	// Start the worker
	err = temporalWorker.Start()
	if err != nil {
		logger.FatalCtx(ctx, "Failed to start Temporal worker", zap.Error(err))
	}

	logger.InfoCtx(ctx, "Worker Pipeline started successfully",
		zap.String("task_queue", cfg.Temporal.PipelineTaskQueue),
	)

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.InfoCtx(ctx, "Shutting down Worker Pipeline...")

	// Stop the worker
	temporalWorker.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.WarnCtx(ctx, "Failed to shut down metrics server", zap.Error(err))
	}

	logger.InfoCtx(ctx, "Worker Pipeline stopped")
}
