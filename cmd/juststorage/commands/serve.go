package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/logger"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/telemetry"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/api"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/api/auth"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/blob/local"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/catalog/postgres"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/config"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/gc"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/metrics"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/spf13/cobra"
)

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the juststorage server",
	Long: `Start the juststorage server with the specified configuration.

The server runs migrations, opens the blob roots and the catalog pool,
starts the background garbage collector, and serves the HTTP API until
interrupted.

Examples:
  # Start with default config location
  juststorage serve

  # Start with custom config file
  juststorage serve --config /etc/juststorage/config.yaml

  # Against a pre-migrated database
  juststorage serve --skip-migrations

  # With environment variable overrides
  JUSTSTORAGE_LOGGING_LEVEL=DEBUG juststorage serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Skip running catalog migrations on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics come first so every later component finds the registry
	metricsServer := metrics.NewServer(cfg.Metrics)
	if err := metricsServer.Start(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.TracingEnabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.ProfilingEnabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.PyroscopeEndpoint,
		ProfileTypes:   cfg.Telemetry.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	if skipMigrations {
		logger.Info("skipping catalog migrations")
	} else {
		if err := postgres.MigrateUp(ctx, cfg.Catalog.URL); err != nil {
			return fmt.Errorf("catalog migration failed: %w", err)
		}
	}

	catalogStore, err := postgres.New(ctx, cfg.Catalog)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer catalogStore.Close()
	metrics.RegisterPoolStats(catalogStore.Pool())

	blobs, err := local.New(local.Options{
		HotRoot:       cfg.Storage.HotRoot,
		ColdRoot:      cfg.Storage.ColdRoot,
		DurableWrites: cfg.Storage.DurableWrites,
	})
	if err != nil {
		return fmt.Errorf("failed to open blob storage: %w", err)
	}

	store := objectstore.NewStore(objectstore.Options{
		Blobs:         blobs,
		BlobCatalog:   catalogStore.Blobs(),
		ObjectCatalog: catalogStore.Objects(),
		VerifyOnRead:  cfg.Storage.VerifyOnRead,
		Metrics:       metrics.NewStoreMetrics(),
	})

	collector := gc.New(gc.Options{
		Blobs:         blobs,
		BlobCatalog:   catalogStore.Blobs(),
		ObjectCatalog: catalogStore.Objects(),
		Config:        cfg.GC,
		Metrics:       metrics.NewGCMetrics(),
	})
	runner := gc.NewRunner(collector, cfg.GC.Interval)
	runner.Start(ctx)

	authenticator, err := auth.New(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to configure authentication: %w", err)
	}

	router := api.NewRouter(api.RouterOptions{
		Store:            store,
		Catalog:          catalogStore.Objects(),
		Blobs:            blobs,
		Authenticator:    authenticator,
		RequestTimeout:   cfg.Server.RequestTimeout,
		MaxMetadataBytes: cfg.Server.MaxMetadataBytes.Int64(),
	})
	server := api.NewServer(cfg.Server, router)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("server is running, press Ctrl+C to stop",
		"listen_addr", cfg.Server.ListenAddr,
		"auth_mode", cfg.Auth.Mode,
	)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
		cancel()
		if err := <-serverDone; err != nil {
			logger.Error("server shutdown error", logger.Err(err))
		}
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			stopBackground(runner, metricsServer)
			return fmt.Errorf("server error: %w", err)
		}
	}

	stopBackground(runner, metricsServer)
	logger.Info("server stopped gracefully")
	return nil
}

// stopBackground stops the collector and the metrics listener after
// the API server has drained.
func stopBackground(runner *gc.Runner, metricsServer *metrics.Server) {
	runner.Stop(30 * time.Second)

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Stop(stopCtx); err != nil {
		logger.Error("metrics server shutdown error", logger.Err(err))
	}
}
