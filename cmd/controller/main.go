// Package main is the entry point for the fieldops controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldops/internal/auth"
	"fieldops/internal/config"
	"fieldops/internal/controller"
	"fieldops/internal/counter"
	"fieldops/internal/lifecycle"
	"fieldops/internal/logger"
	"fieldops/internal/observability"
	"fieldops/internal/store"
	"fieldops/internal/store/memory"
	"fieldops/internal/store/postgres"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// backend is everything the controller needs from a store implementation.
type backend interface {
	store.CounterStore
	store.JobStore
	store.DirectoryStore
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	configPath := flag.String("config", "", "Path to config file (default: fieldops.yaml in current directory)")
	createAdmin := flag.String("create-admin", "", "Create an admin technician with this name and print its API key; exits unless the store is in-memory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appLogger := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, cfg, *migrateFlag)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()

	if *createAdmin != "" {
		if err := createAdminTechnician(ctx, db, cfg, *createAdmin); err != nil {
			log.Fatalf("Failed to create admin: %v", err)
		}
		// An in-memory admin only exists for the life of this process.
		if cfg.StoreDriver != config.StoreDriverMemory {
			return
		}
	}

	shutdownTracer, err := observability.InitTracer(ctx, "fieldops-controller", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	if err := observability.RegisterActiveJobsGauge(otel.Meter("fieldops-controller"), db, appLogger); err != nil {
		log.Printf("Failed to register active jobs metric: %v", err)
	}

	numbers := counter.New(db, counter.Config{
		MaxAttempts:   cfg.CounterMaxAttempts,
		RetryBaseWait: cfg.CounterRetryBaseDelay,
		RetryMaxWait:  cfg.CounterRetryMaxDelay,
	}, appLogger)
	manager := lifecycle.NewManager(db, db, numbers, appLogger)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := controller.New(addr, manager, numbers, db, metricsHandler, appLogger).
		WithShutdownTimeout(cfg.ShutdownTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("FieldOps Controller starting on %s (store: %s)", addr, cfg.StoreDriver)
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down controller...")
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
	log.Println("Server exited properly")
}

func openStore(ctx context.Context, cfg *config.Config, migrate bool) (backend, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Println("Using in-memory store; data is lost on exit")
		return memory.New(), nil
	}

	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if migrate {
		log.Println("Running database migrations...")
		if err := postgres.Migrate(db.DB()); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		log.Println("Migrations completed successfully")
	}

	version, dirty, err := postgres.MigrationVersion(db.DB())
	if err != nil {
		log.Printf("Could not read schema version: %v", err)
	} else if dirty {
		log.Printf("Schema version %d is dirty; fix it before serving traffic", version)
	}
	return db, nil
}

func createAdminTechnician(ctx context.Context, db backend, cfg *config.Config, name string) error {
	key, hash, err := auth.GenerateKey()
	if err != nil {
		return err
	}
	tech := &store.Technician{
		ID:             uuid.New(),
		Name:           name,
		Admin:          true,
		RateLimit:      cfg.DefaultRateLimit,
		RateLimitBurst: cfg.DefaultRateLimitBurst,
		CreatedAt:      time.Now().UTC(),
	}
	if err := db.CreateTechnician(ctx, tech, hash); err != nil {
		return err
	}
	fmt.Printf("Technician ID: %s\nAPI key (shown once): %s\n", tech.ID, key)
	return nil
}
