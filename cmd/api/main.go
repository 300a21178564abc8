package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parklot/internal/api"
	"parklot/internal/clock"
	"parklot/internal/config"
	"parklot/internal/database"
	"parklot/internal/domain"
	"parklot/internal/events"
	"parklot/internal/logging"
	"parklot/internal/metrics"
	"parklot/internal/report"
	"parklot/internal/repository"
	"parklot/internal/schedule"
	"parklot/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := initDatabase(cfg, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	cache, cacheCloser := initCache(cfg, &logger)
	if cacheCloser != nil {
		defer cacheCloser.Close()
	}

	bus := initEventBus(&logger)

	rates := schedule.Rates(cfg.Parking.HourlyRates)
	reservations := service.NewReservationService(
		db, db, cache, rates, bus,
		clock.NewSystem(), cfg.Parking.MaxDuration(), &logger)
	catalog := service.NewCatalogService(db, db, cache, &logger)
	reporter := report.NewReporter(db, cfg.Exports.Path, &logger)

	httpServer := api.NewServer(cfg.API, reservations, catalog, reporter, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)
	startBackups(ctx, cfg, &logger)

	return serve(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := logging.Component(baseLogger, "api-main")

	return cfg, logger, closer, nil
}

func initDatabase(cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return nil, err
	}

	if err := db.SyncCatalog(context.Background(), cfg.Floors); err != nil {
		logger.Error().Err(err).Msg("sync catalog")
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// initCache builds the read cache: a failover pair over Redis when it
// is reachable, plain in-memory otherwise.
func initCache(cfg *config.Config, logger *zerolog.Logger) (domain.Cache, io.Closer) {
	ttl := cfg.Parking.CacheTTL()
	memory := repository.NewMemoryCache(ttl)

	if !cfg.Redis.Enabled || cfg.Redis.Address == "" {
		return memory, nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with in-memory cache")
		_ = client.Close()
		return memory, nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	redisCache := repository.NewRedisCache(client, ttl)
	return repository.NewFailoverCache(redisCache, memory, logger), client
}

func initEventBus(logger *zerolog.Logger) *events.EventBus {
	bus := events.NewEventBus()

	logEvent := func(event *events.Event) error {
		var payload events.ReservationEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}
		logger.Info().
			Str("event_type", event.Type).
			Int64("reservation_id", payload.ReservationID).
			Int64("slot_id", payload.SlotID).
			Str("holder_id", payload.HolderID).
			Msg("reservation event")
		return nil
	}

	bus.Subscribe(events.EventReservationCreated, logEvent)
	bus.Subscribe(events.EventReservationCancelled, logEvent)
	return bus
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startBackups(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Database.Backup.Enabled {
		return
	}

	backup := database.NewBackupService(cfg.Database.Path, cfg.Database.Backup, logger)
	go backup.Start(ctx)
}

func serve(ctx context.Context, httpServer *api.Server, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
