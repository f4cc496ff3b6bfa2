package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"roombook/internal/config"
	"roombook/internal/database"
	"roombook/internal/domain"
	"roombook/internal/events"
	"roombook/internal/export"
	"roombook/internal/logging"
	"roombook/internal/metrics"
	"roombook/internal/models"
	"roombook/internal/repository"
	"roombook/internal/service"
	"roombook/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Commands:
//
//	server                 run the engine daemon (default)
//	server generate ...    generate slot inventory for a room
//	server export ...      write an occupancy xlsx for a date range
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
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Database initialization failed")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "generate":
			return runGenerate(ctx, cfg, db, &logger, os.Args[2:])
		case "export":
			return runExport(ctx, cfg, db, &logger, os.Args[2:])
		}
	}

	return runServe(ctx, cfg, db, &logger)
}

func runServe(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) error {
	metrics.Register()

	redisClient, cache := initAvailabilityCache(ctx, cfg, logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}

	eventBus := events.NewEventBus()
	startNotifier(ctx, cfg, eventBus, logger)

	slotService := service.NewSlotService(db, cache, logger)
	warmAvailability(ctx, db, slotService, logger)

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
		go backupService.Start(ctx)
	}

	if cfg.Monitoring.PrometheusEnabled {
		startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
	}

	logger.Info().Str("environment", cfg.App.Environment).Msg("roombook engine started")
	<-ctx.Done()
	logger.Info().Msg("Shutdown complete.")
	return nil
}

func runGenerate(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	roomID := fs.String("room", "", "room id")
	userID := fs.String("user", "", "acting user id")
	start := fs.String("start", "", "start date YYYY-MM-DD")
	end := fs.String("end", "", "end date YYYY-MM-DD")
	duration := fs.Int("duration", 60, "slot duration, minutes")
	dailyStart := fs.String("daily-start", "09:00", "daily window start HH:mm")
	dailyEnd := fs.String("daily-end", "18:00", "daily window end HH:mm")
	if err := fs.Parse(args); err != nil {
		return err
	}

	startDate, err := models.ParseDate(*start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	endDate, err := models.ParseDate(*end)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}

	slotService := service.NewSlotService(db, nil, logger)
	created, err := slotService.GenerateSlots(ctx, *roomID, *userID, models.RoleAdmin,
		startDate, endDate, *duration, *dailyStart, *dailyEnd)
	if err != nil {
		return err
	}

	logger.Info().Int("created", created).Str("room_id", *roomID).Msg("slot generation done")
	return nil
}

func runExport(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	start := fs.String("start", "", "start date YYYY-MM-DD")
	end := fs.String("end", "", "end date YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}

	startDate, err := models.ParseDate(*start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	endDate, err := models.ParseDate(*end)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}

	exporter := export.NewExcelExporter(db, cfg.Exports.Path, logger)
	path, err := exporter.ExportOccupancy(ctx, startDate, endDate)
	if err != nil {
		return err
	}

	logger.Info().Str("file_path", path).Msg("occupancy export done")
	return nil
}

// warmAvailability fills the cache with today's and tomorrow's views up
// front so the first reads after startup hit warm entries.
func warmAvailability(ctx context.Context, db *database.DB, slots domain.SlotService, logger *zerolog.Logger) {
	rooms, err := db.ListActiveRooms(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Availability warmup skipped")
		return
	}

	today := models.Midnight(time.Now())
	for _, room := range rooms {
		for _, day := range []time.Time{today, today.AddDate(0, 0, 1)} {
			if _, err := slots.ListRoomSlots(ctx, room.ID, day); err != nil {
				logger.Warn().Err(err).Str("room_id", room.ID).Msg("Availability warmup read failed")
			}
		}
	}
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "server-main").Logger()
	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Failed to create database directory")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Failed to create exports directory")
		return err
	}
	return nil
}

// initAvailabilityCache wires the redis-backed cache with an in-memory
// fallback. Without redis the memory cache serves alone.
func initAvailabilityCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.AvailabilityCache) {
	ttl := time.Duration(cfg.Cache.AvailabilityTTL) * time.Second
	memory := repository.NewMemoryAvailabilityCache(ttl)

	if !cfg.Redis.Enabled {
		return nil, memory
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable")
	}

	primary := repository.NewRedisAvailabilityCache(redisClient, ttl)
	return redisClient, repository.NewFailoverAvailabilityCache(primary, memory, logger)
}

func startNotifier(ctx context.Context, cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) *worker.NotifierWorker {
	sender := worker.NewLogSender(logger)
	notifier := worker.NewNotifierWorker(sender,
		cfg.Notifier.QueueSize, cfg.Notifier.RPS, cfg.Notifier.Burst,
		worker.RetryPolicy{MaxRetries: cfg.Notifier.MaxRetries}, logger)

	bus.Subscribe(events.EventSlotBooked, notifier.HandleEvent)
	bus.Subscribe(events.EventSlotCancelled, notifier.HandleEvent)
	bus.Subscribe(events.EventBookingCreated, notifier.HandleEvent)
	bus.Subscribe(events.EventBookingCancelled, notifier.HandleEvent)

	go notifier.Start(ctx)
	return notifier
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Int("port", port).Msg("Prometheus metrics listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Metrics server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
