package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"showbook/internal/api"
	"showbook/internal/cache"
	"showbook/internal/config"
	"showbook/internal/database"
	"showbook/internal/events"
	"showbook/internal/flags"
	"showbook/internal/logging"
	"showbook/internal/metrics"
	"showbook/internal/models"
	"showbook/internal/notify"
	"showbook/internal/reclaimer"
	"showbook/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	yamlv2 "gopkg.in/yaml.v2"
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
		defer closer.Close()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	if err := seedEvents(db, &logger); err != nil {
		return err
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	snapshotTTL := time.Duration(cfg.Redis.SnapshotTTLSeconds) * time.Second
	snapshots := buildSnapshotStore(redisClient, snapshotTTL, &logger)

	bus := events.NewEventBus()
	bookings := service.NewBookingService(db, bus, snapshots, &logger)

	if notifier := initNotifier(cfg, &logger); notifier != nil {
		notifier.Subscribe(bus)
	}

	selector := flags.NewSelector(db, redisClient,
		cfg.Flags.EnvOverride, cfg.Flags.DefaultModel,
		time.Duration(cfg.Flags.CacheTTLSeconds)*time.Second, &logger)

	httpServer := api.NewHTTPServer(cfg, bookings, selector, db, &logger)

	reclaim := reclaimer.New(bookings,
		time.Duration(cfg.Reclaimer.IntervalSeconds)*time.Second,
		time.Duration(cfg.Reclaimer.TTLMinutes)*time.Minute,
		&logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)
	go reclaim.Start(ctx)

	return startServer(ctx, httpServer, cfg, &logger)
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
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// seedEvents creates events listed in the seed file, skipping names that
// already exist. The file is optional.
func seedEvents(db *database.DB, logger *zerolog.Logger) error {
	seedPath := os.Getenv("EVENTS_PATH")
	if seedPath == "" {
		seedPath = "configs/events.yaml"
	}
	data, err := os.ReadFile(seedPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		logger.Error().Err(err).Str("events_path", seedPath).Msg("read seed events")
		return err
	}

	var seed struct {
		Events []struct {
			Name          string `yaml:"name"`
			StartTime     string `yaml:"start_time"`
			TotalCapacity int64  `yaml:"total_capacity"`
		} `yaml:"events"`
	}
	if err := yamlv2.Unmarshal(data, &seed); err != nil {
		logger.Error().Err(err).Str("events_path", seedPath).Msg("parse seed events")
		return err
	}

	ctx := context.Background()
	for _, entry := range seed.Events {
		startTime, err := time.Parse(time.RFC3339, entry.StartTime)
		if err != nil {
			return fmt.Errorf("seed event %q: bad start_time: %w", entry.Name, err)
		}

		_, err = db.GetEventByName(ctx, entry.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, database.ErrEventNotFound) {
			return err
		}

		event := &models.Event{Name: entry.Name, StartTime: startTime, TotalCapacity: entry.TotalCapacity}
		if err := db.CreateEvent(ctx, event); err != nil {
			return err
		}
		logger.Info().Str("name", event.Name).Int64("capacity", event.TotalCapacity).Msg("seeded event")
	}
	return nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := cache.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func buildSnapshotStore(redisClient *redis.Client, ttl time.Duration, logger *zerolog.Logger) cache.SnapshotStore {
	memory := cache.NewMemorySnapshotStore(ttl)
	if redisClient == nil {
		return memory
	}
	primary := cache.NewRedisSnapshotStore(redisClient, ttl)
	return cache.NewFailoverSnapshotStore(primary, memory, logger)
}

func initNotifier(cfg *config.Config, logger *zerolog.Logger) *notify.TelegramNotifier {
	if cfg.Telegram.BotToken == "" {
		return nil
	}

	notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ManagerChatID, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram notifier init failed, continuing without notifications")
		return nil
	}

	logger.Info().Msg("telegram notifier connected")
	return notifier
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

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

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
