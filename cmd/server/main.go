package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arnavshah/labour-scheduler/pkg/auth"
	"github.com/arnavshah/labour-scheduler/pkg/config"
	"github.com/arnavshah/labour-scheduler/pkg/database"
	"github.com/arnavshah/labour-scheduler/pkg/handlers"
	"github.com/arnavshah/labour-scheduler/pkg/jobs"
	"github.com/arnavshah/labour-scheduler/pkg/labour"
	"github.com/arnavshah/labour-scheduler/pkg/lock"
	"github.com/arnavshah/labour-scheduler/pkg/logging"
	"github.com/arnavshah/labour-scheduler/pkg/models"
	"github.com/arnavshah/labour-scheduler/pkg/notify"
	"github.com/arnavshah/labour-scheduler/pkg/repository"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	scanTimeout   = 5 * time.Minute
	shutdownGrace = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Labour scheduler failed")
	}
}

// run wires the service and blocks until a shutdown signal
func run() error {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)

	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open %s database: %w", cfg.Database.ResolveDriver(), err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("access sql DB: %w", err)
	}
	defer sqlDB.Close()

	store := repository.NewStore(db)
	if err := auth.EnsureUserExists(context.Background(), store.Users(), cfg.AdminUser, cfg.AdminPass, models.RoleFarmer); err != nil {
		logger.Error().Err(err).Msg("Failed to seed default user")
	}

	opts := []labour.Option{
		labour.WithLocation(cfg.Location),
		labour.WithLogger(logger.With().Str("component", "labour").Logger()),
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("reach redis at %s: %w", cfg.RedisAddr, err)
		}
		locker := lock.NewRedis(rdb, "labour-lock:")
		locker.Logger = logger
		opts = append(opts, labour.WithLocker(locker))
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Using redis assignment lock")
	}

	if len(cfg.Kafka) > 0 {
		notifier := notify.NewKafka(cfg.Kafka, cfg.KafkaTopic)
		defer notifier.Close()
		opts = append(opts, labour.WithNotifier(notifier))
		logger.Info().Strs("brokers", cfg.Kafka).Str("topic", cfg.KafkaTopic).Msg("Publishing alerts to kafka")
	}

	svc := labour.New(store, opts...)

	runner := jobs.NewRunner(jobs.NewCron(cfg.Location, logger), logger, scanTimeout)
	if err := runner.Register(jobs.Definitions(cfg.Cron, svc)...); err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}
	runner.Start()

	h := &handlers.Handler{
		Svc:       svc,
		Users:     store.Users(),
		JWTSecret: []byte(cfg.JWTSecret),
		APISecret: []byte(cfg.APISecret),
		Log:       logger,
	}
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h, cfg.CORS),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	case serveErr = <-errCh:
		logger.Error().Err(serveErr).Msg("Server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown error")
	}
	runner.Stop(shutdownCtx)
	logger.Info().Msg("Labour scheduler stopped")
	return serveErr
}
