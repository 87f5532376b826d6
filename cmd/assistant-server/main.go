package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"crm-assistant/internal/api"
	"crm-assistant/internal/chat/ratelimit"
	"crm-assistant/internal/chat/session"
	"crm-assistant/internal/common/config"
	"crm-assistant/internal/common/database"
	"crm-assistant/internal/common/logger"
	"crm-assistant/internal/common/observability"
	"crm-assistant/internal/query/processor"
	"crm-assistant/internal/segmentation"
	pgstore "crm-assistant/internal/store/postgres"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting assistant server",
		zap.String("environment", cfg.App.Environment),
		zap.String("address", cfg.HTTP.Address),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Postgres ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres init failed", zap.Error(err))
	}
	defer pg.Close()

	err = retryWithBackoff(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return pg.Ping(pingCtx)
	}, 10, 2*time.Second, zapLog, "postgres connection")
	if err != nil {
		zapLog.Fatal("postgres unreachable", zap.Error(err))
	}

	// --- Redis (profile cache, optional limiter backend) ---
	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("redis init failed", zap.Error(err))
	}
	defer rdb.Close()

	err = retryWithBackoff(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return rdb.Ping(pingCtx)
	}, 10, 2*time.Second, zapLog, "redis connection")
	if err != nil {
		zapLog.Fatal("redis unreachable", zap.Error(err))
	}

	// --- Core wiring ---
	store := pgstore.New(pg.DB, log)

	profiles := segmentation.NewProfileService(
		store,
		rdb.Client,
		time.Duration(cfg.Chat.ProfileCacheTTL)*time.Second,
		log,
	)

	proc := processor.New(store, &processor.Config{
		AtRiskThresholdDays: cfg.Chat.AtRiskThresholdDays,
		AtRiskLimit:         cfg.Chat.AtRiskLimit,
		AppointmentsLimit:   cfg.Chat.AppointmentsLimit,
		GenericListLimit:    cfg.Chat.GenericListLimit,
	}, log)

	var limiter ratelimit.Limiter
	if cfg.Chat.LimiterBackend == "redis" {
		limiter = ratelimit.NewRedisLimiter(rdb.Client)
	} else {
		limiter = ratelimit.NewMemoryLimiter()
	}

	controller := session.NewController(limiter, proc, &session.Config{
		MaxQueriesPerWindow: cfg.Chat.MaxQueriesPerWindow,
		Window:              time.Duration(cfg.Chat.WindowSeconds) * time.Second,
	}, obs, log)

	handler := api.NewAPIHandler(controller, profiles, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		zapLog.Info("http server listening", zap.String("address", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("stopped")
}
