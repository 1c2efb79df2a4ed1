package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"jobtrack/internal/api"
	"jobtrack/internal/auth"
	"jobtrack/internal/config"
	"jobtrack/internal/database"
	"jobtrack/internal/metrics"
	"jobtrack/internal/ratelimit"
	"jobtrack/internal/schema"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Error("close database failed", slog.Any("error", err))
		}
	}()
	logger.Info("database connection ready", slog.String("driver", cfg.Database.Driver))

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if cfg.Metrics.Enabled {
		if err := metrics.RegisterDBStats(sqlDB, cfg.Database.Driver); err != nil {
			return fmt.Errorf("register db stats: %w", err)
		}
	}

	authService, err := auth.NewAuthService(
		cfg.Auth.SecretKey,
		cfg.Auth.Algorithm,
		cfg.Auth.AccessTokenTTL(),
		cfg.Auth.BcryptCost,
	)
	if err != nil {
		return fmt.Errorf("init auth service: %w", err)
	}

	if err := schema.RegisterValidators(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}

	limiter, closeLimiter := newLimiter(ctx, cfg, logger)
	defer closeLimiter()

	if strings.ToLower(cfg.Log.Level) != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(cfg, api.Dependencies{
		UnitOfWork:  database.NewUnitOfWork(db, cfg.Database.PoolTimeout),
		AuthService: authService,
		Limiter:     limiter,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newLimiter 配置了 Redis 时使用共享限流，否则使用进程内限流；返回 nil 表示不限流。
func newLimiter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ratelimit.Limiter, func()) {
	if cfg.RateLimit.PerMinute == 0 {
		logger.Info("rate limiting disabled")
		return nil, func() {}
	}

	if addr := cfg.Redis.Addr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable at startup, limiter will fail open until it recovers",
				slog.String("redis_addr", addr), slog.Any("error", err))
		}
		logger.Info("using redis rate limiter", slog.String("redis_addr", addr), slog.Int("per_minute", cfg.RateLimit.PerMinute))
		return ratelimit.NewRedisLimiter(client, cfg.RateLimit.PerMinute), func() {
			if err := client.Close(); err != nil {
				logger.Error("close redis client failed", slog.Any("error", err))
			}
		}
	}

	limiter := ratelimit.NewMemoryLimiter(cfg.RateLimit.PerMinute)
	limiter.StartSweeper(ctx, time.Minute)
	logger.Info("using in-process rate limiter", slog.Int("per_minute", cfg.RateLimit.PerMinute))
	return limiter, func() {}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
