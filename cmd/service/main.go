package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tunaaoguzhann/limited-time-token/core"
	"github.com/tunaaoguzhann/limited-time-token/logger"
	"github.com/tunaaoguzhann/limited-time-token/ratelimit"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(
		logger.WithLevelName(cfg.LogLevel),
		logger.WithFormat(logger.Format(cfg.LogFormat)),
		logger.WithAttr(slog.String("service", "limited-time-token")),
	)
	slog.SetDefault(log)

	limiter, err := buildLimiter(cfg, log)
	if err != nil {
		log.Error("init rate limiter", slog.Any("error", err))
		os.Exit(1)
	}

	router, err := newRouter(serverOptions{
		Token:         core.Config{Secret: cfg.SecretKey, Logger: log},
		JWTSecret:     cfg.JWTSecret,
		DefaultExpiry: cfg.DefaultExpiry,
		Limiter:       limiter,
		RateLimit:     cfg.RateLimit,
		RateWindow:    cfg.RateWindow,
		Logger:        log,
	})
	if err != nil {
		log.Error("init server", slog.Any("error", err))
		os.Exit(1)
	}

	addr := ":" + strconv.Itoa(cfg.Port)
	log.Info("listening", slog.String("addr", addr), slog.Bool("redis", cfg.RedisAddr != ""))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil {
		log.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}

func buildLimiter(cfg config, log *slog.Logger) (ratelimit.Limiter, error) {
	if cfg.RateLimit <= 0 {
		log.Info("rate limiting disabled")
		return nil, nil
	}
	if cfg.RedisAddr == "" {
		log.Info("using in-memory rate limiter")
		return ratelimit.NewMemoryLimiter(nil), nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	log.Info("using redis rate limiter", slog.String("addr", cfg.RedisAddr))
	return ratelimit.NewRedisLimiter(client, ratelimit.DefaultRedisPrefix), nil
}
