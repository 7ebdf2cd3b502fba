package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/config"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/mirror"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()
	zap.ReplaceGlobals(lg)

	client, err := backend.NewClient(backend.Config{
		BaseURL:            cfg.BackendBaseURL,
		Timeout:            cfg.RequestTimeout,
		BreakerMaxFailures: cfg.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.BreakerOpenTimeout,
	}, lg.Named("backend"))
	if err != nil {
		lg.Fatal("failed to create backend client", zap.Error(err))
	}

	m, closeMirror := newMirror(cfg, lg)
	defer closeMirror()

	sessions := session.NewManager(client, m, session.Config{
		UndoWindow:   cfg.UndoWindow,
		Policy:       cfg.PendingDeletePolicy,
		DisplayDelay: cfg.ConfirmationDelay,
		IdleTimeout:  cfg.SessionIdleTimeout,
	}, lg.Named("session"))

	router := h.NewRouter(client, sessions, h.RouterConfig{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}, lg.Named("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweep(sweepCtx, sessions, cfg.SessionIdleTimeout)

	go func() {
		lg.Info("storefront starting",
			zap.String("port", cfg.HTTPPort),
			zap.String("backend", cfg.BackendBaseURL),
			zap.String("policy", cfg.PendingDeletePolicy.String()),
			zap.String("mirror", cfg.MirrorBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("server forced to shutdown", zap.Error(err))
	}
	stopSweep()
	sessions.Close()

	lg.Info("server exited")
}

func newMirror(cfg *config.Config, lg *zap.Logger) (mirror.Mirror, func()) {
	if cfg.MirrorBackend != config.MirrorRedis {
		return mirror.NewMemory(cfg.SessionIdleTimeout), func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		lg.Warn("redis unreachable, cart mirror disabled until it recovers",
			zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	return mirror.NewRedis(rdb, cfg.SessionIdleTimeout), func() { _ = rdb.Close() }
}

// sweep evicts idle sessions until ctx is done.
func sweep(ctx context.Context, sessions *session.Manager, idle time.Duration) {
	if idle <= 0 {
		return
	}
	interval := idle / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sessions.Sweep(ctx, now)
		}
	}
}
