// Package config provides runtime configuration values for the storefront.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/pending"
)

const (
	MirrorMemory = "memory"
	MirrorRedis  = "redis"
)

type Config struct {
	HTTPPort           string
	BackendBaseURL     string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	UndoWindow          time.Duration
	ConfirmationDelay   time.Duration
	PendingDeletePolicy pending.Policy
	SessionIdleTimeout  time.Duration

	MirrorBackend string
	RedisAddr     string
	RedisPassword string

	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration

	LogLevel       string
	LogDevelopment bool
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func atoienv(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	return time.Duration(atoienv(key, defMs)) * time.Millisecond
}

// durenv accepts a Go duration ("90s") or a bare number of seconds.
func durenv(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if sec, err := strconv.Atoi(v); err == nil {
		return time.Duration(sec) * time.Second
	}
	return def
}

func boolenv(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Load collects configuration from the environment with defaults. Values that
// have no usable default are reported as errors.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		BackendBaseURL:     strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://localhost:5000/api"), "/"),
		RequestTimeout:     durenvms("REQUEST_TIMEOUT_MS", 10000),
		ShutdownTimeout:    durenv("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: 1 << 20, // 1MB

		UndoWindow:         durenvms("UNDO_WINDOW_MS", 5000),
		ConfirmationDelay:  durenvms("CONFIRMATION_DELAY_MS", 3000),
		SessionIdleTimeout: durenv("SESSION_IDLE_TIMEOUT", 30*time.Minute),

		MirrorBackend: strings.ToLower(getEnv("MIRROR_BACKEND", MirrorMemory)),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		BreakerOpenTimeout: durenv("BREAKER_OPEN_TIMEOUT", 30*time.Second),

		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogDevelopment: boolenv("LOG_DEVELOPMENT", false),
	}

	var errs []error

	policy, ok := pending.ParsePolicy(getEnv("PENDING_DELETE_POLICY", ""))
	if !ok {
		errs = append(errs, fmt.Errorf("PENDING_DELETE_POLICY: unknown policy %q", os.Getenv("PENDING_DELETE_POLICY")))
	}
	cfg.PendingDeletePolicy = policy

	failures := atoienv("BREAKER_MAX_FAILURES", 5)
	if failures < 1 {
		errs = append(errs, fmt.Errorf("BREAKER_MAX_FAILURES must be positive, got %d", failures))
	} else {
		cfg.BreakerMaxFailures = uint32(failures)
	}

	switch cfg.MirrorBackend {
	case MirrorMemory, MirrorRedis:
	default:
		errs = append(errs, fmt.Errorf("MIRROR_BACKEND: unknown backend %q", cfg.MirrorBackend))
	}

	if cfg.UndoWindow <= 0 {
		errs = append(errs, errors.New("UNDO_WINDOW_MS must be positive"))
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT_MS must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}
