package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/respkv-go/internal/telemetry/logger"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyRedis(&cfg.Server.Redis); err != nil {
		return err
	}
	if err := verifyHTTP(&cfg.Server.HTTP); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyRedis(cfg *RedisConfig) error {
	if err := verifyAddr("server.redis.addr", cfg.Addr); err != nil {
		return err
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 {
		return invalid("server.redis timeouts must not be negative")
	}
	if cfg.RateLimit < 0 {
		return invalid("server.redis.rate_limit must not be negative")
	}
	if cfg.MaxBulkLen < 0 {
		return invalid("server.redis.max_bulk_len must not be negative")
	}
	if cfg.MaxArrayLen < 0 {
		return invalid("server.redis.max_array_len must not be negative")
	}
	return nil
}

func verifyHTTP(cfg *HTTPConfig) error {
	if !cfg.Enabled {
		return nil
	}
	return verifyAddr("server.http.addr", cfg.Addr)
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return invalid("log.level: %v", err)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console", "":
		return nil
	default:
		return invalid("log.format %q is not one of json, text", cfg.Format)
	}
}

func verifyAddr(field, addr string) error {
	if addr == "" {
		return invalid("%s is required", field)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return invalid("%s: %v", field, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
