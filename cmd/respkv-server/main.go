package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv-go/internal/infra/buildinfo"
	"github.com/yndnr/respkv-go/internal/infra/confloader"
	"github.com/yndnr/respkv-go/internal/infra/shutdown"
	"github.com/yndnr/respkv-go/internal/server/config"
	"github.com/yndnr/respkv-go/internal/server/httpserver"
	"github.com/yndnr/respkv-go/internal/server/redisserver"
	"github.com/yndnr/respkv-go/internal/storage/memory"
	"github.com/yndnr/respkv-go/internal/telemetry/logger"
	"github.com/yndnr/respkv-go/internal/telemetry/metric"
	"github.com/yndnr/respkv-go/pkg/resp"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, buildinfo.String(c.App.Name))
	}

	return &cli.App{
		Name:    "respkv-server",
		Usage:   "In-memory key-value server speaking RESP",
		Version: buildinfo.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"RESPKV_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "RESP listen address (overrides server.redis.addr)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (overrides log.level)",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.String("config"), flagOverrides(c))
		},
	}
}

// flagOverrides collects explicitly set flags as dotted config keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	if c.IsSet("addr") {
		overrides["server.redis.addr"] = c.String("addr")
	}
	if c.IsSet("log-level") {
		overrides["log.level"] = c.String("log-level")
	}
	return overrides
}

func run(configFile string, overrides map[string]any) error {
	cfg, err := loadConfig(configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogLogger := log.Slog()

	log.Info("starting respkv-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Get().Commit,
		"config", configFile,
		"redis_addr", cfg.Server.Redis.Addr,
		"http_enabled", cfg.Server.HTTP.Enabled,
		"log_level", cfg.Log.Level,
	)

	store := memory.New()
	metrics := metric.NewRegistry()

	redisServer := redisserver.New(redisConfig(cfg), store,
		redisserver.WithLogger(slogLogger),
		redisserver.WithMetrics(metrics),
	)
	if err := redisServer.Start(context.Background()); err != nil {
		return fmt.Errorf("start redis server: %w", err)
	}

	shutdownHandler := shutdown.NewHandler(shutdownTimeout)
	shutdownHandler.SetLogger(slogLogger)

	// Hooks run in reverse order of registration.
	shutdownHandler.OnShutdown("redis server", redisServer.Shutdown)

	if cfg.Server.HTTP.Enabled {
		httpServer := httpserver.New(cfg.Server.HTTP.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
			Status:  redisServer,
			Metrics: metrics,
			Logger:  slogLogger,
		}), slogLogger)

		if err := httpServer.Start(); err != nil {
			log.Error("admin http server disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("http server", httpServer.Shutdown)
		}
	}

	if configFile != "" {
		watcher, err := watchConfig(configFile, overrides, slogLogger)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig layers defaults, the config file, the environment and flag
// overrides, then verifies the result.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	var opts []confloader.Option
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if len(overrides) > 0 {
		if err := loader.LoadMap(overrides); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("unmarshal flags: %w", err)
		}
	}

	if err := config.Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

func redisConfig(cfg *config.ServerConfig) *redisserver.Config {
	r := cfg.Server.Redis
	limits := resp.DefaultLimits()
	limits.MaxBulkLen = r.MaxBulkLen
	limits.MaxArrayLen = r.MaxArrayLen

	return &redisserver.Config{
		Addr:         r.Addr,
		ReadTimeout:  r.ReadTimeout,
		WriteTimeout: r.WriteTimeout,
		IdleTimeout:  r.IdleTimeout,
		RateLimit:    r.RateLimit,
		Limits:       limits,
	}
}

// watchConfig reloads the config file on change and applies log.level.
// Other settings take effect on restart.
func watchConfig(configFile string, overrides map[string]any, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		reloadLogLevel(path, overrides, log)
	})
	watcher.StartAsync()
	return watcher, nil
}

func reloadLogLevel(path string, overrides map[string]any, log *slog.Logger) {
	cfg, err := loadConfig(path, overrides)
	if err != nil {
		log.Error("config reload failed", "file", path, "error", err)
		return
	}

	previous := logger.GetLevel()
	if cfg.Log.Level == previous {
		log.Info("config reloaded, restart to apply changes other than log.level", "file", path)
		return
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		log.Error("apply log level", "level", cfg.Log.Level, "error", err)
		return
	}
	log.Info("log level changed", "from", previous, "to", cfg.Log.Level)
}
