package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yndnr/quizrally-go/internal/core/service"
	"github.com/yndnr/quizrally-go/internal/infra/buildinfo"
	"github.com/yndnr/quizrally-go/internal/infra/confloader"
	"github.com/yndnr/quizrally-go/internal/infra/shutdown"
	"github.com/yndnr/quizrally-go/internal/server/config"
	"github.com/yndnr/quizrally-go/internal/server/httpserver"
	"github.com/yndnr/quizrally-go/internal/storage"
	"github.com/yndnr/quizrally-go/internal/storage/mirror"
	"github.com/yndnr/quizrally-go/internal/telemetry/logger"
	"github.com/yndnr/quizrally-go/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", os.Getenv("QUIZRALLY_CONFIG"), "path to configuration file")
		showVersion = flag.Bool("version", false, "show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("quizrally-server %s\n", buildinfo.String())
		return nil
	}

	loader := confloader.NewLoader(confloader.WithConfigFile(*configFile))
	cfg, err := loadConfig(loader)
	if err != nil {
		return err
	}

	log := logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	log.Info("starting quizrally-server", buildinfo.LogAttrs()...)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := metric.NewRegistry()
	shut := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout, log)
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic, flushing before exit", "panic", r)
			shut.Shutdown()
			panic(r)
		}
	}()

	engine, err := initStorage(cfg, reg, log)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	shut.OnShutdown("storage", engine.Close)

	sink, err := mirror.Open(cfg.MirrorConfig(), log)
	if err != nil {
		shut.Shutdown()
		return fmt.Errorf("open mirror: %w", err)
	}
	async := mirror.NewAsync(sink, cfg.Mirror.QueueSize, log)
	// Hooks run in reverse, so the queue drains before the final flush.
	shut.OnShutdown("mirror", func(context.Context) error { return async.Close() })

	seed, err := service.NewSeeder(cfg.SeedConfig(), time.Now())
	if err != nil {
		shut.Shutdown()
		return err
	}
	res, err := engine.Recover(ctx, seed)
	if err != nil {
		shut.Shutdown()
		return fmt.Errorf("storage recovery: %w", err)
	}
	log.Info("storage ready", "source", res.Source, "counts", res.Counts)

	svc := service.NewQuizService(engine,
		service.WithMirror(async),
		service.WithConfig(cfg.ServiceConfig()),
		service.WithLogger(log),
	)
	if n, err := svc.PruneSessions(ctx); err != nil {
		log.Warn("prune sessions failed", "error", err)
	} else if n > 0 {
		log.Info("expired sessions removed", "count", n)
	}
	if _, err := svc.Integrity(ctx); err != nil {
		log.Warn("integrity scan failed", "error", err)
	}
	reg.MustRegister(metric.NewStatusCollector(svc.Status))

	proxies, err := cfg.Server.HTTP.TrustedProxyPrefixes()
	if err != nil {
		shut.Shutdown()
		return err
	}
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Service:            svc,
		Logger:             log,
		Metrics:            reg.Handler(),
		Observer:           reg,
		CORSAllowedOrigins: cfg.Server.HTTP.CORSAllowedOrigins,
		RateLimit:          cfg.Server.HTTP.RateLimit,
		RateBurst:          cfg.Server.HTTP.RateBurst,
		TrustedProxies:     proxies,
		StaticDir:          cfg.Server.HTTP.StaticDir,
	})
	srv := httpserver.New(cfg.Server.HTTP, router, log)
	if err := srv.Listen(); err != nil {
		shut.Shutdown()
		return err
	}

	if watcher := watchConfig(loader, log); watcher != nil {
		shut.OnShutdown("config watcher", func(context.Context) error { return watcher.Stop() })
	}
	shut.OnShutdown("http", srv.Shutdown)

	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr(), "tls", cfg.Server.HTTP.TLSEnabled())
		if err := srv.Serve(); err != nil {
			log.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	if err := shut.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}

// loadConfig reads defaults, the file and the environment, then verifies
// the result.
func loadConfig(loader *confloader.Loader) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func initStorage(cfg *config.ServerConfig, obs storage.Observer, log *slog.Logger) (*storage.Engine, error) {
	scfg := storage.DefaultConfig(cfg.Storage.DataDir)
	scfg.FileName = cfg.Storage.FileName
	scfg.BatchInterval = cfg.Storage.BatchInterval
	scfg.Observer = obs
	scfg.Logger = log
	return storage.New(scfg)
}

// watchConfig reloads the configuration file when it changes. Only the
// log level is applied live; everything else needs a restart.
func watchConfig(loader *confloader.Loader, log *slog.Logger) *confloader.Watcher {
	path := loader.FilePath()
	if path == "" {
		return nil
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		log.Warn("config watcher disabled", "error", err)
		return nil
	}
	if err := w.Watch(path); err != nil {
		log.Warn("config watcher disabled", "path", path, "error", err)
		w.Stop()
		return nil
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(loader)
		if err != nil {
			log.Error("config reload rejected", "error", err)
			return
		}
		if logger.ParseLevel(cfg.Log.Level) != logger.ParseLevel(logger.GetLevel()) {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w
}
