// cmd/meal-score/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mcp-meal-score/internal/cache"
	"mcp-meal-score/internal/config"
	"mcp-meal-score/internal/logging"
	"mcp-meal-score/internal/recognition"
	"mcp-meal-score/internal/server"
	"mcp-meal-score/internal/storage"
	"mcp-meal-score/internal/vision/cvdetect"
)

var (
	port     = flag.Int("port", 0, "Port for HTTP transport (overrides PORT)")
	host     = flag.String("host", "", "Host address (overrides HOST)")
	dbDriver = flag.String("db-driver", "", "Database driver: sqlite or postgres (overrides DB_DRIVER)")
	dbPath   = flag.String("db-path", "", "SQLite database path (overrides DB_PATH)")
	envFile  = flag.String("env-file", ".env", "Environment file to load if present")
	version  = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("mcp-meal-score version 1.0.0")
		os.Exit(0)
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.NewLogger("meal-score", logging.ParseLevel(cfg.LogLevel))

	store, err := storage.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	opts := []recognition.Option{
		recognition.WithLogger(logger.With("recognition")),
		recognition.WithStride(cfg.SamplingStride),
	}

	var identifier recognition.Identifier
	if cfg.VisionAPIKey != "" {
		identifier = recognition.NewVisionClient(cfg.VisionAPIURL, cfg.VisionAPIKey, cfg.VisionModel)
	}
	opts = append(opts, recognition.WithRemote(identifier, cfg.RemoteRecognitionEnabled))

	if cfg.RemoteConfigured() {
		ttl := time.Duration(cfg.LabelCacheTTLHours) * time.Hour
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		labelCache, err := cache.Open(ctx, cfg.RedisURL, ttl)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, using in-process label cache", "error", err)
			labelCache = cache.NewMemory(ttl)
		}
		if c, ok := labelCache.(io.Closer); ok {
			defer c.Close()
		}
		opts = append(opts, recognition.WithCache(labelCache))
	}

	recognizer := recognition.New(cvdetect.New(cvdetect.DefaultOptions()), opts...)

	srv, err := server.NewMealScoreServer(&server.Config{
		Host: cfg.Host,
		Port: cfg.Port,
	}, store, recognizer, logger)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	logger.Info("configuration loaded",
		"db_driver", cfg.DBDriver,
		"remote_recognition", cfg.RemoteConfigured(),
		"model", cfg.VisionModel,
		"sampling_stride", cfg.SamplingStride)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	logger.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
}

// applyFlags lets explicitly set flags override the environment.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "host":
			cfg.Host = *host
		case "db-driver":
			cfg.DBDriver = *dbDriver
		case "db-path":
			cfg.DBPath = *dbPath
		}
	})
}
