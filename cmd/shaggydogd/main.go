package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"shaggydog/internal/auth"
	"shaggydog/internal/config"
	"shaggydog/internal/logging"
	"shaggydog/internal/progress"
	"shaggydog/internal/runner"
	"shaggydog/internal/server"
	"shaggydog/internal/services/openai"
	"shaggydog/internal/staging"
	"shaggydog/internal/store"
	"shaggydog/internal/transform"
)

func main() {
	// Secrets may live in a local .env during development.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(os.Getenv("SHAGGYDOG_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "shaggydogd.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		logger.Error("acquire daemon lock", logging.Error(err))
		os.Exit(1)
	}
	if !locked {
		logger.Error("another shaggydogd instance is already running", logging.String("lock", lockPath))
		os.Exit(1)
	}
	defer func() { _ = lock.Unlock() }()

	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		logger.Error("open store", logging.Error(err))
		os.Exit(1)
	}
	defer st.Close()

	client := openai.NewClient(openai.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		VisionModel:    cfg.OpenAI.VisionModel,
		ImageModel:     cfg.OpenAI.ImageModel,
		TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
	})
	pipeline := transform.NewPipeline(client, transform.Settings{
		ImageSize:    cfg.OpenAI.ImageSize,
		ImageQuality: cfg.OpenAI.ImageQuality,
	}, logging.NewComponentLogger(logger, "pipeline"))

	tracker := progress.NewTracker(progress.NewMemoryStore())
	uploads := staging.NewStore(time.Duration(cfg.Uploads.StagingTTLSeconds) * time.Second)
	uploads.StartJanitor(ctx, time.Minute, logging.NewComponentLogger(logger, "staging"))

	jobs := runner.New(pipeline, st, uploads, tracker, logging.NewComponentLogger(logger, "runner"))

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	srv, err := server.New(server.Options{
		Config:  cfg,
		Store:   st,
		Tokens:  tokens,
		Uploads: uploads,
		Runner:  jobs,
		Tracker: tracker,
		Logger:  logging.NewComponentLogger(logger, "api-server"),
	})
	if err != nil {
		logger.Error("create api server", logging.Error(err))
		os.Exit(1)
	}
	if err := srv.Start(ctx); err != nil {
		logger.Error("start api server", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shaggydogd shutting down")

	srv.Stop()
	if err := jobs.Stop(30 * time.Second); err != nil {
		logger.Warn("jobs did not finish before shutdown", logging.Error(err))
	}
}
