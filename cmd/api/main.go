package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"alfredoptarigan/talent-screener/internal/bootstrap"
	"alfredoptarigan/talent-screener/internal/config"
	"alfredoptarigan/talent-screener/internal/handlers"
	"alfredoptarigan/talent-screener/internal/logger"
	"alfredoptarigan/talent-screener/internal/services"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("config loaded", zap.String("env", cfg.Server.Env), zap.String("storage", cfg.Storage.Backend))
	if !cfg.EnvFileLoaded {
		log.Info("no .env file found, using environment and default values")
	}

	ctx := context.Background()

	session, err := bootstrap.OpenSession(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	ai, err := bootstrap.NewAI(ctx, cfg, log)
	if err != nil {
		return err
	}
	log.Info("analyzer initialized", zap.String("model", ai.Gemini.Model()), zap.Bool("retrieval", ai.Retriever != nil))

	tracker := services.NewBatchTracker(session, ai.Analyzer, log)

	app := handlers.NewApp(handlers.Dependencies{
		Session:  session,
		Uploads:  services.NewUploadService(cfg.Storage.MaxFileSize),
		Analyzer: ai.Analyzer,
		Tracker:  tracker,
		Log:      log,
	}, bodyLimit(cfg.Storage.MaxFileSize))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		tracker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))

	return app.Listen(addr)
}

// bodyLimit leaves room for a multi-file batch upload in one request.
func bodyLimit(maxFileSize int64) int {
	const maxBatchFiles = 20
	if maxFileSize <= 0 {
		return 0
	}
	return int(maxFileSize) * maxBatchFiles
}
