// Package bootstrap wires configuration into the services shared by the API server and the CLI.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/talent-screener/internal/config"
	"alfredoptarigan/talent-screener/internal/repositories"
	"alfredoptarigan/talent-screener/internal/services"
)

// AI bundles the services that talk to Gemini and, when configured, Qdrant.
type AI struct {
	Gemini    services.GeminiService
	Retriever services.RequirementRetriever
	Analyzer  services.Analyzer
}

// NewBlobStore selects the persistence backend named by STORAGE_BACKEND.
func NewBlobStore(cfg *config.Config, log *zap.Logger) (repositories.BlobStore, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendPostgres:
		db, err := config.InitDatabase(cfg, log)
		if err != nil {
			return nil, err
		}
		return repositories.NewGormBlobStore(db), nil
	case config.StorageBackendFile, "":
		store, err := repositories.NewFileBlobStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		log.Info("file storage ready", zap.String("dir", cfg.Storage.DataDir))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// OpenSession loads the persisted session state.
func OpenSession(cfg *config.Config, log *zap.Logger) (*services.Session, error) {
	blobs, err := NewBlobStore(cfg, log)
	if err != nil {
		return nil, err
	}
	return services.NewSession(repositories.NewSessionRepository(blobs), log)
}

// NewGemini creates the Gemini client from configuration.
func NewGemini(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.GeminiService, error) {
	gemini, err := services.NewGeminiService(
		ctx,
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.EmbedModel,
		cfg.Analysis.RetryMaxAttempts,
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini AI: %w", err)
	}
	return gemini, nil
}

// NewRetriever connects to Qdrant and prepares the collection. It returns nil
// when no Qdrant URL is configured.
func NewRetriever(ctx context.Context, cfg *config.Config, gemini services.GeminiService, log *zap.Logger) (services.RequirementRetriever, error) {
	if !cfg.Qdrant.Enabled() {
		log.Info("qdrant not configured, requirement retrieval disabled")
		return nil, nil
	}

	store, err := services.NewQdrantStore(services.QdrantOptions{
		URL:        cfg.Qdrant.URL,
		APIKey:     cfg.Qdrant.APIKey,
		Collection: cfg.Qdrant.Collection,
		VectorSize: cfg.Qdrant.VectorSize,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Qdrant: %w", err)
	}
	if err := store.EnsureCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize Qdrant collection: %w", err)
	}

	log.Info("qdrant initialized", zap.String("collection", cfg.Qdrant.Collection))
	return services.NewRequirementRetriever(gemini, store, log), nil
}

// NewAI builds the Gemini client, the optional retriever and the analyzer.
func NewAI(ctx context.Context, cfg *config.Config, log *zap.Logger) (*AI, error) {
	gemini, err := NewGemini(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	retriever, err := NewRetriever(ctx, cfg, gemini, log)
	if err != nil {
		return nil, err
	}

	analyzer := services.NewAnalyzer(
		gemini,
		services.NewTextExtractor(),
		retriever,
		services.AnalyzerOptions{
			Temperature: cfg.Analysis.Temperature,
			Timeout:     cfg.Analysis.Timeout,
		},
		log,
	)

	return &AI{Gemini: gemini, Retriever: retriever, Analyzer: analyzer}, nil
}
