package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/talent-screener/internal/logger"
	"alfredoptarigan/talent-screener/internal/models"
)

const (
	requirementDocType   = "job_requirement"
	requirementChunkSize = 1000
	requirementOverlap   = 200
	requirementTopK      = 4
)

// RequirementRetriever indexes the job description and returns the passages most
// relevant to a given CV.
type RequirementRetriever interface {
	IndexJobDescription(ctx context.Context, jd *models.Document) (int, error)
	Retrieve(ctx context.Context, cv *models.Document) (string, error)
}

type embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type requirementRetriever struct {
	embedder      embedder
	store         VectorStore
	chunker       *TextChunker
	promptBuilder *PromptBuilder
	log           *zap.Logger
}

func NewRequirementRetriever(embedder embedder, store VectorStore, log *zap.Logger) RequirementRetriever {
	return &requirementRetriever{
		embedder:      embedder,
		store:         store,
		chunker:       NewTextChunker(requirementChunkSize, requirementOverlap),
		promptBuilder: NewPromptBuilder(),
		log:           logger.OrNop(log),
	}
}

// IndexJobDescription implements RequirementRetriever. Previously indexed passages
// are replaced. Passages that fail to embed are skipped.
func (r *requirementRetriever) IndexJobDescription(ctx context.Context, jd *models.Document) (int, error) {
	if !jd.HasText() {
		return 0, nil
	}

	chunks := r.chunker.Split(jd.Text)
	docs := make([]VectorDocument, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := r.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			r.log.Warn("failed to embed job description passage", zap.Int("chunk", i+1), zap.Error(err))
			continue
		}
		docs = append(docs, VectorDocument{Source: jd.Name, Index: i, Text: chunk, Vector: vector})
	}

	if len(chunks) > 0 && len(docs) == 0 {
		return 0, fmt.Errorf("failed to embed any of %d job description passages", len(chunks))
	}

	if err := r.store.Replace(ctx, requirementDocType, docs); err != nil {
		return 0, err
	}

	r.log.Info("job description indexed", zap.String("document", jd.Name), zap.Int("chunks", len(chunks)), zap.Int("stored", len(docs)))
	return len(docs), nil
}

// Retrieve implements RequirementRetriever.
func (r *requirementRetriever) Retrieve(ctx context.Context, cv *models.Document) (string, error) {
	vector, err := r.embedder.GenerateEmbedding(ctx, r.promptBuilder.BuildRetrievalQuery(cv))
	if err != nil {
		return "", fmt.Errorf("failed to generate query embedding: %w", err)
	}

	results, err := r.store.Search(ctx, vector, requirementDocType, requirementTopK)
	if err != nil {
		return "", err
	}

	return FormatRequirementsContext(results), nil
}
