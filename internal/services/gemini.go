package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/talent-screener/internal/logger"
	"alfredoptarigan/talent-screener/internal/models"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultEmbedModel = "text-embedding-004"
	maxEmbedChars     = 40000
	maxOutputTokens   = 8192
	logPreviewLength  = 200
)

type GeminiService interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateStructured(ctx context.Context, req StructuredRequest) (string, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// StructuredRequest asks the model for JSON matching Schema. Attachments without
// extracted text are sent as inline parts with their media type.
type StructuredRequest struct {
	Prompt      string
	Attachments []*models.Document
	Schema      *genai.Schema
	Temperature float32
}

type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type geminiService struct {
	models      modelsAPI
	modelName   string
	embedModel  string
	maxAttempts int
	log         *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey, model, embedModel string, maxAttempts int, log *zap.Logger) (GeminiService, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGeminiService(client.Models, model, embedModel, maxAttempts, log), nil
}

func newGeminiService(api modelsAPI, model, embedModel string, maxAttempts int, log *zap.Logger) *geminiService {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if embedModel = strings.TrimSpace(embedModel); embedModel == "" {
		embedModel = defaultEmbedModel
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &geminiService{
		models:      api,
		modelName:   model,
		embedModel:  embedModel,
		maxAttempts: maxAttempts,
		log:         logger.OrNop(log).With(zap.String("ai_provider", "gemini"), zap.String("ai_model", model)),
	}
}

// Model implements GeminiService.
func (g *geminiService) Model() string {
	return g.modelName
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxOutputTokens,
	}

	return g.generate(ctx, genai.Text(prompt), config)
}

// GenerateStructured implements GeminiService.
func (g *geminiService) GenerateStructured(ctx context.Context, req StructuredRequest) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, doc := range req.Attachments {
		if doc == nil || doc.HasText() || len(doc.Data) == 0 {
			continue
		}
		parts = append(parts, genai.NewPartFromBytes(doc.Data, baseMimeType(doc.MimeType)))
	}

	temperature := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  maxOutputTokens,
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	return g.generate(ctx, contents, config)
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = truncateRunes(text, maxEmbedChars)

	result, err := g.models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

func (g *geminiService) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		resp, err := g.models.GenerateContent(ctx, g.modelName, contents, config)
		if err == nil {
			text := responseText(resp)
			if text == "" {
				return "", errors.New("gemini api returned empty response")
			}
			g.log.Debug("gemini response received",
				zap.Int("attempt", attempt),
				zap.Int("response_length", utf8.RuneCountInString(text)),
				zap.String("response_preview", logger.Truncate(text, logPreviewLength)),
			)
			return text, nil
		}

		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("context cancelled: %w", ctxErr)
		}

		if !isRetryable(err) {
			break
		}

		if attempt < g.maxAttempts {
			g.log.Warn("gemini call failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		}
	}

	return "", fmt.Errorf("failed to generate content: %w", lastErr)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
		// only the first usable candidate is read
		if builder.Len() > 0 {
			break
		}
	}

	return strings.TrimSpace(builder.String())
}

func isRetryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code == http.StatusTooManyRequests || apiErrPtr.Code >= http.StatusInternalServerError
	}

	return false
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
