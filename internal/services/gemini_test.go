package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"alfredoptarigan/talent-screener/internal/models"
)

type fakeModelsCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeModelsResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type fakeModels struct {
	mu        sync.Mutex
	calls     []fakeModelsCall
	responses []fakeModelsResponse
	embedding []float32
	embedErr  error
	embedded  string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fakeModelsCall{model: model, contents: contents, config: config})
	if len(f.responses) == 0 {
		return nil, errors.New("unexpected call")
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	return next.resp, next.err
}

func (f *fakeModels) EmbedContent(_ context.Context, _ string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.embedded = contents[0].Parts[0].Text
	}
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{Values: f.embedding}}}, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGeminiGenerateTextReturnsFirstCandidate(t *testing.T) {
	api := &fakeModels{responses: []fakeModelsResponse{{resp: textResponse("  hello  ")}}}
	g := newGeminiService(api, "", "", 1, nil)

	out, err := g.GenerateText(context.Background(), "prompt", 0.4)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	require.Len(t, api.calls, 1)
	assert.Equal(t, defaultModel, api.calls[0].model)
	assert.InDelta(t, 0.4, *api.calls[0].config.Temperature, 0.0001)
}

func TestGeminiDoesNotRetryByDefault(t *testing.T) {
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	api := &fakeModels{responses: []fakeModelsResponse{{err: tempErr}, {resp: textResponse("ok")}}}
	g := newGeminiService(api, "m", "", 0, nil)

	_, err := g.GenerateText(context.Background(), "prompt", 0)
	require.Error(t, err)
	assert.Len(t, api.calls, 1)
}

func TestGeminiRetriesTemporaryErrors(t *testing.T) {
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	api := &fakeModels{responses: []fakeModelsResponse{{err: tempErr}, {resp: textResponse("retry ok")}}}
	g := newGeminiService(api, "m", "", 2, nil)

	out, err := g.GenerateText(context.Background(), "prompt", 0)
	require.NoError(t, err)
	assert.Equal(t, "retry ok", out)
	assert.Len(t, api.calls, 2)
}

func TestGeminiStopsOnClientErrors(t *testing.T) {
	badRequest := genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}
	api := &fakeModels{responses: []fakeModelsResponse{{err: badRequest}, {resp: textResponse("never")}}}
	g := newGeminiService(api, "m", "", 3, nil)

	_, err := g.GenerateText(context.Background(), "prompt", 0)
	require.Error(t, err)
	assert.Len(t, api.calls, 1)
}

func TestGeminiDoesNotRetryUnclassifiedErrors(t *testing.T) {
	api := &fakeModels{responses: []fakeModelsResponse{{err: errors.New("connection reset")}, {resp: textResponse("never")}}}
	g := newGeminiService(api, "m", "", 3, nil)

	_, err := g.GenerateText(context.Background(), "prompt", 0)
	require.Error(t, err)
	assert.Len(t, api.calls, 1)
}

func TestGeminiEmptyResponse(t *testing.T) {
	api := &fakeModels{responses: []fakeModelsResponse{{resp: &genai.GenerateContentResponse{}}}}
	g := newGeminiService(api, "m", "", 1, nil)

	_, err := g.GenerateText(context.Background(), "prompt", 0)
	assert.Error(t, err)
}

func TestGeminiGenerateStructuredAttachesInlineDocuments(t *testing.T) {
	api := &fakeModels{responses: []fakeModelsResponse{{resp: textResponse(`{"ok":true}`)}}}
	g := newGeminiService(api, "m", "", 1, nil)

	schema := &genai.Schema{Type: genai.TypeObject}
	out, err := g.GenerateStructured(context.Background(), StructuredRequest{
		Prompt: "analyze",
		Attachments: []*models.Document{
			{Name: "jd.txt", MimeType: MimeText, Data: []byte("jd"), Text: "jd"},
			{Name: "scan.pdf", MimeType: MimePDF, Data: []byte("%PDF")},
			nil,
		},
		Schema: schema,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)

	require.Len(t, api.calls, 1)
	call := api.calls[0]
	assert.Equal(t, "application/json", call.config.ResponseMIMEType)
	assert.Same(t, schema, call.config.ResponseSchema)
	require.Len(t, call.contents, 1)
	parts := call.contents[0].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, "analyze", parts[0].Text)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, MimePDF, parts[1].InlineData.MIMEType)
}

func TestGeminiGenerateEmbedding(t *testing.T) {
	api := &fakeModels{embedding: []float32{0.1, 0.2}}
	g := newGeminiService(api, "m", "", 1, nil)

	values, err := g.GenerateEmbedding(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, values)

	api.embedErr = errors.New("boom")
	_, err = g.GenerateEmbedding(context.Background(), "text")
	assert.Error(t, err)
}

func TestGeminiGenerateEmbeddingTruncatesByRune(t *testing.T) {
	api := &fakeModels{embedding: []float32{0.1}}
	g := newGeminiService(api, "m", "", 1, nil)

	text := "a" + strings.Repeat("é", maxEmbedChars)
	_, err := g.GenerateEmbedding(context.Background(), text)
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(api.embedded))
	assert.Equal(t, maxEmbedChars, utf8.RuneCountInString(api.embedded))
	assert.Equal(t, "a"+strings.Repeat("é", maxEmbedChars-1), api.embedded)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncateRunes("héllo", 10))
	assert.Equal(t, "hé", truncateRunes("héllo", 2))
	assert.Equal(t, "日本", truncateRunes("日本語", 2))
	assert.Equal(t, "", truncateRunes("日本語", 0))
}
