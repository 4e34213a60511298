package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/talent-screener/internal/models"
)

type stubGemini struct {
	structured     string
	text           string
	err            error
	lastStructured StructuredRequest
	lastPrompt     string
	embedding      []float32
}

func (s *stubGemini) GenerateText(_ context.Context, prompt string, _ float32) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func (s *stubGemini) GenerateStructured(_ context.Context, req StructuredRequest) (string, error) {
	s.lastStructured = req
	if s.err != nil {
		return "", s.err
	}
	return s.structured, nil
}

func (s *stubGemini) GenerateEmbedding(context.Context, string) ([]float32, error) {
	return s.embedding, nil
}

func (s *stubGemini) Model() string {
	return "stub-model"
}

type stubRetriever struct {
	indexed  []*models.Document
	context  string
	err      error
	queryFor []*models.Document
}

func (s *stubRetriever) IndexJobDescription(_ context.Context, jd *models.Document) (int, error) {
	s.indexed = append(s.indexed, jd)
	return 1, nil
}

func (s *stubRetriever) Retrieve(_ context.Context, cv *models.Document) (string, error) {
	s.queryFor = append(s.queryFor, cv)
	return s.context, s.err
}

const validCandidateJSON = `{
  "candidate_name": "Jane Doe",
  "email": "jane@example.com",
  "matched_skills": ["Go", " PostgreSQL ", ""],
  "missing_skills": ["Kubernetes"],
  "qualifications": ["BSc Computer Science"],
  "achievements": ["Cut latency by 40%"],
  "summary": "Backend engineer.",
  "experience_summary": "Six years of Go.",
  "strengths": ["Go expertise"],
  "weaknesses": ["No Kubernetes"],
  "ratings": {"skills_match": 85, "experience_relevance": 120, "qualifications": -5, "seniority": 70, "clarity": 90},
  "reasoning": "Strong Go background."
}`

func textDoc(name, text string) *models.Document {
	return &models.Document{Name: name, MimeType: MimeText, Data: []byte(text)}
}

func newTestAnalyzer(gemini GeminiService, retriever RequirementRetriever) Analyzer {
	return NewAnalyzer(gemini, NewTextExtractor(), retriever, AnalyzerOptions{Temperature: 0.2}, nil)
}

func TestAnalyzeParsesResponse(t *testing.T) {
	gemini := &stubGemini{structured: "```json\n" + validCandidateJSON + "\n```"}
	analyzer := newTestAnalyzer(gemini, nil)

	jd := textDoc("jd.txt", "Senior Go engineer")
	cv := textDoc("jane_doe.txt", "Jane Doe, Go, PostgreSQL")

	candidate, err := analyzer.Analyze(context.Background(), jd, cv)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", candidate.Name)
	assert.Equal(t, "jane@example.com", candidate.Email)
	assert.Equal(t, "jane_doe.txt", candidate.FileName)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, candidate.MatchedSkills)
	assert.Equal(t, 85.0, candidate.Ratings.SkillsMatch)
	assert.Equal(t, 100.0, candidate.Ratings.ExperienceRelevance)
	assert.Equal(t, 0.0, candidate.Ratings.Qualifications)
	assert.False(t, candidate.AnalyzedAt.IsZero())

	assert.Contains(t, gemini.lastStructured.Prompt, "Senior Go engineer")
	assert.Contains(t, gemini.lastStructured.Prompt, "Jane Doe, Go, PostgreSQL")
	assert.NotNil(t, gemini.lastStructured.Schema)
	assert.NotContains(t, gemini.lastStructured.Prompt, "KEY REQUIREMENTS")
}

func TestAnalyzeDegradesToPlaceholder(t *testing.T) {
	responses := []string{
		"",
		"I cannot help with that.",
		`{"candidate_name": "Jane"}`,
		`{"candidate_name": "Jane", "ratings": {"skills_match": "high"}}`,
	}

	for _, response := range responses {
		analyzer := newTestAnalyzer(&stubGemini{structured: response}, nil)

		candidate, err := analyzer.Analyze(context.Background(), textDoc("jd.txt", "jd"), textDoc("john-smith.txt", "cv"))
		require.NoError(t, err, "response %q", response)

		assert.Equal(t, "john smith", candidate.Name)
		assert.Equal(t, models.Ratings{}, candidate.Ratings)
		assert.Contains(t, candidate.Reasoning, "could not be parsed")
	}
}

func TestAnalyzeReturnsTransportErrors(t *testing.T) {
	analyzer := newTestAnalyzer(&stubGemini{err: errors.New("503 unavailable")}, nil)

	_, err := analyzer.Analyze(context.Background(), textDoc("jd.txt", "jd"), textDoc("cv.txt", "cv"))
	assert.Error(t, err)
}

func TestAnalyzeReturnsUnreadableDocument(t *testing.T) {
	gemini := &stubGemini{structured: validCandidateJSON}
	analyzer := newTestAnalyzer(gemini, nil)

	cv := &models.Document{Name: "cv.docx", MimeType: MimeDOCX, Data: []byte("broken")}
	_, err := analyzer.Analyze(context.Background(), textDoc("jd.txt", "jd"), cv)
	assert.ErrorIs(t, err, ErrUnreadableDocument)
	assert.Empty(t, gemini.lastStructured.Prompt)
}

func TestAnalyzeSendsScannedPDFInline(t *testing.T) {
	gemini := &stubGemini{structured: validCandidateJSON}
	analyzer := newTestAnalyzer(gemini, nil)

	cv := &models.Document{Name: "scan.pdf", MimeType: MimePDF, Data: []byte("%PDF-1.4 no text layer")}
	_, err := analyzer.Analyze(context.Background(), textDoc("jd.txt", "jd"), cv)
	require.NoError(t, err)

	assert.Contains(t, gemini.lastStructured.Prompt, inlineDocumentNote)
	assert.Len(t, gemini.lastStructured.Attachments, 2)
}

func TestAnalyzeUsesRetrievedRequirements(t *testing.T) {
	gemini := &stubGemini{structured: validCandidateJSON}
	retriever := &stubRetriever{context: "--- Requirement 1 ---\nKubernetes in production"}
	analyzer := newTestAnalyzer(gemini, retriever)

	jd := textDoc("jd.txt", "Senior Go engineer")
	require.NoError(t, analyzer.PrepareJobDescription(context.Background(), jd))
	require.Len(t, retriever.indexed, 1)
	assert.Equal(t, "Senior Go engineer", jd.Text)

	_, err := analyzer.Analyze(context.Background(), jd, textDoc("cv.txt", "cv"))
	require.NoError(t, err)
	assert.Contains(t, gemini.lastStructured.Prompt, "KEY REQUIREMENTS")
	assert.Contains(t, gemini.lastStructured.Prompt, "Kubernetes in production")

	retriever.err = errors.New("qdrant down")
	_, err = analyzer.Analyze(context.Background(), jd, textDoc("cv2.txt", "cv"))
	require.NoError(t, err)
	assert.NotContains(t, gemini.lastStructured.Prompt, "KEY REQUIREMENTS")
}

func TestInterviewQuestions(t *testing.T) {
	gemini := &stubGemini{structured: `["Q1", "Q2", " ", "Q3", "Q4", "Q5", "Q6"]`}
	analyzer := newTestAnalyzer(gemini, nil)

	candidate := &models.CandidateAnalysis{
		Name:          "Jane",
		MissingSkills: []string{"Kubernetes"},
		Weaknesses:    []string{"Short tenures"},
	}

	questions, err := analyzer.InterviewQuestions(context.Background(), candidate)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q2", "Q3", "Q4", "Q5"}, questions)
	assert.Contains(t, gemini.lastStructured.Prompt, "- Kubernetes")
	assert.Contains(t, gemini.lastStructured.Prompt, "- Short tenures")
}

func TestInterviewQuestionsPadsShortList(t *testing.T) {
	analyzer := newTestAnalyzer(&stubGemini{structured: `["Why Kubernetes?", "Why Go?"]`}, nil)

	questions, err := analyzer.InterviewQuestions(context.Background(), &models.CandidateAnalysis{Name: "Jane"})
	require.NoError(t, err)
	require.Len(t, questions, 5)
	assert.Equal(t, []string{"Why Kubernetes?", "Why Go?"}, questions[:2])
	assert.Equal(t, fallbackQuestions[:3], questions[2:])
}

func TestInterviewQuestionsRejectsGarbage(t *testing.T) {
	analyzer := newTestAnalyzer(&stubGemini{structured: `{"questions": 3}`}, nil)

	_, err := analyzer.InterviewQuestions(context.Background(), &models.CandidateAnalysis{Name: "Jane"})
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestDraftEmail(t *testing.T) {
	gemini := &stubGemini{text: "```\nDear Jane,\nWe would love to meet you.\n```"}
	analyzer := newTestAnalyzer(gemini, nil)

	candidate := &models.CandidateAnalysis{Name: "Jane", Strengths: []string{"Go expertise"}, FitLabel: models.FitHigh}

	body, err := analyzer.DraftEmail(context.Background(), candidate, EmailInvite)
	require.NoError(t, err)
	assert.Equal(t, "Dear Jane,\nWe would love to meet you.", body)
	assert.Contains(t, gemini.lastPrompt, "invite the candidate")
	assert.Contains(t, gemini.lastPrompt, "FIT LEVEL: High")

	_, err = analyzer.DraftEmail(context.Background(), candidate, EmailReject)
	require.NoError(t, err)
	assert.True(t, strings.Contains(gemini.lastPrompt, "not selected"))
}

func TestParseEmailKind(t *testing.T) {
	kind, err := ParseEmailKind(" Invite ")
	require.NoError(t, err)
	assert.Equal(t, EmailInvite, kind)

	_, err = ParseEmailKind("promote")
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":[1]}`, extractJSON("Here you go: {\"a\":[1]} thanks"))
	assert.Equal(t, `["x"]`, extractJSON("```json\n[\"x\"]\n```"))
	assert.Equal(t, "plain", extractJSON("plain"))
}
