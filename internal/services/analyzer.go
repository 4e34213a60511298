package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/talent-screener/internal/logger"
	"alfredoptarigan/talent-screener/internal/models"
)

const interviewQuestionCount = 5

// fallbackQuestions fill the list when the model returns fewer than interviewQuestionCount.
var fallbackQuestions = []string{
	"Walk us through the project on your CV you are most proud of and your specific contribution.",
	"Describe a technical decision you made that turned out to be wrong. What did you change?",
	"Which skill required for this role would you need to ramp up on, and how would you approach it?",
	"Tell us about a time you had to explain a complex problem to a non-technical stakeholder.",
	"What kind of team and working environment helps you do your best work?",
}

type EmailKind string

const (
	EmailInvite EmailKind = "invite"
	EmailReject EmailKind = "reject"
)

func ParseEmailKind(s string) (EmailKind, error) {
	switch EmailKind(strings.ToLower(strings.TrimSpace(s))) {
	case EmailInvite:
		return EmailInvite, nil
	case EmailReject:
		return EmailReject, nil
	default:
		return "", fmt.Errorf("unknown email type %q", s)
	}
}

// Analyzer is the AI collaborator: candidate extraction and rating, interview
// questions and outreach emails.
type Analyzer interface {
	PrepareJobDescription(ctx context.Context, jd *models.Document) error
	Analyze(ctx context.Context, jd, cv *models.Document) (*models.CandidateAnalysis, error)
	InterviewQuestions(ctx context.Context, c *models.CandidateAnalysis) ([]string, error)
	DraftEmail(ctx context.Context, c *models.CandidateAnalysis, kind EmailKind) (string, error)
}

type AnalyzerOptions struct {
	Temperature float32
	Timeout     time.Duration
}

type analyzerService struct {
	geminiService GeminiService
	extractor     TextExtractor
	retriever     RequirementRetriever
	promptBuilder *PromptBuilder
	opts          AnalyzerOptions
	log           *zap.Logger
}

// NewAnalyzer builds the analyzer. retriever may be nil when no vector store is configured.
func NewAnalyzer(
	geminiService GeminiService,
	extractor TextExtractor,
	retriever RequirementRetriever,
	opts AnalyzerOptions,
	log *zap.Logger,
) Analyzer {
	return &analyzerService{
		geminiService: geminiService,
		extractor:     extractor,
		retriever:     retriever,
		promptBuilder: NewPromptBuilder(),
		opts:          opts,
		log:           logger.OrNop(log),
	}
}

// candidateResponse is the JSON document returned by the model.
type candidateResponse struct {
	CandidateName     string         `json:"candidate_name"`
	Email             string         `json:"email"`
	MatchedSkills     []string       `json:"matched_skills"`
	MissingSkills     []string       `json:"missing_skills"`
	Qualifications    []string       `json:"qualifications"`
	Achievements      []string       `json:"achievements"`
	Summary           string         `json:"summary"`
	ExperienceSummary string         `json:"experience_summary"`
	Strengths         []string       `json:"strengths"`
	Weaknesses        []string       `json:"weaknesses"`
	Ratings           models.Ratings `json:"ratings"`
	Reasoning         string         `json:"reasoning"`
}

// PrepareJobDescription implements Analyzer.
func (a *analyzerService) PrepareJobDescription(ctx context.Context, jd *models.Document) error {
	if err := a.extractor.Prepare(jd); err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	if a.retriever == nil {
		return nil
	}

	if _, err := a.retriever.IndexJobDescription(ctx, jd); err != nil {
		a.log.Warn("failed to index job description, continuing without retrieval", zap.Error(err))
	}

	return nil
}

// Analyze implements Analyzer. A CV that cannot be read or a failed model call is
// returned as an error. A response that cannot be parsed degrades to a placeholder
// record with all ratings at 0.
func (a *analyzerService) Analyze(ctx context.Context, jd, cv *models.Document) (*models.CandidateAnalysis, error) {
	if jd == nil {
		return nil, errors.New("job description is required")
	}

	if err := a.extractor.Prepare(cv); err != nil {
		return nil, err
	}

	requirements := ""
	if a.retriever != nil {
		ctxText, err := a.retriever.Retrieve(ctx, cv)
		if err != nil {
			a.log.Warn("failed to retrieve job requirements", zap.String("file", cv.Name), zap.Error(err))
		} else {
			requirements = ctxText
		}
	}

	prompt := a.promptBuilder.BuildCandidateAnalysisPrompt(jd, cv, requirements)
	a.log.Debug("candidate analysis request",
		zap.String("file", cv.Name),
		zap.Int("prompt_length", len(prompt)),
		zap.Bool("cv_inline", !cv.HasText()),
	)

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	response, err := a.geminiService.GenerateStructured(callCtx, StructuredRequest{
		Prompt:      prompt,
		Attachments: []*models.Document{jd, cv},
		Schema:      candidateResponseSchema(),
		Temperature: a.opts.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate candidate analysis: %w", err)
	}

	candidate, err := parseCandidateResponse(response)
	if err != nil {
		a.log.Warn("unusable candidate analysis response, using placeholder",
			zap.String("file", cv.Name),
			zap.Error(err),
			zap.String("response_preview", logger.Truncate(response, logPreviewLength)),
		)
		return placeholderCandidate(cv, err), nil
	}

	candidate.FileName = cv.Name
	if candidate.Name == "" {
		candidate.Name = nameFromFile(cv.Name)
	}
	candidate.AnalyzedAt = time.Now().UTC()

	return candidate, nil
}

// InterviewQuestions implements Analyzer.
func (a *analyzerService) InterviewQuestions(ctx context.Context, c *models.CandidateAnalysis) ([]string, error) {
	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	response, err := a.geminiService.GenerateStructured(callCtx, StructuredRequest{
		Prompt:      a.promptBuilder.BuildInterviewQuestionsPrompt(c),
		Schema:      stringArraySchema(),
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate interview questions: %w", err)
	}

	jsonStr := extractJSON(response)
	if err := validateJSON(interviewQuestionsSchema, jsonStr); err != nil {
		return nil, err
	}

	var raw []string
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse interview questions: %w", err)
	}

	questions := compactStrings(raw)
	if len(questions) == 0 {
		return nil, errors.New("no interview questions generated")
	}
	return padQuestions(questions), nil
}

// DraftEmail implements Analyzer.
func (a *analyzerService) DraftEmail(ctx context.Context, c *models.CandidateAnalysis, kind EmailKind) (string, error) {
	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	body, err := a.geminiService.GenerateText(callCtx, a.promptBuilder.BuildEmailPrompt(c, kind), 0.7)
	if err != nil {
		return "", fmt.Errorf("failed to draft %s email: %w", kind, err)
	}

	return strings.TrimSpace(stripCodeFence(body)), nil
}

// padQuestions returns exactly interviewQuestionCount questions.
func padQuestions(questions []string) []string {
	if len(questions) >= interviewQuestionCount {
		return questions[:interviewQuestionCount]
	}
	for _, q := range fallbackQuestions {
		if len(questions) == interviewQuestionCount {
			break
		}
		questions = append(questions, q)
	}
	return questions
}

func (a *analyzerService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.opts.Timeout)
}

func parseCandidateResponse(response string) (*models.CandidateAnalysis, error) {
	if strings.TrimSpace(response) == "" {
		return nil, errors.New("empty response")
	}

	jsonStr := extractJSON(response)
	if err := validateJSON(candidateAnalysisSchema, jsonStr); err != nil {
		return nil, err
	}

	var parsed candidateResponse
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return &models.CandidateAnalysis{
		Name:              strings.TrimSpace(parsed.CandidateName),
		Email:             strings.TrimSpace(parsed.Email),
		MatchedSkills:     compactStrings(parsed.MatchedSkills),
		MissingSkills:     compactStrings(parsed.MissingSkills),
		Qualifications:    compactStrings(parsed.Qualifications),
		Achievements:      compactStrings(parsed.Achievements),
		Summary:           strings.TrimSpace(parsed.Summary),
		ExperienceSummary: strings.TrimSpace(parsed.ExperienceSummary),
		Strengths:         compactStrings(parsed.Strengths),
		Weaknesses:        compactStrings(parsed.Weaknesses),
		Ratings:           parsed.Ratings.Clamp(),
		Reasoning:         strings.TrimSpace(parsed.Reasoning),
	}, nil
}

func placeholderCandidate(cv *models.Document, cause error) *models.CandidateAnalysis {
	return &models.CandidateAnalysis{
		FileName:       cv.Name,
		Name:           nameFromFile(cv.Name),
		MatchedSkills:  []string{},
		MissingSkills:  []string{},
		Qualifications: []string{},
		Achievements:   []string{},
		Strengths:      []string{},
		Weaknesses:     []string{"CV could not be analyzed automatically"},
		Summary:        "Automatic analysis failed for this CV.",
		Reasoning: fmt.Sprintf(
			"The AI response could not be parsed (%v). All ratings were set to 0; please review this CV manually.",
			cause,
		),
		AnalyzedAt: time.Now().UTC(),
	}
}

func nameFromFile(fileName string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Unknown candidate"
	}
	return base
}

func compactStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// extractJSON pulls the JSON object or array out of a response that may be wrapped in markdown.
func extractJSON(text string) string {
	text = stripCodeFence(text)

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	useObj := startObj != -1 && endObj > startObj
	useArr := startArr != -1 && endArr > startArr

	switch {
	case useObj && (!useArr || startObj < startArr):
		return text[startObj : endObj+1]
	case useArr:
		return text[startArr : endArr+1]
	default:
		return strings.TrimSpace(text)
	}
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	if idx := strings.LastIndex(text, "```"); idx != -1 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
