package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/talent-screener/internal/models"
)

const inlineDocumentNote = "(attached below as a file)"

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildCandidateAnalysisPrompt creates the extraction and rating prompt for one CV.
// Documents without extracted text are referenced as attachments.
func (pb *PromptBuilder) BuildCandidateAnalysisPrompt(jd, cv *models.Document, requirements string) string {
	var b strings.Builder

	b.WriteString("You are an expert technical recruiter screening a candidate's CV against a job description.\n\n")
	fmt.Fprintf(&b, "JOB DESCRIPTION (%s):\n%s\n\n", jd.Name, documentBody(jd))

	if strings.TrimSpace(requirements) != "" {
		fmt.Fprintf(&b, "KEY REQUIREMENTS (retrieved from the job description):\n%s\n\n", requirements)
	}

	fmt.Fprintf(&b, "CANDIDATE CV (%s):\n%s\n\n", cv.Name, documentBody(cv))

	b.WriteString(`Extract the candidate's details and rate the candidate on each axis from 0 to 100:
1. skills_match - overlap between the candidate's skills and the required skills
2. experience_relevance - how relevant past roles and projects are to this position
3. qualifications - education, certifications and formal requirements
4. seniority - whether the candidate's level matches the expected seniority
5. clarity - how clear, structured and verifiable the CV is

Return JSON with these fields:
{
  "candidate_name": "<full name, or empty if not found>",
  "email": "<email, or empty>",
  "matched_skills": ["<required skills the candidate has>"],
  "missing_skills": ["<required skills the candidate lacks>"],
  "qualifications": ["<degrees and certifications>"],
  "achievements": ["<notable measurable achievements>"],
  "summary": "<2-3 sentence candidate summary>",
  "experience_summary": "<1-2 sentence summary of relevant experience>",
  "strengths": ["<strength>"],
  "weaknesses": ["<gap or concern>"],
  "ratings": {
    "skills_match": <0-100>,
    "experience_relevance": <0-100>,
    "qualifications": <0-100>,
    "seniority": <0-100>,
    "clarity": <0-100>
  },
  "reasoning": "<3-5 sentences justifying the ratings with evidence from the CV>"
}

Be objective. Do not invent information that is not in the CV.`)

	return b.String()
}

// BuildInterviewQuestionsPrompt creates a prompt for five questions probing the candidate's gaps.
func (pb *PromptBuilder) BuildInterviewQuestionsPrompt(c *models.CandidateAnalysis) string {
	return fmt.Sprintf(`You are preparing a technical interview with %s.

CANDIDATE SUMMARY:
%s

MISSING SKILLS:
%s

WEAKNESSES:
%s

Write exactly %d interview questions that probe these gaps. Each question should let the candidate
demonstrate whether the gap is real. Return ONLY a JSON array of %d strings.`,
		displayName(c), orNone(c.Summary), bulletList(c.MissingSkills), bulletList(c.Weaknesses),
		interviewQuestionCount, interviewQuestionCount)
}

// BuildEmailPrompt creates a prompt for an invitation or rejection email body.
func (pb *PromptBuilder) BuildEmailPrompt(c *models.CandidateAnalysis, kind EmailKind) string {
	var goal string
	switch kind {
	case EmailInvite:
		goal = "invite the candidate to an interview and mention what stood out in their profile"
	default:
		goal = "politely inform the candidate that they were not selected, thank them, and keep the door open"
	}

	return fmt.Sprintf(`You are a recruiter writing to a candidate named %s.

STRENGTHS:
%s

FIT LEVEL: %s

Write a short, warm and professional email to %s. Return ONLY the plain-text email body,
without a subject line and without placeholders in square brackets.`,
		displayName(c), bulletList(c.Strengths), c.FitLabel, goal)
}

// BuildRetrievalQuery creates the query used to find relevant job requirements for a CV.
func (pb *PromptBuilder) BuildRetrievalQuery(cv *models.Document) string {
	if cv != nil && cv.HasText() {
		return "Job requirements relevant to this candidate: " + cv.Text
	}
	return "Required skills, experience and qualifications for the position"
}

// FormatRequirementsContext renders retrieved job description passages for the prompt.
func FormatRequirementsContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Requirement %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}

func documentBody(doc *models.Document) string {
	if doc.HasText() {
		return doc.Text
	}
	return inlineDocumentNote
}

func displayName(c *models.CandidateAnalysis) string {
	if strings.TrimSpace(c.Name) != "" {
		return c.Name
	}
	return "the candidate"
}

func bulletList(items []string) string {
	var lines []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			lines = append(lines, "- "+item)
		}
	}
	if len(lines) == 0 {
		return "- none listed"
	}
	return strings.Join(lines, "\n")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}
