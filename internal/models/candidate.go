package models

import "time"

type FitLabel string

const (
	FitHigh   FitLabel = "High"
	FitMedium FitLabel = "Medium"
	FitLow    FitLabel = "Low"
)

// Ratings are the five 0-100 sub-scores returned by the model.
type Ratings struct {
	SkillsMatch         float64 `json:"skills_match"`
	ExperienceRelevance float64 `json:"experience_relevance"`
	Qualifications      float64 `json:"qualifications"`
	Seniority           float64 `json:"seniority"`
	Clarity             float64 `json:"clarity"`
}

// Clamp bounds every rating to [0,100].
func (r Ratings) Clamp() Ratings {
	return Ratings{
		SkillsMatch:         clampRating(r.SkillsMatch),
		ExperienceRelevance: clampRating(r.ExperienceRelevance),
		Qualifications:      clampRating(r.Qualifications),
		Seniority:           clampRating(r.Seniority),
		Clarity:             clampRating(r.Clarity),
	}
}

func clampRating(v float64) float64 {
	switch {
	case v < 0 || v != v:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// CandidateAnalysis is the scored result of one (job description, CV) pair.
// ID equals the ID of the ProcessingFile it was produced from.
type CandidateAnalysis struct {
	ID                 string    `json:"id"`
	FileName           string    `json:"file_name"`
	Name               string    `json:"name"`
	Email              string    `json:"email,omitempty"`
	MatchedSkills      []string  `json:"matched_skills"`
	MissingSkills      []string  `json:"missing_skills"`
	Qualifications     []string  `json:"qualifications"`
	Achievements       []string  `json:"achievements"`
	Summary            string    `json:"summary"`
	ExperienceSummary  string    `json:"experience_summary"`
	Strengths          []string  `json:"strengths"`
	Weaknesses         []string  `json:"weaknesses"`
	Ratings            Ratings   `json:"ratings"`
	Reasoning          string    `json:"reasoning"`
	FinalScore         float64   `json:"final_score"`
	FitLabel           FitLabel  `json:"fit_label"`
	InterviewQuestions []string  `json:"interview_questions,omitempty"`
	AnalyzedAt         time.Time `json:"analyzed_at"`
}
