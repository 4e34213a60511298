package services

import "alfredoptarigan/talent-screener/internal/models"

const (
	highFitThreshold   = 80.0
	mediumFitThreshold = 50.0
)

// ApplyWeights returns c with FinalScore and FitLabel derived from its ratings.
// A zero weight sum leaves the candidate unchanged.
func ApplyWeights(c models.CandidateAnalysis, w models.ScoringWeights) models.CandidateAnalysis {
	total := w.Sum()
	if total == 0 {
		return c
	}

	r := c.Ratings
	weighted := r.SkillsMatch*w.SkillsMatch +
		r.ExperienceRelevance*w.ExperienceRelevance +
		r.Qualifications*w.Qualifications +
		r.Seniority*w.Seniority +
		r.Clarity*w.Clarity

	c.FinalScore = weighted / total
	c.FitLabel = FitLabelFor(c.FinalScore)
	return c
}

func FitLabelFor(score float64) models.FitLabel {
	switch {
	case score >= highFitThreshold:
		return models.FitHigh
	case score >= mediumFitThreshold:
		return models.FitMedium
	default:
		return models.FitLow
	}
}

// Rescore applies w to every candidate. changed reports whether any score or label moved.
func Rescore(candidates []models.CandidateAnalysis, w models.ScoringWeights) ([]models.CandidateAnalysis, bool) {
	rescored := make([]models.CandidateAnalysis, len(candidates))
	changed := false

	for i, c := range candidates {
		rescored[i] = ApplyWeights(c, w)
		if rescored[i].FinalScore != c.FinalScore || rescored[i].FitLabel != c.FitLabel {
			changed = true
		}
	}

	return rescored, changed
}
