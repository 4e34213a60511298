package models

import (
	"fmt"
	"math"
)

// MaxWeight bounds a single weight so that weighted sums stay finite.
const MaxWeight = 1e6

// ScoringWeights holds the relative importance of each rating axis.
// The weights do not have to sum to 100.
type ScoringWeights struct {
	SkillsMatch         float64 `json:"skills_match" validate:"gte=0,lte=1000000"`
	ExperienceRelevance float64 `json:"experience_relevance" validate:"gte=0,lte=1000000"`
	Qualifications      float64 `json:"qualifications" validate:"gte=0,lte=1000000"`
	Seniority           float64 `json:"seniority" validate:"gte=0,lte=1000000"`
	Clarity             float64 `json:"clarity" validate:"gte=0,lte=1000000"`
}

func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		SkillsMatch:         40,
		ExperienceRelevance: 25,
		Qualifications:      15,
		Seniority:           10,
		Clarity:             10,
	}
}

// Sum returns the total of all weights.
func (w ScoringWeights) Sum() float64 {
	return w.SkillsMatch + w.ExperienceRelevance + w.Qualifications + w.Seniority + w.Clarity
}

// SumWarning returns a human readable warning when the weights do not add up to 100.
func (w ScoringWeights) SumWarning() string {
	sum := w.Sum()
	if sum == 100 {
		return ""
	}
	return fmt.Sprintf("weights sum to %.1f instead of 100; scores are still normalized", sum)
}

// Validate rejects negative, non-finite or oversized weights.
func (w ScoringWeights) Validate() error {
	for _, v := range w.asList() {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			return fmt.Errorf("weight must be a finite number: %v", v)
		case v < 0:
			return fmt.Errorf("negative weight: %v", v)
		case v > MaxWeight:
			return fmt.Errorf("weight %v exceeds maximum of %v", v, MaxWeight)
		}
	}

	if sum := w.Sum(); math.IsNaN(sum) || math.IsInf(sum, 0) {
		return fmt.Errorf("weights sum is not finite: %v", sum)
	}
	return nil
}

func (w ScoringWeights) asList() []float64 {
	return []float64{w.SkillsMatch, w.ExperienceRelevance, w.Qualifications, w.Seniority, w.Clarity}
}
