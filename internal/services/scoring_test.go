package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alfredoptarigan/talent-screener/internal/models"
)

func candidateWithRatings(r models.Ratings) models.CandidateAnalysis {
	return models.CandidateAnalysis{ID: "c", Name: "Candidate", Ratings: r}
}

func uniformRatings(v float64) models.Ratings {
	return models.Ratings{SkillsMatch: v, ExperienceRelevance: v, Qualifications: v, Seniority: v, Clarity: v}
}

func TestApplyWeightsWeightedAverage(t *testing.T) {
	c := candidateWithRatings(models.Ratings{
		SkillsMatch:         90,
		ExperienceRelevance: 70,
		Qualifications:      50,
		Seniority:           30,
		Clarity:             10,
	})

	scored := ApplyWeights(c, models.DefaultWeights())

	// (90*40 + 70*25 + 50*15 + 30*10 + 10*10) / 100
	assert.InDelta(t, 65.0, scored.FinalScore, 0.0001)
	assert.Equal(t, models.FitMedium, scored.FitLabel)
}

func TestApplyWeightsArbitraryScale(t *testing.T) {
	c := candidateWithRatings(models.Ratings{SkillsMatch: 80, ExperienceRelevance: 40})

	scored := ApplyWeights(c, models.ScoringWeights{SkillsMatch: 1, ExperienceRelevance: 1})
	assert.InDelta(t, 60.0, scored.FinalScore, 0.0001)
}

func TestApplyWeightsSkillsOnlyEqualsSkillsRating(t *testing.T) {
	c := candidateWithRatings(models.Ratings{SkillsMatch: 73, ExperienceRelevance: 12, Qualifications: 99, Seniority: 5, Clarity: 61})

	scored := ApplyWeights(c, models.ScoringWeights{SkillsMatch: 100})
	assert.Equal(t, 73.0, scored.FinalScore)
}

func TestApplyWeightsZeroSumIsNoop(t *testing.T) {
	c := candidateWithRatings(uniformRatings(90))
	c.FinalScore = 42
	c.FitLabel = models.FitLow

	scored := ApplyWeights(c, models.ScoringWeights{})
	assert.Equal(t, c, scored)
}

func TestApplyWeightsIdempotent(t *testing.T) {
	w := models.ScoringWeights{SkillsMatch: 3, ExperienceRelevance: 7, Qualifications: 1, Seniority: 0, Clarity: 2}
	c := candidateWithRatings(models.Ratings{SkillsMatch: 64, ExperienceRelevance: 81, Qualifications: 12, Seniority: 99, Clarity: 45})

	once := ApplyWeights(c, w)
	twice := ApplyWeights(once, w)
	assert.Equal(t, once, twice)
}

func TestApplyWeightsMonotonicInEachRating(t *testing.T) {
	weights := []models.ScoringWeights{
		models.DefaultWeights(),
		{SkillsMatch: 1},
		{Clarity: 5, Seniority: 2},
		{SkillsMatch: 0.5, ExperienceRelevance: 0.5, Qualifications: 0.5, Seniority: 0.5, Clarity: 0.5},
	}
	setters := []func(*models.Ratings, float64){
		func(r *models.Ratings, v float64) { r.SkillsMatch = v },
		func(r *models.Ratings, v float64) { r.ExperienceRelevance = v },
		func(r *models.Ratings, v float64) { r.Qualifications = v },
		func(r *models.Ratings, v float64) { r.Seniority = v },
		func(r *models.Ratings, v float64) { r.Clarity = v },
	}

	for _, w := range weights {
		for _, set := range setters {
			previous := -1.0
			for v := 0.0; v <= 100; v += 10 {
				r := uniformRatings(50)
				set(&r, v)
				score := ApplyWeights(candidateWithRatings(r), w).FinalScore
				assert.GreaterOrEqual(t, score, previous)
				previous = score
			}
		}
	}
}

func TestApplyWeightsExtremes(t *testing.T) {
	weights := []models.ScoringWeights{
		models.DefaultWeights(),
		{Clarity: 1},
		{SkillsMatch: 10, Seniority: 90},
	}

	for _, w := range weights {
		assert.Equal(t, models.FitLow, ApplyWeights(candidateWithRatings(uniformRatings(0)), w).FitLabel)
		assert.Equal(t, models.FitHigh, ApplyWeights(candidateWithRatings(uniformRatings(100)), w).FitLabel)
	}
}

func TestFitLabelFor(t *testing.T) {
	cases := []struct {
		score float64
		want  models.FitLabel
	}{
		{0, models.FitLow},
		{49.99, models.FitLow},
		{50, models.FitMedium},
		{79.9, models.FitMedium},
		{80, models.FitHigh},
		{100, models.FitHigh},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FitLabelFor(tc.score), "score %v", tc.score)
	}
}

func TestRescore(t *testing.T) {
	candidates := []models.CandidateAnalysis{
		ApplyWeights(candidateWithRatings(models.Ratings{SkillsMatch: 100, Clarity: 0}), models.DefaultWeights()),
		ApplyWeights(candidateWithRatings(models.Ratings{SkillsMatch: 0, Clarity: 100}), models.DefaultWeights()),
	}

	same, changed := Rescore(candidates, models.DefaultWeights())
	assert.False(t, changed)
	assert.Equal(t, candidates, same)

	rescored, changed := Rescore(candidates, models.ScoringWeights{Clarity: 1})
	assert.True(t, changed)
	assert.Equal(t, 0.0, rescored[0].FinalScore)
	assert.Equal(t, 100.0, rescored[1].FinalScore)
	assert.Equal(t, 40.0, candidates[0].FinalScore, "input slice must not be mutated")

	unchanged, changed := Rescore(candidates, models.ScoringWeights{})
	assert.False(t, changed)
	assert.Equal(t, candidates, unchanged)
}
