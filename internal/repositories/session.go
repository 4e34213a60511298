package repositories

import (
	"encoding/json"
	"fmt"

	"alfredoptarigan/talent-screener/internal/models"
)

const (
	weightsKey    = "weights"
	candidatesKey = "candidates"
)

// SessionRepository persists the two pieces of durable session state:
// the weight configuration and the analyzed candidate list.
type SessionRepository interface {
	LoadWeights() (*models.ScoringWeights, error)
	SaveWeights(weights models.ScoringWeights) error
	LoadCandidates() ([]models.CandidateAnalysis, error)
	SaveCandidates(candidates []models.CandidateAnalysis) error
	ClearCandidates() error
}

type sessionRepository struct {
	blobs BlobStore
}

func NewSessionRepository(blobs BlobStore) SessionRepository {
	return &sessionRepository{blobs: blobs}
}

// LoadWeights implements SessionRepository. It returns nil when nothing was saved yet.
func (r *sessionRepository) LoadWeights() (*models.ScoringWeights, error) {
	data, ok, err := r.blobs.Get(weightsKey)
	if err != nil || !ok {
		return nil, err
	}

	var weights models.ScoringWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to decode weights: %w", err)
	}

	return &weights, nil
}

// SaveWeights implements SessionRepository.
func (r *sessionRepository) SaveWeights(weights models.ScoringWeights) error {
	data, err := json.Marshal(weights)
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}

	return r.blobs.Put(weightsKey, data)
}

// LoadCandidates implements SessionRepository.
func (r *sessionRepository) LoadCandidates() ([]models.CandidateAnalysis, error) {
	data, ok, err := r.blobs.Get(candidatesKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.CandidateAnalysis{}, nil
	}

	var candidates []models.CandidateAnalysis
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("failed to decode candidates: %w", err)
	}
	if candidates == nil {
		candidates = []models.CandidateAnalysis{}
	}

	return candidates, nil
}

// SaveCandidates implements SessionRepository.
func (r *sessionRepository) SaveCandidates(candidates []models.CandidateAnalysis) error {
	if candidates == nil {
		candidates = []models.CandidateAnalysis{}
	}

	data, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("failed to encode candidates: %w", err)
	}

	return r.blobs.Put(candidatesKey, data)
}

// ClearCandidates implements SessionRepository.
func (r *sessionRepository) ClearCandidates() error {
	return r.blobs.Delete(candidatesKey)
}
