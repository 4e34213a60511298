package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/talent-screener/internal/logger"
	"alfredoptarigan/talent-screener/internal/models"
	"alfredoptarigan/talent-screener/internal/repositories"
)

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrCandidateNotFound = errors.New("candidate not found")
)

// Session is the application state of one recruiting session: the job description,
// the batch of uploaded files, the weight configuration and the result store.
// Only weights and results are persisted.
type Session struct {
	mu             sync.RWMutex
	repo           repositories.SessionRepository
	weights        models.ScoringWeights
	jobDescription *models.Document
	files          []*models.ProcessingFile
	candidates     []models.CandidateAnalysis
	log            *zap.Logger
}

// NewSession loads persisted weights and results. Missing weights fall back to the defaults.
func NewSession(repo repositories.SessionRepository, log *zap.Logger) (*Session, error) {
	s := &Session{
		repo:       repo,
		weights:    models.DefaultWeights(),
		candidates: []models.CandidateAnalysis{},
		log:        logger.OrNop(log),
	}

	weights, err := repo.LoadWeights()
	if err != nil {
		return nil, fmt.Errorf("failed to load weights: %w", err)
	}
	if weights != nil {
		s.weights = *weights
	}

	candidates, err := repo.LoadCandidates()
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	s.candidates = candidates

	s.log.Info("session loaded", zap.Int("candidates", len(candidates)), zap.Float64("weights_sum", s.weights.Sum()))
	return s, nil
}

func (s *Session) SetJobDescription(doc *models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobDescription = doc
}

func (s *Session) JobDescription() *models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobDescription
}

// AddFiles registers documents as pending files in upload order.
func (s *Session) AddFiles(docs ...*models.Document) []models.ProcessingFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]models.ProcessingFile, 0, len(docs))
	for _, doc := range docs {
		file := &models.ProcessingFile{
			ID:         uuid.NewString(),
			Document:   doc,
			Status:     models.FileStatusPending,
			UploadedAt: time.Now().UTC(),
		}
		s.files = append(s.files, file)
		added = append(added, *file)
	}

	return added
}

// AddRejectedFile records an upload that could not be read. It enters the batch in the error state.
func (s *Session) AddRejectedFile(name string, reason error) models.ProcessingFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	file := &models.ProcessingFile{
		ID:         uuid.NewString(),
		Document:   &models.Document{Name: name},
		Status:     models.FileStatusError,
		Error:      logger.Truncate(reason.Error(), maxFileErrorLength),
		UploadedAt: time.Now().UTC(),
	}
	s.files = append(s.files, file)
	return *file
}

func (s *Session) Files() []models.ProcessingFile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]models.ProcessingFile, len(s.files))
	for i, f := range s.files {
		files[i] = *f
	}
	return files
}

// PendingFiles returns pending files in upload order.
func (s *Session) PendingFiles() []models.ProcessingFile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []models.ProcessingFile
	for _, f := range s.files {
		if f.Status == models.FileStatusPending {
			pending = append(pending, *f)
		}
	}
	return pending
}

// SetFileStatus updates a file in place. It reports false when the file was removed meanwhile.
func (s *Session) SetFileStatus(id string, status models.FileStatus, errMsg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.files {
		if f.ID == id {
			f.Status = status
			f.Error = errMsg
			return true
		}
	}
	return false
}

func (s *Session) RemoveFile(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.files {
		if f.ID == id {
			s.files = append(s.files[:i], s.files[i+1:]...)
			return nil
		}
	}
	return ErrFileNotFound
}

func (s *Session) Weights() models.ScoringWeights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights
}

// SetWeights persists w and rescores every stored candidate. The result list is
// only replaced and written when a score or label actually changed. On any
// failure the previous weights and candidates stay in place.
func (s *Session) SetWeights(w models.ScoringWeights) (bool, error) {
	if err := w.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rescored, changed := Rescore(s.candidates, w)
	if changed {
		if err := s.repo.SaveCandidates(rescored); err != nil {
			return false, fmt.Errorf("failed to save candidates: %w", err)
		}
	}

	if err := s.repo.SaveWeights(w); err != nil {
		if changed {
			if rollbackErr := s.repo.SaveCandidates(s.candidates); rollbackErr != nil {
				s.log.Error("failed to restore candidates", zap.Error(rollbackErr))
			}
		}
		return false, fmt.Errorf("failed to save weights: %w", err)
	}

	s.weights = w
	if !changed {
		return false, nil
	}

	s.candidates = rescored
	s.log.Info("candidates rescored", zap.Int("candidates", len(rescored)), zap.Float64("weights_sum", w.Sum()))
	return true, nil
}

// AddCandidate scores c with the current weights and appends it to the result store.
func (s *Session) AddCandidate(c models.CandidateAnalysis) (models.CandidateAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scored := ApplyWeights(c, s.weights)
	if scored.FitLabel == "" {
		scored.FitLabel = FitLabelFor(scored.FinalScore)
	}
	s.candidates = append(s.candidates, scored)

	if err := s.repo.SaveCandidates(s.candidates); err != nil {
		return scored, fmt.Errorf("failed to save candidates: %w", err)
	}
	return scored, nil
}

// Candidates returns the result store sorted by descending score. Ties keep analysis order.
func (s *Session) Candidates() []models.CandidateAnalysis {
	s.mu.RLock()
	ranked := make([]models.CandidateAnalysis, len(s.candidates))
	copy(ranked, s.candidates)
	s.mu.RUnlock()

	SortByScore(ranked)
	return ranked
}

func (s *Session) Candidate(id string) (models.CandidateAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.candidates {
		if c.ID == id {
			return c, nil
		}
	}
	return models.CandidateAnalysis{}, ErrCandidateNotFound
}

func (s *Session) SetInterviewQuestions(id string, questions []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.candidates {
		if s.candidates[i].ID == id {
			s.candidates[i].InterviewQuestions = questions
			return s.repo.SaveCandidates(s.candidates)
		}
	}
	return ErrCandidateNotFound
}

func (s *Session) RemoveCandidate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.candidates {
		if c.ID == id {
			s.candidates = append(s.candidates[:i:i], s.candidates[i+1:]...)
			return s.repo.SaveCandidates(s.candidates)
		}
	}
	return ErrCandidateNotFound
}

// Reset discards the job description, the files and all results. Weights are kept.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobDescription = nil
	s.files = nil
	s.candidates = []models.CandidateAnalysis{}

	if err := s.repo.ClearCandidates(); err != nil {
		return fmt.Errorf("failed to clear candidates: %w", err)
	}

	s.log.Info("session reset")
	return nil
}

// SortByScore sorts candidates by descending final score, keeping the order of ties.
func SortByScore(candidates []models.CandidateAnalysis) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FinalScore > candidates[j].FinalScore
	})
}
