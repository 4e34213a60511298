package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/talent-screener/internal/logger"
	"alfredoptarigan/talent-screener/internal/models"
)

const maxFileErrorLength = 200

var (
	ErrBatchRunning     = errors.New("analysis already running")
	ErrNoJobDescription = errors.New("no job description uploaded")
	ErrNoPendingFiles   = errors.New("no pending files to analyze")
	ErrTrackerStopped   = errors.New("batch tracker stopped")
)

// BatchSummary counts the outcomes of one batch run. Skipped files were
// removed from the session before their turn came.
type BatchSummary struct {
	Processed int `json:"processed"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

type fileOutcome int

const (
	fileCompleted fileOutcome = iota
	fileFailed
	fileSkipped
)

// BatchTracker drives the analysis of pending files, one file at a time.
type BatchTracker interface {
	// Run processes the batch on the calling goroutine.
	Run(ctx context.Context) (BatchSummary, error)
	// Start processes the batch in the background. Progress is visible through file statuses.
	Start() error
	Running() bool
	// Stop cancels a background batch and waits for it to return.
	Stop()
	// ResetSession clears the session, or returns ErrBatchRunning while a batch is active.
	ResetSession() error
}

type batchTracker struct {
	session  *Session
	analyzer Analyzer
	running  atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	log      *zap.Logger
}

func NewBatchTracker(session *Session, analyzer Analyzer, log *zap.Logger) BatchTracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &batchTracker{
		session:  session,
		analyzer: analyzer,
		ctx:      ctx,
		cancel:   cancel,
		log:      logger.OrNop(log),
	}
}

// Run implements BatchTracker.
func (t *batchTracker) Run(ctx context.Context) (BatchSummary, error) {
	if !t.running.CompareAndSwap(false, true) {
		return BatchSummary{}, ErrBatchRunning
	}
	defer t.running.Store(false)

	jd, pending, err := t.prepare()
	if err != nil {
		return BatchSummary{}, err
	}
	return t.process(ctx, jd, pending)
}

// Start implements BatchTracker.
func (t *batchTracker) Start() error {
	if t.ctx.Err() != nil {
		return ErrTrackerStopped
	}
	if !t.running.CompareAndSwap(false, true) {
		return ErrBatchRunning
	}

	jd, pending, err := t.prepare()
	if err != nil {
		t.running.Store(false)
		return err
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.running.Store(false)

		if _, err := t.process(t.ctx, jd, pending); err != nil {
			t.log.Error("batch aborted", zap.Error(err))
		}
	}()
	return nil
}

// Running implements BatchTracker.
func (t *batchTracker) Running() bool {
	return t.running.Load()
}

// ResetSession implements BatchTracker. No batch can start until the reset returns.
func (t *batchTracker) ResetSession() error {
	if !t.running.CompareAndSwap(false, true) {
		return ErrBatchRunning
	}
	defer t.running.Store(false)

	return t.session.Reset()
}

// Stop implements BatchTracker.
func (t *batchTracker) Stop() {
	t.log.Info("stopping batch tracker")
	t.cancel()
	t.wg.Wait()
}

func (t *batchTracker) prepare() (*models.Document, []models.ProcessingFile, error) {
	jd := t.session.JobDescription()
	if jd == nil {
		return nil, nil, ErrNoJobDescription
	}

	pending := t.session.PendingFiles()
	if len(pending) == 0 {
		return nil, nil, ErrNoPendingFiles
	}
	return jd, pending, nil
}

func (t *batchTracker) process(ctx context.Context, jd *models.Document, pending []models.ProcessingFile) (BatchSummary, error) {
	var summary BatchSummary

	if err := t.analyzer.PrepareJobDescription(ctx, jd); err != nil {
		return summary, fmt.Errorf("failed to read job description: %w", err)
	}

	t.log.Info("batch started", zap.Int("files", len(pending)), zap.String("job_description", jd.Name))
	started := time.Now()

	for i, file := range pending {
		if ctx.Err() != nil {
			t.log.Warn("batch interrupted", zap.Int("remaining", len(pending)-i))
			break
		}

		switch t.processFile(ctx, jd, file) {
		case fileCompleted:
			summary.Processed++
			summary.Completed++
		case fileFailed:
			summary.Processed++
			summary.Failed++
		case fileSkipped:
			summary.Skipped++
		}
	}

	t.log.Info("batch finished",
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("duration", time.Since(started)),
	)
	return summary, nil
}

func (t *batchTracker) processFile(ctx context.Context, jd *models.Document, file models.ProcessingFile) fileOutcome {
	fields := []zap.Field{zap.String("file_id", file.ID), zap.String("file", file.Document.Name)}
	started := time.Now()

	if !t.session.SetFileStatus(file.ID, models.FileStatusProcessing, "") {
		t.log.Info("file removed before analysis, skipping", fields...)
		return fileSkipped
	}

	analysis, err := t.analyzer.Analyze(ctx, jd, file.Document)
	if err != nil {
		t.session.SetFileStatus(file.ID, models.FileStatusError, logger.Truncate(err.Error(), maxFileErrorLength))
		t.log.Warn("file analysis failed", append(fields, zap.Error(err), zap.Duration("duration", time.Since(started)))...)
		return fileFailed
	}

	analysis.ID = file.ID
	scored, err := t.session.AddCandidate(*analysis)
	if err != nil {
		// The result stays in memory; only the write failed.
		t.log.Error("failed to persist candidate", append(fields, zap.Error(err))...)
	}

	t.session.SetFileStatus(file.ID, models.FileStatusCompleted, "")
	t.log.Info("file analyzed", append(fields,
		zap.String("candidate", scored.Name),
		zap.Float64("score", scored.FinalScore),
		zap.Duration("duration", time.Since(started)),
	)...)
	return fileCompleted
}
