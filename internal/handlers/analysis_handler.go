package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/talent-screener/internal/models"
	"alfredoptarigan/talent-screener/internal/services"
)

type AnalysisHandler struct {
	session *services.Session
	tracker services.BatchTracker
}

func NewAnalysisHandler(session *services.Session, tracker services.BatchTracker) *AnalysisHandler {
	return &AnalysisHandler{
		session: session,
		tracker: tracker,
	}
}

// HandleAnalyze handles POST /analyze
func (h *AnalysisHandler) HandleAnalyze(c *fiber.Ctx) error {
	pending := len(h.session.PendingFiles())

	if err := h.tracker.Start(); err != nil {
		switch {
		case errors.Is(err, services.ErrBatchRunning):
			return errorResponse(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, services.ErrNoJobDescription), errors.Is(err, services.ErrNoPendingFiles):
			return errorResponse(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrTrackerStopped):
			return errorResponse(c, fiber.StatusServiceUnavailable, err.Error())
		default:
			return err
		}
	}

	return c.Status(fiber.StatusAccepted).JSON(models.AnalyzeResponse{
		Status:  string(models.FileStatusProcessing),
		Pending: pending,
	})
}

// HandleStatus handles GET /analyze
func (h *AnalysisHandler) HandleStatus(c *fiber.Ctx) error {
	counts := map[models.FileStatus]int{
		models.FileStatusPending:    0,
		models.FileStatusProcessing: 0,
		models.FileStatusCompleted:  0,
		models.FileStatusError:      0,
	}
	for _, f := range h.session.Files() {
		counts[f.Status]++
	}

	return c.JSON(models.AnalysisStatusResponse{
		Running: h.tracker.Running(),
		Counts:  counts,
	})
}
