package handlers

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/talent-screener/internal/logger"
	"alfredoptarigan/talent-screener/internal/models"
	"alfredoptarigan/talent-screener/internal/services"
)

type ResultHandler struct {
	session  *services.Session
	analyzer services.Analyzer
	tracker  services.BatchTracker
	log      *zap.Logger
}

func NewResultHandler(
	session *services.Session,
	analyzer services.Analyzer,
	tracker services.BatchTracker,
	log *zap.Logger,
) *ResultHandler {
	return &ResultHandler{
		session:  session,
		analyzer: analyzer,
		tracker:  tracker,
		log:      logger.OrNop(log),
	}
}

// HandleListCandidates handles GET /candidates
func (h *ResultHandler) HandleListCandidates(c *fiber.Ctx) error {
	return c.JSON(services.Rank(h.session.Candidates()))
}

// HandleGetCandidate handles GET /candidates/:id
func (h *ResultHandler) HandleGetCandidate(c *fiber.Ctx) error {
	candidate, err := h.session.Candidate(c.Params("id"))
	if err != nil {
		return h.candidateError(c, err)
	}
	return c.JSON(candidate)
}

// HandleDeleteCandidate handles DELETE /candidates/:id
func (h *ResultHandler) HandleDeleteCandidate(c *fiber.Ctx) error {
	if err := h.session.RemoveCandidate(c.Params("id")); err != nil {
		return h.candidateError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleInterviewQuestions handles POST /candidates/:id/interview-questions
func (h *ResultHandler) HandleInterviewQuestions(c *fiber.Ctx) error {
	candidate, err := h.session.Candidate(c.Params("id"))
	if err != nil {
		return h.candidateError(c, err)
	}

	questions, err := h.analyzer.InterviewQuestions(c.UserContext(), &candidate)
	if err != nil {
		h.log.Warn("interview question generation failed", zap.String("candidate_id", candidate.ID), zap.Error(err))
		return errorResponse(c, fiber.StatusBadGateway, "Failed to generate interview questions")
	}

	if err := h.session.SetInterviewQuestions(candidate.ID, questions); err != nil {
		return h.candidateError(c, err)
	}

	return c.JSON(models.InterviewQuestionsResponse{
		CandidateID: candidate.ID,
		Questions:   questions,
	})
}

// HandleEmail handles POST /candidates/:id/email
func (h *ResultHandler) HandleEmail(c *fiber.Ctx) error {
	var req models.EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if err := validate.Struct(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, validationMessage(err))
	}

	kind, err := services.ParseEmailKind(req.Type)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	candidate, err := h.session.Candidate(c.Params("id"))
	if err != nil {
		return h.candidateError(c, err)
	}

	body, err := h.analyzer.DraftEmail(c.UserContext(), &candidate, kind)
	if err != nil {
		h.log.Warn("email drafting failed", zap.String("candidate_id", candidate.ID), zap.Error(err))
		return errorResponse(c, fiber.StatusBadGateway, "Failed to draft email")
	}

	return c.JSON(models.EmailResponse{
		CandidateID: candidate.ID,
		Type:        string(kind),
		Body:        body,
	})
}

// HandleExportCSV handles GET /export.csv
func (h *ResultHandler) HandleExportCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := services.WriteCSV(&buf, h.session.Candidates()); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="candidates.csv"`)
	return c.Send(buf.Bytes())
}

// HandleExportText handles GET /export.txt
func (h *ResultHandler) HandleExportText(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := services.WriteTextReport(&buf, h.session.Candidates()); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Send(buf.Bytes())
}

// HandleReset handles POST /reset
func (h *ResultHandler) HandleReset(c *fiber.Ctx) error {
	if err := h.tracker.ResetSession(); err != nil {
		if errors.Is(err, services.ErrBatchRunning) {
			return errorResponse(c, fiber.StatusConflict, err.Error())
		}
		return err
	}
	return c.JSON(fiber.Map{"message": "Session reset"})
}

func (h *ResultHandler) candidateError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrCandidateNotFound) {
		return errorResponse(c, fiber.StatusNotFound, "Candidate not found")
	}
	return err
}
