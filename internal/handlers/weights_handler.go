package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/talent-screener/internal/models"
	"alfredoptarigan/talent-screener/internal/services"
)

type WeightsHandler struct {
	session *services.Session
}

func NewWeightsHandler(session *services.Session) *WeightsHandler {
	return &WeightsHandler{session: session}
}

// HandleGetWeights handles GET /weights
func (h *WeightsHandler) HandleGetWeights(c *fiber.Ctx) error {
	return c.JSON(weightsResponse(h.session.Weights(), false))
}

// HandleUpdateWeights handles PUT /weights. All five weights are required.
func (h *WeightsHandler) HandleUpdateWeights(c *fiber.Ctx) error {
	var req models.WeightsRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if err := validate.Struct(req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, validationMessage(err))
	}

	weights := req.ToWeights()
	if err := weights.Validate(); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	rescored, err := h.session.SetWeights(weights)
	if err != nil {
		return err
	}

	return c.JSON(weightsResponse(weights, rescored))
}

func weightsResponse(w models.ScoringWeights, rescored bool) models.WeightsResponse {
	return models.WeightsResponse{
		Weights:  w,
		Sum:      w.Sum(),
		Warning:  w.SumWarning(),
		Rescored: rescored,
	}
}
