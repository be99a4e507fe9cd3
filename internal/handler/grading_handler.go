package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/service"
	"github.com/noah-isme/gema-progress-api/internal/utils"
)

// GradingHandler wires the mentor scoring endpoints.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches scoring endpoints to the mentor group.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Patch("/responses/:id/score", h.scoreResponse)
	router.Patch("/projects/:id/score", h.scoreProject)
}

func (h *GradingHandler) scoreResponse(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	actor, err := actorFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.ScoreAssessmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.ScoreAssessmentResponse(c.UserContext(), id, payload, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResponseNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "assessment response not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("response_id", id).Msg("failed to score assessment response")
			return utils.SendError(c, fiber.StatusInternalServerError, service.ErrScorePersistence.Error())
		}
	}

	return utils.SendSuccess(c, "assessment response scored", result)
}

func (h *GradingHandler) scoreProject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	actor, err := actorFromContext(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	var payload dto.ScoreProjectRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.ScoreProjectSubmission(c.UserContext(), id, payload, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "project submission not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("submission_id", id).Msg("failed to score project submission")
			return utils.SendError(c, fiber.StatusInternalServerError, service.ErrScorePersistence.Error())
		}
	}

	return utils.SendSuccess(c, "project submission scored", result)
}
