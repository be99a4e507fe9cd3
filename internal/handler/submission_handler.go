package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/service"
	"github.com/noah-isme/gema-progress-api/internal/utils"
)

// SubmissionHandler accepts student work for assessments and project weeks.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// RegisterAssessments attaches the assessment response endpoint.
func (h *SubmissionHandler) RegisterAssessments(router fiber.Router) {
	router.Post("/:id/responses", h.submitAssessment)
}

// RegisterWeeks attaches the project and completion endpoints.
func (h *SubmissionHandler) RegisterWeeks(router fiber.Router) {
	router.Post("/:id/project", h.submitProject)
	router.Post("/:id/complete", h.markComplete)
}

func (h *SubmissionHandler) submitAssessment(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	assessmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assessment identifier")
	}

	var payload dto.SubmitAssessmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.SubmitAssessment(c.UserContext(), studentID, assessmentID, payload)
	if err != nil {
		return h.fail(c, err, "failed to submit assessment")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assessment submitted", response)
}

func (h *SubmissionHandler) submitProject(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	weekID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid week identifier")
	}

	var payload dto.SubmitProjectRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	submission, err := h.service.SubmitProject(c.UserContext(), studentID, weekID, payload)
	if err != nil {
		return h.fail(c, err, "failed to submit project")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "project submitted", submission)
}

func (h *SubmissionHandler) markComplete(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	weekID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid week identifier")
	}

	completion, err := h.service.MarkWeekComplete(c.UserContext(), studentID, weekID)
	if err != nil {
		return h.fail(c, err, "failed to mark week complete")
	}

	return utils.SendSuccess(c, "week marked complete", completion)
}

func (h *SubmissionHandler) fail(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrAssessmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assessment not found")
	case errors.Is(err, service.ErrWeekNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "week not found")
	case errors.Is(err, service.ErrWeekLocked):
		return utils.SendError(c, fiber.StatusForbidden, service.ErrWeekLocked.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(message)
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}
