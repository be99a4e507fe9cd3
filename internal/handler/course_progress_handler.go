package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progress-api/internal/service"
	"github.com/noah-isme/gema-progress-api/internal/utils"
)

// CourseProgressHandler exposes the per-student course progress view.
type CourseProgressHandler struct {
	service service.CourseProgressService
	logger  zerolog.Logger
}

// NewCourseProgressHandler constructs the handler.
func NewCourseProgressHandler(service service.CourseProgressService, logger zerolog.Logger) *CourseProgressHandler {
	return &CourseProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "course_progress_handler").Logger(),
	}
}

// Register attaches the progress endpoint to the courses group.
func (h *CourseProgressHandler) Register(router fiber.Router) {
	router.Get("/:courseId/progress", h.getProgress)
}

func (h *CourseProgressHandler) getProgress(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course identifier")
	}

	progress, err := h.service.ComputeCourseProgress(c.UserContext(), studentID, courseID)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("student_id", studentID).Uint("course_id", courseID).Msg("failed to compute course progress")
		return utils.SendError(c, fiber.StatusInternalServerError, service.ErrProgressUnavailable.Error())
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}
