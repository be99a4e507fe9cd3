package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progress-api/internal/service"
	"github.com/noah-isme/gema-progress-api/internal/utils"
)

// StudentStatsHandler exposes the student's score rollup.
type StudentStatsHandler struct {
	service service.StudentStatsService
	logger  zerolog.Logger
}

// NewStudentStatsHandler creates a new handler instance.
func NewStudentStatsHandler(service service.StudentStatsService, logger zerolog.Logger) *StudentStatsHandler {
	return &StudentStatsHandler{
		service: service,
		logger:  logger.With().Str("component", "student_stats_handler").Logger(),
	}
}

// Register attaches the stats endpoint.
func (h *StudentStatsHandler) Register(router fiber.Router) {
	router.Get("/stats", h.getStats)
}

func (h *StudentStatsHandler) getStats(c *fiber.Ctx) error {
	studentID, err := extractUserID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	}

	stats, cacheHit, err := h.service.GetStats(c.UserContext(), studentID)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("student_id", studentID).Msg("failed to load student stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load stats")
	}

	return utils.SendSuccessWithMeta(c, "stats retrieved", stats, fiber.Map{"cache_hit": cacheHit})
}
