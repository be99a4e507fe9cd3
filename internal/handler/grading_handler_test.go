package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/handler"
	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/service"
)

type stubGradingService struct {
	result       dto.ScoreResult
	err          error
	lastID       uint
	lastActor    service.Actor
	lastScore    *float64
	lastFeedback string
}

func (s *stubGradingService) ScoreAssessmentResponse(_ context.Context, id uint, payload dto.ScoreAssessmentRequest, actor service.Actor) (dto.ScoreResult, error) {
	s.lastID, s.lastActor, s.lastScore, s.lastFeedback = id, actor, payload.Score, payload.Feedback
	return s.result, s.err
}

func (s *stubGradingService) ScoreProjectSubmission(_ context.Context, id uint, payload dto.ScoreProjectRequest, actor service.Actor) (dto.ScoreResult, error) {
	s.lastID, s.lastActor, s.lastScore, s.lastFeedback = id, actor, payload.Score, payload.Review
	return s.result, s.err
}

func gradingApp(svc service.GradingService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v2/mentor", withUser(uint(7), "mentor"))
	handler.NewGradingHandler(svc, zerolog.Nop()).Register(group)
	return app
}

func TestGradingHandler_ScoreResponse(t *testing.T) {
	svc := &stubGradingService{result: dto.ScoreResult{
		EntityType:         models.GradeEntityAssessmentResponse,
		EntityID:           31,
		RawScore:           80,
		FinalScore:         78,
		LatePenaltyApplied: true,
		Status:             "completed",
		GradedAt:           time.Now(),
	}}

	resp, payload := doJSON(t, gradingApp(svc), http.MethodPatch, "/api/v2/mentor/responses/31/score", fiber.Map{"score": 80, "feedback": "ok"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, payload.Success)
	require.Equal(t, uint(31), svc.lastID)
	require.Equal(t, service.Actor{ID: 7, Role: "mentor"}, svc.lastActor)
	require.InDelta(t, 80.0, *svc.lastScore, 0.001)

	var data dto.ScoreResult
	require.NoError(t, json.Unmarshal(payload.Data, &data))
	require.InDelta(t, 78.0, data.FinalScore, 0.001)
	require.True(t, data.LatePenaltyApplied)
}

func TestGradingHandler_ScoreProject(t *testing.T) {
	svc := &stubGradingService{result: dto.ScoreResult{EntityType: models.GradeEntityProjectSubmission, EntityID: 9, FinalScore: 30, Status: "graded"}}

	resp, payload := doJSON(t, gradingApp(svc), http.MethodPatch, "/api/v2/mentor/projects/9/score", fiber.Map{"score": 30, "review": "needs tests"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "project submission scored", payload.Message)
	require.Equal(t, "needs tests", svc.lastFeedback)
}

func TestGradingHandler_Errors(t *testing.T) {
	validationErr := validator.New().Struct(dto.ScoreAssessmentRequest{})
	require.Error(t, validationErr)

	cases := []struct {
		name    string
		path    string
		err     error
		status  int
		message string
	}{
		{name: "response missing", path: "/api/v2/mentor/responses/5/score", err: service.ErrResponseNotFound, status: fiber.StatusNotFound, message: "assessment response not found"},
		{name: "project missing", path: "/api/v2/mentor/projects/5/score", err: service.ErrProjectSubmissionNotFound, status: fiber.StatusNotFound, message: "project submission not found"},
		{name: "invalid score", path: "/api/v2/mentor/responses/5/score", err: validationErr, status: fiber.StatusBadRequest},
		{name: "persistence", path: "/api/v2/mentor/responses/5/score", err: fmt.Errorf("%w: deadlock", service.ErrScorePersistence), status: fiber.StatusInternalServerError, message: "failed to save score"},
		{name: "project persistence", path: "/api/v2/mentor/projects/5/score", err: service.ErrScorePersistence, status: fiber.StatusInternalServerError, message: "failed to save score"},
		{name: "bad id", path: "/api/v2/mentor/responses/zero/score", status: fiber.StatusBadRequest, message: "invalid identifier"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubGradingService{err: tc.err}
			resp, payload := doJSON(t, gradingApp(svc), http.MethodPatch, tc.path, fiber.Map{"score": 50})
			require.Equal(t, tc.status, resp.StatusCode)
			require.False(t, payload.Success)
			if tc.message != "" {
				require.Equal(t, tc.message, payload.Message)
			}
		})
	}
}

func TestGradingHandler_RequiresActor(t *testing.T) {
	app := fiber.New()
	handler.NewGradingHandler(&stubGradingService{}, zerolog.Nop()).Register(app.Group("/api/v2/mentor"))

	resp, payload := doJSON(t, app, http.MethodPatch, "/api/v2/mentor/responses/1/score", fiber.Map{"score": 50})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.False(t, payload.Success)
}

var _ service.GradingService = (*stubGradingService)(nil)
