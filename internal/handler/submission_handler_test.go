package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/handler"
	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/service"
)

type stubSubmissionService struct {
	err         error
	lastStudent uint
	lastTarget  uint
	lastContent string
}

func (s *stubSubmissionService) SubmitAssessment(_ context.Context, studentID, assessmentID uint, payload dto.SubmitAssessmentRequest) (dto.AssessmentResponseView, error) {
	s.lastStudent, s.lastTarget, s.lastContent = studentID, assessmentID, payload.Content
	if s.err != nil {
		return dto.AssessmentResponseView{}, s.err
	}
	return dto.AssessmentResponseView{ID: 1, AssessmentID: assessmentID, StudentID: studentID, Status: models.AssessmentStatusPending}, nil
}

func (s *stubSubmissionService) SubmitProject(_ context.Context, studentID, weekID uint, payload dto.SubmitProjectRequest) (dto.ProjectSubmissionView, error) {
	s.lastStudent, s.lastTarget, s.lastContent = studentID, weekID, payload.RepositoryURL
	if s.err != nil {
		return dto.ProjectSubmissionView{}, s.err
	}
	return dto.ProjectSubmissionView{ID: 2, WeekID: weekID, StudentID: studentID, Status: models.ProjectStatusPending}, nil
}

func (s *stubSubmissionService) MarkWeekComplete(_ context.Context, studentID, weekID uint) (dto.WeekCompletionResponse, error) {
	s.lastStudent, s.lastTarget = studentID, weekID
	if s.err != nil {
		return dto.WeekCompletionResponse{}, s.err
	}
	return dto.WeekCompletionResponse{StudentID: studentID, WeekID: weekID, CompletedAt: time.Now()}, nil
}

func submissionApp(svc service.SubmissionService) *fiber.App {
	app := fiber.New()
	h := handler.NewSubmissionHandler(svc, zerolog.Nop())
	h.RegisterAssessments(app.Group("/api/v2/assessments", withUser(uint(12), "student")))
	h.RegisterWeeks(app.Group("/api/v2/weeks", withUser(uint(12), "student")))
	return app
}

func TestSubmissionHandler_SubmitAssessment(t *testing.T) {
	svc := &stubSubmissionService{}

	resp, payload := doJSON(t, submissionApp(svc), http.MethodPost, "/api/v2/assessments/3/responses", fiber.Map{"content": "answer"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.True(t, payload.Success)
	require.Equal(t, uint(12), svc.lastStudent)
	require.Equal(t, uint(3), svc.lastTarget)
	require.Equal(t, "answer", svc.lastContent)
}

func TestSubmissionHandler_SubmitProject(t *testing.T) {
	svc := &stubSubmissionService{}

	resp, payload := doJSON(t, submissionApp(svc), http.MethodPost, "/api/v2/weeks/8/project", fiber.Map{"repository_url": "https://git.example.com/x"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "project submitted", payload.Message)
	require.Equal(t, uint(8), svc.lastTarget)
}

func TestSubmissionHandler_MarkComplete(t *testing.T) {
	svc := &stubSubmissionService{}

	resp, payload := doJSON(t, submissionApp(svc), http.MethodPost, "/api/v2/weeks/8/complete", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "week marked complete", payload.Message)
}

func TestSubmissionHandler_Errors(t *testing.T) {
	cases := []struct {
		name    string
		path    string
		err     error
		status  int
		message string
	}{
		{name: "locked week", path: "/api/v2/weeks/8/project", err: service.ErrWeekLocked, status: fiber.StatusForbidden, message: service.ErrWeekLocked.Error()},
		{name: "locked completion", path: "/api/v2/weeks/8/complete", err: service.ErrWeekLocked, status: fiber.StatusForbidden, message: service.ErrWeekLocked.Error()},
		{name: "unknown week", path: "/api/v2/weeks/8/project", err: service.ErrWeekNotFound, status: fiber.StatusNotFound, message: "week not found"},
		{name: "unknown assessment", path: "/api/v2/assessments/3/responses", err: service.ErrAssessmentNotFound, status: fiber.StatusNotFound, message: "assessment not found"},
		{name: "bad id", path: "/api/v2/weeks/x/project", status: fiber.StatusBadRequest, message: "invalid week identifier"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubSubmissionService{err: tc.err}
			resp, payload := doJSON(t, submissionApp(svc), http.MethodPost, tc.path, fiber.Map{"content": "x", "repository_url": "https://git.example.com/x"})
			require.Equal(t, tc.status, resp.StatusCode)
			require.Equal(t, tc.message, payload.Message)
		})
	}
}

var _ service.SubmissionService = (*stubSubmissionService)(nil)
