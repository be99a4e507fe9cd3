package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/progression"
	"github.com/noah-isme/gema-progress-api/internal/repository"
)

var (
	// ErrAssessmentNotFound indicates the assessment does not exist.
	ErrAssessmentNotFound = errors.New("assessment not found")
	// ErrWeekLocked indicates the previous week has not been completed yet.
	ErrWeekLocked = errors.New("week is locked until the previous week is completed")
)

// SubmissionService handles student submissions and resubmissions.
type SubmissionService interface {
	SubmitAssessment(ctx context.Context, studentID, assessmentID uint, payload dto.SubmitAssessmentRequest) (dto.AssessmentResponseView, error)
	SubmitProject(ctx context.Context, studentID, weekID uint, payload dto.SubmitProjectRequest) (dto.ProjectSubmissionView, error)
	MarkWeekComplete(ctx context.Context, studentID, weekID uint) (dto.WeekCompletionResponse, error)
}

type submissionService struct {
	assessments repository.AssessmentRepository
	responses   repository.AssessmentResponseRepository
	projects    repository.ProjectSubmissionRepository
	completions repository.WeekCompletionRepository
	progress    CourseProgressService
	events      GradingEventBus
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// SubmissionDependencies groups the collaborators of the submission service.
type SubmissionDependencies struct {
	Assessments repository.AssessmentRepository
	Responses   repository.AssessmentResponseRepository
	Projects    repository.ProjectSubmissionRepository
	Completions repository.WeekCompletionRepository
	Progress    CourseProgressService
	Events      GradingEventBus
}

// NewSubmissionService constructs a submission service.
func NewSubmissionService(deps SubmissionDependencies, validator *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		assessments: deps.Assessments,
		responses:   deps.Responses,
		projects:    deps.Projects,
		completions: deps.Completions,
		progress:    deps.Progress,
		events:      deps.Events,
		validator:   validator,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// SubmitAssessment creates the student's response or resets an existing one
// to pending. Clearing a score also writes a reset history entry so the total
// is recomputed by the sweep even if the event is lost.
func (s *submissionService) SubmitAssessment(ctx context.Context, studentID, assessmentID uint, payload dto.SubmitAssessmentRequest) (dto.AssessmentResponseView, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentResponseView{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponseView{}, ErrAssessmentNotFound
		}
		return dto.AssessmentResponseView{}, err
	}

	if err := s.ensureUnlocked(ctx, studentID, assessment.WeekID); err != nil {
		return dto.AssessmentResponseView{}, err
	}

	response, err := s.responses.GetByAssessmentAndStudent(ctx, assessmentID, studentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssessmentResponseView{}, err
		}
		response = models.AssessmentResponse{AssessmentID: assessmentID, StudentID: studentID}
	}

	submittedAt := s.now()
	reset := scoreResetEntry(studentID, models.GradeEntityAssessmentResponse, response.Score, submittedAt)
	response.Content = strings.TrimSpace(payload.Content)
	response.SubmittedAt = &submittedAt
	response.Status = models.AssessmentStatusPending
	response.Score = nil
	response.Feedback = ""
	response.GradedAt = nil
	response.GradedBy = nil

	if err := s.responses.SaveWithHistory(ctx, &response, reset); err != nil {
		return dto.AssessmentResponseView{}, err
	}

	s.publish(ctx, NewGradingEvent(EventAssessmentSubmitted, studentID, models.GradeEntityAssessmentResponse, response.ID, historyID(reset)))

	late := progression.IsLate(assessment.Deadline, response.SubmittedAt)
	return dto.NewAssessmentResponseView(response, late), nil
}

// SubmitProject creates or resets the student's project for a week. Any week
// accepts a project; a submission on an unflagged week still gates it.
func (s *submissionService) SubmitProject(ctx context.Context, studentID, weekID uint, payload dto.SubmitProjectRequest) (dto.ProjectSubmissionView, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProjectSubmissionView{}, err
	}

	access, err := s.progress.WeekAccess(ctx, studentID, weekID)
	if err != nil {
		return dto.ProjectSubmissionView{}, err
	}
	if access.IsLocked {
		return dto.ProjectSubmissionView{}, ErrWeekLocked
	}

	submission, err := s.projects.GetByWeekAndStudent(ctx, weekID, studentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectSubmissionView{}, err
		}
		submission = models.ProjectSubmission{WeekID: weekID, StudentID: studentID}
	}

	submittedAt := s.now()
	reset := scoreResetEntry(studentID, models.GradeEntityProjectSubmission, submission.Score, submittedAt)
	submission.CourseID = access.CourseID
	submission.RepositoryURL = strings.TrimSpace(payload.RepositoryURL)
	submission.SubmittedAt = &submittedAt
	submission.Status = models.ProjectStatusPending
	submission.Score = nil
	submission.Review = ""
	submission.GradedAt = nil
	submission.GradedBy = nil

	if err := s.projects.SaveWithHistory(ctx, &submission, reset); err != nil {
		return dto.ProjectSubmissionView{}, err
	}

	s.publish(ctx, NewGradingEvent(EventProjectSubmitted, studentID, models.GradeEntityProjectSubmission, submission.ID, historyID(reset)))

	return dto.NewProjectSubmissionView(submission), nil
}

// MarkWeekComplete stores an explicit completion mark for an unlocked week.
func (s *submissionService) MarkWeekComplete(ctx context.Context, studentID, weekID uint) (dto.WeekCompletionResponse, error) {
	if err := s.ensureUnlocked(ctx, studentID, weekID); err != nil {
		return dto.WeekCompletionResponse{}, err
	}

	completedAt := s.now()
	if err := s.completions.Mark(ctx, studentID, weekID, completedAt); err != nil {
		return dto.WeekCompletionResponse{}, err
	}

	return dto.WeekCompletionResponse{StudentID: studentID, WeekID: weekID, CompletedAt: completedAt}, nil
}

func (s *submissionService) ensureUnlocked(ctx context.Context, studentID, weekID uint) error {
	access, err := s.progress.WeekAccess(ctx, studentID, weekID)
	if err != nil {
		return err
	}
	if access.IsLocked {
		return ErrWeekLocked
	}
	return nil
}

// scoreResetEntry returns the history entry for a resubmission that clears
// previous, or nil when nothing was scored yet.
func scoreResetEntry(studentID uint, entity models.GradeEntityType, previous *float64, at time.Time) *models.GradeHistory {
	if previous == nil {
		return nil
	}
	return &models.GradeHistory{
		StudentID:  studentID,
		EntityType: entity,
		Action:     models.GradeActionReset,
		GradedAt:   at,
		Metadata: datatypes.JSONMap{
			"reason":         "resubmission",
			"previous_score": *previous,
		},
	}
}

func historyID(entry *models.GradeHistory) *uint {
	if entry == nil {
		return nil
	}
	return &entry.ID
}

func (s *submissionService) publish(ctx context.Context, event GradingEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("kind", event.Kind).Uint("student_id", event.StudentID).Msg("failed to deliver submission event")
	}
}
