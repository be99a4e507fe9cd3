package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/observability"
	"github.com/noah-isme/gema-progress-api/internal/progression"
	"github.com/noah-isme/gema-progress-api/internal/repository"
)

var (
	// ErrResponseNotFound indicates the assessment response was not located.
	ErrResponseNotFound = errors.New("assessment response not found")
	// ErrProjectSubmissionNotFound indicates the project submission was not located.
	ErrProjectSubmissionNotFound = errors.New("project submission not found")
	// ErrScorePersistence indicates the grade could not be written.
	ErrScorePersistence = errors.New("failed to save score")
)

// Actor represents the authenticated mentor performing a grading action.
type Actor struct {
	ID   uint
	Role string
}

// GradingService encapsulates grading workflows for mentors.
type GradingService interface {
	ScoreAssessmentResponse(ctx context.Context, responseID uint, payload dto.ScoreAssessmentRequest, actor Actor) (dto.ScoreResult, error)
	ScoreProjectSubmission(ctx context.Context, submissionID uint, payload dto.ScoreProjectRequest, actor Actor) (dto.ScoreResult, error)
}

type gradingService struct {
	repo      repository.GradingRepository
	events    GradingEventBus
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(repo repository.GradingRepository, events GradingEventBus, validator *validator.Validate, logger zerolog.Logger) GradingService {
	return &gradingService{
		repo:      repo,
		events:    events,
		validator: validator,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "grading_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-progress-api/internal/service/grading"),
		now:       time.Now,
	}
}

func (s *gradingService) ScoreAssessmentResponse(ctx context.Context, responseID uint, payload dto.ScoreAssessmentRequest, actor Actor) (dto.ScoreResult, error) {
	ctx, span := s.tracer.Start(ctx, "grading.assessment_response")
	span.SetAttributes(
		attribute.Int64("grading.response_id", int64(responseID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ScoreResult{}, err
	}

	response, err := s.repo.GetResponse(ctx, responseID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "response_not_found")
			return dto.ScoreResult{}, ErrResponseNotFound
		}
		span.SetStatus(codes.Error, "response_lookup_failed")
		return dto.ScoreResult{}, err
	}

	rawScore := *payload.Score
	late := progression.IsLate(response.Assessment.Deadline, response.SubmittedAt)
	finalScore := progression.ApplyLatePenalty(response.Assessment.Deadline, response.SubmittedAt, rawScore)
	feedback := strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))
	gradedAt := s.now()
	gradedBy := actor.ID

	response.Status = models.AssessmentStatusCompleted
	response.Score = &finalScore
	response.Feedback = feedback
	response.GradedAt = &gradedAt
	response.GradedBy = &gradedBy

	history := models.GradeHistory{
		StudentID:  response.StudentID,
		EntityType: models.GradeEntityAssessmentResponse,
		Action:     models.GradeActionGraded,
		RawScore:   rawScore,
		FinalScore: finalScore,
		Feedback:   feedback,
		GradedBy:   actor.ID,
		GradedAt:   gradedAt,
		Metadata: datatypes.JSONMap{
			"assessment_id": response.AssessmentID,
			"late":          late,
			"actor_role":    actor.Role,
		},
	}

	if err := s.repo.SaveResponseGrade(ctx, &response, &history); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "response_update_failed")
		s.logger.Error().Err(err).Uint("response_id", responseID).Msg("failed to persist assessment grade")
		return dto.ScoreResult{}, fmt.Errorf("%w: %v", ErrScorePersistence, err)
	}

	if late {
		observability.LatePenalties().Inc()
	}

	s.publish(ctx, NewGradingEvent(EventAssessmentGraded, response.StudentID, models.GradeEntityAssessmentResponse, response.ID, &history.ID))

	span.SetAttributes(
		attribute.Float64("grading.raw_score", rawScore),
		attribute.Float64("grading.final_score", finalScore),
		attribute.Bool("grading.late", late),
	)

	return dto.ScoreResult{
		EntityType:         models.GradeEntityAssessmentResponse,
		EntityID:           response.ID,
		StudentID:          response.StudentID,
		RawScore:           rawScore,
		FinalScore:         finalScore,
		LatePenaltyApplied: late,
		Status:             string(response.Status),
		GradedAt:           gradedAt,
		HistoryID:          history.ID,
	}, nil
}

func (s *gradingService) ScoreProjectSubmission(ctx context.Context, submissionID uint, payload dto.ScoreProjectRequest, actor Actor) (dto.ScoreResult, error) {
	ctx, span := s.tracer.Start(ctx, "grading.project_submission")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ScoreResult{}, err
	}

	submission, err := s.repo.GetProject(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.ScoreResult{}, ErrProjectSubmissionNotFound
		}
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.ScoreResult{}, err
	}

	score := *payload.Score
	review := strings.TrimSpace(s.sanitizer.Sanitize(payload.Review))
	gradedAt := s.now()
	gradedBy := actor.ID

	submission.Status = models.ProjectStatusGraded
	submission.Score = &score
	submission.Review = review
	submission.GradedAt = &gradedAt
	submission.GradedBy = &gradedBy

	history := models.GradeHistory{
		StudentID:  submission.StudentID,
		EntityType: models.GradeEntityProjectSubmission,
		Action:     models.GradeActionGraded,
		RawScore:   score,
		FinalScore: score,
		Feedback:   review,
		GradedBy:   actor.ID,
		GradedAt:   gradedAt,
		Metadata: datatypes.JSONMap{
			"week_id":    submission.WeekID,
			"course_id":  submission.CourseID,
			"actor_role": actor.Role,
		},
	}

	if err := s.repo.SaveProjectGrade(ctx, &submission, &history); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		s.logger.Error().Err(err).Uint("submission_id", submissionID).Msg("failed to persist project grade")
		return dto.ScoreResult{}, fmt.Errorf("%w: %v", ErrScorePersistence, err)
	}

	s.publish(ctx, NewGradingEvent(EventProjectGraded, submission.StudentID, models.GradeEntityProjectSubmission, submission.ID, &history.ID))

	span.SetAttributes(attribute.Float64("grading.score", score))

	return dto.ScoreResult{
		EntityType: models.GradeEntityProjectSubmission,
		EntityID:   submission.ID,
		StudentID:  submission.StudentID,
		RawScore:   score,
		FinalScore: score,
		Status:     string(submission.Status),
		GradedAt:   gradedAt,
		HistoryID:  history.ID,
	}, nil
}

// publish runs after the grade has been committed. A delivery failure leaves
// the history row pending for the reconciliation sweep instead of failing the
// already-saved grade.
func (s *gradingService) publish(ctx context.Context, event GradingEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("kind", event.Kind).
			Uint("student_id", event.StudentID).
			Msg("failed to deliver grading event")
	}
}
