package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/observability"
	"github.com/noah-isme/gema-progress-api/internal/progression"
	"github.com/noah-isme/gema-progress-api/internal/repository"
)

var (
	// ErrCourseNotFound indicates the course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrWeekNotFound indicates the week does not exist.
	ErrWeekNotFound = errors.New("week not found")
	// ErrProgressUnavailable wraps failures while loading a progress snapshot.
	ErrProgressUnavailable = errors.New("unable to load progress")
)

// WeekAccess describes whether a student may work on a week right now.
type WeekAccess struct {
	CourseID uint
	Week     progression.WeekProgress
	IsLocked bool
}

// CourseProgressService derives completion and lock state for a student.
// Results are recomputed on every call and never cached.
type CourseProgressService interface {
	ComputeCourseProgress(ctx context.Context, studentID, courseID uint) (dto.CourseProgressResponse, error)
	WeekAccess(ctx context.Context, studentID, weekID uint) (WeekAccess, error)
}

type courseProgressService struct {
	store   repository.ProgressStore
	courses repository.CourseRepository
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewCourseProgressService constructs the progression service.
func NewCourseProgressService(store repository.ProgressStore, courses repository.CourseRepository, logger zerolog.Logger) CourseProgressService {
	return &courseProgressService{
		store:   store,
		courses: courses,
		logger:  logger.With().Str("component", "course_progress_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/gema-progress-api/internal/service/course_progress"),
	}
}

func (s *courseProgressService) ComputeCourseProgress(ctx context.Context, studentID, courseID uint) (dto.CourseProgressResponse, error) {
	snapshot, progress, err := s.evaluate(ctx, studentID, courseID)
	if err != nil {
		return dto.CourseProgressResponse{}, err
	}

	return dto.NewCourseProgressResponse(studentID, courseID, snapshot.Months, progress, snapshot.CompletedWeeks), nil
}

func (s *courseProgressService) WeekAccess(ctx context.Context, studentID, weekID uint) (WeekAccess, error) {
	courseID, err := s.courses.CourseIDForWeek(ctx, weekID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WeekAccess{}, ErrWeekNotFound
		}
		return WeekAccess{}, fmt.Errorf("%w: %v", ErrProgressUnavailable, err)
	}

	_, progress, err := s.evaluate(ctx, studentID, courseID)
	if err != nil {
		return WeekAccess{}, err
	}

	week, ok := progress.Week(weekID)
	if !ok {
		return WeekAccess{}, ErrWeekNotFound
	}

	return WeekAccess{CourseID: courseID, Week: week, IsLocked: week.IsLocked}, nil
}

func (s *courseProgressService) evaluate(ctx context.Context, studentID, courseID uint) (repository.ProgressSnapshot, progression.CourseProgress, error) {
	ctx, span := s.tracer.Start(ctx, "progress.compute", trace.WithAttributes(
		attribute.Int64("student.id", int64(studentID)),
		attribute.Int64("course.id", int64(courseID)),
	))
	defer span.End()

	snapshot, err := s.store.LoadSnapshot(ctx, studentID, courseID)
	if err != nil {
		span.RecordError(err)
		observability.ProgressComputations().WithLabelValues("error").Inc()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "course_not_found")
			return repository.ProgressSnapshot{}, progression.CourseProgress{}, ErrCourseNotFound
		}
		span.SetStatus(codes.Error, "snapshot_failed")
		s.logger.Error().Err(err).Uint("student_id", studentID).Uint("course_id", courseID).Msg("failed to load progress snapshot")
		return repository.ProgressSnapshot{}, progression.CourseProgress{}, fmt.Errorf("%w: %v", ErrProgressUnavailable, err)
	}

	progress := progression.Evaluate(progression.Snapshot{
		Months:    snapshot.Months,
		Responses: snapshot.Responses,
		Projects:  snapshot.Projects,
	})

	span.SetAttributes(attribute.Int("progress.weeks", len(progress.Weeks)))
	observability.ProgressComputations().WithLabelValues("success").Inc()

	return snapshot, progress, nil
}
