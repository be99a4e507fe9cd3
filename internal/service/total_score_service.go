package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/observability"
	"github.com/noah-isme/gema-progress-api/internal/repository"
)

// ErrStudentNotFound indicates the student does not exist.
var ErrStudentNotFound = errors.New("student not found")

// TotalScoreService maintains each student's aggregate score.
type TotalScoreService interface {
	RecomputeStudentTotalScore(ctx context.Context, studentID uint) (float64, error)
	HandleGradingEvent(ctx context.Context, event GradingEvent) error
	ReconcilePending(ctx context.Context, limit int) (int, error)
}

type totalScoreService struct {
	students repository.StudentRepository
	history  repository.GradeHistoryRepository
	cache    *redis.Client
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewTotalScoreService constructs the aggregate score service. cache may be nil.
func NewTotalScoreService(students repository.StudentRepository, history repository.GradeHistoryRepository, cache *redis.Client, logger zerolog.Logger) TotalScoreService {
	return &totalScoreService{
		students: students,
		history:  history,
		cache:    cache,
		logger:   logger.With().Str("component", "total_score_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/gema-progress-api/internal/service/total_score"),
		now:      time.Now,
	}
}

// RecomputeStudentTotalScore recalculates the rollup from scratch, so running
// it more than once per event is harmless. History rows observed as pending
// before the recompute are marked done afterwards.
func (s *totalScoreService) RecomputeStudentTotalScore(ctx context.Context, studentID uint) (float64, error) {
	ctx, span := s.tracer.Start(ctx, "total_score.recompute", trace.WithAttributes(
		attribute.Int64("student.id", int64(studentID)),
	))
	defer span.End()

	pending, err := s.history.PendingIDsForStudent(ctx, studentID)
	if err != nil {
		return s.fail(span, "pending_lookup_failed", err)
	}

	total, err := s.students.SumGradedScores(ctx, studentID)
	if err != nil {
		return s.fail(span, "sum_failed", err)
	}

	now := s.now()
	if err := s.students.UpdateTotalScore(ctx, studentID, total, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.settleOrphaned(ctx, studentID, pending, now)
			return s.fail(span, "student_not_found", ErrStudentNotFound)
		}
		return s.fail(span, "update_failed", err)
	}

	if err := s.history.MarkRecomputed(ctx, pending, now); err != nil {
		return s.fail(span, "mark_failed", err)
	}

	s.invalidateStats(ctx, studentID)
	observability.TotalScoreRecomputes().WithLabelValues("success").Inc()
	span.SetAttributes(attribute.Float64("student.total_score", total))

	return total, nil
}

// settleOrphaned marks history of a missing student as recomputed. There is no
// total to update, and leaving the rows pending would retry them every sweep.
func (s *totalScoreService) settleOrphaned(ctx context.Context, studentID uint, pending []uint, at time.Time) {
	if len(pending) == 0 {
		return
	}
	if err := s.history.MarkRecomputed(ctx, pending, at); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to settle history of missing student")
		return
	}
	s.logger.Warn().Uint("student_id", studentID).Int("entries", len(pending)).Msg("settled grade history of missing student")
}

func (s *totalScoreService) fail(span trace.Span, status string, err error) (float64, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, status)
	observability.TotalScoreRecomputes().WithLabelValues("error").Inc()
	return 0, err
}

func (s *totalScoreService) HandleGradingEvent(ctx context.Context, event GradingEvent) error {
	total, err := s.RecomputeStudentTotalScore(ctx, event.StudentID)
	if err != nil {
		return fmt.Errorf("recompute total score for student %d: %w", event.StudentID, err)
	}

	s.logger.Debug().
		Str("event_id", event.ID).
		Str("kind", event.Kind).
		Uint("student_id", event.StudentID).
		Float64("total_score", total).
		Msg("total score recomputed")
	return nil
}

// ReconcilePending recomputes students whose grading history has not been
// applied yet, for events that were lost between commit and delivery.
func (s *totalScoreService) ReconcilePending(ctx context.Context, limit int) (int, error) {
	studentIDs, err := s.history.PendingStudentIDs(ctx, limit)
	if err != nil {
		return 0, err
	}

	var errs []error
	recomputed := 0
	for _, studentID := range studentIDs {
		if _, err := s.RecomputeStudentTotalScore(ctx, studentID); err != nil {
			s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to reconcile total score")
			errs = append(errs, err)
			continue
		}
		recomputed++
	}

	return recomputed, errors.Join(errs...)
}

func (s *totalScoreService) invalidateStats(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, studentStatsCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate stats cache")
	}
}
