package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/repository"
)

// StudentStatsService produces a student's score rollup for the dashboard.
type StudentStatsService interface {
	GetStats(ctx context.Context, studentID uint) (dto.StudentStatsResponse, bool, error)
}

type studentStatsService struct {
	students repository.StudentRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewStudentStatsService builds the stats reader. cache may be nil.
func NewStudentStatsService(students repository.StudentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StudentStatsService {
	return &studentStatsService{
		students: students,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "student_stats_service").Logger(),
	}
}

func studentStatsCacheKey(studentID uint) string {
	return fmt.Sprintf("stats:student:%d", studentID)
}

// GetStats returns the stats and whether they were served from cache.
func (s *studentStatsService) GetStats(ctx context.Context, studentID uint) (dto.StudentStatsResponse, bool, error) {
	cacheKey := studentStatsCacheKey(studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentStatsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("stats cache hit")
				return response, true, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read stats cache")
		}
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentStatsResponse{}, false, ErrStudentNotFound
		}
		return dto.StudentStatsResponse{}, false, err
	}

	counts, err := s.students.CountGraded(ctx, studentID)
	if err != nil {
		return dto.StudentStatsResponse{}, false, err
	}

	response := dto.StudentStatsResponse{
		StudentID:         student.ID,
		Name:              student.Name,
		TotalScore:        student.TotalScore,
		ScoreUpdatedAt:    student.ScoreUpdatedAt,
		AssessmentsGraded: counts.AssessmentsGraded,
		AssessmentsPassed: counts.AssessmentsPassed,
		ProjectsGraded:    counts.ProjectsGraded,
		ProjectsPassed:    counts.ProjectsPassed,
		AwaitingReview:    counts.AwaitingReview,
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store stats cache")
			}
		}
	}

	return response, false, nil
}
