package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
	// ErrCourseExists indicates a course with the same slug was already imported.
	ErrCourseExists = errors.New("course already exists")
	// ErrInvalidCurriculum indicates duplicate ordering inside the imported hierarchy.
	ErrInvalidCurriculum = errors.New("invalid curriculum")
)

// SeedService imports course curricula for operators.
type SeedService interface {
	SeedCourse(ctx context.Context, token string, payload dto.SeedCourseRequest) (dto.SeedCourseResult, error)
}

type seedService struct {
	courses   repository.CourseRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	enabled   bool
	token     string
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(courses repository.CourseRepository, validator *validator.Validate, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		courses:   courses,
		validator: validator,
		sanitizer: bluemonday.UGCPolicy(),
		enabled:   enabled,
		token:     token,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedCourse(ctx context.Context, token string, payload dto.SeedCourseRequest) (dto.SeedCourseResult, error) {
	if !s.enabled {
		return dto.SeedCourseResult{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return dto.SeedCourseResult{}, ErrSeedUnauthorized
	}

	payload.Slug = strings.ToLower(strings.TrimSpace(payload.Slug))
	if err := s.validator.Struct(payload); err != nil {
		return dto.SeedCourseResult{}, err
	}
	if err := checkOrdering(payload); err != nil {
		return dto.SeedCourseResult{}, err
	}

	exists, err := s.courses.ExistsBySlug(ctx, payload.Slug)
	if err != nil {
		return dto.SeedCourseResult{}, err
	}
	if exists {
		return dto.SeedCourseResult{}, ErrCourseExists
	}

	course := payload.ToModel()
	result := dto.SeedCourseResult{Months: len(course.Months)}
	for i := range course.Months {
		for j := range course.Months[i].Weeks {
			week := &course.Months[i].Weeks[j]
			result.Weeks++
			for k := range week.Assessments {
				week.Assessments[k].Problem = s.sanitizer.Sanitize(week.Assessments[k].Problem)
				result.Assessments++
			}
		}
	}

	if err := s.courses.CreateCurriculum(ctx, &course); err != nil {
		return dto.SeedCourseResult{}, err
	}
	result.CourseID = course.ID

	s.logger.Info().
		Str("slug", course.Slug).
		Int("weeks", result.Weeks).
		Int("assessments", result.Assessments).
		Msg("curriculum imported")
	return result, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}

// checkOrdering rejects duplicate month orders in the course and duplicate
// week orders in a month, which the unique indexes would refuse anyway.
func checkOrdering(payload dto.SeedCourseRequest) error {
	months := make(map[int]struct{}, len(payload.Months))
	for _, month := range payload.Months {
		if _, dup := months[month.Order]; dup {
			return fmt.Errorf("%w: month order %d is used twice", ErrInvalidCurriculum, month.Order)
		}
		months[month.Order] = struct{}{}

		weeks := make(map[int]struct{}, len(month.Weeks))
		for _, week := range month.Weeks {
			if _, dup := weeks[week.Order]; dup {
				return fmt.Errorf("%w: week order %d is used twice in %q", ErrInvalidCurriculum, week.Order, month.Title)
			}
			weeks[week.Order] = struct{}{}
		}
	}
	return nil
}
