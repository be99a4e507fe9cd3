package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// CourseRepository reads the course → month → week hierarchy.
type CourseRepository interface {
	FetchWeekHierarchy(ctx context.Context, courseID uint) ([]models.Month, error)
	CourseIDForWeek(ctx context.Context, weekID uint) (uint, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	CreateCurriculum(ctx context.Context, course *models.Course) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates the repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

// FetchWeekHierarchy returns the months of a course with their weeks, both
// sorted by their order column. It returns gorm.ErrRecordNotFound for an
// unknown course.
func (r *courseRepository) FetchWeekHierarchy(ctx context.Context, courseID uint) ([]models.Month, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Select("id").First(&course, courseID).Error; err != nil {
		return nil, err
	}

	var months []models.Month
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Preload("Weeks", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order ASC").Order("id ASC")
		}).
		Order("sort_order ASC").
		Order("id ASC").
		Find(&months).Error
	if err != nil {
		return nil, err
	}

	return months, nil
}

func (r *courseRepository) CourseIDForWeek(ctx context.Context, weekID uint) (uint, error) {
	var month models.Month
	err := r.db.WithContext(ctx).
		Model(&models.Month{}).
		Joins("JOIN weeks ON weeks.month_id = months.id").
		Where("weeks.id = ?", weekID).
		Select("months.course_id").
		Take(&month).Error
	if err != nil {
		return 0, err
	}
	return month.CourseID, nil
}

func (r *courseRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Course{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateCurriculum inserts a course with its months, weeks and assessments in
// one transaction.
func (r *courseRepository) CreateCurriculum(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Create(course).Error
	})
}
