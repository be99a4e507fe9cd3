package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// ProjectSubmissionRepository defines data operations for project submissions.
type ProjectSubmissionRepository interface {
	MapByStudentCourse(ctx context.Context, studentID, courseID uint) (map[uint]models.ProjectSubmission, error)
	GetByID(ctx context.Context, id uint) (models.ProjectSubmission, error)
	GetByWeekAndStudent(ctx context.Context, weekID, studentID uint) (models.ProjectSubmission, error)
	Save(ctx context.Context, submission *models.ProjectSubmission) error
	SaveWithHistory(ctx context.Context, submission *models.ProjectSubmission, history *models.GradeHistory) error
}

type projectSubmissionRepository struct {
	db *gorm.DB
}

// NewProjectSubmissionRepository instantiates the repository.
func NewProjectSubmissionRepository(db *gorm.DB) ProjectSubmissionRepository {
	return &projectSubmissionRepository{db: db}
}

// MapByStudentCourse returns the student's project submissions keyed by week ID.
func (r *projectSubmissionRepository) MapByStudentCourse(ctx context.Context, studentID, courseID uint) (map[uint]models.ProjectSubmission, error) {
	var submissions []models.ProjectSubmission
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	result := make(map[uint]models.ProjectSubmission, len(submissions))
	for _, submission := range submissions {
		result[submission.WeekID] = submission
	}
	return result, nil
}

func (r *projectSubmissionRepository) GetByID(ctx context.Context, id uint) (models.ProjectSubmission, error) {
	var submission models.ProjectSubmission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.ProjectSubmission{}, err
	}
	return submission, nil
}

func (r *projectSubmissionRepository) GetByWeekAndStudent(ctx context.Context, weekID, studentID uint) (models.ProjectSubmission, error) {
	var submission models.ProjectSubmission
	if err := r.db.WithContext(ctx).
		Where("week_id = ?", weekID).
		Where("student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.ProjectSubmission{}, err
	}
	return submission, nil
}

func (r *projectSubmissionRepository) Save(ctx context.Context, submission *models.ProjectSubmission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

// SaveWithHistory writes the submission and, when history is non-nil, its
// history entry in one transaction.
func (r *projectSubmissionRepository) SaveWithHistory(ctx context.Context, submission *models.ProjectSubmission, history *models.GradeHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewProjectSubmissionRepository(tx).Save(ctx, submission); err != nil {
			return err
		}
		if history == nil {
			return nil
		}
		history.EntityID = submission.ID
		return tx.Create(history).Error
	})
}
