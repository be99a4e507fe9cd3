package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
	"github.com/noah-isme/gema-progress-api/internal/progression"
)

// StudentRepository defines data operations for students and their score rollup.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	SumGradedScores(ctx context.Context, studentID uint) (float64, error)
	UpdateTotalScore(ctx context.Context, studentID uint, total float64, at time.Time) error
	CountGraded(ctx context.Context, studentID uint) (GradedCounts, error)
}

// GradedCounts summarises how many of a student's items have been reviewed.
type GradedCounts struct {
	AssessmentsGraded int64
	AssessmentsPassed int64
	ProjectsGraded    int64
	ProjectsPassed    int64
	AwaitingReview    int64
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository instantiates the repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

// SumGradedScores adds up every reviewed score: completed assessment responses
// and graded projects. Rows without a score contribute nothing.
func (r *studentRepository) SumGradedScores(ctx context.Context, studentID uint) (float64, error) {
	var assessmentTotal float64
	if err := r.db.WithContext(ctx).
		Model(&models.AssessmentResponse{}).
		Where("student_id = ? AND status = ? AND score IS NOT NULL", studentID, models.AssessmentStatusCompleted).
		Select("COALESCE(SUM(score), 0)").
		Scan(&assessmentTotal).Error; err != nil {
		return 0, err
	}

	var projectTotal float64
	if err := r.db.WithContext(ctx).
		Model(&models.ProjectSubmission{}).
		Where("student_id = ? AND status = ? AND score IS NOT NULL", studentID, models.ProjectStatusGraded).
		Select("COALESCE(SUM(score), 0)").
		Scan(&projectTotal).Error; err != nil {
		return 0, err
	}

	return assessmentTotal + projectTotal, nil
}

func (r *studentRepository) UpdateTotalScore(ctx context.Context, studentID uint, total float64, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", studentID).
		Updates(map[string]interface{}{
			"total_score":      total,
			"score_updated_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentRepository) CountGraded(ctx context.Context, studentID uint) (GradedCounts, error) {
	var counts GradedCounts
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.AssessmentResponse{}).
		Where("student_id = ? AND score IS NOT NULL", studentID).
		Count(&counts.AssessmentsGraded).Error; err != nil {
		return GradedCounts{}, err
	}
	if err := db.Model(&models.AssessmentResponse{}).
		Where("student_id = ? AND score >= ?", studentID, progression.PassingScore).
		Count(&counts.AssessmentsPassed).Error; err != nil {
		return GradedCounts{}, err
	}
	if err := db.Model(&models.ProjectSubmission{}).
		Where("student_id = ? AND status = ?", studentID, models.ProjectStatusGraded).
		Count(&counts.ProjectsGraded).Error; err != nil {
		return GradedCounts{}, err
	}
	if err := db.Model(&models.ProjectSubmission{}).
		Where("student_id = ? AND status = ? AND score >= ?", studentID, models.ProjectStatusGraded, progression.PassingScore).
		Count(&counts.ProjectsPassed).Error; err != nil {
		return GradedCounts{}, err
	}

	var pendingResponses, pendingProjects int64
	if err := db.Model(&models.AssessmentResponse{}).
		Where("student_id = ? AND score IS NULL", studentID).
		Count(&pendingResponses).Error; err != nil {
		return GradedCounts{}, err
	}
	if err := db.Model(&models.ProjectSubmission{}).
		Where("student_id = ? AND status = ?", studentID, models.ProjectStatusPending).
		Count(&pendingProjects).Error; err != nil {
		return GradedCounts{}, err
	}
	counts.AwaitingReview = pendingResponses + pendingProjects

	return counts, nil
}
