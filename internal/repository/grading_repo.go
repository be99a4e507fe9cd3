package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// GradingRepository provides persistence helpers for grading workflows. Each
// save writes the graded record and its history entry in one transaction.
type GradingRepository interface {
	GetResponse(ctx context.Context, id uint) (models.AssessmentResponse, error)
	GetProject(ctx context.Context, id uint) (models.ProjectSubmission, error)
	SaveResponseGrade(ctx context.Context, response *models.AssessmentResponse, history *models.GradeHistory) error
	SaveProjectGrade(ctx context.Context, submission *models.ProjectSubmission, history *models.GradeHistory) error
}

type gradingRepository struct {
	db *gorm.DB
}

// NewGradingRepository builds a grading-aware submission repository.
func NewGradingRepository(db *gorm.DB) GradingRepository {
	return &gradingRepository{db: db}
}

func (r *gradingRepository) GetResponse(ctx context.Context, id uint) (models.AssessmentResponse, error) {
	return NewAssessmentResponseRepository(r.db).GetByID(ctx, id)
}

func (r *gradingRepository) GetProject(ctx context.Context, id uint) (models.ProjectSubmission, error) {
	return NewProjectSubmissionRepository(r.db).GetByID(ctx, id)
}

func (r *gradingRepository) SaveResponseGrade(ctx context.Context, response *models.AssessmentResponse, history *models.GradeHistory) error {
	return NewAssessmentResponseRepository(r.db).SaveWithHistory(ctx, response, history)
}

func (r *gradingRepository) SaveProjectGrade(ctx context.Context, submission *models.ProjectSubmission, history *models.GradeHistory) error {
	return NewProjectSubmissionRepository(r.db).SaveWithHistory(ctx, submission, history)
}
