package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// AssessmentResponseRepository defines data operations for assessment responses.
type AssessmentResponseRepository interface {
	MapByStudent(ctx context.Context, studentID uint) (map[uint]models.AssessmentResponse, error)
	GetByID(ctx context.Context, id uint) (models.AssessmentResponse, error)
	GetByAssessmentAndStudent(ctx context.Context, assessmentID, studentID uint) (models.AssessmentResponse, error)
	Save(ctx context.Context, response *models.AssessmentResponse) error
	SaveWithHistory(ctx context.Context, response *models.AssessmentResponse, history *models.GradeHistory) error
}

type assessmentResponseRepository struct {
	db *gorm.DB
}

// NewAssessmentResponseRepository instantiates the repository.
func NewAssessmentResponseRepository(db *gorm.DB) AssessmentResponseRepository {
	return &assessmentResponseRepository{db: db}
}

// MapByStudent returns the student's responses keyed by assessment ID.
func (r *assessmentResponseRepository) MapByStudent(ctx context.Context, studentID uint) (map[uint]models.AssessmentResponse, error) {
	var responses []models.AssessmentResponse
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("id ASC").
		Find(&responses).Error; err != nil {
		return nil, err
	}

	result := make(map[uint]models.AssessmentResponse, len(responses))
	for _, response := range responses {
		result[response.AssessmentID] = response
	}
	return result, nil
}

func (r *assessmentResponseRepository) GetByID(ctx context.Context, id uint) (models.AssessmentResponse, error) {
	var response models.AssessmentResponse
	if err := r.db.WithContext(ctx).Preload("Assessment").First(&response, id).Error; err != nil {
		return models.AssessmentResponse{}, err
	}
	return response, nil
}

func (r *assessmentResponseRepository) GetByAssessmentAndStudent(ctx context.Context, assessmentID, studentID uint) (models.AssessmentResponse, error) {
	var response models.AssessmentResponse
	if err := r.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Where("student_id = ?", studentID).
		First(&response).Error; err != nil {
		return models.AssessmentResponse{}, err
	}
	return response, nil
}

func (r *assessmentResponseRepository) Save(ctx context.Context, response *models.AssessmentResponse) error {
	return r.db.WithContext(ctx).Omit("Assessment").Save(response).Error
}

// SaveWithHistory writes the response and, when history is non-nil, its
// history entry in one transaction.
func (r *assessmentResponseRepository) SaveWithHistory(ctx context.Context, response *models.AssessmentResponse, history *models.GradeHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewAssessmentResponseRepository(tx).Save(ctx, response); err != nil {
			return err
		}
		if history == nil {
			return nil
		}
		history.EntityID = response.ID
		return tx.Create(history).Error
	})
}
