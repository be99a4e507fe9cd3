package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-progress-api/internal/models"
)

// GradeHistoryRepository tracks grading audit entries and their recompute state.
type GradeHistoryRepository interface {
	PendingIDsForStudent(ctx context.Context, studentID uint) ([]uint, error)
	MarkRecomputed(ctx context.Context, ids []uint, at time.Time) error
	PendingStudentIDs(ctx context.Context, limit int) ([]uint, error)
}

type gradeHistoryRepository struct {
	db *gorm.DB
}

// NewGradeHistoryRepository instantiates the repository.
func NewGradeHistoryRepository(db *gorm.DB) GradeHistoryRepository {
	return &gradeHistoryRepository{db: db}
}

func (r *gradeHistoryRepository) PendingIDsForStudent(ctx context.Context, studentID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.GradeHistory{}).
		Where("student_id = ? AND recomputed_at IS NULL", studentID).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *gradeHistoryRepository) MarkRecomputed(ctx context.Context, ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.GradeHistory{}).
		Where("id IN ?", ids).
		Update("recomputed_at", at).Error
}

// PendingStudentIDs lists students that still owe a total score recompute.
func (r *gradeHistoryRepository) PendingStudentIDs(ctx context.Context, limit int) ([]uint, error) {
	query := r.db.WithContext(ctx).
		Model(&models.GradeHistory{}).
		Where("recomputed_at IS NULL").
		Distinct("student_id").
		Order("student_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var ids []uint
	if err := query.Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
